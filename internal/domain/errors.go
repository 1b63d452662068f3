package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnknownCollection signals a collection name the sync layer does not track.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrRemoteUnavailable signals that the remote data provider cannot be reached.
	ErrRemoteUnavailable = errors.New("remote provider unavailable")
	// ErrAggregation signals that aggregate scores could not be computed for a collection.
	ErrAggregation = errors.New("score aggregation failed")
	// ErrMalformedSnapshot signals a persisted snapshot that failed to decode.
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	// ErrInvalidProfile signals an interest profile that cannot be used for matching.
	ErrInvalidProfile = errors.New("invalid profile")
)
