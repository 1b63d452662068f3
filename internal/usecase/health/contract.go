package health

import "context"

// StorePinger checks persistent store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// RemotePinger checks remote provider reachability.
type RemotePinger interface {
	Ping(ctx context.Context) error
}
