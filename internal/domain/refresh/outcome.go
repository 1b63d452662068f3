// Package refresh holds the typed results of a sync run.
package refresh

import (
	"time"

	"github.com/kailas-cloud/careerdex/internal/domain/catalog"
)

// Status is the outcome of refreshing one collection.
type Status string

// Collection refresh status values.
const (
	StatusOK      Status = "ok"
	StatusError   Status = "error"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of refreshing one collection.
type Outcome struct {
	collection catalog.CollectionName
	status     Status
	records    int
	duration   time.Duration
	err        error
}

// NewOK creates a successful outcome.
func NewOK(name catalog.CollectionName, records int, d time.Duration) Outcome {
	return Outcome{collection: name, status: StatusOK, records: records, duration: d}
}

// NewError creates a failed outcome. The cached snapshot was left untouched.
func NewError(name catalog.CollectionName, err error, d time.Duration) Outcome {
	return Outcome{collection: name, status: StatusError, err: err, duration: d}
}

// NewSkipped creates an outcome for a collection that was not attempted.
func NewSkipped(name catalog.CollectionName, err error) Outcome {
	return Outcome{collection: name, status: StatusSkipped, err: err}
}

// Collection returns the collection name.
func (o Outcome) Collection() catalog.CollectionName { return o.collection }

// Status returns the outcome status.
func (o Outcome) Status() Status { return o.status }

// Records returns the number of records written (0 unless StatusOK).
func (o Outcome) Records() int { return o.records }

// Duration returns how long the collection refresh took.
func (o Outcome) Duration() time.Duration { return o.duration }

// Err returns the failure cause, if any.
func (o Outcome) Err() error { return o.err }
