package seeder

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"gorm.io/gorm"

	"moviedb/internal/client/tmdb"
	"moviedb/internal/mapper"
)

// ErrorKind decides how the pipeline reacts to a failure: transient
// errors are retried, everything else is terminal for the record.
type ErrorKind string

const (
	KindNotFound   ErrorKind = "not_found"
	KindTransient  ErrorKind = "transient"
	KindMapping    ErrorKind = "mapping"
	KindConstraint ErrorKind = "constraint"
	KindUnknown    ErrorKind = "unknown"
)

// SeedError wraps a failure with enough context to report where in the
// pipeline it happened and which record it concerns.
type SeedError struct {
	Kind  ErrorKind
	Stage string
	Table string
	Key   string
	Err   error
}

func (e *SeedError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s/%s %s (%s): %v", e.Stage, e.Table, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s/%s (%s): %v", e.Stage, e.Table, e.Kind, e.Err)
}

func (e *SeedError) Unwrap() error {
	return e.Err
}

func newSeedError(stage, table, key string, err error) *SeedError {
	return &SeedError{Kind: Classify(err), Stage: stage, Table: table, Key: key, Err: err}
}

// Classify buckets an error into a kind. Mapping and constraint errors
// are deterministic and never retried. Only recognizably transient
// signals (rate limits, 5xx, transport failures) classify as transient;
// anything else is unknown rather than assumed retryable.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnknown
	}
	var mapErr *mapper.MappingError
	if errors.As(err, &mapErr) {
		return KindMapping
	}
	if tmdb.IsNotFound(err) {
		return KindNotFound
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) ||
		errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return KindConstraint
	}
	var apiErr *tmdb.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500 {
			return KindTransient
		}
		return KindUnknown
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return KindTransient
	}
	return KindUnknown
}
