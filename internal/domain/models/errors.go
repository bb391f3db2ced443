package models

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrDataUnavailable means no tier (cache, durable store, remote)
	// yielded any rows for the requested range.
	ErrDataUnavailable = errors.New("stock data unavailable from all sources")

	// ErrCacheUnavailable marks a cache tier failure. Callers treat it as a
	// soft failure and fall through to the durable store.
	ErrCacheUnavailable = errors.New("cache unavailable")
)

// RemoteUnavailableError reports a remote provider failure for one
// sub-range after retries were exhausted.
type RemoteUnavailableError struct {
	Ticker string
	Period Period
	Start  time.Time
	End    time.Time
	Err    error
}

func (e *RemoteUnavailableError) Error() string {
	return fmt.Sprintf("remote provider unavailable for %s %s [%s, %s]: %v",
		e.Ticker, e.Period, e.Start.Format(DateLayout), e.End.Format(DateLayout), e.Err)
}

func (e *RemoteUnavailableError) Unwrap() error { return e.Err }

// PersistenceConflictError reports an upsert transaction failure for one
// (ticker, period) group. The corresponding write-ahead entry is retained.
type PersistenceConflictError struct {
	Ticker string
	Period Period
	Err    error
}

func (e *PersistenceConflictError) Error() string {
	return fmt.Sprintf("persist %s %s: %v", e.Ticker, e.Period, e.Err)
}

func (e *PersistenceConflictError) Unwrap() error { return e.Err }
