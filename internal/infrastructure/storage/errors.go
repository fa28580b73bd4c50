package storage

import (
	"errors"
	"time"

	"FundingScanner/internal/ports"
)

var (
	// ErrDuplicateAnnouncement is returned when an announcement already exists for the article.
	ErrDuplicateAnnouncement = ports.ErrDuplicateAnnouncement
	// ErrStoreUnavailable wraps failures to reach or open the persistence layer.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Option tweaks a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now for retention cut-offs.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
