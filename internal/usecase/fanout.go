package usecase

import (
	"context"
	"errors"
	"fmt"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/ports"
)

// NamedNotifier labels a channel for error messages.
type NamedNotifier struct {
	Name     string
	Notifier ports.Notifier
}

// FanOut publishes one digest to every channel. All channels are attempted;
// the joined error reports each failure.
type FanOut struct {
	channels []NamedNotifier
}

var _ ports.Notifier = (*FanOut)(nil)

// NewFanOut skips channels with a nil notifier.
func NewFanOut(channels ...NamedNotifier) *FanOut {
	f := &FanOut{}
	for _, ch := range channels {
		if ch.Notifier != nil {
			f.channels = append(f.channels, ch)
		}
	}
	return f
}

// Len reports the number of active channels.
func (f *FanOut) Len() int { return len(f.channels) }

func (f *FanOut) PublishDigest(ctx context.Context, digest domain.Digest) error {
	var errs []error
	for _, ch := range f.channels {
		if err := ch.Notifier.PublishDigest(ctx, digest); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name, err))
		}
	}
	return errors.Join(errs...)
}
