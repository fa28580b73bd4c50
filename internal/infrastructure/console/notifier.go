// Package console prints digests to a terminal instead of sending them.
package console

import (
	"context"
	"fmt"
	"io"
	"os"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/infrastructure/email"
	"FundingScanner/internal/output"
	"FundingScanner/internal/ports"
)

// Notifier writes the digest subject and an announcement table.
type Notifier struct {
	w io.Writer
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier writes to w, or stdout when w is nil.
func NewNotifier(w io.Writer) *Notifier {
	if w == nil {
		w = os.Stdout
	}
	return &Notifier{w: w}
}

func (n *Notifier) PublishDigest(_ context.Context, digest domain.Digest) error {
	if _, err := fmt.Fprintf(n.w, "\n%s\n\n", email.Subject(digest)); err != nil {
		return err
	}
	if len(digest.Announcements) == 0 {
		_, err := fmt.Fprintln(n.w, "No new funding announcements matching your criteria were found in this period.")
		return err
	}
	return output.AnnouncementTable(n.w, digest.Announcements)
}
