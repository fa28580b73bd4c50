package console

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"FundingScanner/internal/domain"
)

func TestPublishDigest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	d := domain.Digest{
		Kind:          domain.DigestDaily,
		GeneratedAt:   time.Date(2025, 10, 7, 0, 0, 0, 0, time.UTC),
		Announcements: []domain.Announcement{{CompanyName: "Acme Pay", Score: 90, URL: "https://example.com/a"}},
	}
	if err := NewNotifier(&buf).PublishDigest(context.Background(), d); err != nil {
		t.Fatalf("publish: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Daily Funding Digest - 1 New Opportunities - 2025-10-07") {
		t.Fatalf("missing subject: %q", out)
	}
	if !strings.Contains(out, "Acme Pay") {
		t.Fatalf("missing company: %q", out)
	}
}

func TestPublishEmptyDigest(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewNotifier(&buf).PublishDigest(context.Background(), domain.Digest{Kind: domain.DigestWeekly}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !strings.Contains(buf.String(), "No new funding announcements") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
