package ports

import (
	"context"
	"errors"
	"time"

	"FundingScanner/internal/domain"
)

// ErrDuplicateAnnouncement is returned by RecordAnnouncement when the article already has one.
var ErrDuplicateAnnouncement = errors.New("announcement already recorded for article")

// ArticleSource pulls the current batch of articles from upstream feeds.
type ArticleSource interface {
	Fetch(ctx context.Context, now time.Time) ([]domain.Article, error)
}

// DedupStore tracks seen articles and guarantees at most one announcement per article.
type DedupStore interface {
	HasSeen(ctx context.Context, articleID string) (bool, error)
	// MarkSeen is idempotent: repeated calls for one identifier keep the first row.
	MarkSeen(ctx context.Context, articleID string, fundingRelated bool, at time.Time) error
	// RecordAnnouncement fails with ErrDuplicateAnnouncement when the article already has one.
	RecordAnnouncement(ctx context.Context, announcement domain.Announcement) error
	// PurgeOlderThan removes seen rows whose first sighting predates now minus window.
	// Announcements are kept.
	PurgeOlderThan(ctx context.Context, window time.Duration) (int64, error)
}

// DigestLedger records which announcements already went out in a digest.
type DigestLedger interface {
	Pending(ctx context.Context, since time.Time) ([]domain.Announcement, error)
	MarkDelivered(ctx context.Context, articleIDs []string, at time.Time) error
}

// Store is a full persistence engine.
type Store interface {
	DedupStore
	DigestLedger
	Stats(ctx context.Context) (domain.StoreStats, error)
	Close() error
}

// Notifier delivers a finished digest to a channel (email, Telegram, console).
type Notifier interface {
	PublishDigest(ctx context.Context, digest domain.Digest) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
