package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/ports"
)

const uniqueViolation = "23505"

// PgxIface is the subset of *pgxpool.Pool the store needs; pgxmock satisfies it in tests.
type PgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Schema creates the three tables the store needs. Announcements carry no foreign key
// to seen_articles so that purging bookkeeping rows never touches them.
const Schema = `
CREATE TABLE IF NOT EXISTS seen_articles (
    article_id         TEXT PRIMARY KEY,
    first_seen         TIMESTAMPTZ NOT NULL,
    is_funding_related BOOLEAN NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS seen_articles_first_seen_idx ON seen_articles (first_seen);

CREATE TABLE IF NOT EXISTS announcements (
    article_id      TEXT PRIMARY KEY,
    company_name    TEXT NOT NULL DEFAULT '',
    funding_stage   TEXT NOT NULL DEFAULT '',
    amount_value    DOUBLE PRECISION NOT NULL DEFAULT 0,
    amount_currency TEXT NOT NULL DEFAULT '',
    amount_unit     TEXT NOT NULL DEFAULT '',
    location        TEXT NOT NULL DEFAULT '',
    location_tier   INTEGER NOT NULL DEFAULT 0,
    industry        TEXT NOT NULL DEFAULT '',
    industry_tier   INTEGER NOT NULL DEFAULT 0,
    score           INTEGER NOT NULL,
    title           TEXT NOT NULL,
    url             TEXT NOT NULL,
    source          TEXT NOT NULL DEFAULT '',
    summary         TEXT NOT NULL DEFAULT '',
    published_at    TIMESTAMPTZ NOT NULL,
    detected_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS announcements_detected_at_idx ON announcements (detected_at);

CREATE TABLE IF NOT EXISTS digest_deliveries (
    article_id   TEXT PRIMARY KEY,
    delivered_at TIMESTAMPTZ NOT NULL
);`

var announcementColumns = []string{
	"article_id", "company_name", "funding_stage", "amount_value", "amount_currency", "amount_unit",
	"location", "location_tier", "industry", "industry_tier", "score",
	"title", "url", "source", "summary", "published_at", "detected_at",
}

const statsQuery = `SELECT
    (SELECT COUNT(*) FROM seen_articles),
    (SELECT COUNT(*) FROM seen_articles WHERE is_funding_related),
    (SELECT COUNT(*) FROM announcements),
    (SELECT COUNT(*) FROM announcements a LEFT JOIN digest_deliveries d ON d.article_id = a.article_id WHERE d.article_id IS NULL)`

// PostgresStore persists dedup state and announcements in Postgres.
type PostgresStore struct {
	db   PgxIface
	psql sq.StatementBuilderType
	now  func() time.Time
}

var _ ports.Store = (*PostgresStore)(nil)

// NewPostgresStore wires a pgx pool (or pgxmock in tests).
func NewPostgresStore(db PgxIface, opts ...Option) *PostgresStore {
	o := buildOptions(opts)
	return &PostgresStore{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now:  o.now,
	}
}

// EnsureSchema creates missing tables and indexes.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// HasSeen reports whether the article was recorded before.
func (s *PostgresStore) HasSeen(ctx context.Context, articleID string) (bool, error) {
	query, args, err := s.psql.Select("COUNT(*)").
		From("seen_articles").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build has seen: %w", err)
	}

	var count int64
	if err := s.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("query has seen: %w", err)
	}
	return count > 0, nil
}

// MarkSeen inserts the bookkeeping row; a second call for the same article is a no-op.
func (s *PostgresStore) MarkSeen(ctx context.Context, articleID string, fundingRelated bool, at time.Time) error {
	query, args, err := s.psql.Insert("seen_articles").
		Columns("article_id", "first_seen", "is_funding_related").
		Values(articleID, at.UTC(), fundingRelated).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark seen: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}

// RecordAnnouncement inserts one announcement or returns ErrDuplicateAnnouncement.
func (s *PostgresStore) RecordAnnouncement(ctx context.Context, a domain.Announcement) error {
	var (
		value          float64
		currency, unit string
	)
	if a.Amount != nil {
		value, currency, unit = a.Amount.Value, a.Amount.Currency, string(a.Amount.Unit)
	}

	query, args, err := s.psql.Insert("announcements").
		Columns(announcementColumns...).
		Values(
			a.ArticleID, a.CompanyName, a.FundingStage.String(), value, currency, unit,
			a.Location, int(a.LocationTier), a.Industry, int(a.IndustryTier), a.Score,
			a.Title, a.URL, a.Source, a.Summary, a.PublishedAt.UTC(), a.DetectedAt.UTC(),
		).
		Suffix("ON CONFLICT (article_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build record announcement: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("article %s: %w", a.ArticleID, ErrDuplicateAnnouncement)
		}
		return fmt.Errorf("record announcement: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("article %s: %w", a.ArticleID, ErrDuplicateAnnouncement)
	}
	return nil
}

// PurgeOlderThan deletes seen rows with first_seen strictly before now minus window.
func (s *PostgresStore) PurgeOlderThan(ctx context.Context, window time.Duration) (int64, error) {
	cutoff := s.now().Add(-window).UTC()

	query, args, err := s.psql.Delete("seen_articles").
		Where(sq.Lt{"first_seen": cutoff}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build purge: %w", err)
	}

	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge seen articles: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Pending lists undelivered announcements detected at or after since, in digest order.
func (s *PostgresStore) Pending(ctx context.Context, since time.Time) ([]domain.Announcement, error) {
	cols := make([]string, len(announcementColumns))
	for i, c := range announcementColumns {
		cols[i] = "a." + c
	}

	query, args, err := s.psql.Select(cols...).
		From("announcements a").
		LeftJoin("digest_deliveries d ON d.article_id = a.article_id").
		Where(sq.Eq{"d.article_id": nil}).
		Where(sq.GtOrEq{"a.detected_at": since.UTC()}).
		OrderBy("a.score DESC", "a.detected_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build pending: %w", err)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pending: %w", err)
	}
	defer rows.Close()

	var out []domain.Announcement
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, fmt.Errorf("scan announcement: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return out, nil
}

// MarkDelivered records delivery of the given announcements in one statement.
func (s *PostgresStore) MarkDelivered(ctx context.Context, articleIDs []string, at time.Time) error {
	if len(articleIDs) == 0 {
		return nil
	}

	insert := s.psql.Insert("digest_deliveries").Columns("article_id", "delivered_at")
	for _, id := range articleIDs {
		insert = insert.Values(id, at.UTC())
	}
	query, args, err := insert.Suffix("ON CONFLICT (article_id) DO NOTHING").ToSql()
	if err != nil {
		return fmt.Errorf("build mark delivered: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	return nil
}

// Stats counts rows across the three tables.
func (s *PostgresStore) Stats(ctx context.Context) (domain.StoreStats, error) {
	var st domain.StoreStats
	err := s.db.QueryRow(ctx, statsQuery).Scan(
		&st.SeenArticles, &st.FundingArticles, &st.Announcements, &st.PendingAnnouncements,
	)
	if err != nil {
		return domain.StoreStats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.db.Close()
	return nil
}

func scanAnnouncement(rows pgx.Rows) (domain.Announcement, error) {
	var (
		a                     domain.Announcement
		stage, currency, unit string
		value                 float64
		locTier, indTier      int
	)
	err := rows.Scan(
		&a.ArticleID, &a.CompanyName, &stage, &value, &currency, &unit,
		&a.Location, &locTier, &a.Industry, &indTier, &a.Score,
		&a.Title, &a.URL, &a.Source, &a.Summary, &a.PublishedAt, &a.DetectedAt,
	)
	if err != nil {
		return domain.Announcement{}, err
	}

	a.FundingStage = domain.ParseFundingStage(stage)
	a.LocationTier = domain.LocationTier(locTier)
	a.IndustryTier = domain.IndustryTier(indTier)
	if currency != "" {
		a.Amount = &domain.Amount{Value: value, Currency: currency, Unit: domain.Magnitude(unit)}
	}
	return a, nil
}
