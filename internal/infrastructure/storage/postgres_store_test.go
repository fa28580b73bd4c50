package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundingScanner/internal/domain"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock, WithClock(fixedClock)), mock
}

// announcementColumns is the number of values bound by the announcements insert.
const announcementColumns = 17

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestPostgresHasSeen(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM seen_articles WHERE article_id = $1")).
		WithArgs("a1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("a2").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(0)))

	seen, err := store.HasSeen(context.Background(), "a1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = store.HasSeen(context.Background(), "a2")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkSeenIgnoresConflicts(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seen_articles (article_id,first_seen,is_funding_related) VALUES ($1,$2,$3) ON CONFLICT (article_id) DO NOTHING")).
		WithArgs("a1", testNow, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO seen_articles").
		WithArgs("a1", testNow, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, store.MarkSeen(context.Background(), "a1", true, testNow))
	require.NoError(t, store.MarkSeen(context.Background(), "a1", false, testNow))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRecordAnnouncement(t *testing.T) {
	t.Parallel()

	a := announcement("a1", 100, testNow)
	a.Location, a.LocationTier = "UK", domain.LocationUK

	t.Run("inserted", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO announcements").
			WithArgs("a1", "Acme", "Series A", 10.0, "GBP", "M", "UK", 2, "", 0, 100,
				"Acme raises", "https://example.com/a1", "", "", testNow, testNow).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.RecordAnnouncement(context.Background(), a))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("conflict", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO announcements").
			WithArgs(anyArgs(announcementColumns)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := store.RecordAnnouncement(context.Background(), a)
		require.ErrorIs(t, err, ErrDuplicateAnnouncement)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO announcements").
			WithArgs(anyArgs(announcementColumns)...).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		err := store.RecordAnnouncement(context.Background(), a)
		require.ErrorIs(t, err, ErrDuplicateAnnouncement)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other failure", func(t *testing.T) {
		store, mock := newMockStore(t)
		mock.ExpectExec("INSERT INTO announcements").
			WithArgs(anyArgs(announcementColumns)...).
			WillReturnError(errors.New("connection reset"))

		err := store.RecordAnnouncement(context.Background(), a)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "record announcement: connection reset")
		assert.NotErrorIs(t, err, ErrDuplicateAnnouncement)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresPurgeUsesStrictCutoff(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	cutoff := testNow.Add(-90 * 24 * time.Hour)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seen_articles WHERE first_seen < $1")).
		WithArgs(cutoff).
		WillReturnResult(pgxmock.NewResult("DELETE", 4))

	purged, err := store.PurgeOlderThan(context.Background(), 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(4), purged)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPending(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	since := testNow.Add(-24 * time.Hour)
	cols := append([]string(nil), announcementColumns...)
	rows := pgxmock.NewRows(cols).
		AddRow("a1", "Acme", "Series A", 10.0, "GBP", "M", "UK", 2, "Fintech", 1, 100,
			"Acme raises", "https://example.com/a1", "TechCrunch", "", testNow, testNow).
		AddRow("a2", "", "", 0.0, "", "", "", 0, "", 0, 55,
			"Someone raised", "https://example.com/a2", "Sifted", "", testNow, testNow)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN digest_deliveries d ON d.article_id = a.article_id WHERE d.article_id IS NULL AND a.detected_at >= $1 ORDER BY a.score DESC, a.detected_at ASC")).
		WithArgs(since).
		WillReturnRows(rows)

	got, err := store.Pending(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, domain.StageSeriesA, got[0].FundingStage)
	require.NotNil(t, got[0].Amount)
	assert.Equal(t, "£10M", got[0].Amount.String())
	assert.Equal(t, domain.LocationUK, got[0].LocationTier)
	assert.Equal(t, domain.IndustryFintechSaaS, got[0].IndustryTier)

	assert.Nil(t, got[1].Amount)
	assert.Equal(t, domain.StageNone, got[1].FundingStage)
	assert.Equal(t, domain.UnknownValue, got[1].DisplayCompany())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMarkDelivered(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO digest_deliveries (article_id,delivered_at) VALUES ($1,$2),($3,$4) ON CONFLICT (article_id) DO NOTHING")).
		WithArgs("a1", testNow, "a2", testNow).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	require.NoError(t, store.MarkDelivered(context.Background(), []string{"a1", "a2"}, testNow))
	require.NoError(t, store.MarkDelivered(context.Background(), nil, testNow))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStats(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectQuery("SELECT").
		WillReturnRows(pgxmock.NewRows([]string{"seen", "funding", "announcements", "pending"}).
			AddRow(int64(10), int64(4), int64(3), int64(1)))

	st, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StoreStats{SeenArticles: 10, FundingArticles: 4, Announcements: 3, PendingAnnouncements: 1}, st)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresEnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS seen_articles").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
