package app

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FundingScanner/internal/config"
	"FundingScanner/internal/domain"
	"FundingScanner/internal/logging"
)

var fixedNow = time.Date(2025, 10, 7, 6, 0, 0, 0, time.UTC)

type fixedSource []domain.Article

func (s fixedSource) Fetch(context.Context, time.Time) ([]domain.Article, error) {
	return s, nil
}

func articles() fixedSource {
	return fixedSource{
		{
			ID:          "acme",
			Title:       "Acme Pay raises £10M Series A to expand UK fintech offering",
			URL:         "https://example.com/acme",
			Source:      "TechCrunch",
			PublishedAt: fixedNow.Add(-3 * time.Hour),
		},
		{
			ID:          "weather",
			Title:       "London weather turns cold",
			URL:         "https://example.com/weather",
			Source:      "Sifted",
			PublishedAt: fixedNow.Add(-time.Hour),
		},
	}
}

func TestDryRunPrintsDigest(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cfg := config.Default()
	a, err := New(context.Background(), cfg, logging.NewWithWriter(&bytes.Buffer{}, "error", "text"), Options{
		DryRun: true,
		Stdout: &out,
		Source: articles(),
		Clock:  func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	defer a.Close()

	report, err := a.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Accepted)
	assert.Equal(t, 1, report.Rejected)
	assert.Contains(t, out.String(), "Daily Funding Digest - 1 New Opportunities - 2025-10-07")
	assert.Contains(t, out.String(), "Acme Pay")

	st, err := a.Stats(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.SeenArticles)
}

func TestFileStorePersistsAcrossApplications(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "funding.json")
	quiet := logging.NewWithWriter(&bytes.Buffer{}, "error", "json")

	open := func() *Application {
		a, err := New(context.Background(), cfg, quiet, Options{
			Stdout: &bytes.Buffer{},
			Source: articles(),
			Clock:  func() time.Time { return fixedNow },
		})
		require.NoError(t, err)
		return a
	}

	first := open()
	_, err := first.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second := open()
	defer second.Close()
	report, err := second.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, report.AlreadySeen)
	assert.Zero(t, report.Accepted)

	purged, err := second.Purge(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
}

func TestNewDetectorRejectsBadVocabulary(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Detection.Vocabulary.FundingKeywords = []string{"   "}
	_, err := NewDetector(cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrInvalidConfig))
}

func TestDaemonStopsOnCancel(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Scheduler.Interval = time.Hour
	a, err := New(context.Background(), cfg, logging.NewWithWriter(&bytes.Buffer{}, "error", "text"), Options{
		DryRun: true,
		Stdout: &bytes.Buffer{},
		Source: articles(),
		Clock:  func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Daemon(ctx) }()

	require.Eventually(t, func() bool {
		st, err := a.Stats(context.Background())
		return err == nil && st.SeenArticles == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}
