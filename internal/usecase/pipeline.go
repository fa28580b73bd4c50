package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"FundingScanner/internal/detection"
	"FundingScanner/internal/domain"
	"FundingScanner/internal/metrics"
	"FundingScanner/internal/ports"
)

// Defaults applied when PipelineDeps leaves a knob at zero.
const (
	DefaultRetention     = 90 * 24 * time.Hour
	DefaultMaxArticleAge = 60 * 24 * time.Hour
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source   ports.ArticleSource
	Store    ports.Store
	Detector *detection.Detector
	Notifier ports.Notifier
	Logger   *slog.Logger

	Retention     time.Duration
	MaxArticleAge time.Duration
	Digest        domain.DigestKind
	SendEmpty     bool
}

// Pipeline implements the funding-detection workflow.
type Pipeline struct {
	source   ports.ArticleSource
	store    ports.Store
	detector *detection.Detector
	notifier ports.Notifier
	logger   *slog.Logger

	retention     time.Duration
	maxArticleAge time.Duration
	digest        domain.DigestKind
	sendEmpty     bool
}

// Report summarises one run.
type Report struct {
	Fetched     int
	Stale       int
	AlreadySeen int
	Accepted    int
	Rejected    int
	Duplicates  int
	Purged      int64
	Digested    int
	DigestSent  bool
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	if deps.Source == nil {
		return nil, errors.New("pipeline: article source is required")
	}
	if deps.Store == nil {
		return nil, errors.New("pipeline: store is required")
	}
	if deps.Detector == nil {
		return nil, errors.New("pipeline: detector is required")
	}

	p := &Pipeline{
		source:        deps.Source,
		store:         deps.Store,
		detector:      deps.Detector,
		notifier:      deps.Notifier,
		logger:        deps.Logger,
		retention:     deps.Retention,
		maxArticleAge: deps.MaxArticleAge,
		digest:        deps.Digest,
		sendEmpty:     deps.SendEmpty,
	}
	if p.logger == nil {
		p.logger = slog.New(slog.DiscardHandler)
	}
	if p.retention <= 0 {
		p.retention = DefaultRetention
	}
	if p.maxArticleAge <= 0 {
		p.maxArticleAge = DefaultMaxArticleAge
	}
	if p.digest == "" {
		p.digest = domain.DigestDaily
	}
	return p, nil
}

// Run fetches one batch, records announcements, purges old bookkeeping and sends the digest.
// Store errors abort the run. A failed digest leaves announcements pending for the next run.
func (p *Pipeline) Run(ctx context.Context, now time.Time) (Report, error) {
	started := time.Now()
	report, err := p.run(ctx, now)
	metrics.RecordRun(err, time.Since(started).Seconds(), float64(time.Now().Unix()))
	return report, err
}

func (p *Pipeline) run(ctx context.Context, now time.Time) (Report, error) {
	var report Report
	p.logger.Info("run started", "now", now, "threshold", p.detector.Threshold(), "digest", p.digest)

	articles, err := p.source.Fetch(ctx, now)
	if err != nil {
		return report, fmt.Errorf("fetch articles: %w", err)
	}
	report.Fetched = len(articles)

	if err := p.process(ctx, now, articles, &report); err != nil {
		return report, err
	}

	purged, err := p.Purge(ctx)
	if err != nil {
		return report, err
	}
	report.Purged = purged

	if err := p.deliver(ctx, now, &report); err != nil {
		return report, err
	}

	p.logger.Info("run finished",
		"fetched", report.Fetched,
		"stale", report.Stale,
		"already_seen", report.AlreadySeen,
		"accepted", report.Accepted,
		"rejected", report.Rejected,
		"duplicates", report.Duplicates,
		"purged", report.Purged,
		"digested", report.Digested,
		"digest_sent", report.DigestSent,
	)
	p.logStats(ctx)
	return report, nil
}

func (p *Pipeline) process(ctx context.Context, now time.Time, articles []domain.Article, report *Report) error {
	cutoff := now.Add(-p.maxArticleAge)
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !article.PublishedAt.IsZero() && article.PublishedAt.Before(cutoff) {
			report.Stale++
			metrics.RecordArticle(metrics.OutcomeStale)
			continue
		}

		seen, err := p.store.HasSeen(ctx, article.ID)
		if err != nil {
			p.logger.Error("dedup lookup failed", "article", article.ID, "error", err)
			return fmt.Errorf("check seen %s: %w", article.ID, err)
		}
		if seen {
			report.AlreadySeen++
			metrics.RecordArticle(metrics.OutcomeSeen)
			continue
		}

		analysis := p.detector.Analyze(article)
		decision := analysis.Decision
		if decision.Accepted {
			if err := p.record(ctx, now, decision.Announcement, report); err != nil {
				return err
			}
		} else {
			report.Rejected++
			metrics.RecordArticle(metrics.OutcomeRejected)
			p.logger.Debug("article rejected",
				"article", article.ID,
				"title", article.Title,
				"score", analysis.Score.Total,
				"reason", decision.Reason,
			)
		}

		if err := p.store.MarkSeen(ctx, article.ID, decision.Accepted, now); err != nil {
			p.logger.Error("mark seen failed", "article", article.ID, "error", err)
			return fmt.Errorf("mark seen %s: %w", article.ID, err)
		}
	}
	return nil
}

func (p *Pipeline) record(ctx context.Context, now time.Time, announcement domain.Announcement, report *Report) error {
	announcement.DetectedAt = now
	err := p.store.RecordAnnouncement(ctx, announcement)
	switch {
	case errors.Is(err, ports.ErrDuplicateAnnouncement):
		report.Duplicates++
		metrics.RecordDuplicate()
		p.logger.Warn("duplicate announcement skipped", "article", announcement.ArticleID)
		return nil
	case err != nil:
		p.logger.Error("record announcement failed", "article", announcement.ArticleID, "error", err)
		return fmt.Errorf("record announcement %s: %w", announcement.ArticleID, err)
	}

	report.Accepted++
	metrics.RecordArticle(metrics.OutcomeAccepted)
	p.logger.Info("funding announcement detected",
		"company", announcement.DisplayCompany(),
		"stage", announcement.DisplayStage(),
		"amount", announcement.DisplayAmount(),
		"location", announcement.DisplayLocation(),
		"score", announcement.Score,
		"url", announcement.URL,
	)
	return nil
}

// Purge removes seen-article rows older than the retention window.
func (p *Pipeline) Purge(ctx context.Context) (int64, error) {
	purged, err := p.store.PurgeOlderThan(ctx, p.retention)
	if err != nil {
		p.logger.Error("purge failed", "error", err)
		return 0, fmt.Errorf("purge seen articles: %w", err)
	}
	metrics.RecordPurge(purged)
	if purged > 0 {
		p.logger.Info("purged seen articles", "count", purged, "retention", p.retention)
	}
	return purged, nil
}

func (p *Pipeline) deliver(ctx context.Context, now time.Time, report *Report) error {
	if p.notifier == nil {
		return nil
	}

	pending, err := p.store.Pending(ctx, now.Add(-p.digest.Lookback()))
	if err != nil {
		return fmt.Errorf("load pending announcements: %w", err)
	}
	if len(pending) == 0 && !p.sendEmpty {
		metrics.RecordDigest("skipped")
		p.logger.Info("no pending announcements, digest skipped")
		return nil
	}

	domain.SortForDigest(pending)
	digest := domain.Digest{Kind: p.digest, GeneratedAt: now, Announcements: pending}
	if err := p.notifier.PublishDigest(ctx, digest); err != nil {
		metrics.RecordDigest("failed")
		p.logger.Error("digest delivery failed", "announcements", len(pending), "error", err)
		return fmt.Errorf("publish digest: %w", err)
	}

	if len(pending) > 0 {
		ids := make([]string, len(pending))
		for i, a := range pending {
			ids[i] = a.ArticleID
		}
		if err := p.store.MarkDelivered(ctx, ids, now); err != nil {
			return fmt.Errorf("mark delivered: %w", err)
		}
	}

	metrics.RecordDigest("sent")
	report.Digested = len(pending)
	report.DigestSent = true
	p.logger.Info("digest delivered", "kind", p.digest, "announcements", len(pending))
	return nil
}

// Stats returns persisted counters.
func (p *Pipeline) Stats(ctx context.Context) (domain.StoreStats, error) {
	return p.store.Stats(ctx)
}

func (p *Pipeline) logStats(ctx context.Context) {
	st, err := p.store.Stats(ctx)
	if err != nil {
		p.logger.Warn("stats unavailable", "error", err)
		return
	}
	p.logger.Info("store stats",
		"seen_articles", st.SeenArticles,
		"funding_articles", st.FundingArticles,
		"announcements", st.Announcements,
		"pending", st.PendingAnnouncements,
	)
}
