package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"FundingScanner/internal/config"
	"FundingScanner/internal/domain"
	"FundingScanner/internal/metrics"
	"FundingScanner/internal/ports"
	"FundingScanner/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	sources  []config.SourceConfig
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		sources:  sources,
		logger:   log,
	}
}

// Fetch runs every configured source in order. A failing source is logged and skipped;
// the call fails only when no source succeeded.
func (s *StrategySource) Fetch(ctx context.Context, now time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	s.debug("fetch sources", "sources", len(s.sources))

	var (
		aggregated []domain.Article
		failures   []error
	)
	for _, src := range s.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		results, err := s.scan(ctx, src, now)
		if err != nil {
			failures = append(failures, err)
			metrics.RecordSourceFailure(src.Name)
			if s.logger != nil {
				s.logger.Warn("source failed", "source", src.Name, "error", err)
			}
			continue
		}

		s.debug("source produced articles", "source", src.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(failures) == len(s.sources) {
		return nil, fmt.Errorf("all %d sources failed: %w", len(failures), errors.Join(failures...))
	}

	s.debug("strategy source done", "total_articles", len(aggregated), "failed_sources", len(failures))
	return aggregated, nil
}

func (s *StrategySource) scan(ctx context.Context, src config.SourceConfig, now time.Time) ([]domain.Article, error) {
	name := src.Scanner
	if name == "" {
		name = "rss"
	}
	strategy, err := s.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.Name, err)
	}

	results, err := strategy.Scan(ctx, scanner.Request{
		Now:      now,
		SiteName: src.Name,
		URL:      src.URL,
		Options:  src.Options,
	})
	if err != nil {
		return nil, fmt.Errorf("scan source %s: %w", src.Name, err)
	}

	for i := range results {
		if results[i].Source == "" {
			results[i].Source = src.Name
		}
	}
	return results, nil
}

func (s *StrategySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
