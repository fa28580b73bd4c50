package parser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v5"
	"github.com/mmcdole/gofeed"
	"golang.org/x/time/rate"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/scanner"
)

const defaultUserAgent = "FundingScanner/1.0 (+https://github.com/fundingscanner)"

// RSSOptions controls transport behaviour of the feed scanner.
type RSSOptions struct {
	Timeout   time.Duration
	Retries   int
	Backoff   time.Duration
	Delay     time.Duration
	UserAgent string
}

// RSSScanner fetches RSS/Atom feeds and converts entries to articles.
type RSSScanner struct {
	client  *http.Client
	opts    RSSOptions
	limiter *rate.Limiter
}

var _ scanner.Scanner = (*RSSScanner)(nil)

// NewRSSScanner wires an HTTP client; zero options fall back to 10s timeout, 3 tries,
// 1s initial backoff and no delay between requests.
func NewRSSScanner(client *http.Client, opts RSSOptions) *RSSScanner {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Retries <= 0 {
		opts.Retries = 3
	}
	if opts.Backoff <= 0 {
		opts.Backoff = time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &RSSScanner{
		client:  client,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// Name identifies the strategy inside the registry.
func (s *RSSScanner) Name() string {
	return "rss"
}

// Scan downloads one feed and returns its entries in feed order. Entries without a
// title or link are dropped.
func (s *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no feed url provided for site %s", req.SiteName)
	}

	feed, err := s.fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("feed %s: %w", req.SiteName, err)
	}

	fetchedAt := req.Now
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		article, ok := toArticle(item, req.SiteName, fetchedAt)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (s *RSSScanner) fetch(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.Backoff

	operation := func() (*gofeed.Feed, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, backoff.Permanent(err)
		}

		reqCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()

		fp := gofeed.NewParser()
		fp.Client = s.client
		fp.UserAgent = s.opts.UserAgent

		feed, err := fp.ParseURLWithContext(feedURL, reqCtx)
		if err == nil {
			return feed, nil
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}

		var httpErr gofeed.HTTPError
		if errors.As(err, &httpErr) && !retryableStatus(httpErr.StatusCode) {
			return nil, backoff.Permanent(err)
		}
		if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(eb),
		backoff.WithMaxTries(uint(s.opts.Retries)),
	)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func toArticle(item *gofeed.Item, source string, fetchedAt time.Time) (domain.Article, bool) {
	title := htmlToText(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	description := item.Description
	if strings.TrimSpace(description) == "" {
		description = item.Content
	}

	published := fetchedAt
	switch {
	case item.PublishedParsed != nil:
		published = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		published = *item.UpdatedParsed
	}

	return domain.Article{
		ID:          domain.ArticleID(item.GUID, link, source, title),
		Title:       title,
		Description: htmlToText(description),
		URL:         link,
		Source:      source,
		PublishedAt: published.UTC(),
	}, true
}

// htmlToText strips markup and collapses whitespace.
func htmlToText(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.Join(strings.Fields(raw), " ")
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
