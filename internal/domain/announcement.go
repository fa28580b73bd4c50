package domain

import (
	"sort"
	"time"
)

// Signal names a scoring line item.
type Signal string

const (
	SignalFundingKeyword           Signal = "funding_keyword"
	SignalFundingStage             Signal = "funding_stage"
	SignalLocationUK               Signal = "location_uk"
	SignalLocationEuropeMiddleEast Signal = "location_europe_middle_east"
	SignalIndustryFintechSaaS      Signal = "industry_fintech_saas"
	SignalIndustryOtherTech        Signal = "industry_other_tech"
)

// Contribution is the points one signal added to a score.
type Contribution struct {
	Signal Signal
	Points int
}

// ScoreBreakdown is the capped score plus its itemised contributions.
type ScoreBreakdown struct {
	Total         int
	Contributions []Contribution
}

// Points returns the contribution of a single signal, zero if it did not apply.
func (b ScoreBreakdown) Points(signal Signal) int {
	for _, c := range b.Contributions {
		if c.Signal == signal {
			return c.Points
		}
	}
	return 0
}

// Announcement is a persisted funding announcement. It is never mutated after insertion.
type Announcement struct {
	ArticleID    string
	CompanyName  string
	FundingStage FundingStage
	Amount       *Amount
	Location     string
	LocationTier LocationTier
	Industry     string
	IndustryTier IndustryTier
	Score        int
	Title        string
	URL          string
	Source       string
	Summary      string
	PublishedAt  time.Time
	DetectedAt   time.Time
}

// SeenArticle is the bookkeeping row written on the first encounter of an identifier.
type SeenArticle struct {
	ArticleID        string
	FirstSeen        time.Time
	IsFundingRelated bool
}

// Decision is the classifier verdict for one article.
type Decision struct {
	Accepted     bool
	Reason       string
	Announcement Announcement
}

// DigestKind selects the lookback window of a digest.
type DigestKind string

const (
	DigestDaily  DigestKind = "daily"
	DigestWeekly DigestKind = "weekly"
)

// Lookback returns how far back pending announcements are collected.
func (k DigestKind) Lookback() time.Duration {
	if k == DigestWeekly {
		return 7 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// Digest is the ordered list handed to notifiers.
type Digest struct {
	Kind          DigestKind
	GeneratedAt   time.Time
	Announcements []Announcement
}

// StoreStats summarises persisted state.
type StoreStats struct {
	SeenArticles         int64
	FundingArticles      int64
	Announcements        int64
	PendingAnnouncements int64
}

// SortForDigest orders by descending score, then ascending detection time.
func SortForDigest(items []Announcement) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].DetectedAt.Before(items[j].DetectedAt)
	})
}

// Display fallbacks used when rendering an announcement.
const (
	UnknownValue    = "Unknown"
	UnspecifiedSum  = "Not specified"
	DefaultIndustry = "Tech"
)

// DisplayCompany returns the company or a placeholder.
func (a Announcement) DisplayCompany() string {
	return orDefault(a.CompanyName, UnknownValue)
}

// DisplayStage returns the stage or a placeholder.
func (a Announcement) DisplayStage() string {
	return orDefault(a.FundingStage.String(), UnknownValue)
}

// DisplayAmount returns the amount or a placeholder.
func (a Announcement) DisplayAmount() string {
	if a.Amount == nil {
		return UnspecifiedSum
	}
	return a.Amount.String()
}

// DisplayLocation returns the location or a placeholder.
func (a Announcement) DisplayLocation() string {
	return orDefault(a.Location, UnknownValue)
}

// DisplayIndustry returns the industry or a placeholder.
func (a Announcement) DisplayIndustry() string {
	return orDefault(a.Industry, DefaultIndustry)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
