package detection

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"FundingScanner/internal/domain"
)

// DefaultThreshold is the minimum score for acceptance.
const DefaultThreshold = 50

const maxSummaryLen = 500

// Reject reasons.
const (
	ReasonNoFundingKeyword = "no funding keyword"
	ReasonBelowThreshold   = "below threshold"
)

// Classifier gates on the funding keyword, then on the threshold.
type Classifier struct {
	threshold int
}

// NewClassifier binds a threshold in [0, 100].
func NewClassifier(threshold int) *Classifier {
	return &Classifier{threshold: threshold}
}

// Threshold returns the acceptance threshold.
func (c *Classifier) Threshold() int { return c.threshold }

// Classify accepts when a funding keyword is present and the score reaches the threshold.
// DetectedAt is left zero; the caller stamps it with its own clock.
func (c *Classifier) Classify(article domain.Article, res domain.ExtractionResult, score domain.ScoreBreakdown) domain.Decision {
	if !res.HasFundingKeyword {
		return domain.Decision{Reason: ReasonNoFundingKeyword}
	}
	if score.Total < c.threshold {
		return domain.Decision{Reason: fmt.Sprintf("%s (%d < %d)", ReasonBelowThreshold, score.Total, c.threshold)}
	}

	ann := domain.Announcement{
		ArticleID:    article.ID,
		CompanyName:  res.CompanyName,
		FundingStage: res.FundingStage,
		Amount:       res.Amount,
		Score:        score.Total,
		Title:        article.Title,
		URL:          article.URL,
		Source:       article.Source,
		Summary:      truncate(article.Description, maxSummaryLen),
		PublishedAt:  article.PublishedAt,
	}
	if loc, ok := res.PrimaryLocation(); ok {
		ann.Location, ann.LocationTier = loc.Token, loc.Tier
	}
	if ind, ok := res.PrimaryIndustry(); ok {
		ann.Industry, ann.IndustryTier = ind.Sector, ind.Tier
	}

	return domain.Decision{Accepted: true, Announcement: ann}
}

func truncate(s string, limit int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}
