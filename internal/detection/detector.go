// Package detection decides whether an article announces a startup funding round.
// Extraction, scoring and classification are pure functions of the text.
package detection

import (
	"errors"
	"fmt"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/patterns"
)

// ErrInvalidThreshold is returned for thresholds outside [0, 100].
var ErrInvalidThreshold = errors.New("threshold must be within 0..100")

// Config configures a Detector. A nil Library selects the default vocabulary.
type Config struct {
	Threshold int
	Weights   Weights
	Library   *patterns.Library
}

// DefaultConfig returns the stock threshold and weights.
func DefaultConfig() Config {
	return Config{Threshold: DefaultThreshold, Weights: DefaultWeights()}
}

// Validate checks the threshold and the weights table.
func (c Config) Validate() error {
	if c.Threshold < 0 || c.Threshold > MaxScore {
		return fmt.Errorf("%w: got %d", ErrInvalidThreshold, c.Threshold)
	}
	return c.Weights.Validate()
}

// Analysis is the full trace of one detection.
type Analysis struct {
	Extraction domain.ExtractionResult
	Score      domain.ScoreBreakdown
	Decision   domain.Decision
}

// Detector chains Extractor, Scorer and Classifier.
type Detector struct {
	extractor  *Extractor
	scorer     *Scorer
	classifier *Classifier
}

// NewDetector validates cfg and builds the chain.
func NewDetector(cfg Config) (*Detector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Detector{
		extractor:  NewExtractor(cfg.Library),
		scorer:     NewScorer(cfg.Weights),
		classifier: NewClassifier(cfg.Threshold),
	}, nil
}

// Analyze extracts, scores and classifies one article.
func (d *Detector) Analyze(article domain.Article) Analysis {
	res := d.extractor.Extract(article)
	score := d.scorer.Score(res)
	return Analysis{
		Extraction: res,
		Score:      score,
		Decision:   d.classifier.Classify(article, res, score),
	}
}

// Threshold returns the acceptance threshold in use.
func (d *Detector) Threshold() int { return d.classifier.Threshold() }
