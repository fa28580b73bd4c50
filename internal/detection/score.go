package detection

import (
	"fmt"

	"FundingScanner/internal/domain"
)

// MaxScore caps the relevance score.
const MaxScore = 100

// Weights is the per-signal points table.
type Weights struct {
	FundingKeyword           int `yaml:"fundingKeyword"`
	FundingStage             int `yaml:"fundingStage"`
	LocationUK               int `yaml:"locationUK"`
	LocationEuropeMiddleEast int `yaml:"locationEuropeMiddleEast"`
	IndustryFintechSaaS      int `yaml:"industryFintechSaaS"`
	IndustryOtherTech        int `yaml:"industryOtherTech"`
}

// DefaultWeights returns the stock table.
func DefaultWeights() Weights {
	return Weights{
		FundingKeyword:           30,
		FundingStage:             20,
		LocationUK:               30,
		LocationEuropeMiddleEast: 15,
		IndustryFintechSaaS:      20,
		IndustryOtherTech:        10,
	}
}

// Validate rejects negative weights and tier orderings that would let an extra
// signal lower the score.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value int
	}{
		{"fundingKeyword", w.FundingKeyword},
		{"fundingStage", w.FundingStage},
		{"locationUK", w.LocationUK},
		{"locationEuropeMiddleEast", w.LocationEuropeMiddleEast},
		{"industryFintechSaaS", w.IndustryFintechSaaS},
		{"industryOtherTech", w.IndustryOtherTech},
	}
	for _, n := range named {
		if n.value < 0 {
			return fmt.Errorf("weight %s must not be negative (got %d)", n.name, n.value)
		}
	}
	if w.LocationUK < w.LocationEuropeMiddleEast {
		return fmt.Errorf("weight locationUK (%d) must be >= locationEuropeMiddleEast (%d)", w.LocationUK, w.LocationEuropeMiddleEast)
	}
	if w.IndustryFintechSaaS < w.IndustryOtherTech {
		return fmt.Errorf("weight industryFintechSaaS (%d) must be >= industryOtherTech (%d)", w.IndustryFintechSaaS, w.IndustryOtherTech)
	}
	return nil
}

// Scorer computes a deterministic 0-100 score from hit flags.
type Scorer struct {
	weights Weights
}

// NewScorer binds a weights table.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score sums applicable line items. Only the highest location tier and the highest
// industry tier present contribute.
func (s *Scorer) Score(res domain.ExtractionResult) domain.ScoreBreakdown {
	var b domain.ScoreBreakdown
	add := func(signal domain.Signal, points int) {
		b.Contributions = append(b.Contributions, domain.Contribution{Signal: signal, Points: points})
		b.Total += points
	}

	if res.HasFundingKeyword {
		add(domain.SignalFundingKeyword, s.weights.FundingKeyword)
	}
	if res.FundingStage != domain.StageNone {
		add(domain.SignalFundingStage, s.weights.FundingStage)
	}

	switch {
	case res.HasLocationTier(domain.LocationUK):
		add(domain.SignalLocationUK, s.weights.LocationUK)
	case res.HasLocationTier(domain.LocationEuropeMiddleEast):
		add(domain.SignalLocationEuropeMiddleEast, s.weights.LocationEuropeMiddleEast)
	}

	switch {
	case res.HasIndustryTier(domain.IndustryFintechSaaS):
		add(domain.SignalIndustryFintechSaaS, s.weights.IndustryFintechSaaS)
	case res.HasIndustryTier(domain.IndustryOtherTech):
		add(domain.SignalIndustryOtherTech, s.weights.IndustryOtherTech)
	}

	if b.Total > MaxScore {
		b.Total = MaxScore
	}
	return b
}
