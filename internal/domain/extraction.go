package domain

import (
	"strconv"
	"strings"
)

// FundingStage enumerates the rounds the detector recognises, ordered from earliest to latest.
type FundingStage int

const (
	StageNone FundingStage = iota
	StageSeed
	StageSeriesA
	StageSeriesB
	StageSeriesC
)

var stageNames = map[FundingStage]string{
	StageSeed:    "Seed",
	StageSeriesA: "Series A",
	StageSeriesB: "Series B",
	StageSeriesC: "Series C",
}

// String returns the display name, or an empty string for StageNone.
func (s FundingStage) String() string {
	return stageNames[s]
}

// ParseFundingStage reverses String; unknown input yields StageNone.
func ParseFundingStage(value string) FundingStage {
	for stage, name := range stageNames {
		if strings.EqualFold(strings.TrimSpace(value), name) {
			return stage
		}
	}
	return StageNone
}

// Magnitude is the unit suffix of a monetary amount.
type Magnitude string

const (
	MagnitudeThousand Magnitude = "K"
	MagnitudeMillion  Magnitude = "M"
	MagnitudeBillion  Magnitude = "B"
)

// Multiplier converts the suffix to its integer factor.
func (m Magnitude) Multiplier() int64 {
	switch m {
	case MagnitudeThousand:
		return 1_000
	case MagnitudeMillion:
		return 1_000_000
	case MagnitudeBillion:
		return 1_000_000_000
	default:
		return 1
	}
}

// Amount keeps the figure as written next to its multiplier so the raw value stays reproducible.
type Amount struct {
	Value    float64
	Currency string
	Unit     Magnitude
}

// Normalized returns Value * multiplier.
func (a Amount) Normalized() float64 {
	return a.Value * float64(a.Unit.Multiplier())
}

var currencySymbols = map[string]string{
	"USD": "$",
	"GBP": "£",
	"EUR": "€",
}

// String renders the amount like "£10M" or "USD 2.5B" for unknown symbols.
func (a Amount) String() string {
	value := strconv.FormatFloat(a.Value, 'f', -1, 64)
	if symbol, ok := currencySymbols[a.Currency]; ok {
		return symbol + value + string(a.Unit)
	}
	return strings.TrimSpace(a.Currency+" "+value) + string(a.Unit)
}

// LocationTier buckets geographic matches by priority.
type LocationTier int

const (
	LocationOther LocationTier = iota
	LocationEuropeMiddleEast
	LocationUK
)

func (t LocationTier) String() string {
	switch t {
	case LocationUK:
		return "UK"
	case LocationEuropeMiddleEast:
		return "Europe/MiddleEast"
	default:
		return "Other"
	}
}

// IndustryTier buckets sector matches by priority.
type IndustryTier int

const (
	IndustryOtherTech IndustryTier = iota
	IndustryFintechSaaS
)

func (t IndustryTier) String() string {
	if t == IndustryFintechSaaS {
		return "FintechSaaS"
	}
	return "OtherTech"
}

// LocationMatch is one matched location token.
type LocationMatch struct {
	Token string
	Tier  LocationTier
}

// IndustryMatch is one matched industry token with the sector label of its rule.
type IndustryMatch struct {
	Token  string
	Sector string
	Tier   IndustryTier
}

// ExtractionResult holds candidate facts pulled from article text. Every field comes from a
// pattern hit; nothing is filled in without one.
type ExtractionResult struct {
	CompanyName       string
	FundingStage      FundingStage
	Amount            *Amount
	Locations         []LocationMatch
	Industries        []IndustryMatch
	FundingKeywords   []string
	HasFundingKeyword bool
}

// HasLocationTier reports whether any location of the given tier matched.
func (r ExtractionResult) HasLocationTier(tier LocationTier) bool {
	for _, loc := range r.Locations {
		if loc.Tier == tier {
			return true
		}
	}
	return false
}

// HasIndustryTier reports whether any industry of the given tier matched.
func (r ExtractionResult) HasIndustryTier(tier IndustryTier) bool {
	for _, ind := range r.Industries {
		if ind.Tier == tier {
			return true
		}
	}
	return false
}

// PrimaryLocation is the first-occurring match of the highest tier present.
func (r ExtractionResult) PrimaryLocation() (LocationMatch, bool) {
	var (
		best  LocationMatch
		found bool
	)
	for _, loc := range r.Locations {
		if !found || loc.Tier > best.Tier {
			best, found = loc, true
		}
	}
	return best, found
}

// PrimaryIndustry is the first-occurring match of the highest tier present.
func (r ExtractionResult) PrimaryIndustry() (IndustryMatch, bool) {
	var (
		best  IndustryMatch
		found bool
	)
	for _, ind := range r.Industries {
		if !found || ind.Tier > best.Tier {
			best, found = ind, true
		}
	}
	return best, found
}
