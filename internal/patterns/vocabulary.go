package patterns

import "fmt"

// Vocabulary is the token data every rule is compiled from. Phrases are matched
// case-insensitively, whitespace inside a phrase matches any run of whitespace, and
// each phrase is anchored on word boundaries where it starts or ends with a letter or digit.
type Vocabulary struct {
	FundingKeywords     []string `yaml:"fundingKeywords"`
	SeedStage           []string `yaml:"seedStage"`
	SeriesAStage        []string `yaml:"seriesAStage"`
	SeriesBStage        []string `yaml:"seriesBStage"`
	SeriesCStage        []string `yaml:"seriesCStage"`
	UKLocations         []string `yaml:"ukLocations"`
	EuropeLocations     []string `yaml:"europeLocations"`
	MiddleEastLocations []string `yaml:"middleEastLocations"`
	OtherLocations      []string `yaml:"otherLocations"`
	FintechIndustries   []string `yaml:"fintechIndustries"`
	SaaSIndustries      []string `yaml:"saasIndustries"`
	OtherTechIndustries []string `yaml:"otherTechIndustries"`
}

// DefaultVocabulary returns the built-in token lists.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		FundingKeywords: []string{
			"raises", "raised", "raising", "secures", "secured", "closes", "closed",
			"funding", "investment", "investments", "backs", "backed",
		},
		SeedStage:    []string{"pre-seed", "preseed", "seed"},
		SeriesAStage: []string{"series a", "series-a"},
		SeriesBStage: []string{"series b", "series-b"},
		SeriesCStage: []string{"series c", "series-c"},
		UKLocations: []string{
			"UK", "U.K.", "United Kingdom", "Britain", "British", "England", "Scotland", "Wales",
			"London", "Manchester", "Edinburgh", "Bristol", "Cambridge", "Oxford", "Birmingham",
			"Leeds", "Glasgow",
		},
		EuropeLocations: []string{
			"Europe", "European", "Berlin", "Paris", "Amsterdam", "Stockholm", "Dublin", "Copenhagen",
			"Zurich", "Barcelona", "Madrid", "Milan", "Lisbon", "Brussels", "Munich", "Hamburg",
			"Vienna", "Germany", "France", "Spain", "Italy", "Netherlands", "Sweden", "Denmark",
			"Norway", "Finland", "Ireland", "Switzerland", "Portugal", "Belgium", "Austria",
			"Poland", "Estonia",
		},
		MiddleEastLocations: []string{
			"Middle East", "Dubai", "Abu Dhabi", "UAE", "U.A.E.", "Tel Aviv", "Israel", "Israeli",
			"Riyadh", "Saudi Arabia", "Bahrain", "Qatar", "Doha", "Kuwait",
		},
		OtherLocations: []string{
			"U.S.", "United States", "New York", "San Francisco", "Silicon Valley", "Boston",
			"Austin", "Toronto", "Singapore", "India", "Bangalore", "Tokyo", "Sydney", "Lagos",
			"Nairobi", "Sao Paulo", "São Paulo",
		},
		FintechIndustries: []string{
			"fintech", "financial technology", "payment", "payments", "banking", "digital bank",
			"neobank", "crypto", "cryptocurrency", "blockchain", "digital wallet", "wealthtech",
		},
		SaaSIndustries: []string{
			"SaaS", "software-as-a-service", "B2B software", "enterprise software",
			"cloud software", "cloud platform",
		},
		OtherTechIndustries: []string{
			"tech-enabled", "proptech", "healthtech", "edtech", "insurtech", "climate tech",
			"climatetech", "biotech", "deeptech", "robotics", "AI", "artificial intelligence",
			"machine learning", "data analytics", "cybersecurity",
		},
	}
}

// Validate rejects empty lists and blank phrases.
func (v Vocabulary) Validate() error {
	for name, list := range v.lists() {
		if len(list) == 0 {
			return fmt.Errorf("vocabulary %s is empty", name)
		}
		for i, phrase := range list {
			if normalizePhrase(phrase) == "" {
				return fmt.Errorf("vocabulary %s: entry %d is blank", name, i)
			}
		}
	}
	return nil
}

func (v Vocabulary) lists() map[string][]string {
	return map[string][]string{
		"fundingKeywords":     v.FundingKeywords,
		"seedStage":           v.SeedStage,
		"seriesAStage":        v.SeriesAStage,
		"seriesBStage":        v.SeriesBStage,
		"seriesCStage":        v.SeriesCStage,
		"ukLocations":         v.UKLocations,
		"europeLocations":     v.EuropeLocations,
		"middleEastLocations": v.MiddleEastLocations,
		"otherLocations":      v.OtherLocations,
		"fintechIndustries":   v.FintechIndustries,
		"saasIndustries":      v.SaaSIndustries,
		"otherTechIndustries": v.OtherTechIndustries,
	}
}
