// Package patterns holds the rule table the detector matches article text against.
// Rules are data: each one pairs a category and a rank with a compiled matcher, and
// the extractor iterates them uniformly.
package patterns

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"FundingScanner/internal/domain"
)

// Category groups rules by the signal they detect.
type Category string

const (
	CategoryFundingKeyword Category = "funding_keyword"
	CategoryStage          Category = "funding_stage"
	CategoryAmount         Category = "amount"
	CategoryLocation       Category = "location"
	CategoryIndustry       Category = "industry"
)

// Categories lists every category in matching order.
var Categories = []Category{
	CategoryFundingKeyword, CategoryStage, CategoryAmount, CategoryLocation, CategoryIndustry,
}

// Named groups captured by amount rules.
const (
	GroupCurrency = "currency"
	GroupValue    = "value"
	GroupUnit     = "unit"
)

// Rule is one compiled matcher. Rank orders rules inside a category: funding stage
// for stages, tier for locations and industries.
type Rule struct {
	Category Category
	Label    string
	Rank     int
	Pattern  *regexp.Regexp
}

// Hit is one match of a rule.
type Hit struct {
	Category Category
	Label    string
	Rank     int
	Text     string
	Start    int
	End      int
	Groups   map[string]string
}

// Library is an immutable rule table, safe for concurrent use.
type Library struct {
	rules []Rule
}

var amountRules = []Rule{
	{
		Category: CategoryAmount,
		Label:    "symbol",
		Pattern: regexp.MustCompile(`(?i)(?P<currency>[$£€]|\b(?:usd|gbp|eur))\s?(?P<value>\d+(?:\.\d+)?)\s*` +
			`(?P<unit>thousand|million|billion|bn|mn|k|m|b)\b`),
	},
	{
		Category: CategoryAmount,
		Label:    "words",
		Pattern: regexp.MustCompile(`(?i)\b(?P<value>\d+(?:\.\d+)?)\s*(?P<unit>thousand|million|billion)\s+` +
			`(?P<currency>dollars?|pounds?|euros?)\b`),
	},
}

var defaultLibrary = sync.OnceValue(func() *Library {
	lib, err := New(DefaultVocabulary())
	if err != nil {
		panic(fmt.Sprintf("patterns: default vocabulary: %v", err))
	}
	return lib
})

// Default returns the library compiled from DefaultVocabulary.
func Default() *Library {
	return defaultLibrary()
}

// New compiles a vocabulary into a rule table.
func New(v Vocabulary) (*Library, error) {
	if err := v.Validate(); err != nil {
		return nil, err
	}

	specs := []struct {
		category Category
		label    string
		rank     int
		phrases  []string
	}{
		{CategoryFundingKeyword, "funding", 0, v.FundingKeywords},
		{CategoryStage, domain.StageSeed.String(), int(domain.StageSeed), v.SeedStage},
		{CategoryStage, domain.StageSeriesA.String(), int(domain.StageSeriesA), v.SeriesAStage},
		{CategoryStage, domain.StageSeriesB.String(), int(domain.StageSeriesB), v.SeriesBStage},
		{CategoryStage, domain.StageSeriesC.String(), int(domain.StageSeriesC), v.SeriesCStage},
		{CategoryLocation, "UK", int(domain.LocationUK), v.UKLocations},
		{CategoryLocation, "Europe", int(domain.LocationEuropeMiddleEast), v.EuropeLocations},
		{CategoryLocation, "Middle East", int(domain.LocationEuropeMiddleEast), v.MiddleEastLocations},
		{CategoryLocation, "Other", int(domain.LocationOther), v.OtherLocations},
		{CategoryIndustry, "Fintech", int(domain.IndustryFintechSaaS), v.FintechIndustries},
		{CategoryIndustry, "SaaS", int(domain.IndustryFintechSaaS), v.SaaSIndustries},
		{CategoryIndustry, "", int(domain.IndustryOtherTech), v.OtherTechIndustries},
	}

	lib := &Library{rules: make([]Rule, 0, len(specs)+len(amountRules))}
	for _, spec := range specs {
		re, err := compilePhrases(spec.phrases)
		if err != nil {
			return nil, fmt.Errorf("compile %s/%s: %w", spec.category, spec.label, err)
		}
		lib.rules = append(lib.rules, Rule{
			Category: spec.category,
			Label:    spec.label,
			Rank:     spec.rank,
			Pattern:  re,
		})
	}
	lib.rules = append(lib.rules, amountRules...)

	return lib, nil
}

// Rules lists the rules of one category in table order.
func (l *Library) Rules(category Category) []Rule {
	var out []Rule
	for _, r := range l.rules {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// Match returns every hit of every rule in the category, ordered by position in text.
func (l *Library) Match(category Category, text string) []Hit {
	if text == "" {
		return nil
	}

	var hits []Hit
	for _, r := range l.rules {
		if r.Category != category {
			continue
		}
		for _, loc := range r.Pattern.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, newHit(r, text, loc))
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Start < hits[j].Start
	})
	return hits
}

// First returns the earliest hit of the category.
func (l *Library) First(category Category, text string) (Hit, bool) {
	hits := l.Match(category, text)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func newHit(r Rule, text string, loc []int) Hit {
	hit := Hit{
		Category: r.Category,
		Label:    r.Label,
		Rank:     r.Rank,
		Text:     text[loc[0]:loc[1]],
		Start:    loc[0],
		End:      loc[1],
	}

	names := r.Pattern.SubexpNames()
	for i, name := range names {
		if name == "" || 2*i+1 >= len(loc) || loc[2*i] < 0 {
			continue
		}
		if hit.Groups == nil {
			hit.Groups = make(map[string]string, len(names))
		}
		hit.Groups[name] = text[loc[2*i]:loc[2*i+1]]
	}
	return hit
}

func compilePhrases(phrases []string) (*regexp.Regexp, error) {
	seen := make(map[string]struct{}, len(phrases))
	unique := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = normalizePhrase(p)
		key := strings.ToLower(p)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, p)
	}

	// Longer phrases first so "Abu Dhabi" wins over a shorter prefix alternative.
	sort.SliceStable(unique, func(i, j int) bool {
		return len(unique[i]) > len(unique[j])
	})

	alts := make([]string, len(unique))
	for i, p := range unique {
		alts[i] = anchor(p)
	}
	return regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

// anchor quotes a phrase and adds \b only on sides that begin or end with a word
// character; RE2 has no look-around, and \b next to "." would never match.
func anchor(phrase string) string {
	expr := strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`)
	if isWordByte(phrase[0]) {
		expr = `\b` + expr
	}
	if isWordByte(phrase[len(phrase)-1]) {
		expr += `\b`
	}
	return expr
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func normalizePhrase(p string) string {
	return strings.Join(strings.Fields(p), " ")
}
