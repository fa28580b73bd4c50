package detection

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"FundingScanner/internal/domain"
	"FundingScanner/internal/patterns"
)

const maxCompanyNameLen = 60

// titleSeparators end the company-name prefix of a headline.
var titleSeparators = []string{" – ", " — ", "–", "—", ":", " | ", " - "}

// auxiliaryWords are dropped from the end of a company-name prefix ("Acme has raised").
var auxiliaryWords = map[string]struct{}{
	"has": {}, "have": {}, "had": {}, "just": {}, "officially": {}, "reportedly": {}, "now": {},
}

var capitalizedSpan = regexp.MustCompile(`\b[A-Z][\w&'.-]*(?:\s+[A-Z][\w&'.-]*)+`)

// Extractor turns article text into candidate facts. It never touches the network or storage.
type Extractor struct {
	lib *patterns.Library
}

// NewExtractor binds a pattern library; nil selects patterns.Default().
func NewExtractor(lib *patterns.Library) *Extractor {
	if lib == nil {
		lib = patterns.Default()
	}
	return &Extractor{lib: lib}
}

// Extract scans title + description. Empty text gives an all-absent result.
func (e *Extractor) Extract(article domain.Article) domain.ExtractionResult {
	text := article.Text()

	var res domain.ExtractionResult
	res.FundingKeywords = distinctTokens(e.lib.Match(patterns.CategoryFundingKeyword, text))
	res.HasFundingKeyword = len(res.FundingKeywords) > 0
	res.CompanyName = e.companyName(strings.TrimSpace(article.Title))
	res.FundingStage = e.fundingStage(text)
	res.Amount = e.amount(text)

	seen := map[string]struct{}{}
	for _, hit := range e.lib.Match(patterns.CategoryLocation, text) {
		if !markNew(seen, hit.Text) {
			continue
		}
		res.Locations = append(res.Locations, domain.LocationMatch{
			Token: hit.Text,
			Tier:  domain.LocationTier(hit.Rank),
		})
	}

	seen = map[string]struct{}{}
	for _, hit := range e.lib.Match(patterns.CategoryIndustry, text) {
		if !markNew(seen, hit.Text) {
			continue
		}
		sector := hit.Label
		if sector == "" {
			sector = hit.Text
		}
		res.Industries = append(res.Industries, domain.IndustryMatch{
			Token:  hit.Text,
			Sector: sector,
			Tier:   domain.IndustryTier(hit.Rank),
		})
	}

	return res
}

// companyName takes the headline prefix before the first funding keyword or separator,
// falling back to the first capitalised multi-word span. Best effort: a garbled or
// missing name is an accepted outcome.
func (e *Extractor) companyName(title string) string {
	if title == "" {
		return ""
	}

	cut, found := len(title), false
	if hit, ok := e.lib.First(patterns.CategoryFundingKeyword, title); ok {
		cut, found = hit.Start, true
	}
	for _, sep := range titleSeparators {
		if i := strings.Index(title, sep); i >= 0 && i < cut {
			cut, found = i, true
		}
	}

	if found {
		if name := cleanCompanyName(title[:cut]); name != "" {
			return name
		}
	}

	return cleanCompanyName(capitalizedSpan.FindString(title))
}

func cleanCompanyName(raw string) string {
	if i := strings.Index(raw, ", "); i >= 0 {
		raw = raw[:i]
	}

	words := strings.Fields(raw)
	for len(words) > 0 {
		if _, ok := auxiliaryWords[strings.ToLower(words[len(words)-1])]; !ok {
			break
		}
		words = words[:len(words)-1]
	}

	name := strings.Trim(strings.Join(words, " "), ".,;:'\"-–— ")
	if name == "" || utf8.RuneCountInString(name) > maxCompanyNameLen {
		return ""
	}

	first, _ := utf8.DecodeRuneInString(name)
	if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
		return ""
	}
	return name
}

// fundingStage returns the latest stage mentioned anywhere, not the first one.
func (e *Extractor) fundingStage(text string) domain.FundingStage {
	best := domain.StageNone
	for _, hit := range e.lib.Match(patterns.CategoryStage, text) {
		if stage := domain.FundingStage(hit.Rank); stage > best {
			best = stage
		}
	}
	return best
}

func (e *Extractor) amount(text string) *domain.Amount {
	for _, hit := range e.lib.Match(patterns.CategoryAmount, text) {
		value, err := strconv.ParseFloat(hit.Groups[patterns.GroupValue], 64)
		if err != nil {
			continue
		}
		currency, ok := patterns.CurrencyCode(hit.Groups[patterns.GroupCurrency])
		if !ok {
			continue
		}
		unit, ok := patterns.MagnitudeOf(hit.Groups[patterns.GroupUnit])
		if !ok {
			continue
		}
		return &domain.Amount{Value: value, Currency: currency, Unit: unit}
	}
	return nil
}

func distinctTokens(hits []patterns.Hit) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, hit := range hits {
		if markNew(seen, hit.Text) {
			out = append(out, hit.Text)
		}
	}
	return out
}

func markNew(seen map[string]struct{}, token string) bool {
	key := strings.ToLower(strings.Join(strings.Fields(token), " "))
	if _, ok := seen[key]; ok {
		return false
	}
	seen[key] = struct{}{}
	return true
}
