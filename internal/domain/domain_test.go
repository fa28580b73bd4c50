package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArticleText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		article Article
		want    string
	}{
		{name: "title and description", article: Article{Title: "Acme raises", Description: "More text"}, want: "Acme raises. More text"},
		{name: "title only", article: Article{Title: " Acme raises "}, want: "Acme raises"},
		{name: "description only", article: Article{Description: "Body"}, want: "Body"},
		{name: "empty", article: Article{}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.article.Text())
		})
	}
}

func TestArticleIDPrecedence(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "guid-1", ArticleID(" guid-1 ", "https://x/a", "src", "title"))
	assert.Equal(t, "https://x/a", ArticleID("", "https://x/a", "src", "title"))

	hashed := ArticleID("", "", "src", "title")
	require.True(t, strings.HasPrefix(hashed, "sha256:"))
	assert.Equal(t, hashed, ArticleID("", "", "src", "title"))
	assert.NotEqual(t, hashed, ArticleID("", "", "other", "title"))
}

func TestAmountString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "£10M", Amount{Value: 10, Currency: "GBP", Unit: MagnitudeMillion}.String())
	assert.Equal(t, "$2.5B", Amount{Value: 2.5, Currency: "USD", Unit: MagnitudeBillion}.String())
	assert.Equal(t, "CHF 5K", Amount{Value: 5, Currency: "CHF", Unit: MagnitudeThousand}.String())
	assert.InDelta(t, 1.5e6, Amount{Value: 1.5, Unit: MagnitudeMillion}.Normalized(), 0.001)
}

func TestParseFundingStage(t *testing.T) {
	t.Parallel()

	for _, stage := range []FundingStage{StageSeed, StageSeriesA, StageSeriesB, StageSeriesC} {
		assert.Equal(t, stage, ParseFundingStage(stage.String()))
	}
	assert.Equal(t, StageNone, ParseFundingStage("Series D"))
	assert.Equal(t, StageNone, ParseFundingStage(""))
}

func TestSortForDigest(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, time.March, 1, 9, 0, 0, 0, time.UTC)
	items := []Announcement{
		{ArticleID: "low", Score: 50, DetectedAt: base},
		{ArticleID: "high-late", Score: 90, DetectedAt: base.Add(time.Hour)},
		{ArticleID: "high-early", Score: 90, DetectedAt: base},
	}

	SortForDigest(items)

	ids := []string{items[0].ArticleID, items[1].ArticleID, items[2].ArticleID}
	assert.Equal(t, []string{"high-early", "high-late", "low"}, ids)
}

func TestPrimaryLocationPrefersHighestTier(t *testing.T) {
	t.Parallel()

	res := ExtractionResult{Locations: []LocationMatch{
		{Token: "Berlin", Tier: LocationEuropeMiddleEast},
		{Token: "London", Tier: LocationUK},
		{Token: "UK", Tier: LocationUK},
	}}

	loc, ok := res.PrimaryLocation()
	require.True(t, ok)
	assert.Equal(t, "London", loc.Token)

	_, ok = ExtractionResult{}.PrimaryIndustry()
	assert.False(t, ok)
}

func TestAnnouncementDisplayFallbacks(t *testing.T) {
	t.Parallel()

	var a Announcement
	assert.Equal(t, "Unknown", a.DisplayCompany())
	assert.Equal(t, "Unknown", a.DisplayStage())
	assert.Equal(t, "Not specified", a.DisplayAmount())
	assert.Equal(t, "Unknown", a.DisplayLocation())
	assert.Equal(t, "Tech", a.DisplayIndustry())
}
