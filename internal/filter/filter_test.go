package filter

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"franchise-engine/internal/domain"
)

func scenarioCatalog() []domain.Listing {
	return []domain.Listing{
		{ID: "1", Name: "Alpha Pizza", Category: "Food", MinInvestment: "$20,000", AvgInvestment: "$50,000", Outlets: "30"},
		{ID: "2", Name: "Beta Fitness", Category: "Fitness", MinInvestment: "$10,000", AvgInvestment: "$80,000", Outlets: "120+ outlets"},
	}
}

func names(ls []domain.Listing) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Name
	}
	return out
}

func TestInvestmentValue(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"$10,000 - $20,000", 1000020000},
		{"$50,000–$80,000", 5000080000},
		{"$20,000", 20000},
		{"", 0},
		{"call us", 0},
		{"99999999999999999999999", math.MaxInt64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InvestmentValue(tt.raw), "InvestmentValue(%q)", tt.raw)
	}
}

func TestOutletCount(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
	}{
		{"120+ outlets (50 franchised)", 120},
		{"30", 30},
		{"over 1,200", 1},
		{"", 0},
		{"many", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, OutletCount(tt.raw), "OutletCount(%q)", tt.raw)
	}
}

func TestApplyScenario(t *testing.T) {
	catalog := scenarioCatalog()

	assert.Equal(t, []string{"Beta Fitness", "Alpha Pizza"},
		names(Apply(catalog, domain.Query{Order: domain.OrderMinLow})))
	assert.Equal(t, []string{"Alpha Pizza"},
		names(Apply(catalog, domain.Query{Industry: "food"})))
	assert.Equal(t, []string{"Beta Fitness", "Alpha Pizza"},
		names(Apply(catalog, domain.Query{Order: domain.OrderMaxHigh})))
	assert.Equal(t, []string{"Beta Fitness", "Alpha Pizza"},
		names(Apply(catalog, domain.Query{Order: domain.OrderOutlets})))
}

func TestApplyEmptyQueryKeepsOrder(t *testing.T) {
	catalog := scenarioCatalog()
	got := ApplyOrdered(catalog, domain.Query{}, catalog)
	assert.Equal(t, catalog, got)
	assert.Equal(t, catalog, Apply(catalog, domain.Query{}))
}

func TestApplyNoMatch(t *testing.T) {
	got := Apply(scenarioCatalog(), domain.Query{SearchTerm: "zzz-not-here"})
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestApplySearchFields(t *testing.T) {
	catalog := []domain.Listing{
		{ID: "1", Name: "One", Description: "Wood-fired ovens"},
		{ID: "2", Name: "Two", Outlets: "45 outlets"},
		{ID: "3", Name: "Three", MinInvestment: "$5,000"},
		{ID: "4", Name: "Four", Industry: "OVEN"},
	}
	assert.Equal(t, []string{"One"}, names(Apply(catalog, domain.Query{SearchTerm: "OVENS"})))
	assert.Equal(t, []string{"Two"}, names(Apply(catalog, domain.Query{SearchTerm: "outlets"})))
	assert.Equal(t, []string{"Three"}, names(Apply(catalog, domain.Query{SearchTerm: "5,000"})))
	// industry is not a search field, but it is an industry filter field
	assert.Equal(t, []string{"Four"}, names(Apply(catalog, domain.Query{Industry: "oven"})))
}

func TestApplyBlankFiltersSkipped(t *testing.T) {
	catalog := scenarioCatalog()
	got := Apply(catalog, domain.Query{SearchTerm: "   ", Industry: "\t", Order: " "})
	assert.Equal(t, catalog, got)
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	catalog := scenarioCatalog()
	before := append([]domain.Listing(nil), catalog...)
	_ = Apply(catalog, domain.Query{Order: domain.OrderMinLow})
	_ = ApplyOrdered(catalog, domain.Query{Order: domain.OrderAlpha}, catalog)
	assert.Equal(t, before, catalog)
}

func TestApplyAlphaIsCollated(t *testing.T) {
	catalog := []domain.Listing{
		{ID: "1", Name: "banana Bread"},
		{ID: "2", Name: "Éclair House"},
		{ID: "3", Name: "Apple Tea"},
		{ID: "4", Name: ""},
		{ID: "5", Name: "cherry Cafe"},
	}
	got := Apply(catalog, domain.Query{Order: domain.OrderAlpha})
	require.Len(t, got, len(catalog))

	c := collate.New(language.English)
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, c.CompareString(got[i-1].Name, got[i].Name), 0,
			"%q should not sort after %q", got[i-1].Name, got[i].Name)
	}
	assert.Equal(t, "", got[0].Name)
	assert.Equal(t, "Apple Tea", got[1].Name)
}

func TestApplyMinLowNonDecreasing(t *testing.T) {
	catalog := []domain.Listing{
		{ID: "a", MinInvestment: "$10,000 - $20,000"},
		{ID: "b", MinInvestment: "$900"},
		{ID: "c"},
		{ID: "d", MinInvestment: "$30,000"},
	}
	got := Apply(catalog, domain.Query{Order: domain.OrderMinLow})
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, InvestmentValue(string(got[i-1].MinInvestment)), InvestmentValue(string(got[i].MinInvestment)))
	}
	// the range concatenates into 1000020000 and sorts last
	assert.Equal(t, domain.Text("a"), got[len(got)-1].ID)
}

func TestApplyUnknownOrderSortsNothing(t *testing.T) {
	catalog := []domain.Listing{{ID: "2", Name: "B"}, {ID: "1", Name: "A"}}
	got := ApplyOrdered(catalog, domain.Query{Order: "price"}, catalog)
	assert.Equal(t, []string{"B", "A"}, names(got))
}

func TestApplyOrderedRestoresSnapshotOrder(t *testing.T) {
	original := []domain.Listing{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}, {ID: "3", Name: "C"}}
	shuffled := []domain.Listing{original[2], original[0], original[1]}

	got := ApplyOrdered(shuffled, domain.Query{}, original)
	assert.Equal(t, []string{"A", "B", "C"}, names(got))

	// Apply keeps the order it was given.
	assert.Equal(t, []string{"C", "A", "B"}, names(Apply(shuffled, domain.Query{})))
}

func TestApplyOrderedUnknownIDSortsFirst(t *testing.T) {
	original := []domain.Listing{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}
	working := []domain.Listing{original[1], {ID: "99", Name: "Stray"}, original[0]}

	got := ApplyOrdered(working, domain.Query{}, original)
	// "Stray" and "A" share index 0 and keep their relative order.
	assert.Equal(t, []string{"Stray", "A", "B"}, names(got))
}
