// Package filter is the shared Filter Engine: industry filter, then search
// filter, then sort. It has no dependency on the worker or on any page.
package filter

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"franchise-engine/internal/domain"
)

// Apply filters and sorts catalog. With no order key the filtered catalog
// order is returned as is. The input slice is never modified.
func Apply(catalog []domain.Listing, q domain.Query) []domain.Listing {
	out := match(catalog, q)
	if q.Order.IsSet() {
		sortBy(out, q.Order)
	}
	return out
}

// ApplyOrdered is Apply, except that with no order key the result is put back
// into the order of originalOrder, looked up by id. Ids missing from the
// snapshot sort as index 0; for duplicate ids the last position wins.
func ApplyOrdered(catalog []domain.Listing, q domain.Query, originalOrder []domain.Listing) []domain.Listing {
	out := match(catalog, q)
	if q.Order.IsSet() {
		sortBy(out, q.Order)
		return out
	}
	if len(originalOrder) == 0 {
		return out
	}
	index := make(map[domain.Text]int, len(originalOrder))
	for i, l := range originalOrder {
		index[l.ID] = i
	}
	sort.SliceStable(out, func(i, j int) bool {
		return index[out[i].ID] < index[out[j].ID]
	})
	return out
}

// ApplyUnsorted runs the industry and search filters only; q.Order is ignored.
func ApplyUnsorted(catalog []domain.Listing, q domain.Query) []domain.Listing {
	return match(catalog, q)
}

func match(catalog []domain.Listing, q domain.Query) []domain.Listing {
	out := make([]domain.Listing, 0, len(catalog))

	industry := ""
	if strings.TrimSpace(q.Industry) != "" {
		industry = strings.ToLower(q.Industry)
	}
	term := ""
	if strings.TrimSpace(q.SearchTerm) != "" {
		term = strings.ToLower(q.SearchTerm)
	}

	for _, l := range catalog {
		if industry != "" && !matchesIndustry(l, industry) {
			continue
		}
		if term != "" && !matchesTerm(l, term) {
			continue
		}
		out = append(out, l)
	}
	return out
}

func matchesIndustry(l domain.Listing, industry string) bool {
	return strings.Contains(strings.ToLower(l.Category), industry) ||
		strings.Contains(strings.ToLower(l.Industry), industry)
}

func matchesTerm(l domain.Listing, term string) bool {
	for _, field := range []string{l.Name, l.Category, l.Description, string(l.AvgInvestment), string(l.MinInvestment), string(l.Outlets)} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func sortBy(out []domain.Listing, order domain.Order) {
	switch order {
	case domain.OrderMinLow:
		sort.SliceStable(out, func(i, j int) bool {
			return InvestmentValue(string(out[i].MinInvestment)) < InvestmentValue(string(out[j].MinInvestment))
		})
	case domain.OrderMaxHigh:
		sort.SliceStable(out, func(i, j int) bool {
			return InvestmentValue(string(out[i].AvgInvestment)) > InvestmentValue(string(out[j].AvgInvestment))
		})
	case domain.OrderOutlets:
		sort.SliceStable(out, func(i, j int) bool {
			return OutletCount(string(out[i].Outlets)) > OutletCount(string(out[j].Outlets))
		})
	case domain.OrderAlpha:
		// Collators keep scratch buffers and are not safe to share.
		c := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return c.CompareString(out[i].Name, out[j].Name) < 0
		})
	}
}
