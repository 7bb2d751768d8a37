package domain

import "strings"

// Order is the sort key of a filter query.
type Order string

const (
	OrderNone    Order = ""
	OrderMinLow  Order = "min-low"  // minInvestment ascending
	OrderMaxHigh Order = "max-high" // avgInvestment descending
	OrderOutlets Order = "outlets"  // outlet count descending
	OrderAlpha   Order = "alpha"    // name A-Z
)

// Orders lists the keys the search form offers.
var Orders = []Order{OrderMinLow, OrderMaxHigh, OrderOutlets, OrderAlpha}

func (o Order) Label() string {
	switch o {
	case OrderMinLow:
		return "Minimum investment: low to high"
	case OrderMaxHigh:
		return "Average investment: high to low"
	case OrderOutlets:
		return "Number of outlets"
	case OrderAlpha:
		return "Alphabetical (A-Z)"
	default:
		return "Default"
	}
}

// IsSet reports whether the order key asks for sorting at all.
func (o Order) IsSet() bool { return strings.TrimSpace(string(o)) != "" }

// Query drives one Result Set computation.
type Query struct {
	SearchTerm string `json:"searchTerm"`
	Industry   string `json:"industry"`
	Order      Order  `json:"order"`
}

func (q Query) Empty() bool {
	return strings.TrimSpace(q.SearchTerm) == "" &&
		strings.TrimSpace(q.Industry) == "" &&
		!q.Order.IsSet()
}

// SearchSnapshot is the persisted lastSearch value. The JSON keys match what
// the search form has always written.
type SearchSnapshot struct {
	SearchTerm string `json:"searchTerm"`
	Industry   string `json:"industry"`
	OrderBy    string `json:"orderBy"`
}

func SnapshotOf(q Query) SearchSnapshot {
	return SearchSnapshot{SearchTerm: q.SearchTerm, Industry: q.Industry, OrderBy: string(q.Order)}
}
