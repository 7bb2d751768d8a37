package domain

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Listing is one franchise record from the catalog document. Every field is
// optional in the source; absent fields decode to their zero value.
type Listing struct {
	ID            Text   `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	Industry      string `json:"industry,omitempty"`
	Logo          string `json:"logo"`
	Description   string `json:"description"`
	MinInvestment Text   `json:"minInvestment"`
	AvgInvestment Text   `json:"avgInvestment"`
	Outlets       Text   `json:"outlets"`

	// Detail view only.
	Liquidity Text `json:"liquidity,omitempty"`
	Year      Text `json:"year,omitempty"`
	Financing Flag `json:"financing,omitempty"`
	Coaching  Flag `json:"coaching,omitempty"`
}

// Text is a string that also accepts JSON numbers and booleans. Catalogs
// write ids, years, investments and outlet counts either way.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*t = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(b)
	return nil
}

func (t Text) String() string { return string(t) }

// Flag is a loose boolean: true, non-empty strings other than "false"/"no"/"0",
// and non-zero numbers are all set.
type Flag bool

func (f *Flag) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")), bytes.Equal(b, []byte("false")):
		*f = false
	case bytes.Equal(b, []byte("true")):
		*f = true
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "", "false", "no", "0":
			*f = false
		default:
			*f = true
		}
	default:
		var n float64
		if err := json.Unmarshal(b, &n); err != nil {
			return err
		}
		*f = n != 0
	}
	return nil
}

// YesNo renders the flag the way the detail stats bar shows it.
func (f Flag) YesNo() string {
	if f {
		return "Yes"
	}
	return "No"
}
