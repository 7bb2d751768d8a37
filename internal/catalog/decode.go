package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"franchise-engine/internal/domain"
)

// ErrEmptySource is returned for a zero-byte catalog document.
var ErrEmptySource = errors.New("catalog: empty document")

// sectioned is the detail-page shape of the document.
type sectioned struct {
	Leading       []domain.Listing `json:"leading"`
	Opportunities []domain.Listing `json:"opportunities"`
}

// Decode parses a catalog document: either a flat array of listings or
// {"leading": [...], "opportunities": [...]}, which is flattened
// leading-first.
func Decode(raw []byte) ([]domain.Listing, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, ErrEmptySource
	}

	switch raw[0] {
	case '[':
		var out []domain.Listing
		if err := json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("decode listing array: %w", err)
		}
		if out == nil {
			out = []domain.Listing{}
		}
		return out, nil
	case '{':
		var s sectioned
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, fmt.Errorf("decode sectioned catalog: %w", err)
		}
		out := make([]domain.Listing, 0, len(s.Leading)+len(s.Opportunities))
		out = append(out, s.Leading...)
		out = append(out, s.Opportunities...)
		return out, nil
	default:
		return nil, fmt.Errorf("decode catalog: unexpected leading byte %q", raw[0])
	}
}
