package events

import (
	"encoding/json"
	"time"
)

// Event types published by the engine.
const (
	CatalogLoaded     = "catalog_loaded"
	CatalogLoadFailed = "catalog_load_failed"
	SearchSaved       = "search_saved"
	SearchCleared     = "search_cleared"
	Ping              = "ping"
)

type Event struct {
	Type      string          `json:"type"`
	Version   int             `json:"v"`
	At        time.Time       `json:"at"`
	RequestID string          `json:"request_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// MakeEvent encodes one SSE payload. Unencodable data is dropped, not fatal.
func MakeEvent(reqID, typ string, data any) string {
	var raw json.RawMessage
	if data != nil {
		if b, err := json.Marshal(data); err == nil {
			raw = b
		}
	}
	e := Event{
		Type:      typ,
		Version:   1,
		At:        time.Now().UTC(),
		RequestID: reqID,
		Data:      raw,
	}
	b, _ := json.Marshal(e)
	return string(b)
}
