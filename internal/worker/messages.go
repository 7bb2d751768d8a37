package worker

import "franchise-engine/internal/domain"

// Action names a request to the worker.
type Action string

const (
	ActionSetFullData     Action = "setFullData"
	ActionLoadInitialData Action = "loadInitialData"
	ActionLoadMoreData    Action = "loadMoreData"
	ActionFilterData      Action = "filterData"
)

// MessageType names a response from the worker.
type MessageType string

const (
	TypeDataReady         MessageType = "dataReady"
	TypeInitialDataLoaded MessageType = "initialDataLoaded"
	TypeMoreDataLoaded    MessageType = "moreDataLoaded"
	TypeFilteredData      MessageType = "filteredData"
)

// InitialBatch is how many listings loadInitialData returns for first paint.
const InitialBatch = 12

// Request is a message posted to the worker. Only the fields relevant to
// Action are read.
type Request struct {
	ID     string `json:"id,omitempty"`
	Action Action `json:"action"`

	Data []domain.Listing `json:"data,omitempty"`

	// loadMoreData reads its range from these top-level fields, not from
	// data: requests never cross a process boundary, and Data stays one
	// type for every action.
	StartIndex int `json:"startIndex,omitempty"`
	EndIndex   int `json:"endIndex,omitempty"`

	SearchTerm string       `json:"searchTerm,omitempty"`
	Industry   string       `json:"industry,omitempty"`
	Order      domain.Order `json:"order,omitempty"`
}

// Response is a message from the worker. ID echoes the request's ID.
type Response struct {
	ID   string           `json:"id,omitempty"`
	Type MessageType      `json:"type"`
	Data []domain.Listing `json:"data"`

	StartIndex int `json:"startIndex,omitempty"`
	EndIndex   int `json:"endIndex,omitempty"`
}

func (r Request) query() domain.Query {
	return domain.Query{SearchTerm: r.SearchTerm, Industry: r.Industry, Order: r.Order}
}
