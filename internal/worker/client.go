package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"franchise-engine/internal/domain"
)

// Client wraps a Worker for callers that run concurrently. Requests sent
// through Call carry a fresh id and the reply is routed back to the caller
// that sent it; replies without a waiting caller are dispatched by type to
// the handlers registered with On.
type Client struct {
	w *Worker

	mu       sync.Mutex
	pending  map[string]chan Response
	handlers map[MessageType][]Handler
}

func NewClient(queueSize int) *Client {
	c := &Client{
		pending:  make(map[string]chan Response),
		handlers: make(map[MessageType][]Handler),
	}
	c.w = New(queueSize, c.dispatch)
	return c
}

// On registers h for responses of type t that no Call is waiting for.
func (c *Client) On(t MessageType, h Handler) {
	c.mu.Lock()
	c.handlers[t] = append(c.handlers[t], h)
	c.mu.Unlock()
}

// Post sends a request without waiting; its reply goes to the On handlers.
func (c *Client) Post(req Request) error {
	return c.w.Post(req)
}

// Call sends req with a new id and waits for the matching reply.
func (c *Client) Call(ctx context.Context, req Request) (Response, error) {
	req.ID = uuid.NewString()
	ch := make(chan Response, 1)

	c.mu.Lock()
	c.pending[req.ID] = ch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.pending, req.ID)
		c.mu.Unlock()
	}()

	if err := c.w.Post(req); err != nil {
		return Response{}, err
	}
	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		return Response{}, ctx.Err()
	case <-c.w.Done():
		return Response{}, ErrTerminated
	}
}

func (c *Client) SetFullData(ctx context.Context, listings []domain.Listing) error {
	_, err := c.Call(ctx, Request{Action: ActionSetFullData, Data: listings})
	return err
}

func (c *Client) LoadInitialData(ctx context.Context, listings []domain.Listing) ([]domain.Listing, error) {
	resp, err := c.Call(ctx, Request{Action: ActionLoadInitialData, Data: listings})
	return resp.Data, err
}

func (c *Client) LoadMoreData(ctx context.Context, start, end int) ([]domain.Listing, error) {
	resp, err := c.Call(ctx, Request{Action: ActionLoadMoreData, StartIndex: start, EndIndex: end})
	return resp.Data, err
}

func (c *Client) FilterData(ctx context.Context, q domain.Query) ([]domain.Listing, error) {
	resp, err := c.Call(ctx, Request{
		Action:     ActionFilterData,
		SearchTerm: q.SearchTerm,
		Industry:   q.Industry,
		Order:      q.Order,
	})
	return resp.Data, err
}

func (c *Client) Terminate() { c.w.Terminate() }

func (c *Client) dispatch(resp Response) {
	c.mu.Lock()
	ch, waiting := c.pending[resp.ID]
	if waiting {
		delete(c.pending, resp.ID)
	}
	hs := append([]Handler(nil), c.handlers[resp.Type]...)
	c.mu.Unlock()

	if waiting {
		ch <- resp // buffered, never blocks
		return
	}
	for _, h := range hs {
		h(resp)
	}
}
