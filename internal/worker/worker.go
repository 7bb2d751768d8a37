// Package worker runs the Background Filter Worker: a goroutine that holds
// its own copy of the catalog and answers filter requests by message.
package worker

import (
	"errors"
	"slices"
	"sync"

	"franchise-engine/internal/domain"
	"franchise-engine/internal/filter"
)

// ErrTerminated is returned when posting to a worker that has been torn down.
var ErrTerminated = errors.New("worker terminated")

// Handler receives every response the worker produces. It runs on the
// worker goroutine and must not block.
type Handler func(Response)

// Worker shares no memory with its callers: request data is copied on Post
// and response data is copied before it is handed out.
type Worker struct {
	requests  chan Request
	onMessage Handler

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// owned by the run goroutine
	data []domain.Listing
}

func New(queueSize int, onMessage Handler) *Worker {
	if queueSize <= 0 {
		queueSize = 1
	}
	if onMessage == nil {
		onMessage = func(Response) {}
	}
	w := &Worker{
		requests:  make(chan Request, queueSize),
		onMessage: onMessage,
		done:      make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

// Post queues req and returns without waiting for the reply. It only blocks
// while the queue is full.
func (w *Worker) Post(req Request) error {
	select {
	case <-w.done:
		return ErrTerminated
	default:
	}
	req.Data = slices.Clone(req.Data)
	select {
	case <-w.done:
		return ErrTerminated
	case w.requests <- req:
		return nil
	}
}

// Done is closed once Terminate has been called.
func (w *Worker) Done() <-chan struct{} { return w.done }

// Terminate stops the worker. Queued requests are dropped.
func (w *Worker) Terminate() {
	w.stopOnce.Do(func() { close(w.done) })
	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case req := <-w.requests:
			resp, ok := w.handle(req)
			if !ok {
				continue
			}
			resp.ID = req.ID
			w.onMessage(resp)
		}
	}
}

func (w *Worker) handle(req Request) (Response, bool) {
	switch req.Action {
	case ActionSetFullData:
		w.data = req.Data
		return Response{Type: TypeDataReady, Data: []domain.Listing{}}, true

	case ActionLoadInitialData:
		n := min(InitialBatch, len(req.Data))
		return Response{Type: TypeInitialDataLoaded, Data: slices.Clone(req.Data[:n])}, true

	case ActionLoadMoreData:
		return Response{
			Type:       TypeMoreDataLoaded,
			Data:       window(w.data, req.StartIndex, req.EndIndex),
			StartIndex: req.StartIndex,
			EndIndex:   req.EndIndex,
		}, true

	case ActionFilterData:
		// No original-order restore here: with no order key the held
		// catalog order is what comes back.
		return Response{Type: TypeFilteredData, Data: filter.Apply(w.data, req.query())}, true
	}
	return Response{}, false
}

// window is data[start:end] clipped to bounds, copied; empty when the range
// does not overlap.
func window(data []domain.Listing, start, end int) []domain.Listing {
	start = max(start, 0)
	end = min(end, len(data))
	if start >= end {
		return []domain.Listing{}
	}
	return slices.Clone(data[start:end])
}
