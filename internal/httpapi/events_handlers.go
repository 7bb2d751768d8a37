package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"franchise-engine/internal/events"
)

// keepAlive is how often an idle stream gets a comment line so proxies do
// not close it.
const keepAlive = 25 * time.Second

type EventsHandler struct {
	Hub *events.Hub
}

func writeSSE(w io.Writer, data string) {
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
}

// ServeSSE streams hub events (catalog loads, worker readiness, saved and
// cleared searches) until the client goes away.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := h.Hub.Subscribe()
	defer h.Hub.Unsubscribe(ch)

	writeSSE(w, events.MakeEvent(RequestIDFrom(r.Context()), events.Ping, nil))
	flusher.Flush()

	tick := time.NewTicker(keepAlive)
	defer tick.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			_, _ = io.WriteString(w, ": keepalive\n\n")
		case msg, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, msg)
		}
		flusher.Flush()
	}
}
