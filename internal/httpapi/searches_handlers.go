package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"franchise-engine/internal/domain"
	"franchise-engine/internal/events"
	"franchise-engine/internal/store"
)

// SearchesHandler serves the caller's lastSearch snapshot.
type SearchesHandler struct {
	Deps
}

func (h SearchesHandler) GetLast(w http.ResponseWriter, r *http.Request) {
	snap, ok, err := store.LastSearch(r.Context(), h.DB, ClientIDFrom(r.Context()))
	if errors.Is(err, store.ErrCorruptSnapshot) {
		h.Logger().Warn("ignoring corrupt lastSearch", zap.Error(err))
		err, ok = nil, false
	}
	if err != nil {
		writeFailure(w, r, h.Logger(), CodeDB, err)
		return
	}
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, snap)
}

func (h SearchesHandler) PutLast(w http.ResponseWriter, r *http.Request) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()

	var snap domain.SearchSnapshot
	if err := dec.Decode(&snap); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, err.Error())
		return
	}

	if err := store.SaveSearch(r.Context(), h.DB, ClientIDFrom(r.Context()), snap); err != nil {
		writeFailure(w, r, h.Logger(), CodeDB, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.SearchSaved, snap)
	writeJSON(w, snap)
}

func (h SearchesHandler) DeleteLast(w http.ResponseWriter, r *http.Request) {
	if err := store.ClearSearch(r.Context(), h.DB, ClientIDFrom(r.Context())); err != nil {
		writeFailure(w, r, h.Logger(), CodeDB, err)
		return
	}
	h.Hub.Emit(RequestIDFrom(r.Context()), events.SearchCleared, nil)
	w.WriteHeader(http.StatusNoContent)
}
