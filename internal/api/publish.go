package api

import (
	"encoding/json"
	"net/http"

	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/sse"
)

const EventPublished = "published"

// PublishedEvent is what viewers on the event stream receive after a publish.
func PublishedEvent(sel model.PublishedSelection) sse.Event {
	data, err := json.Marshal(sel)
	if err != nil {
		apiLogger.Error().Err(err).Msg("Failed to encode published selection")
		data = []byte(`{}`)
	}
	return sse.Event{Name: EventPublished, Data: string(data)}
}

func (h *Handler) publish(w http.ResponseWriter, r *http.Request) {
	sel, err := h.sess.Publish(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) getPublished(w http.ResponseWriter, r *http.Request) {
	sel, err := h.sess.Published(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}
