package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/sse"
)

func (h *Handler) serveEvents(w http.ResponseWriter, r *http.Request) {
	l := zerolog.Ctx(r.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeEventStream)
	w.Header().Set(config.HCacheControl, config.CacheNone)
	w.Header().Set(config.HConnection, "keep-alive")
	w.Header().Del("X-Content-Type-Options")

	client := sse.NewClient()
	h.clients.Add(client)
	defer h.clients.Delete(client)

	if err := (sse.Event{Name: "connected", Data: "SSE connection established"}).Write(w); err != nil {
		return
	}
	flusher.Flush()
	l.Debug().Int("clients", h.clients.Len()).Msg("SSE client connected")

	for {
		select {
		case ev, open := <-client.Msg:
			if !open {
				return
			}
			if err := ev.Write(w); err != nil {
				l.Debug().Err(err).Msg("SSE client write failed")
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			l.Debug().Msg("SSE client disconnected")
			return
		}
	}
}
