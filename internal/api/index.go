package api

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/util"
)

func (h *Handler) serveIndex(w http.ResponseWriter, r *http.Request) {
	st := h.sess.State()

	var buf bytes.Buffer
	if err := h.index.Execute(&buf, st); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to render index")
		http.Error(w, config.ErrInternalServerError, http.StatusInternalServerError)
		return
	}

	w.Header().Set(config.HCType, config.CTypeHTML)
	w.Header().Set(config.HETag, util.ContentHash(buf.Bytes()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
