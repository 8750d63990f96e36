package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/editor"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/util"
)

type pontoRequest struct {
	Value string `json:"valor"`
}

func pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := util.ParseIndex(r.PathValue("index"))
	if err != nil {
		badRequest(w, config.ErrInvalidIndex)
		return 0, false
	}
	return idx, true
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.Draft())
}

func (h *Handler) updateDraft(w http.ResponseWriter, r *http.Request, fn func(d *editor.Draft) error) {
	st, err := h.sess.UpdateDraft(fn)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// replaceDraft overwrites the draft fields; the edit target is kept.
func (h *Handler) replaceDraft(w http.ResponseWriter, r *http.Request) {
	var area model.Area
	if err := decodeJSON(r, &area); err != nil {
		badRequest(w, config.ErrInvalidRequestBody)
		return
	}

	h.updateDraft(w, r, func(d *editor.Draft) error {
		d.Replace(area)
		return nil
	})
}

func (h *Handler) addPonto(w http.ResponseWriter, r *http.Request) {
	h.updateDraft(w, r, func(d *editor.Draft) error {
		d.AddPonto()
		return nil
	})
}

func (h *Handler) setPonto(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}

	var req pontoRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, config.ErrInvalidRequestBody)
		return
	}

	h.updateDraft(w, r, func(d *editor.Draft) error {
		return d.SetPonto(idx, req.Value)
	})
}

func (h *Handler) removePonto(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}

	h.updateDraft(w, r, func(d *editor.Draft) error {
		return d.RemovePonto(idx)
	})
}

// saveArea saves the area in the body, or the server-side draft when the body
// is empty.
func (h *Handler) saveArea(w http.ResponseWriter, r *http.Request) {
	var area model.Area
	err := decodeJSON(r, &area)

	switch {
	case errors.Is(err, io.EOF):
		err = h.sess.SaveDraft(r.Context())
	case err != nil:
		badRequest(w, config.ErrInvalidRequestBody)
		return
	default:
		err = h.sess.SaveArea(r.Context(), area)
	}

	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.State())
}

func (h *Handler) beginEdit(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}

	if err := h.sess.BeginEdit(idx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.Draft())
}

func (h *Handler) removeArea(w http.ResponseWriter, r *http.Request) {
	idx, ok := pathIndex(w, r)
	if !ok {
		return
	}

	if err := h.sess.RemoveArea(r.Context(), idx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.State())
}
