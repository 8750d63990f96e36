package api

import (
	"net/http"
	"strings"

	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/util"
)

type processRequest struct {
	Name string `json:"nome"`
}

type processResponse struct {
	Name  model.ProcessName `json:"nome"`
	Areas []model.Area      `json:"areas"`
}

func (h *Handler) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sess.State())
}

// createProcess stores the name without surrounding whitespace. Selection
// and lookups match names exactly.
func (h *Handler) createProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, config.ErrInvalidRequestBody)
		return
	}

	name := strings.TrimSpace(req.Name)
	if util.IsBlank(name) {
		badRequest(w, config.ErrProcessNameRequired)
		return
	}

	if err := h.sess.CreateProcess(r.Context(), model.ProcessName(name)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.State())
}

// selectProcess changes the active process. An empty name clears the selection.
func (h *Handler) selectProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := decodeJSON(r, &req); err != nil {
		badRequest(w, config.ErrInvalidRequestBody)
		return
	}

	if err := h.sess.SelectProcess(model.ProcessName(req.Name)); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sess.State())
}

func (h *Handler) getProcess(w http.ResponseWriter, r *http.Request) {
	name := model.ProcessName(r.PathValue("name"))

	areas, ok := h.sess.Areas(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: config.ErrUnknownProcess})
		return
	}
	writeJSON(w, http.StatusOK, processResponse{Name: name, Areas: areas})
}
