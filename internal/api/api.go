// Package api is the HTTP surface of the admin tool: a JSON API over the
// session, the publish event stream, and the overview page.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/sorteio-admin/internal/auth"
	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/editor"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
	"github.com/debemdeboas/sorteio-admin/internal/routes"
	"github.com/debemdeboas/sorteio-admin/internal/session"
	"github.com/debemdeboas/sorteio-admin/internal/sse"
)

var apiLogger = zerolog.Nop()

func SetLogger(l zerolog.Logger) {
	apiLogger = l
}

type Handler struct {
	sess     *session.Session
	clients  *sse.Clients
	provider auth.AuthProvider
	assets   fs.FS
	index    *template.Template
}

// NewHandler parses the overview template from assets, which must hold the
// templates and static directories.
func NewHandler(sess *session.Session, clients *sse.Clients, provider auth.AuthProvider, assets fs.FS) (*Handler, error) {
	index, err := template.ParseFS(assets, config.TemplatesLocalDir+"/"+config.TemplateIndex)
	if err != nil {
		return nil, fmt.Errorf("error parsing templates: %w", err)
	}

	return &Handler{
		sess:     sess,
		clients:  clients,
		provider: provider,
		assets:   assets,
		index:    index,
	}, nil
}

// Register mounts every route on mux. Mutating routes go through the
// provider's RequireAdmin.
func (h *Handler) Register(mux *http.ServeMux) error {
	static, err := fs.Sub(h.assets, config.StaticLocalDir)
	if err != nil {
		return fmt.Errorf("error opening static assets: %w", err)
	}

	admin := func(fn http.HandlerFunc) http.Handler {
		return h.provider.RequireAdmin(fn)
	}

	mux.Handle("GET "+config.StaticURLPath, http.StripPrefix(config.StaticURLPath, http.FileServer(http.FS(static))))
	mux.HandleFunc("GET "+routes.RootPath+"{$}", h.serveIndex)
	mux.HandleFunc("GET "+routes.SSEPath, h.serveEvents)

	mux.HandleFunc("GET "+routes.APIProcesses, h.getState)
	mux.Handle("POST "+routes.APIProcesses, admin(h.createProcess))
	mux.Handle("PUT "+routes.APIProcessActive, admin(h.selectProcess))
	mux.HandleFunc("GET "+routes.APIProcess, h.getProcess)

	mux.HandleFunc("GET "+routes.APIDraft, h.getDraft)
	mux.Handle("PUT "+routes.APIDraft, admin(h.replaceDraft))
	mux.Handle("POST "+routes.APIDraftPontos, admin(h.addPonto))
	mux.Handle("PUT "+routes.APIDraftPonto, admin(h.setPonto))
	mux.Handle("DELETE "+routes.APIDraftPonto, admin(h.removePonto))

	mux.Handle("POST "+routes.APIAreas, admin(h.saveArea))
	mux.Handle("POST "+routes.APIAreaEdit, admin(h.beginEdit))
	mux.Handle("DELETE "+routes.APIArea, admin(h.removeArea))

	mux.Handle("POST "+routes.APIPublish, admin(h.publish))
	mux.HandleFunc("GET "+routes.APIPublished, h.getPublished)

	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(config.HCType, config.CTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		apiLogger.Error().Err(err).Msg("Failed to encode response")
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// decodeJSON reads the request body into v. An empty body yields io.EOF.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// writeError maps domain errors to status codes. Anything unknown is a store
// failure and its details stay in the log.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	l := zerolog.Ctx(r.Context())

	var (
		status int
		msg    string
	)
	switch {
	case errors.Is(err, session.ErrNoProcessSelected):
		status, msg = http.StatusBadRequest, config.ErrNoProcessSelected
	case errors.Is(err, session.ErrUnknownProcess), errors.Is(err, session.ErrProcessNotFound):
		status, msg = http.StatusNotFound, config.ErrUnknownProcess
	case errors.Is(err, session.ErrAreaIndexOutOfRange), errors.Is(err, editor.ErrPontoIndexOutOfRange):
		status, msg = http.StatusNotFound, config.ErrIndexOutOfRange
	case errors.Is(err, repository.ErrDocumentNotFound):
		status, msg = http.StatusNotFound, config.ErrNothingPublished
	default:
		l.Error().Err(err).Msg("Store request failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: config.ErrStoreFailure})
		return
	}

	l.Debug().Err(err).Int("status", status).Msg("Request rejected")
	writeJSON(w, status, errorResponse{Error: msg})
}
