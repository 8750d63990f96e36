package api

import (
	"bufio"
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/debemdeboas/sorteio-admin/internal/auth"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
	"github.com/debemdeboas/sorteio-admin/internal/session"
	"github.com/debemdeboas/sorteio-admin/internal/sse"
)

var testAssets = fstest.MapFS{
	"templates/index.html": {Data: []byte(`<ul>{{range .Processes}}<li>{{.}}</li>{{end}}</ul><p>{{.Active}}:{{.AreaCount}}</p>`)},
	"static/style.css":     {Data: []byte(`body{}`)},
}

type testEnv struct {
	repo    *repository.MemoryRepository
	sess    *session.Session
	clients *sse.Clients
	handler http.Handler
}

func newTestEnv(t *testing.T, provider auth.AuthProvider) *testEnv {
	t.Helper()

	env := &testEnv{
		repo:    repository.NewMemoryRepository(),
		clients: sse.NewClients(),
	}
	env.sess = session.New(env.repo, session.Options{
		OnPublish: func(sel model.PublishedSelection) {
			env.clients.Broadcast(PublishedEvent(sel))
		},
	})

	h, err := NewHandler(env.sess, env.clients, provider, testAssets)
	if err != nil {
		t.Fatalf("NewHandler failed: %v", err)
	}
	mux := http.NewServeMux()
	if err := h.Register(mux); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	env.handler = provider.WithHeaderAuthorization()(mux)
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("Expected status %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
}

func TestProcessLifecycle(t *testing.T) {
	env := newTestEnv(t, auth.OpenProvider{})

	rec := env.do(t, http.MethodPost, "/api/processes", `{"nome":"Mestrado 2026"}`)
	expectStatus(t, rec, http.StatusOK)
	st := decode[session.State](t, rec)
	if st.Active != "Mestrado 2026" || len(st.Processes) != 1 {
		t.Fatalf("Unexpected state after create: %+v", st)
	}

	area := `{"faculdade":"FACIN","area":"Redes","pontos":["p1","p2"],"pontosSorteados":[]}`
	expectStatus(t, env.do(t, http.MethodPost, "/api/areas", area), http.StatusOK)

	// Build a second area through the server-side draft.
	expectStatus(t, env.do(t, http.MethodPut, "/api/draft", `{"faculdade":"FAMAT","area":"Álgebra","pontos":["x"]}`), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, "/api/draft/pontos", ""), http.StatusOK)
	rec = env.do(t, http.MethodPut, "/api/draft/pontos/1", `{"valor":"y"}`)
	expectStatus(t, rec, http.StatusOK)
	draft := decode[session.DraftState](t, rec)
	if diff := cmp.Diff([]string{"x", "y"}, draft.Area.Pontos); diff != "" {
		t.Errorf("Draft pontos mismatch (-want +got):\n%s", diff)
	}
	rec = env.do(t, http.MethodPost, "/api/areas", "")
	expectStatus(t, rec, http.StatusOK)
	st = decode[session.State](t, rec)
	if st.AreaCount != 2 || st.Areas[1].Area != "Álgebra" {
		t.Fatalf("Unexpected state after saving draft: %+v", st)
	}
	if st.Draft.Editing || st.Draft.Area.Area != "" {
		t.Errorf("Expected draft to be cleared, got %+v", st.Draft)
	}

	// Edit the first area in place.
	rec = env.do(t, http.MethodPost, "/api/areas/0/edit", "")
	expectStatus(t, rec, http.StatusOK)
	draft = decode[session.DraftState](t, rec)
	if !draft.Editing || draft.EditIndex != 0 || draft.Area.Area != "Redes" {
		t.Fatalf("Unexpected draft after BeginEdit: %+v", draft)
	}
	expectStatus(t, env.do(t, http.MethodDelete, "/api/draft/pontos/1", ""), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, "/api/areas", ""), http.StatusOK)

	rec = env.do(t, http.MethodGet, "/api/processes/Mestrado%202026", "")
	expectStatus(t, rec, http.StatusOK)
	proc := decode[processResponse](t, rec)
	want := []model.Area{
		{Faculdade: "FACIN", Area: "Redes", Pontos: []string{"p1"}, PontosSorteados: []string{}},
		{Faculdade: "FAMAT", Area: "Álgebra", Pontos: []string{"x", "y"}, PontosSorteados: []string{}},
	}
	if diff := cmp.Diff(want, proc.Areas); diff != "" {
		t.Errorf("Areas mismatch (-want +got):\n%s", diff)
	}

	stored, err := env.repo.GetByKey(context.Background(), "Mestrado 2026")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if diff := cmp.Diff(want, stored.Areas); diff != "" {
		t.Errorf("Stored areas mismatch (-want +got):\n%s", diff)
	}

	rec = env.do(t, http.MethodDelete, "/api/areas/0", "")
	expectStatus(t, rec, http.StatusOK)
	if st := decode[session.State](t, rec); st.AreaCount != 1 || st.Areas[0].Area != "Álgebra" {
		t.Errorf("Unexpected state after remove: %+v", st)
	}

	rec = env.do(t, http.MethodPost, "/api/publish", "")
	expectStatus(t, rec, http.StatusOK)
	sel := decode[model.PublishedSelection](t, rec)
	if sel.ProcessName != "Mestrado 2026" || len(sel.Areas) != 1 || sel.ID == "" {
		t.Errorf("Unexpected publish result: %+v", sel)
	}

	rec = env.do(t, http.MethodGet, "/api/published", "")
	expectStatus(t, rec, http.StatusOK)
	if got := decode[model.PublishedSelection](t, rec); got.ID != sel.ID {
		t.Errorf("Expected published id %q, got %q", sel.ID, got.ID)
	}
}

func TestSelectProcess(t *testing.T) {
	env := newTestEnv(t, auth.OpenProvider{})
	expectStatus(t, env.do(t, http.MethodPost, "/api/processes", `{"nome":"A"}`), http.StatusOK)
	expectStatus(t, env.do(t, http.MethodPost, "/api/processes", `{"nome":"B"}`), http.StatusOK)

	rec := env.do(t, http.MethodPut, "/api/processes/active", `{"nome":"A"}`)
	expectStatus(t, rec, http.StatusOK)
	if st := decode[session.State](t, rec); st.Active != "A" {
		t.Errorf("Expected A to be active, got %q", st.Active)
	}

	rec = env.do(t, http.MethodPut, "/api/processes/active", `{"nome":""}`)
	expectStatus(t, rec, http.StatusOK)
	if st := decode[session.State](t, rec); st.Active != "" {
		t.Errorf("Expected selection to be cleared, got %q", st.Active)
	}

	expectStatus(t, env.do(t, http.MethodPut, "/api/processes/active", `{"nome":"C"}`), http.StatusNotFound)
}

func TestCreateProcessTrimsName(t *testing.T) {
	env := newTestEnv(t, auth.OpenProvider{})

	rec := env.do(t, http.MethodPost, "/api/processes", `{"nome":"  Mestrado 2026 "}`)
	expectStatus(t, rec, http.StatusOK)
	if st := decode[session.State](t, rec); st.Active != "Mestrado 2026" {
		t.Errorf("Expected trimmed active name, got %q", st.Active)
	}

	doc, err := env.repo.GetByKey(context.Background(), "Mestrado 2026")
	if err != nil {
		t.Fatalf("GetByKey failed: %v", err)
	}
	if doc.Name != "Mestrado 2026" {
		t.Errorf("Expected stored name without whitespace, got %q", doc.Name)
	}

	expectStatus(t, env.do(t, http.MethodPut, "/api/processes/active", `{"nome":" Mestrado 2026"}`), http.StatusNotFound)
}

func TestErrors(t *testing.T) {
	testCases := []struct {
		name     string
		prepare  func(env *testEnv)
		method   string
		path     string
		body     string
		expected int
		message  string
	}{
		{name: "Blank process name", method: http.MethodPost, path: "/api/processes", body: `{"nome":"   "}`, expected: http.StatusBadRequest, message: "Process name is required"},
		{name: "Malformed body", method: http.MethodPost, path: "/api/processes", body: `{"nome":`, expected: http.StatusBadRequest, message: "Invalid request body"},
		{name: "Unknown field", method: http.MethodPut, path: "/api/draft", body: `{"cor":"azul"}`, expected: http.StatusBadRequest, message: "Invalid request body"},
		{name: "Save without selection", method: http.MethodPost, path: "/api/areas", expected: http.StatusBadRequest, message: "No process selected"},
		{name: "Publish without selection", method: http.MethodPost, path: "/api/publish", expected: http.StatusBadRequest, message: "No process selected"},
		{name: "Unknown process", method: http.MethodGet, path: "/api/processes/nope", expected: http.StatusNotFound, message: "Unknown process"},
		{name: "Nothing published", method: http.MethodGet, path: "/api/published", expected: http.StatusNotFound, message: "Nothing has been published yet"},
		{name: "Bad index", method: http.MethodDelete, path: "/api/areas/abc", expected: http.StatusBadRequest, message: "Invalid index"},
		{name: "Negative index", method: http.MethodPost, path: "/api/areas/-1/edit", expected: http.StatusBadRequest, message: "Invalid index"},
		{
			name:     "Area out of range",
			prepare:  func(env *testEnv) { env.sess.CreateProcess(context.Background(), "A") },
			method:   http.MethodDelete,
			path:     "/api/areas/0",
			expected: http.StatusNotFound,
			message:  "Index out of range",
		},
		{name: "Ponto out of range", method: http.MethodPut, path: "/api/draft/pontos/3", body: `{"valor":"x"}`, expected: http.StatusNotFound, message: "Index out of range"},
		{
			name: "Store failure",
			prepare: func(env *testEnv) {
				env.sess.CreateProcess(context.Background(), "A")
				env.repo.SetFailure(errors.New("connection reset"))
			},
			method:   http.MethodPost,
			path:     "/api/areas",
			body:     `{"faculdade":"F","area":"A","pontos":[""]}`,
			expected: http.StatusBadGateway,
			message:  "The store could not complete the request, try again",
		},
		{name: "Wrong method", method: http.MethodPatch, path: "/api/draft", expected: http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t, auth.OpenProvider{})
			if tc.prepare != nil {
				tc.prepare(env)
			}

			rec := env.do(t, tc.method, tc.path, tc.body)
			expectStatus(t, rec, tc.expected)

			if tc.message != "" {
				if got := decode[errorResponse](t, rec); got.Error != tc.message {
					t.Errorf("Expected message %q, got %q", tc.message, got.Error)
				}
			}
		})
	}
}

func TestStoreFailureKeepsMirror(t *testing.T) {
	env := newTestEnv(t, auth.OpenProvider{})
	expectStatus(t, env.do(t, http.MethodPost, "/api/processes", `{"nome":"A"}`), http.StatusOK)

	env.repo.SetFailure(errors.New("timeout"))
	expectStatus(t, env.do(t, http.MethodPost, "/api/areas", `{"faculdade":"F","area":"X","pontos":[""]}`), http.StatusBadGateway)

	env.repo.SetFailure(nil)
	rec := env.do(t, http.MethodGet, "/api/processes", "")
	expectStatus(t, rec, http.StatusOK)
	if st := decode[session.State](t, rec); st.AreaCount != 0 {
		t.Errorf("Expected mirror to be unchanged, got %d areas", st.AreaCount)
	}
}

func TestMutationsRequireAdmin(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		t.Fatalf("Failed to marshal key: %v", err)
	}
	provider, err := auth.NewEd25519AuthProvider(string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), "Authorization")
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	env := newTestEnv(t, provider)

	testCases := []struct {
		method   string
		path     string
		expected int
	}{
		{http.MethodGet, "/api/processes", http.StatusOK},
		{http.MethodGet, "/api/draft", http.StatusOK},
		{http.MethodPost, "/api/processes", http.StatusUnauthorized},
		{http.MethodPut, "/api/processes/active", http.StatusUnauthorized},
		{http.MethodPut, "/api/draft", http.StatusUnauthorized},
		{http.MethodPost, "/api/draft/pontos", http.StatusUnauthorized},
		{http.MethodPost, "/api/areas", http.StatusUnauthorized},
		{http.MethodDelete, "/api/areas/0", http.StatusUnauthorized},
		{http.MethodPost, "/api/publish", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			expectStatus(t, env.do(t, tc.method, tc.path, ""), tc.expected)
		})
	}
}

func TestIndexAndStatic(t *testing.T) {
	env := newTestEnv(t, auth.OpenProvider{})
	env.sess.CreateProcess(context.Background(), "Doutorado")

	rec := env.do(t, http.MethodGet, "/", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "<li>Doutorado</li>") || !strings.Contains(rec.Body.String(), "Doutorado:0") {
		t.Errorf("Unexpected index body %q", rec.Body.String())
	}
	if rec.Header().Get("ETag") == "" {
		t.Error("Expected an ETag on the index page")
	}

	rec = env.do(t, http.MethodGet, "/static/style.css", "")
	expectStatus(t, rec, http.StatusOK)

	expectStatus(t, env.do(t, http.MethodGet, "/missing", ""), http.StatusNotFound)
}

func TestPublishEventStream(t *testing.T) {
	env := newTestEnv(t, auth.OpenProvider{})
	env.sess.CreateProcess(context.Background(), "A")

	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sse", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Expected event stream, got %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("Failed to read event: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				return name, data
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}

	if name, _ := readEvent(); name != "connected" {
		t.Fatalf("Expected connected event, got %q", name)
	}

	pub, err := http.Post(srv.URL+"/api/publish", "application/json", bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("Publish request failed: %v", err)
	}
	pub.Body.Close()
	if pub.StatusCode != http.StatusOK {
		t.Fatalf("Expected publish to succeed, got %d", pub.StatusCode)
	}

	name, data := readEvent()
	if name != EventPublished {
		t.Fatalf("Expected %q event, got %q", EventPublished, name)
	}
	var sel model.PublishedSelection
	if err := json.Unmarshal([]byte(data), &sel); err != nil {
		t.Fatalf("Failed to decode event data: %v", err)
	}
	if sel.ProcessName != "A" {
		t.Errorf("Expected process A in event, got %q", sel.ProcessName)
	}
}
