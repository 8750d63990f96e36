package logger

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWithWriterLevel(t *testing.T) {
	testCases := []struct {
		level    string
		expected zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{"nonsense", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tc := range testCases {
		t.Run(tc.level, func(t *testing.T) {
			l := NewWithWriter(tc.level, &bytes.Buffer{})
			if l.GetLevel() != tc.expected {
				t.Errorf("Expected level %v, got %v", tc.expected, l.GetLevel())
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("debug", &buf)

	var ctxLoggerSet bool
	h := Middleware(l)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLoggerSet = zerolog.Ctx(r.Context()).GetLevel() == zerolog.DebugLevel
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/processes", nil))

	if !ctxLoggerSet {
		t.Error("Expected the logger to be attached to the request context")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("Expected status to pass through, got %d", rec.Code)
	}

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("Expected one JSON access line, got %q: %v", buf.String(), err)
	}
	if line["path"] != "/api/processes" || line["status"] != float64(http.StatusTeapot) {
		t.Errorf("Unexpected access line %v", line)
	}
}
