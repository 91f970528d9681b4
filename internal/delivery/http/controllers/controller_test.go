package controllers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/delivery/http/middleware"
	"tripsplit/internal/domain"
)

const (
	tripID   = "0b6f2c1e-3d5a-4e8b-9c7d-1a2b3c4d5e6f"
	otherID  = "5f0e9d8c-7b6a-4c5d-8e9f-0a1b2c3d4e5f"
	aliceID  = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
	notAUUID = "not-a-uuid"
)

var (
	testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	alice      = &domain.Identity{UserID: aliceID, Email: "alice@example.com"}
)

type envelope struct {
	Data  json.RawMessage   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// serve routes one request through a mux registered with pattern so path values are
// populated the same way as in production. A nil caller sends the request unauthenticated.
func serve(t *testing.T, pattern string, handler http.HandlerFunc, method, target, body string, caller *domain.Identity) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if caller != nil {
		req = req.WithContext(middleware.SetIdentity(req.Context(), *caller))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	}
	return w, env
}

func errorCode(env envelope) string {
	if env.Error == nil {
		return ""
	}
	return env.Error.Code
}
