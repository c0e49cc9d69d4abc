package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/agroflow/logicapture/internal/config"
	"github.com/agroflow/logicapture/internal/database"
	"github.com/agroflow/logicapture/internal/websocket"
)

func newTestRouter() *Router {
	cfg := &config.Config{
		JWTSecret: "test-secret",
		Scanner:   config.ScannerConfig{Cooldown: 7 * time.Second},
	}
	return NewRouter(&database.DB{}, cfg, websocket.NewHub(), nil)
}

func TestChatRoutePath(t *testing.T) {
	router := newTestRouter()

	// The route exists under /chat/pregunta; without a token the auth
	// middleware answers 401, not 404.
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/chat/pregunta", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("POST /api/v1/chat/pregunta = %d, want 401", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/chat", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST /api/v1/chat = %d, want 404", rec.Code)
	}
}

func TestScannerPageCarriesConfiguredCooldown(t *testing.T) {
	router := newTestRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/scanner/some-token", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /scanner/{token} = %d, want 200", rec.Code)
	}

	body := rec.Body.String()
	if strings.Contains(body, "{{COOLDOWN_MS}}") {
		t.Error("cooldown placeholder was not substituted")
	}
	if !strings.Contains(body, `Number("7000")`) {
		t.Error("page should carry the configured cooldown of 7000 ms")
	}
}
