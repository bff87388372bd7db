package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newLocalTestConfig builds a local-simulation-mode Config rooted in a
// per-test temp directory.
func newLocalTestConfig(t *testing.T) Config {
	t.Helper()

	audioDir, demographicsDir, err := EnsureStorageDirs(t.TempDir())
	if err != nil {
		t.Fatalf("EnsureStorageDirs: %v", err)
	}

	return Config{
		Addr:            ":0",
		Build:           BuildInfo{Version: "test", Commit: "none"},
		BaseURL:         "http://localhost:8080",
		AudioDir:        audioDir,
		DemographicsDir: demographicsDir,
	}
}

func TestIndex_LocalMode(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Local simulation mode") {
		t.Errorf("expected local mode status string, got %q", rr.Body.String())
	}
}

func TestIndex_UnknownPath(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestMaxBodyMiddleware_RejectsOversizedBody(t *testing.T) {
	cfg := newLocalTestConfig(t)
	cfg.MaxBodyBytes = 16
	handler := NewHandler(cfg)

	req := httptest.NewRequest(http.MethodPost, "/upload-complete",
		strings.NewReader(strings.Repeat("x", 100)))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("expected 413 for oversized body, got %d", rr.Code)
	}
}

func TestLive(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 from /live, got %d", rr.Code)
	}
}

func TestHealth_LocalMode(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /health, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "local_simulation") {
		t.Errorf("expected local_simulation mode in health body, got %q", rr.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "srb_requests_total") {
		t.Errorf("expected srb_requests_total in metrics output")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodOptions, "/save_demographics", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for preflight, got %d", rr.Code)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected permissive CORS origin header")
	}
}

func TestRequestIDEchoed(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Request-Id"); got != "abc123" {
		t.Errorf("expected request id echoed back, got %q", got)
	}
}
