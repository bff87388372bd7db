package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestPresign_LocalModeReturnsSimulationEndpoint(t *testing.T) {
	cfg := newLocalTestConfig(t)
	handler := NewHandler(cfg)

	rr := postJSON(t, handler, "/get-presigned-url",
		`{"fileType": "audio/webm", "participantId": "p1", "taskType": "reading"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp presignResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.PresignedURL != cfg.BaseURL+"/simulate_local_audio_upload" {
		t.Errorf("expected fixed simulation endpoint, got %q", resp.PresignedURL)
	}
	if !strings.HasPrefix(resp.S3Key, "speech_recordings/p1/reading_") {
		t.Errorf("unexpected key %q", resp.S3Key)
	}
	if !strings.HasSuffix(resp.S3Key, ".webm") {
		t.Errorf("expected .webm key for audio/webm, got %q", resp.S3Key)
	}
	if resp.LocalFilePath == "" {
		t.Errorf("expected localFilePath in local mode")
	}
}

func TestPresign_DefaultsAndSanitization(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	rr := postJSON(t, handler, "/get-presigned-url", `{"fileType": "audio/ogg;codecs=opus"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	var resp presignResp
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.S3Key, "speech_recordings/unknown_participant/unknown_task_") {
		t.Errorf("expected default identifiers in key, got %q", resp.S3Key)
	}
	if !strings.HasSuffix(resp.S3Key, ".ogg") {
		t.Errorf("expected extension from MIME subtype, got %q", resp.S3Key)
	}
}

func TestPresign_MissingFileType(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	rr := postJSON(t, handler, "/get-presigned-url", `{"participantId": "p1"}`)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing fileType, got %d", rr.Code)
	}
}

func TestPresign_NonJSONBody(t *testing.T) {
	handler := NewHandler(newLocalTestConfig(t))

	rr := postJSON(t, handler, "/get-presigned-url", "<xml/>")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for non-JSON body, got %d", rr.Code)
	}
}

func TestBuildRecordingKey_MicrosecondPrecision(t *testing.T) {
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	a := buildRecordingKey("p1", "reading", "webm", base)
	b := buildRecordingKey("p1", "reading", "webm", base.Add(time.Microsecond))
	if a == b {
		t.Errorf("keys one microsecond apart must differ, both %q", a)
	}

	want := "speech_recordings/p1/reading_20250601T120000_000000.webm"
	if a != want {
		t.Errorf("buildRecordingKey = %q, want %q", a, want)
	}
}
