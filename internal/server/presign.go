package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"time"
)

// presignExpiry is the validity window of issued upload URLs. Recordings
// are uploaded immediately after the grant is fetched, so five minutes
// leaves room for slow connections without keeping write access open.
const presignExpiry = 300 * time.Second

// Defaults substituted when the front-end omits the optional identifiers;
// self-describing so stray objects are easy to spot in bucket listings.
const (
	defaultParticipant = "unknown_participant"
	defaultTask        = "unknown_task"
)

// localSimulationPath is the fixed endpoint returned as the stand-in
// "presigned URL" when no object store is configured.
const localSimulationPath = "/simulate_local_audio_upload"

type presignReq struct {
	FileType        string  `json:"fileType"`
	ParticipantID   string  `json:"participantId"`
	TaskType        string  `json:"taskType"`
	DurationSeconds float64 `json:"durationSeconds"`
}

type presignResp struct {
	PresignedURL  string `json:"presignedUrl"`
	S3Key         string `json:"s3Key"`
	Message       string `json:"message"`
	LocalFilePath string `json:"localFilePath,omitempty"`
}

// buildRecordingKey stamps presigned keys to the microsecond: several
// grants for the same participant and task may be issued within one second,
// and each must address a distinct object.
func buildRecordingKey(participant, task, ext string, now time.Time) string {
	now = now.UTC()
	timestamp := fmt.Sprintf("%s_%06d", now.Format("20060102T150405"), now.Nanosecond()/1000)
	return fmt.Sprintf("speech_recordings/%s/%s_%s.%s", participant, task, timestamp, ext)
}

// presignedURLHandler handles POST /get-presigned-url. S3 mode returns a
// 300-second write-only URL bound to the exact key and content type, so the
// client uploads directly to the bucket. Local mode returns the simulation
// endpoint as a stand-in plus the local path the recording would land at,
// signaling the caller that no direct-to-storage upload is happening.
func (cfg Config) presignedURLHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req presignReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, badRequest("request body must be JSON"))
			return
		}
		if req.FileType == "" {
			writeError(w, r, badRequest("fileType is required"))
			return
		}

		participant := sanitizeIdentifier(req.ParticipantID, defaultParticipant)
		task := sanitizeIdentifier(req.TaskType, defaultTask)
		ext := extensionFromMIME(req.FileType, "webm")

		key := buildRecordingKey(participant, task, ext, time.Now())

		resp := presignResp{S3Key: key}
		if cfg.LocalMode() {
			resp.PresignedURL = cfg.BaseURL + localSimulationPath
			resp.LocalFilePath = filepath.Join(cfg.AudioDir, sanitizeKeyToPath(key))
			resp.Message = "Local simulation mode: PUT the recording to the returned URL"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
			defer cancel()

			signed, err := cfg.Minio.PresignHeader(ctx, http.MethodPut, cfg.Bucket, key,
				presignExpiry, url.Values{}, http.Header{"Content-Type": []string{req.FileType}})
			if err != nil {
				writeError(w, r, storageFailure("generate presigned URL", err))
				return
			}
			resp.PresignedURL = signed.String()
			resp.Message = "Presigned URL generated"
		}

		GetMetrics().RecordPresignedURL()
		Info("upload grant issued", map[string]any{
			"rid":              RequestIDFromContext(r.Context()),
			"participant_id":   participant,
			"task_type":        task,
			"s3_key":           key,
			"duration_seconds": req.DurationSeconds,
			"local_mode":       cfg.LocalMode(),
		})

		writeJSON(w, http.StatusOK, resp)
	})
}
