package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
)

// audioContentType is what the browser recorder produces.
const audioContentType = "audio/webm"

type uploadAudioResp struct {
	Message string `json:"message"`
	Path    string `json:"path"`
}

// buildAudioKey namespaces a recording by participant and stamps it to the
// second; the combination keeps concurrent uploads from distinct moments
// collision-free.
func buildAudioKey(participantID, taskType string, now time.Time) string {
	return fmt.Sprintf("%s/%s_%s.webm", participantID, taskType, now.UTC().Format("20060102T150405"))
}

// uploadAudioHandler handles POST /upload_audio: a multipart form with the
// recording under "audio_data" plus participant_id and task_type fields.
// S3 mode streams the part straight into the bucket; local mode writes a
// sanitized path under the audio directory.
func (cfg Config) uploadAudioHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		if err := r.ParseMultipartForm(8 << 20); err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
					"error": "request body too large",
				})
				return
			}
			writeError(w, r, badRequest("invalid multipart form: %v", err))
			return
		}

		participantID := strings.TrimSpace(r.FormValue("participant_id"))
		taskType := strings.TrimSpace(r.FormValue("task_type"))
		if participantID == "" || taskType == "" {
			writeError(w, r, badRequest("participant_id and task_type are required"))
			return
		}

		file, header, err := r.FormFile("audio_data")
		if err != nil {
			writeError(w, r, badRequest("missing audio_data file field"))
			return
		}
		defer func() { _ = file.Close() }()

		key := buildAudioKey(participantID, taskType, time.Now())

		var path string
		var message string
		if cfg.LocalMode() {
			path, err = cfg.writeLocalAudio(key, file)
			if err != nil {
				writeError(w, r, storageFailure("upload audio", err))
				return
			}
			message = "Audio saved locally"
		} else {
			ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
			defer cancel()

			_, err = cfg.Minio.PutObject(ctx, cfg.Bucket, key, file, header.Size,
				minio.PutObjectOptions{ContentType: audioContentType})
			if err != nil {
				writeError(w, r, storageFailure("upload audio", err))
				return
			}
			path = key
			message = "Audio uploaded to cloud storage"
		}

		GetMetrics().RecordAudioUpload(header.Size)
		Info("audio stored", map[string]any{
			"rid":            RequestIDFromContext(r.Context()),
			"participant_id": participantID,
			"task_type":      taskType,
			"path":           path,
			"bytes":          header.Size,
		})

		writeJSON(w, http.StatusOK, uploadAudioResp{Message: message, Path: path})
	})
}

// writeLocalAudio streams an uploaded recording to the local audio
// directory, creating intermediate directories for the participant.
func (cfg Config) writeLocalAudio(key string, src io.Reader) (string, error) {
	path := filepath.Join(cfg.AudioDir, sanitizeKeyToPath(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", err
	}
	if err := dst.Close(); err != nil {
		return "", err
	}
	return path, nil
}
