package server

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Subdirectories of the local data root used in local simulation mode.
// The names mirror what the study's analysis scripts expect to find.
const (
	localAudioDirName        = "audio_recordings_local_simulated"
	localDemographicsDirName = "demographics_data"
)

// EnsureStorageDirs creates the local audio and demographics directories
// under dataDir and returns their absolute paths. Called once at startup;
// local simulation mode refuses to run without them.
func EnsureStorageDirs(dataDir string) (audioDir, demographicsDir string, err error) {
	abs, err := filepath.Abs(dataDir)
	if err != nil {
		return "", "", err
	}

	audioDir = filepath.Join(abs, localAudioDirName)
	demographicsDir = filepath.Join(abs, localDemographicsDirName)

	for _, dir := range []string{audioDir, demographicsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", "", fmt.Errorf("create storage dir %s: %w", dir, err)
		}
	}
	return audioDir, demographicsDir, nil
}

// sanitizeKeyToPath converts an object key ("participant/task_ts.webm") into
// a filesystem-safe relative path. Each segment is sanitized independently;
// empty and dot-only segments are dropped so the result can never escape the
// storage root.
func sanitizeKeyToPath(key string) string {
	segments := strings.Split(key, "/")
	clean := make([]string, 0, len(segments))
	for _, seg := range segments {
		seg = sanitizeIdentifier(seg, "")
		if seg == "" {
			continue
		}
		clean = append(clean, seg)
	}
	if len(clean) == 0 {
		return "unnamed"
	}
	return filepath.Join(clean...)
}

// writeLocalObject writes data for the given object key under root,
// creating intermediate directories. Returns the absolute path written.
func writeLocalObject(root, key string, data []byte) (string, error) {
	path := filepath.Join(root, sanitizeKeyToPath(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
