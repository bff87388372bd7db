// validation.go - Input sanitization helpers for storage keys and filenames
package server

import (
	"mime"
	"strings"
)

// sanitizeIdentifier collapses anything outside [A-Za-z0-9._-] so that
// participant and task identifiers are safe to embed in object keys and
// local file paths. Empty or pure-dot input falls back to the given default.
func sanitizeIdentifier(s, fallback string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '_', r == '-':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := b.String()
	// A pure-dot identifier would alias the current or parent directory.
	if strings.Trim(out, ".") == "" {
		return fallback
	}
	return out
}

// extensionFromMIME derives a file extension from the subtype of a MIME
// type, e.g. "audio/webm" -> "webm". Parameters ("; codecs=opus") are
// stripped first. Falls back when the subtype is missing or unusable.
func extensionFromMIME(mimeType, fallback string) string {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.ToLower(mimeType))
	}

	_, subtype, ok := strings.Cut(mediaType, "/")
	if !ok || subtype == "" {
		return fallback
	}

	// Subtypes like "x-wav" carry a vendor prefix that makes ugly extensions.
	subtype = strings.TrimPrefix(subtype, "x-")

	ext := sanitizeIdentifier(subtype, "")
	if ext == "" {
		return fallback
	}
	return ext
}
