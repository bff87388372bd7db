// Package server implements the HTTP surface of the speech-recorder study
// backend: demographics submissions, audio uploads, presigned upload grants
// and the local-simulation fallback. It wires the routes, middleware and the
// storage backend (MinIO/S3 or local filesystem) selected once at startup.
package server
