package server

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ErrStorageNotConfigured is returned by NewMinioClient when none of the S3
// environment variables are set. The caller treats this as a deliberate
// choice and falls back to local simulation mode rather than failing.
var ErrStorageNotConfigured = errors.New("object storage not configured")

func normaliseEndpoint(raw string) (endpoint string, secure bool, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false, fmt.Errorf("empty endpoint")
	}

	// Accept either "minio:9000" or "http://minio:9000" / "https://minio:9000".
	if strings.Contains(raw, "://") {
		u, err := url.Parse(raw)
		if err != nil {
			return "", false, err
		}
		if u.Host == "" {
			return "", false, fmt.Errorf("invalid endpoint")
		}
		if u.Path != "" && u.Path != "/" {
			return "", false, fmt.Errorf("endpoint must not contain a path")
		}
		secure = (u.Scheme == "https")
		return u.Host, secure, nil
	}

	// No scheme provided, treat as host:port (insecure by default for local MinIO).
	return raw, false, nil
}

// NewMinioClient builds the object-store client from the SRB_S3_* environment
// variables and verifies the bucket exists. Distinguishes "not configured at
// all" (ErrStorageNotConfigured, run locally) from a broken configuration
// (hard error, refuse to start).
func NewMinioClient() (*minio.Client, string, error) {
	rawEndpoint := os.Getenv("SRB_S3_ENDPOINT")
	accessKey := os.Getenv("SRB_S3_ACCESS_KEY")
	secretKey := os.Getenv("SRB_S3_SECRET_KEY")
	bucket := os.Getenv("SRB_BUCKET")

	if rawEndpoint == "" && accessKey == "" && secretKey == "" && bucket == "" {
		return nil, "", ErrStorageNotConfigured
	}
	if rawEndpoint == "" || accessKey == "" || secretKey == "" || bucket == "" {
		return nil, "", fmt.Errorf("incomplete S3 configuration: SRB_S3_ENDPOINT, SRB_S3_ACCESS_KEY, SRB_S3_SECRET_KEY and SRB_BUCKET must all be set")
	}

	endpoint, secure, err := normaliseEndpoint(rawEndpoint)
	if err != nil {
		return nil, "", err
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
	})
	if err != nil {
		return nil, "", err
	}

	// Sanity check: bucket must exist.
	exists, err := client.BucketExists(context.Background(), bucket)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", fmt.Errorf("bucket does not exist: %s", bucket)
	}

	return client, bucket, nil
}
