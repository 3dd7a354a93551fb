package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
)

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// UploadBytes writes data to the given object, overwriting any existing
// content. Webhook re-delivery must be able to rewrite the same object, so no
// existence precondition is set.
func UploadBytes(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, data []byte) error {
	writer := bucket.Object(objectName).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(data)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize GCS write for %s: %w", objectName, err)
	}
	return nil
}

// ReadObject downloads an entire object into memory.
func ReadObject(ctx context.Context, client *storage.Client, bucketName, objectName string) ([]byte, error) {
	reader, err := client.Bucket(bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open GCS object gs://%s/%s: %w", bucketName, objectName, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object gs://%s/%s: %w", bucketName, objectName, err)
	}
	return data, nil
}

const publicURLHost = "https://storage.googleapis.com/"

// PublicURL returns the publicly retrievable URL for an object.
func PublicURL(bucketName, objectName string) string {
	return publicURLHost + bucketName + "/" + objectName
}

// ParsePublicURL splits a storage.googleapis.com URL back into its bucket and
// object name. ok is false for any other URL shape.
func ParsePublicURL(rawURL string) (bucketName, objectName string, ok bool) {
	if !strings.HasPrefix(rawURL, publicURLHost) {
		return "", "", false
	}
	rest := strings.TrimPrefix(rawURL, publicURLHost)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
