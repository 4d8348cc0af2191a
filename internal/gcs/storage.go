package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
)

// ErrObjectNotFound is returned when the object behind a URI does not exist.
var ErrObjectNotFound = errors.New("object not found")

const uploadTimeout = 2 * time.Minute

// ObjectStore reads and writes whole objects addressed by gs:// URIs.
type ObjectStore interface {
	Read(ctx context.Context, uri string) ([]byte, error)
	Write(ctx context.Context, uri string, data []byte, contentType string) error
}

// Client is an ObjectStore backed by Google Cloud Storage. It assumes
// Application Default Credentials are configured.
type Client struct {
	client *storage.Client
}

// NewClient opens a storage client. Callers must Close it.
func NewClient(ctx context.Context) (*Client, error) {
	c, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}
	return &Client{client: c}, nil
}

// Close releases the underlying storage client.
func (c *Client) Close() error {
	return c.client.Close()
}

// Read downloads the object at uri.
func (c *Client) Read(ctx context.Context, uri string) ([]byte, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	rc, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("Read: %s: %w", uri, ErrObjectNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("Read: open object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Read: read bytes: %w", err)
	}
	return data, nil
}

// Write stores data at uri, replacing any existing object.
func (c *Client) Write(ctx context.Context, uri string, data []byte, contentType string) error {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	w := c.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("Write: copy to GCS writer: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Write: finalize upload: %w", err)
	}
	return nil
}

// UploadFile copies a local file to uri.
func UploadFile(ctx context.Context, store ObjectStore, uri, filePath, contentType string) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("UploadFile: open file %q: %w", filePath, err)
	}
	if err := store.Write(ctx, uri, data, contentType); err != nil {
		return fmt.Errorf("UploadFile: %w", err)
	}
	return nil
}
