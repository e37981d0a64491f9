package gcs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/google/uuid"
)

// Uploader pushes annotated inspection images to a Google Cloud Storage
// bucket and returns their public URL. Storage is an external collaborator;
// failures here are non-fatal to the report flow.
type Uploader struct {
	client *storage.Client
	bucket string
}

// NewUploader creates a GCS-backed uploader. If credsPath is empty,
// Application Default Credentials are used.
func NewUploader(ctx context.Context, bucket, credsPath string) (*Uploader, error) {
	var client *storage.Client
	var err error
	if credsPath == "" {
		client, err = storage.NewClient(ctx)
	} else {
		client, err = storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
	}
	if err != nil {
		return nil, err
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

func (u *Uploader) Close() error { return u.client.Close() }

// Upload copies the local file into bucket/<folder>/<uuid><ext> and returns
// the object's public URL.
func (u *Uploader) Upload(ctx context.Context, localPath, folder string) (string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	ext := strings.ToLower(filepath.Ext(localPath))
	objectPath := filepath.ToSlash(filepath.Join(folder, uuid.NewString()+ext))

	wc := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentTypeFor(ext)
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, f); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return publicURL(u.bucket, objectPath), nil
}

func contentTypeFor(ext string) string {
	switch ext {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// publicURL builds a public URL for an object (assuming public read access)
func publicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}
