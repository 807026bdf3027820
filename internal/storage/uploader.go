package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// Uploader writes product images to Cloud Storage and returns a public
// download-token URL, the same URL shape Firebase clients expect.
type Uploader struct {
	client *gcs.Client
	bucket string
}

func NewUploader(client *gcs.Client, bucket string) (*Uploader, error) {
	if client == nil {
		return nil, errors.New("storage client is nil")
	}
	if bucket == "" {
		return nil, errors.New("STORAGE_BUCKET is not set")
	}
	return &Uploader{client: client, bucket: bucket}, nil
}

func (u *Uploader) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty file")
	}
	token := uuid.NewString()

	w := u.client.Bucket(u.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucket, url.QueryEscape(objectPath), token)
	return publicURL, nil
}

// ProductImagePath names an uploaded image under its product folder.
func ProductImagePath(productID uint64, filename string) string {
	return fmt.Sprintf("products/%d/%s-%s", productID, uuid.NewString()[:8], filename)
}
