package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	gcs "cloud.google.com/go/storage"
)

// FirebaseStore stores images in the Firebase Storage bucket of the project.
type FirebaseStore struct {
	bucket *gcs.BucketHandle
	name   string
}

// NewFirebaseStore wraps a bucket handle obtained from the Firebase storage client.
func NewFirebaseStore(bucket *gcs.BucketHandle, bucketName string) *FirebaseStore {
	return &FirebaseStore{bucket: bucket, name: bucketName}
}

func (s *FirebaseStore) Put(ctx context.Context, name string, r io.Reader, _ int64, contentType string) (string, error) {
	w := s.bucket.Object(name).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to upload %s to firebase storage: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize %s in firebase storage: %w", name, err)
	}
	return firebaseObjectURL(s.name, name), nil
}

func firebaseObjectURL(bucket, name string) string {
	return fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", bucket, url.PathEscape(name))
}
