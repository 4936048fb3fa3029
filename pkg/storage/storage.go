package storage

//go:generate mockgen -destination=mock/mock_uploader.go -package=mockstorage github.com/operator-framework/cost-forecaster/pkg/storage Uploader

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Uploader persists report bodies.
type Uploader interface {
	// Upload writes body to key in bucket, replacing any existing object.
	Upload(ctx context.Context, bucket, key string, body []byte) error
}

// Content types set on uploaded objects, chosen by key suffix.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ContentType returns the content type of an object from its key.
func ContentType(key string) string {
	if strings.HasSuffix(strings.ToLower(key), ".xlsx") {
		return ContentTypeXLSX
	}
	return ContentTypeCSV
}

// Setup returns the uploader for a destination URL. An empty destination or
// s3:// uploads through the given S3 uploader; file:///some/dir writes below
// that directory instead.
func Setup(dest string, s3Uploader Uploader) (Uploader, error) {
	if dest == "" {
		return s3Uploader, nil
	}
	u, err := url.Parse(dest)
	if err != nil {
		return nil, fmt.Errorf("a valid destination with scheme (s3:// or file://) must be given: %w", err)
	}

	switch u.Scheme {
	case "s3":
		return s3Uploader, nil
	case "file":
		return NewFileUploader(u.Path)
	default:
		return nil, fmt.Errorf("unknown scheme '%s' given, please provide either s3:// or file://", u.Scheme)
	}
}
