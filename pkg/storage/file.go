package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// FileUploaderDirPerms are the permissions directories are created with.
	FileUploaderDirPerms os.FileMode = 0755
	// FileUploaderPerms are the permissions written files are created with.
	FileUploaderPerms os.FileMode = 0644
)

// FileUploader writes objects to disk as <dir>/<bucket>/<key>, for dry runs.
type FileUploader struct {
	directory string
}

// FileUploader must implement the Uploader interface
var _ Uploader = FileUploader{}

// NewFileUploader creates an uploader which writes below dir.
func NewFileUploader(dir string) (FileUploader, error) {
	dir = filepath.Clean(dir)
	if info, err := os.Stat(dir); err != nil {
		// don't throw error if just doesn't exist
		if !os.IsNotExist(err) {
			return FileUploader{}, fmt.Errorf("could not access path '%s': %w", dir, err)
		}

		if err = os.MkdirAll(dir, FileUploaderDirPerms); err != nil {
			return FileUploader{}, fmt.Errorf("could not create directory '%s': %w", dir, err)
		}
	} else if !info.IsDir() {
		return FileUploader{}, fmt.Errorf("the path '%s' is a file", dir)
	}

	return FileUploader{
		directory: dir,
	}, nil
}

// Upload writes body to Path(bucket, key), overwriting an existing file.
func (f FileUploader) Upload(ctx context.Context, bucket, key string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := f.Path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), FileUploaderDirPerms); err != nil {
		return fmt.Errorf("could not create directory for '%s': %w", path, err)
	}
	if err := os.WriteFile(path, body, FileUploaderPerms); err != nil {
		uploadsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to write '%s': %w", path, err)
	}
	uploadsTotal.WithLabelValues("success").Inc()
	uploadedBytesTotal.Add(float64(len(body)))
	return nil
}

// Path returns where the object bucket/key is written. Keys escaping the
// bucket directory are rejected.
func (f FileUploader) Path(bucket, key string) (string, error) {
	if bucket == "" || bucket != filepath.Base(bucket) || bucket == "." || bucket == ".." {
		return "", fmt.Errorf("invalid bucket name '%s'", bucket)
	}
	bucketDir := filepath.Join(f.directory, bucket)
	path := filepath.Join(bucketDir, filepath.FromSlash(key))
	rel, err := filepath.Rel(bucketDir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("key '%s' is outside of bucket '%s'", key, bucket)
	}
	return path, nil
}
