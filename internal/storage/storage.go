package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
)

// Sink writes downloaded files into a destination bucket. The default
// destination is a local directory opened through the fileblob driver,
// but any blob URL the gocloud registry knows about works too.
type Sink struct {
	bucket *blob.Bucket
}

// Open creates a sink for the given destination. A destination with a
// URL scheme (for example "s3://bucket") is opened through the blob URL
// mux; anything else is treated as a local directory, created if it
// does not exist.
func Open(ctx context.Context, dest string) (*Sink, error) {
	if strings.Contains(dest, "://") {
		bucket, err := blob.OpenBucket(ctx, dest)
		if err != nil {
			return nil, fmt.Errorf("open bucket %s: %w", dest, err)
		}
		return &Sink{bucket: bucket}, nil
	}

	abs, err := filepath.Abs(dest)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dest, err)
	}
	bucket, err := fileblob.OpenBucket(abs, &fileblob.Options{
		// Sidecar .attrs files would pollute the study folder and
		// confuse the organize pass, so keep metadata off.
		Metadata:  fileblob.MetadataDontWrite,
		CreateDir: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open directory %s: %w", abs, err)
	}
	return &Sink{bucket: bucket}, nil
}

// WriteFile stores data under name, overwriting any existing object.
func (s *Sink) WriteFile(ctx context.Context, name string, data []byte) error {
	w, err := s.bucket.NewWriter(ctx, name, &blob.WriterOptions{
		ContentType: "text/csv",
	})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying bucket.
func (s *Sink) Close() error {
	return s.bucket.Close()
}
