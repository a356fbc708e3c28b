// Package objectsource exposes an S3-compatible object collection as a
// source population for object pipelines. Each object becomes one row
// with its uri identity and freshness timestamp.
package objectsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/animus-labs/infersync/internal/domain"
	"github.com/minio/minio-go/v7"
)

// Lister is the slice of the MinIO client the source needs.
type Lister interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

type Source struct {
	client Lister
	bucket string
	prefix string
}

func New(client Lister, bucket, prefix string) (*Source, error) {
	if client == nil {
		return nil, fmt.Errorf("object store client is required")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, fmt.Errorf("bucket is required")
	}
	return &Source{
		client: client,
		bucket: strings.TrimSpace(bucket),
		prefix: strings.TrimSpace(prefix),
	}, nil
}

func (s *Source) Rows(ctx context.Context) ([]domain.Row, error) {
	if s == nil || s.client == nil {
		return nil, fmt.Errorf("object source not initialized")
	}
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    s.prefix,
		Recursive: true,
	})

	rows := make([]domain.Row, 0)
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", s.bucket, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		rows = append(rows, domain.Row{
			"uri":          s.bucket + "/" + obj.Key,
			"updated":      obj.LastModified.UTC(),
			"size":         obj.Size,
			"etag":         strings.Trim(obj.ETag, `"`),
			"content_type": obj.ContentType,
		})
	}
	return rows, nil
}
