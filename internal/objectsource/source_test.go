package objectsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
)

type fakeLister struct {
	objects   []minio.ObjectInfo
	gotBucket string
	gotPrefix string
}

func (f *fakeLister) ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	f.gotBucket = bucket
	f.gotPrefix = opts.Prefix
	ch := make(chan minio.ObjectInfo, len(f.objects))
	for _, obj := range f.objects {
		ch <- obj
	}
	close(ch)
	return ch
}

func TestSourceRows(t *testing.T) {
	uploaded := time.Date(2025, 4, 2, 8, 0, 0, 0, time.UTC)
	lister := &fakeLister{objects: []minio.ObjectInfo{
		{Key: "calls/2025/a.wav", LastModified: uploaded, Size: 1024, ETag: `"abc123"`, ContentType: "audio/wav"},
		{Key: "calls/2025/", LastModified: uploaded},
		{Key: "calls/2025/b.wav", LastModified: uploaded.Add(time.Hour), Size: 2048},
	}}

	source, err := New(lister, "recordings", "calls/")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	rows, err := source.Rows(context.Background())
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if lister.gotBucket != "recordings" || lister.gotPrefix != "calls/" {
		t.Fatalf("unexpected listing args: %s %s", lister.gotBucket, lister.gotPrefix)
	}
	if len(rows) != 2 {
		t.Fatalf("directory markers must be skipped, got %d rows", len(rows))
	}
	if rows[0]["uri"] != "recordings/calls/2025/a.wav" {
		t.Fatalf("unexpected uri: %v", rows[0]["uri"])
	}
	if rows[0]["etag"] != "abc123" {
		t.Fatalf("etag quotes not stripped: %v", rows[0]["etag"])
	}
	if got := rows[0].Freshness("updated"); !got.Equal(uploaded) {
		t.Fatalf("unexpected freshness: %v", got)
	}
}

func TestSourceRowsListError(t *testing.T) {
	lister := &fakeLister{objects: []minio.ObjectInfo{{Err: errors.New("access denied")}}}
	source, err := New(lister, "recordings", "")
	if err != nil {
		t.Fatalf("new source: %v", err)
	}
	if _, err := source.Rows(context.Background()); err == nil {
		t.Fatalf("expected listing error")
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(nil, "b", ""); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := New(&fakeLister{}, "  ", ""); err == nil {
		t.Fatalf("expected error for blank bucket")
	}
}
