package adapter

import (
	"context"
	"encoding/json"
	"io"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
)

// Storage is a minimal object store
type Storage interface {
	// Put returns a writer to save an object; the object is committed on Close
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	// Get opens an object for reading
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// storageClient implements Storage interface using Cloud Storage
type storageClient struct {
	bucketName string
	client     *storage.Client
}

// NewStorage creates a new Cloud Storage client
func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	writer := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	writer.ContentType = "application/json"
	return writer, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from storage", goerr.V("key", key))
	}
	return reader, nil
}

// Archive writes research results as JSON snapshots into a Storage
type Archive struct {
	storage Storage
	prefix  string
	now     func() time.Time
}

type ArchiveOption func(*Archive)

func WithArchivePrefix(prefix string) ArchiveOption {
	return func(a *Archive) {
		a.prefix = prefix
	}
}

func WithArchiveClock(now func() time.Time) ArchiveOption {
	return func(a *Archive) {
		a.now = now
	}
}

func NewArchive(storage Storage, opts ...ArchiveOption) *Archive {
	a := &Archive{
		storage: storage,
		prefix:  "evidence",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ObjectKey returns the object path of a snapshot taken at ts
func (a *Archive) ObjectKey(key model.ProductKey, ts time.Time) string {
	return path.Join(a.prefix, key.String(), ts.UTC().Format("20060102T150405Z")+".json")
}

// Archive stores one snapshot per research run
func (a *Archive) Archive(ctx context.Context, key model.ProductKey, result *model.ResearchResult) error {
	objKey := a.ObjectKey(key, a.now())
	w, err := a.storage.Put(ctx, objKey)
	if err != nil {
		return goerr.Wrap(err, "failed to open archive object", goerr.V("object", objKey))
	}

	if err := json.NewEncoder(w).Encode(result); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write archive object", goerr.V("object", objKey))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit archive object", goerr.V("object", objKey))
	}

	return nil
}
