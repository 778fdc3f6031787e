package repository

import (
	"context"
	"net/url"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/omnix/pkg/model"
	"github.com/m-mizutani/omnix/pkg/utils/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Firestore stores cache entries as documents keyed by product key
type Firestore struct {
	client *firestore.Client
	opts   *options
}

// NewFirestore creates a Firestore backed evidence cache
func NewFirestore(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("project", projectID),
			goerr.V("database", databaseID))
	}

	return &Firestore{
		client: client,
		opts:   newOptions(opts),
	}, nil
}

// doc escapes the key because Firestore document IDs must not contain "/"
func (r *Firestore) doc(key model.ProductKey) *firestore.DocumentRef {
	return r.client.Collection(r.opts.collection).Doc(url.PathEscape(key.String()))
}

func (r *Firestore) GetEvidence(ctx context.Context, key model.ProductKey) (*model.ResearchResult, error) {
	snap, err := r.doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get cache entry", goerr.V("key", key))
	}

	var entry model.CacheEntry
	if err := snap.DataTo(&entry); err != nil {
		return nil, goerr.Wrap(err, "failed to decode cache entry", goerr.V("key", key))
	}

	if entry.Expired(r.opts.now()) {
		if _, err := r.doc(key).Delete(ctx); err != nil {
			logging.From(ctx).Warn("failed to delete expired cache entry", "key", key, "error", err)
		}
		return nil, nil
	}

	return entry.Result(), nil
}

func (r *Firestore) PutEvidence(ctx context.Context, key model.ProductKey, result *model.ResearchResult) error {
	entry := model.NewCacheEntry(key, result, r.opts.now())
	if _, err := r.doc(key).Set(ctx, entry); err != nil {
		return goerr.Wrap(err, "failed to put cache entry", goerr.V("key", key))
	}
	return nil
}

// Close releases the underlying client
func (r *Firestore) Close() error {
	return r.client.Close()
}
