// Package repository implements the evidence cache on top of Firestore, Redis or process memory.
package repository

import (
	"time"

	"github.com/m-mizutani/omnix/pkg/interfaces"
)

var (
	_ interfaces.EvidenceCache = (*Firestore)(nil)
	_ interfaces.EvidenceCache = (*Redis)(nil)
	_ interfaces.EvidenceCache = (*Memory)(nil)
)

const (
	defaultCollection = "cache"
	defaultKeyPrefix  = "omnix:cache:"
)

type options struct {
	now        func() time.Time
	collection string
	keyPrefix  string
}

func newOptions(opts []Option) *options {
	o := &options{
		now:        time.Now,
		collection: defaultCollection,
		keyPrefix:  defaultKeyPrefix,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Option configures a cache backend
type Option func(*options)

// WithClock replaces the time source used for TTL decisions
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithCollection sets the Firestore collection name (default "cache")
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// WithKeyPrefix sets the Redis key prefix (default "omnix:cache:")
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}
