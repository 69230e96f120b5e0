// Package modelstore caches resolved model bundles with an explicit
// lifecycle: populate once per key, invalidate on demand. Concurrent
// first loads of the same key are collapsed into a single loader call.
package modelstore

import (
	"context"
	"errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/Enwin-A/Alloy-App/alloy"
)

// ErrNoLoader is returned by Get when the store has no loader.
var ErrNoLoader = errors.New("modelstore: no loader configured")

// Loader resolves a bundle for a cache key, typically
// "<target>_<mode>".
type Loader func(ctx context.Context, key string) (*alloy.Bundle, error)

// Store is the explicit bundle cache handed to the shell. Failed loads
// are not cached; the next Get retries.
type Store struct {
	loader Loader
	cache  *gocache.Cache
	group  singleflight.Group
}

// New builds a store around the given loader. Bundles never expire;
// eviction happens only through Invalidate.
func New(loader Loader) *Store {
	return &Store{
		loader: loader,
		cache:  gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the cached bundle for key, loading it on first use.
func (s *Store) Get(ctx context.Context, key string) (*alloy.Bundle, error) {
	if v, ok := s.cache.Get(key); ok {
		return v.(*alloy.Bundle), nil
	}
	if s.loader == nil {
		return nil, ErrNoLoader
	}
	v, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.cache.Get(key); ok {
			return v, nil
		}
		bundle, err := s.loader(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("load model %q: %w", key, err)
		}
		s.cache.Set(key, bundle, gocache.NoExpiration)
		return bundle, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*alloy.Bundle), nil
}

// Invalidate drops the cached bundle for key, forcing a reload on the
// next Get.
func (s *Store) Invalidate(key string) {
	s.cache.Delete(key)
}
