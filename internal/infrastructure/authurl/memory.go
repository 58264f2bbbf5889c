// Package authurl provides stores for the verification URI of the active
// device authorization session.
package authurl

import (
	"context"

	gocache "github.com/patrickmn/go-cache"

	"github.com/turtacn/kam/pkg/constants"
)

// MemoryStore keeps the URI in an in-process cache with a TTL so a crashed
// session cannot leave a stale URI behind forever.
type MemoryStore struct {
	cache *gocache.Cache
}

// NewMemoryStore returns a single-process store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		cache: gocache.New(constants.AuthURLCacheTTL, constants.AuthURLCacheTTL),
	}
}

func (s *MemoryStore) SetCurrent(_ context.Context, uri string) error {
	s.cache.Set(constants.CacheKeyAuthURL, uri, gocache.DefaultExpiration)
	return nil
}

func (s *MemoryStore) Current(_ context.Context) (string, error) {
	if v, ok := s.cache.Get(constants.CacheKeyAuthURL); ok {
		return v.(string), nil
	}
	return "", nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.cache.Delete(constants.CacheKeyAuthURL)
	return nil
}
