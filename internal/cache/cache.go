// Package cache fronts repeated band and collection-index reads with a
// TTL-bounded in-memory cache (github.com/jellydator/ttlcache/v3), purged
// synchronously on every successful write so a cache hit can never observe
// state older than the most recently committed write (spec.md §5).
package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"bandvault/internal/collectionmodel"
)

// indexKey is the single cache key used for the collection index singleton.
const indexKey = "__collection_index__"

// Store caches band records and the collection index.
type Store struct {
	bands *ttlcache.Cache[string, collectionmodel.Band]
	index *ttlcache.Cache[string, collectionmodel.CollectionIndex]
}

// New builds a Store whose entries expire after ttl. ttl is informational
// per spec.md §6.5 (CACHE_DURATION_DAYS): correctness never depends on
// expiry because every write path purges its own key explicitly.
func New(ttl time.Duration) *Store {
	bands := ttlcache.New[string, collectionmodel.Band](
		ttlcache.WithTTL[string, collectionmodel.Band](ttl),
	)
	index := ttlcache.New[string, collectionmodel.CollectionIndex](
		ttlcache.WithTTL[string, collectionmodel.CollectionIndex](ttl),
	)
	go bands.Start()
	go index.Start()
	return &Store{bands: bands, index: index}
}

// Close stops the background eviction goroutines.
func (s *Store) Close() {
	s.bands.Stop()
	s.index.Stop()
}

// GetBand returns a cached band record, if present and unexpired.
func (s *Store) GetBand(key string) (collectionmodel.Band, bool) {
	item := s.bands.Get(key)
	if item == nil {
		return collectionmodel.Band{}, false
	}
	return item.Value(), true
}

// PutBand caches a band record under key.
func (s *Store) PutBand(key string, band collectionmodel.Band) {
	s.bands.Set(key, band, ttlcache.DefaultTTL)
}

// InvalidateBand purges a single band's cache entry.
func (s *Store) InvalidateBand(key string) {
	s.bands.Delete(key)
}

// InvalidateAllBands purges every cached band record, used when a scan may
// have touched an unbounded set of bands.
func (s *Store) InvalidateAllBands() {
	s.bands.DeleteAll()
}

// GetIndex returns the cached collection index, if present and unexpired.
func (s *Store) GetIndex() (collectionmodel.CollectionIndex, bool) {
	item := s.index.Get(indexKey)
	if item == nil {
		return collectionmodel.CollectionIndex{}, false
	}
	return item.Value(), true
}

// PutIndex caches the collection index.
func (s *Store) PutIndex(idx collectionmodel.CollectionIndex) {
	s.index.Set(indexKey, idx, ttlcache.DefaultTTL)
}

// InvalidateIndex purges the cached collection index.
func (s *Store) InvalidateIndex() {
	s.index.Delete(indexKey)
}
