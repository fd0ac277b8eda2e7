package cache

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"time"

	"github.com/Digital-Shane/posteria/internal/metrics"
	"github.com/mhmtszr/concurrent-swiss-map"
	gocache "github.com/patrickmn/go-cache"
)

// Fingerprint derives the cache key for an upstream call from its endpoint and
// parameters. Parameter order does not matter; credentials must be left out of
// params by the caller so keys stay stable across key rotation.
func Fingerprint(endpoint string, params url.Values) string {
	sum := md5.Sum([]byte(endpoint + "?" + params.Encode()))
	return hex.EncodeToString(sum[:])
}

// Shared is the process-wide payload cache. It is best effort: entries expire
// after the configured TTL and nothing is persisted. A nil *Shared is a valid
// disabled cache.
type Shared struct {
	c *gocache.Cache
}

// NewShared returns a shared cache, or nil when ttl is not positive
func NewShared(ttl time.Duration) *Shared {
	if ttl <= 0 {
		return nil
	}
	return &Shared{c: gocache.New(ttl, 2*ttl)}
}

// Get returns a cached payload
func (s *Shared) Get(key string) ([]byte, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.c.Get(key)
	if !ok {
		return nil, false
	}
	body, ok := v.([]byte)
	return body, ok
}

// Set stores a payload with the default expiration
func (s *Shared) Set(key string, body []byte) {
	if s == nil {
		return
	}
	s.c.Set(key, body, gocache.DefaultExpiration)
}

// Len returns the number of live entries
func (s *Shared) Len() int {
	if s == nil {
		return 0
	}
	return s.c.ItemCount()
}

// Memo is the request-scoped payload cache. It falls through to the shared
// cache on a miss and promotes shared hits so later lookups in the same
// request stay local.
type Memo struct {
	entries *csmap.CsMap[string, []byte]
	shared  *Shared
}

// NewMemo returns an empty memo backed by shared, which may be nil
func NewMemo(shared *Shared) *Memo {
	return &Memo{
		entries: csmap.Create[string, []byte](),
		shared:  shared,
	}
}

// Get returns the payload stored under key
func (m *Memo) Get(key string) ([]byte, bool) {
	if body, ok := m.entries.Load(key); ok {
		metrics.ObserveCache("request", true)
		return body, true
	}
	metrics.ObserveCache("request", false)

	if m.shared == nil {
		return nil, false
	}
	body, ok := m.shared.Get(key)
	metrics.ObserveCache("shared", ok)
	if ok {
		m.entries.Store(key, body)
	}
	return body, ok
}

// Set stores body in the memo and the shared cache
func (m *Memo) Set(key string, body []byte) {
	m.entries.Store(key, body)
	m.shared.Set(key, body)
}

// Len returns the number of request-scoped entries
func (m *Memo) Len() int {
	return m.entries.Count()
}
