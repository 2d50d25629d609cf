// Package redis implements internal/store.CapitalStore against Redis via
// go-redis, with an in-memory fallback when Redis is unreachable so a
// live session keeps trading rather than blocking on cache availability.
// Grounded on the teacher repo's
// internal/database.RedisPositionStateRepository (key-prefix convention,
// TTL, Redis-down fallback-to-memory shape), generalized from per-user
// futures position state to the decision engine's single CapitalState
// keyed by symbol.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/conflux-quant/decision-engine/internal/store"
)

var _ store.CapitalStore = (*CapitalStore)(nil)

// keyPrefix namespaces capital-state keys in the shared Redis keyspace.
const keyPrefix = "conflux:capital"

// stateTTL bounds how long a stale capital snapshot survives before Redis
// expires it; a restarted driver older than this re-initializes from
// initial_capital instead of trusting ancient state.
const stateTTL = 7 * 24 * time.Hour

// CapitalStore caches CapitalState in Redis, falling back to an in-memory
// map when Redis is unavailable so the RealTimeDriver never blocks on
// cache connectivity.
type CapitalStore struct {
	client    *redis.Client
	available atomic.Bool

	mu    sync.RWMutex
	cache map[string]store.CapitalState
}

// NewCapitalStore builds a CapitalStore. A nil client runs in
// in-memory-only mode.
func NewCapitalStore(client *redis.Client) *CapitalStore {
	s := &CapitalStore{client: client, cache: make(map[string]store.CapitalState)}
	if client != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		s.available.Store(client.Ping(ctx).Err() == nil)
	}
	return s
}

func (s *CapitalStore) key(symbol string) string {
	return fmt.Sprintf("%s:%s", keyPrefix, symbol)
}

// SaveCapitalState writes state to the in-memory cache unconditionally and
// to Redis when available; a Redis write failure marks the store
// unavailable for subsequent calls rather than returning an error, since
// the in-memory cache already holds the authoritative value.
func (s *CapitalStore) SaveCapitalState(ctx context.Context, state store.CapitalState) error {
	s.mu.Lock()
	s.cache[state.Symbol] = state
	s.mu.Unlock()

	if s.client == nil || !s.available.Load() {
		return nil
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal capital state: %w", err)
	}
	if err := s.client.Set(ctx, s.key(state.Symbol), data, stateTTL).Err(); err != nil {
		s.available.Store(false)
		return nil
	}
	return nil
}

// LoadCapitalState reads from Redis when available, falling back to the
// in-memory cache. The bool return is false only when no state exists for
// symbol anywhere.
func (s *CapitalStore) LoadCapitalState(ctx context.Context, symbol string) (store.CapitalState, bool, error) {
	if s.client != nil && s.available.Load() {
		data, err := s.client.Get(ctx, s.key(symbol)).Bytes()
		switch {
		case err == nil:
			var state store.CapitalState
			if jsonErr := json.Unmarshal(data, &state); jsonErr != nil {
				return store.CapitalState{}, false, fmt.Errorf("unmarshal capital state: %w", jsonErr)
			}
			return state, true, nil
		case err == redis.Nil:
			return s.loadFromCache(symbol)
		default:
			s.available.Store(false)
			return s.loadFromCache(symbol)
		}
	}
	return s.loadFromCache(symbol)
}

func (s *CapitalStore) loadFromCache(symbol string) (store.CapitalState, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.cache[symbol]
	return state, ok, nil
}
