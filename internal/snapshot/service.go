package snapshot

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
)

const cacheKey = "console:orders:snapshot"

// Fetcher is the remote order source (internal/sheet in production).
type Fetcher interface {
	FetchOrders(ctx context.Context) ([]report.RawOrder, error)
}

// Notifier is told after a refresh swaps the snapshot in (ws hub, queue).
type Notifier interface {
	SnapshotRefreshed(count int, at time.Time)
}

// Service owns the current immutable raw-order snapshot. A refresh replaces
// the slice wholesale; consumers always receive a value and never observe a
// partial update. A short-lived Redis cache can serve a recent snapshot
// instead of re-fetching; Redis being down only disables the cache.
type Service struct {
	fetcher   Fetcher
	redis     *redis.Client
	ttl       time.Duration
	logger    *zap.Logger
	notifiers []Notifier

	mu         sync.Mutex
	current    []report.RawOrder
	fetchedAt  time.Time
	generation uint64
}

func New(fetcher Fetcher, redisClient *redis.Client, ttl time.Duration, logger *zap.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{fetcher: fetcher, redis: redisClient, ttl: ttl, logger: logger}
}

func (s *Service) AddNotifier(n Notifier) {
	if n != nil {
		s.notifiers = append(s.notifiers, n)
	}
}

// Orders returns the current snapshot, fetching when it is missing or stale.
// force bypasses both the in-memory copy and the Redis cache.
func (s *Service) Orders(ctx context.Context, force bool) ([]report.RawOrder, error) {
	now := time.Now()

	s.mu.Lock()
	if !force && s.current != nil && now.Sub(s.fetchedAt) < s.ttl {
		orders := s.current
		s.mu.Unlock()
		return orders, nil
	}
	s.generation++
	generation := s.generation
	s.mu.Unlock()

	if !force {
		if orders, ok := s.readCache(ctx); ok {
			s.adopt(generation, orders, now, false)
			return orders, nil
		}
	}

	orders, err := s.fetcher.FetchOrders(ctx)
	if err != nil {
		return nil, err
	}
	if s.adopt(generation, orders, now, true) {
		s.writeCache(ctx, orders)
	}
	return orders, nil
}

// adopt installs a fetch result unless a later refresh already superseded
// this generation (last write wins). notify is false for cache reads, which
// are not a data change.
func (s *Service) adopt(generation uint64, orders []report.RawOrder, at time.Time, notify bool) bool {
	s.mu.Lock()
	if generation < s.generation {
		s.mu.Unlock()
		return false
	}
	s.current = orders
	s.fetchedAt = at
	s.mu.Unlock()

	if notify {
		for _, n := range s.notifiers {
			n.SnapshotRefreshed(len(orders), at)
		}
	}
	return true
}

func (s *Service) readCache(ctx context.Context) ([]report.RawOrder, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("snapshot cache read failed", zap.Error(err))
		}
		return nil, false
	}
	var orders []report.RawOrder
	if err := json.Unmarshal(raw, &orders); err != nil {
		s.logger.Warn("snapshot cache is corrupt, ignoring", zap.Error(err))
		return nil, false
	}
	return orders, true
}

func (s *Service) writeCache(ctx context.Context, orders []report.RawOrder) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(orders)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("snapshot cache write failed", zap.Error(err))
	}
}
