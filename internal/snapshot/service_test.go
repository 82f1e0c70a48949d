package snapshot

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
)

type stubFetcher struct {
	calls  int
	orders []report.RawOrder
	err    error
}

func (f *stubFetcher) FetchOrders(ctx context.Context) ([]report.RawOrder, error) {
	f.calls++
	return f.orders, f.err
}

type recordingNotifier struct {
	events int
	last   int
}

func (n *recordingNotifier) SnapshotRefreshed(count int, at time.Time) {
	n.events++
	n.last = count
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestOrdersFetchesOnceWithinTTL(t *testing.T) {
	fetcher := &stubFetcher{orders: []report.RawOrder{{ID: "1"}, {ID: "2"}}}
	svc := New(fetcher, nil, time.Minute, zap.NewNop())

	first, err := svc.Orders(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, first, 2)

	second, err := svc.Orders(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, second, 2)
	require.Equal(t, 1, fetcher.calls)
}

func TestOrdersForceBypassesCache(t *testing.T) {
	fetcher := &stubFetcher{orders: []report.RawOrder{{ID: "1"}}}
	svc := New(fetcher, newTestRedis(t), time.Minute, zap.NewNop())

	_, err := svc.Orders(context.Background(), false)
	require.NoError(t, err)

	fetcher.orders = []report.RawOrder{{ID: "1"}, {ID: "2"}}
	refreshed, err := svc.Orders(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, refreshed, 2)
	require.Equal(t, 2, fetcher.calls)
}

func TestOrdersServedFromRedisCache(t *testing.T) {
	redisClient := newTestRedis(t)
	fetcher := &stubFetcher{orders: []report.RawOrder{{ID: "1"}}}

	warm := New(fetcher, redisClient, time.Minute, zap.NewNop())
	_, err := warm.Orders(context.Background(), false)
	require.NoError(t, err)

	// A fresh service instance (no in-memory snapshot) reads through Redis
	// instead of hitting the sheet again.
	cold := New(fetcher, redisClient, time.Minute, zap.NewNop())
	orders, err := cold.Orders(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 1, fetcher.calls)
}

func TestOrdersCorruptCacheFallsBackToFetch(t *testing.T) {
	redisClient := newTestRedis(t)
	require.NoError(t, redisClient.Set(context.Background(), cacheKey, "{not json", time.Minute).Err())

	fetcher := &stubFetcher{orders: []report.RawOrder{{ID: "1"}}}
	svc := New(fetcher, redisClient, time.Minute, zap.NewNop())
	orders, err := svc.Orders(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 1, fetcher.calls)
}

func TestRefreshNotifiesOnFetchOnly(t *testing.T) {
	fetcher := &stubFetcher{orders: []report.RawOrder{{ID: "1"}}}
	notifier := &recordingNotifier{}
	svc := New(fetcher, nil, time.Minute, zap.NewNop())
	svc.AddNotifier(notifier)

	_, err := svc.Orders(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, notifier.events)
	require.Equal(t, 1, notifier.last)

	// Served from memory, no new notification.
	_, err = svc.Orders(context.Background(), false)
	require.NoError(t, err)
	require.Equal(t, 1, notifier.events)
}
