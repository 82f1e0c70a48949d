package report

import (
	"fmt"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testOrder(id, page, team, placedAt string, total, productCost, shipCost float64) NormalizedOrder {
	return Normalize(RawOrder{
		ID:               id,
		Page:             page,
		Team:             team,
		PlacedAtRaw:      placedAt,
		GrandTotal:       total,
		ProductCost:      productCost,
		InternalShipCost: shipCost,
	})
}

func sampleOrders() []NormalizedOrder {
	return []NormalizedOrder{
		testOrder("1", "Page-A", "Alpha", "2024-03-05 09:00", 100, 40, 10),
		testOrder("2", "Page-A", "Alpha", "2024-03-20 13:30", 200, 80, 20),
		testOrder("3", "Page-A", "Alpha", "2024-04-02 08:15", 50, 20, 5),
		testOrder("4", "Page-B", "Alpha", "2024-03-10 17:45", 300, 120, 30),
		testOrder("5", "Page-C", "Beta", "2024-04-11 11:00", 400, 150, 40),
	}
}

func TestAggregateRevenueReconciliation(t *testing.T) {
	orders := sampleOrders()
	w := ResolveWindow(PresetAll, "", "", fixedNow)
	pivot := Aggregate(orders, w, ByPage, ByTeam, AggregateOptions{})

	var bucketSum, orderSum float64
	for _, bucket := range pivot.Buckets {
		bucketSum += bucket.Revenue
	}
	for _, order := range orders {
		orderSum += order.GrandTotal
	}
	require.InDelta(t, orderSum, bucketSum, 1e-9)
	require.InDelta(t, orderSum, pivot.Total.Revenue, 1e-9)
	require.Equal(t, len(orders), pivot.Total.OrderCount)
}

func TestAggregateMonthlyPartition(t *testing.T) {
	pivot := Aggregate(sampleOrders(), Window{}, ByPage, ByTeam, AggregateOptions{})

	for key, bucket := range pivot.Buckets {
		var revenue, profit float64
		for _, slot := range bucket.Monthly {
			revenue += slot.Revenue
			profit += slot.Profit
		}
		require.InDelta(t, bucket.Revenue, revenue, 1e-9, "bucket %s", key)
		require.InDelta(t, bucket.Profit, profit, 1e-9, "bucket %s", key)
	}
}

func TestAggregateProfit(t *testing.T) {
	pivot := Aggregate(sampleOrders(), Window{}, ByPage, ByTeam, AggregateOptions{})
	pageA := pivot.Buckets["Page-A"]
	require.NotNil(t, pageA)
	// 100-50 + 200-100 + 50-25
	require.InDelta(t, 175.0, pageA.Profit, 1e-9)
	require.Equal(t, "Alpha", pageA.SecondaryKey)
	require.Equal(t, 3, pageA.OrderCount)
}

func TestAggregateMonthlySlotsAreAbsolute(t *testing.T) {
	// A narrow window still attributes revenue to the absolute calendar
	// month, not a relative slot.
	w := ResolveWindow(PresetCustom, "2024-03-18", "2024-03-24", fixedNow)
	orders := sampleOrders()
	pivot := Aggregate(orders, w, ByPage, ByTeam, AggregateOptions{})

	pageA := pivot.Buckets["Page-A"]
	require.NotNil(t, pageA)
	require.Equal(t, 1, pageA.OrderCount)
	require.InDelta(t, 200.0, pageA.Monthly[2].Revenue, 1e-9) // March slot
	for i, slot := range pageA.Monthly {
		if i != 2 {
			require.Zero(t, slot.Revenue)
		}
	}
}

func TestAggregateWindowExcludes(t *testing.T) {
	w := MonthWindow(2024, time.March, time.Local)
	pivot := Aggregate(sampleOrders(), w, ByPage, ByTeam, AggregateOptions{})
	require.InDelta(t, 600.0, pivot.Total.Revenue, 1e-9)
	require.Equal(t, 3, pivot.Total.OrderCount)
	require.Nil(t, pivot.Buckets["Page-C"])
}

func TestAggregateInvalidTimestampPolicy(t *testing.T) {
	orders := append(sampleOrders(), testOrder("6", "Page-A", "Alpha", "not a date", 1000, 0, 0))

	// Bounded window: the undated order is excluded entirely.
	bounded := Aggregate(orders, MonthWindow(2024, time.March, time.Local), ByPage, ByTeam, AggregateOptions{})
	require.InDelta(t, 600.0, bounded.Total.Revenue, 1e-9)

	// Unbounded window: it counts toward bucket and grand totals but toward
	// no monthly slot, so the monthly sum falls short of the bucket total.
	open := Aggregate(orders, Window{}, ByPage, ByTeam, AggregateOptions{})
	pageA := open.Buckets["Page-A"]
	require.NotNil(t, pageA)
	require.InDelta(t, 1350.0, pageA.Revenue, 1e-9)
	var monthly float64
	for _, slot := range pageA.Monthly {
		monthly += slot.Revenue
	}
	require.InDelta(t, 350.0, monthly, 1e-9)
}

func TestAggregateSeedAndHideInactive(t *testing.T) {
	seed := []SeedEntity{
		{Key: "Page-A", SecondaryKey: "Alpha"},
		{Key: "Page-Z", SecondaryKey: "Omega"},
	}

	seeded := Aggregate(sampleOrders(), Window{}, ByPage, ByTeam, AggregateOptions{Seed: seed})
	require.NotNil(t, seeded.Buckets["Page-Z"])
	require.Zero(t, seeded.Buckets["Page-Z"].Revenue)
	require.Equal(t, "Omega", seeded.Buckets["Page-Z"].SecondaryKey)

	hidden := Aggregate(sampleOrders(), Window{}, ByPage, ByTeam, AggregateOptions{Seed: seed, HideInactive: true})
	require.Nil(t, hidden.Buckets["Page-Z"])
	require.NotNil(t, hidden.Buckets["Page-A"])
}

func TestAggregatePermutationIdempotence(t *testing.T) {
	orders := sampleOrders()
	base := Aggregate(orders, Window{}, ByPage, ByTeam, AggregateOptions{})

	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 5; trial++ {
		shuffled := make([]NormalizedOrder, len(orders))
		copy(shuffled, orders)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		again := Aggregate(shuffled, Window{}, ByPage, ByTeam, AggregateOptions{})
		require.Equal(t, len(base.Buckets), len(again.Buckets))
		for key, bucket := range base.Buckets {
			other := again.Buckets[key]
			require.NotNil(t, other, "bucket %s", key)
			require.InDelta(t, bucket.Revenue, other.Revenue, 1e-9)
			require.InDelta(t, bucket.Profit, other.Profit, 1e-9)
			require.Equal(t, bucket.OrderCount, other.OrderCount)
		}
	}
}

func TestAggregateMalformedRecordTolerance(t *testing.T) {
	raws := []RawOrder{
		{ID: "1", Page: "Page-A", Team: "Alpha", PlacedAtRaw: "2024-03-05 09:00", GrandTotal: 100},
		{ID: "2", Page: "Page-A", Team: "Alpha", PlacedAtRaw: "2024-03-06 09:00", GrandTotal: 60, ItemsJSON: `[{"name":`},
		{ID: "3", Page: "Page-B", Team: "Beta", PlacedAtRaw: "2024-03-07 09:00", GrandTotal: math.NaN()},
	}
	pivot := Aggregate(NormalizeAll(raws), Window{}, ByPage, ByTeam, AggregateOptions{})
	require.InDelta(t, 160.0, pivot.Total.Revenue, 1e-9)
	require.Equal(t, 3, pivot.Total.OrderCount)
	require.InDelta(t, 160.0, pivot.Buckets["Page-A"].Revenue, 1e-9)
	require.Zero(t, pivot.Buckets["Page-B"].Revenue)
}

func TestPivotRowsDeterministic(t *testing.T) {
	pivot := Aggregate(sampleOrders(), Window{}, ByPage, ByTeam, AggregateOptions{})
	first := pivot.Rows()
	for trial := 0; trial < 3; trial++ {
		require.Equal(t, first, pivot.Rows())
	}
	for i := 1; i < len(first); i++ {
		require.Less(t, first[i-1].Key, first[i].Key, fmt.Sprintf("row %d", i))
	}
}
