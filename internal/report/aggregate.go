package report

import (
	"math"
	"sort"
)

type MonthlySlot struct {
	Revenue float64 `json:"revenue"`
	Profit  float64 `json:"profit"`
}

// Bucket is one row of the pivot: running totals for every order mapped to
// its group key, plus a twelve-slot absolute-calendar-month breakdown.
type Bucket struct {
	Key          string          `json:"key"`
	SecondaryKey string          `json:"secondaryKey"`
	Revenue      float64         `json:"revenue"`
	Profit       float64         `json:"profit"`
	OrderCount   int             `json:"orderCount"`
	Monthly      [12]MonthlySlot `json:"monthly"`
}

// SeedEntity pre-seeds a zero bucket so zero-activity pages/teams still show
// up in the pivot.
type SeedEntity struct {
	Key          string `json:"key"`
	SecondaryKey string `json:"secondaryKey"`
}

type KeyFunc func(NormalizedOrder) string

func ByPage(o NormalizedOrder) string     { return o.Page }
func ByTeam(o NormalizedOrder) string     { return o.Team }
func ByStore(o NormalizedOrder) string    { return o.Store }
func ByUser(o NormalizedOrder) string     { return o.User }
func ByProduct(o NormalizedOrder) string  { return o.Product }
func ByLocation(o NormalizedOrder) string { return o.Location }

type AggregateOptions struct {
	Seed         []SeedEntity
	HideInactive bool
}

// Pivot is the aggregation result: one bucket per group key plus the
// grand total across every included order.
type Pivot struct {
	Buckets map[string]*Bucket `json:"buckets"`
	Total   Bucket             `json:"total"`
}

// Rows returns the buckets as a slice in ascending key order. The fixed
// ordering is what makes a later stable sort deterministic.
func (p *Pivot) Rows() []Bucket {
	keys := make([]string, 0, len(p.Buckets))
	for key := range p.Buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]Bucket, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, *p.Buckets[key])
	}
	return rows
}

// Aggregate folds orders into a pivot keyed by key(order). secondary tags
// each bucket for merge-span planning and may be nil.
//
// Window handling: orders outside the window are skipped, and orders with an
// unparseable timestamp are skipped whenever the window is bounded. Under the
// unbounded window they count toward bucket and grand totals but never toward
// a monthly slot, so an "all time" total can exceed the sum of its months.
//
// Accumulation is pure addition, so any permutation of orders produces the
// same pivot.
func Aggregate(orders []NormalizedOrder, w Window, key, secondary KeyFunc, opts AggregateOptions) *Pivot {
	pivot := &Pivot{Buckets: make(map[string]*Bucket)}

	for _, seed := range opts.Seed {
		if seed.Key == "" {
			continue
		}
		if _, ok := pivot.Buckets[seed.Key]; !ok {
			pivot.Buckets[seed.Key] = &Bucket{Key: seed.Key, SecondaryKey: seed.SecondaryKey}
		}
	}

	for _, order := range orders {
		if !w.Contains(order.PlacedAt) {
			continue
		}

		revenue := sanitizeAmount(order.GrandTotal)
		profit := revenue - sanitizeAmount(order.ProductCost) - sanitizeAmount(order.InternalShipCost)

		bucket := pivot.Buckets[key(order)]
		if bucket == nil {
			bucket = &Bucket{Key: key(order)}
			pivot.Buckets[key(order)] = bucket
		}
		if bucket.SecondaryKey == "" && secondary != nil {
			bucket.SecondaryKey = secondary(order)
		}

		bucket.Revenue += revenue
		bucket.Profit += profit
		bucket.OrderCount++
		pivot.Total.Revenue += revenue
		pivot.Total.Profit += profit
		pivot.Total.OrderCount++

		if order.HasDate() {
			slot := int(order.PlacedAt.Month()) - 1
			bucket.Monthly[slot].Revenue += revenue
			bucket.Monthly[slot].Profit += profit
			pivot.Total.Monthly[slot].Revenue += revenue
			pivot.Total.Monthly[slot].Profit += profit
		}
	}

	if opts.HideInactive {
		for key, bucket := range pivot.Buckets {
			if bucket.Revenue == 0 {
				delete(pivot.Buckets, key)
			}
		}
	}

	return pivot
}

// sanitizeAmount maps NaN/Inf (a division artifact upstream in the sheet) to
// zero so one broken cell cannot poison a whole report.
func sanitizeAmount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
