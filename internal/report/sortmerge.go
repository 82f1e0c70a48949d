package report

import (
	"sort"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type SortKey string

const (
	SortByRevenue      SortKey = "revenue"
	SortByProfit       SortKey = "profit"
	SortByBucketKey    SortKey = "bucketKey"
	SortBySecondaryKey SortKey = "secondaryKey"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// MergeSpan annotates one sorted row for rendered row-span merging. Runs are
// strictly adjacency-based: a secondary key split apart by the sort order
// forms two independent runs.
type MergeSpan struct {
	IsFirstOfRun bool `json:"isFirstOfRun"`
	RunLength    int  `json:"runLength"`
}

var (
	collatorOnce sync.Once
	collator     *collate.Collator
)

func defaultCollator() *collate.Collator {
	collatorOnce.Do(func() {
		collator = collate.New(language.Und)
	})
	return collator
}

// SortBuckets returns a sorted copy of rows. The sort is stable, so rows with
// equal sort-key values keep their incoming relative order. String keys
// compare through the collator (nil falls back to a locale-neutral one),
// numeric keys numerically; Asc reverses the default Desc numeric ordering.
func SortBuckets(rows []Bucket, spec SortSpec, coll *collate.Collator) []Bucket {
	if coll == nil {
		coll = defaultCollator()
	}

	sorted := make([]Bucket, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := compareBuckets(sorted[i], sorted[j], spec.Key, coll)
		if spec.Direction == Asc {
			return cmp < 0
		}
		return cmp > 0
	})

	return sorted
}

// compareBuckets orders ascending; SortBuckets flips the result for Desc.
func compareBuckets(a, b Bucket, key SortKey, coll *collate.Collator) int {
	switch key {
	case SortByBucketKey:
		return coll.CompareString(a.Key, b.Key)
	case SortBySecondaryKey:
		return coll.CompareString(a.SecondaryKey, b.SecondaryKey)
	case SortByProfit:
		return compareFloat(a.Profit, b.Profit)
	default:
		return compareFloat(a.Revenue, b.Revenue)
	}
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// PlanMergeSpans scans the sorted rows once and marks maximal contiguous runs
// of equal SecondaryKey.
func PlanMergeSpans(rows []Bucket) []MergeSpan {
	spans := make([]MergeSpan, len(rows))
	for i := 0; i < len(rows); {
		j := i + 1
		for j < len(rows) && rows[j].SecondaryKey == rows[i].SecondaryKey {
			j++
		}
		spans[i] = MergeSpan{IsFirstOfRun: true, RunLength: j - i}
		for k := i + 1; k < j; k++ {
			spans[k] = MergeSpan{IsFirstOfRun: false, RunLength: j - i}
		}
		i = j
	}
	return spans
}
