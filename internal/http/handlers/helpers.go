package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
)

var filterDimensions = []report.Dimension{
	report.DimPage,
	report.DimTeam,
	report.DimStore,
	report.DimUser,
	report.DimBank,
	report.DimProduct,
	report.DimCostBucket,
	report.DimLocation,
}

// readFilters collects the active top-level dimension filters from query
// parameters (?team=Alpha&page=Page-A&...).
func readFilters(r *http.Request) report.Filters {
	filters := report.Filters{}
	for _, dim := range filterDimensions {
		if value := strings.TrimSpace(r.URL.Query().Get(string(dim))); value != "" {
			filters[dim] = value
		}
	}
	return filters
}

func readDimension(r *http.Request, key string, fallback report.Dimension) report.Dimension {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return fallback
	}
	return report.Dimension(value)
}

func readBool(r *http.Request, key string) bool {
	return strings.EqualFold(strings.TrimSpace(r.URL.Query().Get(key)), "true")
}

func readInt(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

// readSortSpec applies the view defaults: numeric columns sort descending,
// name columns ascending.
func readSortSpec(r *http.Request) report.SortSpec {
	key := report.SortKey(strings.TrimSpace(r.URL.Query().Get("sort")))
	switch key {
	case report.SortByRevenue, report.SortByProfit, report.SortByBucketKey, report.SortBySecondaryKey:
	default:
		key = report.SortByRevenue
	}

	dir := report.Direction(strings.TrimSpace(r.URL.Query().Get("dir")))
	if dir != report.Asc && dir != report.Desc {
		if key == report.SortByBucketKey || key == report.SortBySecondaryKey {
			dir = report.Asc
		} else {
			dir = report.Desc
		}
	}
	return report.SortSpec{Key: key, Direction: dir}
}

// seedKind maps a grouping dimension onto its master entity list.
func seedKind(dim report.Dimension) string {
	switch dim {
	case report.DimPage:
		return "pages"
	case report.DimTeam:
		return "teams"
	case report.DimStore:
		return "stores"
	default:
		return ""
	}
}

// narrowByFilters applies the active top-level filters without any window
// constraint; the window is the aggregation's job.
func narrowByFilters(orders []report.NormalizedOrder, filters report.Filters) []report.NormalizedOrder {
	if len(filters) == 0 {
		return orders
	}
	return report.ApplyFilter(report.DrillDownFilter{Dimensions: filters}, orders)
}
