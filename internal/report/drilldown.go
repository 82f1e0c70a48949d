package report

import "time"

// Dimension names one of the per-order equality filters the console exposes.
type Dimension string

const (
	DimPage       Dimension = "page"
	DimTeam       Dimension = "team"
	DimStore      Dimension = "store"
	DimUser       Dimension = "user"
	DimBank       Dimension = "bank"
	DimProduct    Dimension = "product"
	DimCostBucket Dimension = "costBucket"
	DimLocation   Dimension = "location"
)

// Filters is the active top-level filter set of a report view.
type Filters map[Dimension]string

func (f Filters) clone() Filters {
	out := make(Filters, len(f)+2)
	for dim, value := range f {
		out[dim] = value
	}
	return out
}

// ClickContext identifies the summary cell the user drilled into.
type ClickContext struct {
	GroupDim     Dimension `json:"groupDim"`
	BucketKey    string    `json:"bucketKey"`
	SecondaryDim Dimension `json:"secondaryDim,omitempty"`
	SecondaryKey string    `json:"secondaryKey,omitempty"`
	MonthIndex   *int      `json:"monthIndex,omitempty"`
}

// DrillDownFilter re-derives, from the raw order snapshot, exactly the order
// subset behind one pivot cell. It is built on a click, applied once, and
// discarded.
type DrillDownFilter struct {
	Window     Window  `json:"window"`
	Dimensions Filters `json:"dimensions"`
}

// TranslateDrillDown builds the filter for a clicked cell. The clicked
// dimension overrides any conflicting active filter; every other active
// dimension carries through unchanged.
//
// A month click replaces the parent window with that absolute calendar
// month's bounds. Monthly slots are absolute-calendar (see Aggregate), so the
// parent window's start/end must not be reused verbatim; the year comes from
// the window start when the parent is bounded, otherwise from now.
func TranslateDrillDown(click ClickContext, active Filters, w Window, now time.Time) DrillDownFilter {
	dims := active.clone()
	if click.GroupDim != "" {
		dims[click.GroupDim] = click.BucketKey
	}
	if click.SecondaryDim != "" {
		dims[click.SecondaryDim] = click.SecondaryKey
	}

	out := DrillDownFilter{Window: w, Dimensions: dims}
	if click.MonthIndex != nil && *click.MonthIndex >= 0 && *click.MonthIndex < 12 {
		year, loc := now.Year(), now.Location()
		if w.Start != nil {
			year, loc = w.Start.Year(), w.Start.Location()
		}
		out.Window = MonthWindow(year, time.Month(*click.MonthIndex+1), loc)
	}
	return out
}

// ApplyFilter narrows orders with plain per-field equality plus the window
// test; it never errors. A bucket key that no longer exists in the snapshot
// simply matches nothing. Every dimension present in the filter constrains,
// including the empty string: blank source cells form a "" bucket, and
// clicking it must select exactly the blank-cell orders.
func ApplyFilter(f DrillDownFilter, orders []NormalizedOrder) []NormalizedOrder {
	out := make([]NormalizedOrder, 0)
	for _, order := range orders {
		if !f.Window.Contains(order.PlacedAt) {
			continue
		}
		if matchesDimensions(order, f.Dimensions) {
			out = append(out, order)
		}
	}
	return out
}

func matchesDimensions(order NormalizedOrder, dims Filters) bool {
	for dim, want := range dims {
		if DimensionValue(order, dim) != want {
			return false
		}
	}
	return true
}

// KeyFuncFor adapts a dimension into a grouping-key extractor, so a report
// can pivot on whichever dimension the console asks for.
func KeyFuncFor(dim Dimension) KeyFunc {
	return func(order NormalizedOrder) string {
		return DimensionValue(order, dim)
	}
}

// DimensionValue reads the order field addressed by dim.
func DimensionValue(order NormalizedOrder, dim Dimension) string {
	switch dim {
	case DimPage:
		return order.Page
	case DimTeam:
		return order.Team
	case DimStore:
		return order.Store
	case DimUser:
		return order.User
	case DimBank:
		return order.Bank
	case DimProduct:
		return order.Product
	case DimCostBucket:
		return order.CostBucket
	case DimLocation:
		return order.Location
	default:
		return ""
	}
}
