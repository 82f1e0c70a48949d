package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
	"github.com/Dominic0607/Order-System-sub000/pkg/response"
)

type drillDownRequest struct {
	Click     report.ClickContext `json:"click"`
	Filters   report.Filters      `json:"filters"`
	Preset    report.Preset       `json:"preset"`
	StartDate string              `json:"startDate"`
	EndDate   string              `json:"endDate"`
}

type drillDownResponse struct {
	Filter report.DrillDownFilter   `json:"filter"`
	Orders []report.NormalizedOrder `json:"orders"`
	Detail pivotResponse            `json:"detail"`
}

// ReportDrillDown resolves a clicked pivot cell back to the exact order
// subset that produced it, then re-aggregates that subset for the detail
// view. A bucket key missing from the live snapshot yields an empty subset.
func (h *Handler) ReportDrillDown(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req drillDownRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid drill-down payload")
		return
	}
	if req.Click.GroupDim == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "click.groupDim is required")
		return
	}

	now := h.now()
	window := report.ResolveWindow(req.Preset, req.StartDate, req.EndDate, now)
	filter := report.TranslateDrillDown(req.Click, req.Filters, window, now)

	raws, err := h.Snapshot.Orders(ctx, false)
	if err != nil {
		h.Logger.Error("drill-down fetch failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "ORDER_SOURCE_ERROR", "Failed to fetch orders")
		return
	}

	subset := report.ApplyFilter(filter, report.NormalizeAll(raws))

	secondary := req.Click.SecondaryDim
	if secondary == "" {
		secondary = report.DimTeam
	}
	pivot := report.Aggregate(subset, filter.Window,
		report.KeyFuncFor(req.Click.GroupDim), report.KeyFuncFor(secondary), report.AggregateOptions{})

	spec := report.SortSpec{Key: report.SortByRevenue, Direction: report.Desc}
	rows := report.SortBuckets(pivot.Rows(), spec, nil)

	response.Success(w, drillDownResponse{
		Filter: filter,
		Orders: subset,
		Detail: pivotResponse{
			Group:      req.Click.GroupDim,
			Secondary:  secondary,
			Window:     filter.Window,
			Sort:       spec,
			Rows:       rows,
			MergeSpans: report.PlanMergeSpans(rows),
			Total:      pivot.Total,
		},
	})
}
