package handlers

import (
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
	"github.com/Dominic0607/Order-System-sub000/pkg/response"
)

type orderListResponse struct {
	Orders []report.NormalizedOrder `json:"orders"`
	Total  int                      `json:"total"`
	Page   int                      `json:"page"`
	Limit  int                      `json:"limit"`
}

// OrdersList serves the order table: snapshot orders narrowed by the active
// filters and window, newest first, paginated. Undated orders sink to the
// end instead of disappearing.
func (h *Handler) OrdersList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raws, err := h.Snapshot.Orders(ctx, false)
	if err != nil {
		h.Logger.Error("order list fetch failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "ORDER_SOURCE_ERROR", "Failed to fetch orders")
		return
	}

	preset := report.Preset(strings.TrimSpace(r.URL.Query().Get("preset")))
	if preset == "" {
		preset = report.PresetAll
	}
	window := report.ResolveWindow(preset, r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"), h.now())

	orders := report.ApplyFilter(
		report.DrillDownFilter{Window: window, Dimensions: readFilters(r)},
		report.NormalizeAll(raws),
	)

	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		kept := orders[:0]
		for _, order := range orders {
			if strings.EqualFold(order.Status, status) {
				kept = append(kept, order)
			}
		}
		orders = kept
	}

	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].HasDate() != orders[j].HasDate() {
			return orders[i].HasDate()
		}
		return orders[i].PlacedAt.After(orders[j].PlacedAt)
	})

	page := readInt(r, "page", 1)
	limit := readInt(r, "limit", 20)
	if limit > 200 {
		limit = 200
	}

	total := len(orders)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	response.Success(w, orderListResponse{
		Orders: orders[start:end],
		Total:  total,
		Page:   page,
		Limit:  limit,
	})
}

// OrderUpdate patches one order's fields through the sheet backend, then
// forces a snapshot refresh so the next report reflects the edit.
func (h *Handler) OrderUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	orderID := strings.TrimSpace(chi.URLParam(r, "orderID"))
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Order id is required")
		return
	}

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil || len(fields) == 0 {
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "A non-empty field map is required")
		return
	}

	if err := h.Source.UpdateOrder(ctx, orderID, fields); err != nil {
		h.Logger.Error("order update failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "ORDER_SOURCE_ERROR", "Failed to update order")
		return
	}

	h.Events.OrderUpdated(ctx, orderID, fields)

	if _, err := h.Snapshot.Orders(ctx, true); err != nil {
		h.Logger.Warn("post-update refresh failed", zapError(err))
	}

	response.Success(w, map[string]any{"orderId": orderID})
}

// OrdersRefresh forces a snapshot re-fetch, bypassing the cache.
func (h *Handler) OrdersRefresh(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Snapshot.Orders(r.Context(), true)
	if err != nil {
		h.Logger.Error("forced refresh failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "ORDER_SOURCE_ERROR", "Failed to refresh orders")
		return
	}
	response.Success(w, map[string]any{"orderCount": len(orders)})
}

// EntitiesList exposes the master page/team/store lists the console uses for
// filter dropdowns and bucket seeding.
func (h *Handler) EntitiesList(w http.ResponseWriter, r *http.Request) {
	kind := strings.TrimSpace(chi.URLParam(r, "kind"))
	switch kind {
	case "pages", "teams", "stores":
	default:
		response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown entity kind")
		return
	}

	entities, err := h.Source.FetchEntities(r.Context(), kind)
	if err != nil {
		h.Logger.Error("entities fetch failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "ORDER_SOURCE_ERROR", "Failed to fetch entities")
		return
	}
	response.Success(w, entities)
}
