package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Dominic0607/Order-System-sub000/internal/export"
	"github.com/Dominic0607/Order-System-sub000/internal/report"
	"github.com/Dominic0607/Order-System-sub000/pkg/response"
)

// DeliveryListExport renders the delivery list for a window as PDF (default)
// or CSV. With ?archive=true and a configured object store, a copy is
// archived and its URL returned in a header.
func (h *Handler) DeliveryListExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	preset := report.Preset(strings.TrimSpace(r.URL.Query().Get("preset")))
	if preset == "" {
		preset = report.PresetToday
	}
	now := h.now()
	window := report.ResolveWindow(preset, r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"), now)

	raws, err := h.Snapshot.Orders(ctx, false)
	if err != nil {
		h.Logger.Error("delivery list fetch failed", zapError(err))
		response.Error(w, http.StatusBadGateway, "ORDER_SOURCE_ERROR", "Failed to fetch orders")
		return
	}

	orders := report.ApplyFilter(
		report.DrillDownFilter{Window: window, Dimensions: readFilters(r)},
		report.NormalizeAll(raws),
	)

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	var (
		payload     []byte
		contentType string
		filename    string
	)
	switch format {
	case "csv":
		payload, err = export.DeliveryListCSV(orders)
		contentType = "text/csv"
		filename = fmt.Sprintf("delivery-list-%s.csv", now.Format("20060102-1504"))
	default:
		payload, err = export.DeliveryListPDF(orders, window, now)
		contentType = "application/pdf"
		filename = fmt.Sprintf("delivery-list-%s.pdf", now.Format("20060102-1504"))
	}
	if err != nil {
		h.Logger.Error("delivery list render failed", zapError(err))
		response.Error(w, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to render delivery list")
		return
	}

	if readBool(r, "archive") && h.Archive != nil {
		url, err := h.Archive.ArchiveExport(ctx, filename, contentType, payload, now)
		if err != nil {
			h.Logger.Warn("delivery list archive failed", zapError(err))
		} else {
			w.Header().Set("X-Archive-Url", url)
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}
