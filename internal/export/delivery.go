package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
)

// DeliveryListPDF renders the courier hand-off sheet for the given window:
// one row per order with the fields a driver needs at the door.
func DeliveryListPDF(orders []report.NormalizedOrder, w report.Window, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Delivery List", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, windowLabel(w), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated %s", generatedAt.Format("2006-01-02 15:04")), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	type col struct {
		title string
		width float64
	}
	cols := []col{
		{"#", 8},
		{"Order", 28},
		{"Customer", 45},
		{"Phone", 30},
		{"Address", 95},
		{"Payment", 25},
		{"COD Amount", 28},
		{"Tracking", 18},
	}

	pdf.SetFont("Arial", "B", 9)
	for _, c := range cols {
		pdf.CellFormat(c.width, 7, c.title, "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for i, order := range orders {
		cod := ""
		if order.PaymentMethod == "" || order.PaymentMethod == "COD" {
			cod = formatAmount(order.GrandTotal)
		}
		cells := []string{
			strconv.Itoa(i + 1),
			orderLabel(order),
			order.CustomerName,
			order.CustomerPhone,
			order.ShippingAddress,
			order.PaymentMethod,
			cod,
			order.TrackingCode,
		}
		for j, c := range cols {
			pdf.CellFormat(c.width, 6, cells[j], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("%d orders", len(orders)), "", 1, "L", false, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// DeliveryListCSV writes the same rows for spreadsheet import.
func DeliveryListCSV(orders []report.NormalizedOrder) ([]byte, error) {
	var out bytes.Buffer
	writer := csv.NewWriter(&out)

	header := []string{"Order", "Placed At", "Customer", "Phone", "Address", "Payment", "Grand Total", "Tracking"}
	if err := writer.Write(header); err != nil {
		return nil, err
	}

	for _, order := range orders {
		placed := ""
		if order.HasDate() {
			placed = order.PlacedAt.Format("2006-01-02 15:04")
		}
		record := []string{
			orderLabel(order),
			placed,
			order.CustomerName,
			order.CustomerPhone,
			order.ShippingAddress,
			order.PaymentMethod,
			formatAmount(order.GrandTotal),
			order.TrackingCode,
		}
		if err := writer.Write(record); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func orderLabel(order report.NormalizedOrder) string {
	if order.OrderNumber != "" {
		return order.OrderNumber
	}
	return order.ID
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func windowLabel(w report.Window) string {
	switch {
	case w.Start == nil && w.End == nil:
		return "All orders"
	case w.Start == nil:
		return fmt.Sprintf("Through %s", w.End.Format("2006-01-02"))
	case w.End == nil:
		return fmt.Sprintf("From %s", w.Start.Format("2006-01-02"))
	default:
		return fmt.Sprintf("%s to %s", w.Start.Format("2006-01-02"), w.End.Format("2006-01-02"))
	}
}
