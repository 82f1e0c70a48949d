package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
)

func exportOrders() []report.NormalizedOrder {
	return report.NormalizeAll([]report.RawOrder{
		{
			ID: "o-1", OrderNumber: "ORD-100", PlacedAtRaw: "2024-03-05 09:00",
			CustomerName: "Ana", CustomerPhone: "555-1", ShippingAddress: "1 Main St",
			PaymentMethod: "COD", GrandTotal: 120.5, TrackingCode: "TRK1",
		},
		{
			ID: "o-2", PlacedAtRaw: "bogus",
			CustomerName: "Bo", PaymentMethod: "BANK", GrandTotal: 80,
		},
	})
}

func TestDeliveryListPDF(t *testing.T) {
	w := report.MonthWindow(2024, time.March, time.Local)
	pdf, err := DeliveryListPDF(exportOrders(), w, time.Date(2024, 3, 15, 10, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestDeliveryListCSV(t *testing.T) {
	out, err := DeliveryListCSV(exportOrders())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "Order", records[0][0])
	require.Equal(t, "ORD-100", records[1][0])
	require.Equal(t, "120.50", records[1][6])
	// Undated order falls back to its ID and an empty placed-at cell.
	require.Equal(t, "o-2", records[2][0])
	require.Equal(t, "", records[2][1])
}
