package report

import (
	"encoding/json"
	"strings"
	"time"
)

// RawOrder is one row of the remote order sheet after the column mapping in
// internal/sheet. Monetary fields default to 0 when the source cell is empty
// or non-numeric; ItemsJSON carries the line-item blob exactly as stored.
type RawOrder struct {
	ID               string  `json:"id"`
	OrderNumber      string  `json:"orderNumber"`
	PlacedAtRaw      string  `json:"placedAt"`
	CustomerName     string  `json:"customerName"`
	CustomerPhone    string  `json:"customerPhone"`
	ShippingAddress  string  `json:"shippingAddress"`
	PaymentMethod    string  `json:"paymentMethod"`
	TrackingCode     string  `json:"trackingCode"`
	Status           string  `json:"status"`
	Page             string  `json:"page"`
	Team             string  `json:"team"`
	Store            string  `json:"store"`
	User             string  `json:"user"`
	Bank             string  `json:"bank"`
	Product          string  `json:"product"`
	CostBucket       string  `json:"costBucket"`
	Location         string  `json:"location"`
	ItemsJSON        string  `json:"itemsJson"`
	GrandTotal       float64 `json:"grandTotal"`
	ShippingFee      float64 `json:"shippingFee"`
	ProductCost      float64 `json:"productCost"`
	InternalShipCost float64 `json:"internalShipCost"`
}

type LineItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	LineTotal float64 `json:"lineTotal"`
	UnitCost  float64 `json:"unitCost"`
}

// NormalizedOrder is a RawOrder with the item blob and timestamp parsed.
// PlacedAt stays the zero value when the timestamp could not be parsed;
// such orders never enter a date-bounded report.
type NormalizedOrder struct {
	RawOrder
	Items    []LineItem `json:"items"`
	PlacedAt time.Time  `json:"placedAtParsed"`
}

func (o NormalizedOrder) HasDate() bool {
	return !o.PlacedAt.IsZero()
}

// Layouts tried against the raw timestamp, in order. The sheet writes
// space-separated local timestamps that RFC3339 parsing rejects.
var placedAtLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Normalize converts one raw order into its typed form. It never fails:
// malformed item JSON yields an empty item list and an unparseable timestamp
// yields the zero time.
func Normalize(raw RawOrder) NormalizedOrder {
	order := NormalizedOrder{RawOrder: raw}

	blob := strings.TrimSpace(raw.ItemsJSON)
	if blob != "" {
		var items []LineItem
		if err := json.Unmarshal([]byte(blob), &items); err == nil {
			order.Items = items
		}
	}

	order.PlacedAt = parsePlacedAt(raw.PlacedAtRaw)
	return order
}

func NormalizeAll(raws []RawOrder) []NormalizedOrder {
	orders := make([]NormalizedOrder, 0, len(raws))
	for _, raw := range raws {
		orders = append(orders, Normalize(raw))
	}
	return orders
}

func parsePlacedAt(raw string) time.Time {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}
	}

	for _, layout := range placedAtLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return parsed
		}
	}

	// Last resort: the sheet sometimes stores an otherwise valid ISO string
	// with a space between date and time.
	if strings.Contains(value, " ") {
		retried := strings.Replace(value, " ", "T", 1)
		for _, layout := range placedAtLayouts {
			if parsed, err := time.ParseInLocation(layout, retried, time.Local); err == nil {
				return parsed
			}
		}
	}

	return time.Time{}
}
