package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Dominic0607/Order-System-sub000/internal/report"
)

// Client talks to the spreadsheet-style order backend. It is the single
// place where the backend's loosely-keyed rows (column headers with spaces,
// numbers stored as strings) are mapped into typed records; nothing outside
// this package touches a raw row.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   strings.TrimSpace(token),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

type row map[string]any

// FetchOrders pulls the full order sheet. A payload whose data is not an
// array is the one whole-batch failure that surfaces as a hard error;
// individual malformed rows are mapped best-effort.
func (c *Client) FetchOrders(ctx context.Context) ([]report.RawOrder, error) {
	body, err := c.get(ctx, "/orders")
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}

	orders := make([]report.RawOrder, 0, len(rows))
	for _, r := range rows {
		orders = append(orders, rowToRawOrder(r))
	}
	return orders, nil
}

// UpdateOrder patches one order's fields by primary key.
func (c *Client) UpdateOrder(ctx context.Context, id string, fields map[string]any) error {
	payload, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+"/orders/"+id, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sheet update order %s: status %d", id, resp.StatusCode)
	}
	return nil
}

// FetchEntities loads a master list (pages, teams, stores) used to pre-seed
// zero-activity buckets.
func (c *Client) FetchEntities(ctx context.Context, kind string) ([]report.SeedEntity, error) {
	body, err := c.get(ctx, "/entities/"+kind)
	if err != nil {
		return nil, err
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}

	entities := make([]report.SeedEntity, 0, len(rows))
	for _, r := range rows {
		entity := report.SeedEntity{
			Key:          rowString(r, "Name", "name", "key"),
			SecondaryKey: rowString(r, "Team", "team", "secondaryKey"),
		}
		if entity.Key != "" {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet %s: status %d", path, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// decodeRows accepts either a bare JSON array or the backend's
// {"success":true,"data":[...]} envelope.
func decodeRows(body []byte) ([]row, error) {
	var rows []row
	if err := json.Unmarshal(body, &rows); err == nil {
		return rows, nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil, fmt.Errorf("sheet payload is not an array")
	}
	if err := json.Unmarshal(envelope.Data, &rows); err != nil {
		return nil, fmt.Errorf("sheet payload is not an array")
	}
	return rows, nil
}

func rowToRawOrder(r row) report.RawOrder {
	return report.RawOrder{
		ID:               rowString(r, "Order ID", "id"),
		OrderNumber:      rowString(r, "Order Number", "orderNumber"),
		PlacedAtRaw:      rowString(r, "Timestamp", "Created At", "placedAt"),
		CustomerName:     rowString(r, "Customer Name", "customerName"),
		CustomerPhone:    rowString(r, "Phone", "customerPhone"),
		ShippingAddress:  rowString(r, "Address", "shippingAddress"),
		PaymentMethod:    rowString(r, "Payment Method", "paymentMethod"),
		TrackingCode:     rowString(r, "Tracking Code", "trackingCode"),
		Status:           rowString(r, "Status", "status"),
		Page:             rowString(r, "Page", "page"),
		Team:             rowString(r, "Team", "team"),
		Store:            rowString(r, "Store", "store"),
		User:             rowString(r, "User", "user"),
		Bank:             rowString(r, "Bank", "bank"),
		Product:          rowString(r, "Product", "product"),
		CostBucket:       rowString(r, "Cost Bucket", "costBucket"),
		Location:         rowString(r, "Location", "location"),
		ItemsJSON:        rowString(r, "Items", "itemsJson"),
		GrandTotal:       rowFloat(r, "Grand Total", "grandTotal"),
		ShippingFee:      rowFloat(r, "Shipping Fee", "shippingFee"),
		ProductCost:      rowFloat(r, "Product Cost", "productCost"),
		InternalShipCost: rowFloat(r, "Internal Shipping Cost", "internalShipCost"),
	}
}

func rowString(r row, keys ...string) string {
	for _, key := range keys {
		switch value := r[key].(type) {
		case string:
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		case float64:
			return strconv.FormatFloat(value, 'f', -1, 64)
		}
	}
	return ""
}

// rowFloat tolerates numbers stored as strings; anything unparseable is 0,
// never an error.
func rowFloat(r row, keys ...string) float64 {
	for _, key := range keys {
		switch value := r[key].(type) {
		case float64:
			return value
		case string:
			cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
			if cleaned == "" {
				continue
			}
			if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}
