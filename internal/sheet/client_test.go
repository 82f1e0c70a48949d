package sheet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchOrdersMapsSpacedColumns(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/orders", r.URL.Path)
		require.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[
			{"Order ID":"o-1","Timestamp":"2024-03-05 09:00","Page":"Page-A","Team":"Alpha",
			 "Grand Total":"1,250.50","Product Cost":400,"Internal Shipping Cost":"30",
			 "Items":"[{\"name\":\"Mug\",\"quantity\":2}]"},
			{"Order ID":"o-2","Grand Total":"n/a"}
		]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "sekrit")
	orders, err := client.FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 2)

	require.Equal(t, "o-1", orders[0].ID)
	require.Equal(t, "Page-A", orders[0].Page)
	require.Equal(t, 1250.50, orders[0].GrandTotal)
	require.Equal(t, 30.0, orders[0].InternalShipCost)
	require.Contains(t, orders[0].ItemsJSON, "Mug")

	// Non-numeric money cell maps to 0, not an error.
	require.Zero(t, orders[1].GrandTotal)
}

func TestFetchOrdersEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":[{"Order ID":"o-9"}]}`))
	}))
	defer srv.Close()

	orders, err := NewClient(srv.URL, "").FetchOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "o-9", orders[0].ID)
}

func TestFetchOrdersNonArrayIsHardError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"data":{"not":"an array"}}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").FetchOrders(context.Background())
	require.Error(t, err)
}

func TestFetchOrdersHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "").FetchOrders(context.Background())
	require.Error(t, err)
}

func TestUpdateOrder(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/orders/o-1", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "").UpdateOrder(context.Background(), "o-1", map[string]any{"Status": "shipped"})
	require.NoError(t, err)
	require.Equal(t, "shipped", gotBody["Status"])
}

func TestFetchEntities(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/entities/pages", r.URL.Path)
		_, _ = w.Write([]byte(`[{"Name":"Page-A","Team":"Alpha"},{"Name":""}]`))
	}))
	defer srv.Close()

	entities, err := NewClient(srv.URL, "").FetchEntities(context.Background(), "pages")
	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Equal(t, "Page-A", entities[0].Key)
	require.Equal(t, "Alpha", entities[0].SecondaryKey)
}
