package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muurk/orderdesk/internal/order"
)

func TestNewClient(t *testing.T) {
	client := NewClient("http://localhost:8080/")

	assert.Equal(t, "http://localhost:8080", client.BaseURL)
	assert.Equal(t, DefaultTimeout, client.HTTPClient.Timeout)
	assert.Equal(t, DefaultCacheDuration, client.CacheDuration)

	client.SetTimeout(2 * time.Second)
	assert.Equal(t, 2*time.Second, client.HTTPClient.Timeout)
}

func TestFetchRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/records/00Q1", r.URL.Path)
		assert.Equal(t, "Lead.Name,Lead.Email", r.URL.Query().Get("fields"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		_, err := uuid.Parse(r.Header.Get(RequestIDHeader))
		assert.NoError(t, err, "request id must be a uuid")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"00Q1","fields":{"Lead.Name":"Ada Lovelace","Lead.Email":"ada@example.com"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	client.SetToken("secret")

	rec, err := client.FetchRecord(context.Background(), "00Q1", []string{"Lead.Name", "Lead.Email"})
	require.NoError(t, err)
	assert.Equal(t, "00Q1", rec.ID)
	assert.Equal(t, "Ada Lovelace", rec.Get("Lead.Name"))
}

func TestFetchRecord_StatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"not found", http.StatusNotFound, IsNotFound},
		{"access denied", http.StatusForbidden, IsAccessDenied},
		{"unauthorized", http.StatusUnauthorized, IsAuthError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).FetchRecord(context.Background(), "x", nil)
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error %v", err)

			var pe *PlatformError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.status, pe.StatusCode)
			assert.NotEmpty(t, pe.RequestID)
		})
	}
}

func TestSearchAndCountProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "cable", q.Get("term"))
		assert.Equal(t, "Hardware", q.Get("category"))

		switch r.URL.Path {
		case "/api/products":
			assert.Equal(t, "10", q.Get("offset"))
			assert.Equal(t, "10", q.Get("limit"))
			_, _ = w.Write([]byte(`[{"id":"p11","name":"Cable 11","productCode":"C-11","family":"Hardware"}]`))
		case "/api/products/count":
			_, _ = w.Write([]byte(`{"count":11}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	products, err := client.SearchProducts(ctx, "cable", "Hardware", 10, 10)
	require.NoError(t, err)
	want := []order.Product{{ID: "p11", Name: "Cable 11", Code: "C-11", Category: "Hardware"}}
	if diff := cmp.Diff(want, products); diff != "" {
		t.Errorf("products mismatch (-want +got):\n%s", diff)
	}

	count, err := client.CountProducts(ctx, "cable", "Hardware")
	require.NoError(t, err)
	assert.Equal(t, 11, count)
}

func TestSearchProducts_OmitsEmptyFilters(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasTerm := r.URL.Query()["term"]
		_, hasCategory := r.URL.Query()["category"]
		assert.False(t, hasTerm)
		assert.False(t, hasCategory)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	products, err := NewClient(server.URL).SearchProducts(context.Background(), "", "", 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, products)
	assert.Empty(t, products)
}

func TestListCategories_Cache(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`["Hardware","Software"]`))
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		cats, err := client.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Hardware", "Software"}, cats)
	}
	assert.Equal(t, int32(1), calls.Load())

	client.InvalidateCache()
	_, err := client.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	client.SetCacheDuration(0)
	_, _ = client.ListCategories(ctx)
	_, _ = client.ListCategories(ctx)
	assert.Equal(t, int32(4), calls.Load())
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			ParentID string       `json:"parentId"`
			Lines    []order.Line `json:"lines"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "00Q1", body.ParentID)
		want := []order.Line{{ProductID: "1", Quantity: 5}, {ProductID: "2", Quantity: 1}}
		if diff := cmp.Diff(want, body.Lines); diff != "" {
			t.Errorf("lines mismatch (-want +got):\n%s", diff)
		}

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"orderNumber":"ORD-000007","orderId":"abc"}`))
	}))
	defer server.Close()

	res, err := NewClient(server.URL).CreateOrder(context.Background(), "00Q1",
		[]order.Line{{ProductID: "1", Quantity: 5}, {ProductID: "2", Quantity: 1}})
	require.NoError(t, err)
	assert.Equal(t, "ORD-000007", res.OrderNumber)
	assert.Equal(t, "abc", res.OrderID)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"unknown product p99"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CreateOrder(context.Background(), "00Q1",
		[]order.Line{{ProductID: "p99", Quantity: 1}})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Equal(t, "unknown product p99", ShortMessage(err))
	assert.Equal(t, int32(1), calls.Load(), "no automatic retry")
}

func TestParseError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"count":`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).CountProducts(context.Background(), "", "")
	assert.True(t, IsParseError(err))
}

func TestTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(server.URL)
	client.SetTimeout(50 * time.Millisecond)

	_, err := client.ListCategories(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))

	var pe *PlatformError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrTypeTimeout, pe.Type)
}

func TestConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewClient(url).Ping(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
}
