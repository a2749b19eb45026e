package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteItemSendsCorrelationHeaders(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "secret-token")
	meta := services.OperationMeta{
		TransactionID: "TX-1700000000000-abcd1234",
		OperationType: models.OperationTransfer,
		TargetSymbol:  "P1",
	}
	require.NoError(t, c.DeleteItem(context.Background(), 42, meta))

	require.NotNil(t, got)
	assert.Equal(t, http.MethodDelete, got.Method)
	assert.Equal(t, "/api/state/42", got.URL.Path)
	assert.Equal(t, "TX-1700000000000-abcd1234", got.Header.Get("transactionid"))
	assert.Equal(t, models.OperationTransfer, got.Header.Get("operation-type"))
	assert.Equal(t, "P1", got.Header.Get("target-symbol"))
	assert.Equal(t, "Bearer secret-token", got.Header.Get("Authorization"))
}

func TestDeleteItemMapsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "")
	err := c.DeleteItem(context.Background(), 42, services.OperationMeta{})
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestDeleteByBarcodeParsesDeletedCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/state/barcode/5005/symbol/P1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("count"))
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"deletedCount": 2}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "")
	deleted, err := c.DeleteByBarcode(context.Background(), "5005", "P1", 2, services.OperationMeta{})
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
}

func TestRestoreItemPostsPayload(t *testing.T) {
	var body models.RestoreItemRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/state/restore-silent", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "")
	req := models.RestoreItemRequest{
		FullName:      "Kurtka zimowa",
		Size:          "M",
		Barcode:       "1001",
		Symbol:        models.WarehouseSymbol,
		Price:         199.99,
		OperationType: models.OperationCorrection,
	}
	require.NoError(t, c.RestoreItem(context.Background(), req, services.OperationMeta{TransactionID: "TX-1"}))
	assert.Equal(t, req, body)
}

func TestUnexpectedStatusSurfacesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"INTERNAL_SERVER_ERROR"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "")
	_, err := c.FetchState(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
	assert.Contains(t, err.Error(), "INTERNAL_SERVER_ERROR")
}

func TestFetchUsersUnwrapsEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/user", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"users":[{"username":"p1","sellingPoint":"Punkt 1","symbol":"P1"}]}`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "")
	users, err := c.FetchUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "P1", users[0].Symbol)
	assert.Equal(t, "Punkt 1", users[0].SellingPoint)
}

func TestGetTransactionsBuildsFilterQuery(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/transaction-history", r.URL.Path)
		assert.Equal(t, models.OperationSale, r.URL.Query().Get("operationType"))
		assert.Equal(t, start.Format(time.RFC3339), r.URL.Query().Get("startDate"))
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Error(err)
		}
	}))
	defer server.Close()

	c := New(server.URL, time.Second, "")
	transactions, err := c.GetTransactions(context.Background(), models.TransactionFilters{
		OperationType: models.OperationSale,
		StartDate:     &start,
	})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func TestZeroTimeoutFallsBackToDefault(t *testing.T) {
	c := New("http://localhost:1", 0, "")
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
