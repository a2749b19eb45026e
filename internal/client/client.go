// Package client is the typed HTTP client over the store API. It owns the
// wire concerns of the engine: correlation headers, JSON codec and the
// idempotent-delete contract (HTTP 404 maps to repositories.ErrNotFound, which
// mutation callers treat as already-processed). No business logic lives here.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
	"magazyn_backend/internal/services"
)

// DefaultTimeout bounds every call; the original client had none, which left
// commits hanging on a dead backend.
const DefaultTimeout = 15 * time.Second

// Client implements services.Backend against a remote store API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// New creates a client for the given base URL (e.g. "http://localhost:8080").
// A zero timeout falls back to DefaultTimeout. The token, when set, is sent
// as a bearer credential on every request.
func New(baseURL string, timeout time.Duration, authToken string) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		authToken:  authToken,
	}
}

func (c *Client) FetchState(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/state", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) FetchWarehouse(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := c.doJSON(ctx, http.MethodGet, "/api/state/warehouse", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) FetchUsers(ctx context.Context) ([]models.User, error) {
	var response struct {
		Users []models.User `json:"users"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/user", nil, nil, &response); err != nil {
		return nil, err
	}
	return response.Users, nil
}

func (c *Client) FetchSales(ctx context.Context, date *time.Time, sellingPoint string) ([]models.SalesRecord, error) {
	path := "/api/sales/get-all-sales"
	if date != nil || sellingPoint != "" {
		query := url.Values{}
		if date != nil {
			query.Set("date", date.Format("2006-01-02"))
		}
		if sellingPoint != "" {
			query.Set("sellingPoint", sellingPoint)
		}
		path = "/api/sales/filter-by-date-and-point?" + query.Encode()
	}
	var sales []models.SalesRecord
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &sales); err != nil {
		return nil, err
	}
	return sales, nil
}

func (c *Client) DeleteItem(ctx context.Context, id int64, meta services.OperationMeta) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/state/"+strconv.FormatInt(id, 10), metaHeaders(meta), nil, nil)
}

func (c *Client) DeleteByBarcode(ctx context.Context, barcode, symbol string, count int, meta services.OperationMeta) (int, error) {
	path := fmt.Sprintf("/api/state/barcode/%s/symbol/%s?count=%d",
		url.PathEscape(barcode), url.PathEscape(symbol), count)
	var response struct {
		DeletedCount int `json:"deletedCount"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, path, metaHeaders(meta), nil, &response); err != nil {
		return 0, err
	}
	return response.DeletedCount, nil
}

func (c *Client) RestoreItem(ctx context.Context, req models.RestoreItemRequest, meta services.OperationMeta) error {
	return c.doJSON(ctx, http.MethodPost, "/api/state/restore-silent", metaHeaders(meta), req, nil)
}

func (c *Client) GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, error) {
	query := url.Values{}
	if filters.OperationType != "" {
		query.Set("operationType", filters.OperationType)
	}
	if filters.SellingPoint != "" {
		query.Set("sellingPoint", filters.SellingPoint)
	}
	if filters.StartDate != nil {
		query.Set("startDate", filters.StartDate.Format(time.RFC3339))
	}
	if filters.EndDate != nil {
		query.Set("endDate", filters.EndDate.Format(time.RFC3339))
	}
	path := "/api/transaction-history"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	var transactions []models.Transaction
	if err := c.doJSON(ctx, http.MethodGet, path, nil, nil, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

func (c *Client) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	return c.doJSON(ctx, http.MethodPost, "/api/transaction-history", nil, tx, tx)
}

func (c *Client) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	return c.doJSON(ctx, http.MethodPut, "/api/transaction-history/"+url.PathEscape(tx.TransactionID), nil, tx, tx)
}

func (c *Client) DeleteTransaction(ctx context.Context, transactionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/transaction-history/"+url.PathEscape(transactionID), nil, nil, nil)
}

func (c *Client) DeleteHistoryByTransaction(ctx context.Context, transactionID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/history/by-transaction/"+url.PathEscape(transactionID), nil, nil, nil)
}

func (c *Client) DeleteHistoryByDetails(ctx context.Context, filter models.HistoryDetailsFilter) error {
	return c.doJSON(ctx, http.MethodPost, "/api/history/delete-by-details", nil, filter, nil)
}

func (c *Client) DeleteHistorySingleItem(ctx context.Context, filter models.HistorySingleItemFilter) error {
	return c.doJSON(ctx, http.MethodPost, "/api/history/delete-single-item", nil, filter, nil)
}

func metaHeaders(meta services.OperationMeta) map[string]string {
	headers := map[string]string{}
	if meta.TransactionID != "" {
		headers["transactionid"] = meta.TransactionID
	}
	if meta.OperationType != "" {
		headers["operation-type"] = meta.OperationType
	}
	if meta.TargetSymbol != "" {
		headers["target-symbol"] = meta.TargetSymbol
	}
	return headers
}

func (c *Client) doJSON(ctx context.Context, method, path string, headers map[string]string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, repositories.ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, string(detail))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decoding response of %s %s: %w", method, path, err)
		}
	}
	return nil
}
