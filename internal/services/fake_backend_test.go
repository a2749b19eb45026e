package services

import (
	"context"
	"fmt"
	"sync"

	"magazyn_backend/internal/models"
)

type barcodeDelete struct {
	Barcode string
	Symbol  string
	Count   int
	Meta    OperationMeta
}

// fakeBackend records every call so tests can assert on order, payload and
// correlation metadata. Errors are injected per call site.
type fakeBackend struct {
	mu sync.Mutex

	state        []models.InventoryItem
	users        []models.User
	transactions []models.Transaction

	fetchStateErr       error
	fetchUsersErr       error
	deleteItemErrs      map[int64]error
	deleteBarcodeErrs   map[string]error
	restoreErr          error
	createTxErr         error
	updateTxErr         error
	deleteTxErr         error
	historyByTxErr      error
	historyByDetailsErr error
	historySingleErr    error

	calls            []string
	deletedItemIDs   []int64
	barcodeDeletes   []barcodeDelete
	restores         []models.RestoreItemRequest
	restoreMetas     []OperationMeta
	createdTxs       []models.Transaction
	updatedTxs       []models.Transaction
	deletedTxIDs     []string
	historyByTxIDs   []string
	historyByDetails []models.HistoryDetailsFilter
	historySingle    []models.HistorySingleItemFilter
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		deleteItemErrs:    map[int64]error{},
		deleteBarcodeErrs: map[string]error{},
	}
}

func (f *fakeBackend) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeBackend) FetchState(ctx context.Context) ([]models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchState")
	return f.state, f.fetchStateErr
}

func (f *fakeBackend) FetchWarehouse(ctx context.Context) ([]models.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchWarehouse")
	var warehouse []models.InventoryItem
	for _, item := range f.state {
		if item.Symbol == models.WarehouseSymbol {
			warehouse = append(warehouse, item)
		}
	}
	return warehouse, nil
}

func (f *fakeBackend) FetchUsers(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("FetchUsers")
	return f.users, f.fetchUsersErr
}

func (f *fakeBackend) DeleteItem(ctx context.Context, id int64, meta OperationMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("DeleteItem:%d", id))
	f.deletedItemIDs = append(f.deletedItemIDs, id)
	return f.deleteItemErrs[id]
}

func (f *fakeBackend) DeleteByBarcode(ctx context.Context, barcode, symbol string, count int, meta OperationMeta) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("DeleteByBarcode:%s@%s", barcode, symbol))
	f.barcodeDeletes = append(f.barcodeDeletes, barcodeDelete{Barcode: barcode, Symbol: symbol, Count: count, Meta: meta})
	if err := f.deleteBarcodeErrs[barcode+"@"+symbol]; err != nil {
		return 0, err
	}
	return count, nil
}

func (f *fakeBackend) RestoreItem(ctx context.Context, req models.RestoreItemRequest, meta OperationMeta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("RestoreItem:%s@%s", req.Barcode, req.Symbol))
	f.restores = append(f.restores, req)
	f.restoreMetas = append(f.restoreMetas, meta)
	return f.restoreErr
}

func (f *fakeBackend) GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetTransactions")
	return f.transactions, nil
}

func (f *fakeBackend) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTransaction")
	if f.createTxErr != nil {
		return f.createTxErr
	}
	f.createdTxs = append(f.createdTxs, *tx)
	return nil
}

func (f *fakeBackend) UpdateTransaction(ctx context.Context, tx *models.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTransaction")
	if f.updateTxErr != nil {
		return f.updateTxErr
	}
	f.updatedTxs = append(f.updatedTxs, *tx)
	return nil
}

func (f *fakeBackend) DeleteTransaction(ctx context.Context, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTransaction")
	f.deletedTxIDs = append(f.deletedTxIDs, transactionID)
	return f.deleteTxErr
}

func (f *fakeBackend) DeleteHistoryByTransaction(ctx context.Context, transactionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteHistoryByTransaction")
	f.historyByTxIDs = append(f.historyByTxIDs, transactionID)
	return f.historyByTxErr
}

func (f *fakeBackend) DeleteHistoryByDetails(ctx context.Context, filter models.HistoryDetailsFilter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteHistoryByDetails")
	f.historyByDetails = append(f.historyByDetails, filter)
	return f.historyByDetailsErr
}

func (f *fakeBackend) DeleteHistorySingleItem(ctx context.Context, filter models.HistorySingleItemFilter) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteHistorySingleItem")
	f.historySingle = append(f.historySingle, filter)
	return f.historySingleErr
}
