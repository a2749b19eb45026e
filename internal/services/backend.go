package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"magazyn_backend/internal/models"

	"github.com/google/uuid"
)

// OperationMeta carries the correlation fields every mutating backend call
// sends: one transaction id per commit/undo, the operation type and, for
// moves, the destination symbol. The backend logs them in its audit history.
type OperationMeta struct {
	TransactionID string
	OperationType string
	TargetSymbol  string
}

// Backend is the store surface the engine drives. internal/client implements
// it over the REST API; tests substitute a fake. Delete operations must map a
// not-found outcome to repositories.ErrNotFound so callers can treat it as
// already-processed.
type Backend interface {
	FetchState(ctx context.Context) ([]models.InventoryItem, error)
	FetchWarehouse(ctx context.Context) ([]models.InventoryItem, error)
	FetchUsers(ctx context.Context) ([]models.User, error)

	DeleteItem(ctx context.Context, id int64, meta OperationMeta) error
	DeleteByBarcode(ctx context.Context, barcode, symbol string, count int, meta OperationMeta) (int, error)
	RestoreItem(ctx context.Context, req models.RestoreItemRequest, meta OperationMeta) error

	GetTransactions(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	UpdateTransaction(ctx context.Context, tx *models.Transaction) error
	DeleteTransaction(ctx context.Context, transactionID string) error

	DeleteHistoryByTransaction(ctx context.Context, transactionID string) error
	DeleteHistoryByDetails(ctx context.Context, filter models.HistoryDetailsFilter) error
	DeleteHistorySingleItem(ctx context.Context, filter models.HistorySingleItemFilter) error
}

// NewTransactionID returns a time-derived id with a random suffix, unique per
// commit and used as the correlation key on every call of that commit.
func NewTransactionID(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("TX-%d-%s", now.UnixMilli(), suffix)
}

// symbolDirectory maps selling point names to their short symbol codes.
type symbolDirectory map[string]string

func buildSymbolDirectory(users []models.User) symbolDirectory {
	dir := make(symbolDirectory, len(users))
	for _, u := range users {
		if u.SellingPoint != "" {
			dir[u.SellingPoint] = u.Symbol
		}
	}
	return dir
}

// symbolFor resolves a selling point name to its symbol. Names without a
// directory entry are assumed to already be symbols. Undo uses this lenient
// form: ledger lines may predate directory changes and must stay reversible.
func (d symbolDirectory) symbolFor(sellingPoint string) string {
	if symbol, ok := d[sellingPoint]; ok {
		return symbol
	}
	return sellingPoint
}

// resolve is the strict form used before new mutations: the name must be a
// directory entry, a known symbol, or the warehouse itself. A typo'd target
// would otherwise end up verbatim as the restore symbol on the wire.
func (d symbolDirectory) resolve(sellingPoint string) (string, bool) {
	if symbol, ok := d[sellingPoint]; ok {
		return symbol, true
	}
	if sellingPoint == models.WarehouseSymbol {
		return sellingPoint, true
	}
	for _, symbol := range d {
		if symbol == sellingPoint {
			return sellingPoint, true
		}
	}
	return "", false
}
