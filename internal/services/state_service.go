package services

import (
	"database/sql"
	"fmt"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"
)

// StateService owns the mutating inventory operations on the backend side.
// Every mutation writes its audit history row in the same SQL transaction, so
// an item can never vanish without a trace.
type StateService interface {
	CreateItem(item *models.InventoryItem) error
	DeleteItem(id int64, meta OperationMeta) (*models.InventoryItem, error)
	DeleteByBarcode(barcode, symbol string, count int, meta OperationMeta) (int, error)
	RestoreItem(req models.RestoreItemRequest, meta OperationMeta) (*models.InventoryItem, error)
}

type stateService struct {
	inventoryRepo repositories.InventoryRepository
	historyRepo   repositories.HistoryRepository
	db            *sql.DB
}

// NewStateService creates a new instance of StateService.
func NewStateService(ir repositories.InventoryRepository, hr repositories.HistoryRepository, db *sql.DB) StateService {
	return &stateService{inventoryRepo: ir, historyRepo: hr, db: db}
}

func (s *stateService) CreateItem(item *models.InventoryItem) error {
	if item.Symbol == "" {
		item.Symbol = models.WarehouseSymbol
	}
	_, err := s.inventoryRepo.CreateItem(s.db, item)
	return err
}

func (s *stateService) DeleteItem(id int64, meta OperationMeta) (*models.InventoryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.inventoryRepo.DeleteItemByID(tx, id)
	if err != nil {
		return nil, err
	}

	entry := historyEntryFor(meta, item.FullName, item.Size, item.Barcode, item.Symbol)
	if _, err := s.historyRepo.CreateEntry(tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit delete: %w", err)
	}
	return item, nil
}

func (s *stateService) DeleteByBarcode(barcode, symbol string, count int, meta OperationMeta) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	deleted, err := s.inventoryRepo.DeleteByBarcodeAndSymbol(tx, barcode, symbol, count)
	if err != nil {
		return 0, err
	}

	entry := historyEntryFor(meta, "", "", barcode, symbol)
	details := fmt.Sprintf("deleted %d unit(s)", deleted)
	entry.Details = &details
	if _, err := s.historyRepo.CreateEntry(tx, entry); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return deleted, nil
}

func (s *stateService) RestoreItem(req models.RestoreItemRequest, meta OperationMeta) (*models.InventoryItem, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	item := &models.InventoryItem{
		FullName:      req.FullName,
		Size:          req.Size,
		Barcode:       req.Barcode,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Symbol:        req.Symbol,
	}
	if _, err := s.inventoryRepo.CreateItem(tx, item); err != nil {
		return nil, err
	}

	operationType := meta.OperationType
	if operationType == "" {
		operationType = req.OperationType
	}
	entry := historyEntryFor(OperationMeta{
		TransactionID: meta.TransactionID,
		OperationType: operationType,
		TargetSymbol:  req.Symbol,
	}, req.FullName, req.Size, req.Barcode, req.Symbol)
	if _, err := s.historyRepo.CreateEntry(tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit restore: %w", err)
	}
	return item, nil
}

func historyEntryFor(meta OperationMeta, fullName, size, barcode, symbol string) *models.HistoryEntry {
	operationType := meta.OperationType
	if operationType == "" {
		operationType = "unknown"
	}
	return &models.HistoryEntry{
		TransactionID: models.NewNullString(meta.TransactionID),
		OperationType: operationType,
		FullName:      fullName,
		Size:          size,
		Barcode:       barcode,
		Symbol:        symbol,
		TargetSymbol:  meta.TargetSymbol,
	}
}
