package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"

	"github.com/rs/zerolog/log"
)

// UndoEngine reverses committed transactions, whole or line by line. The
// transaction ledger is the authoritative undo record; the free-text history
// log is cleaned up best-effort only.
type UndoEngine struct {
	backend Backend
	guard   *OperationGuard
	now     func() time.Time
}

// NewUndoEngine creates an undo engine sharing the guard with the committer.
func NewUndoEngine(backend Backend, guard *OperationGuard) *UndoEngine {
	return &UndoEngine{backend: backend, guard: guard, now: time.Now}
}

// UndoTransaction reverses a whole transaction: every item goes back to its
// pre-commit home, then the ledger entry and its history rows are removed.
// Restore targets are determined by each line's process type:
//
//	sold         -> originalSymbol (the point it was sold from)
//	synchronized -> warehouse
//	transferred  -> warehouse (pulled from the target point first)
//	corrected    -> removed from its current spot, no restore
//
// Item failures abort the undo with a surfaced error; already-applied
// reversals are left standing.
func (e *UndoEngine) UndoTransaction(ctx context.Context, tx models.Transaction) error {
	if !e.guard.TryBegin() {
		return ErrTransactionInProgress
	}
	defer e.guard.End()

	dir, err := e.directory(ctx)
	if err != nil {
		return err
	}
	meta := OperationMeta{TransactionID: tx.TransactionID, OperationType: models.OperationCorrection}

	var (
		mu       sync.Mutex
		itemErrs []string
		wg       sync.WaitGroup
	)
	for _, item := range tx.ProcessedItems {
		item := item
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := e.reverseItem(ctx, item, dir, meta); err != nil {
				mu.Lock()
				itemErrs = append(itemErrs, fmt.Sprintf("%s/%s: %v", item.Barcode, item.Size, err))
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(itemErrs) > 0 {
		return fmt.Errorf("undo of %s failed for %d item(s): %s",
			tx.TransactionID, len(itemErrs), strings.Join(itemErrs, "; "))
	}

	e.cleanupHistory(ctx, tx)

	if err := e.backend.DeleteTransaction(ctx, tx.TransactionID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("deleting ledger entry %s: %w", tx.TransactionID, err)
	}
	return nil
}

// UndoSingleItem reverses one line of a transaction. The inventory is
// restored, a compensating korekta transaction referencing the original is
// written, and the original entry is shrunk and flagged.
func (e *UndoEngine) UndoSingleItem(ctx context.Context, tx models.Transaction, item models.ProcessedItem) (*models.Transaction, error) {
	if !e.guard.TryBegin() {
		return nil, ErrTransactionInProgress
	}
	defer e.guard.End()

	remaining, found := removeItem(tx.ProcessedItems, item)
	if !found {
		return nil, fmt.Errorf("%w: item %s/%s not part of transaction %s", ErrValidation, item.Barcode, item.Size, tx.TransactionID)
	}

	correctionID := NewTransactionID(e.now())
	meta := OperationMeta{TransactionID: correctionID, OperationType: models.OperationCorrection}

	// A corrected line carries no unit of its own; the stock was already put
	// back when its korekta was written. Only the ledger changes here.
	if item.ProcessType != models.ProcessTypeCorrected {
		dir, err := e.directory(ctx)
		if err != nil {
			return nil, err
		}
		if err := e.reverseItem(ctx, item, dir, meta); err != nil {
			return nil, fmt.Errorf("undoing item %s/%s: %w", item.Barcode, item.Size, err)
		}
	}

	corrected := item
	corrected.ID = 0
	corrected.ProcessType = models.ProcessTypeCorrected
	correction := &models.Transaction{
		TransactionID:         correctionID,
		Timestamp:             e.now(),
		OperationType:         models.OperationCorrection,
		SelectedSellingPoint:  tx.SelectedSellingPoint,
		TargetSellingPoint:    tx.TargetSellingPoint,
		ProcessedItems:        []models.ProcessedItem{corrected},
		ItemsCount:            1,
		IsCorrection:          true,
		OriginalTransactionID: tx.TransactionID,
	}
	if err := e.backend.CreateTransaction(ctx, correction); err != nil {
		return nil, fmt.Errorf("%w: writing correction entry: %v", ErrLedgerWrite, err)
	}

	now := e.now()
	updated := tx
	updated.ProcessedItems = remaining
	updated.ItemsCount = len(remaining)
	updated.HasCorrections = true
	updated.LastModified = &now
	if err := e.backend.UpdateTransaction(ctx, &updated); err != nil {
		return correction, fmt.Errorf("%w: updating original entry %s: %v", ErrLedgerWrite, tx.TransactionID, err)
	}

	// History log pruning is best-effort; the correction entry above is the
	// authoritative record.
	if err := e.backend.DeleteHistorySingleItem(ctx, models.HistorySingleItemFilter{
		TransactionID: tx.TransactionID,
		Barcode:       item.Barcode,
		Size:          item.Size,
	}); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		log.Warn().Err(err).Str("transaction_id", tx.TransactionID).Msg("History single-item cleanup failed")
	}

	return correction, nil
}

// reverseItem puts one processed item back where it came from. Transferred and
// corrected items are pulled from their current location first; a not-found
// there means someone already moved the unit and is not an error. Any other
// removal error aborts before the restore runs, so a failed removal can never
// produce a duplicate unit. Corrected lines reach here only from
// whole-transaction undo, where rolling back the korekta means re-consuming
// the unit it restored.
func (e *UndoEngine) reverseItem(ctx context.Context, item models.ProcessedItem, dir symbolDirectory, meta OperationMeta) error {
	switch item.ProcessType {
	case models.ProcessTypeTransferred, models.ProcessTypeCorrected:
		currentSymbol := dir.symbolFor(item.SellingPoint)
		if currentSymbol == "" {
			currentSymbol = item.OriginalSymbol
		}
		if _, err := e.backend.DeleteByBarcode(ctx, item.Barcode, currentSymbol, 1, meta); err != nil {
			if !errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("removing from %s: %w", currentSymbol, err)
			}
		}
	}

	var restoreSymbol string
	switch item.ProcessType {
	case models.ProcessTypeSold:
		restoreSymbol = item.OriginalSymbol
	case models.ProcessTypeSynchronized, models.ProcessTypeTransferred:
		restoreSymbol = models.WarehouseSymbol
	case models.ProcessTypeCorrected:
		// Already handled by the correction transaction itself.
		return nil
	default:
		return fmt.Errorf("unknown process type %q", item.ProcessType)
	}

	req := models.RestoreItemRequest{
		FullName:      item.FullName,
		Size:          item.Size,
		Barcode:       item.Barcode,
		Symbol:        restoreSymbol,
		Price:         item.Price,
		DiscountPrice: item.DiscountPrice,
		OperationType: models.OperationCorrection,
	}
	if err := e.backend.RestoreItem(ctx, req, meta); err != nil {
		return fmt.Errorf("restoring to %s: %w", restoreSymbol, err)
	}
	return nil
}

// cleanupHistory removes the audit rows of a transaction: primary path by
// transaction id, fallback by item details. Failure of both is logged only.
func (e *UndoEngine) cleanupHistory(ctx context.Context, tx models.Transaction) {
	err := e.backend.DeleteHistoryByTransaction(ctx, tx.TransactionID)
	if err == nil {
		return
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		log.Warn().Err(err).Str("transaction_id", tx.TransactionID).Msg("History cleanup by transaction id failed")
	}

	for _, item := range tx.ProcessedItems {
		detailErr := e.backend.DeleteHistoryByDetails(ctx, models.HistoryDetailsFilter{
			Barcode: item.Barcode,
			Size:    item.Size,
			Symbol:  item.OriginalSymbol,
		})
		if detailErr != nil && !errors.Is(detailErr, repositories.ErrNotFound) {
			log.Warn().Err(detailErr).
				Str("transaction_id", tx.TransactionID).
				Str("barcode", item.Barcode).
				Msg("History cleanup by details failed")
		}
	}
}

func (e *UndoEngine) directory(ctx context.Context) (symbolDirectory, error) {
	users, err := e.backend.FetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching selling point directory: %w", err)
	}
	return buildSymbolDirectory(users), nil
}

// removeItem filters out the first line matching the undone item.
func removeItem(items []models.ProcessedItem, target models.ProcessedItem) ([]models.ProcessedItem, bool) {
	remaining := make([]models.ProcessedItem, 0, len(items))
	found := false
	for _, it := range items {
		if !found && it.Barcode == target.Barcode && it.Size == target.Size && it.ProcessType == target.ProcessType {
			found = true
			continue
		}
		remaining = append(remaining, it)
	}
	return remaining, found
}
