package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"

	"github.com/rs/zerolog/log"
)

// CommitRequest carries the operator's selection and the points involved.
// OperationType may be left empty; it is derived from the selection
// (sprzedaz when any sale-backed items are present, przepisanie otherwise).
type CommitRequest struct {
	Selection            models.SelectionState `json:"selection"`
	SelectedSellingPoint string                `json:"selectedSellingPoint"`
	TargetSellingPoint   string                `json:"targetSellingPoint"`
	OperationType        string                `json:"operationType"`
}

// ItemFailure reports one unit that could not be processed. Sibling items are
// unaffected; the ledger entry is built from successes only.
type ItemFailure struct {
	Candidate Candidate `json:"candidate"`
	Reason    string    `json:"reason"`
}

// CommitResult is what a commit attempt produced. MissingItems were filtered
// out by classification and must be surfaced to the operator as a warning;
// silent partial success is not allowed.
type CommitResult struct {
	Transaction  *models.Transaction `json:"transaction,omitempty"`
	MissingItems []Candidate         `json:"missingItems,omitempty"`
	FailedItems  []ItemFailure       `json:"failedItems,omitempty"`
}

// TransactionCommitter drives the commit flow: validate the selection,
// classify it against a fresh snapshot, issue the per-category operation
// pairs, then persist the ledger entry and report what happened.
type TransactionCommitter struct {
	backend Backend
	guard   *OperationGuard
	now     func() time.Time
}

// NewTransactionCommitter creates a committer sharing the guard with the undo engine.
func NewTransactionCommitter(backend Backend, guard *OperationGuard) *TransactionCommitter {
	return &TransactionCommitter{backend: backend, guard: guard, now: time.Now}
}

// Commit runs one full commit. It is rejected with ErrTransactionInProgress
// when another commit or undo holds the guard; no backend call is made in
// that case.
func (s *TransactionCommitter) Commit(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	if !s.guard.TryBegin() {
		return nil, ErrTransactionInProgress
	}
	defer s.guard.End()

	opType, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	// Snapshot must be fetched right before classification; a reused snapshot
	// widens the read-then-write race.
	snapshot, err := s.backend.FetchState(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching inventory snapshot: %w", err)
	}

	classified := Classify(req.Selection, snapshot)
	result := &CommitResult{MissingItems: classified.Missing}
	if len(classified.Valid) == 0 {
		return result, ErrNoValidItems
	}

	targetSymbol := ""
	if needsTarget(req.Selection, opType) {
		users, err := s.backend.FetchUsers(ctx)
		if err != nil {
			return result, fmt.Errorf("fetching selling point directory: %w", err)
		}
		var ok bool
		targetSymbol, ok = buildSymbolDirectory(users).resolve(req.TargetSellingPoint)
		if !ok {
			return result, fmt.Errorf("%w: unknown target selling point %q", ErrValidation, req.TargetSellingPoint)
		}
	}

	txID := NewTransactionID(s.now())
	meta := OperationMeta{TransactionID: txID, OperationType: opType, TargetSymbol: targetSymbol}

	processed, failed := s.processValidItems(ctx, classified.Valid, req, opType, targetSymbol, meta)
	result.FailedItems = failed
	if len(processed) == 0 {
		return result, ErrAllItemsFailed
	}

	sort.Slice(processed, func(i, j int) bool {
		if processed[i].Barcode != processed[j].Barcode {
			return processed[i].Barcode < processed[j].Barcode
		}
		return processed[i].Size < processed[j].Size
	})

	tx := &models.Transaction{
		TransactionID:        txID,
		Timestamp:            s.now(),
		OperationType:        opType,
		SelectedSellingPoint: req.SelectedSellingPoint,
		TargetSellingPoint:   req.TargetSellingPoint,
		ProcessedItems:       processed,
		ItemsCount:           len(processed),
	}
	result.Transaction = tx

	if err := s.backend.CreateTransaction(ctx, tx); err != nil {
		// Inventory mutations already applied; they are not rolled back. The
		// result keeps the full transaction so the operator can recover.
		log.Error().Err(err).Str("transaction_id", txID).Msg("Ledger write failed after inventory mutations")
		return result, fmt.Errorf("%w: %v", ErrLedgerWrite, err)
	}
	return result, nil
}

func (s *TransactionCommitter) validate(req CommitRequest) (string, error) {
	if req.Selection.IsEmpty() {
		return "", fmt.Errorf("%w: nothing selected", ErrValidation)
	}

	opType := req.OperationType
	if opType == "" {
		if len(req.Selection.Sold) > 0 || len(req.Selection.Synchronized) > 0 {
			opType = models.OperationSale
		} else {
			opType = models.OperationTransfer
		}
	}
	if opType != models.OperationSale && opType != models.OperationTransfer {
		return "", fmt.Errorf("%w: unsupported operation type %q", ErrValidation, opType)
	}

	if len(req.Selection.Sold) > 0 && req.SelectedSellingPoint == "" {
		return "", fmt.Errorf("%w: selling point is required for sales", ErrValidation)
	}
	if needsTarget(req.Selection, opType) && req.TargetSellingPoint == "" {
		return "", fmt.Errorf("%w: target selling point is required for transfers", ErrValidation)
	}
	return opType, nil
}

func needsTarget(selection models.SelectionState, opType string) bool {
	if len(selection.Transferred) > 0 {
		return true
	}
	return opType == models.OperationTransfer && len(selection.Synchronized) > 0
}

// processValidItems issues the category operations. Items within a category
// run concurrently; the delete/restore pair of a single item stays sequenced.
// A not-found on delete counts as already processed. Any other error fails
// only that item.
func (s *TransactionCommitter) processValidItems(
	ctx context.Context,
	valid []Candidate,
	req CommitRequest,
	opType, targetSymbol string,
	meta OperationMeta,
) ([]models.ProcessedItem, []ItemFailure) {
	var (
		mu        sync.Mutex
		processed []models.ProcessedItem
		failed    []ItemFailure
		wg        sync.WaitGroup
	)
	succeed := func(items ...models.ProcessedItem) {
		mu.Lock()
		processed = append(processed, items...)
		mu.Unlock()
	}
	fail := func(reason error, cands ...Candidate) {
		mu.Lock()
		for _, c := range cands {
			failed = append(failed, ItemFailure{Candidate: c, Reason: reason.Error()})
		}
		mu.Unlock()
		log.Warn().Err(reason).Str("transaction_id", meta.TransactionID).Msg("Item failed during commit")
	}

	var synchronized, transferred []Candidate
	for _, c := range valid {
		switch c.Category {
		case CategorySynchronized:
			synchronized = append(synchronized, c)
		case CategoryTransferred:
			transferred = append(transferred, c)
		}
	}

	// Sold units with the same barcode at the same point collapse into one
	// delete call with a count, so duplicate barcodes are consumed in a
	// single batch.
	for _, group := range groupSoldCandidates(valid) {
		group := group
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.backend.DeleteByBarcode(ctx, group.barcode, group.symbol, len(group.candidates), meta)
			if err != nil && !errors.Is(err, repositories.ErrNotFound) {
				fail(err, group.candidates...)
				return
			}
			items := make([]models.ProcessedItem, 0, len(group.candidates))
			for _, c := range group.candidates {
				items = append(items, processedFrom(c, models.ProcessTypeSold, c.ExpectedSymbol, req.SelectedSellingPoint))
			}
			succeed(items...)
		}()
	}

	syncPoint := req.SelectedSellingPoint
	if opType == models.OperationTransfer {
		syncPoint = req.TargetSellingPoint
	}
	for _, c := range synchronized {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.backend.DeleteItem(ctx, c.ItemID, meta); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				fail(err, c)
				return
			}
			if opType == models.OperationTransfer {
				if err := s.backend.RestoreItem(ctx, restoreRequestFrom(c, targetSymbol, opType), meta); err != nil {
					fail(fmt.Errorf("restore after delete: %w", err), c)
					return
				}
			}
			succeed(processedFrom(c, models.ProcessTypeSynchronized, models.WarehouseSymbol, syncPoint))
		}()
	}

	for _, c := range transferred {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.backend.DeleteItem(ctx, c.ItemID, meta); err != nil && !errors.Is(err, repositories.ErrNotFound) {
				fail(err, c)
				return
			}
			if err := s.backend.RestoreItem(ctx, restoreRequestFrom(c, targetSymbol, opType), meta); err != nil {
				fail(fmt.Errorf("restore after delete: %w", err), c)
				return
			}
			succeed(processedFrom(c, models.ProcessTypeTransferred, models.WarehouseSymbol, req.TargetSellingPoint))
		}()
	}

	wg.Wait()
	return processed, failed
}

type soldGroup struct {
	barcode    string
	symbol     string
	candidates []Candidate
}

func groupSoldCandidates(valid []Candidate) []soldGroup {
	index := map[string]int{}
	var groups []soldGroup
	for _, c := range valid {
		if c.Category != CategorySold {
			continue
		}
		key := c.Barcode + "\x00" + c.ExpectedSymbol
		if i, ok := index[key]; ok {
			groups[i].candidates = append(groups[i].candidates, c)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, soldGroup{barcode: c.Barcode, symbol: c.ExpectedSymbol, candidates: []Candidate{c}})
	}
	return groups
}

func processedFrom(c Candidate, processType, originalSymbol, sellingPoint string) models.ProcessedItem {
	originalID := c.ItemID
	if c.Category == CategorySold {
		originalID = c.SaleID
	}
	return models.ProcessedItem{
		FullName:       c.FullName,
		Size:           c.Size,
		Barcode:        c.Barcode,
		Price:          c.Price,
		DiscountPrice:  c.DiscountPrice,
		ProcessType:    processType,
		OriginalID:     originalID,
		OriginalSymbol: originalSymbol,
		SellingPoint:   sellingPoint,
	}
}

func restoreRequestFrom(c Candidate, symbol, operationType string) models.RestoreItemRequest {
	return models.RestoreItemRequest{
		FullName:      c.FullName,
		Size:          c.Size,
		Barcode:       c.Barcode,
		Symbol:        symbol,
		Price:         c.Price,
		DiscountPrice: c.DiscountPrice,
		OperationType: operationType,
	}
}
