package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"magazyn_backend/internal/models"
	"magazyn_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCommitter(backend *fakeBackend) (*TransactionCommitter, *OperationGuard) {
	guard := NewOperationGuard()
	committer := NewTransactionCommitter(backend, guard)
	committer.now = func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) }
	return committer, guard
}

func TestCommitRejectedWhileAnotherOperationRuns(t *testing.T) {
	backend := newFakeBackend()
	committer, guard := newTestCommitter(backend)

	require.True(t, guard.TryBegin())
	defer guard.End()

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(1, "1001")}},
		TargetSellingPoint: "Punkt 1",
	})

	require.ErrorIs(t, err, ErrTransactionInProgress)
	assert.Nil(t, result)
	assert.Zero(t, backend.callCount(), "a rejected commit must not touch the backend")
}

func TestCommitValidation(t *testing.T) {
	backend := newFakeBackend()
	committer, _ := newTestCommitter(backend)

	cases := []struct {
		name string
		req  CommitRequest
	}{
		{"empty selection", CommitRequest{}},
		{"sale without selling point", CommitRequest{
			Selection: models.SelectionState{Sold: []models.SalesRecord{saleAt(1, "1001", "P1")}},
		}},
		{"transfer without target", CommitRequest{
			Selection: models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(1, "1001")}},
		}},
		{"unknown operation type", CommitRequest{
			Selection:            models.SelectionState{Sold: []models.SalesRecord{saleAt(1, "1001", "P1")}},
			SelectedSellingPoint: "Punkt 1",
			OperationType:        "zwrot",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := committer.Commit(context.Background(), tc.req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, backend.callCount())
}

func TestCommitStopsWhenNothingSurvivesClassification(t *testing.T) {
	backend := newFakeBackend()
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:            models.SelectionState{Sold: []models.SalesRecord{saleAt(1, "1001", "P1")}},
		SelectedSellingPoint: "Punkt 1",
	})

	require.ErrorIs(t, err, ErrNoValidItems)
	require.NotNil(t, result)
	assert.Len(t, result.MissingItems, 1)
	assert.Empty(t, backend.createdTxs, "no ledger entry without processed items")
	assert.Empty(t, backend.deletedItemIDs)
	assert.Empty(t, backend.barcodeDeletes)
}

func TestCommitGroupsSoldUnitsIntoOneDelete(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{
		{ID: 1, Barcode: "5005", Symbol: "P1", FullName: "Czapka", Price: 29.99},
		{ID: 2, Barcode: "5005", Symbol: "P1", FullName: "Czapka", Price: 29.99},
	}
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection: models.SelectionState{
			Sold: []models.SalesRecord{saleAt(10, "5005", "P1"), saleAt(11, "5005", "P1")},
		},
		SelectedSellingPoint: "Punkt 1",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Transaction)
	require.Len(t, backend.barcodeDeletes, 1, "identical sold units collapse into one call")
	assert.Equal(t, 2, backend.barcodeDeletes[0].Count)
	assert.Equal(t, "P1", backend.barcodeDeletes[0].Symbol)
	assert.Empty(t, backend.restores)

	tx := result.Transaction
	assert.Equal(t, models.OperationSale, tx.OperationType)
	require.Len(t, tx.ProcessedItems, 2)
	for _, item := range tx.ProcessedItems {
		assert.Equal(t, models.ProcessTypeSold, item.ProcessType)
		assert.Equal(t, "P1", item.OriginalSymbol)
		assert.Equal(t, "Punkt 1", item.SellingPoint)
	}
	assert.Equal(t, 2, tx.ItemsCount)
	require.Len(t, backend.createdTxs, 1)
}

func TestCommitTransferDeletesThenRestoresAtTarget(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(7, "1001")}
	backend.users = []models.User{{Username: "p1", SellingPoint: "Punkt 1", Symbol: "P1"}}
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(7, "1001")}},
		TargetSellingPoint: "Punkt 1",
	})

	require.NoError(t, err)
	require.Len(t, backend.deletedItemIDs, 1)
	assert.Equal(t, int64(7), backend.deletedItemIDs[0])
	require.Len(t, backend.restores, 1)
	assert.Equal(t, "P1", backend.restores[0].Symbol, "restore goes to the resolved target symbol")
	assert.Equal(t, []string{"FetchState", "FetchUsers", "DeleteItem:7", "RestoreItem:1001@P1", "CreateTransaction"}, backend.calls)

	tx := result.Transaction
	assert.Equal(t, models.OperationTransfer, tx.OperationType)
	require.Len(t, tx.ProcessedItems, 1)
	assert.Equal(t, models.ProcessTypeTransferred, tx.ProcessedItems[0].ProcessType)
	assert.Equal(t, models.WarehouseSymbol, tx.ProcessedItems[0].OriginalSymbol)
	assert.Equal(t, "Punkt 1", tx.ProcessedItems[0].SellingPoint)
	assert.Equal(t, models.OperationTransfer, backend.restoreMetas[0].OperationType)
	assert.Equal(t, "P1", backend.restoreMetas[0].TargetSymbol)
}

func TestCommitRejectsUnknownTargetPoint(t *testing.T) {
	// A target that is neither a directory name nor a known symbol must not
	// leak verbatim into restore calls.
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(7, "1001")}
	backend.users = []models.User{{SellingPoint: "Punkt 1", Symbol: "P1"}}
	committer, _ := newTestCommitter(backend)

	_, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(7, "1001")}},
		TargetSellingPoint: "Punk 1",
	})

	require.ErrorIs(t, err, ErrValidation)
	assert.Empty(t, backend.deletedItemIDs)
	assert.Empty(t, backend.restores)
	assert.Empty(t, backend.createdTxs)
}

func TestCommitAcceptsSymbolAsTarget(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(7, "1001")}
	backend.users = []models.User{{SellingPoint: "Punkt 1", Symbol: "P1"}}
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(7, "1001")}},
		TargetSellingPoint: "P1",
	})

	require.NoError(t, err)
	require.Len(t, backend.restores, 1)
	assert.Equal(t, "P1", backend.restores[0].Symbol)
	require.NotNil(t, result.Transaction)
}

func TestCommitSynchronizedInSaleModeDeletesOnly(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(3, "1001")}
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:            models.SelectionState{Synchronized: []models.InventoryItem{warehouseItem(3, "1001")}},
		SelectedSellingPoint: "Punkt 2",
	})

	require.NoError(t, err)
	assert.Equal(t, []int64{3}, backend.deletedItemIDs)
	assert.Empty(t, backend.restores, "sale mode consumes the warehouse unit without recreating it")
	assert.Equal(t, models.OperationSale, result.Transaction.OperationType)
	assert.Equal(t, models.ProcessTypeSynchronized, result.Transaction.ProcessedItems[0].ProcessType)
	assert.Equal(t, models.WarehouseSymbol, result.Transaction.ProcessedItems[0].OriginalSymbol)
}

func TestCommitSynchronizedInTransferModeRestoresAtTarget(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(3, "1001")}
	backend.users = []models.User{{SellingPoint: "Punkt 2", Symbol: "P2"}}
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Synchronized: []models.InventoryItem{warehouseItem(3, "1001")}},
		TargetSellingPoint: "Punkt 2",
		OperationType:      models.OperationTransfer,
	})

	require.NoError(t, err)
	require.Len(t, backend.restores, 1)
	assert.Equal(t, "P2", backend.restores[0].Symbol)
	assert.Equal(t, "Punkt 2", result.Transaction.ProcessedItems[0].SellingPoint)
}

func TestCommitTreatsMissingUnitAsAlreadyProcessed(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{
		{ID: 1, Barcode: "5005", Symbol: "P1", FullName: "Czapka", Price: 29.99},
	}
	backend.deleteBarcodeErrs["5005@P1"] = repositories.ErrNotFound
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:            models.SelectionState{Sold: []models.SalesRecord{saleAt(10, "5005", "P1")}},
		SelectedSellingPoint: "Punkt 1",
	})

	require.NoError(t, err, "a unit deleted by someone else counts as done")
	assert.Empty(t, result.FailedItems)
	require.NotNil(t, result.Transaction)
	assert.Len(t, result.Transaction.ProcessedItems, 1)
}

func TestCommitIsolatesItemFailures(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(1, "1001"), warehouseItem(2, "2002")}
	backend.users = []models.User{{SellingPoint: "Punkt 1", Symbol: "P1"}}
	backend.deleteItemErrs[2] = errors.New("connection reset")
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection: models.SelectionState{
			Transferred: []models.InventoryItem{warehouseItem(1, "1001"), warehouseItem(2, "2002")},
		},
		TargetSellingPoint: "Punkt 1",
	})

	require.NoError(t, err)
	require.Len(t, result.FailedItems, 1)
	assert.Equal(t, "2002", result.FailedItems[0].Candidate.Barcode)
	require.NotNil(t, result.Transaction)
	require.Len(t, result.Transaction.ProcessedItems, 1)
	assert.Equal(t, "1001", result.Transaction.ProcessedItems[0].Barcode)
	assert.Len(t, backend.restores, 1, "the failed unit is never restored")
}

func TestCommitAllItemsFailed(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(1, "1001")}
	backend.users = []models.User{{SellingPoint: "Punkt 1", Symbol: "P1"}}
	backend.deleteItemErrs[1] = errors.New("connection reset")
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(1, "1001")}},
		TargetSellingPoint: "Punkt 1",
	})

	require.ErrorIs(t, err, ErrAllItemsFailed)
	assert.Len(t, result.FailedItems, 1)
	assert.Empty(t, backend.createdTxs)
}

func TestCommitSurfacesLedgerWriteFailureWithResult(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(1, "1001")}
	backend.users = []models.User{{SellingPoint: "Punkt 1", Symbol: "P1"}}
	backend.createTxErr = errors.New("insert failed")
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection:          models.SelectionState{Transferred: []models.InventoryItem{warehouseItem(1, "1001")}},
		TargetSellingPoint: "Punkt 1",
	})

	require.ErrorIs(t, err, ErrLedgerWrite)
	require.NotNil(t, result.Transaction, "the unpersisted transaction is returned for recovery")
	assert.Len(t, result.Transaction.ProcessedItems, 1)
}

func TestCommitProcessedItemsSortedByBarcode(t *testing.T) {
	backend := newFakeBackend()
	backend.state = []models.InventoryItem{warehouseItem(1, "9009"), warehouseItem(2, "1001")}
	backend.users = []models.User{{SellingPoint: "Punkt 1", Symbol: "P1"}}
	committer, _ := newTestCommitter(backend)

	result, err := committer.Commit(context.Background(), CommitRequest{
		Selection: models.SelectionState{
			Transferred: []models.InventoryItem{warehouseItem(1, "9009"), warehouseItem(2, "1001")},
		},
		TargetSellingPoint: "Punkt 1",
	})

	require.NoError(t, err)
	require.Len(t, result.Transaction.ProcessedItems, 2)
	assert.Equal(t, "1001", result.Transaction.ProcessedItems[0].Barcode)
	assert.Equal(t, "9009", result.Transaction.ProcessedItems[1].Barcode)
}

func TestCommitGuardReleasedAfterFailure(t *testing.T) {
	backend := newFakeBackend()
	committer, guard := newTestCommitter(backend)

	_, err := committer.Commit(context.Background(), CommitRequest{})
	require.ErrorIs(t, err, ErrValidation)
	assert.False(t, guard.InProgress())
}
