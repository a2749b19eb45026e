package services

import (
	"testing"

	"magazyn_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func warehouseItem(id int64, barcode string) models.InventoryItem {
	return models.InventoryItem{
		ID:       id,
		FullName: "Kurtka zimowa",
		Size:     "M",
		Barcode:  barcode,
		Price:    199.99,
		Symbol:   models.WarehouseSymbol,
	}
}

func saleAt(id int64, barcode, from string) models.SalesRecord {
	return models.SalesRecord{
		ID:       id,
		FullName: "Kurtka zimowa",
		Size:     "M",
		Barcode:  barcode,
		Price:    199.99,
		From:     from,
	}
}

func TestClassifyPartitionsSelection(t *testing.T) {
	snapshot := []models.InventoryItem{
		warehouseItem(1, "1001"),
		{ID: 2, Barcode: "2002", Symbol: "P1", FullName: "Spodnie", Size: "L", Price: 89.99},
	}
	selection := models.SelectionState{
		Sold:         []models.SalesRecord{saleAt(10, "2002", "P1"), saleAt(11, "9999", "P1")},
		Synchronized: []models.InventoryItem{warehouseItem(1, "1001")},
		Transferred:  []models.InventoryItem{warehouseItem(3, "3003")},
	}

	result := Classify(selection, snapshot)

	require.Len(t, result.Valid, 2)
	require.Len(t, result.Missing, 2)

	validBarcodes := []string{result.Valid[0].Barcode, result.Valid[1].Barcode}
	assert.Contains(t, validBarcodes, "2002")
	assert.Contains(t, validBarcodes, "1001")
	missingBarcodes := []string{result.Missing[0].Barcode, result.Missing[1].Barcode}
	assert.Contains(t, missingBarcodes, "9999")
	assert.Contains(t, missingBarcodes, "3003")
}

func TestClassifyDuplicateBarcodesConsumeDistinctRows(t *testing.T) {
	// Two sales of the same barcode need two snapshot rows; one row can
	// back only one of them.
	snapshot := []models.InventoryItem{
		{ID: 1, Barcode: "5005", Symbol: "P2", FullName: "Czapka", Price: 29.99},
	}
	selection := models.SelectionState{
		Sold: []models.SalesRecord{saleAt(20, "5005", "P2"), saleAt(21, "5005", "P2")},
	}

	result := Classify(selection, snapshot)

	require.Len(t, result.Valid, 1)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, int64(20), result.Valid[0].SaleID)
	assert.Equal(t, int64(21), result.Missing[0].SaleID)
}

func TestClassifySoldRequiresStockAtSourcePoint(t *testing.T) {
	// The unit exists, but at a different point than the sale claims.
	snapshot := []models.InventoryItem{
		{ID: 1, Barcode: "7007", Symbol: "P2", FullName: "Szalik", Price: 39.99},
	}
	selection := models.SelectionState{
		Sold: []models.SalesRecord{saleAt(30, "7007", "P1")},
	}

	result := Classify(selection, snapshot)

	assert.Empty(t, result.Valid)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, "P1", result.Missing[0].ExpectedSymbol)
}

func TestClassifyWarehouseCategoriesRequireWarehouseStock(t *testing.T) {
	item := warehouseItem(1, "1001")
	item.Symbol = "P3"
	snapshot := []models.InventoryItem{item}

	selection := models.SelectionState{
		Synchronized: []models.InventoryItem{item},
	}

	result := Classify(selection, snapshot)

	assert.Empty(t, result.Valid)
	require.Len(t, result.Missing, 1)
	assert.Equal(t, models.WarehouseSymbol, result.Missing[0].ExpectedSymbol)
	assert.Equal(t, CategorySynchronized, result.Missing[0].Category)
}

func TestClassifyIsDeterministic(t *testing.T) {
	snapshot := []models.InventoryItem{
		warehouseItem(1, "1001"),
		warehouseItem(2, "1001"),
		{ID: 3, Barcode: "2002", Symbol: "P1", Price: 10},
	}
	selection := models.SelectionState{
		Sold:        []models.SalesRecord{saleAt(40, "2002", "P1")},
		Transferred: []models.InventoryItem{warehouseItem(1, "1001"), warehouseItem(2, "1001")},
	}

	first := Classify(selection, snapshot)
	second := Classify(selection, snapshot)

	assert.Equal(t, first, second)
	assert.Len(t, first.Valid, 3)
	assert.Empty(t, first.Missing)
}
