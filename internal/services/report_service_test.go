package services

import (
	"context"
	"testing"
	"time"

	"magazyn_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportRange() (time.Time, time.Time) {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 31, 23, 59, 59, 0, time.UTC)
}

func discounted(price, discount float64) (float64, *float64) {
	return price, &discount
}

func TestBalanceReportAggregatesPerPoint(t *testing.T) {
	backend := newFakeBackend()
	backend.users = []models.User{
		{SellingPoint: "Punkt 1", Symbol: "P1"},
		{SellingPoint: "Punkt 2", Symbol: "P2"},
	}
	price, discount := discounted(199.99, 149.99)
	backend.state = []models.InventoryItem{
		{ID: 1, Barcode: "1001", Symbol: models.WarehouseSymbol, Price: 100},
		{ID: 2, Barcode: "2002", Symbol: "P1", Price: price, DiscountPrice: discount},
		{ID: 3, Barcode: "3003", Symbol: "P1", Price: 50},
	}
	backend.transactions = []models.Transaction{
		{
			TransactionID: "TX-1",
			OperationType: models.OperationSale,
			ProcessedItems: []models.ProcessedItem{
				{Barcode: "4004", Price: 80, ProcessType: models.ProcessTypeSold, SellingPoint: "Punkt 1", OriginalSymbol: "P1"},
			},
		},
		{
			TransactionID: "TX-2",
			OperationType: models.OperationTransfer,
			ProcessedItems: []models.ProcessedItem{
				{Barcode: "5005", Price: 60, ProcessType: models.ProcessTypeTransferred, SellingPoint: "Punkt 2", OriginalSymbol: models.WarehouseSymbol},
			},
		},
	}

	service := NewReportService(backend)
	start, end := reportRange()
	report, err := service.BalanceReport(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, report.Rows, 2)
	p1 := report.Rows[0]
	assert.Equal(t, "Punkt 1", p1.SellingPoint)
	assert.Equal(t, 2, p1.OnHandCount)
	assert.True(t, p1.OnHandValue.Equal(decimal.NewFromFloat(199.99)), "discount price wins: 149.99 + 50")
	assert.Equal(t, 1, p1.SoldCount)
	assert.True(t, p1.SoldValue.Equal(decimal.NewFromFloat(80)))

	p2 := report.Rows[1]
	assert.Equal(t, 1, p2.TransferredIn)

	assert.Equal(t, 1, report.Warehouse.OnHandCount)
	assert.Equal(t, 1, report.Warehouse.TransferredOut)
}

func TestTransactionReportTotals(t *testing.T) {
	backend := newFakeBackend()
	backend.transactions = []models.Transaction{
		{
			TransactionID: "TX-1",
			OperationType: models.OperationSale,
			ProcessedItems: []models.ProcessedItem{
				{Barcode: "1001", Price: 100, ProcessType: models.ProcessTypeSold, SellingPoint: "Punkt 1"},
				{Barcode: "2002", Price: 50, ProcessType: models.ProcessTypeSold, SellingPoint: "Punkt 1"},
			},
		},
		{
			TransactionID: "TX-2",
			OperationType: models.OperationTransfer,
			ProcessedItems: []models.ProcessedItem{
				{Barcode: "3003", Price: 25, ProcessType: models.ProcessTypeTransferred, SellingPoint: "Punkt 2"},
			},
		},
	}

	service := NewReportService(backend)
	start, end := reportRange()
	report, err := service.TransactionReport(context.Background(), start, end)
	require.NoError(t, err)

	require.Len(t, report.Lines, 3)
	assert.True(t, report.TotalsByType[models.OperationSale].Equal(decimal.NewFromInt(150)))
	assert.True(t, report.TotalsByType[models.OperationTransfer].Equal(decimal.NewFromInt(25)))
	assert.True(t, report.TotalsByPoint["Punkt 1"].Equal(decimal.NewFromInt(150)))
	assert.True(t, report.TotalsByPoint["Punkt 2"].Equal(decimal.NewFromInt(25)))
	assert.True(t, report.GrandTotal.Equal(decimal.NewFromInt(175)))
}

func TestExportTransactionReportXLSX(t *testing.T) {
	service := NewReportService(newFakeBackend())
	start, end := reportRange()
	report := &models.TransactionReport{
		StartDate: start,
		EndDate:   end,
		Lines: []models.TransactionReportLine{
			{
				TransactionID: "TX-1",
				Timestamp:     start,
				OperationType: models.OperationSale,
				FullName:      "Kurtka zimowa",
				Barcode:       "1001",
				ProcessType:   models.ProcessTypeSold,
				SellingPoint:  "Punkt 1",
				Value:         decimal.NewFromInt(100),
			},
		},
		GrandTotal: decimal.NewFromInt(100),
	}

	f, err := service.ExportTransactionReportXLSX(report)
	require.NoError(t, err)

	header, err := f.GetCellValue("Sheet1", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Transaction", header)

	txCell, err := f.GetCellValue("Sheet1", "A2")
	require.NoError(t, err)
	assert.Equal(t, "TX-1", txCell)

	totalLabel, err := f.GetCellValue("Sheet1", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Total", totalLabel)
}
