package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"magazyn_backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ReportService builds human-readable views over the ledger and the current
// inventory. It only reads; commit and undo never depend on reports.
type ReportService struct {
	backend Backend
}

// NewReportService creates a new instance of ReportService.
func NewReportService(backend Backend) *ReportService {
	return &ReportService{backend: backend}
}

// BalanceReport summarizes on-hand stock per selling point plus what the
// ledger recorded in the given range. Monetary sums use decimals; the
// discount price wins over the regular price when set.
func (s *ReportService) BalanceReport(ctx context.Context, startDate, endDate time.Time) (*models.BalanceReport, error) {
	users, err := s.backend.FetchUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching selling point directory: %w", err)
	}
	state, err := s.backend.FetchState(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching inventory snapshot: %w", err)
	}
	transactions, err := s.backend.GetTransactions(ctx, models.TransactionFilters{
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching ledger entries: %w", err)
	}

	report := &models.BalanceReport{StartDate: startDate, EndDate: endDate}
	report.Warehouse = models.BalanceReportRow{
		SellingPoint: "Magazyn",
		Symbol:       models.WarehouseSymbol,
		OnHandValue:  decimal.Zero,
		SoldValue:    decimal.Zero,
	}

	rowsBySymbol := map[string]*models.BalanceReportRow{
		models.WarehouseSymbol: &report.Warehouse,
	}
	rowsByPoint := map[string]*models.BalanceReportRow{}
	for _, u := range users {
		if _, ok := rowsBySymbol[u.Symbol]; ok {
			continue
		}
		row := &models.BalanceReportRow{
			SellingPoint: u.SellingPoint,
			Symbol:       u.Symbol,
			OnHandValue:  decimal.Zero,
			SoldValue:    decimal.Zero,
		}
		rowsBySymbol[u.Symbol] = row
		rowsByPoint[u.SellingPoint] = row
	}

	for _, item := range state {
		row, ok := rowsBySymbol[item.Symbol]
		if !ok {
			row = &models.BalanceReportRow{
				SellingPoint: item.Symbol,
				Symbol:       item.Symbol,
				OnHandValue:  decimal.Zero,
				SoldValue:    decimal.Zero,
			}
			rowsBySymbol[item.Symbol] = row
			rowsByPoint[item.Symbol] = row
		}
		row.OnHandCount++
		row.OnHandValue = row.OnHandValue.Add(itemValue(item.Price, item.DiscountPrice))
	}

	rowFor := func(point string) *models.BalanceReportRow {
		if row, ok := rowsByPoint[point]; ok {
			return row
		}
		if row, ok := rowsBySymbol[point]; ok {
			return row
		}
		row := &models.BalanceReportRow{SellingPoint: point, Symbol: point, OnHandValue: decimal.Zero, SoldValue: decimal.Zero}
		rowsByPoint[point] = row
		return row
	}

	for _, tx := range transactions {
		for _, item := range tx.ProcessedItems {
			switch item.ProcessType {
			case models.ProcessTypeSold:
				row := rowFor(item.SellingPoint)
				row.SoldCount++
				row.SoldValue = row.SoldValue.Add(itemValue(item.Price, item.DiscountPrice))
			case models.ProcessTypeSynchronized, models.ProcessTypeTransferred:
				rowFor(item.SellingPoint).TransferredIn++
				report.Warehouse.TransferredOut++
			case models.ProcessTypeCorrected:
				rowFor(item.SellingPoint).CorrectionsCount++
			}
		}
	}

	for _, row := range rowsByPoint {
		report.Rows = append(report.Rows, *row)
	}
	sort.Slice(report.Rows, func(i, j int) bool {
		return report.Rows[i].SellingPoint < report.Rows[j].SellingPoint
	})
	return report, nil
}

// TransactionReport flattens ledger entries in the range to line items with
// per-type and per-point subtotals.
func (s *ReportService) TransactionReport(ctx context.Context, startDate, endDate time.Time) (*models.TransactionReport, error) {
	transactions, err := s.backend.GetTransactions(ctx, models.TransactionFilters{
		StartDate: &startDate,
		EndDate:   &endDate,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching ledger entries: %w", err)
	}

	report := &models.TransactionReport{
		StartDate:     startDate,
		EndDate:       endDate,
		TotalsByType:  map[string]decimal.Decimal{},
		TotalsByPoint: map[string]decimal.Decimal{},
		GrandTotal:    decimal.Zero,
	}

	for _, tx := range transactions {
		for _, item := range tx.ProcessedItems {
			value := itemValue(item.Price, item.DiscountPrice)
			report.Lines = append(report.Lines, models.TransactionReportLine{
				TransactionID: tx.TransactionID,
				Timestamp:     tx.Timestamp,
				OperationType: tx.OperationType,
				FullName:      item.FullName,
				Size:          item.Size,
				Barcode:       item.Barcode,
				ProcessType:   item.ProcessType,
				SellingPoint:  item.SellingPoint,
				Value:         value,
			})
			report.TotalsByType[tx.OperationType] = totalOrZero(report.TotalsByType, tx.OperationType).Add(value)
			report.TotalsByPoint[item.SellingPoint] = totalOrZero(report.TotalsByPoint, item.SellingPoint).Add(value)
			report.GrandTotal = report.GrandTotal.Add(value)
		}
	}
	return report, nil
}

// ExportTransactionReportXLSX renders the transaction report as a spreadsheet.
func (s *ReportService) ExportTransactionReportXLSX(report *models.TransactionReport) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Sheet1"

	headers := []string{"Transaction", "Date", "Operation", "Item", "Size", "Barcode", "Process", "Selling point", "Value"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for rowIdx, line := range report.Lines {
		values := []interface{}{
			line.TransactionID,
			line.Timestamp.Format("2006-01-02 15:04"),
			line.OperationType,
			line.FullName,
			line.Size,
			line.Barcode,
			line.ProcessType,
			line.SellingPoint,
			line.Value.InexactFloat64(),
		}
		for colIdx, v := range values {
			cell, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(report.Lines) + 3
	cell, err := excelize.CoordinatesToCellName(1, totalRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, cell, "Total"); err != nil {
		return nil, err
	}
	cell, err = excelize.CoordinatesToCellName(9, totalRow)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, cell, report.GrandTotal.InexactFloat64()); err != nil {
		return nil, err
	}

	return f, nil
}

func itemValue(price float64, discountPrice *float64) decimal.Decimal {
	if discountPrice != nil {
		return decimal.NewFromFloat(*discountPrice)
	}
	return decimal.NewFromFloat(price)
}

func totalOrZero(m map[string]decimal.Decimal, key string) decimal.Decimal {
	if v, ok := m[key]; ok {
		return v
	}
	return decimal.Zero
}
