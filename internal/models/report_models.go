package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BalanceReportRow summarizes one selling point: what is currently on hand
// and what the ledger says moved in or out during the reported range.
type BalanceReportRow struct {
	SellingPoint     string          `json:"sellingPoint"`
	Symbol           string          `json:"symbol"`
	OnHandCount      int             `json:"onHandCount"`
	OnHandValue      decimal.Decimal `json:"onHandValue"`
	SoldCount        int             `json:"soldCount"`
	SoldValue        decimal.Decimal `json:"soldValue"`
	TransferredIn    int             `json:"transferredIn"`
	TransferredOut   int             `json:"transferredOut"`
	CorrectionsCount int             `json:"correctionsCount"`
}

// BalanceReport is the full balance sheet over a date range.
type BalanceReport struct {
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Rows      []BalanceReportRow `json:"rows"`
	Warehouse BalanceReportRow   `json:"warehouse"`
}

// TransactionReportLine is one ledger line flattened for reporting.
type TransactionReportLine struct {
	TransactionID string          `json:"transactionId"`
	Timestamp     time.Time       `json:"timestamp"`
	OperationType string          `json:"operationType"`
	FullName      string          `json:"fullName"`
	Size          string          `json:"size"`
	Barcode       string          `json:"barcode"`
	ProcessType   string          `json:"processType"`
	SellingPoint  string          `json:"sellingPoint"`
	Value         decimal.Decimal `json:"value"`
}

// TransactionReport groups ledger lines with per-type and per-point totals.
type TransactionReport struct {
	StartDate     time.Time                  `json:"startDate"`
	EndDate       time.Time                  `json:"endDate"`
	Lines         []TransactionReportLine    `json:"lines"`
	TotalsByType  map[string]decimal.Decimal `json:"totalsByType"`
	TotalsByPoint map[string]decimal.Decimal `json:"totalsByPoint"`
	GrandTotal    decimal.Decimal            `json:"grandTotal"`
}
