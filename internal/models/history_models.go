package models

import "time"

// HistoryEntry is one row of the free-text audit log. The log is
// non-authoritative: the transaction ledger is the record undo relies on,
// history rows exist for operators reading raw activity.
type HistoryEntry struct {
	ID            int64     `json:"id" db:"id"`
	TransactionID *string   `json:"transactionId,omitempty" db:"transaction_id"`
	OperationType string    `json:"operationType" db:"operation_type"`
	FullName      string    `json:"fullName" db:"full_name"`
	Size          string    `json:"size" db:"size"`
	Barcode       string    `json:"barcode" db:"barcode"`
	Symbol        string    `json:"symbol" db:"symbol"`
	TargetSymbol  string    `json:"targetSymbol" db:"target_symbol"`
	Details       *string   `json:"details,omitempty" db:"details"`
	Timestamp     time.Time `json:"timestamp" db:"occurred_at"`
}

// HistoryDetailsFilter is the payload of POST /api/history/delete-by-details,
// the fallback cleanup path when delete-by-transaction finds nothing.
type HistoryDetailsFilter struct {
	Barcode       string     `json:"barcode" binding:"required"`
	Size          string     `json:"size"`
	Symbol        string     `json:"symbol"`
	TimestampFrom *time.Time `json:"timestampFrom,omitempty"`
	TimestampTo   *time.Time `json:"timestampTo,omitempty"`
}

// HistorySingleItemFilter is the payload of POST /api/history/delete-single-item.
type HistorySingleItemFilter struct {
	TransactionID string `json:"transactionId" binding:"required"`
	Barcode       string `json:"barcode" binding:"required"`
	Size          string `json:"size"`
}
