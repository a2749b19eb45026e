package models

import "time"

// WarehouseSymbol is the reserved symbol for central stock that has not been
// assigned to any selling point yet.
const WarehouseSymbol = "MAGAZYN"

// InventoryItem represents one physical unit of stock located at one symbol.
// Moves between symbols are always delete-at-source + create-at-destination;
// the row id is never stable across a move.
type InventoryItem struct {
	ID            int64     `json:"id" db:"id"`
	FullName      string    `json:"fullName" db:"full_name" binding:"required"`
	Size          string    `json:"size" db:"size"`
	Barcode       string    `json:"barcode" db:"barcode" binding:"required"`
	Price         float64   `json:"price" db:"price"`
	DiscountPrice *float64  `json:"discount_price,omitempty" db:"discount_price"`
	Symbol        string    `json:"symbol" db:"symbol" binding:"required"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// RestoreItemRequest is the payload of POST /api/state/restore-silent.
// "Silent" means the insert has no sales-side effects; it only recreates
// a unit at a symbol and records an audit row.
type RestoreItemRequest struct {
	FullName      string   `json:"fullName" binding:"required"`
	Size          string   `json:"size"`
	Barcode       string   `json:"barcode" binding:"required"`
	Symbol        string   `json:"symbol" binding:"required"`
	Price         float64  `json:"price"`
	DiscountPrice *float64 `json:"discount_price,omitempty"`
	OperationType string   `json:"operationType"`
}

// NewNullString is a helper for optional string fields that should be NULL
// in the database when not provided.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
