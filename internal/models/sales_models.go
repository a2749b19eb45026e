package models

import "time"

// SalesRecord is an immutable fact produced by the point-of-sale feed:
// this barcode/size was sold at a selling point at a moment in time.
// The backend only stores and serves these; reconciliation against on-hand
// stock happens in the services layer.
type SalesRecord struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	Size         string    `json:"size" db:"size"`
	Barcode      string    `json:"barcode" db:"barcode" binding:"required"`
	Price        float64   `json:"price" db:"price"`
	From         string    `json:"from" db:"from_symbol" binding:"required"`
	SellingPoint string    `json:"sellingPoint" db:"selling_point"`
	Timestamp    time.Time `json:"timestamp" db:"sold_at"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// SalesFilters narrows sales queries for the filter-by-date-and-point endpoint.
type SalesFilters struct {
	Date         *time.Time
	SellingPoint string
}
