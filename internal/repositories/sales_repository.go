package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"magazyn_backend/internal/models"
)

// SalesRepository defines the database operations on the sales table.
// Sales rows are append-only facts from the point-of-sale feed.
type SalesRepository interface {
	CreateSale(executor SQLExecutor, sale *models.SalesRecord) (int64, error)
	GetSales(filters models.SalesFilters) ([]models.SalesRecord, error)
}

type salesRepository struct {
	db *sql.DB
}

// NewSalesRepository creates a new instance of SalesRepository.
func NewSalesRepository(db *sql.DB) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) CreateSale(executor SQLExecutor, sale *models.SalesRecord) (int64, error) {
	query := `INSERT INTO sales (full_name, size, barcode, price, from_symbol, selling_point, sold_at, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`
	currentTime := time.Now()
	if sale.Timestamp.IsZero() {
		sale.Timestamp = currentTime
	}

	err := executor.QueryRow(query,
		sale.FullName, sale.Size, sale.Barcode, sale.Price, sale.From, sale.SellingPoint,
		sale.Timestamp, currentTime,
	).Scan(&sale.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating sales record: %v", ErrDatabaseError, err)
	}
	return sale.ID, nil
}

func (r *salesRepository) GetSales(filters models.SalesFilters) ([]models.SalesRecord, error) {
	sales := []models.SalesRecord{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, full_name, size, barcode, price, from_symbol, selling_point, sold_at, created_at FROM sales`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Date != nil {
		dayStart := filters.Date.Truncate(24 * time.Hour)
		dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)
		conditions = append(conditions, fmt.Sprintf("sold_at BETWEEN $%d AND $%d", argCount, argCount+1))
		args = append(args, dayStart, dayEnd)
		argCount += 2
	}
	if filters.SellingPoint != "" {
		conditions = append(conditions, fmt.Sprintf("selling_point = $%d", argCount))
		args = append(args, filters.SellingPoint)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY sold_at DESC, id DESC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting sales records: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale models.SalesRecord
		if err := rows.Scan(&sale.ID, &sale.FullName, &sale.Size, &sale.Barcode, &sale.Price,
			&sale.From, &sale.SellingPoint, &sale.Timestamp, &sale.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scanning sales record: %v", ErrDatabaseError, err)
		}
		sales = append(sales, sale)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating sales records: %v", ErrDatabaseError, err)
	}
	return sales, nil
}
