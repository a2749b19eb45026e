package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"magazyn_backend/internal/models"
)

// InventoryRepository defines the database operations on the state table.
type InventoryRepository interface {
	CreateItem(executor SQLExecutor, item *models.InventoryItem) (int64, error)
	GetItems(symbol string) ([]models.InventoryItem, error)
	GetItemByID(id int64) (*models.InventoryItem, error)
	DeleteItemByID(executor SQLExecutor, id int64) (*models.InventoryItem, error)
	DeleteByBarcodeAndSymbol(executor SQLExecutor, barcode, symbol string, count int) (int, error)
}

type inventoryRepository struct {
	db *sql.DB
}

// NewInventoryRepository creates a new instance of InventoryRepository.
func NewInventoryRepository(db *sql.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) CreateItem(executor SQLExecutor, item *models.InventoryItem) (int64, error) {
	query := `INSERT INTO state (full_name, size, barcode, price, discount_price, symbol, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`
	currentTime := time.Now()

	var discountPrice sql.NullFloat64
	if item.DiscountPrice != nil {
		discountPrice = sql.NullFloat64{Float64: *item.DiscountPrice, Valid: true}
	}

	err := executor.QueryRow(query,
		item.FullName, item.Size, item.Barcode, item.Price, discountPrice, item.Symbol,
		currentTime, currentTime,
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return 0, fmt.Errorf("%w: creating inventory item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *inventoryRepository) GetItems(symbol string) ([]models.InventoryItem, error) {
	items := []models.InventoryItem{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, full_name, size, barcode, price, discount_price, symbol, created_at, updated_at FROM state`)

	var args []interface{}
	if symbol != "" {
		queryBuilder.WriteString(" WHERE symbol = $1")
		args = append(args, symbol)
	}
	queryBuilder.WriteString(" ORDER BY full_name, size, id")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting inventory items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating inventory items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func (r *inventoryRepository) GetItemByID(id int64) (*models.InventoryItem, error) {
	row := r.db.QueryRow(
		`SELECT id, full_name, size, barcode, price, discount_price, symbol, created_at, updated_at
		 FROM state WHERE id = $1`, id)
	item, err := scanInventoryItem(row)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteItemByID removes a single unit and returns the row as it was before
// deletion, so callers can write an audit entry with the item details.
func (r *inventoryRepository) DeleteItemByID(executor SQLExecutor, id int64) (*models.InventoryItem, error) {
	row := executor.QueryRow(
		`DELETE FROM state WHERE id = $1
		 RETURNING id, full_name, size, barcode, price, discount_price, symbol, created_at, updated_at`, id)
	item, err := scanInventoryItem(row)
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteByBarcodeAndSymbol removes up to count units matching (barcode, symbol)
// and returns how many were actually deleted. Zero matches is ErrNotFound.
func (r *inventoryRepository) DeleteByBarcodeAndSymbol(executor SQLExecutor, barcode, symbol string, count int) (int, error) {
	if count <= 0 {
		count = 1
	}
	result, err := executor.Exec(
		`DELETE FROM state WHERE id IN (
		    SELECT id FROM state WHERE barcode = $1 AND symbol = $2 ORDER BY id LIMIT $3
		 )`, barcode, symbol, count)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting by barcode and symbol: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: reading rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}
	return int(affected), nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanInventoryItem(row rowScanner) (*models.InventoryItem, error) {
	var item models.InventoryItem
	var discountPrice sql.NullFloat64
	err := row.Scan(&item.ID, &item.FullName, &item.Size, &item.Barcode, &item.Price,
		&discountPrice, &item.Symbol, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning inventory item: %v", ErrDatabaseError, err)
	}
	if discountPrice.Valid {
		item.DiscountPrice = &discountPrice.Float64
	}
	return &item, nil
}
