package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"magazyn_backend/internal/models"
)

// TransactionRepository defines the ledger database operations. The ledger is
// the authoritative record of commits and corrections; undo relies on it.
type TransactionRepository interface {
	CreateTransaction(executor SQLExecutor, tx *models.Transaction) error
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, error)
	GetTransactionByID(transactionID string) (*models.Transaction, error)
	UpdateTransaction(executor SQLExecutor, tx *models.Transaction) error
	DeleteTransaction(executor SQLExecutor, transactionID string) error
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) CreateTransaction(executor SQLExecutor, tx *models.Transaction) error {
	query := `INSERT INTO transactions
	          (transaction_id, operation_type, selected_selling_point, target_selling_point,
	           items_count, is_correction, original_transaction_id, has_corrections, occurred_at, last_modified, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          RETURNING id`
	currentTime := time.Now()
	if tx.Timestamp.IsZero() {
		tx.Timestamp = currentTime
	}

	err := executor.QueryRow(query,
		tx.TransactionID, tx.OperationType, tx.SelectedSellingPoint, tx.TargetSellingPoint,
		tx.ItemsCount, tx.IsCorrection, models.NewNullString(tx.OriginalTransactionID),
		tx.HasCorrections, tx.Timestamp, tx.LastModified, currentTime,
	).Scan(&tx.ID)
	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return fmt.Errorf("%w: transaction %s", ErrDuplicateKey, tx.TransactionID)
		}
		return fmt.Errorf("%w: creating transaction: %v", ErrDatabaseError, err)
	}

	return r.insertItems(executor, tx.TransactionID, tx.ProcessedItems)
}

func (r *transactionRepository) insertItems(executor SQLExecutor, transactionID string, items []models.ProcessedItem) error {
	query := `INSERT INTO transaction_items
	          (transaction_id, full_name, size, barcode, price, discount_price, process_type, original_id, original_symbol, selling_point)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i := range items {
		item := &items[i]
		var discountPrice sql.NullFloat64
		if item.DiscountPrice != nil {
			discountPrice = sql.NullFloat64{Float64: *item.DiscountPrice, Valid: true}
		}
		var originalID sql.NullInt64
		if item.OriginalID != 0 {
			originalID = sql.NullInt64{Int64: item.OriginalID, Valid: true}
		}
		if _, err := executor.Exec(query,
			transactionID, item.FullName, item.Size, item.Barcode, item.Price, discountPrice,
			item.ProcessType, originalID, item.OriginalSymbol, item.SellingPoint,
		); err != nil {
			return fmt.Errorf("%w: creating transaction item (barcode %s): %v", ErrDatabaseError, item.Barcode, err)
		}
	}
	return nil
}

func (r *transactionRepository) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, transaction_id, operation_type, selected_selling_point, target_selling_point,
	    items_count, is_correction, original_transaction_id, has_corrections, occurred_at, last_modified
	  FROM transactions`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.OperationType != "" {
		conditions = append(conditions, fmt.Sprintf("operation_type = $%d", argCount))
		args = append(args, filters.OperationType)
		argCount++
	}
	if filters.SellingPoint != "" {
		conditions = append(conditions, fmt.Sprintf("(selected_selling_point = $%d OR target_selling_point = $%d)", argCount, argCount))
		args = append(args, filters.SellingPoint)
		argCount++
	}
	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at >= $%d", argCount))
		args = append(args, *filters.StartDate)
		argCount++
	}
	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("occurred_at <= $%d", argCount))
		args = append(args, *filters.EndDate)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY occurred_at DESC, id DESC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transactions: %v", ErrDatabaseError, err)
	}

	for i := range transactions {
		items, err := r.getItems(transactions[i].TransactionID)
		if err != nil {
			return nil, err
		}
		transactions[i].ProcessedItems = items
	}
	return transactions, nil
}

func (r *transactionRepository) GetTransactionByID(transactionID string) (*models.Transaction, error) {
	row := r.db.QueryRow(
		`SELECT id, transaction_id, operation_type, selected_selling_point, target_selling_point,
		    items_count, is_correction, original_transaction_id, has_corrections, occurred_at, last_modified
		 FROM transactions WHERE transaction_id = $1`, transactionID)
	tx, err := scanTransaction(row)
	if err != nil {
		return nil, err
	}
	items, err := r.getItems(transactionID)
	if err != nil {
		return nil, err
	}
	tx.ProcessedItems = items
	return tx, nil
}

// UpdateTransaction rewrites the header fields and replaces the item list.
// Single-item undo shrinks the list and flags the header in one call.
func (r *transactionRepository) UpdateTransaction(executor SQLExecutor, tx *models.Transaction) error {
	result, err := executor.Exec(
		`UPDATE transactions SET operation_type = $1, selected_selling_point = $2, target_selling_point = $3,
		    items_count = $4, is_correction = $5, original_transaction_id = $6, has_corrections = $7, last_modified = $8
		 WHERE transaction_id = $9`,
		tx.OperationType, tx.SelectedSellingPoint, tx.TargetSellingPoint,
		tx.ItemsCount, tx.IsCorrection, models.NewNullString(tx.OriginalTransactionID),
		tx.HasCorrections, tx.LastModified, tx.TransactionID)
	if err != nil {
		return fmt.Errorf("%w: updating transaction: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: reading rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	if _, err := executor.Exec(`DELETE FROM transaction_items WHERE transaction_id = $1`, tx.TransactionID); err != nil {
		return fmt.Errorf("%w: clearing transaction items: %v", ErrDatabaseError, err)
	}
	return r.insertItems(executor, tx.TransactionID, tx.ProcessedItems)
}

func (r *transactionRepository) DeleteTransaction(executor SQLExecutor, transactionID string) error {
	result, err := executor.Exec(`DELETE FROM transactions WHERE transaction_id = $1`, transactionID)
	if err != nil {
		return fmt.Errorf("%w: deleting transaction: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: reading rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *transactionRepository) getItems(transactionID string) ([]models.ProcessedItem, error) {
	rows, err := r.db.Query(
		`SELECT id, full_name, size, barcode, price, discount_price, process_type, original_id, original_symbol, selling_point
		 FROM transaction_items WHERE transaction_id = $1 ORDER BY id`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("%w: getting transaction items: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	items := []models.ProcessedItem{}
	for rows.Next() {
		var item models.ProcessedItem
		var discountPrice sql.NullFloat64
		var originalID sql.NullInt64
		if err := rows.Scan(&item.ID, &item.FullName, &item.Size, &item.Barcode, &item.Price,
			&discountPrice, &item.ProcessType, &originalID, &item.OriginalSymbol, &item.SellingPoint); err != nil {
			return nil, fmt.Errorf("%w: scanning transaction item: %v", ErrDatabaseError, err)
		}
		if discountPrice.Valid {
			item.DiscountPrice = &discountPrice.Float64
		}
		if originalID.Valid {
			item.OriginalID = originalID.Int64
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transaction items: %v", ErrDatabaseError, err)
	}
	return items, nil
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var selected, target, originalTxID sql.NullString
	var lastModified sql.NullTime
	err := row.Scan(&tx.ID, &tx.TransactionID, &tx.OperationType, &selected, &target,
		&tx.ItemsCount, &tx.IsCorrection, &originalTxID, &tx.HasCorrections, &tx.Timestamp, &lastModified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
	}
	if selected.Valid {
		tx.SelectedSellingPoint = selected.String
	}
	if target.Valid {
		tx.TargetSellingPoint = target.String
	}
	if originalTxID.Valid {
		tx.OriginalTransactionID = originalTxID.String
	}
	if lastModified.Valid {
		tx.LastModified = &lastModified.Time
	}
	return &tx, nil
}
