package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"magazyn_backend/internal/models"
)

// HistoryRepository defines the audit-log database operations. The log is
// best-effort; delete variants report ErrNotFound when nothing matched so
// callers can fall back or ignore.
type HistoryRepository interface {
	CreateEntry(executor SQLExecutor, entry *models.HistoryEntry) (int64, error)
	GetEntries(transactionID, barcode string, limit int) ([]models.HistoryEntry, error)
	DeleteByTransactionID(executor SQLExecutor, transactionID string) (int64, error)
	DeleteByDetails(executor SQLExecutor, filter models.HistoryDetailsFilter) (int64, error)
	DeleteSingleItem(executor SQLExecutor, filter models.HistorySingleItemFilter) (int64, error)
}

type historyRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new instance of HistoryRepository.
func NewHistoryRepository(db *sql.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) CreateEntry(executor SQLExecutor, entry *models.HistoryEntry) (int64, error) {
	query := `INSERT INTO history
	          (transaction_id, operation_type, full_name, size, barcode, symbol, target_symbol, details, occurred_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}

	err := executor.QueryRow(query,
		entry.TransactionID, entry.OperationType, entry.FullName, entry.Size, entry.Barcode,
		entry.Symbol, entry.TargetSymbol, entry.Details, entry.Timestamp,
	).Scan(&entry.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating history entry: %v", ErrDatabaseError, err)
	}
	return entry.ID, nil
}

func (r *historyRepository) GetEntries(transactionID, barcode string, limit int) ([]models.HistoryEntry, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, transaction_id, operation_type, full_name, size, barcode, symbol, target_symbol, details, occurred_at FROM history`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if transactionID != "" {
		conditions = append(conditions, fmt.Sprintf("transaction_id = $%d", argCount))
		args = append(args, transactionID)
		argCount++
	}
	if barcode != "" {
		conditions = append(conditions, fmt.Sprintf("barcode = $%d", argCount))
		args = append(args, barcode)
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE ")
		queryBuilder.WriteString(strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY occurred_at DESC, id DESC")
	if limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, limit)
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: getting history entries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	entries := []models.HistoryEntry{}
	for rows.Next() {
		var entry models.HistoryEntry
		var txID, details sql.NullString
		if err := rows.Scan(&entry.ID, &txID, &entry.OperationType, &entry.FullName, &entry.Size,
			&entry.Barcode, &entry.Symbol, &entry.TargetSymbol, &details, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("%w: scanning history entry: %v", ErrDatabaseError, err)
		}
		if txID.Valid {
			entry.TransactionID = &txID.String
		}
		if details.Valid {
			entry.Details = &details.String
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating history entries: %v", ErrDatabaseError, err)
	}
	return entries, nil
}

func (r *historyRepository) DeleteByTransactionID(executor SQLExecutor, transactionID string) (int64, error) {
	return r.deleteWhere(executor, `DELETE FROM history WHERE transaction_id = $1`, transactionID)
}

func (r *historyRepository) DeleteByDetails(executor SQLExecutor, filter models.HistoryDetailsFilter) (int64, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`DELETE FROM history WHERE barcode = $1`)
	args := []interface{}{filter.Barcode}
	argCount := 2

	if filter.Size != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND size = $%d", argCount))
		args = append(args, filter.Size)
		argCount++
	}
	if filter.Symbol != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (symbol = $%d OR target_symbol = $%d)", argCount, argCount))
		args = append(args, filter.Symbol)
		argCount++
	}
	if filter.TimestampFrom != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND occurred_at >= $%d", argCount))
		args = append(args, *filter.TimestampFrom)
		argCount++
	}
	if filter.TimestampTo != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND occurred_at <= $%d", argCount))
		args = append(args, *filter.TimestampTo)
	}

	return r.deleteWhere(executor, queryBuilder.String(), args...)
}

func (r *historyRepository) DeleteSingleItem(executor SQLExecutor, filter models.HistorySingleItemFilter) (int64, error) {
	// Only the newest matching row is pruned; a transaction may have touched
	// the same barcode more than once.
	query := `DELETE FROM history WHERE id = (
	            SELECT id FROM history
	            WHERE transaction_id = $1 AND barcode = $2 AND ($3 = '' OR size = $3)
	            ORDER BY occurred_at DESC, id DESC LIMIT 1
	          )`
	return r.deleteWhere(executor, query, filter.TransactionID, filter.Barcode, filter.Size)
}

func (r *historyRepository) deleteWhere(executor SQLExecutor, query string, args ...interface{}) (int64, error) {
	result, err := executor.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting history entries: %v", ErrDatabaseError, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: reading rows affected: %v", ErrDatabaseError, err)
	}
	if affected == 0 {
		return 0, ErrNotFound
	}
	return affected, nil
}
