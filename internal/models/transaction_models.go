package models

import "time"

// Operation types recorded on transactions. The Polish wire values are part
// of the ledger contract and must not be translated.
const (
	OperationSale       = "sprzedaz"
	OperationTransfer   = "przepisanie"
	OperationCorrection = "korekta"
)

// Process types recorded per transaction line. The process type fully
// determines the restore target when a transaction is undone.
const (
	ProcessTypeSold         = "sold"
	ProcessTypeSynchronized = "synchronized"
	ProcessTypeTransferred  = "transferred"
	ProcessTypeCorrected    = "corrected"
)

// ProcessedItem is one line of a committed transaction.
// OriginalSymbol is where the unit lived before the commit, i.e. where an
// undo has to put it back.
type ProcessedItem struct {
	ID             int64    `json:"id,omitempty" db:"id"`
	FullName       string   `json:"fullName" db:"full_name"`
	Size           string   `json:"size" db:"size"`
	Barcode        string   `json:"barcode" db:"barcode"`
	Price          float64  `json:"price" db:"price"`
	DiscountPrice  *float64 `json:"discount_price,omitempty" db:"discount_price"`
	ProcessType    string   `json:"processType" db:"process_type"`
	OriginalID     int64    `json:"originalId,omitempty" db:"original_id"`
	OriginalSymbol string   `json:"originalSymbol" db:"original_symbol"`
	SellingPoint   string   `json:"sellingPoint" db:"selling_point"`
}

// Transaction is the unit of commit and undo, persisted in the ledger.
type Transaction struct {
	ID                    int64           `json:"-" db:"id"`
	TransactionID         string          `json:"transactionId" db:"transaction_id" binding:"required"`
	Timestamp             time.Time       `json:"timestamp" db:"occurred_at"`
	OperationType         string          `json:"operationType" db:"operation_type" binding:"required"`
	SelectedSellingPoint  string          `json:"selectedSellingPoint" db:"selected_selling_point"`
	TargetSellingPoint    string          `json:"targetSellingPoint" db:"target_selling_point"`
	ProcessedItems        []ProcessedItem `json:"processedItems" db:"-"`
	ItemsCount            int             `json:"itemsCount" db:"items_count"`
	IsCorrection          bool            `json:"isCorrection,omitempty" db:"is_correction"`
	OriginalTransactionID string          `json:"originalTransactionId,omitempty" db:"original_transaction_id"`
	HasCorrections        bool            `json:"hasCorrections,omitempty" db:"has_corrections"`
	LastModified          *time.Time      `json:"lastModified,omitempty" db:"last_modified"`
}

// TransactionFilters narrows ledger queries.
type TransactionFilters struct {
	OperationType string
	SellingPoint  string
	StartDate     *time.Time
	EndDate       *time.Time
}

// SelectionState carries the operator's pre-commit intent: sales matched
// against on-hand stock (blue), warehouse items matched to a sale (green)
// and warehouse items pulled manually for transfer (orange). The three
// slices are disjoint by construction; one inventory item can only be
// submitted under a single category.
type SelectionState struct {
	Sold         []SalesRecord   `json:"sold"`
	Synchronized []InventoryItem `json:"synchronized"`
	Transferred  []InventoryItem `json:"transferred"`
}

// IsEmpty reports whether nothing has been selected at all.
func (s SelectionState) IsEmpty() bool {
	return len(s.Sold) == 0 && len(s.Synchronized) == 0 && len(s.Transferred) == 0
}
