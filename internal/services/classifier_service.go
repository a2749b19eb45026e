package services

import "magazyn_backend/internal/models"

// ItemCategory tags a selected unit with the operation it will undergo.
type ItemCategory string

const (
	// CategorySold: a sale matched against on-hand stock at the point it was
	// sold from. The unit is consumed; nothing is recreated.
	CategorySold ItemCategory = "sold"
	// CategorySynchronized: a warehouse unit matched to a sale.
	CategorySynchronized ItemCategory = "synchronized"
	// CategoryTransferred: a warehouse unit pulled manually for transfer to a
	// target point, with no corresponding sale.
	CategoryTransferred ItemCategory = "transferred"
)

// Candidate is one unit of operator intent, normalized across the three
// selection categories. ExpectedSymbol is where the unit must currently be
// for the commit to be valid.
type Candidate struct {
	Category       ItemCategory
	SaleID         int64
	ItemID         int64
	FullName       string
	Size           string
	Barcode        string
	Price          float64
	DiscountPrice  *float64
	ExpectedSymbol string
}

// ClassificationResult partitions candidates into the valid set (backed by the
// snapshot) and the missing set (stale or already consumed). The two sets are
// disjoint and together cover every candidate.
type ClassificationResult struct {
	Valid   []Candidate
	Missing []Candidate
}

// Classify checks every selected unit against an authoritative inventory
// snapshot. Sold candidates must be present at the sale's source point;
// synchronized and transferred candidates must still be in the warehouse.
// Matching is by (barcode, symbol) with multiset semantics: two candidates
// with the same barcode need two snapshot rows. Pure function; callers are
// expected to fetch the snapshot immediately beforehand.
func Classify(selection models.SelectionState, snapshot []models.InventoryItem) ClassificationResult {
	available := make(map[string]int, len(snapshot))
	for _, item := range snapshot {
		available[item.Barcode+"\x00"+item.Symbol]++
	}

	var result ClassificationResult
	take := func(c Candidate) {
		key := c.Barcode + "\x00" + c.ExpectedSymbol
		if available[key] > 0 {
			available[key]--
			result.Valid = append(result.Valid, c)
		} else {
			result.Missing = append(result.Missing, c)
		}
	}

	for _, sale := range selection.Sold {
		take(Candidate{
			Category:       CategorySold,
			SaleID:         sale.ID,
			FullName:       sale.FullName,
			Size:           sale.Size,
			Barcode:        sale.Barcode,
			Price:          sale.Price,
			ExpectedSymbol: sale.From,
		})
	}
	for _, item := range selection.Synchronized {
		take(candidateFromItem(CategorySynchronized, item))
	}
	for _, item := range selection.Transferred {
		take(candidateFromItem(CategoryTransferred, item))
	}
	return result
}

func candidateFromItem(category ItemCategory, item models.InventoryItem) Candidate {
	return Candidate{
		Category:       category,
		ItemID:         item.ID,
		FullName:       item.FullName,
		Size:           item.Size,
		Barcode:        item.Barcode,
		Price:          item.Price,
		DiscountPrice:  item.DiscountPrice,
		ExpectedSymbol: models.WarehouseSymbol,
	}
}
