package inventory

// Adjustment moves the stock of one product by Delta units.
type Adjustment struct {
	ProductID int64 `json:"product_id"`
	Delta     int   `json:"delta"`
}

// StockLevel is the result of a successful adjustment.
type StockLevel struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Adjustment outcomes reported to the Observer.
const (
	OutcomeApplied      = "applied"
	OutcomeInsufficient = "insufficient"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Observer receives adjustment outcomes, typically for metrics.
type Observer interface {
	StockAdjusted(outcome string)
}
