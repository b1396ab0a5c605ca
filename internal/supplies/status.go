package supplies

import (
	"github.com/odyssey-erp/productmanage/internal/shared"
)

var transitions = map[string][]string{
	StatusPending:   {StatusDelivered, StatusCancelled},
	StatusDelivered: {},
	StatusCancelled: {},
}

// ValidStatus reports whether status is one of the known supply statuses.
func ValidStatus(status string) bool {
	_, ok := transitions[status]
	return ok
}

// CheckTransition decides whether a supply may move from one status to another.
// Delivered and cancelled supplies are final.
func CheckTransition(from, to string) error {
	if !ValidStatus(to) {
		return shared.NewValidationError("status", "must be one of: pending delivered cancelled")
	}
	if from == to {
		return shared.ErrNoChange
	}
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &shared.InvalidTransitionError{From: from, To: to}
}
