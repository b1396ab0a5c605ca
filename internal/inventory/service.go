package inventory

import (
	"context"
	"errors"
	"log/slog"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Service is the stock ledger. Product quantity never goes below zero.
type Service struct {
	repo     RepositoryPort
	logger   *slog.Logger
	observer Observer
}

// NewService constructs the ledger. logger and observer may be nil.
func NewService(repo RepositoryPort, logger *slog.Logger, observer Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger, observer: observer}
}

// AdjustQuantity applies delta to the product in its own transaction and returns
// the new quantity.
func (s *Service) AdjustQuantity(ctx context.Context, productID int64, delta int) (int, error) {
	if productID <= 0 {
		return 0, shared.NewValidationError("product_id", "must be a positive integer")
	}
	var quantity int
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		q, err := Adjust(ctx, tx, productID, delta)
		if err != nil {
			return err
		}
		quantity = q
		return nil
	})
	s.observe(err)
	if err != nil {
		if !shared.IsDomain(err) {
			s.logger.Error("adjust quantity", slog.Int64("product_id", productID), slog.Int("delta", delta), slog.Any("error", err))
		}
		return 0, shared.Infra("inventory: adjust quantity", err)
	}
	s.logger.Debug("stock adjusted", slog.Int64("product_id", productID), slog.Int("delta", delta), slog.Int("quantity", quantity))
	return quantity, nil
}

// Adjust applies delta inside an already open unit of work. The product row is
// locked before the check so concurrent writers to the same product serialize,
// and nothing is written when the result would be negative.
func Adjust(ctx context.Context, tx TxRepository, productID int64, delta int) (int, error) {
	current, err := tx.GetQuantityForUpdate(ctx, productID)
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return 0, &shared.NotFoundError{Entity: "product", ID: productID}
		}
		return 0, err
	}
	next := current + delta
	if next < 0 {
		return 0, &shared.InsufficientStockError{ProductID: productID, Available: current, Delta: delta}
	}
	if delta == 0 {
		return current, nil
	}
	if err := tx.SetQuantity(ctx, productID, next); err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return 0, &shared.NotFoundError{Entity: "product", ID: productID}
		}
		return 0, err
	}
	return next, nil
}

func (s *Service) observe(err error) {
	if s.observer == nil {
		return
	}
	switch {
	case err == nil:
		s.observer.StockAdjusted(OutcomeApplied)
	case errors.Is(err, shared.ErrInsufficientStock):
		s.observer.StockAdjusted(OutcomeInsufficient)
	case errors.Is(err, shared.ErrNotFound):
		s.observer.StockAdjusted(OutcomeNotFound)
	default:
		s.observer.StockAdjusted(OutcomeError)
	}
}
