package supplies

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/odyssey-erp/productmanage/internal/inventory"
	"github.com/odyssey-erp/productmanage/internal/platform/validation"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Service coordinates supply intake and status changes.
type Service struct {
	repo      RepositoryPort
	validator *validation.Validator
	logger    *slog.Logger
	observer  Observer
}

// NewService constructs Service. logger and observer may be nil.
func NewService(repo RepositoryPort, logger *slog.Logger, observer Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: validation.New(), logger: logger, observer: observer}
}

type itemList struct {
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// CreateSupply persists the header and its items and receives every item into
// stock, all in one transaction. Nothing is written when any step fails.
func (s *Service) CreateSupply(ctx context.Context, header Header, items []ItemInput) (int64, error) {
	header.InvoiceNumber = strings.TrimSpace(header.InvoiceNumber)
	if header.Status == "" {
		header.Status = StatusPending
	}
	if err := s.validate(header, items); err != nil {
		return 0, err
	}
	total := Total(items)

	var supplyID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertSupply(ctx, header, total)
		if err != nil {
			return err
		}
		if err := tx.InsertItems(ctx, id, items); err != nil {
			return err
		}
		for _, adj := range receipts(items) {
			if _, err := inventory.Adjust(ctx, tx, adj.ProductID, adj.Delta); err != nil {
				return err
			}
		}
		supplyID = id
		return nil
	})
	if err != nil {
		if !shared.IsDomain(err) {
			s.logger.Error("create supply", slog.String("invoice", header.InvoiceNumber), slog.Any("error", err))
		}
		return 0, shared.Infra("supplies: create supply", err)
	}

	if s.observer != nil {
		s.observer.SupplyCreated()
	}
	s.logger.Info("supply created",
		slog.Int64("supply_id", supplyID),
		slog.String("invoice", header.InvoiceNumber),
		slog.Int("items", len(items)),
		slog.String("total", total.StringFixed(2)))
	return supplyID, nil
}

// RequestTransition moves the supply to newStatus if the lifecycle allows it.
func (s *Service) RequestTransition(ctx context.Context, supplyID int64, newStatus string) error {
	if supplyID <= 0 {
		return shared.NewValidationError("id", "invalid supply ID")
	}
	newStatus = strings.ToLower(strings.TrimSpace(newStatus))
	var from string
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetStatusForUpdate(ctx, supplyID)
		if err != nil {
			return err
		}
		from = current
		if err := CheckTransition(current, newStatus); err != nil {
			return err
		}
		return tx.UpdateStatus(ctx, supplyID, newStatus)
	})
	if errors.Is(err, ErrSupplyNotFound) {
		return &shared.NotFoundError{Entity: "supply", ID: supplyID}
	}
	if err != nil {
		return shared.Infra("supplies: request transition", err)
	}
	s.logger.Info("supply status changed",
		slog.Int64("supply_id", supplyID), slog.String("from", from), slog.String("to", newStatus))
	return nil
}

// Get returns a supply with its items.
func (s *Service) Get(ctx context.Context, id int64) (Supply, error) {
	if id <= 0 {
		return Supply{}, shared.NewValidationError("id", "invalid supply ID")
	}
	supply, err := s.repo.Get(ctx, id)
	return supply, shared.Infra("supplies: get", err)
}

// List returns supplies matching filter, newest delivery first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Supply, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, shared.NewValidationError("status", "must be one of: pending delivered cancelled")
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, shared.NewValidationError("from", "must not be after to")
	}
	items, err := s.repo.List(ctx, filter)
	return items, shared.Infra("supplies: list", err)
}

// Delete removes a supply and its items. Received stock is not reverted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid supply ID")
	}
	return shared.Infra("supplies: delete", s.repo.Delete(ctx, id))
}

// InvoiceExists reports whether invoice is already taken.
func (s *Service) InvoiceExists(ctx context.Context, invoice string) (bool, error) {
	invoice = strings.TrimSpace(invoice)
	if invoice == "" {
		return false, shared.NewValidationError("invoice_number", "is required")
	}
	exists, err := s.repo.InvoiceExists(ctx, invoice)
	return exists, shared.Infra("supplies: invoice exists", err)
}

func (s *Service) validate(header Header, items []ItemInput) error {
	fields := map[string]string{}
	for _, err := range []error{s.validator.Struct(header), s.validator.Struct(itemList{Items: items})} {
		if err == nil {
			continue
		}
		var verr *shared.ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}
	if len(fields) > 0 {
		return &shared.ValidationError{Fields: fields}
	}
	return nil
}

// receipts folds items into one stock adjustment per product, ordered by product
// id so concurrent supplies lock product rows in the same order.
func receipts(items []ItemInput) []inventory.Adjustment {
	totals := make(map[int64]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}
	out := make([]inventory.Adjustment, 0, len(totals))
	for id, qty := range totals {
		out = append(out, inventory.Adjustment{ProductID: id, Delta: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out
}
