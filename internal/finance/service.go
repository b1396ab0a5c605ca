package finance

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/odyssey-erp/productmanage/internal/platform/cache"
	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/platform/validation"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

const reportBuildTimeout = 30 * time.Second

// Service records financial operations and builds reports over them.
type Service struct {
	repo      Repository
	cache     *cache.Versioned
	group     singleflight.Group
	validator *validation.Validator
	logger    *slog.Logger
	observer  Observer
}

// NewService wires the repository with an optional report cache. A nil cache
// builds every report from storage.
func NewService(repo Repository, reportCache *cache.Versioned, logger *slog.Logger, observer Observer) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:      repo,
		cache:     reportCache,
		validator: validation.New(),
		logger:    logger,
		observer:  observer,
	}
}

// BuildReport aggregates the operations dated within [start, end]. Concurrent
// calls for the same range share one build.
func (s *Service) BuildReport(ctx context.Context, start, end time.Time) (Report, error) {
	start, end = Day(start), Day(end)
	if start.IsZero() || end.IsZero() {
		return Report{}, shared.NewValidationError("start_date", "start and end dates are required")
	}
	if start.After(end) {
		return Report{}, shared.NewValidationError("start_date", "must not be after end_date")
	}

	rangeKey := start.Format(httpx.DateLayout) + ":" + end.Format(httpx.DateLayout)
	resultChan := s.group.DoChan(rangeKey, func() (any, error) {
		// The build is shared, so it must outlive the caller that started it.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), reportBuildTimeout)
		defer cancel()
		return s.loadReport(buildCtx, start, end)
	})
	select {
	case <-ctx.Done():
		return Report{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Report{}, shared.Infra("finance: build report", res.Err)
		}
		return res.Val.(Report), nil
	}
}

func (s *Service) loadReport(ctx context.Context, start, end time.Time) (Report, error) {
	var (
		built   *Report
		loadErr error
	)
	build := func(ctx context.Context) (any, error) {
		ops, err := s.repo.ListRange(ctx, start, end)
		if err != nil {
			loadErr = err
			return nil, err
		}
		report := Aggregate(start, end, ops)
		built = &report
		return report, nil
	}

	var report Report
	hit, err := s.fetchCached(ctx, start, end, &report, build)
	switch {
	case err == nil:
		s.observe(hit)
		return report, nil
	case loadErr != nil:
		return Report{}, loadErr
	}

	s.logger.Warn("report cache unavailable", slog.Any("error", err))
	if built == nil {
		if _, err := build(ctx); err != nil {
			return Report{}, err
		}
	}
	s.observe(false)
	return *built, nil
}

func (s *Service) fetchCached(ctx context.Context, start, end time.Time, dest *Report, build func(context.Context) (any, error)) (bool, error) {
	key, err := s.cache.BuildKey(ctx, "report", start.Format(httpx.DateLayout), end.Format(httpx.DateLayout))
	if err != nil {
		return false, err
	}
	return s.cache.FetchJSON(ctx, key, dest, build)
}

func (s *Service) observe(hit bool) {
	if s.observer != nil {
		s.observer.ReportBuilt(hit)
	}
}

// ListOperations returns the raw operations dated within [start, end].
func (s *Service) ListOperations(ctx context.Context, start, end time.Time) ([]Operation, error) {
	if Day(start).After(Day(end)) {
		return nil, shared.NewValidationError("start_date", "must not be after end_date")
	}
	ops, err := s.repo.ListRange(ctx, start, end)
	return ops, shared.Infra("finance: list operations", err)
}

// Get returns one operation.
func (s *Service) Get(ctx context.Context, id int64) (Operation, error) {
	if id <= 0 {
		return Operation{}, shared.NewValidationError("id", "invalid operation ID")
	}
	op, err := s.repo.Get(ctx, id)
	return op, shared.Infra("finance: get operation", err)
}

// Record stores a new operation and invalidates cached reports.
func (s *Service) Record(ctx context.Context, form OperationForm) (Operation, error) {
	form = normalize(form)
	if err := s.validator.Struct(form); err != nil {
		return Operation{}, err
	}
	op, err := s.repo.Create(ctx, form)
	if err != nil {
		return Operation{}, shared.Infra("finance: record operation", err)
	}
	s.invalidate(ctx)
	return op, nil
}

// Update replaces an operation and invalidates cached reports.
func (s *Service) Update(ctx context.Context, id int64, form OperationForm) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid operation ID")
	}
	form = normalize(form)
	if err := s.validator.Struct(form); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, id, form); err != nil {
		return shared.Infra("finance: update operation", err)
	}
	s.invalidate(ctx)
	return nil
}

// Delete removes an operation and invalidates cached reports.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid operation ID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return shared.Infra("finance: delete operation", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("report cache bump failed", slog.Any("error", err))
	}
}

func normalize(form OperationForm) OperationForm {
	form.Type = strings.ToLower(strings.TrimSpace(form.Type))
	form.Description = strings.TrimSpace(form.Description)
	form.Amount = form.Amount.Round(2)
	if !form.Date.IsZero() {
		form.Date = Day(form.Date)
	}
	return form
}
