package target

import (
	"context"
	"fmt"
	"strings"

	"github.com/easy-csp/csp/internal/common"
	"github.com/easy-csp/csp/internal/model"
	"github.com/easy-csp/csp/internal/service"
)

// Service wraps saving-target persistence with mutation-input validation.
// Validation failures are refusals (common.ErrValidation) returned before
// any storage call; whether the bound account still exists is only checked
// lazily at resolve time.
type Service struct {
	store service.Storage
}

// NewService creates a saving-target service backed by the given storage.
func NewService(store service.Storage) *Service {
	return &Service{store: store}
}

func validateInput(t model.SavingTarget) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: name must not be empty", common.ErrValidation)
	}
	if !t.TargetAmount.IsPositive() {
		return fmt.Errorf("%w: target amount must be positive, got %s", common.ErrValidation, t.TargetAmount)
	}
	if t.InstitutionID == "" || t.AccountID == "" {
		return fmt.Errorf("%w: a bound account is required", common.ErrValidation)
	}
	return nil
}

// Create validates and persists a new saving target.
func (s *Service) Create(ctx context.Context, t model.SavingTarget) (*model.SavingTarget, error) {
	if err := validateInput(t); err != nil {
		return nil, err
	}
	created, err := s.store.CreateSavingTarget(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to create saving target: %w", err)
	}
	return created, nil
}

// Update validates and persists changes to an existing saving target.
func (s *Service) Update(ctx context.Context, t model.SavingTarget) (*model.SavingTarget, error) {
	if t.ID == "" {
		return nil, fmt.Errorf("%w: id is required", common.ErrValidation)
	}
	if err := validateInput(t); err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateSavingTarget(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("failed to update saving target: %w", err)
	}
	return updated, nil
}

// Delete removes a saving target.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", common.ErrValidation)
	}
	if err := s.store.DeleteSavingTarget(ctx, id); err != nil {
		return fmt.Errorf("failed to delete saving target: %w", err)
	}
	return nil
}

// List returns every saving target resolved against the latest known
// institution snapshot.
func (s *Service) List(ctx context.Context) ([]Resolution, error) {
	targets, err := s.store.GetSavingTargets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get saving targets: %w", err)
	}
	institutions, err := s.store.GetInstitutions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get institutions: %w", err)
	}
	return ResolveAll(targets, institutions), nil
}
