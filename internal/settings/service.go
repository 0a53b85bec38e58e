package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/utsavhq/utsav-backend/internal/pricing"
	"github.com/utsavhq/utsav-backend/pkg/db/models"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
)

// LeadCostsKey is the system setting row holding the pricing tier
// configuration.
const LeadCostsKey = "lead_costs"

// Service exposes typed access to system settings.
type Service interface {
	TierConfig(ctx context.Context) (pricing.TierConfig, error)
	LeadCosts(ctx context.Context) (pricing.CreditCosts, error)
	UpdateLeadCosts(ctx context.Context, cfg pricing.TierConfig) error
}

type service struct {
	repo Repository
}

// NewService wires a settings service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	return &service{repo: repo}, nil
}

// TierConfig returns the stored pricing tier configuration, or nil when no
// row exists or the payload is malformed. Callers treat nil as "use the
// hardcoded defaults".
func (s *service) TierConfig(ctx context.Context) (pricing.TierConfig, error) {
	setting, err := s.repo.Get(ctx, LeadCostsKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading tier configuration")
	}
	if setting == nil {
		return nil, nil
	}
	return pricing.ParseTierConfig(setting.Value), nil
}

// LeadCosts returns the configured credit costs, falling back to the defaults
// when the row is missing or malformed.
func (s *service) LeadCosts(ctx context.Context) (pricing.CreditCosts, error) {
	cfg, err := s.TierConfig(ctx)
	if err != nil {
		return pricing.CreditCosts{}, err
	}
	if cfg == nil {
		return pricing.DefaultCreditCosts, nil
	}
	return cfg.CreditCosts(), nil
}

func (s *service) UpdateLeadCosts(ctx context.Context, cfg pricing.TierConfig) error {
	if err := cfg.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tier configuration")
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding tier configuration")
	}
	setting := &models.SystemSetting{
		Key:   LeadCostsKey,
		Value: raw,
	}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "saving tier configuration")
	}
	return nil
}
