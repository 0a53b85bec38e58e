package bundles

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
)

// CreateInput carries an admin bundle creation request.
type CreateInput struct {
	Name        string
	Description string
	Credits     int
	Price       int64
}

// BundleView is a catalogue entry with the effective per-credit rate.
type BundleView struct {
	models.LeadBundle
	PerCreditPrice decimal.Decimal `json:"per_credit_price"`
}

// Service exposes bundle administration and the vendor-facing catalogue.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.LeadBundle, error)
	List(ctx context.Context) ([]BundleView, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.LeadBundle, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService wires a bundle service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bundle repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.LeadBundle, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle name is required")
	}
	if input.Credits <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle credits must be positive")
	}
	if input.Price <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bundle price must be positive")
	}

	bundle := &models.LeadBundle{
		Name:        strings.TrimSpace(input.Name),
		Description: strings.TrimSpace(input.Description),
		Credits:     input.Credits,
		Price:       input.Price,
		IsActive:    true,
	}
	if err := s.repo.Create(ctx, bundle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating bundle")
	}
	return bundle, nil
}

func (s *service) List(ctx context.Context) ([]BundleView, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing bundles")
	}
	views := make([]BundleView, 0, len(rows))
	for _, bundle := range rows {
		views = append(views, BundleView{
			LeadBundle:     bundle,
			PerCreditPrice: perCreditPrice(bundle),
		})
	}
	return views, nil
}

func perCreditPrice(bundle models.LeadBundle) decimal.Decimal {
	if bundle.Credits <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(bundle.Price).
		DivRound(decimal.NewFromInt(int64(bundle.Credits)), 2)
}

func (s *service) GetActive(ctx context.Context, id uuid.UUID) (*models.LeadBundle, error) {
	return s.repo.GetActive(ctx, id)
}

func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "bundle not found")
	}
	return nil
}
