package packages

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
)

// CreateInput carries an admin package creation request.
type CreateInput struct {
	Name         string
	Category     string
	Description  string
	Price        int64
	DurationDays int
	Features     []string
}

// Service exposes listing package administration and browsing.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.ListingPackage, error)
	Get(ctx context.Context, id uuid.UUID) (*models.ListingPackage, error)
	List(ctx context.Context) ([]models.ListingPackage, error)
}

type service struct {
	repo Repository
}

// NewService wires a package service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("package repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.ListingPackage, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package name is required")
	}
	if input.Price < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "package price cannot be negative")
	}

	pkg := &models.ListingPackage{
		Name:        strings.TrimSpace(input.Name),
		Category:    strings.TrimSpace(input.Category),
		Description: strings.TrimSpace(input.Description),
		Price:       input.Price,
		Features:    pq.StringArray(input.Features),
		IsActive:    true,
	}
	if pkg.Category == "" {
		pkg.Category = "General Inquiry"
	}
	if input.DurationDays > 0 {
		pkg.DurationDays = input.DurationDays
	}
	if err := s.repo.Create(ctx, pkg); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating package")
	}
	return pkg, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.ListingPackage, error) {
	return s.repo.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]models.ListingPackage, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing packages")
	}
	return rows, nil
}
