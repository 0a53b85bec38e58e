package packages

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
)

// Repository manages listing packages referenced by inquiries.
type Repository interface {
	Create(ctx context.Context, pkg *models.ListingPackage) error
	Get(ctx context.Context, id uuid.UUID) (*models.ListingPackage, error)
	ListActive(ctx context.Context) ([]models.ListingPackage, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a package repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, pkg *models.ListingPackage) error {
	return r.db.WithContext(ctx).Create(pkg).Error
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*models.ListingPackage, error) {
	var pkg models.ListingPackage
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pkg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.ListingPackage, error) {
	var rows []models.ListingPackage
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("inquiry_count DESC").
		Find(&rows).Error
	return rows, err
}
