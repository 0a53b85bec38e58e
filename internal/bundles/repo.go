package bundles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
)

// Repository manages purchasable credit bundles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, bundle *models.LeadBundle) error
	GetActive(ctx context.Context, id uuid.UUID) (*models.LeadBundle, error)
	ListActive(ctx context.Context) ([]models.LeadBundle, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bundle repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, bundle *models.LeadBundle) error {
	return r.db.WithContext(ctx).Create(bundle).Error
}

func (r *repository) GetActive(ctx context.Context, id uuid.UUID) (*models.LeadBundle, error) {
	var bundle models.LeadBundle
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&bundle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bundle, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.LeadBundle, error) {
	var rows []models.LeadBundle
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("price ASC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&models.LeadBundle{}).
		Where("id = ?", id).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
