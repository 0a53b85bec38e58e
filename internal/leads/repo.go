package leads

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
	"github.com/utsavhq/utsav-backend/pkg/pagination"
)

// MarketplaceFilters narrows the marketplace listing. City is a
// case-insensitive partial match; BusinessCategory is exact.
type MarketplaceFilters struct {
	City             string
	BusinessCategory string
}

// PurchasedLead pairs a lead with the purchase row that unlocked it.
type PurchasedLead struct {
	Lead     models.Lead         `json:"lead"`
	Purchase models.LeadPurchase `json:"purchase"`
}

// Repository manages leads, purchase records, and the referenced packages.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateLead(ctx context.Context, lead *models.Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)

	// ListMarketplace returns leads the vendor has not purchased yet.
	ListMarketplace(ctx context.Context, vendorID uuid.UUID, filters MarketplaceFilters, params pagination.Params) ([]models.Lead, int64, error)
	// ListPurchased returns the vendor's unlocked leads, newest purchase first.
	ListPurchased(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]PurchasedLead, int64, error)

	HasPurchased(ctx context.Context, leadID, vendorID uuid.UUID) (bool, error)
	CreatePurchase(ctx context.Context, purchase *models.LeadPurchase) error

	GetPackage(ctx context.Context, id uuid.UUID) (*models.ListingPackage, error)
	IncrementPackageInquiries(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a lead repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateLead(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Create(lead).Error
}

func (r *repository) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lead).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func (r *repository) ListMarketplace(ctx context.Context, vendorID uuid.UUID, filters MarketplaceFilters, params pagination.Params) ([]models.Lead, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Lead{}).
		Where("NOT EXISTS (SELECT 1 FROM lead_purchases WHERE lead_purchases.lead_id = leads.id AND lead_purchases.vendor_id = ?)", vendorID)

	if city := strings.TrimSpace(filters.City); city != "" {
		query = query.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if category := strings.TrimSpace(filters.BusinessCategory); category != "" {
		query = query.Where("business_category = ?", category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Lead
	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Find(&rows).Error
	return rows, total, err
}

func (r *repository) ListPurchased(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]PurchasedLead, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.LeadPurchase{}).Where("vendor_id = ?", vendorID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []models.LeadPurchase
	err := base.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	if len(purchases) == 0 {
		return nil, total, nil
	}

	ids := make([]uuid.UUID, 0, len(purchases))
	for _, purchase := range purchases {
		ids = append(ids, purchase.LeadID)
	}
	var rows []models.Lead
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]models.Lead, len(rows))
	for _, lead := range rows {
		byID[lead.ID] = lead
	}

	result := make([]PurchasedLead, 0, len(purchases))
	for _, purchase := range purchases {
		lead, ok := byID[purchase.LeadID]
		if !ok {
			continue
		}
		result = append(result, PurchasedLead{Lead: lead, Purchase: purchase})
	}
	return result, total, nil
}

func (r *repository) HasPurchased(ctx context.Context, leadID, vendorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.LeadPurchase{}).
		Where("lead_id = ? AND vendor_id = ?", leadID, vendorID).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) CreatePurchase(ctx context.Context, purchase *models.LeadPurchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *repository) GetPackage(ctx context.Context, id uuid.UUID) (*models.ListingPackage, error) {
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

func (r *repository) IncrementPackageInquiries(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.ListingPackage{}).
		Where("id = ?", id).
		UpdateColumn("inquiry_count", gorm.Expr("inquiry_count + 1")).Error
}
