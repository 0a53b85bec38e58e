package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
	"github.com/utsavhq/utsav-backend/pkg/pagination"
)

// Repository manages vendor balances and the wallet ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	ListVendorsWithLegacyCredits(ctx context.Context) ([]models.Vendor, error)

	// DebitWallet applies a conditional decrement and reports whether the
	// vendor had sufficient balance. The balance never goes negative.
	DebitWallet(ctx context.Context, vendorID uuid.UUID, amount int64) (bool, error)
	CreditWallet(ctx context.Context, vendorID uuid.UUID, amount int64) error

	DeductCredits(ctx context.Context, vendorID uuid.UUID, credits int) (bool, error)
	AddCredits(ctx context.Context, vendorID uuid.UUID, credits int) error

	// ExchangeWalletForCredits debits the wallet and grants bundle credits in
	// one statement so no interleaving can observe half the trade.
	ExchangeWalletForCredits(ctx context.Context, vendorID uuid.UUID, price int64, credits int) (bool, error)

	// FoldLegacyCredits adds the normalized amount to lead_credits and clears
	// the legacy column. Returns false when the vendor had no legacy balance.
	FoldLegacyCredits(ctx context.Context, vendorID uuid.UUID, flatCredits int) (bool, error)

	CreateTransaction(ctx context.Context, txn *models.Transaction) error
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	GetTransactionByOrderID(ctx context.Context, orderID string) (*models.Transaction, error)
	ListTransactions(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Transaction, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	var vendor models.Vendor
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&vendor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *repository) ListVendorsWithLegacyCredits(ctx context.Context) ([]models.Vendor, error) {
	var vendors []models.Vendor
	err := r.db.WithContext(ctx).
		Where("legacy_lead_credits IS NOT NULL").
		Order("created_at ASC").
		Find(&vendors).Error
	return vendors, err
}

func (r *repository) DebitWallet(ctx context.Context, vendorID uuid.UUID, amount int64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ? AND wallet_balance >= ?", vendorID, amount).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance - ?", amount))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreditWallet(ctx context.Context, vendorID uuid.UUID, amount int64) error {
	res := r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("wallet_balance", gorm.Expr("wallet_balance + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeductCredits(ctx context.Context, vendorID uuid.UUID, credits int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ? AND lead_credits >= ?", vendorID, credits).
		UpdateColumn("lead_credits", gorm.Expr("lead_credits - ?", credits))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) AddCredits(ctx context.Context, vendorID uuid.UUID, credits int) error {
	res := r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ?", vendorID).
		UpdateColumn("lead_credits", gorm.Expr("lead_credits + ?", credits))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ExchangeWalletForCredits(ctx context.Context, vendorID uuid.UUID, price int64, credits int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ? AND wallet_balance >= ?", vendorID, price).
		UpdateColumns(map[string]any{
			"wallet_balance": gorm.Expr("wallet_balance - ?", price),
			"lead_credits":   gorm.Expr("lead_credits + ?", credits),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) FoldLegacyCredits(ctx context.Context, vendorID uuid.UUID, flatCredits int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Vendor{}).
		Where("id = ? AND legacy_lead_credits IS NOT NULL", vendorID).
		UpdateColumns(map[string]any{
			"lead_credits":        gorm.Expr("lead_credits + ?", flatCredits),
			"legacy_lead_credits": nil,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Transaction{}).Error
}

func (r *repository) GetTransactionByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	var txn models.Transaction
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &txn, nil
}

func (r *repository) ListTransactions(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Transaction, int64, error) {
	var total int64
	query := r.db.WithContext(ctx).Model(&models.Transaction{}).Where("vendor_id = ?", vendorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.Transaction
	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(pagination.NormalizeLimit(params.Limit)).
		Find(&rows).Error
	return rows, total, err
}
