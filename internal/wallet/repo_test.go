package wallet

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
	dbtypes "github.com/utsavhq/utsav-backend/pkg/db/types"
	"github.com/utsavhq/utsav-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:wallet_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Vendor{}, &models.Transaction{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVendor(t *testing.T, db *gorm.DB, wallet int64, credits int) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		ID:            uuid.New(),
		Name:          "Test Vendor",
		Email:         uuid.NewString() + "@example.com",
		PasswordHash:  "x",
		Role:          enums.ActorRoleVendor,
		WalletBalance: wallet,
		LeadCredits:   credits,
		IsActive:      true,
	}
	if err := db.Create(vendor).Error; err != nil {
		t.Fatalf("seed vendor: %v", err)
	}
	return vendor
}

func TestDebitWalletConditional(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	vendor := seedVendor(t, db, 100, 0)

	applied, err := repo.DebitWallet(ctx, vendor.ID, 60)
	if err != nil {
		t.Fatalf("debit: %v", err)
	}
	if !applied {
		t.Fatal("expected debit to apply")
	}

	applied, err = repo.DebitWallet(ctx, vendor.ID, 60)
	if err != nil {
		t.Fatalf("second debit: %v", err)
	}
	if applied {
		t.Fatal("expected second debit to be rejected")
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor: %v", err)
	}
	if reloaded.WalletBalance != 40 {
		t.Fatalf("expected balance 40, got %d", reloaded.WalletBalance)
	}
}

func TestDeductCreditsNeverGoesNegative(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	vendor := seedVendor(t, db, 0, 10)

	if applied, err := repo.DeductCredits(ctx, vendor.ID, 25); err != nil {
		t.Fatalf("deduct: %v", err)
	} else if applied {
		t.Fatal("expected deduction beyond balance to be rejected")
	}

	if applied, err := repo.DeductCredits(ctx, vendor.ID, 10); err != nil || !applied {
		t.Fatalf("expected exact deduction to apply, applied=%v err=%v", applied, err)
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor: %v", err)
	}
	if reloaded.LeadCredits != 0 {
		t.Fatalf("expected 0 credits, got %d", reloaded.LeadCredits)
	}
}

func TestExchangeWalletForCredits(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	vendor := seedVendor(t, db, 500, 2)

	applied, err := repo.ExchangeWalletForCredits(ctx, vendor.ID, 400, 20)
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if !applied {
		t.Fatal("expected exchange to apply")
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor: %v", err)
	}
	if reloaded.WalletBalance != 100 || reloaded.LeadCredits != 22 {
		t.Fatalf("unexpected balances: wallet=%d credits=%d", reloaded.WalletBalance, reloaded.LeadCredits)
	}

	if applied, err := repo.ExchangeWalletForCredits(ctx, vendor.ID, 400, 20); err != nil {
		t.Fatalf("second exchange: %v", err)
	} else if applied {
		t.Fatal("expected underfunded exchange to be rejected")
	}
}

func TestFoldLegacyCreditsIsIdempotent(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	vendor := seedVendor(t, db, 0, 5)
	legacy := &dbtypes.LegacyCreditBalance{Standard: 2, Premium: 1}
	if err := db.Model(&models.Vendor{}).Where("id = ?", vendor.ID).Update("legacy_lead_credits", legacy).Error; err != nil {
		t.Fatalf("seed legacy: %v", err)
	}

	applied, err := repo.FoldLegacyCredits(ctx, vendor.ID, 45)
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	if !applied {
		t.Fatal("expected fold to apply")
	}

	applied, err = repo.FoldLegacyCredits(ctx, vendor.ID, 45)
	if err != nil {
		t.Fatalf("second fold: %v", err)
	}
	if applied {
		t.Fatal("expected second fold to be a no-op")
	}

	var reloaded models.Vendor
	if err := db.First(&reloaded, "id = ?", vendor.ID).Error; err != nil {
		t.Fatalf("reload vendor: %v", err)
	}
	if reloaded.LeadCredits != 50 {
		t.Fatalf("expected 50 credits after one fold, got %d", reloaded.LeadCredits)
	}
	if reloaded.LegacyLeadCredits != nil {
		t.Fatalf("expected legacy column cleared, got %+v", reloaded.LegacyLeadCredits)
	}
}

func TestTransactionLifecycle(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	vendor := seedVendor(t, db, 100, 0)

	txn := &models.Transaction{
		ID:       uuid.New(),
		VendorID: vendor.ID,
		Type:     enums.TransactionTypeDebit,
		Status:   enums.TransactionStatusSuccess,
		Gateway:  enums.PaymentGatewayInternal,
		Currency: "INR",
		Amount:   50,
		OrderID:  "order-1",
	}
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		t.Fatalf("create transaction: %v", err)
	}

	found, err := repo.GetTransactionByOrderID(ctx, "order-1")
	if err != nil {
		t.Fatalf("get by order id: %v", err)
	}
	if found == nil || found.ID != txn.ID {
		t.Fatalf("expected to find transaction, got %+v", found)
	}

	if err := repo.DeleteTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	found, err = repo.GetTransactionByOrderID(ctx, "order-1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if found != nil {
		t.Fatal("expected transaction to be deleted")
	}
}
