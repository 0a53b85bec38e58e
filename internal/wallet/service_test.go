package wallet

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/config"
	"github.com/utsavhq/utsav-backend/pkg/db/models"
	dbtypes "github.com/utsavhq/utsav-backend/pkg/db/types"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/outbox"
	"github.com/utsavhq/utsav-backend/pkg/pagination"
	"github.com/utsavhq/utsav-backend/pkg/square"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubOutbox struct {
	events []outbox.DomainEvent
}

func (s *stubOutbox) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubBundles struct {
	bundle *models.LeadBundle
}

func (s *stubBundles) GetActive(ctx context.Context, id uuid.UUID) (*models.LeadBundle, error) {
	if s.bundle != nil && s.bundle.ID == id {
		return s.bundle, nil
	}
	return nil, nil
}

type stubPayments struct {
	calls    int
	lastArgs square.PaymentCreateParams
}

func (s *stubPayments) CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error) {
	s.calls++
	s.lastArgs = params
	id := "pay_" + uuid.NewString()
	return &sq.Payment{ID: &id}, nil
}

func (s *stubPayments) LocationID() string { return "loc-1" }

type stubWalletRepo struct {
	vendor       *models.Vendor
	transactions map[string]*models.Transaction
	deleted      []uuid.UUID
}

func newStubWalletRepo(vendor *models.Vendor) *stubWalletRepo {
	return &stubWalletRepo{
		vendor:       vendor,
		transactions: map[string]*models.Transaction{},
	}
}

func (s *stubWalletRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubWalletRepo) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	if s.vendor != nil && s.vendor.ID == id {
		copied := *s.vendor
		return &copied, nil
	}
	return nil, nil
}

func (s *stubWalletRepo) ListVendorsWithLegacyCredits(ctx context.Context) ([]models.Vendor, error) {
	if s.vendor != nil && s.vendor.LegacyLeadCredits != nil {
		return []models.Vendor{*s.vendor}, nil
	}
	return nil, nil
}

func (s *stubWalletRepo) DebitWallet(ctx context.Context, vendorID uuid.UUID, amount int64) (bool, error) {
	if s.vendor == nil || s.vendor.WalletBalance < amount {
		return false, nil
	}
	s.vendor.WalletBalance -= amount
	return true, nil
}

func (s *stubWalletRepo) CreditWallet(ctx context.Context, vendorID uuid.UUID, amount int64) error {
	s.vendor.WalletBalance += amount
	return nil
}

func (s *stubWalletRepo) DeductCredits(ctx context.Context, vendorID uuid.UUID, credits int) (bool, error) {
	if s.vendor == nil || s.vendor.LeadCredits < credits {
		return false, nil
	}
	s.vendor.LeadCredits -= credits
	return true, nil
}

func (s *stubWalletRepo) AddCredits(ctx context.Context, vendorID uuid.UUID, credits int) error {
	s.vendor.LeadCredits += credits
	return nil
}

func (s *stubWalletRepo) ExchangeWalletForCredits(ctx context.Context, vendorID uuid.UUID, price int64, credits int) (bool, error) {
	if s.vendor == nil || s.vendor.WalletBalance < price {
		return false, nil
	}
	s.vendor.WalletBalance -= price
	s.vendor.LeadCredits += credits
	return true, nil
}

func (s *stubWalletRepo) FoldLegacyCredits(ctx context.Context, vendorID uuid.UUID, flatCredits int) (bool, error) {
	if s.vendor == nil || s.vendor.LegacyLeadCredits == nil {
		return false, nil
	}
	s.vendor.LeadCredits += flatCredits
	s.vendor.LegacyLeadCredits = nil
	return true, nil
}

func (s *stubWalletRepo) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	s.transactions[txn.OrderID] = txn
	return nil
}

func (s *stubWalletRepo) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	for orderID, txn := range s.transactions {
		if txn.ID == id {
			delete(s.transactions, orderID)
		}
	}
	return nil
}

func (s *stubWalletRepo) GetTransactionByOrderID(ctx context.Context, orderID string) (*models.Transaction, error) {
	return s.transactions[orderID], nil
}

func (s *stubWalletRepo) ListTransactions(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Transaction, int64, error) {
	rows := make([]models.Transaction, 0, len(s.transactions))
	for _, txn := range s.transactions {
		rows = append(rows, *txn)
	}
	return rows, int64(len(rows)), nil
}

func testPricing() config.PricingConfig {
	return config.PricingConfig{
		LegacyStandardWeight: 10,
		LegacyPremiumWeight:  25,
		LegacyEliteWeight:    50,
		DefaultCreditCost:    10,
		DefaultLeadPrice:     50,
		Currency:             "INR",
	}
}

func newTestService(t *testing.T, repo Repository, bundles BundleSource, payments PaymentGateway) (Service, *stubOutbox) {
	t.Helper()
	events := &stubOutbox{}
	svc, err := NewService(stubTxRunner{}, repo, bundles, payments, events, nil, testPricing(), nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, events
}

func TestPurchaseBundleInsufficientFunds(t *testing.T) {
	vendor := &models.Vendor{ID: uuid.New(), WalletBalance: 100}
	bundle := &models.LeadBundle{ID: uuid.New(), Name: "Starter", Credits: 20, Price: 400, IsActive: true}
	repo := newStubWalletRepo(vendor)
	svc, _ := newTestService(t, repo, &stubBundles{bundle: bundle}, nil)

	_, err := svc.PurchaseBundle(context.Background(), vendor.ID, bundle.ID)
	if !pkgerrors.IsCode(err, pkgerrors.CodeInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !strings.Contains(err.Error(), "costs 400") || !strings.Contains(err.Error(), "have 100") {
		t.Fatalf("unexpected message: %v", err)
	}
	if vendor.WalletBalance != 100 || vendor.LeadCredits != 0 {
		t.Fatalf("balances should be untouched: %+v", vendor)
	}
}

func TestPurchaseBundleSuccess(t *testing.T) {
	vendor := &models.Vendor{ID: uuid.New(), WalletBalance: 500, LeadCredits: 2}
	bundle := &models.LeadBundle{ID: uuid.New(), Name: "Growth", Credits: 25, Price: 400, IsActive: true}
	repo := newStubWalletRepo(vendor)
	svc, events := newTestService(t, repo, &stubBundles{bundle: bundle}, nil)

	result, err := svc.PurchaseBundle(context.Background(), vendor.ID, bundle.ID)
	if err != nil {
		t.Fatalf("purchase bundle: %v", err)
	}
	if result.CreditsAdded != 25 {
		t.Fatalf("expected 25 credits added, got %d", result.CreditsAdded)
	}
	if vendor.WalletBalance != 100 || vendor.LeadCredits != 27 {
		t.Fatalf("unexpected balances: %+v", vendor)
	}
	if len(repo.transactions) != 1 {
		t.Fatalf("expected ledger row, got %d", len(repo.transactions))
	}
	if len(events.events) != 1 {
		t.Fatalf("expected bundle event, got %d", len(events.events))
	}
}

func TestMigrateLegacyCredits(t *testing.T) {
	vendor := &models.Vendor{
		ID:                uuid.New(),
		LeadCredits:       3,
		LegacyLeadCredits: &dbtypes.LegacyCreditBalance{Standard: 2, Premium: 1, Elite: 0},
	}
	repo := newStubWalletRepo(vendor)
	svc, events := newTestService(t, repo, nil, nil)

	granted, err := svc.MigrateLegacyCredits(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if granted != 45 {
		t.Fatalf("expected 45 credits granted (2*10 + 1*25), got %d", granted)
	}
	if vendor.LeadCredits != 48 {
		t.Fatalf("expected credits 48, got %d", vendor.LeadCredits)
	}
	if vendor.LegacyLeadCredits != nil {
		t.Fatal("expected legacy balance cleared")
	}
	if len(events.events) != 1 {
		t.Fatalf("expected migration event, got %d", len(events.events))
	}

	granted, err = svc.MigrateLegacyCredits(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("second migrate: %v", err)
	}
	if granted != 0 {
		t.Fatalf("expected repeat migration to grant nothing, got %d", granted)
	}
	if vendor.LeadCredits != 48 {
		t.Fatalf("credits changed on repeat migration: %d", vendor.LeadCredits)
	}
}

func TestTopUpIdempotentOrderID(t *testing.T) {
	vendor := &models.Vendor{ID: uuid.New(), WalletBalance: 100}
	repo := newStubWalletRepo(vendor)
	payments := &stubPayments{}
	svc, _ := newTestService(t, repo, nil, payments)

	first, err := svc.TopUp(context.Background(), TopUpInput{
		VendorID: vendor.ID,
		Amount:   500,
		SourceID: "cnon:ok",
		OrderID:  "order-42",
	})
	if err != nil {
		t.Fatalf("top up: %v", err)
	}
	if vendor.WalletBalance != 600 {
		t.Fatalf("expected balance 600, got %d", vendor.WalletBalance)
	}

	second, err := svc.TopUp(context.Background(), TopUpInput{
		VendorID: vendor.ID,
		Amount:   500,
		SourceID: "cnon:ok",
		OrderID:  "order-42",
	})
	if err != nil {
		t.Fatalf("repeat top up: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("expected repeat top up to return the original transaction")
	}
	if payments.calls != 1 {
		t.Fatalf("expected one charge, got %d", payments.calls)
	}
	if vendor.WalletBalance != 600 {
		t.Fatalf("balance changed on repeat: %d", vendor.WalletBalance)
	}
}

func TestTopUpValidation(t *testing.T) {
	vendor := &models.Vendor{ID: uuid.New()}
	repo := newStubWalletRepo(vendor)
	svc, _ := newTestService(t, repo, nil, &stubPayments{})

	_, err := svc.TopUp(context.Background(), TopUpInput{VendorID: vendor.ID, Amount: 0, SourceID: "cnon:ok"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = svc.TopUp(context.Background(), TopUpInput{VendorID: vendor.ID, Amount: 100})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for missing source, got %v", err)
	}
}
