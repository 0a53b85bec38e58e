package wallet

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/config"
	"github.com/utsavhq/utsav-backend/pkg/db/models"
	dbtypes "github.com/utsavhq/utsav-backend/pkg/db/types"
	"github.com/utsavhq/utsav-backend/pkg/enums"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/logger"
	"github.com/utsavhq/utsav-backend/pkg/metrics"
	"github.com/utsavhq/utsav-backend/pkg/outbox"
	"github.com/utsavhq/utsav-backend/pkg/pagination"
	"github.com/utsavhq/utsav-backend/pkg/square"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PaymentGateway abstracts the card charge used by top-ups.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
	LocationID() string
}

// BundleSource resolves purchasable credit bundles.
type BundleSource interface {
	GetActive(ctx context.Context, id uuid.UUID) (*models.LeadBundle, error)
}

// Service exposes wallet balances, top-ups, bundle purchases, and the legacy
// credit migration.
type Service interface {
	Balance(ctx context.Context, vendorID uuid.UUID) (*Balance, error)
	Transactions(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Transaction, pagination.Page, error)
	TopUp(ctx context.Context, input TopUpInput) (*models.Transaction, error)
	PurchaseBundle(ctx context.Context, vendorID, bundleID uuid.UUID) (*BundlePurchase, error)
	MigrateLegacyCredits(ctx context.Context, vendorID uuid.UUID) (int, error)
	MigrateAllLegacyCredits(ctx context.Context) (*MigrationReport, error)
}

// Balance is the spendable state of a vendor account.
type Balance struct {
	WalletBalance int64                        `json:"wallet_balance"`
	LeadCredits   int                          `json:"lead_credits"`
	PendingLegacy *dbtypes.LegacyCreditBalance `json:"pending_legacy,omitempty"`
	Currency      string                       `json:"currency"`
}

// TopUpInput carries a wallet top-up request.
type TopUpInput struct {
	VendorID uuid.UUID
	Amount   int64
	SourceID string
	OrderID  string
}

// BundlePurchase reports the outcome of a bundle buy.
type BundlePurchase struct {
	Bundle        *models.LeadBundle  `json:"bundle"`
	Transaction   *models.Transaction `json:"transaction"`
	CreditsAdded  int                 `json:"credits_added"`
	WalletBalance int64               `json:"wallet_balance"`
	LeadCredits   int                 `json:"lead_credits"`
}

// MigrationReport summarizes a batch legacy credit migration.
type MigrationReport struct {
	VendorsMigrated int `json:"vendors_migrated"`
	CreditsGranted  int `json:"credits_granted"`
	VendorsFailed   int `json:"vendors_failed"`
}

type service struct {
	tx       txRunner
	repo     Repository
	bundles  BundleSource
	payments PaymentGateway
	events   outboxPublisher
	metrics  *metrics.PurchaseMetrics
	pricing  config.PricingConfig
	logg     *logger.Logger
}

// NewService wires a wallet service with its dependencies. The payment gateway
// may be nil when top-ups are disabled.
func NewService(
	tx txRunner,
	repo Repository,
	bundles BundleSource,
	payments PaymentGateway,
	events outboxPublisher,
	purchaseMetrics *metrics.PurchaseMetrics,
	pricingCfg config.PricingConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		bundles:  bundles,
		payments: payments,
		events:   events,
		metrics:  purchaseMetrics,
		pricing:  pricingCfg,
		logg:     logg,
	}, nil
}

func (s *service) Balance(ctx context.Context, vendorID uuid.UUID) (*Balance, error) {
	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor")
	}
	if vendor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}

	balance := &Balance{
		WalletBalance: vendor.WalletBalance,
		LeadCredits:   vendor.LeadCredits,
		Currency:      s.currency(),
	}
	if vendor.LegacyLeadCredits != nil && !vendor.LegacyLeadCredits.IsZero() {
		balance.PendingLegacy = vendor.LegacyLeadCredits
	}
	return balance, nil
}

func (s *service) Transactions(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]models.Transaction, pagination.Page, error) {
	rows, total, err := s.repo.ListTransactions(ctx, vendorID, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing transactions")
	}
	return rows, pagination.Describe(params, total), nil
}

func (s *service) TopUp(ctx context.Context, input TopUpInput) (*models.Transaction, error) {
	if input.Amount <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "top-up amount must be positive")
	}
	if input.SourceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}
	if s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments are not configured")
	}

	vendor, err := s.repo.GetVendor(ctx, input.VendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor")
	}
	if vendor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}

	orderID := input.OrderID
	if orderID == "" {
		orderID = fmt.Sprintf("topup-%s", uuid.NewString())
	} else {
		existing, err := s.repo.GetTransactionByOrderID(ctx, orderID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking order id")
		}
		if existing != nil {
			return existing, nil
		}
	}

	payment, err := s.payments.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    input.Amount,
		Currency:       s.currency(),
		LocationID:     s.payments.LocationID(),
		SourceID:       input.SourceID,
		IdempotencyKey: orderID,
		ReferenceID:    input.VendorID.String(),
		Note:           "wallet top-up",
	})
	if err != nil {
		return nil, err
	}

	meta, _ := json.Marshal(map[string]string{"payment_id": paymentID(payment)})
	txn := &models.Transaction{
		VendorID:    input.VendorID,
		Type:        enums.TransactionTypeCredit,
		Status:      enums.TransactionStatusSuccess,
		Gateway:     enums.PaymentGatewaySquare,
		Currency:    s.currency(),
		Amount:      input.Amount,
		OrderID:     orderID,
		Description: "wallet top-up",
		Meta:        meta,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		if err := repo.CreditWallet(ctx, input.VendorID, input.Amount); err != nil {
			return err
		}
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventWalletTopUp,
			AggregateType: enums.AggregateTransaction,
			AggregateID:   txn.ID,
			Data: map[string]any{
				"vendor_id": input.VendorID,
				"amount":    input.Amount,
				"order_id":  orderID,
			},
		})
	})
	if err != nil {
		// The charge succeeded but the wallet was not credited. Surface the
		// mismatch for reconciliation instead of retrying the charge.
		if s.logg != nil {
			fields := map[string]any{"vendor_id": input.VendorID.String(), "order_id": orderID}
			s.logg.Error(s.logg.WithFields(ctx, fields), "top-up settled but wallet credit failed", err)
		}
		s.metrics.IncCompensationFailure()
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording top-up")
	}

	s.metrics.IncTopUp()
	return txn, nil
}

func (s *service) PurchaseBundle(ctx context.Context, vendorID, bundleID uuid.UUID) (*BundlePurchase, error) {
	if s.bundles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "bundles are not configured")
	}
	bundle, err := s.bundles.GetActive(ctx, bundleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading bundle")
	}
	if bundle == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "bundle not found")
	}

	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor")
	}
	if vendor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}

	meta, _ := json.Marshal(map[string]string{"bundle_id": bundle.ID.String()})
	txn := &models.Transaction{
		VendorID:    vendorID,
		Type:        enums.TransactionTypeDebit,
		Status:      enums.TransactionStatusSuccess,
		Gateway:     enums.PaymentGatewayInternal,
		Currency:    s.currency(),
		Amount:      bundle.Price,
		OrderID:     fmt.Sprintf("bundle-%s", uuid.NewString()),
		Description: fmt.Sprintf("bundle purchase: %s", bundle.Name),
		Meta:        meta,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := repo.ExchangeWalletForCredits(ctx, vendorID, bundle.Price, bundle.Credits)
		if err != nil {
			return err
		}
		if !applied {
			return pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
				"Insufficient wallet balance. This bundle costs %d. You have %d.",
				bundle.Price, vendor.WalletBalance)
		}
		if err := repo.CreateTransaction(ctx, txn); err != nil {
			return err
		}
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventBundlePurchased,
			AggregateType: enums.AggregateBundle,
			AggregateID:   bundle.ID,
			Data: map[string]any{
				"vendor_id": vendorID,
				"credits":   bundle.Credits,
				"price":     bundle.Price,
			},
		})
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientFunds) {
			s.metrics.IncFailure("insufficient_funds")
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "purchasing bundle")
	}

	return &BundlePurchase{
		Bundle:        bundle,
		Transaction:   txn,
		CreditsAdded:  bundle.Credits,
		WalletBalance: vendor.WalletBalance - bundle.Price,
		LeadCredits:   vendor.LeadCredits + bundle.Credits,
	}, nil
}

// MigrateLegacyCredits folds a vendor's tiered legacy buckets into flat
// credits. Running it twice grants nothing the second time.
func (s *service) MigrateLegacyCredits(ctx context.Context, vendorID uuid.UUID) (int, error) {
	vendor, err := s.repo.GetVendor(ctx, vendorID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor")
	}
	if vendor == nil {
		return 0, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}
	if vendor.LegacyLeadCredits == nil {
		return 0, nil
	}

	flat := vendor.LegacyLeadCredits.Normalize(
		s.legacyWeight(s.pricing.LegacyStandardWeight, 10),
		s.legacyWeight(s.pricing.LegacyPremiumWeight, 25),
		s.legacyWeight(s.pricing.LegacyEliteWeight, 50),
	)

	migrated := 0
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		applied, err := repo.FoldLegacyCredits(ctx, vendorID, flat)
		if err != nil {
			return err
		}
		if !applied {
			// Another caller already folded this vendor.
			return nil
		}
		migrated = flat
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCreditsMigrated,
			AggregateType: enums.AggregateVendor,
			AggregateID:   vendorID,
			Data: map[string]any{
				"credits_granted": flat,
				"legacy":          vendor.LegacyLeadCredits,
			},
		})
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "migrating legacy credits")
	}
	return migrated, nil
}

func (s *service) MigrateAllLegacyCredits(ctx context.Context) (*MigrationReport, error) {
	vendors, err := s.repo.ListVendorsWithLegacyCredits(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing legacy vendors")
	}

	report := &MigrationReport{}
	var errs error
	for _, vendor := range vendors {
		granted, err := s.MigrateLegacyCredits(ctx, vendor.ID)
		if err != nil {
			report.VendorsFailed++
			errs = multierr.Append(errs, fmt.Errorf("vendor %s: %w", vendor.ID, err))
			continue
		}
		if granted > 0 {
			report.VendorsMigrated++
			report.CreditsGranted += granted
		}
	}
	if errs != nil && report.VendorsMigrated == 0 {
		return report, pkgerrors.Wrap(pkgerrors.CodeInternal, errs, "legacy credit migration failed")
	}
	if errs != nil && s.logg != nil {
		s.logg.Error(ctx, "legacy credit migration finished with failures", errs)
	}
	return report, nil
}

func (s *service) emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.events == nil {
		return nil
	}
	event.Version = 1
	return s.events.Emit(ctx, tx, event)
}

func (s *service) currency() string {
	if s.pricing.Currency == "" {
		return "INR"
	}
	return s.pricing.Currency
}

func (s *service) legacyWeight(configured, fallback int) int {
	if configured <= 0 {
		return fallback
	}
	return configured
}

func paymentID(payment *sq.Payment) string {
	if payment == nil {
		return ""
	}
	if id := payment.GetID(); id != nil {
		return *id
	}
	return ""
}
