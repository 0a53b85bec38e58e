package leads

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/internal/pricing"
	"github.com/utsavhq/utsav-backend/internal/wallet"
	"github.com/utsavhq/utsav-backend/pkg/config"
	dbpkg "github.com/utsavhq/utsav-backend/pkg/db"
	"github.com/utsavhq/utsav-backend/pkg/db/models"
	"github.com/utsavhq/utsav-backend/pkg/enums"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/logger"
	"github.com/utsavhq/utsav-backend/pkg/metrics"
	"github.com/utsavhq/utsav-backend/pkg/outbox"
	"github.com/utsavhq/utsav-backend/pkg/pagination"
)

// DefaultBusinessCategory is used when an inquiry references no package or the
// package cannot be resolved.
const DefaultBusinessCategory = "General Inquiry"

const (
	purchaseUniqueIndex = "idx_lead_purchases_lead_vendor"

	compensationRetries = 4
	compensationBackoff = 50 * time.Millisecond
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CostSource provides the stored pricing tier configuration. Lookup failures
// fall back to the hardcoded defaults and never fail a request.
type CostSource interface {
	TierConfig(ctx context.Context) (pricing.TierConfig, error)
}

// InquiryInput carries a public inquiry submission.
type InquiryInput struct {
	Name       string
	Phone      string
	Email      string
	City       string
	State      string
	EventDate  *time.Time
	GuestCount int
	Budget     int64
	Message    string
	PackageID  *uuid.UUID
	Source     string
	UserAgent  string
}

// MarketplaceLead is a masked listing entry with its resolved credit cost.
type MarketplaceLead struct {
	Lead       models.Lead `json:"lead"`
	CreditCost int         `json:"credit_cost"`
}

// PurchaseResult reports the outcome of a buy-lead call, including the
// buyer's balances after the purchase. AlreadyPurchased is set when the
// vendor had unlocked the lead before this call; no balances were touched in
// that case.
type PurchaseResult struct {
	Lead             *models.Lead         `json:"lead"`
	Purchase         *models.LeadPurchase `json:"purchase,omitempty"`
	Method           enums.PurchaseMethod `json:"method"`
	AmountPaid       int64                `json:"amount_paid"`
	CreditsSpent     int                  `json:"credits_spent"`
	WalletBalance    int64                `json:"wallet_balance"`
	LeadCredits      int                  `json:"lead_credits"`
	AlreadyPurchased bool                 `json:"already_purchased"`
}

// Service exposes inquiry intake, marketplace listing, and lead purchase.
type Service interface {
	CreateInquiry(ctx context.Context, input InquiryInput) (*models.Lead, error)
	Marketplace(ctx context.Context, vendorID uuid.UUID, filters MarketplaceFilters, params pagination.Params) ([]MarketplaceLead, pagination.Page, error)
	MyLeads(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]PurchasedLead, pagination.Page, error)
	BuyLead(ctx context.Context, vendorID, leadID uuid.UUID, useCredits bool) (*PurchaseResult, error)
}

type service struct {
	tx      txRunner
	repo    Repository
	wallets wallet.Repository
	costs   CostSource
	events  outboxPublisher
	metrics *metrics.PurchaseMetrics
	pricing config.PricingConfig
	logg    *logger.Logger
}

// NewService wires a lead service with its dependencies.
func NewService(
	tx txRunner,
	repo Repository,
	wallets wallet.Repository,
	costs CostSource,
	events outboxPublisher,
	purchaseMetrics *metrics.PurchaseMetrics,
	pricingCfg config.PricingConfig,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("lead repository required")
	}
	if wallets == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{
		tx:      tx,
		repo:    repo,
		wallets: wallets,
		costs:   costs,
		events:  events,
		metrics: purchaseMetrics,
		pricing: pricingCfg,
		logg:    logg,
	}, nil
}

func (s *service) CreateInquiry(ctx context.Context, input InquiryInput) (*models.Lead, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Phone) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}

	// The tier configuration is fetched fresh for every inquiry.
	classification := pricing.Classify(input.Budget, input.GuestCount, s.tierConfig(ctx))
	tags := append([]string{}, classification.Tags...)
	if IsIOSDevice(input.UserAgent) {
		tags = append(tags, IOSUserTag)
	}

	source := enums.LeadSourceWebsite
	if parsed, err := enums.ParseLeadSource(input.Source); err == nil {
		source = parsed
	}

	businessCategory := DefaultBusinessCategory
	if input.PackageID != nil {
		// Best effort: a missing or broken package never fails the inquiry.
		pkg, err := s.repo.GetPackage(ctx, *input.PackageID)
		if err != nil && s.logg != nil {
			s.logg.Warn(ctx, "package lookup failed for inquiry")
		}
		if pkg != nil {
			if pkg.Category != "" {
				businessCategory = pkg.Category
			}
			if err := s.repo.IncrementPackageInquiries(ctx, pkg.ID); err != nil && s.logg != nil {
				s.logg.Warn(ctx, "package popularity update failed")
			}
		}
	}

	lead := &models.Lead{
		CustomerName:     strings.TrimSpace(input.Name),
		Phone:            strings.TrimSpace(input.Phone),
		Email:            strings.TrimSpace(input.Email),
		EventDate:        input.EventDate,
		City:             strings.TrimSpace(input.City),
		State:            strings.TrimSpace(input.State),
		GuestCount:       input.GuestCount,
		Budget:           input.Budget,
		Message:          RedactMessage(input.Message),
		PackageID:        input.PackageID,
		BusinessCategory: businessCategory,
		Category:         classification.Category,
		Price:            classification.Price,
		Source:           source,
		DeviceType:       DetectDevice(input.UserAgent),
		Tags:             tags,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateLead(ctx, lead); err != nil {
			return err
		}
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLeadCreated,
			AggregateType: enums.AggregateLead,
			AggregateID:   lead.ID,
			Data: map[string]any{
				"category": lead.Category,
				"price":    lead.Price,
				"city":     lead.City,
				"source":   lead.Source,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating inquiry")
	}
	return lead, nil
}

func (s *service) Marketplace(ctx context.Context, vendorID uuid.UUID, filters MarketplaceFilters, params pagination.Params) ([]MarketplaceLead, pagination.Page, error) {
	rows, total, err := s.repo.ListMarketplace(ctx, vendorID, filters, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing marketplace")
	}

	cfg := s.tierConfig(ctx)
	listed := make([]MarketplaceLead, 0, len(rows))
	for _, lead := range rows {
		lead.Phone = MaskedPhone
		lead.Email = MaskedEmail
		listed = append(listed, MarketplaceLead{
			Lead:       lead,
			CreditCost: pricing.ResolveLeadCost(lead.Category, cfg),
		})
	}
	return listed, pagination.Describe(params, total), nil
}

func (s *service) MyLeads(ctx context.Context, vendorID uuid.UUID, params pagination.Params) ([]PurchasedLead, pagination.Page, error) {
	rows, total, err := s.repo.ListPurchased(ctx, vendorID, params)
	if err != nil {
		return nil, pagination.Page{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing purchased leads")
	}
	return rows, pagination.Describe(params, total), nil
}

func (s *service) BuyLead(ctx context.Context, vendorID, leadID uuid.UUID, useCredits bool) (*PurchaseResult, error) {
	method := enums.PurchaseMethodWallet
	if useCredits {
		method = enums.PurchaseMethodCredit
	}
	start := time.Now()
	defer func() {
		s.metrics.ObserveDuration(string(method), time.Since(start))
	}()

	lead, err := s.repo.GetLead(ctx, leadID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading lead")
	}
	if lead == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "lead not found")
	}

	vendor, err := s.wallets.GetVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading vendor")
	}
	if vendor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
	}

	purchased, err := s.repo.HasPurchased(ctx, leadID, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking purchase state")
	}
	if purchased {
		return &PurchaseResult{
			Lead:             lead,
			Method:           method,
			WalletBalance:    vendor.WalletBalance,
			LeadCredits:      vendor.LeadCredits,
			AlreadyPurchased: true,
		}, nil
	}

	// Legacy tiered credits are folded into the flat balance before any
	// decrement, so the purchase sees one consistent shape.
	if vendor.LegacyLeadCredits != nil {
		flat := vendor.LegacyLeadCredits.Normalize(
			s.legacyWeight(s.pricing.LegacyStandardWeight, 10),
			s.legacyWeight(s.pricing.LegacyPremiumWeight, 25),
			s.legacyWeight(s.pricing.LegacyEliteWeight, 50),
		)
		applied, err := s.wallets.FoldLegacyCredits(ctx, vendorID, flat)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "normalizing legacy credits")
		}
		if applied {
			vendor.LeadCredits += flat
		}
	}

	if useCredits {
		return s.buyWithCredits(ctx, vendor, lead)
	}
	return s.buyWithWallet(ctx, vendor, lead)
}

func (s *service) buyWithCredits(ctx context.Context, vendor *models.Vendor, lead *models.Lead) (*PurchaseResult, error) {
	// Cost is resolved against the tier configuration fetched fresh for
	// this purchase.
	cost := pricing.ResolveLeadCost(lead.Category, s.tierConfig(ctx))

	applied, err := s.wallets.DeductCredits(ctx, vendor.ID, cost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deducting credits")
	}
	if !applied {
		s.metrics.IncFailure("insufficient_credits")
		return nil, pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
			"Insufficient credits. This lead costs %d credits. You have %d.",
			cost, vendor.LeadCredits)
	}

	purchase := &models.LeadPurchase{
		LeadID:       lead.ID,
		VendorID:     vendor.ID,
		Method:       enums.PurchaseMethodCredit,
		CreditsSpent: cost,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreatePurchase(ctx, purchase); err != nil {
			return err
		}
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLeadPurchased,
			AggregateType: enums.AggregateLead,
			AggregateID:   lead.ID,
			Data: map[string]any{
				"vendor_id": vendor.ID,
				"method":    enums.PurchaseMethodCredit,
				"credits":   cost,
			},
		})
	})
	if err != nil {
		// The credits came off but no purchase row landed; give them back.
		duplicate := dbpkg.IsUniqueViolation(err, purchaseUniqueIndex)
		s.runCompensation(ctx, lead.ID, vendor.ID, func(ctx context.Context) error {
			return s.wallets.AddCredits(ctx, vendor.ID, cost)
		})
		if duplicate {
			return &PurchaseResult{
				Lead:             lead,
				Method:           enums.PurchaseMethodCredit,
				WalletBalance:    vendor.WalletBalance,
				LeadCredits:      vendor.LeadCredits,
				AlreadyPurchased: true,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording lead purchase")
	}

	s.metrics.IncPurchase(string(enums.PurchaseMethodCredit))
	walletBalance, leadCredits := s.balances(ctx, vendor.ID, vendor.WalletBalance, vendor.LeadCredits-cost)
	return &PurchaseResult{
		Lead:          lead,
		Purchase:      purchase,
		Method:        enums.PurchaseMethodCredit,
		CreditsSpent:  cost,
		WalletBalance: walletBalance,
		LeadCredits:   leadCredits,
	}, nil
}

func (s *service) buyWithWallet(ctx context.Context, vendor *models.Vendor, lead *models.Lead) (*PurchaseResult, error) {
	price := lead.Price
	if price <= 0 {
		price = int64(s.pricing.DefaultLeadPrice)
	}

	// Cheap rejection before any ledger row exists; the conditional
	// decrement below remains the real guard against races.
	if vendor.WalletBalance < price {
		s.metrics.IncFailure("insufficient_funds")
		return nil, pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
			"Insufficient wallet balance. This lead costs %d. You have %d.",
			price, vendor.WalletBalance)
	}

	txn := &models.Transaction{
		VendorID:    vendor.ID,
		Type:        enums.TransactionTypeDebit,
		Status:      enums.TransactionStatusSuccess,
		Gateway:     enums.PaymentGatewayInternal,
		Currency:    s.currency(),
		Amount:      price,
		OrderID:     fmt.Sprintf("lead-%s", uuid.NewString()),
		Description: fmt.Sprintf("Purchased %s lead %s", lead.Category, lead.ID),
	}
	if err := s.wallets.CreateTransaction(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording transaction")
	}

	applied, err := s.wallets.DebitWallet(ctx, vendor.ID, price)
	if err != nil {
		s.runCompensation(ctx, lead.ID, vendor.ID, func(ctx context.Context) error {
			return s.wallets.DeleteTransaction(ctx, txn.ID)
		})
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "debiting wallet")
	}
	if !applied {
		s.runCompensation(ctx, lead.ID, vendor.ID, func(ctx context.Context) error {
			return s.wallets.DeleteTransaction(ctx, txn.ID)
		})
		s.metrics.IncFailure("insufficient_funds")
		return nil, pkgerrors.Newf(pkgerrors.CodeInsufficientFunds,
			"Insufficient wallet balance. This lead costs %d. You have %d.",
			price, vendor.WalletBalance)
	}

	purchase := &models.LeadPurchase{
		LeadID:        lead.ID,
		VendorID:      vendor.ID,
		Method:        enums.PurchaseMethodWallet,
		AmountPaid:    price,
		TransactionID: &txn.ID,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreatePurchase(ctx, purchase); err != nil {
			return err
		}
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLeadPurchased,
			AggregateType: enums.AggregateLead,
			AggregateID:   lead.ID,
			Data: map[string]any{
				"vendor_id":      vendor.ID,
				"method":         enums.PurchaseMethodWallet,
				"amount":         price,
				"transaction_id": txn.ID,
			},
		})
	})
	if err != nil {
		// Wallet was debited without a purchase row. Reverse the debit and
		// delete the transaction artifact, in that order; both are retried.
		duplicate := dbpkg.IsUniqueViolation(err, purchaseUniqueIndex)
		credited := false
		s.runCompensation(ctx, lead.ID, vendor.ID, func(ctx context.Context) error {
			if !credited {
				if err := s.wallets.CreditWallet(ctx, vendor.ID, price); err != nil {
					return err
				}
				credited = true
			}
			return s.wallets.DeleteTransaction(ctx, txn.ID)
		})
		if duplicate {
			return &PurchaseResult{
				Lead:             lead,
				Method:           enums.PurchaseMethodWallet,
				WalletBalance:    vendor.WalletBalance,
				LeadCredits:      vendor.LeadCredits,
				AlreadyPurchased: true,
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording lead purchase")
	}

	s.metrics.IncPurchase(string(enums.PurchaseMethodWallet))
	walletBalance, leadCredits := s.balances(ctx, vendor.ID, vendor.WalletBalance-price, vendor.LeadCredits)
	return &PurchaseResult{
		Lead:          lead,
		Purchase:      purchase,
		Method:        enums.PurchaseMethodWallet,
		AmountPaid:    price,
		WalletBalance: walletBalance,
		LeadCredits:   leadCredits,
	}, nil
}

// runCompensation retries a rollback until it sticks. A caller timeout must
// not strand balances, so the compensation runs detached from cancellation.
// Exhausted retries are surfaced for manual reconciliation.
func (s *service) runCompensation(ctx context.Context, leadID, vendorID uuid.UUID, fn func(ctx context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	backoff := retry.WithMaxRetries(compensationRetries, retry.NewExponential(compensationBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err == nil {
		return
	}

	s.metrics.IncCompensationFailure()
	if s.logg != nil {
		fields := map[string]any{
			"lead_id":   leadID.String(),
			"vendor_id": vendorID.String(),
		}
		s.logg.Error(s.logg.WithFields(ctx, fields), "purchase compensation failed, manual reconciliation required", err)
	}
	emitErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReconciliationNeeded,
			AggregateType: enums.AggregateLead,
			AggregateID:   leadID,
			Data: map[string]any{
				"vendor_id": vendorID,
				"reason":    "purchase compensation failed",
			},
		})
	})
	if emitErr != nil && s.logg != nil {
		s.logg.Error(ctx, "failed to queue reconciliation event", emitErr)
	}
}

// tierConfig loads the pricing configuration. A missing source or failed
// lookup yields nil, which the resolver treats as "use the defaults".
func (s *service) tierConfig(ctx context.Context) pricing.TierConfig {
	if s.costs == nil {
		return nil
	}
	cfg, err := s.costs.TierConfig(ctx)
	if err != nil {
		if s.logg != nil {
			s.logg.Warn(ctx, "tier configuration unavailable, using defaults")
		}
		return nil
	}
	return cfg
}

// balances re-reads the vendor for authoritative post-purchase balances and
// falls back to the locally computed values when the read fails.
func (s *service) balances(ctx context.Context, vendorID uuid.UUID, computedWallet int64, computedCredits int) (int64, int) {
	fresh, err := s.wallets.GetVendor(ctx, vendorID)
	if err != nil || fresh == nil {
		return computedWallet, computedCredits
	}
	return fresh.WalletBalance, fresh.LeadCredits
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
