package settings

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/internal/pricing"
	"github.com/utsavhq/utsav-backend/pkg/db/models"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	dsn := "file:settings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.SystemSetting{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLeadCostsDefaultsWhenUnset(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	costs, err := svc.LeadCosts(ctx)
	if err != nil {
		t.Fatalf("lead costs: %v", err)
	}
	if costs != pricing.DefaultCreditCosts {
		t.Fatalf("expected defaults, got %+v", costs)
	}

	cfg, err := svc.TierConfig(ctx)
	if err != nil {
		t.Fatalf("tier config: %v", err)
	}
	if cfg != nil {
		t.Fatalf("expected nil config when unset, got %+v", cfg)
	}
}

func TestUpdateLeadCostsRoundTrips(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	want := pricing.TierConfig{
		"standard": {Credits: 15},
		"premium":  {Credits: 35},
		"elite":    {Credits: 75, Amount: 200, MinBudget: 500_000, MinGuests: 100, Label: "High Value"},
	}
	if err := svc.UpdateLeadCosts(ctx, want); err != nil {
		t.Fatalf("update: %v", err)
	}

	cfg, err := svc.TierConfig(ctx)
	if err != nil {
		t.Fatalf("tier config: %v", err)
	}
	if cfg["elite"].MinBudget != 500_000 || cfg["elite"].Label != "High Value" {
		t.Fatalf("stored elite tier lost fields: %+v", cfg["elite"])
	}
	costs, err := svc.LeadCosts(ctx)
	if err != nil {
		t.Fatalf("lead costs: %v", err)
	}
	if costs != (pricing.CreditCosts{Standard: 15, Premium: 35, Elite: 75}) {
		t.Fatalf("expected resolved costs, got %+v", costs)
	}

	// Second write replaces the existing row.
	if err := svc.UpdateLeadCosts(ctx, pricing.TierConfig{
		"standard": {Credits: 20},
		"premium":  {Credits: 40},
		"elite":    {Credits: 80},
	}); err != nil {
		t.Fatalf("second update: %v", err)
	}
	costs, err = svc.LeadCosts(ctx)
	if err != nil {
		t.Fatalf("lead costs: %v", err)
	}
	if costs != (pricing.CreditCosts{Standard: 20, Premium: 40, Elite: 80}) {
		t.Fatalf("expected rewritten costs, got %+v", costs)
	}
}

func TestUpdateLeadCostsRejectsInvalid(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	err := svc.UpdateLeadCosts(ctx, pricing.TierConfig{"standard": {Credits: -5}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	err = svc.UpdateLeadCosts(ctx, pricing.TierConfig{})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty config, got %v", err)
	}
}
