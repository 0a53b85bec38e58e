package bundles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utsavhq/utsav-backend/pkg/db/models"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:bundles_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.LeadBundle{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestService(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(NewRepository(newTestDB(t)))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestCreateAndListBundles(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	starter, err := svc.Create(ctx, CreateInput{Name: "Starter", Credits: 20, Price: 400})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "Growth", Credits: 60, Price: 1000}); err != nil {
		t.Fatalf("create second: %v", err)
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two bundles, got %d", len(rows))
	}
	if rows[0].Name != "Starter" {
		t.Fatalf("expected cheapest first, got %s", rows[0].Name)
	}
	if got := rows[0].PerCreditPrice.String(); got != "20" {
		t.Fatalf("expected per-credit price 20, got %s", got)
	}
	if got := rows[1].PerCreditPrice.String(); got != "16.67" {
		t.Fatalf("expected per-credit price 16.67, got %s", got)
	}

	loaded, err := svc.GetActive(ctx, starter.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if loaded == nil || loaded.Credits != 20 {
		t.Fatalf("unexpected bundle: %+v", loaded)
	}
}

func TestCreateBundleValidation(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	cases := []CreateInput{
		{Name: "", Credits: 10, Price: 100},
		{Name: "Zero Credits", Credits: 0, Price: 100},
		{Name: "Free", Credits: 10, Price: 0},
	}
	for _, input := range cases {
		if _, err := svc.Create(ctx, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("expected validation error for %+v, got %v", input, err)
		}
	}
}

func TestDeactivateHidesBundle(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	bundle, err := svc.Create(ctx, CreateInput{Name: "Starter", Credits: 20, Price: 400})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Deactivate(ctx, bundle.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	loaded, err := svc.GetActive(ctx, bundle.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if loaded != nil {
		t.Fatal("deactivated bundle must not resolve as active")
	}

	rows, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty catalogue, got %d", len(rows))
	}
}
