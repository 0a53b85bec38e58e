package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/utsavhq/utsav-backend/api/responses"
	"github.com/utsavhq/utsav-backend/api/validators"
	"github.com/utsavhq/utsav-backend/internal/bundles"
	"github.com/utsavhq/utsav-backend/internal/packages"
	"github.com/utsavhq/utsav-backend/internal/pricing"
	"github.com/utsavhq/utsav-backend/internal/settings"
	"github.com/utsavhq/utsav-backend/internal/wallet"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/logger"
)

type leadCostsResponse struct {
	Tiers pricing.TierConfig  `json:"tiers,omitempty"`
	Costs pricing.CreditCosts `json:"costs"`
}

// GetLeadCosts returns the pricing tier configuration alongside the resolved
// per-tier credit costs.
func GetLeadCosts(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		cfg, err := svc.TierConfig(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		costs, err := svc.LeadCosts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, leadCostsResponse{Tiers: cfg, Costs: costs})
	}
}

// UpdateLeadCosts replaces the pricing tier configuration. Each tier accepts
// either a bare credit number or a structured entry with credits, amount,
// minBudget, minGuests, and label.
func UpdateLeadCosts(svc settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "settings service unavailable"))
			return
		}

		var cfg pricing.TierConfig
		if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body"))
			return
		}

		if err := svc.UpdateLeadCosts(r.Context(), cfg); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, leadCostsResponse{Tiers: cfg, Costs: cfg.CreditCosts()})
	}
}

// MigrateAllCredits folds every vendor's legacy tiered credits into flat balances.
func MigrateAllCredits(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		report, err := svc.MigrateAllLegacyCredits(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

type createBundleRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Credits     int    `json:"credits" validate:"required,min=1"`
	Price       int64  `json:"price" validate:"required,min=1"`
}

// CreateBundle registers a new credit bundle for sale.
func CreateBundle(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		var req createBundleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		bundle, err := svc.Create(r.Context(), bundles.CreateInput{
			Name:        req.Name,
			Description: req.Description,
			Credits:     req.Credits,
			Price:       req.Price,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bundle)
	}
}

// DeactivateBundle hides a bundle from sale without deleting its history.
func DeactivateBundle(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		bundleID, err := uuidURLParam(r, "bundleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), bundleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}

type createPackageRequest struct {
	Name         string   `json:"name" validate:"required"`
	Category     string   `json:"category"`
	Description  string   `json:"description"`
	Price        int64    `json:"price" validate:"omitempty,min=0"`
	DurationDays int      `json:"duration_days" validate:"omitempty,min=1"`
	Features     []string `json:"features"`
}

// CreatePackage registers a listing package that inquiries can reference.
func CreatePackage(svc packages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "packages service unavailable"))
			return
		}

		var req createPackageRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pkg, err := svc.Create(r.Context(), packages.CreateInput{
			Name:         req.Name,
			Category:     req.Category,
			Description:  req.Description,
			Price:        req.Price,
			DurationDays: req.DurationDays,
			Features:     req.Features,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, pkg)
	}
}
