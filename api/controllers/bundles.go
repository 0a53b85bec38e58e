package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/utsavhq/utsav-backend/api/responses"
	"github.com/utsavhq/utsav-backend/api/validators"
	"github.com/utsavhq/utsav-backend/internal/bundles"
	"github.com/utsavhq/utsav-backend/internal/wallet"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/logger"
)

// ListBundles returns the active credit bundles, cheapest first.
func ListBundles(svc bundles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "bundles service unavailable"))
			return
		}

		list, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"bundles": list})
	}
}

type buyBundleRequest struct {
	BundleID string `json:"bundle_id" validate:"required"`
}

// BuyBundle purchases a credit bundle from the vendor's wallet balance.
func BuyBundle(svc wallet.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wallet service unavailable"))
			return
		}

		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req buyBundleRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bundleID, err := uuid.Parse(req.BundleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid bundle id"))
			return
		}

		purchase, err := svc.PurchaseBundle(r.Context(), vendorID, bundleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}
