package controllers

import (
	"net/http"
	"strings"

	"github.com/utsavhq/utsav-backend/api/responses"
	"github.com/utsavhq/utsav-backend/api/validators"
	"github.com/utsavhq/utsav-backend/internal/leads"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/logger"
	"github.com/utsavhq/utsav-backend/pkg/pagination"
)

// Marketplace lists purchasable leads with contacts masked.
func Marketplace(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := leads.MarketplaceFilters{
			City:             strings.TrimSpace(r.URL.Query().Get("city")),
			BusinessCategory: strings.TrimSpace(r.URL.Query().Get("business_category")),
		}

		list, page, err := svc.Marketplace(r.Context(), vendorID, filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"leads":      list,
			"pagination": page,
		})
	}
}

type buyLeadRequest struct {
	UseCredits bool `json:"use_credits"`
}

// BuyLead unlocks a lead for the authenticated vendor, paying with wallet
// balance or prepaid credits.
func BuyLead(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		leadID, err := uuidURLParam(r, "leadId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req buyLeadRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &req); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := svc.BuyLead(r.Context(), vendorID, leadID, req.UseCredits)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// MyLeads lists the vendor's unlocked leads with full contact details.
func MyLeads(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		vendorID, err := vendorIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, page, err := svc.MyLeads(r.Context(), vendorID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"leads":      list,
			"pagination": page,
		})
	}
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	page, err := validators.ParseQueryInt(r, "page", 1, 1, 1<<30)
	if err != nil {
		return pagination.Params{}, err
	}
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{Page: page, Limit: limit}, nil
}
