package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/utsavhq/utsav-backend/api/responses"
	"github.com/utsavhq/utsav-backend/api/validators"
	"github.com/utsavhq/utsav-backend/internal/leads"
	pkgerrors "github.com/utsavhq/utsav-backend/pkg/errors"
	"github.com/utsavhq/utsav-backend/pkg/logger"
)

const eventDateLayout = "2006-01-02"

type createInquiryRequest struct {
	Name       string `json:"name" validate:"required"`
	Phone      string `json:"phone" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	City       string `json:"city"`
	State      string `json:"state"`
	EventDate  string `json:"event_date"`
	GuestCount int    `json:"guest_count" validate:"omitempty,min=0"`
	Budget     int64  `json:"budget" validate:"omitempty,min=0"`
	Message    string `json:"message"`
	PackageID  string `json:"package_id"`
	Source     string `json:"source"`
}

// CreateInquiry accepts a public inquiry submission and records it as a lead.
func CreateInquiry(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "leads service unavailable"))
			return
		}

		var req createInquiryRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := leads.InquiryInput{
			Name:       req.Name,
			Phone:      req.Phone,
			Email:      req.Email,
			City:       req.City,
			State:      req.State,
			GuestCount: req.GuestCount,
			Budget:     req.Budget,
			Message:    req.Message,
			Source:     req.Source,
			UserAgent:  r.UserAgent(),
		}

		if raw := strings.TrimSpace(req.EventDate); raw != "" {
			parsed, err := time.Parse(eventDateLayout, raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event date"))
				return
			}
			input.EventDate = &parsed
		}
		if raw := strings.TrimSpace(req.PackageID); raw != "" {
			packageID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid package id"))
				return
			}
			input.PackageID = &packageID
		}

		lead, err := svc.CreateInquiry(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, lead)
	}
}
