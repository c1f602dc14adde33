package controllers

import (
	"net/http"

	"github.com/utulok/shelter-backend/api/responses"
	"github.com/utulok/shelter-backend/api/validators"
	"github.com/utulok/shelter-backend/internal/payments"
	"github.com/utulok/shelter-backend/pkg/logger"
)

type donationRequest struct {
	ShelterID   string `json:"shelter_id" validate:"required,uuid"`
	AmountCents int64  `json:"amount_cents" validate:"required,min=100,max=1000000"`
}

// CreateSubscriptionSession starts recurring billing checkout for the
// caller's shelter.
func CreateSubscriptionSession(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSubscriptionSession(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CreateDonationSession starts a one-time donation checkout.
func CreateDonationSession(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto donationRequest
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shelterID, err := pathlessUUID(dto.ShelterID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateDonationSession(r.Context(), userID, shelterID, dto.AmountCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
