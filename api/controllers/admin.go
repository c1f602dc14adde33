package controllers

import (
	"net/http"

	"github.com/utulok/shelter-backend/api/responses"
	"github.com/utulok/shelter-backend/api/validators"
	"github.com/utulok/shelter-backend/internal/admin"
	"github.com/utulok/shelter-backend/internal/billing"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
)

func AdminListUsers(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, next, err := svc.ListUsers(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage[models.User](result, next))
	}
}

func AdminListShelters(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, next, err := svc.ListShelters(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage[models.Shelter](result, next))
	}
}

type setShelterActiveRequest struct {
	Active bool `json:"active"`
}

func AdminSetShelterActive(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shelterID, err := pathUUID(r, "shelterID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto setShelterActiveRequest
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		shelter, err := svc.SetShelterActive(r.Context(), shelterID, dto.Active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, shelter)
	}
}

func AdminListPayments(svc *admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var query billing.ListPaymentsQuery
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParsePaymentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			query.Status = &status
		}
		if raw := r.URL.Query().Get("purpose"); raw != "" {
			purpose, err := enums.ParsePaymentPurpose(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purpose filter"))
				return
			}
			query.Purpose = &purpose
		}
		if raw := r.URL.Query().Get("shelter_id"); raw != "" {
			id, err := pathlessUUID(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			query.ShelterID = &id
		}

		result, next, err := svc.ListPayments(r.Context(), query, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage[models.Payment](result, next))
	}
}
