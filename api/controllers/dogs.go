package controllers

import (
	"net/http"

	"github.com/utulok/shelter-backend/api/responses"
	"github.com/utulok/shelter-backend/api/validators"
	"github.com/utulok/shelter-backend/internal/dogs"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
)

func ListDogs(svc *dogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filters dogs.ListFilters
		query := r.URL.Query()
		if raw := query.Get("shelter_id"); raw != "" {
			id, err := pathlessUUID(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			filters.ShelterID = &id
		}
		if raw := query.Get("status"); raw != "" {
			status, err := enums.ParseDogStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		if raw := query.Get("breed"); raw != "" {
			filters.Breed = &raw
		}

		result, next, err := svc.ListPublic(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage[models.Dog](result, next))
	}
}

func GetDog(svc *dogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "dogID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dog, err := svc.GetPublic(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dog)
	}
}

func ListOwnDogs(svc *dogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shelterID, err := actorShelterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := validators.PaginationParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, next, err := svc.ListOwned(r.Context(), shelterID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPage[models.Dog](result, next))
	}
}

func CreateDog(svc *dogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shelterID, err := actorShelterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto dogs.CreateDogDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dog, err := svc.Create(r.Context(), shelterID, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dog)
	}
}

func UpdateDog(svc *dogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shelterID, err := actorShelterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dogID, err := pathUUID(r, "dogID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dto dogs.UpdateDogDTO
		if err := validators.DecodeJSONBody(r, &dto); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dog, err := svc.Update(r.Context(), shelterID, dogID, dto)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, dog)
	}
}

func DeleteDog(svc *dogs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		shelterID, err := actorShelterID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dogID, err := pathUUID(r, "dogID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), shelterID, dogID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
