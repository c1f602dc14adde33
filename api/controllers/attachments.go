package controllers

import (
	"net/http"

	"github.com/utulok/shelter-backend/api/responses"
	"github.com/utulok/shelter-backend/internal/attachments"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
)

const uploadFormField = "image"

// UploadAttachment accepts a multipart image upload for a dog listing.
func UploadAttachment(svc *attachments.Service, maxUploadBytes int64, logg *logger.Logger) http.HandlerFunc {
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

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload too large or malformed"))
			return
		}

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "image file required"))
			return
		}
		defer file.Close()

		attachment, err := svc.Upload(r.Context(), shelterID, dogID, header.Header.Get("Content-Type"), header.Size, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, attachment)
	}
}

func ListAttachments(svc *attachments.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.List(r.Context(), shelterID, dogID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func DeleteAttachment(svc *attachments.Service, logg *logger.Logger) http.HandlerFunc {
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

		attachmentID, err := pathUUID(r, "attachmentID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), shelterID, dogID, attachmentID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
