package attachments

import (
	"context"
	"io"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
)

type dogAccessor interface {
	GetOwned(ctx context.Context, shelterID, dogID uuid.UUID) (*models.Dog, error)
}

type imageMirror interface {
	SetImageURL(ctx context.Context, id uuid.UUID, url *string) error
}

// ServiceParams wires the attachment service dependencies.
type ServiceParams struct {
	Repo    *Repository
	Storage *DiskStorage
	Dogs    dogAccessor
	DogRepo imageMirror
}

// Service manages dog image uploads and keeps each listing's mirrored
// image_url pointing at the newest attachment.
type Service struct {
	repo    *Repository
	storage *DiskStorage
	dogs    dogAccessor
	dogRepo imageMirror
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "attachment repo required")
	}
	if params.Storage == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "storage required")
	}
	if params.Dogs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dog service required")
	}
	if params.DogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dog repo required")
	}
	return &Service{
		repo:    params.Repo,
		storage: params.Storage,
		dogs:    params.Dogs,
		dogRepo: params.DogRepo,
	}, nil
}

// Upload stores an image for a dog owned by the caller's shelter.
func (s *Service) Upload(ctx context.Context, shelterID, dogID uuid.UUID, contentType string, size int64, src io.Reader) (*models.Attachment, error) {
	if _, err := s.dogs.GetOwned(ctx, shelterID, dogID); err != nil {
		return nil, err
	}

	fileName, url, err := s.storage.Save(contentType, src)
	if err != nil {
		return nil, err
	}

	attachment := &models.Attachment{
		DogID:       dogID,
		URL:         url,
		FileName:    fileName,
		ContentType: contentType,
		SizeBytes:   size,
	}
	if err := s.repo.Create(ctx, attachment); err != nil {
		s.storage.Remove(fileName)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create attachment")
	}

	if err := s.dogRepo.SetImageURL(ctx, dogID, &url); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror image url")
	}

	return attachment, nil
}

// List returns a dog's attachments for its owning shelter.
func (s *Service) List(ctx context.Context, shelterID, dogID uuid.UUID) ([]models.Attachment, error) {
	if _, err := s.dogs.GetOwned(ctx, shelterID, dogID); err != nil {
		return nil, err
	}
	result, err := s.repo.ListByDog(ctx, dogID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list attachments")
	}
	return result, nil
}

// Delete removes an attachment and re-mirrors the listing's image URL
// to whatever attachment is newest afterwards.
func (s *Service) Delete(ctx context.Context, shelterID, dogID, attachmentID uuid.UUID) error {
	if _, err := s.dogs.GetOwned(ctx, shelterID, dogID); err != nil {
		return err
	}

	attachment, err := s.repo.FindByID(ctx, attachmentID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "attachment not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load attachment")
	}
	if attachment.DogID != dogID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "attachment belongs to another dog")
	}

	if err := s.repo.Delete(ctx, attachmentID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete attachment")
	}
	if err := s.storage.Remove(attachment.FileName); err != nil {
		return err
	}

	newest, err := s.repo.Newest(ctx, dogID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load newest attachment")
	}
	var url *string
	if newest != nil {
		url = &newest.URL
	}
	if err := s.dogRepo.SetImageURL(ctx, dogID, url); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mirror image url")
	}

	return nil
}
