package shelters

import (
	"strings"

	"github.com/google/uuid"

	"github.com/utulok/shelter-backend/pkg/db/models"
)

// CreateShelterDTO carries the fields for a new shelter profile.
type CreateShelterDTO struct {
	Name        string  `json:"name" validate:"required,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	City        *string `json:"city" validate:"omitempty,max=120"`
	Country     *string `json:"country" validate:"omitempty,max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Website     *string `json:"website" validate:"omitempty,url"`
}

// ToModel converts the DTO into a persistable shelter model.
func (dto CreateShelterDTO) ToModel(ownerID uuid.UUID) *models.Shelter {
	return &models.Shelter{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(dto.Name),
		Description: dto.Description,
		City:        dto.City,
		Country:     dto.Country,
		Phone:       dto.Phone,
		Email:       dto.Email,
		Website:     dto.Website,
	}
}

// UpdateShelterDTO carries optional profile updates. Nil fields are
// left untouched.
type UpdateShelterDTO struct {
	Name        *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	City        *string `json:"city" validate:"omitempty,max=120"`
	Country     *string `json:"country" validate:"omitempty,max=120"`
	Phone       *string `json:"phone" validate:"omitempty,max=40"`
	Email       *string `json:"email" validate:"omitempty,email"`
	Website     *string `json:"website" validate:"omitempty,url"`
	LogoURL     *string `json:"logo_url" validate:"omitempty,url"`
}

// Apply copies the provided fields onto the model.
func (dto UpdateShelterDTO) Apply(shelter *models.Shelter) {
	if dto.Name != nil {
		shelter.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Description != nil {
		shelter.Description = dto.Description
	}
	if dto.City != nil {
		shelter.City = dto.City
	}
	if dto.Country != nil {
		shelter.Country = dto.Country
	}
	if dto.Phone != nil {
		shelter.Phone = dto.Phone
	}
	if dto.Email != nil {
		shelter.Email = dto.Email
	}
	if dto.Website != nil {
		shelter.Website = dto.Website
	}
	if dto.LogoURL != nil {
		shelter.LogoURL = dto.LogoURL
	}
}
