package dogs

import (
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
)

// CreateDogDTO carries the fields for a new listing.
type CreateDogDTO struct {
	Name        string   `json:"name" validate:"required,min=1,max=120"`
	Breed       *string  `json:"breed" validate:"omitempty,max=120"`
	AgeMonths   *int     `json:"age_months" validate:"omitempty,min=0,max=480"`
	Gender      *string  `json:"gender" validate:"omitempty,oneof=male female"`
	Size        *string  `json:"size" validate:"omitempty,oneof=small medium large"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Traits      []string `json:"traits" validate:"omitempty,max=20,dive,min=1,max=60"`
}

// ToModel converts the DTO into a persistable dog model.
func (dto CreateDogDTO) ToModel(shelterID uuid.UUID) *models.Dog {
	dog := &models.Dog{
		ShelterID:   shelterID,
		Name:        strings.TrimSpace(dto.Name),
		Breed:       dto.Breed,
		AgeMonths:   dto.AgeMonths,
		Size:        dto.Size,
		Description: dto.Description,
		Traits:      pq.StringArray(dto.Traits),
		Status:      enums.DogStatusAvailable,
	}
	if dto.Gender != nil {
		gender := enums.DogGender(*dto.Gender)
		dog.Gender = &gender
	}
	return dog
}

// UpdateDogDTO carries optional listing updates. Nil fields are left
// untouched.
type UpdateDogDTO struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=120"`
	Breed       *string  `json:"breed" validate:"omitempty,max=120"`
	AgeMonths   *int     `json:"age_months" validate:"omitempty,min=0,max=480"`
	Gender      *string  `json:"gender" validate:"omitempty,oneof=male female"`
	Size        *string  `json:"size" validate:"omitempty,oneof=small medium large"`
	Description *string  `json:"description" validate:"omitempty,max=4000"`
	Traits      []string `json:"traits" validate:"omitempty,max=20,dive,min=1,max=60"`
	Status      *string  `json:"status" validate:"omitempty,oneof=available pending adopted"`
}

// Apply copies the provided fields onto the model.
func (dto UpdateDogDTO) Apply(dog *models.Dog) {
	if dto.Name != nil {
		dog.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Breed != nil {
		dog.Breed = dto.Breed
	}
	if dto.AgeMonths != nil {
		dog.AgeMonths = dto.AgeMonths
	}
	if dto.Gender != nil {
		gender := enums.DogGender(*dto.Gender)
		dog.Gender = &gender
	}
	if dto.Size != nil {
		dog.Size = dto.Size
	}
	if dto.Description != nil {
		dog.Description = dto.Description
	}
	if dto.Traits != nil {
		dog.Traits = pq.StringArray(dto.Traits)
	}
	if dto.Status != nil {
		dog.Status = enums.DogStatus(*dto.Status)
	}
}
