package dogs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

func setupDogsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	shelters := `
CREATE TABLE IF NOT EXISTS shelters (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  city TEXT,
  country TEXT,
  phone TEXT,
  email TEXT,
  website TEXT,
  logo_url TEXT,
  active INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	dogs := `
CREATE TABLE IF NOT EXISTS dogs (
  id TEXT PRIMARY KEY,
  shelter_id TEXT NOT NULL,
  name TEXT NOT NULL,
  breed TEXT,
  age_months INTEGER,
  gender TEXT,
  size TEXT,
  description TEXT,
  traits TEXT,
  status TEXT NOT NULL DEFAULT 'available',
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(shelters).Error)
	require.NoError(t, db.Exec(dogs).Error)
	return db
}

func seedDogShelter(t *testing.T, db *gorm.DB, active bool) *models.Shelter {
	t.Helper()
	shelter := &models.Shelter{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Name:    "Shelter " + uuid.NewString()[:8],
		Active:  active,
	}
	require.NoError(t, db.Create(shelter).Error)
	return shelter
}

func seedDog(t *testing.T, db *gorm.DB, dog *models.Dog) *models.Dog {
	t.Helper()
	if dog.ID == uuid.Nil {
		dog.ID = uuid.New()
	}
	if dog.Status == "" {
		dog.Status = enums.DogStatusAvailable
	}
	require.NoError(t, db.Create(dog).Error)
	return dog
}

func newDogService(t *testing.T, db *gorm.DB) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(db),
		ShelterRepo: &dbShelterReader{db: db},
	})
	require.NoError(t, err)
	return svc
}

func TestGetPublic_HidesDogsOfInactiveShelters(t *testing.T) {
	db := setupDogsTestDB(t)
	svc := newDogService(t, db)

	activeShelter := seedDogShelter(t, db, true)
	inactiveShelter := seedDogShelter(t, db, false)
	visible := seedDog(t, db, &models.Dog{ShelterID: activeShelter.ID, Name: "Rex"})
	hidden := seedDog(t, db, &models.Dog{ShelterID: inactiveShelter.ID, Name: "Ghost"})

	got, err := svc.GetPublic(context.Background(), visible.ID)
	require.NoError(t, err)
	require.Equal(t, "Rex", got.Name)

	_, err = svc.GetPublic(context.Background(), hidden.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestGetOwned_RejectsForeignShelter(t *testing.T) {
	db := setupDogsTestDB(t)
	svc := newDogService(t, db)

	owner := seedDogShelter(t, db, true)
	other := seedDogShelter(t, db, true)
	dog := seedDog(t, db, &models.Dog{ShelterID: owner.ID, Name: "Mine"})

	got, err := svc.GetOwned(context.Background(), owner.ID, dog.ID)
	require.NoError(t, err)
	require.Equal(t, dog.ID, got.ID)

	_, err = svc.GetOwned(context.Background(), other.ID, dog.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())
}

func TestUpdate_AppliesStatusTransition(t *testing.T) {
	db := setupDogsTestDB(t)
	svc := newDogService(t, db)

	shelter := seedDogShelter(t, db, true)
	dog := seedDog(t, db, &models.Dog{ShelterID: shelter.ID, Name: "Bella"})

	status := "adopted"
	updated, err := svc.Update(context.Background(), shelter.ID, dog.ID, UpdateDogDTO{Status: &status})
	require.NoError(t, err)
	require.Equal(t, enums.DogStatusAdopted, updated.Status)

	stored, err := svc.GetOwned(context.Background(), shelter.ID, dog.ID)
	require.NoError(t, err)
	require.Equal(t, enums.DogStatusAdopted, stored.Status)
}

func TestDelete_OwnedOnly(t *testing.T) {
	db := setupDogsTestDB(t)
	svc := newDogService(t, db)

	owner := seedDogShelter(t, db, true)
	other := seedDogShelter(t, db, true)
	dog := seedDog(t, db, &models.Dog{ShelterID: owner.ID, Name: "Short Stay"})

	err := svc.Delete(context.Background(), other.ID, dog.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeForbidden, pkgerrors.As(err).Code())

	require.NoError(t, svc.Delete(context.Background(), owner.ID, dog.ID))

	_, err = svc.GetOwned(context.Background(), owner.ID, dog.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestListPublic_FiltersInactiveOrgsAndBreed(t *testing.T) {
	db := setupDogsTestDB(t)
	svc := newDogService(t, db)

	activeShelter := seedDogShelter(t, db, true)
	inactiveShelter := seedDogShelter(t, db, false)

	labrador := "Labrador"
	poodle := "Poodle"
	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	seedDog(t, db, &models.Dog{ShelterID: activeShelter.ID, Name: "Vis1", Breed: &labrador, CreatedAt: base})
	seedDog(t, db, &models.Dog{ShelterID: activeShelter.ID, Name: "Vis2", Breed: &poodle, CreatedAt: base.Add(time.Hour)})
	seedDog(t, db, &models.Dog{ShelterID: inactiveShelter.ID, Name: "Hidden", Breed: &labrador, CreatedAt: base.Add(2 * time.Hour)})

	shelterID := activeShelter.ID
	result, _, err := svc.ListPublic(context.Background(), ListFilters{ShelterID: &shelterID}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result, 2)
	// Newest first.
	require.Equal(t, "Vis2", result[0].Name)

	breed := "labrador"
	result, _, err = svc.ListPublic(context.Background(), ListFilters{ShelterID: &shelterID, Breed: &breed}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "Vis1", result[0].Name)
}

func TestListOwned_IncludesAllStatuses(t *testing.T) {
	db := setupDogsTestDB(t)
	svc := newDogService(t, db)

	shelter := seedDogShelter(t, db, false)
	seedDog(t, db, &models.Dog{ShelterID: shelter.ID, Name: "A", Status: enums.DogStatusAvailable})
	seedDog(t, db, &models.Dog{ShelterID: shelter.ID, Name: "B", Status: enums.DogStatusAdopted})

	result, _, err := svc.ListOwned(context.Background(), shelter.ID, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, result, 2)
}

func TestCountByStatus(t *testing.T) {
	db := setupDogsTestDB(t)
	repo := NewRepository(db)

	shelter := seedDogShelter(t, db, true)
	seedDog(t, db, &models.Dog{ShelterID: shelter.ID, Name: "A", Status: enums.DogStatusAvailable})
	seedDog(t, db, &models.Dog{ShelterID: shelter.ID, Name: "B", Status: enums.DogStatusAvailable})
	seedDog(t, db, &models.Dog{ShelterID: shelter.ID, Name: "C", Status: enums.DogStatusAdopted})

	counts, err := repo.CountByStatus(context.Background(), shelter.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, counts[enums.DogStatusAvailable])
	require.EqualValues(t, 1, counts[enums.DogStatusAdopted])
	require.Zero(t, counts[enums.DogStatusPending])
}

type dbShelterReader struct {
	db *gorm.DB
}

func (r *dbShelterReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	var shelter models.Shelter
	if err := r.db.WithContext(ctx).First(&shelter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shelter, nil
}
