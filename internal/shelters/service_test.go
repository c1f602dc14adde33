package shelters

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

func setupSheltersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS shelters (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))||'-'||hex(randomblob(2))||'-4'||substr(hex(randomblob(2)),2)||'-a'||substr(hex(randomblob(2)),2)||'-'||hex(randomblob(6)))),
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
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedShelter(t *testing.T, db *gorm.DB, shelter *models.Shelter) *models.Shelter {
	t.Helper()
	if shelter.ID == uuid.Nil {
		shelter.ID = uuid.New()
	}
	if shelter.OwnerID == uuid.Nil {
		shelter.OwnerID = uuid.New()
	}
	require.NoError(t, db.Create(shelter).Error)
	return shelter
}

func newShelterService(t *testing.T, db *gorm.DB) (*Service, *roleRecorder) {
	t.Helper()
	roles := &roleRecorder{}
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(db),
		UserRepo:    roles,
		BillingRepo: &stubBillingReader{},
		DogRepo:     &stubDogCounter{},
	})
	require.NoError(t, err)
	return svc, roles
}

func TestCreate_PromotesOwnerAndStartsInactive(t *testing.T) {
	db := setupSheltersTestDB(t)
	svc, roles := newShelterService(t, db)
	ownerID := uuid.New()

	shelter, err := svc.Create(context.Background(), ownerID, CreateShelterDTO{Name: "  Paws United  "})
	require.NoError(t, err)
	require.Equal(t, "Paws United", shelter.Name)
	require.False(t, shelter.Active)
	require.Equal(t, []string{string(enums.UserRoleShelter)}, roles.updates[ownerID])

	stored, err := svc.GetOwn(context.Background(), ownerID)
	require.NoError(t, err)
	require.Equal(t, "Paws United", stored.Name)
}

func TestCreate_SecondShelterConflicts(t *testing.T) {
	db := setupSheltersTestDB(t)
	svc, _ := newShelterService(t, db)
	ownerID := uuid.New()

	seedShelter(t, db, &models.Shelter{OwnerID: ownerID, Name: "First"})

	_, err := svc.Create(context.Background(), ownerID, CreateShelterDTO{Name: "Second"})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestGetPublic_HidesInactive(t *testing.T) {
	db := setupSheltersTestDB(t)
	svc, _ := newShelterService(t, db)

	inactive := seedShelter(t, db, &models.Shelter{Name: "Dormant", Active: false})
	active := seedShelter(t, db, &models.Shelter{Name: "Open Arms", Active: true})

	_, err := svc.GetPublic(context.Background(), inactive.ID)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.GetPublic(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	got, err := svc.GetPublic(context.Background(), active.ID)
	require.NoError(t, err)
	require.Equal(t, active.ID, got.ID)
}

func TestUpdate_AppliesPartialFields(t *testing.T) {
	db := setupSheltersTestDB(t)
	svc, _ := newShelterService(t, db)
	ownerID := uuid.New()
	city := "Brno"
	seedShelter(t, db, &models.Shelter{OwnerID: ownerID, Name: "Old Name", City: &city})

	newName := "New Name"
	updated, err := svc.Update(context.Background(), ownerID, UpdateShelterDTO{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.Name)
	require.NotNil(t, updated.City)
	require.Equal(t, "Brno", *updated.City)
}

func TestList_ActiveOnlyWithCityFilter(t *testing.T) {
	db := setupSheltersTestDB(t)
	svc, _ := newShelterService(t, db)

	prague := "Prague"
	brno := "Brno"
	base := time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	seedShelter(t, db, &models.Shelter{Name: "A", City: &prague, Active: true, CreatedAt: base})
	seedShelter(t, db, &models.Shelter{Name: "B", City: &prague, Active: false, CreatedAt: base.Add(time.Hour)})
	seedShelter(t, db, &models.Shelter{Name: "C", City: &brno, Active: true, CreatedAt: base.Add(2 * time.Hour)})

	cityFilter := "prague"
	result, next, err := svc.List(context.Background(), &cityFilter, pagination.Params{})
	require.NoError(t, err)
	require.Nil(t, next)
	require.Len(t, result, 1)
	require.Equal(t, "A", result[0].Name)
}

func TestGetDashboard_AggregatesBillingAndListings(t *testing.T) {
	db := setupSheltersTestDB(t)
	ownerID := uuid.New()
	shelter := seedShelter(t, db, &models.Shelter{OwnerID: ownerID, Name: "Stats", Active: true})

	status := enums.SubscriptionStatusActive
	billing := &stubBillingReader{
		total: decimal.NewFromInt(120),
		sub: &models.Subscription{
			ShelterID: shelter.ID,
			Status:    status,
		},
	}
	dogs := &stubDogCounter{counts: map[enums.DogStatus]int64{
		enums.DogStatusAvailable: 4,
		enums.DogStatusAdopted:   2,
	}}
	svc, err := NewService(ServiceParams{
		Repo:        NewRepository(db),
		UserRepo:    &roleRecorder{},
		BillingRepo: billing,
		DogRepo:     dogs,
	})
	require.NoError(t, err)

	dashboard, err := svc.GetDashboard(context.Background(), ownerID)
	require.NoError(t, err)
	require.Equal(t, shelter.ID, dashboard.Shelter.ID)
	require.True(t, dashboard.DonationTotal.Equal(decimal.NewFromInt(120)))
	require.EqualValues(t, 4, dashboard.DogCounts[enums.DogStatusAvailable])
	require.NotNil(t, dashboard.SubscriptionStatus)
	require.Equal(t, status, *dashboard.SubscriptionStatus)
}

type roleRecorder struct {
	updates map[uuid.UUID][]string
}

func (r *roleRecorder) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	if r.updates == nil {
		r.updates = map[uuid.UUID][]string{}
	}
	r.updates[id] = append(r.updates[id], role)
	return nil
}

type stubBillingReader struct {
	total decimal.Decimal
	sub   *models.Subscription
}

func (s *stubBillingReader) SumSucceededDonations(ctx context.Context, shelterID uuid.UUID) (decimal.Decimal, error) {
	return s.total, nil
}

func (s *stubBillingReader) LatestSubscriptionForShelter(ctx context.Context, shelterID uuid.UUID) (*models.Subscription, error) {
	return s.sub, nil
}

type stubDogCounter struct {
	counts map[enums.DogStatus]int64
}

func (s *stubDogCounter) CountByStatus(ctx context.Context, shelterID uuid.UUID) (map[enums.DogStatus]int64, error) {
	return s.counts, nil
}
