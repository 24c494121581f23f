package repository

import (
	"testing"

	"github.com/coderr-app/coderr-backend/internal/app/model"
	"github.com/coderr-app/coderr-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProfileRepositoryTest(t *testing.T) (ProfileRepository, *gorm.DB, *model.User) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	user := &model.User{Username: "testuser", Email: "test@example.com", PasswordHash: "hash"}
	testDB.Create(user)

	return NewProfileRepository(testDB), testDB, user
}

func TestProfileRepository_BusinessRoundTrip(t *testing.T) {
	repo, _, user := setupProfileRepositoryTest(t)

	profile := &model.BusinessProfile{
		UserID:      user.ID,
		CompanyName: "Test GmbH",
		Location:    "Berlin",
	}
	require.NoError(t, repo.CreateBusiness(profile))

	found, err := repo.FindBusinessByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Test GmbH", found.CompanyName)
	assert.Equal(t, user.Username, found.User.Username)

	found.Tel = "030 1234567"
	require.NoError(t, repo.UpdateBusiness(found))

	found, err = repo.FindBusinessByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "030 1234567", found.Tel)
}

func TestProfileRepository_CustomerRoundTrip(t *testing.T) {
	repo, _, user := setupProfileRepositoryTest(t)

	profile := &model.CustomerProfile{
		UserID:    user.ID,
		FirstName: "Max",
		LastName:  "Mustermann",
	}
	require.NoError(t, repo.CreateCustomer(profile))

	found, err := repo.FindCustomerByUserID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Max", found.FirstName)
	assert.Equal(t, user.Username, found.User.Username)
}

func TestProfileRepository_FindNotFound(t *testing.T) {
	repo, _, _ := setupProfileRepositoryTest(t)

	_, err := repo.FindBusinessByUserID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindCustomerByUserID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProfileRepository_OneProfilePerUser(t *testing.T) {
	repo, _, user := setupProfileRepositoryTest(t)

	require.NoError(t, repo.CreateBusiness(&model.BusinessProfile{
		UserID: user.ID, CompanyName: "First",
	}))
	assert.Error(t, repo.CreateBusiness(&model.BusinessProfile{
		UserID: user.ID, CompanyName: "Second",
	}))
}

func TestProfileRepository_ListsAndCount(t *testing.T) {
	repo, testDB, user := setupProfileRepositoryTest(t)

	second := &model.User{Username: "second", Email: "second@example.com", PasswordHash: "hash"}
	third := &model.User{Username: "third", Email: "third@example.com", PasswordHash: "hash"}
	testDB.Create(second)
	testDB.Create(third)

	require.NoError(t, repo.CreateBusiness(&model.BusinessProfile{UserID: user.ID, CompanyName: "A"}))
	require.NoError(t, repo.CreateBusiness(&model.BusinessProfile{UserID: second.ID, CompanyName: "B"}))
	require.NoError(t, repo.CreateCustomer(&model.CustomerProfile{UserID: third.ID, FirstName: "C"}))

	business, err := repo.ListBusiness()
	require.NoError(t, err)
	require.Len(t, business, 2)
	assert.Equal(t, user.ID, business[0].UserID)

	customers, err := repo.ListCustomer()
	require.NoError(t, err)
	assert.Len(t, customers, 1)

	count, err := repo.CountBusiness()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
