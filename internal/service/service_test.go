package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/forkline/forkline/backend/internal/model"
	"github.com/forkline/forkline/backend/internal/testhelpers"
)

// setupServiceDB provisions a migrated database for service tests, or
// skips when docker is unavailable.
func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testhelpers.SetupTestDatabase(t)
}

func seedUser(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	user := &model.User{
		ID:           uuid.New(),
		Name:         "Test User",
		Email:        uuid.New().String() + "@example.com",
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user.ID
}
