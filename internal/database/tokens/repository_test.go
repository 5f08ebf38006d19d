package tokens

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database"
)

func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "tokens.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db.DB)
}

func TestRepository_Revoke(t *testing.T) {
	repo := setupTestDB(t)
	expires := time.Now().Add(time.Hour)

	revoked, err := repo.IsRevoked("jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, repo.Revoke("jti-1", 1, expires))
	require.NoError(t, repo.Revoke("jti-1", 1, expires), "revoking twice is allowed")

	revoked, err = repo.IsRevoked("jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestRepository_PurgeExpired(t *testing.T) {
	repo := setupTestDB(t)
	now := time.Now()

	require.NoError(t, repo.Revoke("old", 1, now.Add(-time.Minute)))
	require.NoError(t, repo.Revoke("fresh", 1, now.Add(time.Hour)))

	purged, err := repo.PurgeExpired(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	revoked, err := repo.IsRevoked("old")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = repo.IsRevoked("fresh")
	require.NoError(t, err)
	assert.True(t, revoked)
}
