package audit

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database"
	auditRepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := database.Open(filepath.Join(t.TempDir(), "audit.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := auditRepo.NewRepository(db.DB)
	svc := NewService(repo)

	return svc, db.DB
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		UserID:      1,
		EventType:   entities.AuditEventBook,
		Action:      "book_create",
		Description: "Dune",
		Status:      entities.AuditStatusSuccess,
	}

	err := svc.Log(event)
	require.NoError(t, err)

	var saved entities.AuditEvent
	err = db.First(&saved, event.ID).Error
	require.NoError(t, err)
	assert.Equal(t, "book_create", saved.Action)
}

func TestService_LogBook(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful upload", func(t *testing.T) {
		svc.LogBook(1, "upload", 42, "Dune", nil)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", "book_upload").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditEventBook, event.EventType)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "book", event.EntityType)
		require.NotNil(t, event.EntityID)
		assert.Equal(t, uint(42), *event.EntityID)
	})

	t.Run("failed upload", func(t *testing.T) {
		svc.LogBook(1, "upload_failed", 42, "Dune", errors.New("book is already uploaded"))
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", "book_upload_failed").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Contains(t, event.ErrorMsg, "already uploaded")
	})
}

func TestService_LogReadingList(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogReadingList(1, "reorder", 7, "Favorites", nil)
	svc.Wait()

	var event entities.AuditEvent
	err := db.Where("action = ?", "reading_list_reorder").First(&event).Error
	require.NoError(t, err)
	assert.Equal(t, entities.AuditEventReadingList, event.EventType)
	assert.Equal(t, "Favorites", event.Description)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful login", func(t *testing.T) {
		svc.LogAuth(1, "login", "192.168.1.1", "Mozilla/5.0", true)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", "login").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "192.168.1.1", event.IPAddress)
	})

	t.Run("failed login", func(t *testing.T) {
		svc.LogAuth(0, "login_failed", "10.0.0.1", "curl/7.68.0", false)
		svc.Wait()

		var event entities.AuditEvent
		err := db.Where("action = ?", "login_failed").First(&event).Error
		require.NoError(t, err)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
	})
}

func TestService_LogAccountAndMaintenance(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAccount(3, "password_change", "Password changed")
	svc.LogMaintenance("purge_revoked_tokens", "Purged 2 revoked tokens", nil)
	svc.Wait()

	var account entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "password_change").First(&account).Error)
	assert.Equal(t, entities.AuditEventAccount, account.EventType)
	assert.Equal(t, uint(3), account.UserID)

	var maintenance entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "purge_revoked_tokens").First(&maintenance).Error)
	assert.Equal(t, entities.AuditEventMaintenance, maintenance.EventType)
	assert.Zero(t, maintenance.UserID)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 5; i++ {
		err := svc.Log(&entities.AuditEvent{
			UserID:    1,
			EventType: entities.AuditEventBook,
			Action:    "test",
			Status:    entities.AuditStatusSuccess,
		})
		require.NoError(t, err)
	}

	events, total, err := svc.GetEvents(1, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, events, 5)

	events, total, err = svc.GetEventsByType(entities.AuditEventAuth, 1, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, events)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	oldEvent := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(oldEvent).Error)

	newEvent := &entities.AuditEvent{
		UserID:    1,
		EventType: entities.AuditEventBook,
		Action:    "new",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(newEvent).Error)

	// Delete events older than 24 hours
	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []entities.AuditEvent
	db.Find(&remaining)
	assert.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Action)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a very long string", 10, "this is..."},
		{"", 5, ""},
	}

	for _, tc := range tests {
		result := truncate(tc.input, tc.maxLen)
		assert.Equal(t, tc.expected, result)
	}
}
