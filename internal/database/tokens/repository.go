// Package tokens stores revoked refresh tokens until they expire.
package tokens

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Revoke blacklists jti until expiresAt. Revoking twice is not an error.
func (r *Repository) Revoke(jti string, userID uint, expiresAt time.Time) error {
	token := &entities.RevokedToken{JTI: jti, UserID: userID, ExpiresAt: expiresAt}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(token).Error
}

// IsRevoked reports whether jti has been blacklisted.
func (r *Repository) IsRevoked(jti string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

// PurgeExpired deletes entries whose token expired before now. Returns the
// number of deleted entries.
func (r *Repository) PurgeExpired(now time.Time) (int64, error) {
	result := r.db.Where("expires_at < ?", now).Delete(&entities.RevokedToken{})
	return result.RowsAffected, result.Error
}
