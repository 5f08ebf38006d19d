// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetByEmail("reader@example.com")
package users

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. Email and username are expected to be
// normalized already.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their lower-cased email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether a user other than excludeID has email.
func (r *Repository) EmailTaken(email string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("email = ? AND id <> ?", email, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UsernameTaken reports whether a user other than excludeID has username,
// ignoring case.
func (r *Repository) UsernameTaken(username string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).
		Where("lower(username) = lower(?) AND id <> ?", username, excludeID).
		Count(&count).Error
	return count > 0, err
}

// UpdateDetails stores a new email and username for the user.
func (r *Repository) UpdateDetails(id uint, email, username string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Updates(map[string]any{"email": email, "username": username}).Error
}

// UpdatePassword replaces the stored password hash.
func (r *Repository) UpdatePassword(id uint, passwordHash string) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("password_hash", passwordHash).Error
}

// TouchLastLogin records a successful login.
func (r *Repository) TouchLastLogin(id uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("last_login_at", at).Error
}

// Count returns the number of registered users.
func (r *Repository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}
