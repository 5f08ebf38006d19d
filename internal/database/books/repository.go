// Package books provides database operations for books and the public
// catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	page, total, err := repo.ListCatalog(10, 0)
package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

const catalogOrder = "created_at DESC, id DESC"

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Omit("User").Create(book).Error
}

// Save writes every column of an existing book.
func (r *Repository) Save(book *entities.Book) error {
	return r.db.Omit("User").Save(book).Error
}

// GetByID retrieves a book by ID regardless of owner or state.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetActiveForOwner retrieves a non-deleted book owned by userID. Books of
// other users are reported as gorm.ErrRecordNotFound.
func (r *Repository) GetActiveForOwner(id, userID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// TitleTaken reports whether userID already has a non-deleted book with
// title, compared case-insensitively. excludeID skips the book being updated.
func (r *Repository) TitleTaken(userID uint, title string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).
		Where("user_id = ? AND lower(title) = lower(?) AND is_deleted = ? AND id <> ?",
			userID, title, false, excludeID).
		Count(&count).Error
	return count > 0, err
}

// ListCatalog returns a page of published, non-deleted books, newest first,
// and the total number of such books.
func (r *Repository) ListCatalog(limit, offset int) ([]entities.Book, int64, error) {
	var books []entities.Book
	var total int64

	query := r.db.Model(&entities.Book{}).
		Where("is_deleted = ? AND is_uploaded = ?", false, true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if offset < 0 {
		offset = 0
	}

	err := query.Order(catalogOrder).Limit(limit).Offset(offset).Find(&books).Error
	return books, total, err
}

// ListForOwner returns the non-deleted books of userID, newest first.
func (r *Repository) ListForOwner(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order(catalogOrder).Find(&books).Error
	return books, err
}
