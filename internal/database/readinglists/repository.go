// Package readinglists provides database operations for reading lists and
// their ordered items.
//
// Item mutations run the ordering engine inside a single transaction, so a
// rejected add, remove or reorder leaves the list untouched.
//
// # Usage
//
//	repo := readinglists.NewRepository(db)
//	item, err := repo.AddItem(listID, bookID)
package readinglists

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/ordering"
)

// Repository handles reading list and item database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading lists repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new reading list.
func (r *Repository) Create(list *entities.ReadingList) error {
	return r.db.Omit("User", "Items").Create(list).Error
}

// GetActiveForOwner retrieves a non-deleted list owned by userID.
func (r *Repository) GetActiveForOwner(id, userID uint) (*entities.ReadingList, error) {
	var list entities.ReadingList
	err := r.db.Where("id = ? AND user_id = ? AND is_deleted = ?", id, userID, false).
		First(&list).Error
	if err != nil {
		return nil, err
	}
	return &list, nil
}

// ListForOwner returns the non-deleted lists of userID, newest first.
func (r *Repository) ListForOwner(userID uint) ([]entities.ReadingList, error) {
	var lists []entities.ReadingList
	err := r.db.Where("user_id = ? AND is_deleted = ?", userID, false).
		Order("created_at DESC, id DESC").Find(&lists).Error
	return lists, err
}

// NameTaken reports whether userID already has a non-deleted list called
// name, compared case-insensitively.
func (r *Repository) NameTaken(userID uint, name string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.ReadingList{}).
		Where("user_id = ? AND lower(name) = lower(?) AND is_deleted = ?", userID, name, false).
		Count(&count).Error
	return count > 0, err
}

// SoftDelete marks the list deleted and removes its items. list is only
// updated once the transaction commits.
func (r *Repository) SoftDelete(list *entities.ReadingList) error {
	deleted := *list
	if err := deleted.SoftDelete(); err != nil {
		return err
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("reading_list_id = ?", list.ID).Delete(&entities.ReadingListItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items: %w", err)
		}
		return tx.Model(&entities.ReadingList{}).Where("id = ?", list.ID).
			Update("is_deleted", true).Error
	})
	if err != nil {
		return err
	}
	*list = deleted
	return nil
}

// Items returns the list's items in order with their books loaded.
func (r *Repository) Items(listID uint) ([]entities.ReadingListItem, error) {
	var items []entities.ReadingListItem
	err := r.db.Preload("Book").
		Where("reading_list_id = ?", listID).
		Order("sort_order ASC, id ASC").
		Find(&items).Error
	return items, err
}

// AddItem appends bookID to the list.
func (r *Repository) AddItem(listID, bookID uint) (*entities.ReadingListItem, error) {
	var created *entities.ReadingListItem
	err := r.withItems(listID, func(store *itemStore) error {
		item, err := ordering.Add(store, listID, bookID)
		if err != nil {
			return err
		}
		created = &entities.ReadingListItem{
			ID:            item.ID,
			ReadingListID: listID,
			BookID:        item.BookID,
			Order:         item.Order,
		}
		return nil
	})
	if database.IsUniqueViolation(err) {
		return nil, ordering.ErrDuplicate
	}
	return created, err
}

// RemoveItem deletes bookID from the list and compacts the rest.
func (r *Repository) RemoveItem(listID, bookID uint) error {
	return r.withItems(listID, func(store *itemStore) error {
		return ordering.Remove(store, listID, bookID)
	})
}

// ReorderItems puts the list's books in the order of bookIDs.
func (r *Repository) ReorderItems(listID uint, bookIDs []uint) error {
	return r.withItems(listID, func(store *itemStore) error {
		return ordering.Reorder(store, listID, bookIDs)
	})
}

// withItems runs fn in a transaction after checking that the list is still
// active.
func (r *Repository) withItems(listID uint, fn func(*itemStore) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entities.ReadingList{}).
			Where("id = ? AND is_deleted = ?", listID, false).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return fn(&itemStore{tx: tx})
	})
}

// itemStore is the ordering.Store of one transaction.
type itemStore struct {
	tx *gorm.DB
}

var _ ordering.Store = (*itemStore)(nil)

func (s *itemStore) Items(listID uint) ([]ordering.Item, error) {
	var rows []entities.ReadingListItem
	err := s.tx.Select("id", "book_id", "sort_order").
		Where("reading_list_id = ?", listID).
		Order("sort_order ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	items := make([]ordering.Item, len(rows))
	for i, row := range rows {
		items[i] = ordering.Item{ID: row.ID, BookID: row.BookID, Order: row.Order}
	}
	return items, nil
}

func (s *itemStore) Create(listID, bookID uint, order int) (ordering.Item, error) {
	row := entities.ReadingListItem{ReadingListID: listID, BookID: bookID, Order: order}
	if err := s.tx.Omit("Book").Create(&row).Error; err != nil {
		return ordering.Item{}, err
	}
	return ordering.Item{ID: row.ID, BookID: row.BookID, Order: row.Order}, nil
}

func (s *itemStore) Delete(itemID uint) error {
	return s.tx.Delete(&entities.ReadingListItem{}, itemID).Error
}

func (s *itemStore) SetOrder(itemID uint, order int) error {
	return s.tx.Model(&entities.ReadingListItem{}).Where("id = ?", itemID).
		Update("sort_order", order).Error
}
