package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/access"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/ordering"
	"github.com/mrlokans/bookshelf/internal/validation"
)

// ReadingListStore is the reading list persistence the service needs. Item
// mutations must be atomic.
type ReadingListStore interface {
	Create(list *entities.ReadingList) error
	GetActiveForOwner(id, userID uint) (*entities.ReadingList, error)
	ListForOwner(userID uint) ([]entities.ReadingList, error)
	NameTaken(userID uint, name string) (bool, error)
	SoftDelete(list *entities.ReadingList) error
	Items(listID uint) ([]entities.ReadingListItem, error)
	AddItem(listID, bookID uint) (*entities.ReadingListItem, error)
	RemoveItem(listID, bookID uint) error
	ReorderItems(listID uint, bookIDs []uint) error
}

// BookLookup finds a book by ID regardless of owner.
type BookLookup interface {
	GetByID(id uint) (*entities.Book, error)
}

// ListItem is one position of a reading list as shown to its owner. Book is
// nil when the book has since been deleted or unpublished.
type ListItem struct {
	Order     int
	BookID    uint
	Available bool
	Book      *entities.Book
}

// ReadingListService implements reading lists and their ordered items.
type ReadingListService struct {
	lists   ReadingListStore
	books   BookLookup
	auditor Auditor
}

// NewReadingListService creates a ReadingListService. auditor may be nil.
func NewReadingListService(lists ReadingListStore, books BookLookup, auditor Auditor) *ReadingListService {
	return &ReadingListService{lists: lists, books: books, auditor: auditor}
}

// Create validates name and stores a new list for userID.
func (s *ReadingListService) Create(userID uint, rawName string) (*entities.ReadingList, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, validation.FieldErrors{"name": {msgBlank}}
	}
	name, err := validation.ReadingListName(rawName)
	if err != nil {
		return nil, validation.FieldErrors{"name": {err.Error()}}
	}

	taken, err := s.lists.NameTaken(userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check name: %w", err)
	}
	if taken {
		return nil, validation.FieldErrors{"name": {validation.MsgReadingListTaken}}
	}

	list := &entities.ReadingList{UserID: userID, Name: name}
	if err := s.lists.Create(list); err != nil {
		s.log(userID, "create", 0, name, err)
		if database.IsUniqueViolation(err) {
			return nil, validation.FieldErrors{"name": {validation.MsgReadingListTaken}}
		}
		return nil, fmt.Errorf("failed to create reading list: %w", err)
	}

	s.log(userID, "create", list.ID, list.Name, nil)
	return list, nil
}

// Delete soft-deletes an owned list and removes its items.
func (s *ReadingListService) Delete(userID, listID uint) error {
	list, err := s.ownedList(userID, listID)
	if err != nil {
		return err
	}
	if err := s.lists.SoftDelete(list); err != nil {
		if errors.Is(err, entities.ErrReadingListDeleted) {
			return ErrListNotFound
		}
		s.log(userID, "delete", list.ID, list.Name, err)
		return fmt.Errorf("failed to delete reading list: %w", err)
	}
	s.log(userID, "delete", list.ID, list.Name, nil)
	return nil
}

// ListMine returns the caller's non-deleted lists.
func (s *ReadingListService) ListMine(userID uint) ([]entities.ReadingList, error) {
	lists, err := s.lists.ListForOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reading lists: %w", err)
	}
	return lists, nil
}

// AddItem appends a catalog book to an owned list.
func (s *ReadingListService) AddItem(userID, listID, bookID uint) (*entities.ReadingListItem, error) {
	list, err := s.ownedList(userID, listID)
	if err != nil {
		return nil, err
	}

	book, err := s.books.GetByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	if !access.CanAddBookToList(userID, list, book) {
		return nil, ErrBookNotFound
	}

	item, err := s.lists.AddItem(list.ID, book.ID)
	if err != nil {
		return nil, s.itemError(err)
	}
	item.Book = *book
	s.log(userID, "add_item", list.ID, list.Name+": "+book.Title, nil)
	return item, nil
}

// RemoveItem takes a book out of an owned list and closes the gap.
func (s *ReadingListService) RemoveItem(userID, listID, bookID uint) error {
	list, err := s.ownedList(userID, listID)
	if err != nil {
		return err
	}
	if err := s.lists.RemoveItem(list.ID, bookID); err != nil {
		return s.itemError(err)
	}
	s.log(userID, "remove_item", list.ID, list.Name, nil)
	return nil
}

// Reorder puts the list's books in the order given. bookIDs must name
// every book of the list exactly once.
func (s *ReadingListService) Reorder(userID, listID uint, bookIDs []uint) error {
	list, err := s.ownedList(userID, listID)
	if err != nil {
		return err
	}
	if err := s.lists.ReorderItems(list.ID, bookIDs); err != nil {
		return s.itemError(err)
	}
	s.log(userID, "reorder", list.ID, list.Name, nil)
	return nil
}

// ListItems returns every item of an owned list in order.
func (s *ReadingListService) ListItems(userID, listID uint) ([]ListItem, error) {
	list, err := s.ownedList(userID, listID)
	if err != nil {
		return nil, err
	}
	rows, err := s.lists.Items(list.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	items := make([]ListItem, len(rows))
	for i := range rows {
		items[i] = ListItem{Order: rows[i].Order, BookID: rows[i].BookID}
		if access.CanViewBookInCatalog(&rows[i].Book) {
			items[i].Available = true
			items[i].Book = &rows[i].Book
		}
	}
	return items, nil
}

func (s *ReadingListService) ownedList(userID, listID uint) (*entities.ReadingList, error) {
	list, err := s.lists.GetActiveForOwner(listID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("failed to load reading list: %w", err)
	}
	if !access.CanMutateReadingList(userID, list) {
		return nil, ErrListNotFound
	}
	return list, nil
}

// itemError maps store errors of item mutations onto service errors.
func (s *ReadingListService) itemError(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// the list was deleted mid-operation
		return ErrListNotFound
	case errors.Is(err, ordering.ErrNotFound):
		return ErrItemNotFound
	case errors.Is(err, ordering.ErrDuplicate), errors.Is(err, ordering.ErrMismatch):
		return err
	default:
		return fmt.Errorf("failed to update reading list items: %w", err)
	}
}

func (s *ReadingListService) log(userID uint, action string, listID uint, name string, err error) {
	if s.auditor != nil {
		s.auditor.LogReadingList(userID, action, listID, name, err)
	}
}
