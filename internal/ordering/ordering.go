// Package ordering keeps the items of one reading list in a dense 1..N
// order across appends, removals and reorders.
//
// The functions here read and write through a Store and assume the caller
// runs each of them inside a single transaction, so that a rejected call
// leaves no partial state and concurrent calls on one list serialize.
package ordering

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicate = errors.New("book is already in this reading list")
	ErrNotFound  = errors.New("book is not in this reading list")
	ErrMismatch  = errors.New("book ids must list every book in the reading list exactly once")
)

// Item is the ordering view of a reading list entry.
type Item struct {
	ID     uint
	BookID uint
	Order  int
}

// Store is the persistence the engine needs, scoped to the transaction the
// caller opened.
type Store interface {
	// Items returns the list's items sorted by Order, then ID.
	Items(listID uint) ([]Item, error)
	Create(listID, bookID uint, order int) (Item, error)
	Delete(itemID uint) error
	SetOrder(itemID uint, order int) error
}

// Add appends bookID to the end of the list.
func Add(s Store, listID, bookID uint) (Item, error) {
	items, err := s.Items(listID)
	if err != nil {
		return Item{}, fmt.Errorf("failed to load items: %w", err)
	}
	if indexOf(items, bookID) >= 0 {
		return Item{}, ErrDuplicate
	}
	return s.Create(listID, bookID, len(items)+1)
}

// Remove deletes bookID from the list and closes the gap it leaves.
func Remove(s Store, listID, bookID uint) error {
	items, err := s.Items(listID)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}
	idx := indexOf(items, bookID)
	if idx < 0 {
		return ErrNotFound
	}
	if err := s.Delete(items[idx].ID); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	remaining := append(items[:idx:idx], items[idx+1:]...)
	return apply(s, Compact(remaining))
}

// Reorder sets the position of every item to its 1-based index in bookIDs.
// bookIDs must name each book of the list exactly once; anything else is
// rejected before any write.
func Reorder(s Store, listID uint, bookIDs []uint) error {
	items, err := s.Items(listID)
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}
	changes, err := PlanReorder(items, bookIDs)
	if err != nil {
		return err
	}
	return apply(s, changes)
}

// Change is a pending order update for one item.
type Change struct {
	ItemID uint
	Order  int
}

// Compact returns the updates that renumber items 1..N in their current
// order. Items already at the right position are left out.
func Compact(items []Item) []Change {
	sorted := sortedCopy(items)
	var changes []Change
	for i, item := range sorted {
		if item.Order != i+1 {
			changes = append(changes, Change{ItemID: item.ID, Order: i + 1})
		}
	}
	return changes
}

// PlanReorder validates bookIDs against items and returns the updates that
// put the list in that order.
func PlanReorder(items []Item, bookIDs []uint) ([]Change, error) {
	if len(bookIDs) != len(items) {
		return nil, ErrMismatch
	}

	byBook := make(map[uint]Item, len(items))
	for _, item := range items {
		byBook[item.BookID] = item
	}

	seen := make(map[uint]struct{}, len(bookIDs))
	var changes []Change
	for i, bookID := range bookIDs {
		item, ok := byBook[bookID]
		if !ok {
			return nil, ErrMismatch
		}
		if _, dup := seen[bookID]; dup {
			return nil, ErrMismatch
		}
		seen[bookID] = struct{}{}

		if item.Order != i+1 {
			changes = append(changes, Change{ItemID: item.ID, Order: i + 1})
		}
	}
	return changes, nil
}

// IsDense reports whether the orders of items are exactly 1..len(items).
func IsDense(items []Item) bool {
	seen := make([]bool, len(items)+1)
	for _, item := range items {
		if item.Order < 1 || item.Order > len(items) || seen[item.Order] {
			return false
		}
		seen[item.Order] = true
	}
	return true
}

func apply(s Store, changes []Change) error {
	for _, c := range changes {
		if err := s.SetOrder(c.ItemID, c.Order); err != nil {
			return fmt.Errorf("failed to update item %d order: %w", c.ItemID, err)
		}
	}
	return nil
}

func indexOf(items []Item, bookID uint) int {
	for i, item := range items {
		if item.BookID == bookID {
			return i
		}
	}
	return -1
}

func sortedCopy(items []Item) []Item {
	sorted := make([]Item, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Order != sorted[j].Order {
			return sorted[i].Order < sorted[j].Order
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}
