package entities

import (
	"errors"
	"time"
)

var ErrReadingListDeleted = errors.New("reading list is deleted")

type ReadingList struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"index;not null" json:"-"`
	Name      string            `gorm:"size:50;not null" json:"name"`
	IsDeleted bool              `gorm:"index;not null;default:false" json:"is_deleted"`
	User      User              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Items     []ReadingListItem `gorm:"foreignKey:ReadingListID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time         `json:"created_at"`
}

func (ReadingList) TableName() string {
	return "reading_lists"
}

// SoftDelete marks the list deleted. Items are removed by the repository in
// the same transaction.
func (l *ReadingList) SoftDelete() error {
	if l.IsDeleted {
		return ErrReadingListDeleted
	}
	l.IsDeleted = true
	return nil
}

// ReadingListItem places one book at a 1-based position inside one list.
// Positions of a list's items always form the dense sequence 1..N.
type ReadingListItem struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ReadingListID uint      `gorm:"uniqueIndex:idx_reading_list_book;not null" json:"reading_list_id"`
	BookID        uint      `gorm:"uniqueIndex:idx_reading_list_book;index;not null" json:"book_id"`
	Order         int       `gorm:"column:sort_order;not null" json:"order"`
	Book          Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
}

func (ReadingListItem) TableName() string {
	return "reading_list_items"
}
