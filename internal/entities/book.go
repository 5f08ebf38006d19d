package entities

import (
	"errors"
	"time"
)

var (
	ErrAlreadyUploaded = errors.New("book is already uploaded")
	ErrBookDeleted     = errors.New("book is deleted")
)

// Book is a user-owned catalog entry. It starts as a draft, becomes visible
// in the catalog once uploaded, and leaves it for good when soft-deleted.
type Book struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"index;not null" json:"uploaded_by"`
	Title           string     `gorm:"size:225;not null" json:"title"`
	Authors         string     `gorm:"size:255;not null" json:"authors"`
	Genre           string     `gorm:"size:100;not null;default:'other'" json:"genre"`
	PublicationDate time.Time  `gorm:"type:date;not null" json:"publication_date"`
	Description     string     `gorm:"type:text" json:"description"`
	BookFile        string     `gorm:"size:1024" json:"book_file"`
	IsUploaded      bool       `gorm:"not null;default:false" json:"is_uploaded"`
	UploadDate      *time.Time `json:"upload_date"`
	IsDeleted       bool       `gorm:"index;not null;default:false" json:"is_deleted"`
	User            User       `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt       time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (Book) TableName() string {
	return "books"
}

// CatalogVisible reports whether the book may be listed to every user.
func (b *Book) CatalogVisible() bool {
	return !b.IsDeleted && b.IsUploaded
}

// Publish moves a draft into the catalog. Publishing twice is an error, not a no-op.
func (b *Book) Publish(now time.Time) error {
	if b.IsDeleted {
		return ErrBookDeleted
	}
	if b.IsUploaded {
		return ErrAlreadyUploaded
	}
	b.IsUploaded = true
	b.UploadDate = &now
	return nil
}

// SoftDelete marks the book deleted. There is no way back.
func (b *Book) SoftDelete() error {
	if b.IsDeleted {
		return ErrBookDeleted
	}
	b.IsDeleted = true
	return nil
}
