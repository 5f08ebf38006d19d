package http

import (
	"fmt"
	"time"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/validation"
)

const dateLayout = "2006-01-02"

// BookResponse is the owner's view of a book.
type BookResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Authors         string     `json:"authors"`
	Genre           string     `json:"genre"`
	GenreDisplay    string     `json:"genre_display"`
	PublicationDate string     `json:"publication_date"`
	Description     string     `json:"description"`
	BookFile        string     `json:"book_file,omitempty"`
	FileName        string     `json:"file_name,omitempty"`
	UploadedBy      uint       `json:"uploaded_by"`
	IsUploaded      bool       `json:"is_uploaded"`
	UploadDate      *time.Time `json:"upload_date"`
	CreatedAt       time.Time  `json:"created_at"`
}

// CatalogBookResponse is a book as listed to every user.
type CatalogBookResponse struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Authors         string     `json:"authors"`
	Genre           string     `json:"genre"`
	GenreDisplay    string     `json:"genre_display"`
	PublicationDate string     `json:"publication_date"`
	Description     string     `json:"description"`
	BookFile        string     `json:"book_file,omitempty"`
	UploadDate      *time.Time `json:"upload_date"`
}

type uploadResponse struct {
	BookID uint   `json:"book_id"`
	Title  string `json:"title"`
}

type userResponse struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type loginResponse struct {
	Refresh  string `json:"refresh"`
	Access   string `json:"access"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// ReadingListResponse is one of the caller's reading lists.
type ReadingListResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// ReadingListItemResponse is a positioned entry of a reading list. Book is
// omitted when the book left the catalog.
type ReadingListItemResponse struct {
	Order     int                  `json:"order"`
	BookID    uint                 `json:"book_id"`
	Available bool                 `json:"available"`
	Book      *CatalogBookResponse `json:"book,omitempty"`
}

// ActivityResponse is one audit event of the caller.
type ActivityResponse struct {
	ID          uint      `json:"id"`
	EventType   string    `json:"event_type"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	EntityType  string    `json:"entity_type,omitempty"`
	EntityID    *uint     `json:"entity_id,omitempty"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func bookFileURL(book *entities.Book) string {
	if book.BookFile == "" {
		return ""
	}
	return fmt.Sprintf("/api/books/%d/file", book.ID)
}

func newBookResponse(book *entities.Book) BookResponse {
	resp := BookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Authors:         book.Authors,
		Genre:           book.Genre,
		GenreDisplay:    validation.GenreLabel(book.Genre),
		PublicationDate: book.PublicationDate.Format(dateLayout),
		Description:     book.Description,
		BookFile:        bookFileURL(book),
		UploadedBy:      book.UserID,
		IsUploaded:      book.IsUploaded,
		UploadDate:      book.UploadDate,
		CreatedAt:       book.CreatedAt,
	}
	if book.BookFile != "" {
		resp.FileName = storage.DisplayName(book.BookFile)
	}
	return resp
}

func newCatalogBookResponse(book entities.Book) CatalogBookResponse {
	return CatalogBookResponse{
		ID:              book.ID,
		Title:           book.Title,
		Authors:         book.Authors,
		Genre:           book.Genre,
		GenreDisplay:    validation.GenreLabel(book.Genre),
		PublicationDate: book.PublicationDate.Format(dateLayout),
		Description:     book.Description,
		BookFile:        bookFileURL(&book),
		UploadDate:      book.UploadDate,
	}
}

func newReadingListResponse(list entities.ReadingList) ReadingListResponse {
	return ReadingListResponse{ID: list.ID, Name: list.Name, CreatedAt: list.CreatedAt}
}

func newReadingListItemResponse(item services.ListItem) ReadingListItemResponse {
	resp := ReadingListItemResponse{Order: item.Order, BookID: item.BookID, Available: item.Available}
	if item.Available && item.Book != nil {
		book := newCatalogBookResponse(*item.Book)
		resp.Book = &book
	}
	return resp
}

func newActivityResponse(event entities.AuditEvent) ActivityResponse {
	return ActivityResponse{
		ID:          event.ID,
		EventType:   string(event.EventType),
		Action:      event.Action,
		Description: event.Description,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Status:      string(event.Status),
		Error:       event.ErrorMsg,
		CreatedAt:   event.CreatedAt,
	}
}
