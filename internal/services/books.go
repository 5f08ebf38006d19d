package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/access"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage"
	"github.com/mrlokans/bookshelf/internal/validation"
)

const (
	maxTitleLength   = 225
	maxAuthorsLength = 255
)

// BookStore is the book persistence the service needs.
type BookStore interface {
	Create(book *entities.Book) error
	Save(book *entities.Book) error
	GetByID(id uint) (*entities.Book, error)
	GetActiveForOwner(id, userID uint) (*entities.Book, error)
	TitleTaken(userID uint, title string, excludeID uint) (bool, error)
	ListCatalog(limit, offset int) ([]entities.Book, int64, error)
	ListForOwner(userID uint) ([]entities.Book, error)
}

// FileUpload is an uploaded book file.
type FileUpload struct {
	Filename string
	Content  io.Reader
}

// BookInput carries the raw fields of a create request.
type BookInput struct {
	Title           string
	Authors         string
	Genre           string
	PublicationDate string
	Description     string
	File            *FileUpload
}

// Patch turns a full input into an update that replaces every field.
func (in BookInput) Patch() BookPatch {
	return BookPatch{
		Title:           &in.Title,
		Authors:         &in.Authors,
		Genre:           &in.Genre,
		PublicationDate: &in.PublicationDate,
		Description:     &in.Description,
		File:            in.File,
	}
}

// BookPatch carries the fields of an update request. Nil fields keep their
// stored value; a nil File keeps the stored file.
type BookPatch struct {
	Title           *string
	Authors         *string
	Genre           *string
	PublicationDate *string
	Description     *string
	File            *FileUpload
}

// BookService implements book management and the public catalog.
type BookService struct {
	books     BookStore
	files     storage.Client
	paginator Paginator
	auditor   Auditor
	now       func() time.Time
}

// NewBookService creates a BookService. auditor may be nil.
func NewBookService(books BookStore, files storage.Client, paginator Paginator, auditor Auditor) *BookService {
	return &BookService{
		books:     books,
		files:     files,
		paginator: paginator,
		auditor:   auditor,
		now:       time.Now,
	}
}

// bookFields is a validated BookPatch. Nil fields were not sent.
type bookFields struct {
	title           *string
	authors         *string
	genre           *string
	publicationDate *time.Time
	description     *string
}

func (f bookFields) apply(book *entities.Book) {
	if f.title != nil {
		book.Title = *f.title
	}
	if f.authors != nil {
		book.Authors = *f.authors
	}
	if f.genre != nil {
		book.Genre = *f.genre
	}
	if f.publicationDate != nil {
		book.PublicationDate = *f.publicationDate
	}
	if f.description != nil {
		book.Description = *f.description
	}
}

// validate checks every field present in in and returns all problems at
// once. excludeID is the book being updated, 0 on create.
func (s *BookService) validate(userID, excludeID uint, in BookPatch, fileRequired bool) (bookFields, error) {
	var f bookFields
	errs := validation.FieldErrors{}

	if in.Title != nil {
		switch title, err := validation.Title(*in.Title); {
		case strings.TrimSpace(*in.Title) == "":
			errs.Add("title", msgBlank)
		case !errs.Check("title", err):
		case utf8.RuneCountInString(title) > maxTitleLength:
			errs.Add("title", fmt.Sprintf(msgTooLong, maxTitleLength))
		default:
			taken, err := s.books.TitleTaken(userID, title, excludeID)
			if err != nil {
				return f, fmt.Errorf("failed to check title: %w", err)
			}
			if taken {
				errs.Add("title", validation.MsgTitleTaken)
			}
			f.title = &title
		}
	}

	if in.Authors != nil {
		switch authors, err := validation.Authors(*in.Authors); {
		case strings.TrimSpace(*in.Authors) == "":
			errs.Add("authors", msgBlank)
		case !errs.Check("authors", err):
		case utf8.RuneCountInString(authors) > maxAuthorsLength:
			errs.Add("authors", fmt.Sprintf(msgTooLong, maxAuthorsLength))
		default:
			f.authors = &authors
		}
	}

	if in.Genre != nil {
		if strings.TrimSpace(*in.Genre) == "" {
			genre := validation.DefaultGenre
			f.genre = &genre
		} else if genre, err := validation.Genre(*in.Genre); errs.Check("genre", err) {
			f.genre = &genre
		}
	}

	if in.PublicationDate != nil {
		if strings.TrimSpace(*in.PublicationDate) == "" {
			errs.Add("publication_date", msgRequired)
		} else if date, err := validation.ParseDate(*in.PublicationDate); errs.Check("publication_date", err) {
			date, err = validation.PublicationDate(date, s.now())
			if errs.Check("publication_date", err) {
				f.publicationDate = &date
			}
		}
	}

	if in.Description != nil {
		if description, err := validation.Description(*in.Description); errs.Check("description", err) {
			f.description = &description
		}
	}

	if in.File == nil {
		if fileRequired {
			errs.Add("book_file", msgNoFile)
		}
	} else {
		_, err := validation.PDFFile(in.File.Filename)
		errs.Check("book_file", err)
	}

	return f, errs.Err()
}

// Create validates in and stores a new draft book owned by userID.
func (s *BookService) Create(ctx context.Context, userID uint, in BookInput) (*entities.Book, error) {
	fields, err := s.validate(userID, 0, in.Patch(), true)
	if err != nil {
		return nil, err
	}

	key, err := s.storeFile(ctx, in.File)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{UserID: userID, BookFile: key}
	fields.apply(book)

	if err := s.books.Create(book); err != nil {
		s.discardFile(key)
		s.logBook(userID, "create", 0, book.Title, err)
		if database.IsUniqueViolation(err) {
			return nil, validation.FieldErrors{"title": {validation.MsgTitleTaken}}
		}
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.logBook(userID, "create", book.ID, book.Title, nil)
	return book, nil
}

// Update changes the fields of an owned, non-deleted book that in carries.
// A new file replaces the stored one; without one the existing file is kept.
func (s *BookService) Update(ctx context.Context, userID, bookID uint, in BookPatch) (*entities.Book, error) {
	book, err := s.ownedBook(userID, bookID)
	if err != nil {
		return nil, err
	}

	fields, err := s.validate(userID, book.ID, in, book.BookFile == "")
	if err != nil {
		return nil, err
	}

	oldKey := book.BookFile
	newKey, err := s.storeFile(ctx, in.File)
	if err != nil {
		return nil, err
	}

	fields.apply(book)
	if newKey != "" {
		book.BookFile = newKey
	}

	if err := s.books.Save(book); err != nil {
		s.discardFile(newKey)
		s.logBook(userID, "update", book.ID, book.Title, err)
		if database.IsUniqueViolation(err) {
			return nil, validation.FieldErrors{"title": {validation.MsgTitleTaken}}
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}

	if newKey != "" {
		s.discardFile(oldKey)
	}
	s.logBook(userID, "update", book.ID, book.Title, nil)
	return book, nil
}

// Delete soft-deletes an owned book. It drops out of the catalog and out of
// every reading list view.
func (s *BookService) Delete(userID, bookID uint) error {
	book, err := s.ownedBook(userID, bookID)
	if err != nil {
		return err
	}
	if err := book.SoftDelete(); err != nil {
		return ErrBookNotFound
	}
	if err := s.books.Save(book); err != nil {
		s.logBook(userID, "delete", book.ID, book.Title, err)
		return fmt.Errorf("failed to delete book: %w", err)
	}
	s.logBook(userID, "delete", book.ID, book.Title, nil)
	return nil
}

// Upload publishes an owned draft into the catalog. The returned book is
// set even on ErrAlreadyUploaded so callers can report which one it was.
func (s *BookService) Upload(ctx context.Context, userID, bookID uint) (*entities.Book, error) {
	book, err := s.ownedBook(userID, bookID)
	if err != nil {
		return nil, err
	}
	if book.IsUploaded {
		return book, ErrAlreadyUploaded
	}
	if book.BookFile == "" {
		return book, ErrBookFileMissing
	}
	exists, err := s.files.Exists(ctx, book.BookFile)
	if err != nil {
		return nil, fmt.Errorf("failed to check book file: %w", err)
	}
	if !exists {
		return book, ErrBookFileMissing
	}

	if err := book.Publish(s.now()); err != nil {
		return book, err
	}
	if err := s.books.Save(book); err != nil {
		s.logBook(userID, "upload", book.ID, book.Title, err)
		return nil, fmt.Errorf("failed to publish book: %w", err)
	}

	s.logBook(userID, "upload", book.ID, book.Title, nil)
	return book, nil
}

// ListCatalog returns a page of published, non-deleted books, newest first.
func (s *BookService) ListCatalog(req PageRequest) (*Page[entities.Book], error) {
	req, limit, offset, err := s.paginator.Window(req)
	if err != nil {
		return nil, err
	}
	books, total, err := s.books.ListCatalog(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}
	return NewPage(req, total, books)
}

// ListMine returns the caller's non-deleted books, drafts included.
func (s *BookService) ListMine(userID uint) ([]entities.Book, error) {
	books, err := s.books.ListForOwner(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return books, nil
}

// OpenFile opens the stored file of a catalog book or of a non-deleted book
// the caller owns. The caller must close the reader.
func (s *BookService) OpenFile(ctx context.Context, userID, bookID uint) (io.ReadCloser, *entities.Book, error) {
	book, err := s.books.GetByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrBookNotFound
		}
		return nil, nil, err
	}

	ownDraft := !book.IsDeleted && access.CanMutateBook(userID, book)
	if !access.CanViewBookInCatalog(book) && !ownDraft {
		return nil, nil, ErrBookNotFound
	}
	if book.BookFile == "" {
		return nil, book, ErrBookFileMissing
	}

	rc, err := s.files.Download(ctx, book.BookFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, book, ErrBookFileMissing
		}
		return nil, book, fmt.Errorf("failed to open book file: %w", err)
	}
	return rc, book, nil
}

// ownedBook loads a non-deleted book userID may mutate.
func (s *BookService) ownedBook(userID, bookID uint) (*entities.Book, error) {
	book, err := s.books.GetActiveForOwner(bookID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	if !access.CanMutateBook(userID, book) {
		return nil, ErrBookNotFound
	}
	return book, nil
}

// storeFile writes an upload under a fresh key. Returns "" for no file.
func (s *BookService) storeFile(ctx context.Context, file *FileUpload) (string, error) {
	if file == nil {
		return "", nil
	}
	key := storage.BookFileKey(file.Filename)
	if err := s.files.Upload(ctx, key, file.Content); err != nil {
		return "", fmt.Errorf("failed to store book file: %w", err)
	}
	return key, nil
}

// discardFile removes a stored file that no book references.
func (s *BookService) discardFile(key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(context.Background(), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		log.Printf("Failed to remove orphaned book file %s: %v", key, err)
	}
}

func (s *BookService) logBook(userID uint, action string, bookID uint, title string, err error) {
	if s.auditor != nil {
		s.auditor.LogBook(userID, action, bookID, title, err)
	}
}
