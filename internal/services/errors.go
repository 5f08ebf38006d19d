package services

import (
	"errors"
	"fmt"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/ordering"
)

// ErrNotFound covers both missing entities and entities the caller may not
// touch. Callers cannot tell the two apart.
var ErrNotFound = errors.New("not found")

var (
	ErrBookNotFound = fmt.Errorf("book %w", ErrNotFound)
	ErrListNotFound = fmt.Errorf("reading list %w", ErrNotFound)
	ErrItemNotFound = fmt.Errorf("reading list item %w", ErrNotFound)
)

var (
	ErrAlreadyUploaded = entities.ErrAlreadyUploaded
	ErrBookFileMissing = errors.New("book file is missing")
	ErrDuplicateItem   = ordering.ErrDuplicate
	ErrReorderMismatch = ordering.ErrMismatch
	ErrInvalidPage     = errors.New("invalid page")
)

// Messages shared by validation and the HTTP layer.
const (
	msgBlank    = "This field may not be blank."
	msgRequired = "This field is required."
	msgNoFile   = "No file was submitted."
	msgTooLong  = "Ensure this field has no more than %d characters."
)

// Auditor receives book and reading list events. Optional.
type Auditor interface {
	LogBook(userID uint, action string, bookID uint, title string, err error)
	LogReadingList(userID uint, action string, listID uint, name string, err error)
}
