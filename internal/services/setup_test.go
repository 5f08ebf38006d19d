package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/readinglists"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage"
)

type recordingAuditor struct {
	actions []string
}

func (a *recordingAuditor) LogBook(userID uint, action string, bookID uint, title string, err error) {
	if err == nil {
		a.actions = append(a.actions, "book_"+action)
	}
}

func (a *recordingAuditor) LogReadingList(userID uint, action string, listID uint, name string, err error) {
	if err == nil {
		a.actions = append(a.actions, "reading_list_"+action)
	}
}

type testEnv struct {
	db      *database.Database
	fs      afero.Fs
	books   *BookService
	lists   *ReadingListService
	auditor *recordingAuditor
	alice   uint
	bob     uint
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "services.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	fsys := afero.NewMemMapFs()
	files, err := storage.NewLocalClient(fsys, "/media")
	require.NoError(t, err)

	bookRepo := books.NewRepository(db.DB)
	auditor := &recordingAuditor{}
	env := &testEnv{
		db:      db,
		fs:      fsys,
		books:   NewBookService(bookRepo, files, Paginator{DefaultSize: 2, MaxSize: 3}, auditor),
		lists:   NewReadingListService(readinglists.NewRepository(db.DB), bookRepo, auditor),
		auditor: auditor,
	}
	env.books.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	env.alice = env.createUser(t, "alice@example.com", "alice")
	env.bob = env.createUser(t, "bob@example.com", "bob")
	return env
}

func (e *testEnv) createUser(t *testing.T, email, username string) uint {
	t.Helper()
	user := &entities.User{Email: email, Username: username, PasswordHash: "x"}
	require.NoError(t, e.db.DB.Create(user).Error)
	return user.ID
}

func validInput(title string) BookInput {
	return BookInput{
		Title:           title,
		Authors:         "frank herbert,brian herbert",
		Genre:           "Fantasy",
		PublicationDate: "1937-09-21",
		Description:     "A hobbit goes on an unexpected journey.",
		File:            &FileUpload{Filename: "hobbit.pdf", Content: strings.NewReader("%PDF-1.4")},
	}
}

// createPublished creates and publishes a book owned by userID.
func (e *testEnv) createPublished(t *testing.T, userID uint, title string) *entities.Book {
	t.Helper()
	book := e.createDraft(t, userID, title)
	book, err := e.books.Upload(context.Background(), userID, book.ID)
	require.NoError(t, err)
	return book
}

func (e *testEnv) createDraft(t *testing.T, userID uint, title string) *entities.Book {
	t.Helper()
	book, err := e.books.Create(context.Background(), userID, validInput(title))
	require.NoError(t, err)
	return book
}
