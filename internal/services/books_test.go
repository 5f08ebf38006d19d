package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/validation"
)

func requireFieldErrors(t *testing.T, err error) validation.FieldErrors {
	t.Helper()
	var fe validation.FieldErrors
	require.True(t, errors.As(err, &fe), "expected FieldErrors, got %v", err)
	return fe
}

func TestBookService_Create(t *testing.T) {
	env := setupEnv(t)

	book, err := env.books.Create(context.Background(), env.alice, validInput("  the Hobbit  "))
	require.NoError(t, err)

	assert.Equal(t, "The Hobbit", book.Title)
	assert.Equal(t, "Frank Herbert, Brian Herbert", book.Authors)
	assert.Equal(t, "fantasy", book.Genre)
	assert.Equal(t, "1937-09-21", book.PublicationDate.Format(validation.DateLayout))
	assert.False(t, book.IsUploaded)
	assert.Nil(t, book.UploadDate)
	assert.True(t, strings.HasSuffix(book.BookFile, "-hobbit.pdf"))

	exists, err := afero.Exists(env.fs, "/media/"+book.BookFile)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []string{"book_create"}, env.auditor.actions)
}

func TestBookService_CreateDefaultsGenre(t *testing.T) {
	env := setupEnv(t)
	in := validInput("Untyped")
	in.Genre = ""

	book, err := env.books.Create(context.Background(), env.alice, in)
	require.NoError(t, err)
	assert.Equal(t, validation.DefaultGenre, book.Genre)
}

func TestBookService_CreateCollectsFieldErrors(t *testing.T) {
	env := setupEnv(t)

	fe := requireFieldErrors(t, func() error {
		_, err := env.books.Create(context.Background(), env.alice, BookInput{
			Title:           "a..b",
			Authors:         "",
			Genre:           "cooking",
			PublicationDate: "2999-01-01",
			Description:     "short",
			File:            &FileUpload{Filename: "notes.txt", Content: strings.NewReader("x")},
		})
		return err
	}())

	for _, field := range []string{"title", "authors", "genre", "publication_date", "description", "book_file"} {
		assert.True(t, fe.Has(field), "missing error for %s: %v", field, fe)
	}
	assert.Equal(t, []string{"Publication date cannot be in the future."}, fe["publication_date"])

	files, err := afero.Glob(env.fs, "/media/books/*")
	require.NoError(t, err)
	assert.Empty(t, files, "nothing is stored when validation fails")
}

func TestBookService_CreateRequiresFile(t *testing.T) {
	env := setupEnv(t)
	in := validInput("No File")
	in.File = nil

	_, err := env.books.Create(context.Background(), env.alice, in)
	fe := requireFieldErrors(t, err)
	assert.Equal(t, []string{msgNoFile}, fe["book_file"])
}

func TestBookService_TitleUniquePerOwner(t *testing.T) {
	env := setupEnv(t)
	env.createDraft(t, env.alice, "Dune")

	_, err := env.books.Create(context.Background(), env.alice, validInput("DUNE"))
	fe := requireFieldErrors(t, err)
	assert.Equal(t, []string{validation.MsgTitleTaken}, fe["title"])

	_, err = env.books.Create(context.Background(), env.bob, validInput("Dune"))
	assert.NoError(t, err, "other owners may reuse a title")
}

func TestBookService_TitleFreedByDelete(t *testing.T) {
	env := setupEnv(t)
	book := env.createDraft(t, env.alice, "Dune")
	require.NoError(t, env.books.Delete(env.alice, book.ID))

	_, err := env.books.Create(context.Background(), env.alice, validInput("Dune"))
	assert.NoError(t, err)
}

func TestBookService_Update(t *testing.T) {
	env := setupEnv(t)
	book := env.createDraft(t, env.alice, "Dune")
	env.createDraft(t, env.alice, "Emma")
	oldKey := book.BookFile

	in := validInput("dune messiah")
	in.File = nil
	updated, err := env.books.Update(context.Background(), env.alice, book.ID, in.Patch())
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, oldKey, updated.BookFile, "file is kept when none is sent")

	_, err = env.books.Update(context.Background(), env.alice, book.ID, validInput("Dune Messiah").Patch())
	require.NoError(t, err, "a book does not collide with its own title")

	_, err = env.books.Update(context.Background(), env.alice, book.ID, validInput("emma").Patch())
	fe := requireFieldErrors(t, err)
	assert.Equal(t, []string{validation.MsgTitleTaken}, fe["title"])

	withFile := validInput("Dune Messiah")
	withFile.File = &FileUpload{Filename: "v2.pdf", Content: strings.NewReader("%PDF-2")}
	updated, err = env.books.Update(context.Background(), env.alice, book.ID, withFile.Patch())
	require.NoError(t, err)
	assert.NotEqual(t, oldKey, updated.BookFile)

	exists, err := afero.Exists(env.fs, "/media/"+oldKey)
	require.NoError(t, err)
	assert.False(t, exists, "replaced file is removed")
}

func TestBookService_UpdateOnlySentFields(t *testing.T) {
	env := setupEnv(t)
	book := env.createDraft(t, env.alice, "Dune")
	env.createDraft(t, env.alice, "Emma")

	description := "  A desert planet and its spice.  "
	genre := "Science-Fiction"
	blank := ""
	taken := "emma"

	tests := []struct {
		name    string
		patch   BookPatch
		check   func(t *testing.T, got *entities.Book)
		errKeys []string
	}{
		{
			name:  "description only",
			patch: BookPatch{Description: &description},
			check: func(t *testing.T, got *entities.Book) {
				assert.Equal(t, "A desert planet and its spice.", got.Description)
				assert.Equal(t, "Dune", got.Title)
				assert.Equal(t, "fantasy", got.Genre)
			},
		},
		{
			name:  "genre only",
			patch: BookPatch{Genre: &genre},
			check: func(t *testing.T, got *entities.Book) {
				assert.Equal(t, "science-fiction", got.Genre)
				assert.Equal(t, "Frank Herbert, Brian Herbert", got.Authors)
				assert.Equal(t, "1937-09-21", got.PublicationDate.Format(validation.DateLayout))
			},
		},
		{
			name:    "blank title sent",
			patch:   BookPatch{Title: &blank},
			errKeys: []string{"title"},
		},
		{
			name:    "title taken by another book",
			patch:   BookPatch{Title: &taken, Description: &description},
			errKeys: []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.books.Update(context.Background(), env.alice, book.ID, tt.patch)
			if len(tt.errKeys) > 0 {
				fe := requireFieldErrors(t, err)
				for _, key := range tt.errKeys {
					assert.True(t, fe.Has(key), "missing error for %s: %v", key, fe)
				}
				assert.False(t, fe.Has("authors"), "fields that were not sent are not validated")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, book.BookFile, got.BookFile)
			tt.check(t, got)
		})
	}
}

func TestBookService_OwnerScoping(t *testing.T) {
	env := setupEnv(t)
	book := env.createDraft(t, env.alice, "Dune")

	_, err := env.books.Update(context.Background(), env.bob, book.ID, validInput("Mine Now").Patch())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.books.Delete(env.bob, book.ID), ErrNotFound)
	_, err = env.books.Upload(context.Background(), env.bob, book.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.books.Delete(env.alice, 9999), ErrBookNotFound)
}

func TestBookService_PublishLifecycle(t *testing.T) {
	env := setupEnv(t)
	book := env.createDraft(t, env.alice, "The Hobbit")

	page, err := env.books.ListCatalog(PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.Count, "drafts are not in the catalog")

	published, err := env.books.Upload(context.Background(), env.alice, book.ID)
	require.NoError(t, err)
	assert.True(t, published.IsUploaded)
	require.NotNil(t, published.UploadDate)

	again, err := env.books.Upload(context.Background(), env.alice, book.ID)
	assert.ErrorIs(t, err, ErrAlreadyUploaded)
	require.NotNil(t, again)
	assert.Equal(t, "The Hobbit", again.Title)

	page, err = env.books.ListCatalog(PageRequest{})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	assert.Equal(t, book.ID, page.Results[0].ID)

	require.NoError(t, env.books.Delete(env.alice, book.ID))

	page, err = env.books.ListCatalog(PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.Count, "deleted books leave the catalog")

	var uploaded bool
	require.NoError(t, env.db.DB.Raw("SELECT is_uploaded FROM books WHERE id = ?", book.ID).Row().Scan(&uploaded))
	assert.True(t, uploaded, "is_uploaded stays set after delete")

	assert.ErrorIs(t, env.books.Delete(env.alice, book.ID), ErrNotFound, "delete is not repeatable")
}

func TestBookService_UploadMissingFile(t *testing.T) {
	env := setupEnv(t)
	book := env.createDraft(t, env.alice, "Lost")
	require.NoError(t, env.fs.Remove("/media/"+book.BookFile))

	_, err := env.books.Upload(context.Background(), env.alice, book.ID)
	assert.ErrorIs(t, err, ErrBookFileMissing)
}

func TestBookService_ListCatalogPaging(t *testing.T) {
	env := setupEnv(t)
	for _, title := range []string{"One", "Two", "Three"} {
		env.createPublished(t, env.alice, title)
	}

	first, err := env.books.ListCatalog(PageRequest{Page: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 3, first.Count)
	require.Len(t, first.Results, 2)
	assert.Equal(t, "Three", first.Results[0].Title, "newest first")
	require.NotNil(t, first.Next)
	assert.Equal(t, 2, *first.Next)
	assert.Nil(t, first.Previous)

	second, err := env.books.ListCatalog(PageRequest{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "One", second.Results[0].Title)
	assert.Nil(t, second.Next)

	_, err = env.books.ListCatalog(PageRequest{Page: 3})
	assert.ErrorIs(t, err, ErrInvalidPage)
}

func TestBookService_ListMine(t *testing.T) {
	env := setupEnv(t)
	env.createDraft(t, env.alice, "Draft")
	env.createPublished(t, env.alice, "Published")
	gone := env.createDraft(t, env.alice, "Gone")
	require.NoError(t, env.books.Delete(env.alice, gone.ID))
	env.createDraft(t, env.bob, "Not Mine")

	books, err := env.books.ListMine(env.alice)
	require.NoError(t, err)
	var titles []string
	for _, b := range books {
		titles = append(titles, b.Title)
	}
	assert.ElementsMatch(t, []string{"Draft", "Published"}, titles)
}

func TestBookService_OpenFile(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, env.alice, "Draft")
	published := env.createPublished(t, env.alice, "Published")

	tests := []struct {
		name    string
		userID  uint
		bookID  uint
		wantErr error
	}{
		{"owner reads draft", env.alice, draft.ID, nil},
		{"other user cannot read draft", env.bob, draft.ID, ErrNotFound},
		{"anyone reads catalog book", env.bob, published.ID, nil},
		{"missing book", env.bob, 9999, ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc, book, err := env.books.OpenFile(context.Background(), tt.userID, tt.bookID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer rc.Close()
			data, err := io.ReadAll(rc)
			require.NoError(t, err)
			assert.Equal(t, "%PDF-1.4", string(data))
			assert.Equal(t, tt.bookID, book.ID)
		})
	}
}
