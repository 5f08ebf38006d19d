package http

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/services"
	"github.com/mrlokans/bookshelf/internal/storage"
)

const bookFileField = "book_file"

type BooksController struct {
	books *services.BookService
}

func NewBooksController(books *services.BookService) *BooksController {
	return &BooksController{books: books}
}

// Create stores a new draft book from a multipart form.
// POST /api/books/create
func (bc *BooksController) Create(c *gin.Context) {
	in, closeFile, err := bookInputFromForm(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	defer closeFile()

	book, err := bc.books.Create(c.Request.Context(), auth.GetUserID(c), in)
	if err != nil {
		if respondFieldErrorsOr(c, err, "Validation failed") {
			return
		}
		respondInternalError(c, err, "create book")
		return
	}

	respondSuccess(c, http.StatusCreated, "Book created successfully", newBookResponse(book))
}

// Update changes the fields sent for one of the caller's books.
// PUT /api/books/update/:id
func (bc *BooksController) Update(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	in, closeFile, err := bookPatchFromForm(c)
	if err != nil {
		respondBindError(c, err)
		return
	}
	defer closeFile()

	book, err := bc.books.Update(c.Request.Context(), auth.GetUserID(c), bookID, in)
	if err != nil {
		if respondFieldErrorsOr(c, err, "Validation failed") {
			return
		}
		if errors.Is(err, services.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Book not found or you do not have permission to update it.")
			return
		}
		respondInternalError(c, err, "update book")
		return
	}

	respondSuccess(c, http.StatusOK, "Book updated successfully", newBookResponse(book))
}

// Delete soft-deletes one of the caller's books.
// DELETE /api/books/delete/:id
func (bc *BooksController) Delete(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.books.Delete(auth.GetUserID(c), bookID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(c, http.StatusNotFound, "Book not found or already deleted.")
			return
		}
		respondInternalError(c, err, "delete book")
		return
	}

	respondSuccess(c, http.StatusOK, "Book deleted successfully.", nil)
}

// Upload publishes one of the caller's drafts into the catalog.
// PATCH /api/books/upload/:id
func (bc *BooksController) Upload(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.Upload(c.Request.Context(), auth.GetUserID(c), bookID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrAlreadyUploaded):
			c.JSON(http.StatusBadRequest, Response{
				Status:  StatusInfo,
				Message: "Book is already uploaded.",
				Data:    uploadResponse{BookID: book.ID, Title: book.Title},
			})
		case errors.Is(err, services.ErrBookFileMissing):
			respondError(c, http.StatusBadRequest, "Failed to upload. Book file is missing, please check the file before publishing.")
		case errors.Is(err, services.ErrNotFound):
			respondError(c, http.StatusNotFound, "Book not found or you're not authorized.")
		default:
			respondInternalError(c, err, "upload book")
		}
		return
	}

	respondSuccess(c, http.StatusOK, "Book uploaded successfully.", uploadResponse{BookID: book.ID, Title: book.Title})
}

// List returns a page of the public catalog.
// GET /api/books/list?page=N&page_size=M
func (bc *BooksController) List(c *gin.Context) {
	req, ok := parsePageRequest(c)
	if !ok {
		return
	}

	page, err := bc.books.ListCatalog(req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPage) {
			respondError(c, http.StatusNotFound, "Invalid page.")
			return
		}
		respondInternalError(c, err, "list catalog")
		return
	}

	respondSuccess(c, http.StatusOK, "Books fetched successfully.", newPageResponse(c, page, newCatalogBookResponse))
}

// Mine returns the caller's drafts and published books.
// GET /api/books/mine
func (bc *BooksController) Mine(c *gin.Context) {
	books, err := bc.books.ListMine(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list own books")
		return
	}

	results := make([]BookResponse, len(books))
	for i := range books {
		results[i] = newBookResponse(&books[i])
	}
	respondSuccess(c, http.StatusOK, "Books fetched successfully.", results)
}

// File streams a book's stored file.
// GET /api/books/:id/file
func (bc *BooksController) File(c *gin.Context) {
	bookID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	rc, book, err := bc.books.OpenFile(c.Request.Context(), auth.GetUserID(c), bookID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookFileMissing):
			respondError(c, http.StatusNotFound, "Book file is missing.")
		case errors.Is(err, services.ErrNotFound):
			respondError(c, http.StatusNotFound, "Book not found.")
		default:
			respondInternalError(c, err, "open book file")
		}
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": `attachment; filename="` + storage.DisplayName(book.BookFile) + `"`,
	})
}

// bookInputFromForm reads the book fields of a multipart or urlencoded
// form. The returned func closes the uploaded file, if any.
func bookInputFromForm(c *gin.Context) (services.BookInput, func(), error) {
	file, closeFile, err := bookFileFromForm(c)
	if err != nil {
		return services.BookInput{}, closeFile, err
	}
	return services.BookInput{
		Title:           c.PostForm("title"),
		Authors:         c.PostForm("authors"),
		Genre:           c.PostForm("genre"),
		PublicationDate: c.PostForm("publication_date"),
		Description:     c.PostForm("description"),
		File:            file,
	}, closeFile, nil
}

// bookPatchFromForm is bookInputFromForm for updates: fields absent from
// the form stay nil.
func bookPatchFromForm(c *gin.Context) (services.BookPatch, func(), error) {
	file, closeFile, err := bookFileFromForm(c)
	if err != nil {
		return services.BookPatch{}, closeFile, err
	}
	return services.BookPatch{
		Title:           optionalPostForm(c, "title"),
		Authors:         optionalPostForm(c, "authors"),
		Genre:           optionalPostForm(c, "genre"),
		PublicationDate: optionalPostForm(c, "publication_date"),
		Description:     optionalPostForm(c, "description"),
		File:            file,
	}, closeFile, nil
}

func optionalPostForm(c *gin.Context, key string) *string {
	if value, ok := c.GetPostForm(key); ok {
		return &value
	}
	return nil
}

func bookFileFromForm(c *gin.Context) (*services.FileUpload, func(), error) {
	header, err := c.FormFile(bookFileField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	file, err := header.Open()
	if err != nil {
		return nil, func() {}, err
	}
	return &services.FileUpload{Filename: header.Filename, Content: file}, closer(file), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}
