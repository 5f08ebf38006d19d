package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/services"
)

const msgReorderMismatch = "ordered_book_ids must contain every book in the reading list exactly once."

type ReadingListsController struct {
	lists *services.ReadingListService
}

func NewReadingListsController(lists *services.ReadingListService) *ReadingListsController {
	return &ReadingListsController{lists: lists}
}

type createReadingListRequest struct {
	Name string `json:"name" form:"name"`
}

type addItemRequest struct {
	BookID uint `json:"book_id" form:"book_id" binding:"required"`
}

type reorderRequest struct {
	OrderedBookIDs []uint `json:"ordered_book_ids" binding:"required"`
}

type addItemResponse struct {
	BookID uint `json:"book_id"`
	Order  int  `json:"order"`
}

// Create makes a new reading list for the caller.
// POST /api/books/reading-lists
func (rc *ReadingListsController) Create(c *gin.Context) {
	var req createReadingListRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	list, err := rc.lists.Create(auth.GetUserID(c), req.Name)
	if err != nil {
		if respondFieldErrorsOr(c, err, "Validation failed") {
			return
		}
		respondInternalError(c, err, "create reading list")
		return
	}

	respondSuccess(c, http.StatusCreated, "Reading list created successfully.", newReadingListResponse(*list))
}

// List returns the caller's reading lists.
// GET /api/books/reading-lists
func (rc *ReadingListsController) List(c *gin.Context) {
	lists, err := rc.lists.ListMine(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list reading lists")
		return
	}

	results := make([]ReadingListResponse, len(lists))
	for i, list := range lists {
		results[i] = newReadingListResponse(list)
	}
	respondSuccess(c, http.StatusOK, "Reading lists fetched successfully.", results)
}

// Delete soft-deletes one of the caller's reading lists with its items.
// DELETE /api/books/reading-lists/:id
func (rc *ReadingListsController) Delete(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := rc.lists.Delete(auth.GetUserID(c), listID); err != nil {
		respondReadingListError(c, err, "delete reading list")
		return
	}

	respondSuccess(c, http.StatusOK, "Reading list deleted successfully.", nil)
}

// Items returns a reading list's entries in order.
// GET /api/books/reading-lists/:id/items
func (rc *ReadingListsController) Items(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	items, err := rc.lists.ListItems(auth.GetUserID(c), listID)
	if err != nil {
		respondReadingListError(c, err, "list reading list items")
		return
	}

	results := make([]ReadingListItemResponse, len(items))
	for i, item := range items {
		results[i] = newReadingListItemResponse(item)
	}
	respondSuccess(c, http.StatusOK, "Reading list items fetched successfully.", results)
}

// AddItem appends a catalog book to the end of a reading list.
// POST /api/books/reading-lists/:id/items
func (rc *ReadingListsController) AddItem(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBind(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, err := rc.lists.AddItem(auth.GetUserID(c), listID, req.BookID)
	if err != nil {
		respondReadingListError(c, err, "add reading list item")
		return
	}

	respondSuccess(c, http.StatusCreated, "Book added to reading list.", addItemResponse{
		BookID: item.BookID,
		Order:  item.Order,
	})
}

// RemoveItem takes a book out of a reading list and closes the gap.
// DELETE /api/books/reading-lists/:id/items/:book_id
func (rc *ReadingListsController) RemoveItem(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "book_id")
	if !ok {
		return
	}

	if err := rc.lists.RemoveItem(auth.GetUserID(c), listID, bookID); err != nil {
		respondReadingListError(c, err, "remove reading list item")
		return
	}

	respondSuccess(c, http.StatusOK, "Book removed from reading list.", nil)
}

// Reorder rewrites the order of a reading list. The body must name every
// book of the list exactly once.
// PUT /api/books/reading-lists/:id/items/reorder
func (rc *ReadingListsController) Reorder(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if err := rc.lists.Reorder(auth.GetUserID(c), listID, req.OrderedBookIDs); err != nil {
		if errors.Is(err, services.ErrDuplicateItem) || errors.Is(err, services.ErrReorderMismatch) {
			respondError(c, http.StatusBadRequest, msgReorderMismatch)
			return
		}
		respondReadingListError(c, err, "reorder reading list")
		return
	}

	respondSuccess(c, http.StatusOK, "Reading list reordered.", nil)
}

func respondReadingListError(c *gin.Context, err error, context string) {
	switch {
	case respondFieldErrorsOr(c, err, "Validation failed"):
	case errors.Is(err, services.ErrBookNotFound):
		respondError(c, http.StatusNotFound, "Book not found or not available.")
	case errors.Is(err, services.ErrItemNotFound):
		respondError(c, http.StatusNotFound, "Book is not in this reading list.")
	case errors.Is(err, services.ErrListNotFound):
		respondError(c, http.StatusNotFound, "Reading list not found.")
	case errors.Is(err, services.ErrDuplicateItem):
		respondError(c, http.StatusBadRequest, "Book is already in this reading list.")
	case errors.Is(err, services.ErrReorderMismatch):
		respondError(c, http.StatusBadRequest, msgReorderMismatch)
	default:
		respondInternalError(c, err, context)
	}
}
