// Package access holds the ownership and visibility rules shared by the
// services. A failed check is reported to clients as "not found" so the
// existence of other users' records is never revealed.
package access

import "github.com/mrlokans/bookshelf/internal/entities"

// CanMutateBook reports whether userID owns the book.
func CanMutateBook(userID uint, book *entities.Book) bool {
	return book != nil && book.UserID == userID
}

// CanViewBookInCatalog reports whether the book is listed publicly.
func CanViewBookInCatalog(book *entities.Book) bool {
	return book != nil && book.CatalogVisible()
}

// CanMutateReadingList reports whether userID owns the list and it is active.
func CanMutateReadingList(userID uint, list *entities.ReadingList) bool {
	return list != nil && list.UserID == userID && !list.IsDeleted
}

// CanAddBookToList reports whether userID may put book on list.
func CanAddBookToList(userID uint, list *entities.ReadingList, book *entities.Book) bool {
	return CanMutateReadingList(userID, list) && CanViewBookInCatalog(book)
}
