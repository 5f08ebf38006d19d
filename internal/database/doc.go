// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, partial unique indexes
//	├── users/           # Accounts
//	├── books/           # Books and the public catalog
//	├── readinglists/    # Reading lists and their ordered items
//	├── tokens/          # Revoked refresh tokens
//	└── audit/           # Audit trail
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./bookshelf.db")
//
//	booksRepo := books.NewRepository(db.DB)
//	listsRepo := readinglists.NewRepository(db.DB)
//
//	page, total, err := booksRepo.ListCatalog(10, 0)
//
// # Interface Implementations
//
//   - users.Repository: implements auth.UserStore
//   - tokens.Repository: implements auth.RevocationStore
//   - books.Repository: implements services.BookStore
//   - readinglists.Repository: implements services.ReadingListStore
//   - audit.Repository: backs audit.Service
//
// # Transactions
//
// The connection is opened with _txlock=immediate: every transaction takes
// the SQLite write lock when it begins. Reading list item changes run inside
// one transaction each, so two requests reordering the same list serialize.
package database
