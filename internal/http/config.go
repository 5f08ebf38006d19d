package http

import (
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/services"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database           *database.Database
	AuthService        *auth.Service
	BookService        *services.BookService
	ReadingListService *services.ReadingListService
	AuditService       *audit.Service
	Paginator          services.Paginator

	// Task queue (optional), reported by /health
	TaskQueue Pinger

	// Strict-Transport-Security max-age in seconds, 0 disables the header
	HSTSMaxAge int

	// Application info
	Version string
}
