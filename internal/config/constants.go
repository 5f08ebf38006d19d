package config

// Default paths for local state
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./bookshelf.db"

	// DefaultMediaDir is the default root for uploaded book files
	DefaultMediaDir = "./media"
)
