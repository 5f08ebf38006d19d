package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// dsnParams makes every transaction take the write lock up front
// (BEGIN IMMEDIATE), so read-modify-write sequences such as reading list
// ordering serialize instead of failing on lock upgrade.
const dsnParams = "?_txlock=immediate&_busy_timeout=5000&_foreign_keys=on"

// Uniqueness rules gorm tags cannot express: case-insensitive and limited to
// rows that are not soft-deleted.
var indexStatements = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_books_owner_title
		ON books (user_id, lower(title)) WHERE is_deleted = 0`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_reading_lists_owner_name
		ON reading_lists (user_id, lower(name)) WHERE is_deleted = 0`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower
		ON users (lower(username))`,
	`CREATE INDEX IF NOT EXISTS idx_reading_list_items_order
		ON reading_list_items (reading_list_id, sort_order)`,
}

type Database struct {
	DB *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	return Open(dbPath, logger.Warn)
}

// Open connects to the SQLite file at dbPath with the given gorm log level
// and migrates the schema.
func Open(dbPath string, level logger.LogLevel) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath+dsnParams), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Printf("Database initialized successfully at %s", dbPath)

	return &Database{DB: db}, nil
}

// Migrate creates or updates every table and index the application uses.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.User{},
		&entities.Book{},
		&entities.ReadingList{},
		&entities.ReadingListItem{},
		&entities.RevokedToken{},
		&entities.AuditEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	for _, stmt := range indexStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsUniqueViolation reports whether err was caused by a UNIQUE or PRIMARY KEY
// constraint.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
