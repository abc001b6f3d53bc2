package db

import (
	"fmt"
	"path/filepath"

	"cspwatch/internal/config"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// The credential table sees one indexed read per authenticated request
// and the occasional admin write; a small pool is plenty.
const credentialPoolSize = 2

// Store owns the row-oriented credential database.
type Store struct {
	DB *gorm.DB
}

// NewStore opens the SQLite credential store under cfg.DataPath,
// creating the file and the api_token table if absent.
func NewStore(cfg config.Config) (*Store, error) {
	path := filepath.Join(cfg.DataPath, "cspwatch.db")
	gdb, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open credential store: %w", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("credential store pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(credentialPoolSize)

	if err := gdb.AutoMigrate(&APITokenModel{}); err != nil {
		return nil, fmt.Errorf("migrate api_token: %w", err)
	}
	return &Store{DB: gdb}, nil
}
