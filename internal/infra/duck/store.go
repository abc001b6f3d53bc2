package duck

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"cspwatch/internal/config"

	duckdb "github.com/marcboeker/go-duckdb/v2"
)

// Reads dominate the analytical table, and the flush scheduler is its
// only writer; a slightly larger pool than the credential store's.
const analyticsPoolSize = 4

const createReportTable = `
CREATE TABLE IF NOT EXISTS csp_report (
    source_ip TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT NOW(),
    document_uri TEXT NOT NULL,
    referrer TEXT NOT NULL,
    violated_directive TEXT NOT NULL,
    effective_directive TEXT NOT NULL,
    original_policy TEXT NOT NULL,
    disposition TEXT NOT NULL,
    blocked_uri TEXT,
    line_number UINTEGER,
    column_number UINTEGER,
    source_file TEXT,
    status_code UINTEGER,
    script_sample TEXT NOT NULL
)`

// Store owns the append-only columnar violation table. Reads go through
// the database/sql pool; bulk writes go through the DuckDB appender on
// a raw connection.
type Store struct {
	DB *sql.DB
}

// NewStore opens the DuckDB file under cfg.DataPath, creating it and
// the csp_report table if absent.
func NewStore(cfg config.Config) (*Store, error) {
	path := filepath.Join(cfg.DataPath, "cspwatch.duckdb")
	connector, err := duckdb.NewConnector(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open analytical store: %w", err)
	}
	sqlDB := sql.OpenDB(connector)
	sqlDB.SetMaxOpenConns(analyticsPoolSize)

	if _, err := sqlDB.ExecContext(context.Background(), createReportTable); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create csp_report: %w", err)
	}
	return &Store{DB: sqlDB}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
