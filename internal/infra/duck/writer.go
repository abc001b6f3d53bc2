package duck

import (
	"context"
	"database/sql/driver"
	"fmt"

	"cspwatch/internal/domain"

	duckdb "github.com/marcboeker/go-duckdb/v2"
)

// AppendBatch writes one drained buffer as a single appender run.
// Argument order matches the csp_report column order.
func (s *Store) AppendBatch(ctx context.Context, batch []domain.BufferedReport) error {
	if len(batch) == 0 {
		return nil
	}
	conn, err := s.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return conn.Raw(func(driverConn any) error {
		appender, err := duckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "csp_report")
		if err != nil {
			return fmt.Errorf("open appender: %w", err)
		}
		for _, rec := range batch {
			err := appender.AppendRow(
				rec.SourceIP,
				rec.CreatedAt,
				rec.DocumentURI,
				rec.Referrer,
				rec.ViolatedDirective,
				rec.EffectiveDirective,
				rec.OriginalPolicy,
				rec.Disposition,
				optString(rec.BlockedURI),
				optUint32(rec.LineNumber),
				optUint32(rec.ColumnNumber),
				optString(rec.SourceFile),
				optUint32(rec.StatusCode),
				rec.ScriptSample,
			)
			if err != nil {
				appender.Close()
				return fmt.Errorf("append row: %w", err)
			}
		}
		if err := appender.Close(); err != nil {
			return fmt.Errorf("close appender: %w", err)
		}
		return nil
	})
}

func optString(v *string) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}

func optUint32(v *uint32) driver.Value {
	if v == nil {
		return nil
	}
	return *v
}
