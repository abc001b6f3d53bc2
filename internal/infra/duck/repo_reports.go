package duck

import (
	"context"
	"database/sql"
	"fmt"

	"cspwatch/internal/domain"
)

const listReportsQuery = `
SELECT
    document_uri,
    CAST(created_at AS VARCHAR),
    referrer,
    violated_directive,
    effective_directive,
    original_policy,
    disposition,
    blocked_uri,
    line_number,
    column_number,
    source_file,
    status_code,
    script_sample,
    source_ip
FROM csp_report`

// ListReports returns persisted violations in insertion order. Limit
// and offset are applied only when supplied; without them the whole
// table is returned.
func (s *Store) ListReports(ctx context.Context, limit, offset *uint32) ([]domain.StoredReport, error) {
	query, args := paginate(listReportsQuery, limit, offset)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.StoredReport, 0)
	for rows.Next() {
		var (
			r                   domain.StoredReport
			blocked, sourceFile sql.NullString
			line, column, code  sql.NullInt64
		)
		err := rows.Scan(
			&r.DocumentURI, &r.CreatedAt, &r.Referrer,
			&r.ViolatedDirective, &r.EffectiveDirective, &r.OriginalPolicy,
			&r.Disposition, &blocked, &line, &column, &sourceFile, &code,
			&r.ScriptSample, &r.SourceIP,
		)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.BlockedURI = nullString(blocked)
		r.SourceFile = nullString(sourceFile)
		r.LineNumber = nullUint32(line)
		r.ColumnNumber = nullUint32(column)
		r.StatusCode = nullUint32(code)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

const listDistinctQuery = `
SELECT
    violated_directive,
    effective_directive,
    original_policy,
    disposition,
    blocked_uri,
    source_file,
    script_sample,
    CAST(MIN(created_at) AS VARCHAR) AS first_seen,
    COUNT(*) AS cnt
FROM csp_report
GROUP BY 1, 2, 3, 4, 5, 6, 7
ORDER BY cnt DESC`

// ListDistinct groups identical violations by their seven descriptive
// fields, most frequent pattern first.
func (s *Store) ListDistinct(ctx context.Context, limit, offset *uint32) ([]domain.DistinctReport, error) {
	query, args := paginate(listDistinctQuery, limit, offset)
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query distinct reports: %w", err)
	}
	defer rows.Close()

	reports := make([]domain.DistinctReport, 0)
	for rows.Next() {
		var (
			r                   domain.DistinctReport
			blocked, sourceFile sql.NullString
		)
		err := rows.Scan(
			&r.ViolatedDirective, &r.EffectiveDirective, &r.OriginalPolicy,
			&r.Disposition, &blocked, &sourceFile, &r.ScriptSample,
			&r.FirstSeen, &r.Count,
		)
		if err != nil {
			return nil, fmt.Errorf("scan distinct report: %w", err)
		}
		r.BlockedURI = nullString(blocked)
		r.SourceFile = nullString(sourceFile)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Directive families are matched by case-insensitive prefix so that
// e.g. "script-src-elem 'self'" counts toward script-src. The inner
// select keeps only the most recent 14 distinct days; the outer sort
// puts them back in ascending order.
const countByDayQuery = `
SELECT day, base_uri, script_src, img_src, style_src, connect_src,
       media_src, object_src, frame_src, font_src
FROM (
    SELECT
        CAST(CAST(created_at AS DATE) AS VARCHAR) AS day,
        COUNT(CASE WHEN violated_directive ILIKE 'base-uri%' THEN 1 END) AS base_uri,
        COUNT(CASE WHEN violated_directive ILIKE 'script-src%' THEN 1 END) AS script_src,
        COUNT(CASE WHEN violated_directive ILIKE 'img-src%' THEN 1 END) AS img_src,
        COUNT(CASE WHEN violated_directive ILIKE 'style-src%' THEN 1 END) AS style_src,
        COUNT(CASE WHEN violated_directive ILIKE 'connect-src%' THEN 1 END) AS connect_src,
        COUNT(CASE WHEN violated_directive ILIKE 'media-src%' THEN 1 END) AS media_src,
        COUNT(CASE WHEN violated_directive ILIKE 'object-src%' THEN 1 END) AS object_src,
        COUNT(CASE WHEN violated_directive ILIKE 'frame-src%' THEN 1 END) AS frame_src,
        COUNT(CASE WHEN violated_directive ILIKE 'font-src%' THEN 1 END) AS font_src
    FROM csp_report
    GROUP BY 1
    ORDER BY 1 DESC
    LIMIT 14
)
ORDER BY day ASC`

// CountByDay returns per-day totals for the well-known directive
// families over the most recent 14 days with any traffic.
func (s *Store) CountByDay(ctx context.Context) ([]domain.ViolationCount, error) {
	rows, err := s.DB.QueryContext(ctx, countByDayQuery)
	if err != nil {
		return nil, fmt.Errorf("query violation counts: %w", err)
	}
	defer rows.Close()

	counts := make([]domain.ViolationCount, 0, 14)
	for rows.Next() {
		var c domain.ViolationCount
		err := rows.Scan(
			&c.Day, &c.BaseURI, &c.ScriptSrc, &c.ImgSrc, &c.StyleSrc,
			&c.ConnectSrc, &c.MediaSrc, &c.ObjectSrc, &c.FrameSrc, &c.FontSrc,
		)
		if err != nil {
			return nil, fmt.Errorf("scan violation count: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func paginate(query string, limit, offset *uint32) (string, []any) {
	args := make([]any, 0, 2)
	if limit != nil {
		query += " LIMIT ?"
		args = append(args, *limit)
	}
	if offset != nil {
		query += " OFFSET ?"
		args = append(args, *offset)
	}
	return query, args
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func nullUint32(v sql.NullInt64) *uint32 {
	if !v.Valid {
		return nil
	}
	u := uint32(v.Int64)
	return &u
}
