package sqlite

import (
	"context"
	"database/sql"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/siteaudit"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ siteaudit.ReportService = (*ReportService)(nil)

// ReportService implements siteaudit.ReportService using SQLite.
type ReportService struct {
	db  *DB
	now func() time.Time
}

// NewReportService creates a new ReportService.
func NewReportService(db *DB) *ReportService {
	return &ReportService{db: db, now: time.Now}
}

// hashContent computes xxHash of content and returns hex string.
func hashContent(content []byte) string {
	b := binary.BigEndian.AppendUint64(nil, xxhash.Sum64(content))
	return hex.EncodeToString(b)
}

// CreateReport stores a new report.
func (s *ReportService) CreateReport(ctx context.Context, record *siteaudit.ReportRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}

	body, err := json.Marshal(record.Report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	record.ID = uuid.New().String()
	record.CreatedAt = s.now().UTC()
	record.ContentHash = hashContent(body)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, start_url, status, pages_audited, errors, content_hash, body, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, record.ID, record.StartURL, string(record.Status), record.PagesAudited, record.Errors,
		record.ContentHash, string(body), formatTime(record.CreatedAt))

	return err
}

// FindReportByID retrieves a report by ID, including its body.
func (s *ReportService) FindReportByID(ctx context.Context, id string) (*siteaudit.ReportRecord, error) {
	var record siteaudit.ReportRecord
	var status, body, createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_url, status, pages_audited, errors, content_hash, body, created_at
		FROM reports
		WHERE id = ?
	`, id).Scan(&record.ID, &record.StartURL, &status, &record.PagesAudited, &record.Errors,
		&record.ContentHash, &body, &createdAt)

	if err == sql.ErrNoRows {
		return nil, siteaudit.Errorf(siteaudit.ENOTFOUND, "report not found")
	}
	if err != nil {
		return nil, err
	}

	record.Status = siteaudit.RunStatus(status)
	if record.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
		return nil, err
	}

	var report siteaudit.SiteAuditReport
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report %s: %w", record.ID, err)
	}
	record.Report = &report

	return &record, nil
}

// FindReports retrieves reports matching the filter, newest first.
// Report bodies are not loaded.
func (s *ReportService) FindReports(ctx context.Context, filter siteaudit.ReportFilter) ([]*siteaudit.ReportRecord, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, start_url, status, pages_audited, errors, content_hash, created_at FROM reports WHERE 1=1")

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.StartURL != nil {
		query.WriteString(" AND start_url = ?")
		args = append(args, *filter.StartURL)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []*siteaudit.ReportRecord{}
	for rows.Next() {
		var record siteaudit.ReportRecord
		var status, createdAt string

		if err := rows.Scan(&record.ID, &record.StartURL, &status, &record.PagesAudited, &record.Errors,
			&record.ContentHash, &createdAt); err != nil {
			return nil, err
		}

		record.Status = siteaudit.RunStatus(status)
		if record.CreatedAt, err = parseTime(createdAt, "created_at"); err != nil {
			return nil, err
		}

		records = append(records, &record)
	}

	return records, rows.Err()
}

// DeleteReport permanently removes a report.
func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM reports WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return siteaudit.Errorf(siteaudit.ENOTFOUND, "report not found")
	}

	return nil
}
