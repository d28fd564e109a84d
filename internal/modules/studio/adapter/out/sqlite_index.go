package out

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	projectdomain "recstudio/internal/modules/project/domain"
	studioout "recstudio/internal/modules/studio/port/out"

	_ "modernc.org/sqlite"
)

// SQLiteProjectIndex mirrors manifest summaries into sqlite so the project
// browser can list and sort without touching every manifest file.
type SQLiteProjectIndex struct {
	db *sql.DB
}

func NewSQLiteProjectIndex(dbPath string) (studioout.ProjectIndex, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	index := &SQLiteProjectIndex{db: db}
	if err := index.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return index, nil
}

func (s *SQLiteProjectIndex) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  status TEXT NOT NULL,
  duration_ms INTEGER NOT NULL,
  has_export INTEGER NOT NULL,
  export_path TEXT,
  raw_path TEXT,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create projects table: %w", err)
	}
	return nil
}

func (s *SQLiteProjectIndex) Upsert(ctx context.Context, item projectdomain.ListItem) error {
	const stmt = `
INSERT INTO projects (id, title, status, duration_ms, has_export, export_path, raw_path, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title,
  status=excluded.status,
  duration_ms=excluded.duration_ms,
  has_export=excluded.has_export,
  export_path=excluded.export_path,
  raw_path=excluded.raw_path,
  created_at=excluded.created_at,
  updated_at=excluded.updated_at;
`
	hasExport := 0
	if item.HasExport {
		hasExport = 1
	}
	_, err := s.db.ExecContext(ctx, stmt,
		item.ProjectID,
		item.Title,
		string(item.Status),
		item.DurationMS,
		hasExport,
		item.ExportPath,
		item.RawPath,
		item.CreatedAt.UTC().Format(time.RFC3339),
		item.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

func (s *SQLiteProjectIndex) Remove(ctx context.Context, projectID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, projectID); err != nil {
		return fmt.Errorf("remove project: %w", err)
	}
	return nil
}

func (s *SQLiteProjectIndex) List(ctx context.Context) ([]projectdomain.ListItem, error) {
	const query = `
SELECT id, title, status, duration_ms, has_export, export_path, raw_path, created_at, updated_at
FROM projects
ORDER BY updated_at DESC, id ASC;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := []projectdomain.ListItem{}
	for rows.Next() {
		var item projectdomain.ListItem
		var status string
		var hasExport int
		var createdAt, updatedAt string
		if err := rows.Scan(&item.ProjectID, &item.Title, &status, &item.DurationMS, &hasExport, &item.ExportPath, &item.RawPath, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan project row: %w", err)
		}
		item.Status = projectdomain.Status(status)
		item.HasExport = hasExport != 0
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			item.CreatedAt = ts
		}
		if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			item.UpdatedAt = ts
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *SQLiteProjectIndex) Close() error {
	return s.db.Close()
}
