package sqlite

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/example/class-scheduler/internal/persistence"
)

// DirectoryRepository implements persistence.Directory.
type DirectoryRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
}

// NewDirectoryRepository creates a new SQLite directory repository.
func NewDirectoryRepository(pool *ConnectionPool) *DirectoryRepository {
	return &DirectoryRepository{pool: pool, mapper: NewErrorMapper()}
}

// PutDisplayRecord inserts or replaces a directory entry.
func (r *DirectoryRepository) PutDisplayRecord(ctx context.Context, record persistence.DisplayRecord) error {
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("%w: directory id is required", persistence.ErrConstraintViolation)
	}
	_, err := r.pool.DB().ExecContext(ctx, `INSERT INTO directory (id, name, email) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, email = excluded.email`,
		record.ID, record.Name, record.Email)
	if err != nil {
		return fmt.Errorf("sqlite: put directory record %s: %w", record.ID, r.mapper.MapError(err))
	}
	return nil
}

// GetDisplayRecordsByIDs resolves ids in a single query. Empty and repeated
// IDs are ignored.
func (r *DirectoryRepository) GetDisplayRecordsByIDs(ctx context.Context, ids []string) (map[string]persistence.DisplayRecord, error) {
	unique := make([]any, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(unique, any(id)) {
			unique = append(unique, id)
		}
	}
	records := make(map[string]persistence.DisplayRecord, len(unique))
	if len(unique) == 0 {
		return records, nil
	}

	rows, err := r.pool.DB().QueryContext(ctx,
		`SELECT id, name, email FROM directory WHERE id IN (`+placeholders(len(unique))+`)`, unique...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: get directory records: %w", r.mapper.MapError(err))
	}
	defer rows.Close()

	for rows.Next() {
		var record persistence.DisplayRecord
		if err := rows.Scan(&record.ID, &record.Name, &record.Email); err != nil {
			return nil, fmt.Errorf("sqlite: scan directory record: %w", err)
		}
		records[record.ID] = record
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterate directory records: %w", err)
	}
	return records, nil
}
