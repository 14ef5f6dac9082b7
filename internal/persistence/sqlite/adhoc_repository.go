package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/scheduler"
)

// AdHocRepository implements persistence.AdHocSessionRepository.
type AdHocRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewAdHocRepository creates a new SQLite ad-hoc session repository.
func NewAdHocRepository(pool *ConnectionPool, retry *RetryHelper) *AdHocRepository {
	return &AdHocRepository{pool: pool, mapper: NewErrorMapper(), retry: retry}
}

const adhocColumns = `acronym, name, session_type, description, capacity, instructor_id, timezone,
	local_date, scheduled_start, scheduled_end, lobby_open, lobby_close, notes, created_at`

// CreateAdHocSession stores a new ad-hoc session with its participants.
func (r *AdHocRepository) CreateAdHocSession(ctx context.Context, session scheduler.AdHocSession, at time.Time) (persistence.AdHocRecord, error) {
	if session.Acronym == "" {
		return persistence.AdHocRecord{}, fmt.Errorf("%w: ad-hoc session acronym is required", persistence.ErrConstraintViolation)
	}
	record := persistence.AdHocRecord{Session: session, CreatedAt: at.UTC().Truncate(time.Second)}

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			s := record.Session
			if _, err := tx.ExecContext(ctx, `INSERT INTO adhoc_sessions (`+adhocColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				s.Acronym, s.Name, string(s.Type), s.Description, s.Capacity, s.InstructorID, s.Timezone,
				s.LocalDate, formatTime(s.ScheduledStart), formatTime(s.ScheduledEnd),
				formatTime(s.LobbyOpen), formatTime(s.LobbyClose), s.Notes, formatTime(record.CreatedAt),
			); err != nil {
				return err
			}
			return insertParticipants(ctx, tx,
				`INSERT INTO adhoc_participants (acronym, user_id, position) VALUES (?, ?, ?)`,
				s.Acronym, s.Participants)
		})
	})
	if err != nil {
		return persistence.AdHocRecord{}, fmt.Errorf("sqlite: create ad-hoc session %s: %w", session.Acronym, err)
	}
	return record, nil
}

// GetAdHocSession loads an ad-hoc session by acronym.
func (r *AdHocRepository) GetAdHocSession(ctx context.Context, acronym string) (persistence.AdHocRecord, error) {
	var records []persistence.AdHocRecord
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		records, err = loadAdHoc(ctx, tx, "acronym = ?", acronym)
		return err
	})
	if err != nil {
		return persistence.AdHocRecord{}, r.mapper.MapError(err)
	}
	if len(records) == 0 {
		return persistence.AdHocRecord{}, persistence.ErrNotFound
	}
	return records[0], nil
}

// ListAdHocSessionsForUser returns the ad-hoc sessions userID attends or
// leads, ordered by start.
func (r *AdHocRepository) ListAdHocSessionsForUser(ctx context.Context, userID string) ([]persistence.AdHocRecord, error) {
	var records []persistence.AdHocRecord
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		records, err = loadAdHoc(ctx, tx,
			"instructor_id = ? OR acronym IN (SELECT acronym FROM adhoc_participants WHERE user_id = ?)",
			userID, userID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: list ad-hoc sessions for %s: %w", userID, r.mapper.MapError(err))
	}
	return records, nil
}

func loadAdHoc(ctx context.Context, tx *sql.Tx, where string, args ...any) ([]persistence.AdHocRecord, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+adhocColumns+` FROM adhoc_sessions WHERE `+where+
		` ORDER BY scheduled_start, acronym`, args...)
	if err != nil {
		return nil, err
	}

	var records []persistence.AdHocRecord
	for rows.Next() {
		var (
			record      persistence.AdHocRecord
			sessionType string
			times       [4]string
			created     string
		)
		s := &record.Session
		if err := rows.Scan(&s.Acronym, &s.Name, &sessionType, &s.Description, &s.Capacity,
			&s.InstructorID, &s.Timezone, &s.LocalDate,
			&times[0], &times[1], &times[2], &times[3], &s.Notes, &created); err != nil {
			rows.Close()
			return nil, err
		}
		s.Type = scheduler.AdHocType(sessionType)
		if err := parseWindow(&s.Session, times); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ad-hoc session %s: %w", s.Acronym, err)
		}
		if record.CreatedAt, err = parseTime(created); err != nil {
			rows.Close()
			return nil, err
		}
		records = append(records, record)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		participants, err := loadParticipants(ctx, tx,
			`SELECT user_id FROM adhoc_participants WHERE acronym = ? ORDER BY position`, records[i].Session.Acronym)
		if err != nil {
			return nil, err
		}
		records[i].Session.Participants = participants
	}
	return records, nil
}
