package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/class-scheduler/internal/persistence"
	"github.com/example/class-scheduler/internal/recurrence"
	"github.com/example/class-scheduler/internal/scheduler"
	"github.com/example/class-scheduler/internal/timemath"
)

// ClassRepository implements persistence.ClassRepository. The class row,
// its participants and its sessions are always written together.
type ClassRepository struct {
	pool   *ConnectionPool
	mapper *ErrorMapper
	retry  *RetryHelper
}

// NewClassRepository creates a new SQLite class repository.
func NewClassRepository(pool *ConnectionPool, retry *RetryHelper) *ClassRepository {
	return &ClassRepository{pool: pool, mapper: NewErrorMapper(), retry: retry}
}

const classColumns = `id, acronym, name, instructor_id, help_message, anchor_date, weekdays,
	start_hour, start_minute, timezone, session_count, duration_minutes, lobby_buffer_minutes,
	version, created_at, updated_at`

// CreateClass inserts a new class at version 1.
func (r *ClassRepository) CreateClass(ctx context.Context, class scheduler.Class, at time.Time) (persistence.ClassRecord, error) {
	if strings.TrimSpace(class.ID) == "" || strings.TrimSpace(class.Config.Acronym) == "" {
		return persistence.ClassRecord{}, fmt.Errorf("%w: class id and acronym are required", persistence.ErrConstraintViolation)
	}

	stamp := at.UTC().Truncate(time.Second)
	record := persistence.ClassRecord{Class: class.Clone(), Version: 1, CreatedAt: stamp, UpdatedAt: stamp}

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			cfg := record.Class.Config
			_, err := tx.ExecContext(ctx, `INSERT INTO classes (`+classColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				record.Class.ID, cfg.Acronym, cfg.Name, cfg.InstructorID, cfg.HelpMessage,
				formatTime(cfg.AnchorDate), formatWeekdays(cfg.Schedule.Weekdays),
				cfg.Schedule.StartTime.Hour, cfg.Schedule.StartTime.Minute, cfg.Schedule.StartTime.Timezone,
				cfg.SessionCount, cfg.DurationMinutes, cfg.LobbyBufferMinutes,
				record.Version, formatTime(stamp), formatTime(stamp),
			)
			if err != nil {
				return err
			}
			return insertClassChildren(ctx, tx, record.Class)
		})
	})
	if err != nil {
		return persistence.ClassRecord{}, fmt.Errorf("sqlite: create class %s: %w", class.ID, err)
	}
	return record, nil
}

// GetClass loads a class by ID.
func (r *ClassRepository) GetClass(ctx context.Context, id string) (persistence.ClassRecord, error) {
	return r.getOne(ctx, "id = ?", id)
}

// GetClassByAcronym loads a class by its acronym.
func (r *ClassRepository) GetClassByAcronym(ctx context.Context, acronym string) (persistence.ClassRecord, error) {
	return r.getOne(ctx, "acronym = ?", acronym)
}

// GetClassBySessionAcronym loads the class owning the session acronym.
func (r *ClassRepository) GetClassBySessionAcronym(ctx context.Context, sessionAcronym string) (persistence.ClassRecord, error) {
	return r.getOne(ctx, "id = (SELECT class_id FROM class_sessions WHERE acronym = ?)", sessionAcronym)
}

// SaveClass replaces the stored class when expectedVersion is current.
func (r *ClassRepository) SaveClass(ctx context.Context, class scheduler.Class, expectedVersion int, at time.Time) (persistence.ClassRecord, error) {
	stamp := at.UTC().Truncate(time.Second)
	record := persistence.ClassRecord{Class: class.Clone(), Version: expectedVersion + 1, UpdatedAt: stamp}

	err := r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			cfg := record.Class.Config
			res, err := tx.ExecContext(ctx, `UPDATE classes SET
					acronym = ?, name = ?, instructor_id = ?, help_message = ?, anchor_date = ?, weekdays = ?,
					start_hour = ?, start_minute = ?, timezone = ?, session_count = ?, duration_minutes = ?,
					lobby_buffer_minutes = ?, version = version + 1, updated_at = ?
				WHERE id = ? AND version = ?`,
				cfg.Acronym, cfg.Name, cfg.InstructorID, cfg.HelpMessage,
				formatTime(cfg.AnchorDate), formatWeekdays(cfg.Schedule.Weekdays),
				cfg.Schedule.StartTime.Hour, cfg.Schedule.StartTime.Minute, cfg.Schedule.StartTime.Timezone,
				cfg.SessionCount, cfg.DurationMinutes, cfg.LobbyBufferMinutes, formatTime(stamp),
				record.Class.ID, expectedVersion,
			)
			if err != nil {
				return err
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if affected == 0 {
				var current int
				err := tx.QueryRowContext(ctx, `SELECT version FROM classes WHERE id = ?`, record.Class.ID).Scan(&current)
				if errors.Is(err, sql.ErrNoRows) {
					return persistence.ErrNotFound
				}
				if err != nil {
					return err
				}
				return fmt.Errorf("%w: stored version %d, expected %d", persistence.ErrConflict, current, expectedVersion)
			}

			var created string
			if err := tx.QueryRowContext(ctx, `SELECT created_at FROM classes WHERE id = ?`, record.Class.ID).Scan(&created); err != nil {
				return err
			}
			if record.CreatedAt, err = parseTime(created); err != nil {
				return err
			}

			for _, stmt := range []string{
				`DELETE FROM class_sessions WHERE class_id = ?`,
				`DELETE FROM class_participants WHERE class_id = ?`,
			} {
				if _, err := tx.ExecContext(ctx, stmt, record.Class.ID); err != nil {
					return err
				}
			}
			return insertClassChildren(ctx, tx, record.Class)
		})
	})
	if err != nil {
		return persistence.ClassRecord{}, fmt.Errorf("sqlite: save class %s: %w", class.ID, err)
	}
	return record, nil
}

// DeleteClass removes a class together with its sessions and participants.
func (r *ClassRepository) DeleteClass(ctx context.Context, id string) error {
	return r.retry.WithRetry(ctx, func() error {
		res, err := r.pool.DB().ExecContext(ctx, `DELETE FROM classes WHERE id = ?`, id)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// ListClassesForUser returns the classes where userID is a participant, the
// class instructor or the instructor of any session, ordered by acronym.
func (r *ClassRepository) ListClassesForUser(ctx context.Context, userID string) ([]persistence.ClassRecord, error) {
	var records []persistence.ClassRecord
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT id FROM classes
			WHERE instructor_id = ?
				OR id IN (SELECT class_id FROM class_participants WHERE user_id = ?)
				OR id IN (SELECT class_id FROM class_sessions WHERE instructor_id = ?)
			ORDER BY acronym`, userID, userID, userID)
		if err != nil {
			return err
		}
		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, id := range ids {
			record, err := loadClass(ctx, tx, "id = ?", id)
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: list classes for %s: %w", userID, r.mapper.MapError(err))
	}
	return records, nil
}

func (r *ClassRepository) getOne(ctx context.Context, where string, arg any) (persistence.ClassRecord, error) {
	var record persistence.ClassRecord
	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var err error
		record, err = loadClass(ctx, tx, where, arg)
		return err
	})
	if err != nil {
		return persistence.ClassRecord{}, r.mapper.MapError(err)
	}
	return record, nil
}

func loadClass(ctx context.Context, tx *sql.Tx, where string, arg any) (persistence.ClassRecord, error) {
	var (
		record    persistence.ClassRecord
		cfg       scheduler.ClassConfig
		anchor    string
		weekdays  string
		created   string
		updated   string
		classID   string
		startTime timemath.TimeOfDay
	)
	err := tx.QueryRowContext(ctx, `SELECT `+classColumns+` FROM classes WHERE `+where, arg).Scan(
		&classID, &cfg.Acronym, &cfg.Name, &cfg.InstructorID, &cfg.HelpMessage, &anchor, &weekdays,
		&startTime.Hour, &startTime.Minute, &startTime.Timezone,
		&cfg.SessionCount, &cfg.DurationMinutes, &cfg.LobbyBufferMinutes,
		&record.Version, &created, &updated,
	)
	if err != nil {
		return persistence.ClassRecord{}, err
	}

	if cfg.AnchorDate, err = parseTime(anchor); err != nil {
		return persistence.ClassRecord{}, fmt.Errorf("anchor_date: %w", err)
	}
	days, err := parseWeekdays(weekdays)
	if err != nil {
		return persistence.ClassRecord{}, err
	}
	cfg.Schedule = recurrence.Schedule{Weekdays: days, StartTime: startTime}
	if record.CreatedAt, err = parseTime(created); err != nil {
		return persistence.ClassRecord{}, fmt.Errorf("created_at: %w", err)
	}
	if record.UpdatedAt, err = parseTime(updated); err != nil {
		return persistence.ClassRecord{}, fmt.Errorf("updated_at: %w", err)
	}
	record.Class = scheduler.Class{ID: classID, Config: cfg}

	if record.Class.Participants, err = loadParticipants(ctx, tx,
		`SELECT user_id FROM class_participants WHERE class_id = ? ORDER BY position`, classID); err != nil {
		return persistence.ClassRecord{}, err
	}
	if record.Class.Sessions, err = loadClassSessions(ctx, tx, classID); err != nil {
		return persistence.ClassRecord{}, err
	}
	return record, nil
}

func loadClassSessions(ctx context.Context, tx *sql.Tx, classID string) ([]scheduler.Session, error) {
	rows, err := tx.QueryContext(ctx, `SELECT sequence, acronym, name, local_date,
			scheduled_start, scheduled_end, lobby_open, lobby_close,
			instructor_id, timezone, help_message, disable_emails
		FROM class_sessions WHERE class_id = ? ORDER BY sequence`, classID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []scheduler.Session
	for rows.Next() {
		var (
			s             scheduler.Session
			times         [4]string
			disableEmails int
		)
		if err := rows.Scan(&s.Sequence, &s.Acronym, &s.Name, &s.LocalDate,
			&times[0], &times[1], &times[2], &times[3],
			&s.InstructorID, &s.Timezone, &s.HelpMessage, &disableEmails); err != nil {
			return nil, err
		}
		if err := parseWindow(&s, times); err != nil {
			return nil, fmt.Errorf("session %s: %w", s.Acronym, err)
		}
		s.DisableEmails = disableEmails != 0
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func insertClassChildren(ctx context.Context, tx *sql.Tx, class scheduler.Class) error {
	if err := insertParticipants(ctx, tx,
		`INSERT INTO class_participants (class_id, user_id, position) VALUES (?, ?, ?)`,
		class.ID, class.Participants); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO class_sessions (
			class_id, sequence, acronym, name, local_date,
			scheduled_start, scheduled_end, lobby_open, lobby_close,
			instructor_id, timezone, help_message, disable_emails)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range class.Sessions {
		if _, err := stmt.ExecContext(ctx,
			class.ID, s.Sequence, s.Acronym, s.Name, s.LocalDate,
			formatTime(s.ScheduledStart), formatTime(s.ScheduledEnd),
			formatTime(s.LobbyOpen), formatTime(s.LobbyClose),
			s.InstructorID, s.Timezone, s.HelpMessage, boolToInt(s.DisableEmails),
		); err != nil {
			return err
		}
	}
	return nil
}

func insertParticipants(ctx context.Context, tx *sql.Tx, query, ownerID string, userIDs []string) error {
	for i, userID := range userIDs {
		if _, err := tx.ExecContext(ctx, query, ownerID, userID, i); err != nil {
			return err
		}
	}
	return nil
}

func loadParticipants(ctx context.Context, tx *sql.Tx, query, ownerID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func parseWindow(s *scheduler.Session, times [4]string) error {
	targets := [4]*time.Time{&s.ScheduledStart, &s.ScheduledEnd, &s.LobbyOpen, &s.LobbyClose}
	for i, value := range times {
		t, err := parseTime(value)
		if err != nil {
			return err
		}
		*targets[i] = t
	}
	return nil
}

func formatWeekdays(days []time.Weekday) string {
	names := make([]string, len(days))
	for i, day := range days {
		names[i] = recurrence.FormatWeekday(day)
	}
	return strings.Join(names, ",")
}

func parseWeekdays(value string) ([]time.Weekday, error) {
	if value == "" {
		return nil, nil
	}
	return recurrence.ParseWeekdays(strings.Split(value, ","))
}
