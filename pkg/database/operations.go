package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const activityColumns = `id, title, description, due_date, due_time, category, reminders, is_completed, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// LoadPending retrieves the activities that are not completed, soonest first.
// Activities without a due time sort after timed ones on the same day.
func (s *Store) LoadPending(ctx context.Context) ([]Activity, error) {
	return s.query(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		WHERE is_completed = 0
		ORDER BY due_date ASC, due_time IS NULL, due_time ASC, id ASC
	`)
}

// LoadAll retrieves every activity including completed ones
func (s *Store) LoadAll(ctx context.Context) ([]Activity, error) {
	return s.query(ctx, `
		SELECT `+activityColumns+`
		FROM activities
		ORDER BY due_date ASC, due_time IS NULL, due_time ASC, id ASC
	`)
}

// GetByID looks up one activity. A missing id yields nil and no error.
func (s *Store) GetByID(ctx context.Context, id int64) (*Activity, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get activity %d", id)
	}
	return &a, nil
}

// Insert stores a new activity and returns its id. An activity with id 0 gets a
// fresh id; a non-zero id replaces any row that already has it.
func (s *Store) Insert(ctx context.Context, a Activity) (int64, error) {
	if err := checkActivity(a); err != nil {
		return 0, err
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	reminders, err := encodeReminders(a.Reminders)
	if err != nil {
		return 0, err
	}

	var id any
	if a.ID != 0 {
		id = a.ID
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO activities (id, title, description, due_date, due_time, category, reminders, is_completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		a.Title,
		a.Description,
		a.DueDate.String(),
		nullableTime(a.DueTime),
		a.Category.Label(),
		reminders,
		a.IsCompleted,
		a.CreatedAt.UnixMilli(),
	)
	if err != nil {
		return 0, errors.Wrap(err, "insert activity")
	}

	newID, err := result.LastInsertId()
	if err != nil {
		return 0, errors.Wrap(err, "read inserted id")
	}

	log.Debug().Int64("id", newID).Str("title", a.Title).Msg("activity inserted")
	s.broadcast()
	return newID, nil
}

// Update replaces every mutable column of the activity with the same id.
// created_at is kept. Returns ErrActivityNotFound if the id has no row.
func (s *Store) Update(ctx context.Context, a Activity) error {
	if err := checkActivity(a); err != nil {
		return err
	}
	reminders, err := encodeReminders(a.Reminders)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE activities SET title = ?, description = ?, due_date = ?, due_time = ?, category = ?, reminders = ?, is_completed = ?
		 WHERE id = ?`,
		a.Title,
		a.Description,
		a.DueDate.String(),
		nullableTime(a.DueTime),
		a.Category.Label(),
		reminders,
		a.IsCompleted,
		a.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "update activity %d", a.ID)
	}
	if err := requireRow(result, a.ID); err != nil {
		return err
	}

	log.Debug().Int64("id", a.ID).Msg("activity updated")
	s.broadcast()
	return nil
}

// SetCompleted updates only the completion flag of an activity
func (s *Store) SetCompleted(ctx context.Context, id int64, completed bool) error {
	result, err := s.db.ExecContext(ctx, "UPDATE activities SET is_completed = ? WHERE id = ?", completed, id)
	if err != nil {
		return errors.Wrapf(err, "set completion of activity %d", id)
	}
	if err := requireRow(result, id); err != nil {
		return err
	}

	log.Debug().Int64("id", id).Bool("completed", completed).Msg("activity completion changed")
	s.broadcast()
	return nil
}

// DeleteByID removes an activity. Deleting a missing id is not an error.
func (s *Store) DeleteByID(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return errors.Wrapf(err, "delete activity %d", id)
	}
	if n, _ := result.RowsAffected(); n > 0 {
		log.Debug().Int64("id", id).Msg("activity deleted")
		s.broadcast()
	}
	return nil
}

// Delete removes the given activity by its id
func (s *Store) Delete(ctx context.Context, a Activity) error {
	return s.DeleteByID(ctx, a.ID)
}

// PurgeCompleted removes every completed activity and returns how many went
func (s *Store) PurgeCompleted(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM activities WHERE is_completed = 1")
	if err != nil {
		return 0, errors.Wrap(err, "purge completed activities")
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "count purged activities")
	}
	if n > 0 {
		s.broadcast()
	}
	log.Debug().Int64("count", n).Msg("completed activities purged")
	return n, nil
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Activity, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query activities")
	}
	defer rows.Close()

	items := []Activity{}
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan activity")
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate activities")
	}

	log.Trace().Int("count", len(items)).Msg("loaded activities")
	return items, nil
}

func scanActivity(row rowScanner) (Activity, error) {
	var (
		a         Activity
		dueDate   string
		dueTime   sql.NullString
		category  string
		reminders string
		createdAt int64
	)

	if err := row.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&dueDate,
		&dueTime,
		&category,
		&reminders,
		&a.IsCompleted,
		&createdAt,
	); err != nil {
		return Activity{}, err
	}

	var err error
	if a.DueDate, err = ParseDate(dueDate); err != nil {
		return Activity{}, err
	}
	if dueTime.Valid && dueTime.String != "" {
		t, err := ParseTimeOfDay(dueTime.String)
		if err != nil {
			return Activity{}, err
		}
		a.DueTime = &t
	}
	if a.Reminders, err = decodeReminders(reminders); err != nil {
		return Activity{}, err
	}
	a.Category = Category(category)
	a.CreatedAt = time.UnixMilli(createdAt).UTC()

	return a, nil
}

// checkActivity rejects rows that could not be read back
func checkActivity(a Activity) error {
	if !a.DueDate.Valid() {
		return errors.Wrapf(ErrInvalidActivity, "due date %+v", a.DueDate)
	}
	if a.DueTime != nil && !a.DueTime.Valid() {
		return errors.Wrapf(ErrInvalidActivity, "due time %02d:%02d", a.DueTime.Hour, a.DueTime.Minute)
	}
	for _, r := range a.Reminders {
		if r.Amount <= 0 {
			return errors.Wrapf(ErrInvalidActivity, "reminder amount %d", r.Amount)
		}
	}
	return nil
}

func nullableTime(t *TimeOfDay) any {
	if t == nil {
		return nil
	}
	return t.String()
}

func requireRow(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "count affected rows")
	}
	if n == 0 {
		return errors.Wrapf(ErrActivityNotFound, "activity %d", id)
	}
	return nil
}
