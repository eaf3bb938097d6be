package store

import (
	"database/sql"
	"time"
)

// UsageEvent represents one dispatched gesture recorded in the database.
type UsageEvent struct {
	ID           int64
	OccurredAt   time.Time
	ProfileID    string
	GestureID    string
	GestureLabel string
	Tokens       string
	DirMode      string
	Action       string
	Distance     float64
}

// GestureCount is a per-gesture dispatch count for reporting.
type GestureCount struct {
	GestureID    string
	GestureLabel string
	Count        int
}

// UsageRepository provides operations on recorded gesture dispatches.
type UsageRepository struct {
	db *sql.DB
}

// Usage returns the usage repository for this store.
func (s *Store) Usage() *UsageRepository {
	return &UsageRepository{db: s.db}
}

// Record inserts a new usage event into the database.
func (r *UsageRepository) Record(e *UsageEvent) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO usage_events (occurred_at, profile_id, gesture_id, gesture_label, tokens, dir_mode, action, distance)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OccurredAt, e.ProfileID, e.GestureID, e.GestureLabel, e.Tokens, e.DirMode, e.Action, e.Distance,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id

	return nil
}

// Recent retrieves the most recent usage events, newest first.
func (r *UsageRepository) Recent(limit int) ([]*UsageEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, occurred_at, profile_id, gesture_id, gesture_label, tokens, dir_mode, action, distance
		 FROM usage_events ORDER BY occurred_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*UsageEvent
	for rows.Next() {
		e := &UsageEvent{}
		err := rows.Scan(&e.ID, &e.OccurredAt, &e.ProfileID, &e.GestureID, &e.GestureLabel,
			&e.Tokens, &e.DirMode, &e.Action, &e.Distance)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountsByGesture aggregates dispatch counts per gesture since the given
// time, most used first. A zero time aggregates the full history.
func (r *UsageRepository) CountsByGesture(since time.Time) ([]*GestureCount, error) {
	query := `SELECT gesture_id, MAX(gesture_label), COUNT(*) AS n FROM usage_events`
	var args []any
	if !since.IsZero() {
		query += ` WHERE occurred_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY gesture_id ORDER BY n DESC, gesture_id ASC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*GestureCount
	for rows.Next() {
		c := &GestureCount{}
		if err := rows.Scan(&c.GestureID, &c.GestureLabel, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// PruneBefore deletes events older than the cutoff and reports how many rows
// were removed.
func (r *UsageRepository) PruneBefore(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM usage_events WHERE occurred_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
