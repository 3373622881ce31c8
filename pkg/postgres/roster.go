package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Oliverngu/roster-advisor/pkg/db"
)

const dateKeyLayout = "2006-01-02"

// GetUsers retrieves all staff members with their unit memberships
func (d *DB) GetUsers(ctx context.Context) ([]db.UserRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT u.id, u.name, u.active, COALESCE(array_agg(m.unit_id) FILTER (WHERE m.unit_id IS NOT NULL), '{}')
		FROM app_user u
		LEFT JOIN user_unit m ON m.user_id = u.id
		GROUP BY u.id, u.name, u.active
		ORDER BY u.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []db.UserRecord
	for rows.Next() {
		var u db.UserRecord
		if err := rows.Scan(&u.ID, &u.Name, &u.Active, &u.UnitIDs); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// GetPositions retrieves all position records
func (d *DB) GetPositions(ctx context.Context) ([]db.PositionRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, name FROM position ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query positions: %w", err)
	}
	defer rows.Close()

	var positions []db.PositionRecord
	for rows.Next() {
		var p db.PositionRecord
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		positions = append(positions, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating positions: %w", err)
	}

	return positions, nil
}

// GetShifts retrieves the shifts of one unit for the given date keys
func (d *DB) GetShifts(ctx context.Context, unitID string, dateKeys []string) ([]db.ShiftRecord, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT id, unit_id, user_id, date_key, start_time, end_time, position_id, is_day_off
		FROM shift
		WHERE unit_id = $1 AND date_key = ANY($2::date[])
		ORDER BY date_key, start_time, id
	`, unitID, dateKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to query shifts: %w", err)
	}
	defer rows.Close()

	shifts, err := scanShifts(rows)
	if err != nil {
		return nil, err
	}
	return shifts, nil
}

// ReplaceShifts atomically swaps the stored shifts of one unit for the given
// date keys with the provided set
func (d *DB) ReplaceShifts(ctx context.Context, unitID string, dateKeys []string, shifts []db.ShiftRecord) error {
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := replaceShiftsTx(ctx, tx, unitID, dateKeys, shifts); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertUsers inserts or updates staff members and their unit memberships
func (d *DB) UpsertUsers(ctx context.Context, users []db.UserRecord) error {
	if len(users) == 0 {
		return nil
	}

	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, u := range users {
		_, err := tx.Exec(ctx, `
			INSERT INTO app_user (id, name, active)
			VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active
		`, u.ID, u.Name, u.Active)
		if err != nil {
			return fmt.Errorf("failed to upsert user %s: %w", u.ID, err)
		}

		_, err = tx.Exec(ctx, `DELETE FROM user_unit WHERE user_id = $1`, u.ID)
		if err != nil {
			return fmt.Errorf("failed to clear unit memberships for %s: %w", u.ID, err)
		}
		for _, unitID := range u.UnitIDs {
			_, err := tx.Exec(ctx, `
				INSERT INTO user_unit (user_id, unit_id) VALUES ($1, $2)
			`, u.ID, unitID)
			if err != nil {
				return fmt.Errorf("failed to insert unit membership for %s: %w", u.ID, err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// UpsertPositions inserts or updates position records
func (d *DB) UpsertPositions(ctx context.Context, positions []db.PositionRecord) error {
	if len(positions) == 0 {
		return nil
	}

	for _, p := range positions {
		_, err := d.pool.Exec(ctx, `
			INSERT INTO position (id, name)
			VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
		`, p.ID, p.Name)
		if err != nil {
			return fmt.Errorf("failed to upsert position %s: %w", p.ID, err)
		}
	}

	return nil
}

func replaceShiftsTx(ctx context.Context, tx pgx.Tx, unitID string, dateKeys []string, shifts []db.ShiftRecord) error {
	_, err := tx.Exec(ctx, `
		DELETE FROM shift WHERE unit_id = $1 AND date_key = ANY($2::date[])
	`, unitID, dateKeys)
	if err != nil {
		return fmt.Errorf("failed to clear shifts: %w", err)
	}

	for _, s := range shifts {
		_, err := tx.Exec(ctx, `
			INSERT INTO shift (id, unit_id, user_id, date_key, start_time, end_time, position_id, is_day_off)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, s.ID, s.UnitID, s.UserID, s.DateKey, s.StartTime, s.EndTime, s.PositionID, s.IsDayOff)
		if err != nil {
			return fmt.Errorf("failed to insert shift %s: %w", s.ID, err)
		}
	}

	return nil
}

func scanShifts(rows pgx.Rows) ([]db.ShiftRecord, error) {
	var shifts []db.ShiftRecord
	for rows.Next() {
		var s db.ShiftRecord
		var dateKey time.Time
		if err := rows.Scan(&s.ID, &s.UnitID, &s.UserID, &dateKey, &s.StartTime, &s.EndTime, &s.PositionID, &s.IsDayOff); err != nil {
			return nil, fmt.Errorf("failed to scan shift: %w", err)
		}
		s.DateKey = dateKey.Format(dateKeyLayout)
		shifts = append(shifts, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating shifts: %w", err)
	}

	return shifts, nil
}
