// Package store provides guest persistence. The Postgres implementation
// is the production store; the in-memory implementation backs tests and
// defines the reference semantics for the conditional check-in update.
//
// The store is the only shared mutable resource in the system and the
// sole serialization point for concurrent scans of the same code, so two
// behaviors live here rather than in application logic:
//
//   - uniqueness of the guest code, enforced by a UNIQUE constraint so it
//     survives concurrent imports from multiple processes, and
//   - the attendance transition, applied as a single conditional UPDATE
//     with a predicate on the current status. A read-then-write in two
//     round trips would let two concurrent scans both observe
//     NOT_ATTENDED and both "win".
package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/doorlist/doorlist/internal/guest"
)

//go:embed schema.sql
var schemaSQL string

// InsertRetries is how many fresh codes to try when an insert hits the
// unique constraint on the guest code.
const InsertRetries = 3

// FailedInsert describes one row the store refused during a batch insert.
type FailedInsert struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Stats summarizes attendance across all guests.
type Stats struct {
	Total      int `json:"total"`
	Attended   int `json:"attended"`
	Unattended int `json:"unattended"`
}

// Postgres is the pgx-backed guest store.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an established connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the guests table and its constraints if absent.
// The schema is defined once at startup; there is no runtime migration.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const guestColumns = `name, phone_number, remarks, area, invited_status,
	attendance_status, check_in_time, unique_id, created_at, updated_at`

// InsertGuests persists a batch of new guest records inside one
// transaction. Each row gets its own savepoint so a single failure (for
// example a code collision) never aborts sibling rows. Collisions are
// retried with a freshly generated code before the row is given up on.
func (s *Postgres) InsertGuests(ctx context.Context, guests []*guest.Guest) (int, []FailedInsert, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx)

	var (
		inserted int
		failed   []FailedInsert
	)

	for i, g := range guests {
		sp := fmt.Sprintf("sp_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+sp); err != nil {
			return inserted, failed, fmt.Errorf("create savepoint: %w", err)
		}

		err := insertOne(ctx, tx, g)
		for attempt := 0; attempt < InsertRetries && isUniqueViolation(err); attempt++ {
			if _, spErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp); spErr != nil {
				return inserted, failed, fmt.Errorf("rollback savepoint: %w", spErr)
			}
			g.UniqueID = guest.NewCode()
			err = insertOne(ctx, tx, g)
		}
		if err != nil {
			if _, spErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+sp); spErr != nil {
				return inserted, failed, fmt.Errorf("rollback savepoint: %w", spErr)
			}
			reason := err.Error()
			if isUniqueViolation(err) {
				reason = guest.ErrDuplicateCode.Error()
			}
			failed = append(failed, FailedInsert{Name: g.Name, Reason: reason})
			continue
		}

		if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT "+sp); err != nil {
			return inserted, failed, fmt.Errorf("release savepoint: %w", err)
		}
		inserted++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit insert batch: %w", err)
	}
	return inserted, failed, nil
}

func insertOne(ctx context.Context, tx pgx.Tx, g *guest.Guest) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO guests (name, phone_number, remarks, area, invited_status, attendance_status, unique_id)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $6, $7)`,
		g.Name, g.PhoneNumber, g.Remarks, g.Area, g.InvitedStatus, g.AttendanceStatus, g.UniqueID)
	return err
}

// CheckIn atomically transitions the guest with the given normalized code
// from NOT_ATTENDED to ATTENDED. Under concurrent scans of the same code
// exactly one caller observes fresh=true; everyone else gets the stored
// record with its original check-in time.
func (s *Postgres) CheckIn(ctx context.Context, code string) (*guest.Guest, bool, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE guests
		SET attendance_status = 'ATTENDED', check_in_time = now(), updated_at = now()
		WHERE unique_id = $1 AND attendance_status = 'NOT_ATTENDED'
		RETURNING `+guestColumns, code)

	g, err := scanGuest(row)
	if err == nil {
		return g, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, fmt.Errorf("check in %s: %w", code, err)
	}

	// No row transitioned: the code is either unknown or already attended.
	g, err = s.FindByCode(ctx, code)
	if err != nil {
		return nil, false, err
	}
	return g, false, nil
}

// FindByCode returns the guest with the given normalized code, or
// guest.ErrNotFound.
func (s *Postgres) FindByCode(ctx context.Context, code string) (*guest.Guest, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE unique_id = $1`, code)

	g, err := scanGuest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, guest.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find guest %s: %w", code, err)
	}
	return g, nil
}

// ListGuests returns all guests, newest first.
func (s *Postgres) ListGuests(ctx context.Context) ([]*guest.Guest, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+guestColumns+` FROM guests ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()

	var guests []*guest.Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("list guests: %w", err)
		}
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}
	return guests, nil
}

// Stats counts guests by attendance status.
func (s *Postgres) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT count(*),
		       count(*) FILTER (WHERE attendance_status = 'ATTENDED')
		FROM guests`).Scan(&st.Total, &st.Attended)
	if err != nil {
		return Stats{}, fmt.Errorf("guest stats: %w", err)
	}
	st.Unattended = st.Total - st.Attended
	return st, nil
}

func scanGuest(row pgx.Row) (*guest.Guest, error) {
	var (
		g           guest.Guest
		phone       *string
		remarks     *string
		area        *string
		checkInTime *time.Time
	)
	err := row.Scan(&g.Name, &phone, &remarks, &area, &g.InvitedStatus,
		&g.AttendanceStatus, &checkInTime, &g.UniqueID, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.PhoneNumber = deref(phone)
	g.Remarks = deref(remarks)
	g.Area = deref(area)
	g.CheckInTime = checkInTime
	return &g, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
