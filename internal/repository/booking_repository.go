package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/roomhub/roomhub/internal/model"
	"github.com/roomhub/roomhub/internal/scheduling"
)

// querier is satisfied by both *sql.DB and *sql.Tx so the same query
// methods can run inside or outside a transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// BookingRepo is the MySQL implementation of scheduling.Store plus
// the joined listing queries used by the HTTP layer.  All timestamp
// columns are stored in UTC (the DSN uses loc=UTC).
type BookingRepo struct {
	db *sql.DB
	q  querier
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db, q: db} }

const bookingCols = `id, reference, room_id, user_id, start_time, end_time, purpose, status, admin_reason, created_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var status string
	var reason sql.NullString
	err := row.Scan(&b.ID, &b.Reference, &b.RoomID, &b.UserID, &b.StartTime, &b.EndTime,
		&b.Purpose, &status, &reason, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.Status = model.BookingStatus(status)
	if reason.Valid {
		v := reason.String
		b.AdminReason = &v
	}
	return &b, nil
}

func collectBookings(rows *sql.Rows) ([]model.Booking, error) {
	defer rows.Close()
	out := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ActiveBookingsForRoom returns the pending and approved bookings of
// a single room ordered by start time.  Rejected rows never take part
// in scheduling and are filtered out here.
func (r *BookingRepo) ActiveBookingsForRoom(ctx context.Context, roomID uint64) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
	           WHERE room_id = ? AND status IN ('pending','approved')
	           ORDER BY start_time`
	rows, err := r.q.QueryContext(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// BookingByID returns a single booking, or (nil, nil) when the ID
// does not resolve.
func (r *BookingRepo) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.q.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// InsertBooking persists a new booking and queries the row back to
// populate the generated ID and created_at default.
func (r *BookingRepo) InsertBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, room_id, user_id, start_time, end_time, purpose, status)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.ExecContext(ctx, q, b.Reference, b.RoomID, b.UserID, b.StartTime, b.EndTime, b.Purpose, string(b.Status))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	const sel = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	stored, err := scanBooking(r.q.QueryRowContext(ctx, sel, id))
	if err != nil {
		return err
	}
	*b = *stored
	return nil
}

// UpdateBookingStatus sets status and admin_reason on a booking and
// returns the updated row, or (nil, nil) when the booking does not
// exist.
func (r *BookingRepo) UpdateBookingStatus(ctx context.Context, id uint64, status model.BookingStatus, reason *string) (*model.Booking, error) {
	const q = `UPDATE bookings SET status = ?, admin_reason = ? WHERE id = ?`
	if _, err := r.q.ExecContext(ctx, q, string(status), reason, id); err != nil {
		return nil, err
	}
	// RowsAffected is 0 both for a missing row and for a no-op update,
	// so read the row back to tell the cases apart.
	const sel = `SELECT ` + bookingCols + ` FROM bookings WHERE id = ?`
	b, err := scanBooking(r.q.QueryRowContext(ctx, sel, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return b, err
}

// RoomsForFloor returns the rooms of a floor ordered by name, the
// order the availability grid renders them in.
func (r *BookingRepo) RoomsForFloor(ctx context.Context, floorID uint64) ([]model.Room, error) {
	const q = `SELECT id, floor_id, name, capacity, description, created_at
	           FROM rooms WHERE floor_id = ? ORDER BY name`
	rows, err := r.q.QueryContext(ctx, q, floorID)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// BookingsOverlapping returns every active booking across all rooms
// whose window strictly overlaps [start, end).
func (r *BookingRepo) BookingsOverlapping(ctx context.Context, start, end time.Time) ([]model.Booking, error) {
	const q = `SELECT ` + bookingCols + ` FROM bookings
	           WHERE status IN ('pending','approved')
	           AND start_time < ? AND end_time > ?
	           ORDER BY room_id, start_time`
	rows, err := r.q.QueryContext(ctx, q, end, start)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// WithRoomLock opens a transaction, takes a row lock on the room and
// runs fn against a transaction-scoped store.  The lock serializes
// conflict-check-then-write sequences per room, so two concurrent
// creates or approvals for the same room cannot both pass the check
// and commit overlapping windows.  A missing room surfaces as
// ErrRoomNotFound.
func (r *BookingRepo) WithRoomLock(ctx context.Context, roomID uint64, fn func(scheduling.Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var locked uint64
	err = tx.QueryRowContext(ctx, `SELECT id FROM rooms WHERE id = ? FOR UPDATE`, roomID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoomNotFound
	}
	if err != nil {
		return fmt.Errorf("lock room %d: %w", roomID, err)
	}

	if err := fn(&BookingRepo{db: r.db, q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}

// ListByRoom returns a room's bookings ordered by start time,
// optionally filtered by status.  Used by the admin room view.
func (r *BookingRepo) ListByRoom(ctx context.Context, roomID uint64, status model.BookingStatus) ([]model.Booking, error) {
	q := `SELECT ` + bookingCols + ` FROM bookings WHERE room_id = ?`
	args := []any{roomID}
	if status != "" {
		q += ` AND status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY start_time`
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectBookings(rows)
}

// BookingDetail is a booking joined with requester and location names
// for list endpoints.  UserName is empty on the requester's own
// listing, which already knows who they are.
type BookingDetail struct {
	ID           uint64    `json:"id"`
	Reference    string    `json:"reference"`
	RoomID       uint64    `json:"room_id"`
	RoomName     string    `json:"room_name"`
	FloorNumber  int32     `json:"floor_number"`
	BuildingName string    `json:"building_name"`
	UserName     string    `json:"user_name,omitempty"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Purpose      string    `json:"purpose"`
	Status       string    `json:"status"`
	AdminReason  *string   `json:"admin_reason,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

const detailJoin = ` FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN floors f ON f.id = r.floor_id
	JOIN buildings bu ON bu.id = f.building_id`

func collectDetails(rows *sql.Rows, withUser bool) ([]BookingDetail, error) {
	defer rows.Close()
	out := make([]BookingDetail, 0)
	for rows.Next() {
		var d BookingDetail
		var reason sql.NullString
		dest := []any{&d.ID, &d.Reference, &d.RoomID, &d.StartTime, &d.EndTime, &d.Purpose,
			&d.Status, &reason, &d.CreatedAt, &d.RoomName, &d.FloorNumber, &d.BuildingName}
		if withUser {
			dest = append(dest, &d.UserName)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		if reason.Valid {
			v := reason.String
			d.AdminReason = &v
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// AdminList returns all bookings joined with requester and location
// names for the admin dashboard, newest first, optionally filtered by
// status.
func (r *BookingRepo) AdminList(ctx context.Context, status model.BookingStatus) ([]BookingDetail, error) {
	q := `SELECT b.id, b.reference, b.room_id, b.start_time, b.end_time, b.purpose,
	             b.status, b.admin_reason, b.created_at,
	             r.name, f.floor_number, bu.name, u.name` + detailJoin + `
	      JOIN users u ON u.id = b.user_id`
	args := []any{}
	if status != "" {
		q += ` WHERE b.status = ?`
		args = append(args, string(status))
	}
	q += ` ORDER BY b.created_at DESC`
	rows, err := r.q.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows, true)
}

// ListByUser returns a requester's own bookings with location names,
// newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.room_id, b.start_time, b.end_time, b.purpose,
	                  b.status, b.admin_reason, b.created_at,
	                  r.name, f.floor_number, bu.name` + detailJoin + `
	           WHERE b.user_id = ?
	           ORDER BY b.created_at DESC`
	rows, err := r.q.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collectDetails(rows, false)
}
