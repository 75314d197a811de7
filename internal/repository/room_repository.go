package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/roomhub/roomhub/internal/model"
)

// MySQL error numbers checked when mapping driver errors to
// repository sentinels.
const (
	mysqlErrDupEntry     = 1062
	mysqlErrNoReferenced = 1452 // FK insert/update: parent row missing
	mysqlErrRowIsRefd    = 1451 // FK delete: child rows exist
)

func isMySQLErr(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// RoomRepo provides CRUD operations for rooms.  The scheduling core
// reads rooms through BookingRepo; this repo serves the browse and
// admin endpoints.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomCols = `id, floor_id, name, capacity, description, created_at`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	var rm model.Room
	var desc sql.NullString
	if err := row.Scan(&rm.ID, &rm.FloorID, &rm.Name, &rm.Capacity, &desc, &rm.CreatedAt); err != nil {
		return nil, err
	}
	if desc.Valid {
		v := desc.String
		rm.Description = &v
	}
	return &rm, nil
}

func collectRooms(rows *sql.Rows) ([]model.Room, error) {
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByFloor returns the rooms on a floor ordered by name.
func (r *RoomRepo) ListByFloor(ctx context.Context, floorID uint64) ([]model.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE floor_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, floorID)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// RoomOverview is a room joined with its floor and building names for
// the admin room listing.
type RoomOverview struct {
	ID           uint64  `json:"id"`
	FloorID      uint64  `json:"floor_id"`
	FloorNumber  int32   `json:"floor_number"`
	BuildingName string  `json:"building_name"`
	Name         string  `json:"name"`
	Capacity     uint32  `json:"capacity"`
	Description  *string `json:"description,omitempty"`
}

// ListAll returns every room with floor and building names, ordered
// by building, floor, room name.
func (r *RoomRepo) ListAll(ctx context.Context) ([]RoomOverview, error) {
	const q = `SELECT r.id, r.floor_id, f.floor_number, b.name, r.name, r.capacity, r.description
	           FROM rooms r
	           JOIN floors f ON f.id = r.floor_id
	           JOIN buildings b ON b.id = f.building_id
	           ORDER BY b.name, f.floor_number, r.name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomOverview, 0)
	for rows.Next() {
		var ov RoomOverview
		var desc sql.NullString
		if err := rows.Scan(&ov.ID, &ov.FloorID, &ov.FloorNumber, &ov.BuildingName,
			&ov.Name, &ov.Capacity, &desc); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			ov.Description = &v
		}
		out = append(out, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a room, or (nil, nil) when the ID does not resolve.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	const q = `SELECT ` + roomCols + ` FROM rooms WHERE id = ?`
	rm, err := scanRoom(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rm, err
}

// Create inserts a room and populates the generated ID.  An unknown
// floor surfaces as ErrFloorNotFound.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (floor_id, name, capacity, description) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.FloorID, rm.Name, rm.Capacity, rm.Description)
	if isMySQLErr(err, mysqlErrNoReferenced) {
		return ErrFloorNotFound
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return nil
}

// Update overwrites a room's mutable fields, keeping current values
// for nil capacity/description the way the admin edit form expects.
func (r *RoomRepo) Update(ctx context.Context, id, floorID uint64, name string, capacity *uint32, description *string) (*model.Room, error) {
	const q = `UPDATE rooms
	           SET floor_id = ?, name = ?,
	               capacity = COALESCE(?, capacity),
	               description = COALESCE(?, description)
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, floorID, name, capacity, description, id)
	if isMySQLErr(err, mysqlErrNoReferenced) {
		return nil, ErrFloorNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a room.  Rooms with bookings surface as ErrInUse.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if isMySQLErr(err, mysqlErrRowIsRefd) {
		return ErrInUse
	}
	return err
}
