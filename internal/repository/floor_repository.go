package repository

import (
	"context"
	"database/sql"

	"github.com/roomhub/roomhub/internal/model"
)

// FloorRepo provides CRUD operations for floors.
type FloorRepo struct {
	db *sql.DB
}

// NewFloorRepo returns a FloorRepo bound to the given database.
func NewFloorRepo(db *sql.DB) *FloorRepo { return &FloorRepo{db: db} }

// ListByBuilding returns a building's floors ordered by floor number.
func (r *FloorRepo) ListByBuilding(ctx context.Context, buildingID uint64) ([]model.Floor, error) {
	const q = `SELECT id, building_id, floor_number, created_at
	           FROM floors WHERE building_id = ? ORDER BY floor_number`
	rows, err := r.db.QueryContext(ctx, q, buildingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Floor, 0)
	for rows.Next() {
		var f model.Floor
		if err := rows.Scan(&f.ID, &f.BuildingID, &f.FloorNumber, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FloorOverview is a floor joined with its building name for the
// admin floor listing.
type FloorOverview struct {
	ID           uint64 `json:"id"`
	BuildingID   uint64 `json:"building_id"`
	BuildingName string `json:"building_name"`
	FloorNumber  int32  `json:"floor_number"`
}

// ListAll returns every floor with its building name, ordered by
// building then floor number.
func (r *FloorRepo) ListAll(ctx context.Context) ([]FloorOverview, error) {
	const q = `SELECT f.id, f.building_id, b.name, f.floor_number
	           FROM floors f
	           JOIN buildings b ON b.id = f.building_id
	           ORDER BY b.name, f.floor_number`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]FloorOverview, 0)
	for rows.Next() {
		var ov FloorOverview
		if err := rows.Scan(&ov.ID, &ov.BuildingID, &ov.BuildingName, &ov.FloorNumber); err != nil {
			return nil, err
		}
		out = append(out, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a floor and populates the generated ID.  Unknown
// buildings surface as ErrBuildingNotFound.
func (r *FloorRepo) Create(ctx context.Context, f *model.Floor) error {
	const q = `INSERT INTO floors (building_id, floor_number) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, f.BuildingID, f.FloorNumber)
	if isMySQLErr(err, mysqlErrNoReferenced) {
		return ErrBuildingNotFound
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// Update moves or renumbers a floor and reports whether the row
// existed.
func (r *FloorRepo) Update(ctx context.Context, id, buildingID uint64, floorNumber int32) (bool, error) {
	const q = `UPDATE floors SET building_id = ?, floor_number = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, buildingID, floorNumber, id)
	if isMySQLErr(err, mysqlErrNoReferenced) {
		return false, ErrBuildingNotFound
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a floor.  Floors with rooms surface as ErrInUse.
func (r *FloorRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM floors WHERE id = ?`, id)
	if isMySQLErr(err, mysqlErrRowIsRefd) {
		return ErrInUse
	}
	return err
}
