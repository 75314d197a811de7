package repository

import (
	"context"
	"database/sql"

	"github.com/roomhub/roomhub/internal/model"
)

// BuildingRepo provides CRUD operations for buildings.
type BuildingRepo struct {
	db *sql.DB
}

// NewBuildingRepo returns a BuildingRepo bound to the given database.
func NewBuildingRepo(db *sql.DB) *BuildingRepo { return &BuildingRepo{db: db} }

// List returns all buildings ordered by name.
func (r *BuildingRepo) List(ctx context.Context) ([]model.Building, error) {
	const q = `SELECT id, name, created_at FROM buildings ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Building, 0)
	for rows.Next() {
		var b model.Building
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a building and populates the generated ID.
func (r *BuildingRepo) Create(ctx context.Context, b *model.Building) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO buildings (name) VALUES (?)`, b.Name)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// Update renames a building and reports whether the row existed.
func (r *BuildingRepo) Update(ctx context.Context, id uint64, name string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE buildings SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// Delete removes a building.  Buildings with floors surface as
// ErrInUse.
func (r *BuildingRepo) Delete(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM buildings WHERE id = ?`, id)
	if isMySQLErr(err, mysqlErrRowIsRefd) {
		return ErrInUse
	}
	return err
}
