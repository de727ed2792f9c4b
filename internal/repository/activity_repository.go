package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gym-booking/internal/model"
)

// ActivityRepo provides CRUD operations for activities.
type ActivityRepo struct {
	db Pool
}

func NewActivityRepo(db Pool) *ActivityRepo { return &ActivityRepo{db: db} }

const qActivityColumns = `SELECT id, name, category, description, intensityLevel, maxPeopleAllowed,
requirementOne, requirementTwo, durationMinutes, price FROM activities`

const qInsertActivity = `INSERT INTO activities
(name, category, description, intensityLevel, maxPeopleAllowed, requirementOne, requirementTwo, durationMinutes, price)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const qUpdateActivity = `UPDATE activities
SET name = ?, category = ?, description = ?, intensityLevel = ?, maxPeopleAllowed = ?,
requirementOne = ?, requirementTwo = ?, durationMinutes = ?, price = ?
WHERE id = ?`

func activityArgs(a model.Activity) []any {
	return []any{a.Name, a.Category, a.Description, a.IntensityLevel, a.MaxPeopleAllowed,
		a.RequirementOne, a.RequirementTwo, a.DurationMinutes, a.Price}
}

func scanActivity(s interface{ Scan(...any) error }, a *model.Activity) error {
	return s.Scan(&a.ID, &a.Name, &a.Category, &a.Description, &a.IntensityLevel, &a.MaxPeopleAllowed,
		&a.RequirementOne, &a.RequirementTwo, &a.DurationMinutes, &a.Price)
}

// Create inserts a and returns its id.
func (r *ActivityRepo) Create(ctx context.Context, a model.Activity) (uint64, error) {
	res, err := r.db.ExecContext(ctx, qInsertActivity, activityArgs(a)...)
	if err != nil {
		return 0, persist("insert activity", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persist("insert activity", err)
	}
	return uint64(id), nil
}

// Update overwrites activity id.  ErrNotFound when no row matched.
func (r *ActivityRepo) Update(ctx context.Context, id uint64, a model.Activity) error {
	res, err := r.db.ExecContext(ctx, qUpdateActivity, append(activityArgs(a), id)...)
	if err != nil {
		return persist("update activity", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes activity id; its bookings go with it.
func (r *ActivityRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM activities WHERE id = ?", id)
	if err != nil {
		return persist("delete activity", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches one activity.
func (r *ActivityRepo) GetByID(ctx context.Context, id uint64) (model.Activity, error) {
	var a model.Activity
	err := scanActivity(r.db.QueryRowContext(ctx, qActivityColumns+" WHERE id = ?", id), &a)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, persist("get activity", err)
}

// List returns all activities ordered by id.
func (r *ActivityRepo) List(ctx context.Context) ([]model.Activity, error) {
	rows, err := r.db.QueryContext(ctx, qActivityColumns+" ORDER BY id")
	if err != nil {
		return nil, persist("list activities", err)
	}
	defer rows.Close()

	out := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		if err := scanActivity(rows, &a); err != nil {
			return nil, persist("scan activity", err)
		}
		out = append(out, a)
	}
	return out, persist("list activities", rows.Err())
}
