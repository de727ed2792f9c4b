package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gym-booking/internal/model"
)

// BlogRepo provides CRUD operations for blog posts.  Only the author or an
// Admin may change a post.
type BlogRepo struct{ db Pool }

func NewBlogRepo(db Pool) *BlogRepo { return &BlogRepo{db: db} }

const qBlogColumns = `SELECT id, title, body, loginId, createdAt, updatedAt FROM blogs`

// Create inserts a post authored by loginID and returns its id.
func (r *BlogRepo) Create(ctx context.Context, loginID uint64, title, body string) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO blogs (title, body, loginId, createdAt) VALUES (?, ?, ?, NOW())",
		title, body, loginID)
	if err != nil {
		return 0, persist("insert blog", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, persist("insert blog", err)
	}
	return uint64(id), nil
}

// Update rewrites post id on behalf of loginID.
func (r *BlogRepo) Update(ctx context.Context, id, loginID uint64, role model.Role, title, body string) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.authorize(ctx, tx, id, loginID, role); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx,
			"UPDATE blogs SET title = ?, body = ?, updatedAt = NOW() WHERE id = ?", title, body, id)
		return persist("update blog", err)
	})
}

// Delete removes post id on behalf of loginID.
func (r *BlogRepo) Delete(ctx context.Context, id, loginID uint64, role model.Role) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.authorize(ctx, tx, id, loginID, role); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM blogs WHERE id = ?", id)
		return persist("delete blog", err)
	})
}

// authorize returns ErrNotFound for unknown posts and ErrForbidden when
// loginID is neither the author nor an Admin.
func (r *BlogRepo) authorize(ctx context.Context, tx *sql.Tx, id, loginID uint64, role model.Role) error {
	var author uint64
	err := tx.QueryRowContext(ctx, "SELECT loginId FROM blogs WHERE id = ?", id).Scan(&author)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return persist("get blog author", err)
	}
	if author != loginID && role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

// GetByID fetches one post.
func (r *BlogRepo) GetByID(ctx context.Context, id uint64) (model.Blog, error) {
	var b model.Blog
	err := r.db.QueryRowContext(ctx, qBlogColumns+" WHERE id = ?", id).
		Scan(&b.ID, &b.Title, &b.Body, &b.LoginID, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, persist("get blog", err)
}

// List returns all posts, newest first.
func (r *BlogRepo) List(ctx context.Context) ([]model.Blog, error) {
	rows, err := r.db.QueryContext(ctx, qBlogColumns+" ORDER BY createdAt DESC, id DESC")
	if err != nil {
		return nil, persist("list blogs", err)
	}
	defer rows.Close()

	out := []model.Blog{}
	for rows.Next() {
		var b model.Blog
		if err := rows.Scan(&b.ID, &b.Title, &b.Body, &b.LoginID, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, persist("scan blog", err)
		}
		out = append(out, b)
	}
	return out, persist("list blogs", rows.Err())
}
