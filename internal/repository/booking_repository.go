package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/gym-booking/internal/model"
)

// Outcome classifies a proposed booking.  Rejections and skips are normal
// results, not errors.
type Outcome string

const (
	// Accepted means the slot was free and the booking was written.
	Accepted Outcome = "accepted"
	// RejectedConflict means the member or trainer is busy at that slot
	// with a different booking.
	RejectedConflict Outcome = "rejected_conflict"
	// RejectedDuplicate means an identical booking already exists (create).
	RejectedDuplicate Outcome = "rejected_duplicate"
	// SkippedNoOp means the requested state already exists (update); no
	// row was changed.
	SkippedNoOp Outcome = "skipped_noop"
)

// Decision is the result of proposing a booking.  BookingID is the new or
// updated booking on Accepted, and the existing identical booking on
// RejectedDuplicate or SkippedNoOp.
type Decision struct {
	Outcome   Outcome `json:"outcome"`
	BookingID uint64  `json:"bookingId,omitempty"`
}

// BookingRepo owns the `bookings` table and the slot conflict rules: a
// member or trainer is in at most one booking per dateTime.
type BookingRepo struct {
	db Pool
}

// NewBookingRepo returns a new BookingRepo bound to the given pool.
func NewBookingRepo(db Pool) *BookingRepo { return &BookingRepo{db: db} }

// Booking ids start at 1, so excluding id 0 excludes nothing.
const qSlotConflict = `SELECT id FROM bookings
WHERE (memberId = ? OR trainerId = ?) AND dateTime = ? AND id <> ?
LIMIT 1`

const qSlotDuplicate = `SELECT id FROM bookings
WHERE memberId = ? AND trainerId = ? AND activityId = ? AND dateTime = ? AND id <> ?
LIMIT 1`

const qInsertBooking = `INSERT INTO bookings (memberId, trainerId, activityId, dateTime) VALUES (?, ?, ?, ?)`

const qUpdateBooking = `UPDATE bookings SET memberId = ?, trainerId = ?, activityId = ?, dateTime = ? WHERE id = ?`

const qBookingColumns = `SELECT id, memberId, trainerId, activityId, dateTime FROM bookings`

const qBookingDetail = `SELECT b.id, b.memberId, b.trainerId, b.activityId, b.dateTime,
m.firstName, m.lastName, lm.email, m.phone,
t.firstName, t.lastName, lt.email, t.phone,
a.name, a.durationMinutes
FROM bookings b
INNER JOIN members m ON b.memberId = m.id
INNER JOIN trainers t ON b.trainerId = t.id
INNER JOIN logins lm ON m.loginId = lm.id
INNER JOIN logins lt ON t.loginId = lt.id
INNER JOIN activities a ON b.activityId = a.id`

// Propose classifies slot against the bookings visible through q, ignoring
// booking excludeID (0 on create).  It first looks for any booking that
// occupies the member or trainer at that dateTime; only if one exists does
// it look for an exact four-field duplicate.  A duplicate is
// RejectedDuplicate on create and SkippedNoOp on update.
func (r *BookingRepo) Propose(ctx context.Context, q DBTX, slot model.Slot, excludeID uint64) (Decision, error) {
	var clash uint64
	err := q.QueryRowContext(ctx, qSlotConflict, slot.MemberID, slot.TrainerID, slot.DateTime, excludeID).Scan(&clash)
	if errors.Is(err, sql.ErrNoRows) {
		return Decision{Outcome: Accepted}, nil
	}
	if err != nil {
		return Decision{}, persist("check booking conflict", err)
	}

	var dup uint64
	err = q.QueryRowContext(ctx, qSlotDuplicate,
		slot.MemberID, slot.TrainerID, slot.ActivityID, slot.DateTime, excludeID).Scan(&dup)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return Decision{Outcome: RejectedConflict}, nil
	case err != nil:
		return Decision{}, persist("check booking duplicate", err)
	case excludeID == 0:
		return Decision{Outcome: RejectedDuplicate, BookingID: dup}, nil
	default:
		return Decision{Outcome: SkippedNoOp, BookingID: dup}, nil
	}
}

// Create proposes slot and inserts it when accepted.  A unique-key
// violation raised by a concurrent insert of the same slot is reported as
// RejectedConflict.
func (r *BookingRepo) Create(ctx context.Context, slot model.Slot) (Decision, error) {
	var d Decision
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var err error
		if d, err = r.Propose(ctx, tx, slot, 0); err != nil || d.Outcome != Accepted {
			return err
		}
		res, err := tx.ExecContext(ctx, qInsertBooking, slot.MemberID, slot.TrainerID, slot.ActivityID, slot.DateTime)
		if err != nil {
			if isDuplicateKey(err) {
				d = Decision{Outcome: RejectedConflict}
				return nil
			}
			return persist("insert booking", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return persist("insert booking", err)
		}
		d.BookingID = uint64(id)
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return d, nil
}

// Update moves booking id to slot.  Unknown ids yield ErrNotFound.  When
// the booking already equals slot, or another booking does, nothing is
// written and the decision is SkippedNoOp.
func (r *BookingRepo) Update(ctx context.Context, id uint64, slot model.Slot) (Decision, error) {
	var d Decision
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		current, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.Slot() == slot {
			d = Decision{Outcome: SkippedNoOp, BookingID: id}
			return nil
		}

		if d, err = r.Propose(ctx, tx, slot, id); err != nil || d.Outcome != Accepted {
			return err
		}
		if _, err := tx.ExecContext(ctx, qUpdateBooking,
			slot.MemberID, slot.TrainerID, slot.ActivityID, slot.DateTime, id); err != nil {
			if isDuplicateKey(err) {
				d = Decision{Outcome: RejectedConflict}
				return nil
			}
			return persist("update booking", err)
		}
		d.BookingID = id
		return nil
	})
	if err != nil {
		return Decision{}, err
	}
	return d, nil
}

// Delete removes booking id.  No matching row yields ErrNotFound.
func (r *BookingRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return persist("delete booking", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return persist("delete booking", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID fetches one booking.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	return r.get(ctx, r.db, id)
}

func (r *BookingRepo) get(ctx context.Context, q DBTX, id uint64) (model.Booking, error) {
	var b model.Booking
	err := q.QueryRowContext(ctx, qBookingColumns+" WHERE id = ?", id).
		Scan(&b.ID, &b.MemberID, &b.TrainerID, &b.ActivityID, &b.DateTime)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, persist("get booking", err)
}

// List returns every booking ordered by slot.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, qBookingColumns+" ORDER BY dateTime, id")
	if err != nil {
		return nil, persist("list bookings", err)
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.MemberID, &b.TrainerID, &b.ActivityID, &b.DateTime); err != nil {
			return nil, persist("scan booking", err)
		}
		out = append(out, b)
	}
	return out, persist("list bookings", rows.Err())
}

// DetailByID returns booking id with participant and activity details.
func (r *BookingRepo) DetailByID(ctx context.Context, id uint64) (model.BookingDetail, error) {
	rows, err := r.details(ctx, qBookingDetail+" WHERE b.id = ?", id)
	if err != nil {
		return model.BookingDetail{}, err
	}
	if len(rows) == 0 {
		return model.BookingDetail{}, ErrNotFound
	}
	return rows[0], nil
}

// DetailsByDate returns the bookings on date (YYYY-MM-DD) in slot order.
func (r *BookingRepo) DetailsByDate(ctx context.Context, date string) ([]model.BookingDetail, error) {
	return r.details(ctx, qBookingDetail+" WHERE DATE(b.dateTime) = ? ORDER BY b.dateTime, b.id", date)
}

func (r *BookingRepo) details(ctx context.Context, query string, arg any) ([]model.BookingDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, persist("list booking details", err)
	}
	defer rows.Close()

	out := []model.BookingDetail{}
	for rows.Next() {
		var d model.BookingDetail
		if err := rows.Scan(
			&d.ID, &d.MemberID, &d.TrainerID, &d.ActivityID, &d.DateTime,
			&d.MemberFirstName, &d.MemberLastName, &d.MemberEmail, &d.MemberPhone,
			&d.TrainerFirstName, &d.TrainerLastName, &d.TrainerEmail, &d.TrainerPhone,
			&d.ActivityName, &d.DurationMinutes,
		); err != nil {
			return nil, persist("scan booking detail", err)
		}
		out = append(out, d)
	}
	return out, persist("list booking details", rows.Err())
}
