package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/metrics"
	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/queue"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/service"
)

const (
	msgBookingNotFound = "No bookings found with the ID provided"
	msgBookingExists   = "Same booking record already exists"
	msgSlotTaken       = "The selected member and/or trainer is not available at the given date and time"
	msgNoChange        = "No change to booking has been made"
)

type bookingRequest struct {
	MemberID   uint64 `json:"memberId" validate:"required,min=1"`
	TrainerID  uint64 `json:"trainerId" validate:"required,min=1"`
	ActivityID uint64 `json:"activityId" validate:"required,min=1"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Time       string `json:"time" validate:"required,hourslot"`
}

func (r bookingRequest) slot() model.Slot {
	return model.Slot{
		MemberID:   r.MemberID,
		TrainerID:  r.TrainerID,
		ActivityID: r.ActivityID,
		DateTime:   r.Date + " " + r.Time,
	}
}

// BookingHandler serves /api/bookings.
type BookingHandler struct {
	Base
	Bookings   *repository.BookingRepo
	Members    *repository.Provisioner[model.Member, *model.Member]
	Trainers   *repository.Provisioner[model.Trainer, *model.Trainer]
	Activities *repository.ActivityRepo
	Events     service.EventPublisher
}

// List handles GET /api/bookings.
func (h *BookingHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.Bookings.List(ctx)
	if err != nil {
		return h.storeError(c, "list bookings", err, msgBookingNotFound)
	}
	return success(c, http.StatusOK, "Booking records successfully retrieved", echo.Map{"bookings": rows})
}

func (h *BookingHandler) options(ctx context.Context) (model.BookingOptions, error) {
	var (
		o   model.BookingOptions
		err error
	)
	if o.Members, err = h.Members.List(ctx); err != nil {
		return o, err
	}
	if o.Trainers, err = h.Trainers.List(ctx); err != nil {
		return o, err
	}
	o.Activities, err = h.Activities.List(ctx)
	return o, err
}

// Options handles GET /api/bookings/options.
func (h *BookingHandler) Options(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	o, err := h.options(ctx)
	if err != nil {
		return h.storeError(c, "list booking options", err, msgBookingNotFound)
	}
	return success(c, http.StatusOK, "Booking options successfully retrieved", echo.Map{"options": o})
}

// ByDate handles GET /api/bookings/by/date/:date.
func (h *BookingHandler) ByDate(c echo.Context) error {
	date := c.Param("date")
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.Bookings.DetailsByDate(ctx, date)
	if err != nil {
		return h.storeError(c, "list bookings by date", err, msgBookingNotFound)
	}
	if len(rows) == 0 {
		return fail(c, http.StatusNotFound, "No booking found with the date provided")
	}
	return success(c, http.StatusOK, "Booking record successfully retrieved", echo.Map{"bookings": rows})
}

// Get handles GET /api/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	d, err := h.Bookings.DetailByID(ctx, id)
	if err != nil {
		return h.storeError(c, "get booking", err, msgBookingNotFound)
	}
	return success(c, http.StatusOK, "Booking record successfully retrieved", echo.Map{"booking": d})
}

// GetWithOptions handles GET /api/bookings/:id/with_options.
func (h *BookingHandler) GetWithOptions(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, "get booking", err, msgBookingNotFound)
	}
	o, err := h.options(ctx)
	if err != nil {
		return h.storeError(c, "list booking options", err, msgBookingNotFound)
	}
	return success(c, http.StatusOK, "Booking record and options successfully retrieved",
		echo.Map{"booking": b, "options": o})
}

// Create handles POST /api/bookings.  Conflicts and duplicates are 409s
// carrying the decision; only an accepted booking is written and announced.
func (h *BookingHandler) Create(c echo.Context) error {
	var req bookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	slot := req.slot()

	ctx, cancel := h.ctx(c)
	defer cancel()

	d, err := h.Bookings.Create(ctx, slot)
	if err != nil {
		return h.storeError(c, "create booking", err, msgBookingNotFound)
	}
	metrics.RecordBookingDecision("create", string(d.Outcome))

	switch d.Outcome {
	case repository.RejectedDuplicate:
		return c.JSON(http.StatusConflict, echo.Map{"status": "error", "message": msgBookingExists, "decision": d})
	case repository.RejectedConflict:
		return c.JSON(http.StatusConflict, echo.Map{"status": "error", "message": msgSlotTaken, "decision": d})
	}
	h.publish(c, queue.NewBookingEvent(queue.BookingCreated, d.BookingID, slot))
	return success(c, http.StatusCreated, "Booking successfully created", echo.Map{"decision": d, "id": d.BookingID})
}

// Update handles PATCH /api/bookings/:id.
func (h *BookingHandler) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	var req bookingRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	slot := req.slot()

	ctx, cancel := h.ctx(c)
	defer cancel()

	d, err := h.Bookings.Update(ctx, id, slot)
	if err != nil {
		return h.storeError(c, "update booking", err, msgBookingNotFound)
	}
	metrics.RecordBookingDecision("update", string(d.Outcome))

	switch d.Outcome {
	case repository.SkippedNoOp:
		return success(c, http.StatusOK, msgNoChange, echo.Map{"decision": d})
	case repository.RejectedConflict:
		return c.JSON(http.StatusConflict, echo.Map{"status": "error", "message": msgSlotTaken, "decision": d})
	}
	h.publish(c, queue.NewBookingEvent(queue.BookingUpdated, id, slot))
	return success(c, http.StatusOK, "Booking successfully updated", echo.Map{"decision": d, "id": id})
}

// Delete handles DELETE /api/bookings/:id.
func (h *BookingHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	// Read first so the event can carry the slot that was freed.
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, "delete booking", err, msgBookingNotFound)
	}
	if err := h.Bookings.Delete(ctx, id); err != nil {
		return h.storeError(c, "delete booking", err, msgBookingNotFound)
	}
	h.publish(c, queue.NewBookingEvent(queue.BookingDeleted, id, b.Slot()))
	return success(c, http.StatusOK, "Booking successfully deleted", nil)
}

// publish announces a committed change.  A broker failure is logged by the
// publisher and never turns a successful write into an error response.
func (h *BookingHandler) publish(c echo.Context, ev queue.BookingEvent) {
	if h.Events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), 2*time.Second)
	defer cancel()
	_ = h.Events.PublishBooking(ctx, ev)
}
