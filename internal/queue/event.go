// Package queue defines the booking event payload and the consumer that
// records those events.
package queue

import (
	"time"

	"github.com/iliyamo/gym-booking/internal/model"
)

// BookingQueue is the durable queue booking events are routed to.
const BookingQueue = "booking.events"

// Booking event types.
const (
	BookingCreated = "booking.created"
	BookingUpdated = "booking.updated"
	BookingDeleted = "booking.deleted"
)

// BookingEvent is published after a booking write commits.  It carries the
// booking's four defining fields so consumers need not query the database.
type BookingEvent struct {
	Type       string `json:"type"`
	BookingID  uint64 `json:"bookingId"`
	MemberID   uint64 `json:"memberId"`
	TrainerID  uint64 `json:"trainerId"`
	ActivityID uint64 `json:"activityId"`
	DateTime   string `json:"dateTime"`
	OccurredAt string `json:"occurredAt"`
}

// NewBookingEvent stamps an event of type typ for booking id at slot.
func NewBookingEvent(typ string, id uint64, slot model.Slot) BookingEvent {
	return BookingEvent{
		Type:       typ,
		BookingID:  id,
		MemberID:   slot.MemberID,
		TrainerID:  slot.TrainerID,
		ActivityID: slot.ActivityID,
		DateTime:   slot.DateTime,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
}
