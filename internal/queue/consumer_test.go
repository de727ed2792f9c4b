package queue

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gym-booking/internal/model"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestHandleAppendsOneLinePerEvent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	c := NewConsumer("amqp://unused", path, quietLogger())

	ev := BookingEvent{Type: BookingCreated, BookingID: 40, MemberID: 1, TrainerID: 2, ActivityID: 5,
		DateTime: "2024-01-01 10:00:00", OccurredAt: "2024-01-01T00:00:00Z"}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, c.handle(body))
	require.NoError(t, c.handle(body))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	line := "[2024-01-01T00:00:00Z] booking.created | booking_id=40 | member_id=1 | trainer_id=2 | activity_id=5 | slot=\"2024-01-01 10:00:00\"\n"
	assert.Equal(t, line+line, string(raw))
}

func TestHandleRejectsMalformedBodies(t *testing.T) {
	c := NewConsumer("amqp://unused", filepath.Join(t.TempDir(), "booking.log"), quietLogger())

	assert.Error(t, c.handle([]byte("{not json")))
	assert.Error(t, c.handle([]byte(`{"type":"booking.created"}`)))
}

func TestNewBookingEventCopiesSlot(t *testing.T) {
	ev := NewBookingEvent(BookingUpdated, 7, model.Slot{MemberID: 1, TrainerID: 2, ActivityID: 5, DateTime: "2024-01-01 10:00:00"})
	assert.Equal(t, BookingUpdated, ev.Type)
	assert.Equal(t, uint64(7), ev.BookingID)
	assert.Equal(t, "2024-01-01 10:00:00", ev.DateTime)
	assert.NotEmpty(t, ev.OccurredAt)
}
