package model

// Booking mirrors the `bookings` table.  DateTime is an hour-aligned slot
// such as "2024-01-01 10:00:00".
type Booking struct {
	ID         uint64 `json:"id"`
	MemberID   uint64 `json:"memberId"`
	TrainerID  uint64 `json:"trainerId"`
	ActivityID uint64 `json:"activityId"`
	DateTime   string `json:"dateTime"`
}

// Slot is the four-field identity of a booking request.  Two bookings with
// equal slots are duplicates of each other.
type Slot struct {
	MemberID   uint64
	TrainerID  uint64
	ActivityID uint64
	DateTime   string
}

// Slot returns the four defining fields of b.
func (b Booking) Slot() Slot {
	return Slot{MemberID: b.MemberID, TrainerID: b.TrainerID, ActivityID: b.ActivityID, DateTime: b.DateTime}
}

// BookingDetail is a booking joined with its participants and activity.
type BookingDetail struct {
	Booking
	MemberFirstName  string  `json:"memberFirstName"`
	MemberLastName   string  `json:"memberLastName"`
	MemberEmail      string  `json:"memberEmail"`
	MemberPhone      string  `json:"memberPhone"`
	TrainerFirstName string  `json:"trainerFirstName"`
	TrainerLastName  string  `json:"trainerLastName"`
	TrainerEmail     string  `json:"trainerEmail"`
	TrainerPhone     string  `json:"trainerPhone"`
	ActivityName     *string `json:"activityName"`
	DurationMinutes  uint32  `json:"durationMinutes"`
}

// BookingOptions lists everything a booking form can pick from.
type BookingOptions struct {
	Members    []Member   `json:"members"`
	Trainers   []Trainer  `json:"trainers"`
	Activities []Activity `json:"activities"`
}
