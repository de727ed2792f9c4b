package model

// Activity mirrors the `activities` table.  Optional columns are pointers.
type Activity struct {
	ID               uint64   `json:"id"`
	Name             *string  `json:"name"`
	Category         *string  `json:"category"`
	Description      *string  `json:"description"`
	IntensityLevel   *string  `json:"intensityLevel"`
	MaxPeopleAllowed *uint32  `json:"maxPeopleAllowed"`
	RequirementOne   *string  `json:"requirementOne"`
	RequirementTwo   *string  `json:"requirementTwo"`
	DurationMinutes  uint32   `json:"durationMinutes"`
	Price            *float64 `json:"price"`
}

// Blog mirrors the `blogs` table.  LoginID is the author.
type Blog struct {
	ID        uint64  `json:"id"`
	Title     string  `json:"title"`
	Body      string  `json:"body"`
	LoginID   uint64  `json:"loginId"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt *string `json:"updatedAt"`
}
