package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
)

const msgActivityNotFound = "No activities found with the ID provided"

type activityRequest struct {
	Name             *string  `json:"name" validate:"omitempty,max=45"`
	Category         *string  `json:"category" validate:"omitempty,oneof=Aerobic Strength 'Aerobic & Strength' Flexibility"`
	Description      *string  `json:"description" validate:"omitempty,max=255"`
	IntensityLevel   *string  `json:"intensityLevel" validate:"omitempty,oneof=Low Medium High 'Very High' 'Varies with Type'"`
	MaxPeopleAllowed *uint32  `json:"maxPeopleAllowed"`
	RequirementOne   *string  `json:"requirementOne" validate:"omitempty,max=100"`
	RequirementTwo   *string  `json:"requirementTwo" validate:"omitempty,max=100"`
	DurationMinutes  uint32   `json:"durationMinutes" validate:"required,min=1,max=1440"`
	Price            *float64 `json:"price" validate:"omitempty,min=0"`
}

func (r activityRequest) activity() model.Activity {
	return model.Activity{
		Name:             r.Name,
		Category:         r.Category,
		Description:      r.Description,
		IntensityLevel:   r.IntensityLevel,
		MaxPeopleAllowed: r.MaxPeopleAllowed,
		RequirementOne:   r.RequirementOne,
		RequirementTwo:   r.RequirementTwo,
		DurationMinutes:  r.DurationMinutes,
		Price:            r.Price,
	}
}

// ActivityHandler serves /api/activities.
type ActivityHandler struct {
	Base
	Activities *repository.ActivityRepo
}

func (h *ActivityHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.Activities.List(ctx)
	if err != nil {
		return h.storeError(c, "list activities", err, msgActivityNotFound)
	}
	return success(c, http.StatusOK, "Activity records successfully retrieved", echo.Map{"activities": rows})
}

func (h *ActivityHandler) Get(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	a, err := h.Activities.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, "get activity", err, msgActivityNotFound)
	}
	return success(c, http.StatusOK, "Activity record successfully retrieved", echo.Map{"activity": a})
}

func (h *ActivityHandler) Create(c echo.Context) error {
	var req activityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id, err := h.Activities.Create(ctx, req.activity())
	if err != nil {
		return h.storeError(c, "create activity", err, msgActivityNotFound)
	}
	return success(c, http.StatusCreated, "Activity successfully created", echo.Map{"id": id})
}

func (h *ActivityHandler) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	var req activityRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Activities.Update(ctx, id, req.activity()); err != nil {
		return h.storeError(c, "update activity", err, msgActivityNotFound)
	}
	return success(c, http.StatusOK, "Activity successfully updated", echo.Map{"id": id})
}

// Delete removes the activity and, through the foreign key, its bookings.
func (h *ActivityHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Activities.Delete(ctx, id); err != nil {
		return h.storeError(c, "delete activity", err, msgActivityNotFound)
	}
	return success(c, http.StatusOK, "Activity successfully deleted", nil)
}
