package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
)

const msgAddressNotFound = "No addresses found with the ID provided"

// AddressHandler serves /api/addresses.  Addresses are shared rows; they
// are created through resolution and removed only when unreferenced.
type AddressHandler struct {
	Base
	Addresses *repository.AddressRepo
}

func (h *AddressHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.Addresses.List(ctx)
	if err != nil {
		return h.storeError(c, "list addresses", err, msgAddressNotFound)
	}
	return success(c, http.StatusOK, "Address records successfully retrieved", echo.Map{"addresses": rows})
}

func (h *AddressHandler) Get(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	a, err := h.Addresses.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, "get address", err, msgAddressNotFound)
	}
	return success(c, http.StatusOK, "Address record successfully retrieved", echo.Map{"address": a})
}

// Resolve returns the id of the row matching the submitted fields,
// creating it if needed.  An incomplete address resolves to null.
func (h *AddressHandler) Resolve(c echo.Context) error {
	var req model.AddressInput
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id, err := h.Addresses.ResolveNow(ctx, req)
	if err != nil {
		return h.storeError(c, "resolve address", err, msgAddressNotFound)
	}
	return success(c, http.StatusOK, "Address successfully resolved", echo.Map{"addressId": id})
}

func (h *AddressHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	err := h.Addresses.Delete(ctx, id)
	if errors.Is(err, repository.ErrConflict) {
		return fail(c, http.StatusConflict, "Address is still used by a profile")
	}
	if err != nil {
		return h.storeError(c, "delete address", err, msgAddressNotFound)
	}
	return success(c, http.StatusOK, "Address successfully deleted", nil)
}
