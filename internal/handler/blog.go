package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/middleware"
	"github.com/iliyamo/gym-booking/internal/repository"
)

const msgBlogNotFound = "No blogs found with the ID provided"

type blogRequest struct {
	Title string `json:"title" validate:"required,max=45"`
	Body  string `json:"body" validate:"required,max=6000"`
}

// BlogHandler serves /api/blogs.  The author of a new post is always the
// authenticated login, never a field of the body.
type BlogHandler struct {
	Base
	Blogs *repository.BlogRepo
}

func (h *BlogHandler) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.Blogs.List(ctx)
	if err != nil {
		return h.storeError(c, "list blogs", err, msgBlogNotFound)
	}
	return success(c, http.StatusOK, "Blog records successfully retrieved", echo.Map{"blogs": rows})
}

func (h *BlogHandler) Get(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	b, err := h.Blogs.GetByID(ctx, id)
	if err != nil {
		return h.storeError(c, "get blog", err, msgBlogNotFound)
	}
	return success(c, http.StatusOK, "Blog record successfully retrieved", echo.Map{"blog": b})
}

func (h *BlogHandler) Create(c echo.Context) error {
	loginID, ok := middleware.LoginID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req blogRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	id, err := h.Blogs.Create(ctx, loginID, strings.TrimSpace(req.Title), req.Body)
	if err != nil {
		return h.storeError(c, "create blog", err, msgBlogNotFound)
	}
	return success(c, http.StatusCreated, "Blog successfully created", echo.Map{"id": id})
}

func (h *BlogHandler) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	loginID, ok := middleware.LoginID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	var req blogRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	err := h.Blogs.Update(ctx, id, loginID, middleware.Role(c), strings.TrimSpace(req.Title), req.Body)
	if err != nil {
		return h.storeError(c, "update blog", err, msgBlogNotFound)
	}
	return success(c, http.StatusOK, "Blog successfully updated", echo.Map{"id": id})
}

func (h *BlogHandler) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	loginID, ok := middleware.LoginID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Blogs.Delete(ctx, id, loginID, middleware.Role(c)); err != nil {
		return h.storeError(c, "delete blog", err, msgBlogNotFound)
	}
	return success(c, http.StatusOK, "Blog successfully deleted", nil)
}
