package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/middleware"
	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/utils"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=45"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// userView is the session summary the client keeps: the login plus the id
// of its role profile.
type userView struct {
	ID        uint64     `json:"id"`
	Username  string     `json:"username"`
	Role      model.Role `json:"role"`
	AccessKey string     `json:"accessKey"`
	AdminID   *uint64    `json:"adminId"`
	TrainerID *uint64    `json:"trainerId"`
	MemberID  *uint64    `json:"memberId"`
}

// UserHandler serves /api/users: login, logout and session lookups.
type UserHandler struct {
	Base
	Secret   string
	TTLMin   int
	Logins   *repository.LoginRepo
	Admins   *repository.Provisioner[model.Admin, *model.Admin]
	Trainers *repository.Provisioner[model.Trainer, *model.Trainer]
	Members  *repository.Provisioner[model.Member, *model.Member]
}

// Login verifies the credentials, starts a new session and returns its key
// and a token bound to it.  Any earlier session of the same login ends.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	l, err := h.Logins.GetByEmail(ctx, req.Email)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && !utils.VerifyPassword(l.Password, req.Password)) {
		return fail(c, http.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		return h.storeError(c, "login", err, "Invalid credentials")
	}

	key := utils.NewAccessKey()
	tok, err := utils.NewAccessToken(h.Secret, l.ID, string(l.Role), key, h.TTLMin)
	if err != nil {
		return h.storeError(c, "issue token", err, "Invalid credentials")
	}
	if err := h.Logins.SetAccessKey(ctx, l.ID, &key); err != nil {
		return h.storeError(c, "store access key", err, "Invalid credentials")
	}
	return success(c, http.StatusOK, "Login successful", echo.Map{
		"accessKey": key,
		"token":     tok.Token,
		"expires":   tok.Exp,
	})
}

// Logout clears the session key, revoking every token issued with it.
func (h *UserHandler) Logout(c echo.Context) error {
	loginID, ok := middleware.LoginID(c)
	if !ok {
		return fail(c, http.StatusUnauthorized, "Authentication required")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Logins.SetAccessKey(ctx, loginID, nil); err != nil {
		return h.storeError(c, "logout", err, "Session has ended")
	}
	return success(c, http.StatusOK, "Logout successful", nil)
}

// ByKey handles GET /api/users/keys/:accessKey.
func (h *UserHandler) ByKey(c echo.Context) error {
	return h.byKey(c, false)
}

// ByKeyDetailed handles GET /api/users/keys/:accessKey/detailed and adds
// the role profile with its login and address.
func (h *UserHandler) ByKeyDetailed(c echo.Context) error {
	return h.byKey(c, true)
}

func (h *UserHandler) byKey(c echo.Context, detailed bool) error {
	key := strings.TrimSpace(c.Param("accessKey"))
	if _, err := uuid.Parse(key); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid credentials")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	l, err := h.Logins.GetByAccessKey(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return fail(c, http.StatusUnauthorized, "Unauthorized credentials")
	}
	if err != nil {
		return h.storeError(c, "get login by key", err, "Unauthorized credentials")
	}

	view := userView{ID: l.ID, Username: l.Username, Role: l.Role, AccessKey: key}
	var profile any
	switch l.Role {
	case model.RoleAdmin:
		view.AdminID, profile, err = lookup(ctx, h.Admins, l.ID, detailed)
	case model.RoleTrainer:
		view.TrainerID, profile, err = lookup(ctx, h.Trainers, l.ID, detailed)
	case model.RoleMember:
		view.MemberID, profile, err = lookup(ctx, h.Members, l.ID, detailed)
	default:
		return fail(c, http.StatusForbidden, "Insufficient privilege")
	}
	if err != nil {
		return h.storeError(c, "get profile by login", err, "No profile found for this login")
	}

	payload := echo.Map{"user": view}
	if detailed {
		payload["profile"] = profile
	}
	return success(c, http.StatusOK, "User record successfully retrieved", payload)
}

func lookup[T any, P repository.ProfileRow[T]](ctx context.Context, p *repository.Provisioner[T, P], loginID uint64, detailed bool) (*uint64, any, error) {
	if detailed {
		d, err := p.DetailByLoginID(ctx, loginID)
		if err != nil {
			return nil, nil, err
		}
		id := P(&d.Profile).ProfileID()
		return &id, d, nil
	}
	id, err := p.IDByLoginID(ctx, loginID)
	if err != nil {
		return nil, nil, err
	}
	return &id, nil, nil
}
