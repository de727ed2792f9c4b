package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/metrics"
	"github.com/iliyamo/gym-booking/internal/middleware"
	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/utils"
)

// ----- DTOs -----

type credentialFields struct {
	Email    string `json:"email" validate:"required,email,max=45"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
	Username string `json:"username" validate:"required,username,max=45"`
}

// A password that is already a bcrypt digest is stored as-is, so a client
// echoing back what it read does not double-hash it.
func (f credentialFields) credential() model.Credential {
	return model.Credential{
		Email:          strings.TrimSpace(f.Email),
		Password:       f.Password,
		PasswordHashed: utils.LooksHashed(f.Password),
		Username:       strings.TrimSpace(f.Username),
	}
}

type personFields struct {
	FirstName string `json:"firstName" validate:"required,personname,max=45"`
	LastName  string `json:"lastName" validate:"required,personname,max=45"`
	Phone     string `json:"phone" validate:"required,max=45"`
}

func (f personFields) base() model.ProfileBase {
	return model.ProfileBase{
		FirstName: strings.TrimSpace(f.FirstName),
		LastName:  strings.TrimSpace(f.LastName),
		Phone:     strings.TrimSpace(f.Phone),
	}
}

type adminRequest struct {
	credentialFields
	personFields
	model.AddressInput
}

func (r *adminRequest) parts() (model.Credential, model.Admin, model.AddressInput) {
	return r.credential(), model.Admin{ProfileBase: r.base()}, r.AddressInput
}

type trainerRequest struct {
	credentialFields
	personFields
	model.AddressInput
	Description *string `json:"description" validate:"omitempty,max=255"`
	Specialty   *string `json:"specialty" validate:"omitempty,max=45"`
	Certificate *string `json:"certificate" validate:"omitempty,max=45"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,max=255"`
}

func (r *trainerRequest) parts() (model.Credential, model.Trainer, model.AddressInput) {
	return r.credential(), model.Trainer{
		ProfileBase: r.base(),
		Description: r.Description,
		Specialty:   r.Specialty,
		Certificate: r.Certificate,
		ImageURL:    r.ImageURL,
	}, r.AddressInput
}

type memberRequest struct {
	credentialFields
	personFields
	model.AddressInput
	Age    *int    `json:"age" validate:"omitempty,min=0,max=200"`
	Gender *string `json:"gender" validate:"omitempty,gender"`
}

func (r *memberRequest) parts() (model.Credential, model.Member, model.AddressInput) {
	return r.credential(), model.Member{ProfileBase: r.base(), Age: r.Age, Gender: r.Gender}, r.AddressInput
}

// profileRequest is a bound and validated body for one role.
type profileRequest[T any] interface {
	parts() (model.Credential, T, model.AddressInput)
}

// ----- handler -----

// ProfileHandler serves the CRUD endpoints of one role.  Every write goes
// through the provisioner, so login, address and profile change together.
type ProfileHandler[T any, P repository.ProfileRow[T]] struct {
	Base
	Profiles   *repository.Provisioner[T, P]
	label      string
	newRequest func() profileRequest[T]
}

func NewAdminHandler(b Base, p *repository.Provisioner[model.Admin, *model.Admin]) *ProfileHandler[model.Admin, *model.Admin] {
	return &ProfileHandler[model.Admin, *model.Admin]{Base: b, Profiles: p, label: "admin",
		newRequest: func() profileRequest[model.Admin] { return &adminRequest{} }}
}

func NewTrainerHandler(b Base, p *repository.Provisioner[model.Trainer, *model.Trainer]) *ProfileHandler[model.Trainer, *model.Trainer] {
	return &ProfileHandler[model.Trainer, *model.Trainer]{Base: b, Profiles: p, label: "trainer",
		newRequest: func() profileRequest[model.Trainer] { return &trainerRequest{} }}
}

func NewMemberHandler(b Base, p *repository.Provisioner[model.Member, *model.Member]) *ProfileHandler[model.Member, *model.Member] {
	return &ProfileHandler[model.Member, *model.Member]{Base: b, Profiles: p, label: "member",
		newRequest: func() profileRequest[model.Member] { return &memberRequest{} }}
}

func (h *ProfileHandler[T, P]) title() string {
	return strings.ToUpper(h.label[:1]) + h.label[1:]
}

func (h *ProfileHandler[T, P]) notFound() string {
	return "No " + h.label + " found with the ID provided"
}

func (h *ProfileHandler[T, P]) record(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrDuplicateEmail):
		result = "duplicate_email"
	case errors.Is(err, repository.ErrNotFound):
		result = "not_found"
	case errors.Is(err, repository.ErrForbidden):
		result = "forbidden"
	default:
		result = "error"
	}
	metrics.RecordProvisioning(string(h.Profiles.Role()), op, result)
}

// List handles GET /.
func (h *ProfileHandler[T, P]) List(c echo.Context) error {
	ctx, cancel := h.ctx(c)
	defer cancel()

	rows, err := h.Profiles.List(ctx)
	if err != nil {
		return h.storeError(c, "list "+h.label+"s", err, h.notFound())
	}
	return success(c, http.StatusOK, h.title()+" records successfully retrieved", echo.Map{h.label + "s": rows})
}

// Get handles GET /:id.
func (h *ProfileHandler[T, P]) Get(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	row, err := h.Profiles.Get(ctx, id)
	if err != nil {
		return h.storeError(c, "get "+h.label, err, h.notFound())
	}
	return success(c, http.StatusOK, h.title()+" record successfully retrieved", echo.Map{h.label: row})
}

// GetDetailed handles GET /:id/detailed: profile, login and address.
func (h *ProfileHandler[T, P]) GetDetailed(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	d, err := h.Profiles.Detail(ctx, id)
	if err != nil {
		return h.storeError(c, "get "+h.label+" detail", err, h.notFound())
	}
	return success(c, http.StatusOK, h.title()+" record successfully retrieved", echo.Map{h.label: d})
}

// Create handles POST / (and the public member signup).
func (h *ProfileHandler[T, P]) Create(c echo.Context) error {
	req := h.newRequest()
	if err := bind(c, req); err != nil {
		return err
	}
	cred, profile, addr := req.parts()
	if cred.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
			"status": "error", "message": "Validation failed", "errors": map[string]string{"password": "required"},
		})
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	id, err := h.Profiles.Create(ctx, cred, profile, addr)
	h.record("create", err)
	if err != nil {
		return h.storeError(c, "create "+h.label, err, h.notFound())
	}
	return success(c, http.StatusCreated, h.title()+" successfully created", echo.Map{"id": id})
}

// Update handles PATCH /:id.  An empty password keeps the current one and
// an empty address leaves the address link untouched.
func (h *ProfileHandler[T, P]) Update(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	req := h.newRequest()
	if err := bind(c, req); err != nil {
		return err
	}
	cred, profile, addr := req.parts()
	var addrp *model.AddressInput
	if !addr.Empty() {
		addrp = &addr
	}

	ctx, cancel := h.ctx(c)
	defer cancel()

	err := h.authorizeEdit(ctx, c, id)
	if err == nil {
		var n int64
		n, err = h.Profiles.Update(ctx, id, cred, profile, addrp)
		if err == nil && n == 0 {
			err = repository.ErrNotFound
		}
	}
	h.record("update", err)
	if err != nil {
		return h.storeError(c, "update "+h.label, err, h.notFound())
	}
	return success(c, http.StatusOK, h.title()+" successfully updated", echo.Map{"id": id})
}

// authorizeEdit lets a non-Admin caller edit only its own profile within
// its own role; Admins and callers of a higher role may edit any.
func (h *ProfileHandler[T, P]) authorizeEdit(ctx context.Context, c echo.Context, id uint64) error {
	role := middleware.Role(c)
	if role == model.RoleAdmin || role != h.Profiles.Role() {
		return nil
	}
	owner, err := h.Profiles.LoginIDOf(ctx, id)
	if err != nil {
		return err
	}
	if caller, _ := middleware.LoginID(c); caller != owner {
		return repository.ErrForbidden
	}
	return nil
}

// Delete handles DELETE /:id.  The login goes with the profile; the
// address goes too unless another profile shares it.
func (h *ProfileHandler[T, P]) Delete(c echo.Context) error {
	id, ok := paramID(c)
	if !ok {
		return badID(c)
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	_, err := h.Profiles.Delete(ctx, id)
	h.record("delete", err)
	if err != nil {
		return h.storeError(c, "delete "+h.label, err, h.notFound())
	}
	return success(c, http.StatusOK, h.title()+" successfully deleted", nil)
}
