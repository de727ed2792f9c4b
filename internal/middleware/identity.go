package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gym-booking/internal/model"
)

// Context keys set by SessionAuth.
const (
	ctxLoginID   = "login_id"
	ctxRole      = "role"
	ctxAccessKey = "access_key"
)

// LoginID returns the authenticated login id, if any.
func LoginID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxLoginID).(uint64)
	return id, ok && id > 0
}

// Role returns the authenticated role, or "" for anonymous requests.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(ctxRole).(model.Role)
	return r
}

// AccessKey returns the session key the request was authenticated with.
func AccessKey(c echo.Context) string {
	k, _ := c.Get(ctxAccessKey).(string)
	return k
}

// SetIdentity stores an authenticated identity on c.
func SetIdentity(c echo.Context, loginID uint64, role model.Role, accessKey string) {
	c.Set(ctxLoginID, loginID)
	c.Set(ctxRole, role)
	c.Set(ctxAccessKey, accessKey)
}
