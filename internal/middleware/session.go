package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/utils"
)

// SessionStore resolves a session access key to the login holding it.
type SessionStore interface {
	GetByAccessKey(ctx context.Context, key string) (model.Login, error)
}

// SessionAuth validates the Bearer token and then checks that the session
// key it carries is still the one stored on the login.  Logging out (or
// logging in again elsewhere) clears or replaces that key, which revokes
// every token issued for the old session.
func SessionAuth(secret string, sessions SessionStore, log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "Authentication required")
			}
			claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil || !model.Role(claims.Role).Valid() {
				return unauthorized(c, "Invalid or expired token")
			}

			login, err := sessions.GetByAccessKey(c.Request().Context(), claims.AccessKey)
			switch {
			case errors.Is(err, repository.ErrNotFound):
				return unauthorized(c, "Session has ended")
			case err != nil:
				log.WithError(err).WithField("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Error("session lookup failed")
				return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "message": "Database or server error"})
			case login.ID != claims.LoginID || string(login.Role) != claims.Role:
				return unauthorized(c, "Session has ended")
			}

			SetIdentity(c, login.ID, login.Role, claims.AccessKey)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"status": "error", "message": msg})
}
