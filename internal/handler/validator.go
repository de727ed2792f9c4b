package handler

import (
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

var (
	hourSlotRe   = regexp.MustCompile(`^([01]\d|2[0-3]):00:00$`)
	personNameRe = regexp.MustCompile(`^[a-zA-Z]+$`)
	usernameRe   = regexp.MustCompile(`^[a-zA-Z0-9]*[a-zA-Z][a-zA-Z0-9]*$`)
)

// Validator adapts go-playground/validator to echo.Validator.  Field names
// in errors are the JSON names.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("hourslot", func(fl validator.FieldLevel) bool {
		return hourSlotRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("personname", func(fl validator.FieldLevel) bool {
		return personNameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "", "Female", "Male", "Other":
			return true
		}
		return false
	})
	return &Validator{v: v}
}

func (cv *Validator) Validate(i interface{}) error {
	return cv.v.Struct(i)
}

// bind decodes the body into dst and validates it.  Failures come back as
// a 400 *echo.HTTPError whose message is the response envelope.
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"status": "error", "message": "Invalid request body"})
	}
	if err := c.Validate(dst); err != nil {
		return invalid(err)
	}
	return nil
}

func invalid(err error) *echo.HTTPError {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"status": "error", "message": err.Error()})
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		fields[fe.Field()] = rule
	}
	return echo.NewHTTPError(http.StatusBadRequest, echo.Map{
		"status":  "error",
		"message": "Validation failed",
		"errors":  fields,
	})
}
