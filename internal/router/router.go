// Package router wires handlers and middleware onto the echo instance.
package router

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/config"
	"github.com/iliyamo/gym-booking/internal/handler"
	"github.com/iliyamo/gym-booking/internal/metrics"
	"github.com/iliyamo/gym-booking/internal/middleware"
	"github.com/iliyamo/gym-booking/internal/model"
)

const (
	admin   = model.RoleAdmin
	trainer = model.RoleTrainer
	member  = model.RoleMember
)

// Handlers is everything the route table points at.
type Handlers struct {
	Users      *handler.UserHandler
	Admins     *handler.ProfileHandler[model.Admin, *model.Admin]
	Trainers   *handler.ProfileHandler[model.Trainer, *model.Trainer]
	Members    *handler.ProfileHandler[model.Member, *model.Member]
	Bookings   *handler.BookingHandler
	Activities *handler.ActivityHandler
	Blogs      *handler.BlogHandler
	Addresses  *handler.AddressHandler
	Ready      echo.HandlerFunc
}

// Options carries the cross-cutting pieces routes are wrapped with.
type Options struct {
	Cfg       config.Config
	Log       *logrus.Logger
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig
	Redis     *redis.Client // nil disables caching and rate limiting
	Sessions  middleware.SessionStore
}

// Use installs the global middleware chain.
func Use(e *echo.Echo, o Options) {
	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(o.Log))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: o.Cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
}

// RegisterRoutes registers operational endpoints that need no session.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)
	if h.Ready != nil {
		e.GET("/readyz", h.Ready)
	}
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}

// RegisterAPI registers every /api route with its session, role, cache and
// rate-limit middleware.
func RegisterAPI(e *echo.Echo, o Options, h Handlers) {
	auth := middleware.SessionAuth(o.Cfg.JWTSecret, o.Sessions, o.Log)
	anyRole := middleware.RequireRole(admin, trainer, member)
	staff := middleware.RequireRole(admin, trainer)
	adminOnly := middleware.RequireRole(admin)
	limit := middleware.NewTokenBucket(o.RateLimit, o.Redis)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("/login", h.Users.Login, limit)
	users.POST("/logout", h.Users.Logout, auth)
	users.GET("/keys/:accessKey", h.Users.ByKey)
	users.GET("/keys/:accessKey/detailed", h.Users.ByKeyDetailed)

	admins := api.Group("/admins", auth)
	admins.GET("", h.Admins.List, anyRole)
	admins.GET("/:id", h.Admins.Get, anyRole)
	admins.GET("/:id/detailed", h.Admins.GetDetailed, adminOnly)
	admins.POST("", h.Admins.Create, adminOnly)
	admins.PATCH("/:id", h.Admins.Update, adminOnly)
	admins.DELETE("/:id", h.Admins.Delete, adminOnly)

	trainers := api.Group("/trainers", auth)
	trainers.GET("", h.Trainers.List, anyRole)
	trainers.GET("/:id", h.Trainers.Get, anyRole)
	trainers.GET("/:id/detailed", h.Trainers.GetDetailed, staff)
	trainers.POST("", h.Trainers.Create, adminOnly)
	trainers.PATCH("/:id", h.Trainers.Update, staff)
	trainers.DELETE("/:id", h.Trainers.Delete, adminOnly)

	// Signup is the only unauthenticated write.
	api.POST("/members/signup", h.Members.Create, limit)
	members := api.Group("/members", auth)
	members.GET("", h.Members.List, staff)
	members.GET("/:id", h.Members.Get, anyRole)
	members.GET("/:id/detailed", h.Members.GetDetailed, anyRole)
	members.POST("", h.Members.Create, staff)
	members.PATCH("/:id", h.Members.Update, anyRole)
	members.DELETE("/:id", h.Members.Delete, staff)

	bookings := api.Group("/bookings", auth, anyRole)
	bookings.GET("", h.Bookings.List)
	bookings.GET("/options", h.Bookings.Options)
	bookings.GET("/by/date/:date", h.Bookings.ByDate)
	bookings.GET("/:id", h.Bookings.Get)
	bookings.GET("/:id/with_options", h.Bookings.GetWithOptions)
	bookings.POST("", h.Bookings.Create)
	bookings.PATCH("/:id", h.Bookings.Update)
	bookings.DELETE("/:id", h.Bookings.Delete)

	activities := api.Group("/activities", auth, middleware.NewRedisCache(o.Cache, o.Redis, "activities"))
	activities.GET("", h.Activities.List, anyRole)
	activities.GET("/:id", h.Activities.Get, anyRole)
	activities.POST("", h.Activities.Create, staff)
	activities.PATCH("/:id", h.Activities.Update, staff)
	activities.DELETE("/:id", h.Activities.Delete, staff)

	// Reading the blog is public; writing needs a session.
	blogCache := middleware.NewRedisCache(o.Cache, o.Redis, "blogs")
	blogs := api.Group("/blogs", blogCache)
	blogs.GET("", h.Blogs.List)
	blogs.GET("/:id", h.Blogs.Get)
	blogs.POST("", h.Blogs.Create, auth, anyRole)
	blogs.PATCH("/:id", h.Blogs.Update, auth, anyRole)
	blogs.DELETE("/:id", h.Blogs.Delete, auth, anyRole)

	addresses := api.Group("/addresses", auth, adminOnly)
	addresses.GET("", h.Addresses.List)
	addresses.GET("/:id", h.Addresses.Get)
	addresses.POST("/resolve", h.Addresses.Resolve)
	addresses.DELETE("/:id", h.Addresses.Delete)
}
