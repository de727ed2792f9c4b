// Command seed creates the first admin login so the admin-only endpoints
// can be reached on a fresh database.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/gym-booking/internal/config"
	"github.com/iliyamo/gym-booking/internal/database"
	"github.com/iliyamo/gym-booking/internal/logger"
	"github.com/iliyamo/gym-booking/internal/model"
	"github.com/iliyamo/gym-booking/internal/repository"
	"github.com/iliyamo/gym-booking/internal/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log := logger.New(cfg.AppName+"-seed", cfg.Env)

	dsn := database.DSN(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err := database.Migrate(dsn, log); err != nil {
		log.WithError(err).Fatal("migrations failed")
	}
	db, err := database.Open(dsn, database.Pool{MaxOpen: 2})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer func() { _ = db.Close() }()

	email := env("SEED_ADMIN_EMAIL", "admin@gym.local")
	password := env("SEED_ADMIN_PASSWORD", "changeme123")

	logins := repository.NewLoginRepo(db)
	admins := repository.NewProvisioner[model.Admin, *model.Admin](
		db, logins, repository.NewAddressRepo(db), utils.Hasher(cfg.BcryptCost))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id, err := admins.Create(ctx, model.Credential{
		Email:    email,
		Password: password,
		Username: env("SEED_ADMIN_USERNAME", "admin"),
	}, model.Admin{ProfileBase: model.ProfileBase{
		FirstName: "Gym",
		LastName:  "Admin",
		Phone:     env("SEED_ADMIN_PHONE", "0000000000"),
	}}, model.AddressInput{})
	switch {
	case errors.Is(err, repository.ErrDuplicateEmail):
		log.WithField("email", email).Info("admin already seeded")
	case err != nil:
		log.WithError(err).Fatal("seeding admin failed")
	default:
		log.WithFields(logrus.Fields{"id": id, "email": email}).Info("admin seeded")
	}
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
