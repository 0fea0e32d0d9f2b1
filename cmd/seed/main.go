// Command seed bootstraps a librarian account. Sign-up only ever
// creates members, so the first librarian has to come from here.
package main

import (
	"flag"
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"go-library-api/internal/core/config"
	"go-library-api/internal/core/database"
	"go-library-api/internal/core/logger"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
	"go-library-api/pkg/utils"
)

func main() {
	var (
		name     = flag.String("name", "Librarian", "display name")
		email    = flag.String("email", "", "email address (required)")
		password = flag.String("password", "", "password (required for new accounts)")
	)
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	if *email == "" {
		log.Fatal("missing -email")
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Borrowing{}); err != nil {
		log.Fatal("automigrate failed", zap.Error(err))
	}

	users := repo.NewUserRepo(db)
	addr := domain.NormalizeEmail(*email)

	existing, err := users.FindByEmail(nil, addr)
	if err != nil {
		log.Fatal("lookup user", zap.Error(err))
	}
	if existing != nil {
		// promote in place; password stays untouched
		existing.Role = domain.RoleLibrarian
		if err := users.Update(nil, existing); err != nil {
			log.Fatal("promote user", zap.Error(err))
		}
		log.Info("existing user promoted to librarian", zap.String("user_id", existing.ID))
		return
	}

	if *password == "" {
		log.Fatal("missing -password for new account")
	}
	hash, err := utils.HashPassword(*password, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatal("hash password", zap.Error(err))
	}
	u := domain.NewUser(utils.NewID(), *name, addr, hash, domain.RoleLibrarian)
	if err := users.Create(nil, u); err != nil {
		log.Fatal("create librarian", zap.Error(err))
	}
	log.Info("librarian created", zap.String("user_id", u.ID), zap.String("email", u.Email))
}
