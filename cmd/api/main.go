package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	coreauth "go-library-api/internal/core/auth"
	"go-library-api/internal/core/cache"
	"go-library-api/internal/core/config"
	"go-library-api/internal/core/database"
	"go-library-api/internal/core/logger"
	"go-library-api/internal/core/server"
	"go-library-api/internal/domain"
	"go-library-api/internal/repo"
	"go-library-api/internal/service"
	"go-library-api/internal/transport/http/handler"
	"go-library-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := buildLogger(cfg)
	defer cleanup()

	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = logger.ToWriter(log, zap.InfoLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log, zap.ErrorLevel)

	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&domain.User{}, &domain.Book{}, &domain.Borrowing{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	users := repo.NewUserRepo(db)
	books := repo.NewBookRepo(db)
	borrows := repo.NewBorrowingRepo(db)

	tokens := coreauth.NewTokenSource(cfg.Auth.TokenBytes)
	authSvc := service.NewAuthService(db, users, tokens, cfg.Auth.BcryptCost, log)
	userSvc := service.NewUserService(db, users, log)
	catalogSvc := service.NewCatalogService(db, books, borrows, log)
	loanSvc := service.NewLoanService(db, books, borrows, log)
	dashSvc := service.NewDashboardService(db, books, borrows, log)
	if cfg.Redis.Enable {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		dashSvc = dashSvc.WithCache(c, time.Duration(cfg.Redis.DashboardTTLSec)*time.Second)
		log.Info("dashboard cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	r := router.NewEngine(log, authSvc, router.Handlers{
		Session:   handler.NewSessionHandler(authSvc),
		User:      handler.NewUserHandler(authSvc, userSvc),
		Book:      handler.NewBookHandler(catalogSvc),
		Borrowing: handler.NewBorrowingHandler(loanSvc, dashSvc),
		Dashboard: handler.NewDashboardHandler(dashSvc),
	})

	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
	)
	if el, err := logger.ToStdLogger(log, zap.WarnLevel); err == nil {
		srv.ErrorLog = el
	}

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("library api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("library api start FAILED", zap.Error(err))
		}
	}()
	log.Info("library api started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("library api stopped gracefully")
}

func buildLogger(cfg *config.Config) (*zap.Logger, func()) {
	r := cfg.Log.Rotate
	if r.Enable {
		return logger.NewWithRotate(cfg.Log.Level, cfg.Log.JSON,
			r.Filename, r.MaxSizeMB, r.MaxBackups, r.MaxAgeDays, r.Compress)
	}
	return logger.New(cfg.Log.Level, cfg.Log.JSON)
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
