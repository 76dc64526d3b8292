package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"

	"github.com/tendant/simple-tasks/migrations"
	"github.com/tendant/simple-tasks/pkg/audit"
	"github.com/tendant/simple-tasks/pkg/config"
	"github.com/tendant/simple-tasks/pkg/hasher"
	"github.com/tendant/simple-tasks/pkg/identity"
	"github.com/tendant/simple-tasks/pkg/ratelimit"
	"github.com/tendant/simple-tasks/pkg/task"
	"github.com/tendant/simple-tasks/pkg/tokengenerator"
)

type Config struct {
	DatabaseConfig     config.DatabaseConfig
	JwtConfig          config.JWTConfig
	PasswordHashConfig config.PasswordHashConfig
	RateLimitConfig    ratelimit.Config
}

func main() {
	godotenv.Load()

	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed reading config from env", "err", err)
		os.Exit(-1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	dbConfig := cfg.DatabaseConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	if err := runMigrations(cfg.DatabaseConfig.ToDatabaseURL()); err != nil {
		slog.Error("Failed running migrations", "err", err)
		os.Exit(-1)
	}

	tokenService := tokengenerator.NewTokenService(
		cfg.JwtConfig.Secret,
		cfg.JwtConfig.RefreshSecret,
		cfg.JwtConfig.Issuer,
		cfg.JwtConfig.Audience,
		tokengenerator.WithAccessTokenExpiry(cfg.JwtConfig.AccessTokenExpiry),
		tokengenerator.WithRefreshTokenExpiry(cfg.JwtConfig.RefreshTokenExpiry),
	)

	pwdHasher := hasher.NewBcryptHasher(cfg.PasswordHashConfig.Cost)

	identityRepo := identity.NewPostgresIdentityRepository(pool)
	identityService := identity.NewIdentityService(identityRepo, pwdHasher, tokenService)
	identityHandle := identity.NewHandle(identityService)

	// The credential surface is rate limited per client IP.
	loginLimiter := ratelimit.NewMiddleware(cfg.RateLimitConfig)
	server.R.Group(func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		identity.Routes(r, identityHandle)
	})

	taskRepo := task.NewPostgresTaskRepository(pool)
	taskService := task.NewTaskService(taskRepo)
	taskHandle := task.NewHandle(taskService)

	// Task routes require a verified access token.
	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil)
	auditMiddleware := audit.NewMiddleware(audit.Config{Source: "tasks"})
	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(identity.AuthUserMiddleware)
		r.Use(auditMiddleware.AuditAuthMiddleware)
		task.Routes(r, taskHandle)
	})

	server.Run()
}

func runMigrations(databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("db open error: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(context.Background(), db, ".")
}
