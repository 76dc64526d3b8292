// In-memory demo server. Runs the full HTTP surface without postgres so the
// API can be exercised locally with nothing but this binary.
package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/tendant/chi-demo/app"

	"github.com/tendant/simple-tasks/pkg/audit"
	"github.com/tendant/simple-tasks/pkg/config"
	"github.com/tendant/simple-tasks/pkg/hasher"
	"github.com/tendant/simple-tasks/pkg/identity"
	"github.com/tendant/simple-tasks/pkg/ratelimit"
	"github.com/tendant/simple-tasks/pkg/task"
	"github.com/tendant/simple-tasks/pkg/tokengenerator"
)

type Config struct {
	JwtConfig          config.JWTConfig
	PasswordHashConfig config.PasswordHashConfig
	RateLimitConfig    ratelimit.Config
}

func main() {
	cfg := Config{}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		slog.Error("Failed reading config from env", "err", err)
		os.Exit(-1)
	}

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)

	tokenService := tokengenerator.NewTokenService(
		cfg.JwtConfig.Secret,
		cfg.JwtConfig.RefreshSecret,
		cfg.JwtConfig.Issuer,
		cfg.JwtConfig.Audience,
		tokengenerator.WithAccessTokenExpiry(cfg.JwtConfig.AccessTokenExpiry),
		tokengenerator.WithRefreshTokenExpiry(cfg.JwtConfig.RefreshTokenExpiry),
	)

	pwdHasher := hasher.NewBcryptHasher(cfg.PasswordHashConfig.Cost)

	identityRepo := identity.NewInMemoryIdentityRepository()
	identityService := identity.NewIdentityService(identityRepo, pwdHasher, tokenService)
	identityHandle := identity.NewHandle(identityService)

	loginLimiter := ratelimit.NewMiddleware(cfg.RateLimitConfig)
	server.R.Group(func(r chi.Router) {
		r.Use(loginLimiter.Handler)
		identity.Routes(r, identityHandle)
	})

	taskRepo := task.NewInMemoryTaskRepository()
	taskService := task.NewTaskService(taskRepo)
	taskHandle := task.NewHandle(taskService)

	tokenAuth := jwtauth.New("HS256", []byte(cfg.JwtConfig.Secret), nil)
	auditMiddleware := audit.NewMiddleware(audit.Config{Source: "tasks-inmem"})
	server.R.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(tokenAuth))
		r.Use(jwtauth.Authenticator(tokenAuth))
		r.Use(identity.AuthUserMiddleware)
		r.Use(auditMiddleware.AuditAuthMiddleware)
		task.Routes(r, taskHandle)
	})

	seedDemoAccount(identityService)

	slog.Info(strings.Repeat("=", 60))
	slog.Info("In-Memory Tasks Service Ready")
	slog.Info("")
	slog.Info("Demo credentials:")
	slog.Info("  Username: ada")
	slog.Info("  Password: correcthorse")
	slog.Info("")
	slog.Info("API Endpoints:")
	slog.Info("  POST /users          - Register")
	slog.Info("  POST /users/login    - Login")
	slog.Info("  POST /users/refresh  - Refresh tokens")
	slog.Info("  GET  /users          - List users")
	slog.Info("  POST /tasks          - Create task (auth required)")
	slog.Info("  GET  /tasks          - List tasks (auth required)")
	slog.Info(strings.Repeat("=", 60))

	server.Run()
}

func seedDemoAccount(identityService *identity.IdentityService) {
	_, err := identityService.Register(context.Background(), identity.RegisterParams{
		Name:     "Ada Lovelace",
		Username: "ada",
		Password: "correcthorse",
	})
	if err != nil {
		slog.Error("Failed seeding demo account", "err", err)
		os.Exit(-1)
	}
}
