package router

import (
	"pulse-api/internal/application"
	"pulse-api/internal/container"
	"pulse-api/internal/infrastructure/mongodb"
	handlers "pulse-api/internal/interface/http"
	"pulse-api/internal/router/modules"
	"pulse-api/pkg/helpers"
)

// InitModules builds the application services from the container singletons
// and registers every feature module with the router registry. Called once
// during startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	repo := mongodb.NewUserRepository(container.GetStore())
	indexer := application.NewUserIndexer(container.GetES(), cfg.ESUsersIndex, logger)

	authSvc := application.NewAuthService(
		repo,
		container.GetHasher(),
		container.GetTokens(),
		container.GetMailer(),
		container.GetRabbitPub(),
		logger,
		cfg.RequireEmailVerification,
		cfg.ResetTokenTTL,
		cfg.ResetPasswordURL,
		cfg.VerifyEmailURL,
	)
	authSvc.Indexer = indexer

	userSvc := application.NewUserService(repo, container.GetGCS(), cfg.GCSBucket, indexer, logger)

	cookies := helpers.NewCookieManager(cfg.CookieDomain, cfg.Production(), cfg.CookieDays)
	authHandler := handlers.NewAuthHandler(authSvc, logger, cookies)
	userHandler := handlers.NewUserHandler(userSvc, logger)

	r.Add(modules.NewAuthModule(authHandler, authSvc))
	r.Add(modules.NewUserModule(userHandler, authSvc))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
