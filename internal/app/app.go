package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	httpapp "template_hub/internal/app/http"
	"template_hub/internal/config"
	"template_hub/internal/domain/models"
	"template_hub/internal/metrics"
	"template_hub/internal/repository"
	billing "template_hub/internal/services/billing_service"
	projects "template_hub/internal/services/project_service"
	reactions "template_hub/internal/services/reaction_service"
	templates "template_hub/internal/services/template_service"
	tokens "template_hub/internal/services/token_service"
	redisapp "template_hub/internal/storage/redis"
	"template_hub/internal/transport/api"
	httprouters "template_hub/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Store      *repository.EntityRepository
	Actor      models.UserRef

	Templates *templates.TemplateService
	Reactions *reactions.ReactionService
	Projects  *projects.ProjectService
	Billing   *billing.BillingService
	Tokens    *tokens.TokenService

	log     *slog.Logger
	closers []func() error
}

// New собирает репозиторий, транспорт и сервисы одной сессии
func New(ctx context.Context, log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{
		log:   log,
		Actor: models.UserRef{ID: cfg.User.ID, Email: cfg.User.Email},
	}

	tokenRepo, err := a.tokenRepository(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.Tokens = tokens.NewTokenService(log, tokenRepo)

	if cfg.Auth.AccessToken != "" {
		_, err := a.Tokens.Store(ctx, cfg.User.ID, cfg.Auth.AccessToken)
		switch {
		case errors.Is(err, tokens.ErrTokenExpired):
			log.Warn("configured access token is expired, requests go out unauthenticated")
		case err != nil:
			_ = a.Close()
			return nil, fmt.Errorf("%s: save access token: %w", op, err)
		}
	}

	client := api.NewClient(log, api.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Burst:     cfg.API.Burst,
		UserID:    cfg.User.ID,
		Tokens:    tokenRepo,
	})

	a.Store = repository.NewEntityRepository()
	unsubscribe := a.Store.Subscribe(func(ch repository.Change) {
		metrics.StoreChangesTotal.WithLabelValues(string(ch.Kind), string(ch.Op)).Inc()
		log.Debug("store changed", slog.String("kind", string(ch.Kind)), slog.String("op", string(ch.Op)), slog.String("id", ch.ID))
	})
	a.closers = append(a.closers, func() error {
		unsubscribe()
		return nil
	})

	a.Templates = templates.NewTemplateService(log, client, a.Store, cfg.List.DefaultLimit)
	a.Reactions = reactions.NewReactionService(log, client, a.Store)
	a.Projects = projects.NewProjectService(log, client, a.Store)
	a.Billing = billing.NewBillingService(log, client, billing.EnvLocale{
		TimeZoneOverride: cfg.Billing.TimeZone,
		LanguageOverride: cfg.Billing.Language,
	}, cfg.Billing.CreditsTTL)

	routers := httprouters.NewRouter(log, a.Actor, a.Store, a.Templates, a.Reactions, a.Projects, a.Billing)
	a.HTTPServer = httpapp.New(log, cfg.HTTP.Host, cfg.HTTP.Port, routers)

	return a, nil
}

func (a *App) tokenRepository(ctx context.Context, cfg *config.Config) (repository.TokenRepository, error) {
	if cfg.Redis.RedisAddr == "" {
		a.log.Debug("redis is not configured, keeping access token in memory")
		return repository.NewCacheTokenRepo(), nil
	}

	client := redisapp.NewClient(redisapp.Options{
		Addr:        cfg.Redis.RedisAddr,
		Password:    cfg.Redis.RedisPassword,
		DB:          cfg.Redis.RedisDB,
		DialTimeout: cfg.Redis.DialTimeout,
		Prefix:      cfg.Redis.KeyPrefix,
	})
	if err := client.HealthCheck(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis health check: %w", err)
	}
	a.closers = append(a.closers, client.Close)

	return repository.NewRedisTokenRepo(client), nil
}

// Close завершает сессию: сбрасывает репозиторий и закрывает соединения
func (a *App) Close() error {
	if a.Store != nil {
		a.Store.Reset()
	}

	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil

	return errors.Join(errs...)
}
