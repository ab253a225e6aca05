package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"template_hub/internal/domain/models"
	"template_hub/internal/lib/apierr"
	"template_hub/internal/lib/logger/sl"

	"github.com/patrickmn/go-cache"
)

const creditsKey = "credits"

type BillingAPI interface {
	CreateCheckoutSession(ctx context.Context, planID string, region models.Region) (*models.CheckoutSession, error)
	Credits(ctx context.Context) (float64, error)
}

// PlanQuote - план с ценой для конкретного региона
type PlanQuote struct {
	Plan   models.Plan   `json:"plan"`
	Region models.Region `json:"region"`
	Price  models.Price  `json:"price"`
}

type BillingService struct {
	log        *slog.Logger
	api        BillingAPI
	locale     LocaleSource
	cache      *cache.Cache
	creditsTTL time.Duration
}

func NewBillingService(log *slog.Logger, client BillingAPI, locale LocaleSource, creditsTTL time.Duration) *BillingService {
	return &BillingService{
		log:        log,
		api:        client,
		locale:     locale,
		cache:      cache.New(creditsTTL, 2*creditsTTL+time.Minute),
		creditsTTL: creditsTTL,
	}
}

func (s *BillingService) Region() models.Region {
	region := ResolveRegion(s.locale)
	s.log.Debug("billing region resolved", slog.String("region", string(region)))
	return region
}

func (s *BillingService) Plans() []models.Plan {
	out := make([]models.Plan, 0, len(catalog))
	for _, p := range catalog {
		out = append(out, clonePlan(p))
	}
	return out
}

func (s *BillingService) PlanByID(id string) (models.Plan, error) {
	for _, p := range catalog {
		if p.ID == id {
			return clonePlan(p), nil
		}
	}
	return models.Plan{}, apierr.Invalid(apierr.ErrUnknownPlan)
}

// Quotes возвращает все планы с ценами для региона; пустой регион определяется автоматически
func (s *BillingService) Quotes(region models.Region) []PlanQuote {
	if region == "" {
		region = s.Region()
	}
	plans := s.Plans()
	out := make([]PlanQuote, 0, len(plans))
	for _, p := range plans {
		out = append(out, PlanQuote{Plan: p, Region: region, Price: ResolvePrice(p, region)})
	}
	return out
}

// CreateCheckoutSession создает сессию оплаты. Ответ без ссылки и без clientSecret считается ошибкой.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, planID string, region models.Region) (*models.CheckoutSession, error) {
	const op = "billing_service.CreateCheckoutSession"
	log := s.log.With(slog.String("op", op), slog.String("plan_id", planID))

	if _, err := s.PlanByID(planID); err != nil {
		log.Warn("unknown plan", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if region == "" {
		region = s.Region()
	}
	log = log.With(slog.String("region", string(region)))

	session, err := s.api.CreateCheckoutSession(ctx, planID, region)
	if err != nil {
		log.Error("failed to create checkout session", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if session.CheckoutURL == "" && session.ClientSecret == "" {
		err := &apierr.ServerError{Op: op, Status: 200, Message: "Failed to create checkout session"}
		log.Error("checkout session without url or client secret", sl.Err(err))
		return nil, err
	}

	s.cache.Delete(creditsKey)
	log.Info("checkout session created")

	return session, nil
}

// Credits возвращает остаток кредитов, кэшируя ответ на creditsTTL
func (s *BillingService) Credits(ctx context.Context) (float64, error) {
	const op = "billing_service.Credits"
	log := s.log.With(slog.String("op", op))

	if s.creditsTTL > 0 {
		if v, ok := s.cache.Get(creditsKey); ok {
			log.Debug("credits served from cache")
			return v.(float64), nil
		}
	}

	credits, err := s.api.Credits(ctx)
	if err != nil {
		log.Error("failed to fetch credits", sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if s.creditsTTL > 0 {
		s.cache.Set(creditsKey, credits, s.creditsTTL)
	}

	return credits, nil
}
