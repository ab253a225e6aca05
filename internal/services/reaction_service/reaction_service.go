package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"template_hub/internal/domain/models"
	"template_hub/internal/lib/apierr"
	"template_hub/internal/lib/logger/sl"
	"template_hub/internal/metrics"
	"template_hub/internal/repository"
)

// ReactionAPI - сетевой вызов переключения реакции
type ReactionAPI interface {
	ToggleReaction(ctx context.Context, templateID string, kind models.ReactionKind) error
}

type ReactionService struct {
	log   *slog.Logger
	api   ReactionAPI
	store repository.TemplateStore

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewReactionService(log *slog.Logger, api ReactionAPI, store repository.TemplateStore) *ReactionService {
	return &ReactionService{
		log:      log,
		api:      api,
		store:    store,
		inFlight: make(map[string]struct{}),
	}
}

func (s *ReactionService) Like(ctx context.Context, templateID string, user models.UserRef) error {
	return s.ToggleReaction(ctx, templateID, user, models.ReactionLike)
}

func (s *ReactionService) Dislike(ctx context.Context, templateID string, user models.UserRef) error {
	return s.ToggleReaction(ctx, templateID, user, models.ReactionDislike)
}

// ToggleReaction сначала отправляет запрос на сервер и только после успеха
// применяет то же переключение к локальной копии шаблона.
// Пока запрос по шаблону не завершен, повторный вызов для него отклоняется.
func (s *ReactionService) ToggleReaction(ctx context.Context, templateID string, user models.UserRef, kind models.ReactionKind) error {
	const op = "reaction_service.ToggleReaction"
	log := s.log.With(
		slog.String("op", op),
		slog.String("template_id", templateID),
		slog.String("user_id", user.ID),
		slog.String("kind", string(kind)),
	)

	if err := validateToggle(templateID, user, kind); err != nil {
		log.Warn("invalid toggle request", sl.Err(err))
		metrics.ReactionTogglesTotal.WithLabelValues(string(kind), "invalid").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.acquire(templateID) {
		log.Info("toggle already in flight")
		metrics.ReactionTogglesTotal.WithLabelValues(string(kind), "in_flight").Inc()
		return fmt.Errorf("%s: %w", op, apierr.Invalid(apierr.ErrReactionInFlight))
	}
	defer s.release(templateID)

	if err := s.api.ToggleReaction(ctx, templateID, kind); err != nil {
		log.Error("server rejected toggle", sl.Err(err))
		metrics.ReactionTogglesTotal.WithLabelValues(string(kind), "failed").Inc()
		return fmt.Errorf("%s: %w", op, err)
	}

	var invErr error
	patched := s.store.PatchTemplate(templateID, func(t *models.Template) {
		models.ApplyReaction(t, user, kind)
		invErr = t.CheckInvariants()
	})
	if !patched {
		log.Warn("template not in current page, local state not updated")
	}
	if invErr != nil {
		log.Error("reaction invariants violated", sl.Err(invErr))
		metrics.ReactionTogglesTotal.WithLabelValues(string(kind), "inconsistent").Inc()
		return fmt.Errorf("%s: %w", op, invErr)
	}

	metrics.ReactionTogglesTotal.WithLabelValues(string(kind), "ok").Inc()
	log.Debug("toggle applied")

	return nil
}

// InFlight сообщает, ожидает ли шаблон ответа на переключение
func (s *ReactionService) InFlight(templateID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[templateID]
	return ok
}

func (s *ReactionService) acquire(templateID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[templateID]; busy {
		return false
	}
	s.inFlight[templateID] = struct{}{}
	return true
}

func (s *ReactionService) release(templateID string) {
	s.mu.Lock()
	delete(s.inFlight, templateID)
	s.mu.Unlock()
}

func validateToggle(templateID string, user models.UserRef, kind models.ReactionKind) error {
	fields := make(map[string]string)
	if templateID == "" {
		fields["templateId"] = "template id is required"
	}
	if user.ID == "" {
		fields["userId"] = "user id is required"
	}
	if !kind.Valid() {
		fields["kind"] = fmt.Sprintf("unknown reaction %q", kind)
	}
	if len(fields) > 0 {
		return apierr.NewValidation("invalid reaction request", fields)
	}
	return nil
}
