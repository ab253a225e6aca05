package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"template_hub/internal/lib/logger/sl"
	"template_hub/internal/repository"
	"template_hub/internal/storage"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptyToken   = errors.New("access token is empty")
	ErrTokenExpired = errors.New("access token expired")
)

// TokenStatus описывает сохраненный токен доступа
type TokenStatus struct {
	UserID    string
	Present   bool
	Opaque    bool
	Subject   string
	ExpiresAt time.Time
}

// TokenService сохраняет токен, выданный внешней системой авторизации.
// Подпись не проверяется: это делает сервер, здесь читается только срок жизни.
type TokenService struct {
	log  *slog.Logger
	repo repository.TokenRepository
	now  func() time.Time
}

func NewTokenService(log *slog.Logger, repo repository.TokenRepository) *TokenService {
	return &TokenService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

// Store кладет токен в хранилище с TTL до его exp.
// Непрозрачный (не JWT) токен хранится без срока.
func (s *TokenService) Store(ctx context.Context, userID, token string) (TokenStatus, error) {
	const op = "services.token.Store"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
	)

	token = strings.TrimSpace(token)
	if token == "" {
		return TokenStatus{}, fmt.Errorf("%s: %w", op, ErrEmptyToken)
	}

	st, err := s.inspect(userID, token)
	if err != nil {
		log.Warn("access token rejected", sl.Err(err))
		return TokenStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	var ttl time.Duration
	if !st.ExpiresAt.IsZero() {
		ttl = st.ExpiresAt.Sub(s.now())
	}

	if err := s.repo.SaveAccessToken(ctx, userID, token, ttl); err != nil {
		log.Error("failed to save access token", sl.Err(err))
		return TokenStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("access token stored", slog.Bool("opaque", st.Opaque), slog.Duration("ttl", ttl))

	return st, nil
}

// Status сообщает, есть ли у пользователя действующий токен
func (s *TokenService) Status(ctx context.Context, userID string) (TokenStatus, error) {
	const op = "services.token.Status"

	token, err := s.repo.GetAccessToken(ctx, userID)
	if errors.Is(err, storage.ErrTokenNotFound) {
		return TokenStatus{UserID: userID}, nil
	}
	if err != nil {
		return TokenStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	st, err := s.inspect(userID, token)
	if errors.Is(err, ErrTokenExpired) {
		return TokenStatus{UserID: userID}, nil
	}
	if err != nil {
		return TokenStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	return st, nil
}

func (s *TokenService) Clear(ctx context.Context, userID string) error {
	const op = "services.token.Clear"

	if err := s.repo.DeleteAccessToken(ctx, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("access token cleared", slog.String("op", op), slog.String("user_id", userID))

	return nil
}

func (s *TokenService) inspect(userID, token string) (TokenStatus, error) {
	st := TokenStatus{UserID: userID, Present: true}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		st.Opaque = true
		return st, nil
	}

	if sub, err := parsed.Claims.GetSubject(); err == nil {
		st.Subject = sub
	}

	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return TokenStatus{}, fmt.Errorf("invalid exp claim: %w", err)
	}
	if exp == nil {
		return st, nil
	}

	if !exp.Time.After(s.now()) {
		return TokenStatus{}, ErrTokenExpired
	}
	st.ExpiresAt = exp.Time

	return st, nil
}
