package repository

import (
	"context"
	"time"

	"template_hub/internal/domain/models"
)

type TemplateStore interface {
	ReplaceTemplates(items []models.Template, p models.Pagination)
	UpsertTemplate(item models.Template)
	RemoveTemplate(id string)
	PatchTemplate(id string, fn func(*models.Template)) bool
	Template(id string) (models.Template, bool)
	Templates() []models.Template
	TemplatePagination() models.Pagination
	SetLoading(kind models.EntityKind, loading bool)
	Loading(kind models.EntityKind) bool
	HoldNotifications() (flush func())
}

type ProjectStore interface {
	ReplaceProjects(items []models.Project, p models.Pagination)
	UpsertProject(item models.Project)
	RemoveProject(id string)
	PatchProject(id string, fn func(*models.Project)) bool
	Project(id string) (models.Project, bool)
	Projects() []models.Project
	ProjectPagination() models.Pagination
	SetLoading(kind models.EntityKind, loading bool)
	Loading(kind models.EntityKind) bool
	HoldNotifications() (flush func())
}

// TokenRepository хранит токен доступа, который транспорт подставляет в запросы.
// Выпуск и обновление токена - забота внешней системы авторизации.
type TokenRepository interface {
	SaveAccessToken(ctx context.Context, userID, token string, exp time.Duration) error
	GetAccessToken(ctx context.Context, userID string) (string, error)
	DeleteAccessToken(ctx context.Context, userID string) error
}

var (
	_ TemplateStore   = (*EntityRepository)(nil)
	_ ProjectStore    = (*EntityRepository)(nil)
	_ TokenRepository = (*RedisTokenRepo)(nil)
	_ TokenRepository = (*CacheTokenRepo)(nil)
)
