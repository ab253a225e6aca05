package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"template_hub/internal/domain/models"
	"template_hub/internal/lib/apierr"
	"template_hub/internal/lib/logger/sl"
	"template_hub/internal/lib/validate"
	"template_hub/internal/metrics"
	"template_hub/internal/repository"
	"template_hub/internal/transport/api"

	"github.com/go-playground/validator/v10"
)

const MsgFixFormErrors = "Please fix the form errors"

type ProjectAPI interface {
	PublishProject(ctx context.Context, projectID string) (*models.Project, error)
	UnpublishProject(ctx context.Context, projectID string) (*models.Project, error)
	ListProjects(ctx context.Context, page, limit int) (*api.ProjectPage, error)
	CreateProject(ctx context.Context, in api.ProjectInput) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, in api.ProjectInput) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// ProjectForm - данные формы создания и редактирования проекта
type ProjectForm struct {
	Title       string               `json:"title" validate:"required"`
	Description string               `json:"description" validate:"required"`
	Status      models.ProjectStatus `json:"status" validate:"omitempty,oneof=draft in-progress completed"`
	Tags        []string             `json:"tags"`
}

func (f ProjectForm) normalized() ProjectForm {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	tags := make([]string, 0, len(f.Tags))
	for _, tag := range f.Tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	f.Tags = tags
	return f
}

func (f ProjectForm) input() api.ProjectInput {
	return api.ProjectInput{
		Title:       f.Title,
		Description: f.Description,
		Status:      f.Status,
		Tags:        f.Tags,
	}
}

// FormResult - результат операции формы: сообщение и ошибки по полям для показа рядом с контролами
type FormResult struct {
	Message string
	Errors  map[string]string
	Err     error
}

func (r *FormResult) Error() string {
	if r.Err != nil {
		return r.Message + ": " + r.Err.Error()
	}
	return r.Message
}

func (r *FormResult) Unwrap() error { return r.Err }

// newFormResult переводит ошибку в результат формы; при ошибках по полям сообщение общее
func newFormResult(err error, fallback string) *FormResult {
	res := &FormResult{Err: err}
	if fields := apierr.FieldErrors(err); len(fields) > 0 {
		res.Errors = fields
		res.Message = MsgFixFormErrors
		return res
	}

	var se *apierr.ServerError
	if errors.As(err, &se) && se.Message != "" {
		res.Message = se.Message
		return res
	}
	res.Message = fallback
	return res
}

type ProjectFilter struct {
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

type ProjectService struct {
	log      *slog.Logger
	api      ProjectAPI
	store    repository.ProjectStore
	validate *validator.Validate

	mu  sync.Mutex
	seq uint64
}

func NewProjectService(log *slog.Logger, client ProjectAPI, store repository.ProjectStore) *ProjectService {
	return &ProjectService{
		log:      log,
		api:      client,
		store:    store,
		validate: validate.New(),
	}
}

// SetPublished публикует или снимает проект с публикации.
// Локальный флаг меняется только после подтверждения сервера.
func (s *ProjectService) SetPublished(ctx context.Context, projectID string, desired bool) error {
	const op = "project_service.SetPublished"
	log := s.log.With(
		slog.String("op", op),
		slog.String("project_id", projectID),
		slog.Bool("desired", desired),
	)

	if projectID == "" {
		err := apierr.NewValidation("project id is required", map[string]string{"projectId": "is required"})
		log.Warn("invalid publish request", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	call := s.api.UnpublishProject
	if desired {
		call = s.api.PublishProject
	}

	if _, err := call(ctx, projectID); err != nil {
		log.Error("failed to change publish state", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if !s.store.PatchProject(projectID, func(p *models.Project) { p.Published = desired }) {
		log.Warn("project not in current page, local state not updated")
	}

	log.Info("publish state changed")

	return nil
}

// ListProjects загружает страницу проектов; устаревшие ответы отбрасываются
func (s *ProjectService) ListProjects(ctx context.Context, filter ProjectFilter) (*api.ProjectPage, error) {
	const op = "project_service.ListProjects"
	log := s.log.With(slog.String("op", op))

	if filter.Page == 0 {
		filter.Page = models.DefaultPage
	}
	if filter.Limit == 0 {
		filter.Limit = models.DefaultLimit
	}
	if err := validate.Struct(s.validate, filter, "invalid project filter"); err != nil {
		log.Warn("invalid filter", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	flush := s.store.HoldNotifications()
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.store.SetLoading(models.KindProject, true)
	s.mu.Unlock()
	flush()

	page, err := s.api.ListProjects(ctx, filter.Page, filter.Limit)

	flush = s.store.HoldNotifications()
	s.mu.Lock()
	latest := seq == s.seq
	if latest {
		if err == nil {
			s.store.ReplaceProjects(page.Projects, page.Pagination)
		} else {
			s.store.SetLoading(models.KindProject, false)
		}
	}
	s.mu.Unlock()
	flush()

	if !latest {
		metrics.StaleResponsesTotal.WithLabelValues(string(models.KindProject)).Inc()
		log.Debug("discarding stale response", slog.Uint64("seq", seq))
		return nil, fmt.Errorf("%s: %w", op, apierr.ErrStaleResponse)
	}
	if err != nil {
		log.Error("failed to list projects", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return page, nil
}

func (s *ProjectService) CreateProject(ctx context.Context, form ProjectForm) (*models.Project, error) {
	const op = "project_service.CreateProject"
	log := s.log.With(slog.String("op", op))

	form = form.normalized()
	if err := s.validateForm(form, true); err != nil {
		log.Warn("invalid project form", sl.Err(err))
		return nil, newFormResult(err, MsgFixFormErrors)
	}

	project, err := s.api.CreateProject(ctx, form.input())
	if err != nil {
		log.Error("failed to create project", sl.Err(err))
		return nil, newFormResult(fmt.Errorf("%s: %w", op, err), "Failed to create project")
	}

	s.store.UpsertProject(*project)
	log.Info("project created", slog.String("project_id", project.ID))

	return project, nil
}

func (s *ProjectService) UpdateProject(ctx context.Context, id string, form ProjectForm) (*models.Project, error) {
	const op = "project_service.UpdateProject"
	log := s.log.With(slog.String("op", op), slog.String("project_id", id))

	form = form.normalized()
	err := s.validateForm(form, false)
	if err == nil && id == "" {
		err = apierr.NewValidation("project id is required", map[string]string{"id": "is required"})
	}
	if err != nil {
		log.Warn("invalid project form", sl.Err(err))
		return nil, newFormResult(err, MsgFixFormErrors)
	}

	project, err := s.api.UpdateProject(ctx, id, form.input())
	if err != nil {
		log.Error("failed to update project", sl.Err(err))
		return nil, newFormResult(fmt.Errorf("%s: %w", op, err), "Failed to update project")
	}

	s.store.UpsertProject(*project)
	log.Info("project updated")

	return project, nil
}

func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	const op = "project_service.DeleteProject"
	log := s.log.With(slog.String("op", op), slog.String("project_id", id))

	if id == "" {
		err := apierr.NewValidation("project id is required", map[string]string{"id": "is required"})
		log.Warn("invalid delete request", sl.Err(err))
		return newFormResult(err, "Project id is required")
	}

	if err := s.api.DeleteProject(ctx, id); err != nil {
		log.Error("failed to delete project", sl.Err(err))
		return newFormResult(fmt.Errorf("%s: %w", op, err), "Failed to delete project")
	}

	s.store.RemoveProject(id)
	log.Info("project deleted")

	return nil
}

func (s *ProjectService) validateForm(form ProjectForm, requireTags bool) error {
	fields := map[string]string{}
	if err := validate.Struct(s.validate, form, MsgFixFormErrors); err != nil {
		for k, v := range apierr.FieldErrors(err) {
			fields[k] = v
		}
	}
	if requireTags && len(form.Tags) == 0 {
		fields["tags"] = "at least one tag is required"
	}
	if len(fields) > 0 {
		return apierr.NewValidation(MsgFixFormErrors, fields)
	}
	return nil
}
