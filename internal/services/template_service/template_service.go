package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
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

const MaxLimit = 100

type TemplateAPI interface {
	ListTemplates(ctx context.Context, q api.TemplateQuery) (*api.TemplatePage, error)
}

// TemplateFilter - фильтр галереи. Нулевые Page и Limit заменяются значениями по умолчанию.
type TemplateFilter struct {
	Page         int                  `json:"page" validate:"gte=0"`
	Limit        int                  `json:"limit" validate:"gte=0,lte=100"`
	ProjectTitle string               `json:"projectTitle"`
	Tags         []string             `json:"tags"`
	Status       models.ProjectStatus `json:"status" validate:"omitempty,oneof=draft in-progress completed"`
}

func (f TemplateFilter) withDefaults(defaultLimit int) TemplateFilter {
	if f.Page == 0 {
		f.Page = models.DefaultPage
	}
	if f.Limit == 0 {
		f.Limit = defaultLimit
	}
	f.ProjectTitle = strings.TrimSpace(f.ProjectTitle)
	f.Tags = slices.DeleteFunc(slices.Clone(f.Tags), func(tag string) bool {
		return strings.TrimSpace(tag) == ""
	})
	return f
}

func (f TemplateFilter) query() api.TemplateQuery {
	return api.TemplateQuery{
		Page:         f.Page,
		Limit:        f.Limit,
		ProjectTitle: f.ProjectTitle,
		Tags:         f.Tags,
		Status:       string(f.Status),
	}
}

// ListRequest - выданный запрос листинга; ответ применяется, только если Seq все еще последний
type ListRequest struct {
	Seq    uint64
	Filter TemplateFilter
}

type ListResult struct {
	Seq        uint64
	Items      []models.Template
	Pagination models.Pagination
}

type TemplateService struct {
	log          *slog.Logger
	api          TemplateAPI
	store        repository.TemplateStore
	validate     *validator.Validate
	defaultLimit int

	mu   sync.Mutex
	seq  uint64
	last TemplateFilter
}

func NewTemplateService(log *slog.Logger, client TemplateAPI, store repository.TemplateStore, defaultLimit int) *TemplateService {
	if defaultLimit <= 0 || defaultLimit > MaxLimit {
		defaultLimit = models.DefaultLimit
	}
	return &TemplateService{
		log:          log,
		api:          client,
		store:        store,
		validate:     validate.New(),
		defaultLimit: defaultLimit,
		last:         TemplateFilter{Page: models.DefaultPage, Limit: defaultLimit},
	}
}

// ListTemplates загружает страницу шаблонов и заменяет ею текущую.
// Ответ на запрос, после которого уже выдан более новый, отбрасывается с ErrStaleResponse.
func (s *TemplateService) ListTemplates(ctx context.Context, filter TemplateFilter) (*ListResult, error) {
	const op = "template_service.ListTemplates"
	log := s.log.With(slog.String("op", op))

	filter = filter.withDefaults(s.defaultLimit)
	if err := validate.Struct(s.validate, filter, "invalid template filter"); err != nil {
		log.Warn("invalid filter", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := s.issue(filter)
	log = log.With(slog.Uint64("seq", req.Seq), slog.Int("page", filter.Page))
	log.Debug("listing templates")

	page, err := s.api.ListTemplates(ctx, filter.query())

	flush := s.store.HoldNotifications()
	s.mu.Lock()
	latest := req.Seq == s.seq
	if latest {
		if err == nil {
			s.last = filter
			s.store.ReplaceTemplates(page.Templates, page.Pagination)
		} else {
			s.store.SetLoading(models.KindTemplate, false)
		}
	}
	s.mu.Unlock()
	flush()

	if !latest {
		metrics.StaleResponsesTotal.WithLabelValues(string(models.KindTemplate)).Inc()
		log.Debug("discarding stale response", slog.Bool("failed", err != nil))
		return nil, fmt.Errorf("%s: %w", op, apierr.ErrStaleResponse)
	}

	if err != nil {
		log.Error("failed to list templates", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !page.Pagination.Consistent() {
		log.Warn("inconsistent pagination from server",
			slog.Int("total", page.Pagination.Total),
			slog.Int("total_pages", page.Pagination.TotalPages),
		)
	}

	log.Info("templates listed", slog.Int("count", len(page.Templates)), slog.Int("total", page.Pagination.Total))

	return &ListResult{
		Seq:        req.Seq,
		Items:      page.Templates,
		Pagination: page.Pagination,
	}, nil
}

// ChangePage сдвигает текущую страницу на step. Выход за [1, totalPages] отклоняется без запроса.
func (s *TemplateService) ChangePage(ctx context.Context, step int) (*ListResult, error) {
	const op = "template_service.ChangePage"

	p := s.store.TemplatePagination()
	if !p.CanStep(step) {
		s.log.Debug("page change out of range",
			slog.String("op", op),
			slog.Int("page", p.Page),
			slog.Int("step", step),
			slog.Int("total_pages", p.TotalPages),
		)
		return nil, fmt.Errorf("%s: %w", op, apierr.Invalid(apierr.ErrPageOutOfRange))
	}

	filter := s.LastFilter()
	filter.Page = p.Page + step
	return s.ListTemplates(ctx, filter)
}

// ApplyFilters применяет поиск по названию и тегам и возвращает на первую страницу
func (s *TemplateService) ApplyFilters(ctx context.Context, projectTitle string, tags []string) (*ListResult, error) {
	filter := s.LastFilter()
	filter.Page = models.DefaultPage
	filter.ProjectTitle = projectTitle
	filter.Tags = tags
	return s.ListTemplates(ctx, filter)
}

// Refresh повторяет последний фильтр
func (s *TemplateService) Refresh(ctx context.Context) (*ListResult, error) {
	return s.ListTemplates(ctx, s.LastFilter())
}

func (s *TemplateService) LastFilter() TemplateFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.last
	f.Tags = slices.Clone(f.Tags)
	return f
}

func (s *TemplateService) issue(filter TemplateFilter) ListRequest {
	flush := s.store.HoldNotifications()
	defer flush()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.store.SetLoading(models.KindTemplate, true)

	return ListRequest{Seq: s.seq, Filter: filter}
}
