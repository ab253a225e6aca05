package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"template_hub/internal/domain/models"
	"template_hub/internal/lib/apierr"
	"template_hub/internal/lib/logger/sl"
	billing "template_hub/internal/services/billing_service"
	projects "template_hub/internal/services/project_service"
	templates "template_hub/internal/services/template_service"
	"template_hub/internal/transport/api"
	"template_hub/internal/transport/http/dto/request"
	"template_hub/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type TemplateService interface {
	ListTemplates(ctx context.Context, filter templates.TemplateFilter) (*templates.ListResult, error)
	ChangePage(ctx context.Context, step int) (*templates.ListResult, error)
}

type ReactionService interface {
	ToggleReaction(ctx context.Context, templateID string, user models.UserRef, kind models.ReactionKind) error
}

type ProjectService interface {
	SetPublished(ctx context.Context, projectID string, desired bool) error
	ListProjects(ctx context.Context, filter projects.ProjectFilter) (*api.ProjectPage, error)
	CreateProject(ctx context.Context, form projects.ProjectForm) (*models.Project, error)
	UpdateProject(ctx context.Context, id string, form projects.ProjectForm) (*models.Project, error)
	DeleteProject(ctx context.Context, id string) error
}

type BillingService interface {
	Region() models.Region
	Quotes(region models.Region) []billing.PlanQuote
	Credits(ctx context.Context) (float64, error)
	CreateCheckoutSession(ctx context.Context, planID string, region models.Region) (*models.CheckoutSession, error)
}

// Store - чтение состояния репозитория для представлений
type Store interface {
	Templates() []models.Template
	Template(id string) (models.Template, bool)
	TemplatePagination() models.Pagination
	Projects() []models.Project
	ProjectPagination() models.Pagination
	Loading(kind models.EntityKind) bool
}

type Routers struct {
	log             *slog.Logger
	actor           models.UserRef
	Store           Store
	TemplateService TemplateService
	ReactionService ReactionService
	ProjectService  ProjectService
	BillingService  BillingService
}

func NewRouter(
	log *slog.Logger,
	actor models.UserRef,
	store Store,
	templateService TemplateService,
	reactionService ReactionService,
	projectService ProjectService,
	billingService BillingService,
) *Routers {
	return &Routers{
		log:             log,
		actor:           actor,
		Store:           store,
		TemplateService: templateService,
		ReactionService: reactionService,
		ProjectService:  projectService,
		BillingService:  billingService,
	}
}

type templatesView struct {
	Templates  []models.Template `json:"templates"`
	Pagination models.Pagination `json:"pagination"`
	Loading    bool              `json:"loading"`
}

type projectsView struct {
	Projects   []models.Project  `json:"projects"`
	Pagination models.Pagination `json:"pagination"`
	Loading    bool              `json:"loading"`
}

func (r *Routers) templatesSnapshot() templatesView {
	return templatesView{
		Templates:  r.Store.Templates(),
		Pagination: r.Store.TemplatePagination(),
		Loading:    r.Store.Loading(models.KindTemplate),
	}
}

func (r *Routers) projectsSnapshot() projectsView {
	return projectsView{
		Projects:   r.Store.Projects(),
		Pagination: r.Store.ProjectPagination(),
		Loading:    r.Store.Loading(models.KindProject),
	}
}

// ListTemplates отдает текущую страницу галереи из репозитория
func (r *Routers) ListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.templatesSnapshot()))
}

func (r *Routers) GetTemplate(c echo.Context) error {
	tpl, ok := r.Store.Template(c.Param("id"))
	if !ok {
		return c.JSON(http.StatusNotFound, response.ErrNotFound)
	}
	return c.JSON(http.StatusOK, response.SuccessResponse(tpl))
}

// FetchTemplates загружает страницу с сервера по фильтру
func (r *Routers) FetchTemplates(c echo.Context) error {
	const op = "http.routers.FetchTemplates"

	log := r.log.With(
		slog.String("op", op),
	)

	var filter templates.TemplateFilter
	if err := c.Bind(&filter); err != nil {
		log.Warn("invalid request body", sl.Err(err))
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if _, err := r.TemplateService.ListTemplates(c.Request().Context(), filter); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.templatesSnapshot()))
}

func (r *Routers) ChangePage(c echo.Context) error {
	const op = "http.routers.ChangePage"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.PageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return r.fail(c, log, err)
	}

	if _, err := r.TemplateService.ChangePage(c.Request().Context(), req.Step); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.templatesSnapshot()))
}

func (r *Routers) LikeTemplate(c echo.Context) error {
	return r.toggle(c, models.ReactionLike)
}

func (r *Routers) DislikeTemplate(c echo.Context) error {
	return r.toggle(c, models.ReactionDislike)
}

func (r *Routers) toggle(c echo.Context, kind models.ReactionKind) error {
	const op = "http.routers.ToggleReaction"

	id := c.Param("id")
	log := r.log.With(
		slog.String("op", op),
		slog.String("template_id", id),
		slog.String("kind", string(kind)),
	)

	if err := r.ReactionService.ToggleReaction(c.Request().Context(), id, r.actor, kind); err != nil {
		return r.fail(c, log, err)
	}

	tpl, ok := r.Store.Template(id)
	if !ok {
		return c.JSON(http.StatusOK, response.Response{Status: "success", Message: "reaction recorded"})
	}
	return c.JSON(http.StatusOK, response.SuccessResponse(tpl))
}

func (r *Routers) ListProjects(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.projectsSnapshot()))
}

func (r *Routers) FetchProjects(c echo.Context) error {
	const op = "http.routers.FetchProjects"

	log := r.log.With(
		slog.String("op", op),
	)

	var filter projects.ProjectFilter
	if err := c.Bind(&filter); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if _, err := r.ProjectService.ListProjects(c.Request().Context(), filter); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.projectsSnapshot()))
}

func (r *Routers) PublishProject(c echo.Context) error {
	return r.setPublished(c, true)
}

func (r *Routers) UnpublishProject(c echo.Context) error {
	return r.setPublished(c, false)
}

func (r *Routers) setPublished(c echo.Context, desired bool) error {
	const op = "http.routers.SetPublished"

	id := c.Param("id")
	log := r.log.With(
		slog.String("op", op),
		slog.String("project_id", id),
	)

	if err := r.ProjectService.SetPublished(c.Request().Context(), id, desired); err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]any{"projectId": id, "publish": desired}))
}

func (r *Routers) CreateProject(c echo.Context) error {
	const op = "http.routers.CreateProject"

	log := r.log.With(
		slog.String("op", op),
	)

	var form projects.ProjectForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	project, err := r.ProjectService.CreateProject(c.Request().Context(), form)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(project))
}

func (r *Routers) UpdateProject(c echo.Context) error {
	const op = "http.routers.UpdateProject"

	id := c.Param("id")
	log := r.log.With(
		slog.String("op", op),
		slog.String("project_id", id),
	)

	var form projects.ProjectForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	project, err := r.ProjectService.UpdateProject(c.Request().Context(), id, form)
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(project))
}

func (r *Routers) DeleteProject(c echo.Context) error {
	const op = "http.routers.DeleteProject"

	id := c.Param("id")
	log := r.log.With(
		slog.String("op", op),
		slog.String("project_id", id),
	)

	if err := r.ProjectService.DeleteProject(c.Request().Context(), id); err != nil {
		return r.fail(c, log, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// ListPlans отдает планы с ценами для региона из query или определенного автоматически
func (r *Routers) ListPlans(c echo.Context) error {
	region := models.Region(c.QueryParam("region"))
	switch region {
	case models.RegionUS, models.RegionIN, models.RegionGB:
	default:
		region = r.BillingService.Region()
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]any{
		"region": region,
		"plans":  r.BillingService.Quotes(region),
	}))
}

func (r *Routers) Credits(c echo.Context) error {
	const op = "http.routers.Credits"

	log := r.log.With(
		slog.String("op", op),
	)

	credits, err := r.BillingService.Credits(c.Request().Context())
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]float64{"credits": credits}))
}

func (r *Routers) Checkout(c echo.Context) error {
	const op = "http.routers.Checkout"

	log := r.log.With(
		slog.String("op", op),
	)

	var req request.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return r.fail(c, log, err)
	}

	session, err := r.BillingService.CreateCheckoutSession(c.Request().Context(), req.PlanID, models.Region(req.Region))
	if err != nil {
		return r.fail(c, log, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(session))
}

// fail логирует ошибку и отвечает статусом по ее виду
func (r *Routers) fail(c echo.Context, log *slog.Logger, err error) error {
	status, code := classify(err)

	details, fields := apierr.Message(err), apierr.FieldErrors(err)
	var formErr *projects.FormResult
	if errors.As(err, &formErr) {
		details, fields = formErr.Message, formErr.Errors
	}

	if status >= 500 {
		log.Error("request failed", slog.Int("status", status), sl.Err(err))
	} else {
		log.Warn("request rejected", slog.Int("status", status), sl.Err(err))
	}

	return c.JSON(status, response.Failure(code, details, fields))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, apierr.ErrStaleResponse):
		return http.StatusConflict, response.CodeStale
	case errors.Is(err, apierr.ErrReactionInFlight):
		return http.StatusConflict, response.CodeInFlight
	}

	switch apierr.KindOf(err) {
	case apierr.KindValidation:
		return http.StatusBadRequest, response.CodeValidation
	case apierr.KindTransport:
		return http.StatusBadGateway, response.CodeTransport
	case apierr.KindServer:
		var se *apierr.ServerError
		if errors.As(err, &se) && se.Status >= 400 && se.Status < 500 {
			return se.Status, response.CodeServer
		}
		return http.StatusBadGateway, response.CodeServer
	}

	return http.StatusInternalServerError, response.CodeInternal
}
