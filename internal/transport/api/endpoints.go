package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"template_hub/internal/domain/models"
)

const (
	pathTemplates    = "/api/v1/template/template"
	pathTemplateRoot = "/api/v1/template/"
	pathPublish      = "/api/v1/template/publish"
	pathUnpublish    = "/api/v1/template/unpublish"
	pathProjects     = "/api/v1/project"
	pathCheckout     = "/api/v1/billing/create-checkout-session"
	pathCredits      = "/api/v1/billing/credits"
)

// TemplateQuery - параметры листинга; пустые поля в запрос не попадают
type TemplateQuery struct {
	Page         int
	Limit        int
	ProjectTitle string
	Tags         []string
	Status       string
}

func (q TemplateQuery) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.ProjectTitle != "" {
		v.Set("projectTitle", q.ProjectTitle)
	}
	for _, tag := range q.Tags {
		if tag != "" {
			v.Add("tags[]", tag)
		}
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

type TemplatePage struct {
	Templates  []models.Template `json:"templates"`
	Pagination models.Pagination `json:"pagination"`
}

type ProjectPage struct {
	Projects   []models.Project  `json:"projects"`
	Pagination models.Pagination `json:"pagination"`
}

type ProjectInput struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Status      models.ProjectStatus `json:"status,omitempty"`
	Tags        []string             `json:"tags"`
}

func (c *Client) ListTemplates(ctx context.Context, q TemplateQuery) (*TemplatePage, error) {
	var page TemplatePage
	err := c.do(ctx, call{
		op:     "api.ListTemplates",
		method: http.MethodGet,
		path:   pathTemplates,
		query:  q.Values(),
		out:    &page,
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// ToggleReaction отправляет только намерение переключить реакцию, итог решает сервер
func (c *Client) ToggleReaction(ctx context.Context, templateID string, kind models.ReactionKind) error {
	return c.do(ctx, call{
		op:     "api.ToggleReaction." + string(kind),
		method: http.MethodPost,
		path:   pathTemplateRoot + string(kind) + "/" + url.PathEscape(templateID),
	})
}

func (c *Client) PublishProject(ctx context.Context, projectID string) (*models.Project, error) {
	return c.publishCall(ctx, "api.PublishProject", pathPublish, projectID)
}

func (c *Client) UnpublishProject(ctx context.Context, projectID string) (*models.Project, error) {
	return c.publishCall(ctx, "api.UnpublishProject", pathUnpublish, projectID)
}

func (c *Client) publishCall(ctx context.Context, op, path, projectID string) (*models.Project, error) {
	var project models.Project
	err := c.do(ctx, call{
		op:     op,
		method: http.MethodPost,
		path:   path,
		body:   map[string]string{"projectId": projectID},
		out:    &project,
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) ListProjects(ctx context.Context, page, limit int) (*ProjectPage, error) {
	var out ProjectPage
	err := c.do(ctx, call{
		op:     "api.ListProjects",
		method: http.MethodGet,
		path:   pathProjects,
		query:  TemplateQuery{Page: page, Limit: limit}.Values(),
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProject(ctx context.Context, in ProjectInput) (*models.Project, error) {
	var project models.Project
	err := c.do(ctx, call{
		op:     "api.CreateProject",
		method: http.MethodPost,
		path:   pathProjects,
		body:   in,
		out:    &project,
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) UpdateProject(ctx context.Context, id string, in ProjectInput) (*models.Project, error) {
	var project models.Project
	err := c.do(ctx, call{
		op:     "api.UpdateProject",
		method: http.MethodPut,
		path:   pathProjects + "/" + url.PathEscape(id),
		body:   in,
		out:    &project,
	})
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) DeleteProject(ctx context.Context, id string) error {
	return c.do(ctx, call{
		op:     "api.DeleteProject",
		method: http.MethodDelete,
		path:   pathProjects + "/" + url.PathEscape(id),
	})
}

func (c *Client) CreateCheckoutSession(ctx context.Context, planID string, region models.Region) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := c.do(ctx, call{
		op:     "api.CreateCheckoutSession",
		method: http.MethodPost,
		path:   pathCheckout,
		body: map[string]string{
			"planId": planID,
			"region": string(region),
		},
		out:            &session,
		requireSuccess: true,
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Credits - остаток кредитов; сервер отдает число, дробная часть сохраняется
func (c *Client) Credits(ctx context.Context) (float64, error) {
	var out struct {
		Credits float64 `json:"credits"`
	}
	err := c.do(ctx, call{
		op:             "api.Credits",
		method:         http.MethodGet,
		path:           pathCredits,
		out:            &out,
		requireSuccess: true,
	})
	if err != nil {
		return 0, err
	}
	return out.Credits, nil
}
