package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"template_hub/internal/domain/models"
	"template_hub/internal/lib/apierr"
	"template_hub/internal/repository"
	"template_hub/internal/transport/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProjectAPI struct {
	mock.Mock
}

func (m *MockProjectAPI) project(args mock.Arguments) (*models.Project, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectAPI) PublishProject(ctx context.Context, projectID string) (*models.Project, error) {
	return m.project(m.Called(ctx, projectID))
}

func (m *MockProjectAPI) UnpublishProject(ctx context.Context, projectID string) (*models.Project, error) {
	return m.project(m.Called(ctx, projectID))
}

func (m *MockProjectAPI) ListProjects(ctx context.Context, page, limit int) (*api.ProjectPage, error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ProjectPage), args.Error(1)
}

func (m *MockProjectAPI) CreateProject(ctx context.Context, in api.ProjectInput) (*models.Project, error) {
	return m.project(m.Called(ctx, in))
}

func (m *MockProjectAPI) UpdateProject(ctx context.Context, id string, in api.ProjectInput) (*models.Project, error) {
	return m.project(m.Called(ctx, id, in))
}

func (m *MockProjectAPI) DeleteProject(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestService(m *MockProjectAPI, seed ...models.Project) (*ProjectService, *repository.EntityRepository) {
	store := repository.NewEntityRepository()
	store.ReplaceProjects(seed, models.InitialPagination())
	return NewProjectService(slog.New(slog.NewTextHandler(io.Discard, nil)), m, store), store
}

func TestProjectService_SetPublished(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name          string
		projectID     string
		desired       bool
		mockSetup     func(m *MockProjectAPI)
		wantKind      apierr.Kind
		wantPublished bool
	}{
		{
			name:      "publish",
			projectID: "p1",
			desired:   true,
			mockSetup: func(m *MockProjectAPI) {
				m.On("PublishProject", ctx, "p1").Return(&models.Project{ID: "p1", Published: true}, nil).Once()
			},
			wantPublished: true,
		},
		{
			name:      "unpublish failure leaves flag",
			projectID: "p2",
			desired:   false,
			mockSetup: func(m *MockProjectAPI) {
				m.On("UnpublishProject", ctx, "p2").
					Return(nil, &apierr.ServerError{Op: "api.UnpublishProject", Status: 403, Message: "forbidden"}).Once()
			},
			wantKind:      apierr.KindServer,
			wantPublished: true,
		},
		{
			name:      "empty id",
			projectID: "",
			desired:   true,
			mockSetup: func(m *MockProjectAPI) {},
			wantKind:  apierr.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockProjectAPI)
			tt.mockSetup(m)
			svc, store := newTestService(m, models.Project{ID: "p1"}, models.Project{ID: "p2", Published: true})

			err := svc.SetPublished(ctx, tt.projectID, tt.desired)

			if tt.wantKind != apierr.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apierr.KindOf(err))
			} else {
				require.NoError(t, err)
			}

			if tt.projectID != "" {
				p, ok := store.Project(tt.projectID)
				require.True(t, ok)
				assert.Equal(t, tt.wantPublished, p.Published)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestProjectService_CreateProject(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		form        ProjectForm
		mockSetup   func(m *MockProjectAPI)
		wantMessage string
		wantFields  map[string]string
	}{
		{
			name: "success inserts at head",
			form: ProjectForm{Title: " Cats ", Description: "Cute", Tags: []string{"ai", " "}},
			mockSetup: func(m *MockProjectAPI) {
				m.On("CreateProject", ctx, api.ProjectInput{Title: "Cats", Description: "Cute", Tags: []string{"ai"}}).
					Return(&models.Project{ID: "new", Title: "Cats"}, nil).Once()
			},
		},
		{
			name:        "client validation",
			form:        ProjectForm{Title: "  "},
			mockSetup:   func(m *MockProjectAPI) {},
			wantMessage: MsgFixFormErrors,
			wantFields: map[string]string{
				"title":       "is required",
				"description": "is required",
				"tags":        "at least one tag is required",
			},
		},
		{
			name: "server field errors",
			form: ProjectForm{Title: "Cats", Description: "Cute", Tags: []string{"ai"}},
			mockSetup: func(m *MockProjectAPI) {
				m.On("CreateProject", ctx, mock.Anything).
					Return(nil, &apierr.ServerError{Status: 400, Fields: map[string]string{"title": "Title already used"}}).Once()
			},
			wantMessage: MsgFixFormErrors,
			wantFields:  map[string]string{"title": "Title already used"},
		},
		{
			name: "server message",
			form: ProjectForm{Title: "Cats", Description: "Cute", Tags: []string{"ai"}},
			mockSetup: func(m *MockProjectAPI) {
				m.On("CreateProject", ctx, mock.Anything).
					Return(nil, &apierr.ServerError{Status: 500, Message: "quota exceeded"}).Once()
			},
			wantMessage: "quota exceeded",
		},
		{
			name: "transport failure uses default message",
			form: ProjectForm{Title: "Cats", Description: "Cute", Tags: []string{"ai"}},
			mockSetup: func(m *MockProjectAPI) {
				m.On("CreateProject", ctx, mock.Anything).
					Return(nil, &apierr.TransportError{Err: errors.New("dial tcp")}).Once()
			},
			wantMessage: "Failed to create project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockProjectAPI)
			tt.mockSetup(m)
			svc, store := newTestService(m, models.Project{ID: "old"})

			project, err := svc.CreateProject(ctx, tt.form)

			if tt.wantMessage == "" {
				require.NoError(t, err)
				assert.Equal(t, "new", project.ID)
				assert.Equal(t, "new", store.Projects()[0].ID)
			} else {
				require.Error(t, err)
				var res *FormResult
				require.ErrorAs(t, err, &res)
				assert.Equal(t, tt.wantMessage, res.Message)
				assert.Equal(t, tt.wantFields, res.Errors)
				assert.Len(t, store.Projects(), 1)
			}
			m.AssertExpectations(t)
		})
	}
}

func TestProjectService_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	m := new(MockProjectAPI)
	m.On("UpdateProject", ctx, "p1", api.ProjectInput{Title: "Dogs", Description: "Loyal", Tags: []string{}}).
		Return(&models.Project{ID: "p1", Title: "Dogs"}, nil).Once()
	m.On("DeleteProject", ctx, "p2").Return(nil).Once()
	m.On("DeleteProject", ctx, "p1").Return(&apierr.ServerError{Status: 404, Message: "not found"}).Once()

	svc, store := newTestService(m, models.Project{ID: "p1", Title: "Cats"}, models.Project{ID: "p2"})

	_, err := svc.UpdateProject(ctx, "p1", ProjectForm{Title: "Dogs", Description: "Loyal"})
	require.NoError(t, err)
	p, _ := store.Project("p1")
	assert.Equal(t, "Dogs", p.Title)

	_, err = svc.UpdateProject(ctx, "", ProjectForm{Title: "Dogs", Description: "Loyal"})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	require.NoError(t, svc.DeleteProject(ctx, "p2"))
	_, ok := store.Project("p2")
	assert.False(t, ok)

	err = svc.DeleteProject(ctx, "p1")
	require.Error(t, err)
	assert.Equal(t, "not found", apierr.Message(err))
	_, ok = store.Project("p1")
	assert.True(t, ok)

	m.AssertExpectations(t)
}

func TestProjectService_ListProjects(t *testing.T) {
	ctx := context.Background()
	m := new(MockProjectAPI)
	m.On("ListProjects", ctx, 1, 10).Return(&api.ProjectPage{
		Projects:   []models.Project{{ID: "a"}, {ID: "b"}},
		Pagination: models.Pagination{Page: 1, Limit: 10, Total: 2, TotalPages: 1},
	}, nil).Once()

	svc, store := newTestService(m)

	page, err := svc.ListProjects(ctx, ProjectFilter{})
	require.NoError(t, err)
	assert.Len(t, page.Projects, 2)
	assert.Len(t, store.Projects(), 2)
	assert.False(t, store.Loading(models.KindProject))

	_, err = svc.ListProjects(ctx, ProjectFilter{Limit: 1000})
	assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))

	m.AssertExpectations(t)
}

func TestProjectService_SubscriberCanRefetch(t *testing.T) {
	ctx := context.Background()
	m := new(MockProjectAPI)
	m.On("ListProjects", ctx, 1, 10).Return(&api.ProjectPage{
		Projects:   []models.Project{{ID: "a"}},
		Pagination: models.Pagination{Page: 1, Limit: 10, Total: 1, TotalPages: 1},
	}, nil).Once()
	m.On("ListProjects", ctx, 2, 10).Return(&api.ProjectPage{
		Projects:   []models.Project{{ID: "b"}},
		Pagination: models.Pagination{Page: 2, Limit: 10, Total: 11, TotalPages: 2},
	}, nil).Once()

	svc, store := newTestService(m)

	refetched := false
	store.Subscribe(func(c repository.Change) {
		if c.Op == repository.OpReplace && !refetched {
			refetched = true
			_, err := svc.ListProjects(ctx, ProjectFilter{Page: 2})
			assert.NoError(t, err)
		}
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ListProjects(ctx, ProjectFilter{})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListProjects blocked while a subscriber re-fetched")
	}

	assert.Equal(t, 2, store.ProjectPagination().Page)
	assert.Equal(t, "b", store.Projects()[0].ID)
	m.AssertExpectations(t)
}
