package services

import (
	"context"
	"errors"
	"fmt"
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

type MockTemplateAPI struct {
	mock.Mock
}

func (m *MockTemplateAPI) ListTemplates(ctx context.Context, q api.TemplateQuery) (*api.TemplatePage, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.TemplatePage), args.Error(1)
}

func templatesPage(page, limit, total int, prefix string) *api.TemplatePage {
	totalPages := (total + limit - 1) / limit
	count := limit
	if page == totalPages {
		count = total - (page-1)*limit
	}
	items := make([]models.Template, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, models.Template{ID: fmt.Sprintf("%s-%d", prefix, i)})
	}
	return &api.TemplatePage{
		Templates:  items,
		Pagination: models.Pagination{Page: page, Limit: limit, Total: total, TotalPages: totalPages},
	}
}

func newTestService(m *MockTemplateAPI) (*TemplateService, *repository.EntityRepository) {
	store := repository.NewEntityRepository()
	return NewTemplateService(slog.New(slog.NewTextHandler(io.Discard, nil)), m, store, 10), store
}

func TestTemplateService_ListTemplates(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		filter    TemplateFilter
		mockSetup func(m *MockTemplateAPI)
		wantKind  apierr.Kind
		wantCount int
	}{
		{
			name:   "defaults applied",
			filter: TemplateFilter{},
			mockSetup: func(m *MockTemplateAPI) {
				m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10}).
					Return(templatesPage(1, 10, 23, "a"), nil).Once()
			},
			wantCount: 10,
		},
		{
			name:   "blank filter fields are dropped",
			filter: TemplateFilter{Page: 2, Limit: 5, ProjectTitle: "  ", Tags: []string{"", "ai"}},
			mockSetup: func(m *MockTemplateAPI) {
				m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 5, Tags: []string{"ai"}}).
					Return(templatesPage(2, 5, 7, "b"), nil).Once()
			},
			wantCount: 2,
		},
		{
			name:      "negative page rejected",
			filter:    TemplateFilter{Page: -1},
			mockSetup: func(m *MockTemplateAPI) {},
			wantKind:  apierr.KindValidation,
		},
		{
			name:      "limit above maximum rejected",
			filter:    TemplateFilter{Limit: 500},
			mockSetup: func(m *MockTemplateAPI) {},
			wantKind:  apierr.KindValidation,
		},
		{
			name:      "unknown status rejected",
			filter:    TemplateFilter{Status: "archived"},
			mockSetup: func(m *MockTemplateAPI) {},
			wantKind:  apierr.KindValidation,
		},
		{
			name:   "server failure surfaces",
			filter: TemplateFilter{},
			mockSetup: func(m *MockTemplateAPI) {
				m.On("ListTemplates", ctx, mock.Anything).
					Return(nil, &apierr.ServerError{Op: "api.ListTemplates", Status: 502}).Once()
			},
			wantKind: apierr.KindServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockTemplateAPI)
			tt.mockSetup(m)
			svc, store := newTestService(m)

			res, err := svc.ListTemplates(ctx, tt.filter)

			if tt.wantKind != apierr.KindUnknown {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apierr.KindOf(err))
				assert.Nil(t, res)
			} else {
				require.NoError(t, err)
				assert.Len(t, res.Items, tt.wantCount)
				assert.Len(t, store.Templates(), tt.wantCount)
				assert.Equal(t, res.Pagination, store.TemplatePagination())
				assert.False(t, store.Loading(models.KindTemplate))
			}

			m.AssertExpectations(t)
		})
	}
}

func TestTemplateService_FailureKeepsPreviousPage(t *testing.T) {
	ctx := context.Background()
	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10}).
		Return(templatesPage(1, 10, 23, "a"), nil).Once()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 10}).
		Return(nil, &apierr.TransportError{Op: "api.ListTemplates", Err: errors.New("timeout")}).Once()

	svc, store := newTestService(m)

	_, err := svc.ListTemplates(ctx, TemplateFilter{})
	require.NoError(t, err)
	before := store.Templates()

	_, err = svc.ChangePage(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, apierr.KindTransport, apierr.KindOf(err))

	assert.Equal(t, before, store.Templates())
	assert.Equal(t, 1, store.TemplatePagination().Page)
	assert.False(t, store.Loading(models.KindTemplate))
	m.AssertExpectations(t)
}

func TestTemplateService_StaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})

	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10}).
		Run(func(mock.Arguments) {
			close(firstStarted)
			<-releaseFirst
		}).
		Return(templatesPage(1, 10, 23, "page1"), nil).Once()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 10}).
		Return(templatesPage(2, 10, 23, "page2"), nil).Once()

	svc, store := newTestService(m)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.ListTemplates(ctx, TemplateFilter{Page: 1})
		firstDone <- err
	}()
	<-firstStarted

	res, err := svc.ListTemplates(ctx, TemplateFilter{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.Seq)

	close(releaseFirst)
	err = <-firstDone
	assert.ErrorIs(t, err, apierr.ErrStaleResponse)

	assert.Equal(t, 2, store.TemplatePagination().Page)
	items := store.Templates()
	require.NotEmpty(t, items)
	assert.Equal(t, "page2-0", items[0].ID)
	assert.False(t, store.Loading(models.KindTemplate))
	m.AssertExpectations(t)
}

func TestTemplateService_LoadingClearsOnlyForLatest(t *testing.T) {
	ctx := context.Background()
	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	secondStarted := make(chan struct{})
	releaseSecond := make(chan struct{})

	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10}).
		Run(func(mock.Arguments) {
			close(firstStarted)
			<-releaseFirst
		}).
		Return(nil, &apierr.ServerError{Op: "api.ListTemplates", Status: 500}).Once()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 10}).
		Run(func(mock.Arguments) {
			close(secondStarted)
			<-releaseSecond
		}).
		Return(templatesPage(2, 10, 23, "page2"), nil).Once()

	svc, store := newTestService(m)

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.ListTemplates(ctx, TemplateFilter{Page: 1})
		firstDone <- err
	}()
	<-firstStarted

	secondDone := make(chan error, 1)
	go func() {
		_, err := svc.ListTemplates(ctx, TemplateFilter{Page: 2})
		secondDone <- err
	}()
	<-secondStarted

	close(releaseFirst)
	assert.ErrorIs(t, <-firstDone, apierr.ErrStaleResponse)
	assert.True(t, store.Loading(models.KindTemplate))

	close(releaseSecond)
	require.NoError(t, <-secondDone)
	assert.False(t, store.Loading(models.KindTemplate))
	m.AssertExpectations(t)
}

func TestTemplateService_ChangePageBoundaries(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		page  int
		step  int
		total int
	}{
		{name: "previous at first page", page: 1, step: -1, total: 23},
		{name: "next at last page", page: 3, step: 1, total: 23},
		{name: "next with nothing loaded", page: 1, step: 1, total: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockTemplateAPI)
			svc, store := newTestService(m)
			store.ReplaceTemplates(nil, models.Pagination{Page: tt.page, Limit: 10, Total: tt.total, TotalPages: (tt.total + 9) / 10})

			_, err := svc.ChangePage(ctx, tt.step)

			require.Error(t, err)
			assert.ErrorIs(t, err, apierr.ErrPageOutOfRange)
			assert.Equal(t, apierr.KindValidation, apierr.KindOf(err))
			m.AssertNotCalled(t, "ListTemplates", mock.Anything, mock.Anything)
		})
	}
}

func TestTemplateService_PagingScenario(t *testing.T) {
	ctx := context.Background()
	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10}).
		Return(templatesPage(1, 10, 23, "a"), nil).Twice()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 10}).
		Return(templatesPage(2, 10, 23, "b"), nil).Once()

	svc, store := newTestService(m)

	res, err := svc.ListTemplates(ctx, TemplateFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, res.Items, 10)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 10, Total: 23, TotalPages: 3}, store.TemplatePagination())

	res, err = svc.ChangePage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Page)

	res, err = svc.ChangePage(ctx, -1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Pagination.Page)

	m.AssertExpectations(t)
}

func TestTemplateService_ApplyFiltersAndRefresh(t *testing.T) {
	ctx := context.Background()
	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 10}).
		Return(templatesPage(2, 10, 23, "a"), nil).Once()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10, ProjectTitle: "cats", Tags: []string{"ai"}}).
		Return(templatesPage(1, 10, 3, "c"), nil).Twice()

	svc, _ := newTestService(m)

	_, err := svc.ListTemplates(ctx, TemplateFilter{Page: 2})
	require.NoError(t, err)

	res, err := svc.ApplyFilters(ctx, "cats", []string{"ai"})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)

	_, err = svc.Refresh(ctx)
	require.NoError(t, err)

	assert.Equal(t, "cats", svc.LastFilter().ProjectTitle)
	m.AssertExpectations(t)
}

func TestTemplateService_SubscriberCanCallBack(t *testing.T) {
	ctx := context.Background()
	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10, ProjectTitle: "cats"}).
		Return(templatesPage(1, 10, 3, "c"), nil).Once()

	svc, store := newTestService(m)

	var seen []string
	store.Subscribe(func(c repository.Change) {
		seen = append(seen, svc.LastFilter().ProjectTitle)
	})

	done := make(chan error, 1)
	go func() {
		_, err := svc.ListTemplates(ctx, TemplateFilter{ProjectTitle: "cats"})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("ListTemplates blocked while a subscriber read the service")
	}

	// loading on issue, replace on apply
	assert.Equal(t, []string{"", "cats"}, seen)
	m.AssertExpectations(t)
}

func TestTemplateService_FailedFilterIsNotRemembered(t *testing.T) {
	ctx := context.Background()
	m := new(MockTemplateAPI)
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10}).
		Return(templatesPage(1, 10, 23, "a"), nil).Once()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 1, Limit: 10, ProjectTitle: "cats"}).
		Return(nil, &apierr.TransportError{Op: "list", Err: errors.New("dial")}).Once()
	m.On("ListTemplates", ctx, api.TemplateQuery{Page: 2, Limit: 10}).
		Return(templatesPage(2, 10, 23, "b"), nil).Once()

	svc, _ := newTestService(m)

	_, err := svc.ListTemplates(ctx, TemplateFilter{})
	require.NoError(t, err)

	_, err = svc.ApplyFilters(ctx, "cats", nil)
	require.Error(t, err)
	assert.Empty(t, svc.LastFilter().ProjectTitle)

	res, err := svc.ChangePage(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pagination.Page)
	m.AssertExpectations(t)
}
