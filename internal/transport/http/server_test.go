package http_test

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpapp "template_hub/internal/app/http"
	"template_hub/internal/domain/models"
	"template_hub/internal/repository"
	billing "template_hub/internal/services/billing_service"
	projects "template_hub/internal/services/project_service"
	reactions "template_hub/internal/services/reaction_service"
	templates "template_hub/internal/services/template_service"
	"template_hub/internal/transport/api"
	httprouters "template_hub/internal/transport/http"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var actor = models.UserRef{ID: "me", Email: "me@example.com"}

// fakeUpstream изображает API контента
type fakeUpstream struct {
	mu        sync.Mutex
	likeFails bool
	likes     int
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/api/v1/template/template":
		page := r.URL.Query().Get("page")
		fmt.Fprintf(w, `{"data":{"templates":[{"_id":"t%s","likes":[],"dislikes":[],"likeCount":0,"dislikeCount":0,"project":{"_id":"p1","title":"Cats"}}],"pagination":{"page":%s,"limit":1,"total":2,"totalPages":2}}}`, page, page)
	case strings.HasPrefix(r.URL.Path, "/api/v1/template/like/"):
		if f.likeFails {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"error":{"message":"database unavailable"}}`))
			return
		}
		f.likes++
		w.WriteHeader(http.StatusOK)
	case r.URL.Path == "/api/v1/project":
		w.Write([]byte(`{"data":{"projects":[{"_id":"p1","title":"Cats","publish":false}],"pagination":{"page":1,"limit":10,"total":1,"totalPages":1}}}`))
	case r.URL.Path == "/api/v1/template/publish":
		w.Write([]byte(`{"data":{"_id":"p1","publish":true}}`))
	case r.URL.Path == "/api/v1/billing/credits":
		w.Write([]byte(`{"success":true,"data":{"credits":12}}`))
	case r.URL.Path == "/api/v1/billing/create-checkout-session":
		w.Write([]byte(`{"success":true,"data":{"checkoutUrl":"https://pay.example.com/s/1"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

type ViewServerTestSuite struct {
	suite.Suite
	upstream *httptest.Server
	fake     *fakeUpstream
	server   *httptest.Server
	store    *repository.EntityRepository
}

func (s *ViewServerTestSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	s.fake = &fakeUpstream{}
	s.upstream = httptest.NewServer(s.fake)

	client := api.NewClient(log, api.Options{BaseURL: s.upstream.URL, Timeout: 5 * time.Second})
	s.store = repository.NewEntityRepository()

	routers := httprouters.NewRouter(
		log,
		actor,
		s.store,
		templates.NewTemplateService(log, client, s.store, 1),
		reactions.NewReactionService(log, client, s.store),
		projects.NewProjectService(log, client, s.store),
		billing.NewBillingService(log, client, billing.EnvLocale{TimeZoneOverride: "Asia/Kolkata"}, time.Minute),
	)

	srv := httpapp.New(log, "127.0.0.1", "0", routers)
	srv.BuildRouters()
	s.server = httptest.NewServer(srv.Handler())
}

func (s *ViewServerTestSuite) TearDownTest() {
	s.server.Close()
	s.upstream.Close()
}

func (s *ViewServerTestSuite) do(method, path, body string) (int, map[string]any) {
	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	require.NoError(s.T(), err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	if len(raw) > 0 {
		require.NoError(s.T(), json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (s *ViewServerTestSuite) TestInitialSnapshotIsLoading() {
	status, body := s.do(http.MethodGet, "/api/v1/templates", "")

	s.Equal(http.StatusOK, status)
	data := body["data"].(map[string]any)
	s.Equal(true, data["loading"])
	s.Empty(data["templates"])
}

func (s *ViewServerTestSuite) TestFetchAndPage() {
	status, _ := s.do(http.MethodPost, "/api/v1/templates/fetch", `{"page":1}`)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(1, s.store.TemplatePagination().Page)

	status, body := s.do(http.MethodPost, "/api/v1/templates/page", `{"step":-1}`)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("validation_failed", body["error"])

	status, _ = s.do(http.MethodPost, "/api/v1/templates/page", `{"step":1}`)
	s.Require().Equal(http.StatusOK, status)
	s.Equal(2, s.store.TemplatePagination().Page)

	status, body = s.do(http.MethodGet, "/api/v1/templates/t2", "")
	s.Equal(http.StatusOK, status)
	s.Equal("t2", body["data"].(map[string]any)["_id"])

	status, _ = s.do(http.MethodGet, "/api/v1/templates/missing", "")
	s.Equal(http.StatusNotFound, status)
}

func (s *ViewServerTestSuite) TestInvalidFilter() {
	status, body := s.do(http.MethodPost, "/api/v1/templates/fetch", `{"limit":1000}`)

	s.Equal(http.StatusBadRequest, status)
	s.Contains(body["fields"], "limit")
}

func (s *ViewServerTestSuite) TestLike() {
	s.do(http.MethodPost, "/api/v1/templates/fetch", `{}`)

	status, body := s.do(http.MethodPost, "/api/v1/templates/t1/like", "")
	s.Require().Equal(http.StatusOK, status)
	data := body["data"].(map[string]any)
	s.Equal(float64(1), data["likeCount"])

	s.fake.mu.Lock()
	s.fake.likeFails = true
	s.fake.mu.Unlock()

	status, body = s.do(http.MethodPost, "/api/v1/templates/t1/like", "")
	s.Equal(http.StatusBadGateway, status)
	s.Equal("database unavailable", body["details"])

	tpl, ok := s.store.Template("t1")
	s.Require().True(ok)
	s.Equal(1, tpl.LikeCount)
}

func (s *ViewServerTestSuite) TestPublish() {
	status, _ := s.do(http.MethodPost, "/api/v1/projects/fetch", `{}`)
	s.Require().Equal(http.StatusOK, status)

	status, _ = s.do(http.MethodPost, "/api/v1/projects/p1/publish", "")
	s.Require().Equal(http.StatusOK, status)

	p, ok := s.store.Project("p1")
	s.Require().True(ok)
	s.True(p.Published)
}

func (s *ViewServerTestSuite) TestCreateProjectFormErrors() {
	status, body := s.do(http.MethodPost, "/api/v1/projects", `{"title":"","description":"x"}`)

	s.Equal(http.StatusBadRequest, status)
	s.Equal("Please fix the form errors", body["details"])
	fields := body["fields"].(map[string]any)
	s.Contains(fields, "title")
	s.Contains(fields, "tags")
}

func (s *ViewServerTestSuite) TestBilling() {
	status, body := s.do(http.MethodGet, "/api/v1/billing/plans", "")
	s.Require().Equal(http.StatusOK, status)
	data := body["data"].(map[string]any)
	s.Equal("IN", data["region"])
	s.Len(data["plans"], 3)

	status, body = s.do(http.MethodGet, "/api/v1/billing/credits", "")
	s.Require().Equal(http.StatusOK, status)
	s.Equal(float64(12), body["data"].(map[string]any)["credits"])

	status, body = s.do(http.MethodPost, "/api/v1/billing/checkout", `{"planId":"yearly"}`)
	s.Require().Equal(http.StatusOK, status)
	s.Equal("https://pay.example.com/s/1", body["data"].(map[string]any)["checkoutUrl"])

	status, _ = s.do(http.MethodPost, "/api/v1/billing/checkout", `{"planId":"lifetime"}`)
	s.Equal(http.StatusBadRequest, status)
}

func (s *ViewServerTestSuite) TestMetricsExposed() {
	s.do(http.MethodGet, "/api/v1/templates", "")

	resp, err := http.Get(s.server.URL + "/metrics")
	s.Require().NoError(err)
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(string(raw), "template_hub_http_requests_total")
}

func TestViewServer(t *testing.T) {
	suite.Run(t, new(ViewServerTestSuite))
}
