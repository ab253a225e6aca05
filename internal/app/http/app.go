package httpapp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"template_hub/internal/lib/validate"
	"template_hub/internal/middleware"
	httprouters "template_hub/internal/transport/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return validate.Struct(cv.validator, i, "invalid request")
}

type Server struct {
	log     *slog.Logger
	e       *echo.Echo
	routers *httprouters.Routers
	host    string
	port    string
}

func New(log *slog.Logger, host, port string, routers *httprouters.Routers) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Validator = &CustomValidator{validator: validate.New()}

	e.Use(echomw.CORS())
	e.Use(echomw.Recover())
	e.Use(middleware.PrometheusMetrics)

	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogMethod:   true,
		LogLatency:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("URI", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote ip", v.RemoteIP),
			)

			return nil
		},
	}))

	return &Server{
		log:     log,
		e:       e,
		routers: routers,
		host:    host,
		port:    port,
	}
}

func (s *Server) MustRun() {
	const op = "http.Server.MustRun"

	s.log.Info(op, slog.String("Start", "server"), slog.String("addr", s.addr()))

	if err := s.Start(); err != nil {
		panic(err)
	}
}

func (s *Server) Start() error {
	const op = "http.Server.Start"

	if err := s.e.Start(s.addr()); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("%s server stopped: %w", op, err)
	}

	return nil
}

func (s *Server) Stop() error {
	const op = "http.Server.Stop"

	optCtx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	s.log.Info("stopping", slog.String("op", op))

	if err := s.e.Shutdown(optCtx); err != nil {
		return fmt.Errorf("%s could not shutdown server gracefuly: %w", op, err)
	}

	return nil
}

// Handler нужен для httptest
func (s *Server) Handler() http.Handler {
	return s.e
}

func (s *Server) addr() string {
	return net.JoinHostPort(s.host, s.port)
}

func (s *Server) BuildRouters() {
	s.e.GET("/metrics", echoprometheus.NewHandler())

	api := s.e.Group("/api/v1")
	{
		tpl := api.Group("/templates")
		{
			tpl.GET("", s.routers.ListTemplates)
			tpl.GET("/:id", s.routers.GetTemplate)
			tpl.POST("/fetch", s.routers.FetchTemplates)
			tpl.POST("/page", s.routers.ChangePage)
			tpl.POST("/:id/like", s.routers.LikeTemplate)
			tpl.POST("/:id/dislike", s.routers.DislikeTemplate)
		}

		projects := api.Group("/projects")
		{
			projects.GET("", s.routers.ListProjects)
			projects.POST("", s.routers.CreateProject)
			projects.POST("/fetch", s.routers.FetchProjects)
			projects.PUT("/:id", s.routers.UpdateProject)
			projects.DELETE("/:id", s.routers.DeleteProject)
			projects.POST("/:id/publish", s.routers.PublishProject)
			projects.POST("/:id/unpublish", s.routers.UnpublishProject)
		}

		billing := api.Group("/billing")
		{
			billing.GET("/plans", s.routers.ListPlans)
			billing.GET("/credits", s.routers.Credits)
			billing.POST("/checkout", s.routers.Checkout)
		}
	}
}
