package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"template_hub/internal/lib/logger/sl"
	projects "template_hub/internal/services/project_service"
	templates "template_hub/internal/services/template_service"

	"github.com/spf13/cobra"
)

func newServeCmd(s *session) *cobra.Command {
	var prefetch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the view server on top of the session repository",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := s.log.With(slog.String("op", "cmd.serve"))
			a := s.app

			if prefetch {
				if _, err := a.Templates.ListTemplates(cmd.Context(), templates.TemplateFilter{}); err != nil {
					log.Warn("template prefetch failed", sl.Err(err))
				}
				if _, err := a.Projects.ListProjects(cmd.Context(), projects.ProjectFilter{}); err != nil {
					log.Warn("project prefetch failed", sl.Err(err))
				}
			}

			a.HTTPServer.BuildRouters()
			go a.HTTPServer.MustRun()

			// Graceful shutdown
			stop := make(chan os.Signal, 1)
			signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

			<-stop
			if err := a.HTTPServer.Stop(); err != nil {
				log.Error("failed to stop http server", sl.Err(err))
			}

			log.Info("Gracefully stopped")
			return nil
		},
	}
	cmd.Flags().BoolVar(&prefetch, "prefetch", true, "load the first page of templates and projects before serving")

	return cmd
}
