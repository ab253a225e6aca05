package main

import (
	"fmt"
	"log/slog"

	"template_hub/internal/app"
	"template_hub/internal/config"

	"github.com/spf13/cobra"
)

// session - приложение, поднятое для одного запуска команды
type session struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
	app        *app.App
}

func (s *session) open(cmd *cobra.Command, _ []string) error {
	path := config.ResolvePath(s.configPath)
	if path == "" {
		return fmt.Errorf("config path is empty: pass --config or set CONFIG_PATH")
	}

	cfg, err := config.LoadPath(path)
	if err != nil {
		return err
	}
	s.cfg = cfg
	s.log = setupLogger(cfg.Env)

	a, err := app.New(cmd.Context(), s.log, cfg)
	if err != nil {
		return err
	}
	s.app = a

	s.log.Debug("session started", slog.String("env", cfg.Env), slog.String("api", cfg.API.BaseURL))

	return nil
}

func (s *session) close(_ *cobra.Command, _ []string) error {
	if s.app == nil {
		return nil
	}
	return s.app.Close()
}

func newRootCmd() *cobra.Command {
	s := &session{}

	rootCmd := &cobra.Command{
		Use:   "template_hub",
		Short: "Browse the template gallery, manage projects and billing",
		Long: `template_hub is a client for the template gallery API: it lists published
templates, toggles reactions, publishes projects and starts checkout sessions.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  s.open,
		PersistentPostRunE: s.close,
	}
	rootCmd.PersistentFlags().StringVarP(&s.configPath, "config", "c", "", "path to config file (default $CONFIG_PATH)")

	rootCmd.AddCommand(
		newServeCmd(s),
		newTemplatesCmd(s),
		newProjectsCmd(s),
		newBillingCmd(s),
		newAuthCmd(s),
	)

	return rootCmd
}
