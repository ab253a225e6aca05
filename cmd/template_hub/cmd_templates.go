package main

import (
	"fmt"
	"strconv"

	"template_hub/internal/domain/models"
	templates "template_hub/internal/services/template_service"

	"github.com/spf13/cobra"
)

func newTemplatesCmd(s *session) *cobra.Command {
	var filter templates.TemplateFilter
	var status string

	cmd := &cobra.Command{
		Use:     "templates",
		Short:   "Browse the public template gallery",
		Aliases: []string{"t"},
	}
	flags := cmd.PersistentFlags()
	flags.IntVar(&filter.Page, "page", 0, "page number (default 1)")
	flags.IntVar(&filter.Limit, "limit", 0, "items per page (default from config)")
	flags.StringVar(&filter.ProjectTitle, "title", "", "filter by project title")
	flags.StringSliceVar(&filter.Tags, "tag", nil, "filter by tag, repeatable")
	flags.StringVar(&status, "status", "", "filter by project status (draft, in-progress, completed)")

	load := func(cmd *cobra.Command) error {
		f := filter
		f.Status = models.ProjectStatus(status)
		if _, err := s.app.Templates.ListTemplates(cmd.Context(), f); err != nil {
			return report(cmd.ErrOrStderr(), err)
		}
		return nil
	}

	show := func(cmd *cobra.Command) {
		printTemplates(cmd.OutOrStdout(), s.app.Store.Templates(), s.app.Store.TemplatePagination(), s.app.Actor.ID)
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(cmd); err != nil {
				return err
			}
			show(cmd)
			return nil
		},
	}

	pageCmd := &cobra.Command{
		Use:   "page <step>",
		Short: "Load the page, then move by step (+1 or -1)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			step, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("step must be an integer: %w", err)
			}
			if err := load(cmd); err != nil {
				return err
			}
			if _, err := s.app.Templates.ChangePage(cmd.Context(), step); err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			show(cmd)
			return nil
		},
	}

	reactCmd := func(kind models.ReactionKind) *cobra.Command {
		return &cobra.Command{
			Use:   string(kind) + " <template-id>",
			Short: "Toggle " + string(kind) + " on a template",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := load(cmd); err != nil {
					return err
				}
				id := args[0]
				if err := s.app.Reactions.ToggleReaction(cmd.Context(), id, s.app.Actor, kind); err != nil {
					return report(cmd.ErrOrStderr(), err)
				}

				tpl, ok := s.app.Store.Template(id)
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), green(string(kind)+" toggled"))
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %d likes, %d dislikes %s\n",
					green(string(kind)+" toggled"), tpl.ID, tpl.LikeCount, tpl.DislikeCount, reactionMark(tpl, s.app.Actor.ID))
				return nil
			},
		}
	}

	cmd.AddCommand(listCmd, pageCmd, reactCmd(models.ReactionLike), reactCmd(models.ReactionDislike))

	return cmd
}
