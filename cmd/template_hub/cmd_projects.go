package main

import (
	"fmt"

	"template_hub/internal/domain/models"
	projects "template_hub/internal/services/project_service"

	"github.com/spf13/cobra"
)

func newProjectsCmd(s *session) *cobra.Command {
	var filter projects.ProjectFilter

	cmd := &cobra.Command{
		Use:     "projects",
		Short:   "Manage your projects",
		Aliases: []string{"p"},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List a page of your projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			page, err := s.app.Projects.ListProjects(cmd.Context(), filter)
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			printProjects(cmd.OutOrStdout(), page.Projects, page.Pagination)
			return nil
		},
	}
	listCmd.Flags().IntVar(&filter.Page, "page", 0, "page number (default 1)")
	listCmd.Flags().IntVar(&filter.Limit, "limit", 0, "items per page (default 10)")

	publishCmd := func(use string, desired bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <project-id>",
			Short: "Change whether a project is shown in the gallery",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := s.app.Projects.SetPublished(cmd.Context(), args[0], desired); err != nil {
					return report(cmd.ErrOrStderr(), err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green(use+"ed"), args[0])
				return nil
			},
		}
	}

	var form projects.ProjectForm
	var status string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := form
			f.Status = models.ProjectStatus(status)
			project, err := s.app.Projects.CreateProject(cmd.Context(), f)
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", green("created"), project.Title, project.ID)
			return nil
		},
	}
	createCmd.Flags().StringVar(&form.Title, "title", "", "project title")
	createCmd.Flags().StringVar(&form.Description, "description", "", "project description")
	createCmd.Flags().StringSliceVar(&form.Tags, "tag", nil, "project tag, repeatable")
	createCmd.Flags().StringVar(&status, "status", "", "project status")

	deleteCmd := &cobra.Command{
		Use:   "delete <project-id>",
		Short: "Delete a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Projects.DeleteProject(cmd.Context(), args[0]); err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("deleted"), args[0])
			return nil
		},
	}

	cmd.AddCommand(listCmd, publishCmd("publish", true), publishCmd("unpublish", false), createCmd, deleteCmd)

	return cmd
}
