package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newAuthCmd(s *session) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored access token",
		Long: `Access tokens are issued by the external sign-in flow. With redis configured
the token survives between runs, otherwise only auth.access_token from the config is used.`,
	}

	loginCmd := &cobra.Command{
		Use:   "login <token>",
		Short: "Store an access token for the configured user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.app.Tokens.Store(cmd.Context(), s.cfg.User.ID, args[0])
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("token stored"), faint(expiry(st.ExpiresAt)))
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether an access token is stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := s.app.Tokens.Status(cmd.Context(), s.cfg.User.ID)
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			if !st.Present {
				fmt.Fprintln(cmd.OutOrStdout(), red("not signed in"))
				return nil
			}
			who := st.Subject
			if who == "" {
				who = st.UserID
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", green("signed in as"), who, faint(expiry(st.ExpiresAt)))
			return nil
		},
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := s.app.Tokens.Clear(cmd.Context(), s.cfg.User.ID); err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "signed out")
			return nil
		},
	}

	cmd.AddCommand(loginCmd, statusCmd, logoutCmd)

	return cmd
}

func expiry(t time.Time) string {
	if t.IsZero() {
		return "(no expiry)"
	}
	return "(expires " + t.Local().Format(time.RFC822) + ")"
}
