package main

import (
	"fmt"
	"strconv"

	"template_hub/internal/domain/models"

	"github.com/spf13/cobra"
)

func newBillingCmd(s *session) *cobra.Command {
	var region string

	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Plans, credits and checkout",
	}
	cmd.PersistentFlags().StringVar(&region, "region", "", "billing region US, IN or GB (default: detected)")

	plansCmd := &cobra.Command{
		Use:   "plans",
		Short: "Show subscription plans priced for your region",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := models.Region(region)
			if r == "" {
				r = s.app.Billing.Region()
			}
			fmt.Fprintln(cmd.OutOrStdout(), faint("region: "+string(r)))
			printQuotes(cmd.OutOrStdout(), s.app.Billing.Quotes(r))
			return nil
		},
	}

	creditsCmd := &cobra.Command{
		Use:   "credits",
		Short: "Show remaining credits",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			credits, err := s.app.Billing.Credits(cmd.Context())
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", bold("credits:"), strconv.FormatFloat(credits, 'f', -1, 64))
			return nil
		},
	}

	checkoutCmd := &cobra.Command{
		Use:   "checkout <plan-id>",
		Short: "Start a checkout session for a plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := s.app.Billing.CreateCheckoutSession(cmd.Context(), args[0], models.Region(region))
			if err != nil {
				return report(cmd.ErrOrStderr(), err)
			}
			if session.CheckoutURL != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("open to pay:"), session.CheckoutURL)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("client secret:"), session.ClientSecret)
			}
			return nil
		},
	}

	cmd.AddCommand(plansCmd, creditsCmd, checkoutCmd)

	return cmd
}
