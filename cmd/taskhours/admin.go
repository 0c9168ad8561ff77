package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ganot/taskhours/internal/domain/report"
	"github.com/ganot/taskhours/internal/domain/user"
	"github.com/spf13/cobra"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp()
			if err != nil {
				return err
			}
			defer a.DB.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date in %s\n", c.cfg.DB.Path)
			return nil
		},
	}
}

func newUserCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var req user.SignupRequest
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an account",
		Long: `Create an account without going through the signup endpoint.

Examples:
  taskhours user create --email ada@example.com --name Ada --password s3cret --role admin
  taskhours user create --tenant acme --email bob@acme.io --name Bob --password hunter22`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp()
			if err != nil {
				return err
			}
			defer a.DB.Close()

			u, err := a.Users.CreateAccount(c.context(cmd), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), u)
		},
	}
	create.Flags().StringVar(&req.TenantID, "tenant", user.DefaultTenant, "tenant slug")
	create.Flags().StringVar(&req.Name, "name", "", "display name")
	create.Flags().StringVar(&req.Email, "email", "", "login email")
	create.Flags().StringVar(&req.Password, "password", "", "login password")
	create.Flags().StringVar(&req.Role, "role", string(user.RoleMember), "admin or member")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}

func newAPIKeyCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apikey",
		Short: "Manage bearer API keys",
	}

	var tenantID, email, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Issue an API key for an account and print it once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp()
			if err != nil {
				return err
			}
			defer a.DB.Close()

			ctx := c.context(cmd)
			u, err := a.Users.GetByEmail(ctx, tenantID, email)
			if err != nil {
				return err
			}
			key, err := a.Users.IssueAPIKey(ctx, u.TenantID, u.ID, description)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
	create.Flags().StringVar(&tenantID, "tenant", user.DefaultTenant, "tenant slug")
	create.Flags().StringVar(&email, "email", "", "account email")
	create.Flags().StringVar(&description, "description", "", "what the key is for")
	_ = create.MarkFlagRequired("email")

	cmd.AddCommand(create)
	return cmd
}

func newReportCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print dashboard reports",
	}

	var tenantID, email, timeframe string
	team := &cobra.Command{
		Use:   "team",
		Short: "Print team productivity as JSON, acting as an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tf, err := report.ParseTimeframe(timeframe)
			if err != nil {
				return err
			}
			a, err := c.openApp()
			if err != nil {
				return err
			}
			defer a.DB.Close()

			ctx := c.context(cmd)
			u, err := a.Users.GetByEmail(ctx, tenantID, email)
			if err != nil {
				return err
			}
			out, err := a.Reports.TeamProductivity(ctx, u.Principal(), tf)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	team.Flags().StringVar(&tenantID, "tenant", user.DefaultTenant, "tenant slug")
	team.Flags().StringVar(&email, "as", "", "email of the admin running the report")
	team.Flags().StringVar(&timeframe, "timeframe", string(report.TimeframeWeek), "day, week or month")
	_ = team.MarkFlagRequired("as")

	cmd.AddCommand(team)
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
