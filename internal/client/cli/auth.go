package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/docverify/internal/api"
	"github.com/dmitrijs2005/docverify/internal/client/client"
	"github.com/dmitrijs2005/docverify/internal/common"
	"github.com/spf13/cobra"
)

func (r *runner) pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			if err := app.auth.Ping(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server %s is up\n", app.config.ServerEndpointAddr)
			return nil
		}),
	}
}

func (r *runner) registerCmd() *cobra.Command {
	var req api.RegisterRequest

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a new account",
		Long:  "Create a new account. Missing fields are prompted for. The password is read twice without echo.",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
			out := cmd.OutOrStdout()

			fields := []struct {
				value *string
				label string
			}{
				{&req.Username, "Username"},
				{&req.FullName, "Full name"},
				{&req.Email, "Email"},
			}
			for _, f := range fields {
				if *f.value != "" {
					continue
				}
				v, err := app.prompt(f.label, out)
				if err != nil {
					return err
				}
				*f.value = v
			}

			pw, err := GetNewPassword(out)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			req.Password = string(pw)

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			resp, err := app.auth.Register(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Registered %s (user id %d)\n", resp.Username, resp.UserID)
			return nil
		}),
	}

	cmd.Flags().StringVarP(&req.Username, "username", "u", "", "account name")
	cmd.Flags().StringVar(&req.FullName, "name", "", "full name shown on signatures")
	cmd.Flags().StringVar(&req.Email, "email", "", "contact email")
	return cmd
}

func (r *runner) loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login [username]",
		Short: "Log in and save the session locally",
		Args:  cobra.MaximumNArgs(1),
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
			out := cmd.OutOrStdout()

			var username string
			if len(args) == 1 {
				username = args[0]
			} else {
				v, err := app.prompt("Username", out)
				if err != nil {
					return err
				}
				username = v
			}

			pw, err := GetPassword(out, "Password")
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)

			ctx, cancel := app.requestContext(ctx)
			defer cancel()

			if err := app.auth.Login(ctx, username, pw); err != nil {
				return err
			}
			fmt.Fprintf(out, "Logged in as %s\n", username)
			return nil
		}),
	}
}

func (r *runner) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
			if err := app.auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		}),
	}
}

func (r *runner) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the user of the saved session",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, cmd *cobra.Command, app *App, _ []string) error {
			username, err := app.auth.RestoreSession(ctx)
			if errors.Is(err, client.ErrNotLoggedIn) {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", username)
			return nil
		}),
	}
}
