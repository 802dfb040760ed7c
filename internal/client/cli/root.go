package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/docverify/internal/client/config"
	"github.com/spf13/cobra"
)

// connectFunc builds the App a command runs against.
type connectFunc func(ctx context.Context, cfg *config.Config) (*App, error)

// runner carries the state shared by every subcommand of one root command.
type runner struct {
	cfg         *config.Config
	connect     connectFunc
	timeoutSecs int
}

// appRunE is a command body that needs a connected App.
type appRunE func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error

// NewRootCommand builds the docverify command tree. Flags overwrite the
// matching cfg fields; connect is called once per invoked command.
func NewRootCommand(cfg *config.Config, connect connectFunc) *cobra.Command {
	r := &runner{
		cfg:         cfg,
		connect:     connect,
		timeoutSecs: int(cfg.RequestTimeout / time.Second),
	}

	root := &cobra.Command{
		Use:   "docverify",
		Short: "DocVerify - sign documents and verify their codes",
		Long: `docverify talks to a DocVerify server over gRPC.

Register and log in once; the session is kept in a local SQLite file so
later commands can create, finalize, sign and stamp documents. Anyone can
check a verification code with "docverify lookup".`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&cfg.ServerEndpointAddr, "server", "a", cfg.ServerEndpointAddr, "address:port of the gRPC endpoint")
	pf.StringVarP(&cfg.SessionDBPath, "session-db", "f", cfg.SessionDBPath, "path of the local session database")
	pf.IntVarP(&r.timeoutSecs, "timeout", "i", r.timeoutSecs, "request timeout (seconds)")
	// Read by config.LoadConfig before cobra runs; declared so cobra accepts it.
	pf.StringP("config", "c", "", "path to config file (.json, .yaml)")

	root.AddCommand(
		r.pingCmd(),
		r.registerCmd(),
		r.loginCmd(),
		r.logoutCmd(),
		r.whoamiCmd(),
		r.createCmd(),
		r.finalizeCmd(),
		r.signCmd(),
		r.stampCmd(),
		r.signaturesCmd(),
		r.lookupCmd(),
	)

	return root
}

// Execute runs the command line in os.Args against cfg.
func Execute(ctx context.Context, cfg *config.Config) error {
	if err := NewRootCommand(cfg, NewApp).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// run wraps fn so it gets a fresh App that is closed when fn returns.
func (r *runner) run(fn appRunE) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		r.cfg.RequestTimeout = time.Duration(r.timeoutSecs) * time.Second

		ctx := cmd.Context()
		app, err := r.connect(ctx, r.cfg)
		if err != nil {
			return err
		}
		defer func() { _ = app.Close(ctx) }()

		return fn(ctx, cmd, app, args)
	}
}

// authed is run for commands that act on behalf of the logged-in user.
func (r *runner) authed(fn appRunE) func(*cobra.Command, []string) error {
	return r.run(func(ctx context.Context, cmd *cobra.Command, app *App, args []string) error {
		if _, err := app.restoreSession(ctx); err != nil {
			return err
		}
		return fn(ctx, cmd, app, args)
	})
}

func parseDocumentID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid document id %q", s)
	}
	return id, nil
}
