package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/config"
	"github.com/dmitrijs2005/dmara/internal/filex"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

// NewRootCommand builds the dmara command tree. Without a subcommand the
// interactive shell is started.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var (
		app     *App
		logFile *os.File
	)

	run := func(fn func(ctx context.Context, a *App, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			if err := fn(cmd.Context(), app, args); err != nil {
				return errors.New(client.Reason(err))
			}
			return nil
		}
	}

	root := &cobra.Command{
		Use:           "dmara",
		Short:         "Terminal client for the D_MARA hobby journal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}

			w := errOut
			if cfg.Log.File != "" {
				if _, err := filex.EnsureDirFor(cfg.Log.File); err != nil {
					return err
				}
				logFile, err = os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				w = logFile
			}
			logger, err := logging.New(cfg.Log.Backend, w, cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			app, err = NewApp(cmd.Context(), cfg, logger, in, out)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			var err error
			if app != nil {
				err = app.Close()
			}
			if logFile != nil {
				_ = logFile.Close()
			}
			return err
		},
		RunE: run(func(ctx context.Context, a *App, _ []string) error {
			a.Root(ctx)
			return nil
		}),
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	root.CompletionOptions.DisableDefaultCmd = true
	config.BindFlags(root.PersistentFlags())

	var withToken bool
	login := &cobra.Command{
		Use:   "login",
		Short: "Sign in with Google, or with an API key",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, a *App, _ []string) error {
			var args []string
			if withToken {
				args = []string{"token"}
			}
			return a.Login(ctx, args)
		}),
	}
	login.Flags().BoolVar(&withToken, "token", false, "sign in with an existing API key")

	root.AddCommand(
		&cobra.Command{
			Use:   "shell",
			Short: "Start the interactive shell",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, a *App, _ []string) error {
				a.Root(ctx)
				return nil
			}),
		},
		login,
		&cobra.Command{
			Use:   "logout",
			Short: "Forget the stored API key",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, a *App, _ []string) error {
				return a.Logout(ctx)
			}),
		},
		&cobra.Command{
			Use:   "whoami",
			Short: "Show the signed-in account",
			Args:  cobra.NoArgs,
			RunE: run(func(ctx context.Context, a *App, _ []string) error {
				return a.WhoAmI(ctx)
			}),
		},
		&cobra.Command{
			Use:   "theme [#RRGGBB]",
			Short: "Show or set the theme colour",
			Args:  cobra.MaximumNArgs(1),
			RunE: run(func(ctx context.Context, a *App, args []string) error {
				return a.Theme(ctx, args)
			}),
		},
	)
	return root
}
