package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nnnkkk7/sqlpager/pkg/config"
	"github.com/nnnkkk7/sqlpager/pkg/logging"
	"github.com/nnnkkk7/sqlpager/server"
	"github.com/nnnkkk7/sqlpager/server/handlers"
	"github.com/nnnkkk7/sqlpager/server/types"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	envFiles []string
	dialect  string
	dsn      string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cobra.EnableCommandSorting = false
	rootCmd := &cobra.Command{
		Use:           "sqlpager",
		Short:         "Run ad-hoc SQL against named databases, one page at a time",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringSliceVar(&opts.envFiles,
		"env-file", nil, "env files to load before reading the environment (default .env)")
	rootCmd.PersistentFlags().StringVar(&opts.dialect,
		"dialect", "", "override SQLPAGER_DIALECT")
	rootCmd.PersistentFlags().StringVar(&opts.dsn,
		"dsn", "", "override SQLPAGER_DSN")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel,
		"log-level", "", "override LOG_LEVEL")

	rootCmd.AddCommand(queryCmd(opts))
	rootCmd.AddCommand(previewCmd(opts))
	rootCmd.AddCommand(serveCmd(opts))
	return rootCmd
}

// setup loads configuration, applies flag overrides and builds the app.
// CLI logs go to stderr so stdout stays machine readable.
func setup(ctx context.Context, opts *rootOptions, logOut io.Writer) (*server.App, error) {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return nil, err
	}
	if opts.dialect != "" {
		cfg.Dialect = opts.dialect
	}
	if opts.dsn != "" {
		cfg.DSN = opts.dsn
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.NewWithWriter(logOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	return server.NewApp(ctx, cfg, logger)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func queryCmd(opts *rootOptions) *cobra.Command {
	var (
		database string
		page     int
		perPage  int
	)

	c := &cobra.Command{
		Use:   "query [flags] SQL",
		Short: "Execute a statement and print one page of results as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := setup(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			if perPage == 0 {
				perPage = app.Config.DefaultPerPage
			}

			start := time.Now()
			result, err := app.Executor.ExecutePaginated(ctx, args[0], database, page, perPage)
			if err != nil {
				return err
			}
			if err := printJSON(cmd.OutOrStdout(), handlers.ToQueryResponse(result, time.Since(start))); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("statement failed: %s", result.ErrorMessage)
			}
			return nil
		},
	}

	c.Flags().StringVar(&database, "db", "", "target database name")
	c.Flags().IntVar(&page, "page", config.DefaultPage, "page number, starting at 1")
	c.Flags().IntVar(&perPage, "per-page", 0, "rows per page (default SQLPAGER_DEFAULT_PER_PAGE)")
	_ = c.MarkFlagRequired("db")
	return c
}

func previewCmd(opts *rootOptions) *cobra.Command {
	var (
		database string
		column   string
	)

	c := &cobra.Command{
		Use:   "preview [flags] TABLE VALUE",
		Short: "Print the display columns of the record whose column equals VALUE",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := setup(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			preview, err := app.Previewer.Preview(ctx, database, args[0], column, args[1])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), types.PreviewResponse{
				Success:        true,
				Table:          preview.Table,
				Data:           preview.Data,
				DisplayColumns: preview.DisplayColumns,
			})
		},
	}

	c.Flags().StringVar(&database, "db", "", "target database name")
	c.Flags().StringVar(&column, "column", config.ReferencedColumn, "column to match VALUE against")
	_ = c.MarkFlagRequired("db")
	return c
}

func serveCmd(opts *rootOptions) *cobra.Command {
	var port string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := setup(ctx, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() {
				if err := app.Close(); err != nil {
					app.Log.Warn("failed to close history store", zap.Error(err))
				}
			}()

			if port != "" {
				app.Config.Port = port
			}
			return app.Serve(ctx)
		},
	}

	c.Flags().StringVar(&port, "port", "", "override PORT")
	return c
}
