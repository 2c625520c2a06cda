package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flexlogin/flexlogin/plugin/internal/config"
	"github.com/flexlogin/flexlogin/plugin/internal/logging"
)

// errCheckFailed is returned when Load reported at least one failed stage.
// The failures themselves are already in the log.
var errCheckFailed = errors.New("configuration has errors, see log")

type rootOptions struct {
	dir string
	log logging.Settings

	logger *slog.Logger
	closer io.Closer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "flexlogin-config",
		Short: "Manage the flexlogin configuration directory",
		Long: `flexlogin-config materializes config.conf and locale.conf the same way the
plugin does on startup: missing files are created, legacy values are migrated
and missing keys are written back with their defaults.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, closer, err := logging.New(opts.log, stderr)
			if err != nil {
				return err
			}
			opts.logger, opts.closer = logger, closer
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.closer != nil {
				return opts.closer.Close()
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.PersistentFlags()
	f.StringVar(&opts.dir, "dir", "config/flexiblelogin", "configuration directory")
	f.StringVar(&opts.log.Level, "log-level", logging.LevelInfo, "log level: debug|info|warn|error")
	f.StringVar(&opts.log.Format, "log-format", logging.FormatJSON, "log format: json|text")
	f.StringVar(&opts.log.File, "log-file", "", "write logs to this file instead of stderr")
	f.IntVar(&opts.log.MaxSize, "log-max-size", 10, "megabytes before the log file is rotated")
	f.IntVar(&opts.log.MaxBackups, "log-max-backups", 3, "rotated log files to keep")
	f.IntVar(&opts.log.MaxAge, "log-max-age", 28, "days to keep rotated log files")

	root.AddCommand(
		newCheckCmd(opts, "init", "Create the configuration files with their defaults"),
		newCheckCmd(opts, "check", "Load the configuration and report failures"),
		newShowCmd(opts),
		newWatchCmd(opts),
	)
	return root
}

func newCheckCmd(opts *rootOptions, use, short string) *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loader := config.New(opts.logger, opts.dir)
			loadErr := loader.Load()

			g := loader.General()
			opts.logger.Info("config loaded",
				"dir", loader.Dir(),
				"hash_algo", g.HashAlgo,
				"sql_type", g.SQL.Type,
				"timeout_login", g.TimeoutLogin.String(),
				"ok", loadErr == nil,
			)

			if withMetrics {
				families, err := loader.Gatherer().Gather()
				if err != nil {
					return fmt.Errorf("gather metrics: %w", err)
				}
				if err := writeMetrics(cmd.OutOrStdout(), families); err != nil {
					return err
				}
			}
			if loadErr != nil {
				return errCheckFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print loader metrics in Prometheus text format")
	return cmd
}

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "show general|text",
		Short:     "Print the bound settings as YAML",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"general", "text"},
		RunE: func(cmd *cobra.Command, args []string) error {
			loader := config.New(opts.logger, opts.dir)
			loadErr := loader.Load()

			var v interface{}
			if args[0] == "general" {
				v = loader.General()
			} else {
				v = loader.Text()
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(v); err != nil {
				return fmt.Errorf("encode %s settings: %w", args[0], err)
			}
			if err := enc.Close(); err != nil {
				return err
			}
			if loadErr != nil {
				return errCheckFailed
			}
			return nil
		},
	}
}

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Load the configuration and reload it on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return watch(ctx, opts)
		},
	}
}

func watch(ctx context.Context, opts *rootOptions) error {
	loader := config.New(opts.logger, opts.dir)
	if err := loader.Load(); err != nil {
		opts.logger.Warn("initial load incomplete, watching anyway")
	}
	err := loader.Watch(ctx, func(g config.General, _ config.Text) {
		opts.logger.Info("config hot-reloaded",
			"hash_algo", g.HashAlgo,
			"max_attempts", g.MaxAttempts,
		)
	})
	opts.logger.Info("flexlogin-config watch stopped")
	return err
}

// writeMetrics renders families in the Prometheus text format.
func writeMetrics(w io.Writer, families []*dto.MetricFamily) error {
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}
