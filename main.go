package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"corkboard/internal/app"
	"corkboard/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	load := func() (*config.Config, error) { return config.Load(configPath) }

	root := &cobra.Command{
		Use:           "corkboard",
		Short:         "A detective's corkboard in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return app.RunTUI(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "mcp",
			Short: "Serve the board to AI agents over MCP on stdin/stdout",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return app.ServeMCP(cmd.Context(), cfg)
			},
		},
		newServeCmd(load),
		newExportCmd(load),
		newSnapshotCmd(load),
	)
	return root
}

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and metrics over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}
			return app.ServeHTTP(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}

func newExportCmd(load func() (*config.Config, error)) *cobra.Command {
	var padding float64
	cmd := &cobra.Command{
		Use:   "export <file.svg|file.png>",
		Short: "Render the board to an SVG or PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := app.FormatForPath(args[0])
			if err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			if err := app.Export(cmd.Context(), cfg, f, format, padding); err != nil {
				f.Close()
				os.Remove(args[0])
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", args[0])
			return nil
		},
	}
	cmd.Flags().Float64Var(&padding, "padding", 40, "margin around the items, in board pixels")
	return cmd
}

func newSnapshotCmd(load func() (*config.Config, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "List, save and restore board snapshots",
	}

	var label string
	save := &cobra.Command{
		Use:   "save",
		Short: "Snapshot the board now",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return app.SaveSnapshot(cmd.Context(), cfg, label, cmd.OutOrStdout())
		},
	}
	save.Flags().StringVarP(&label, "label", "l", "manual", "snapshot label")

	var yes bool
	restore := &cobra.Command{
		Use:   "restore <id>",
		Short: "Replace the board with a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return app.RestoreSnapshot(cmd.Context(), cfg, args[0], yes, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	restore.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List retained snapshots, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := load()
				if err != nil {
					return err
				}
				return app.ListSnapshots(cmd.Context(), cfg, cmd.OutOrStdout())
			},
		},
		save,
		restore,
	)
	return cmd
}
