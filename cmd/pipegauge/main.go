package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dicklesworthstone/pipegauge/internal/config"
	"github.com/Dicklesworthstone/pipegauge/internal/gauge"
	"github.com/Dicklesworthstone/pipegauge/internal/logging"
	"github.com/Dicklesworthstone/pipegauge/internal/model"
	"github.com/Dicklesworthstone/pipegauge/internal/router"
	"github.com/Dicklesworthstone/pipegauge/internal/sampler"
	"github.com/Dicklesworthstone/pipegauge/internal/server"
	"github.com/Dicklesworthstone/pipegauge/internal/toast"
	"github.com/Dicklesworthstone/pipegauge/internal/ui"
	"github.com/Dicklesworthstone/pipegauge/internal/widget"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is everything one mounted tile needs.
type app struct {
	cfg    config.Config
	log    *zap.SugaredLogger
	gen    *sampler.Generator
	router *router.Router
	widget *widget.Widget
	host   func() model.Host
}

func newApp(cmd *cobra.Command, quiet bool) (*app, error) {
	cfg, err := config.Resolve(cmd.Flags())
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile, quiet)
	if err != nil {
		return nil, err
	}
	rt := router.New(log.Named("router"), router.DefaultLeads()...)
	gen := sampler.New(cfg.Interval, model.Seed(), sampler.NewSource(cfg.Seed), log.Named("generator"))
	w := widget.New(gen, toast.New(cfg.LeadID, cfg.Company), rt, log.Named("widget"))
	return &app{cfg: cfg, log: log, gen: gen, router: rt, widget: w, host: sampler.HostInfo}, nil
}

func newRootCmd() *cobra.Command {
	tui := newTUICmd()
	root := &cobra.Command{
		Use:           "pipegauge",
		Short:         "Simulated pipeline pressure dashboard tile",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          tui.RunE,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(tui)
	root.AddCommand(newServeCmd())
	root.AddCommand(newJSONCmd())
	return root
}

func newTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the terminal tile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return ui.RunTUI(ctx, a.widget, a.router)
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tile frame and toast actions over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.widget.Mount(ctx)
			defer a.widget.Unmount()
			return server.New(a.cfg.Listen, a.widget, a.router, a.log.Named("http")).Run(ctx)
		},
	}
}

func newJSONCmd() *cobra.Command {
	var stream bool
	cmd := &cobra.Command{
		Use:   "json",
		Short: "Print the current frame as JSON, or stream NDJSON per tick",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer func() { _ = a.log.Sync() }()
			if !stream {
				return writeOneShot(cmd.OutOrStdout(), a)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return streamFrames(ctx, cmd.OutOrStdout(), a)
		},
	}
	cmd.Flags().BoolVar(&stream, "stream", false, "stream NDJSON until interrupted")
	return cmd
}

// writeOneShot prints the unmounted tile's frame. The widget only reads the
// host on Mount, so it is filled in here.
func writeOneShot(out io.Writer, a *app) error {
	f := a.widget.Frame()
	f.Host = a.host()
	return writeFrame(out, f)
}

func streamFrames(ctx context.Context, out io.Writer, a *app) error {
	host := a.host()
	for st := range a.gen.Stream(ctx) {
		f := a.widget.Frame()
		f.State = st
		f.Gauge = gauge.Project(st.Pressure)
		f.Host = host
		if err := writeFrame(out, f); err != nil {
			return err
		}
	}
	return nil
}

func writeFrame(out io.Writer, f model.Frame) error {
	return json.NewEncoder(out).Encode(f)
}
