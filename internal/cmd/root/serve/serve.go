package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/vrcctl/vrcctl/internal/cmd"
	"github.com/vrcctl/vrcctl/internal/config"
	"github.com/vrcctl/vrcctl/internal/engine"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/procdir"
	"github.com/vrcctl/vrcctl/internal/server"
	"github.com/vrcctl/vrcctl/internal/util"
	"github.com/vrcctl/vrcctl/internal/util/i18n"
	"github.com/vrcctl/vrcctl/internal/util/normalizers"
	"golang.org/x/sync/errgroup"
)

const (
	AddrFlagName   = "addr"
	AddrConfigPath = config.ServerAddrKey

	shutdownTimeout = 5 * time.Second
)

var (
	serveUse   = "serve"
	serveShort = i18n.T("root.serve.serveShort",
		"Run the process monitor and the local API")
	serveLong = normalizers.LongDesc(i18n.T("root.serve.serveLong",
		`The serve command runs the long-lived monitor that keeps profiles bound
to their worker processes, and exposes the API the other commands talk to.

It keeps running until interrupted.`))
	serveExample = normalizers.Examples(i18n.T("root.serve.serveExamples",
		fmt.Sprintf(`
		# Run with the configured defaults
		%[1]s serve
		# Run listening on a different local port
		%[1]s serve --addr 127.0.0.1:7500
		`, meta.CLIName)))
)

// Build a new instance of the serve command
func NewServeCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     serveUse,
		Short:   serveShort,
		Long:    serveLong,
		Example: serveExample,
		Args:    cobra.NoArgs,
		PreRun: func(c *cobra.Command, args []string) {
			bindFlags(c, args)
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			return run(helper)
		},
	}

	rv.Flags().String(AddrFlagName, config.DefaultServerAddr,
		i18n.T("root.serve."+AddrFlagName,
			fmt.Sprintf("Local address the API listens on.\n (config path = '%s')", AddrConfigPath)))

	return rv
}

func bindFlags(c *cobra.Command, args []string) {
	helper := cmd.BuildHelper(c, args)
	cfg, e := helper.GetConfig()
	util.CheckError(e)
	f := c.Flags().Lookup(AddrFlagName)
	util.CheckError(cfg.BindFlag(AddrConfigPath, f))
}

func run(helper cmd.Helper) error {
	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}
	logger, err := helper.GetLogger()
	if err != nil {
		return err
	}

	launcherPath := cfg.GetString(config.LauncherPathKey)
	if launcherPath == "" {
		launcherPath = config.DefaultLauncherPath
	}

	binder := engine.New(
		procdir.NewOSDirectory(),
		procdir.NewExecSpawner(launcherPath, "--no-vr"),
		logger,
		engine.Config{
			WorkerMarker:        stringOrElse(cfg, config.WorkerMarkerKey, config.DefaultWorkerMarker),
			LauncherMarker:      stringOrElse(cfg, config.LauncherMarkerKey, config.DefaultLauncherMarker),
			ExtraMarkers:        extraMarkers(cfg),
			MissThreshold:       cfg.GetIntOrElse(config.MissThresholdKey, config.DefaultMissThreshold),
			StopConfirmAttempts: cfg.GetIntOrElse(config.StopConfirmAttemptsKey, config.DefaultStopConfirmAttempts),
			StopConfirmInterval: durationOrElse(cfg, config.StopConfirmIntervalKey, config.DefaultStopConfirmInterval),
		})

	monitor := engine.NewMonitor(binder,
		durationOrElse(cfg, config.MonitorIntervalKey, config.DefaultMonitorInterval), logger)

	addr := cfg.GetString(config.ServerAddrKey)
	if addr == "" {
		addr = config.DefaultServerAddr
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.New(binder, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("serve starting", "addr", addr, "launcher", launcherPath)

	group, ctx := errgroup.WithContext(helper.GetContext())
	group.Go(func() error {
		monitor.Run(ctx)
		return nil
	})
	group.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	logger.Info("serve stopped")
	return nil
}

func stringOrElse(cfg config.Hook, key, orElse string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return orElse
}

func durationOrElse(cfg config.Hook, key string, orElse time.Duration) time.Duration {
	if v := cfg.GetDuration(key); v > 0 {
		return v
	}
	return orElse
}

func extraMarkers(cfg config.Hook) []string {
	if v := cfg.GetStringSlice(config.ExtraMarkersKey); len(v) > 0 {
		return v
	}
	return config.DefaultExtraMarkers
}
