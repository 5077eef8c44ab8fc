package root

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"github.com/vrcctl/vrcctl/internal/build"
	"github.com/vrcctl/vrcctl/internal/cmd"
	"github.com/vrcctl/vrcctl/internal/cmd/common"
	"github.com/vrcctl/vrcctl/internal/cmd/root/launch"
	"github.com/vrcctl/vrcctl/internal/cmd/root/launcher"
	"github.com/vrcctl/vrcctl/internal/cmd/root/ps"
	"github.com/vrcctl/vrcctl/internal/cmd/root/serve"
	"github.com/vrcctl/vrcctl/internal/cmd/root/status"
	"github.com/vrcctl/vrcctl/internal/cmd/root/stop"
	"github.com/vrcctl/vrcctl/internal/cmd/root/version"
	"github.com/vrcctl/vrcctl/internal/config"
	"github.com/vrcctl/vrcctl/internal/iostreams"
	"github.com/vrcctl/vrcctl/internal/log"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/util"
	"github.com/vrcctl/vrcctl/internal/util/i18n"
	"github.com/vrcctl/vrcctl/internal/util/normalizers"
)

var (
	rootLong = normalizers.LongDesc(i18n.T("root.rootLong", `
  vrcctl manages multiple concurrently running instances of a protected
  multi-instance application, binding numeric profiles to the worker
  processes that represent them.

  Run 'vrcctl serve' once to start the monitor, then drive it with the
  launch, stop, status, ps and launcher commands.`))

	rootShort = i18n.T("root.rootShort", fmt.Sprintf("%s binds instance profiles to processes", meta.CLIName))

	rootCmd *cobra.Command

	// Stores the global runtime value for the configuration file path.
	configFilePath = config.ExpandDefaultConfigFilePath()

	currConfig   config.Hook
	streams      *iostreams.IOStreams
	logger       *slog.Logger
	outputFormat = cmd.NewEnum([]string{"json", "yaml", "text"}, common.DefaultOutputFormat)
	logLevel     = cmd.NewEnum([]string{"trace", "debug", "info", "warn", "error"}, common.DefaultLogLevel)

	buildInfo *build.Info
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   meta.CLIName,
		Short: rootShort,
		Long:  rootLong,
		PersistentPreRun: func(c *cobra.Command, _ []string) {
			ctx := context.WithValue(c.Context(), config.ConfigKey, currConfig)
			ctx = context.WithValue(ctx, iostreams.StreamsKey, streams)
			ctx = context.WithValue(ctx, log.LoggerKey, logger)
			ctx = context.WithValue(ctx, build.InfoKey, buildInfo)
			c.SetContext(ctx)
		},
	}

	// parses all flags not just the target command
	rootCmd.TraverseChildren = true

	rootCmd.PersistentFlags().StringVar(&configFilePath, common.ConfigFilePathFlagName,
		config.ExpandDefaultConfigFilePath(),
		i18n.T("root."+common.ConfigFilePathFlagName, "Path to the configuration file to load."))

	rootCmd.PersistentFlags().VarP(outputFormat, common.OutputFlagName, common.OutputFlagShort,
		fmt.Sprintf(`Configures the output format.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.OutputConfigPath, strings.Join(outputFormat.Allowed, "|")))

	rootCmd.PersistentFlags().Var(logLevel, common.LogLevelFlagName,
		fmt.Sprintf(`Configures the logging level.
- Config path: [ %s ]
- Allowed    : [ %s ]`,
			common.LogLevelConfigPath, strings.Join(logLevel.Allowed, "|")))

	return rootCmd
}

// addCommands adds the root subcommands to the command.
func addCommands() {
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(launch.NewLaunchCmd())
	rootCmd.AddCommand(stop.NewStopCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(ps.NewPsCmd())
	rootCmd.AddCommand(launcher.NewLauncherCmd())
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd = newRootCmd()
	addCommands()
}

func initConfig() {
	cfg, err := config.GetConfig(configFilePath, config.ExpandDefaultConfigFilePath())
	util.CheckError(err)
	currConfig = cfg

	util.CheckError(cfg.BindFlag(common.OutputConfigPath,
		rootCmd.Flags().Lookup(common.OutputFlagName)))
	util.CheckError(cfg.BindFlag(common.LogLevelConfigPath,
		rootCmd.Flags().Lookup(common.LogLevelFlagName)))

	logger = buildLogger(cfg, streams)
}

// buildLogger writes the full record stream to the configured log file as
// JSON, mirroring errors to the console in friendly form. Without a usable
// log file everything goes to the console as text.
func buildLogger(cfg config.Hook, streams *iostreams.IOStreams) *slog.Logger {
	level := log.ConfigLevelStringToSlogLevel(cfg.GetString(config.LogLevelKey))

	if logFile := cfg.GetString(config.LogFileKey); logFile != "" {
		logFile = os.ExpandEnv(logFile)
		if err := util.InitDir(logFile, 0o755); err == nil {
			if f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600); err == nil {
				primary := slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level})
				return slog.New(log.NewDualHandler(primary, log.NewFriendlyErrorHandler(streams.ErrOut)))
			}
		}
	}

	return slog.New(slog.NewTextHandler(streams.ErrOut, &slog.HandlerOptions{Level: level}))
}

func Execute(ctx context.Context, s *iostreams.IOStreams, bi *build.Info) {
	buildInfo = bi
	cobra.EnableTraverseRunHooks = true
	streams = s
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		var executionError *cmd.ExecutionError
		if errors.As(err, &executionError) {
			printer, _ := cli.Format(outputFormat.String(), s.ErrOut)
			printer.Print(err)
			os.Exit(1)
		}
		os.Exit(1)
	}
}
