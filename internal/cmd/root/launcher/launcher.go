package launcher

import (
	"fmt"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"github.com/vrcctl/vrcctl/internal/cmd"
	"github.com/vrcctl/vrcctl/internal/cmd/common"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/util/i18n"
	"github.com/vrcctl/vrcctl/internal/util/normalizers"
)

var (
	launcherUse   = "launcher"
	launcherShort = i18n.T("root.launcher.launcherShort",
		"Report whether a launcher process is running")
	launcherLong = normalizers.LongDesc(i18n.T("root.launcher.launcherLong",
		`The launcher command reports whether a launcher process is currently
visible. Only one launcher runs at a time, so a pending launch waits for
the previous one to finish.`))
	launcherExample = normalizers.Examples(i18n.T("root.launcher.launcherExamples",
		fmt.Sprintf(`
		# Check for a running launcher
		%[1]s launcher
		`, meta.CLIName)))
)

// Build a new instance of the launcher command
func NewLauncherCmd() *cobra.Command {
	return &cobra.Command{
		Use:     launcherUse,
		Short:   launcherShort,
		Long:    launcherLong,
		Example: launcherExample,
		Args:    cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			return run(helper)
		},
	}
}

func run(helper cmd.Helper) error {
	client, err := helper.GetAPIClient()
	if err != nil {
		return err
	}

	running, err := client.IsLauncherRunning(helper.GetContext())
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	out := helper.GetStreams().Out

	if outType == common.TEXT {
		if running {
			_, err := fmt.Fprintln(out, "launcher is running")
			return err
		}
		_, err := fmt.Fprintln(out, "launcher is not running")
		return err
	}

	p, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(map[string]bool{"running": running})
	return nil
}
