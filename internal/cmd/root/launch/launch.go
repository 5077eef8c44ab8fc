package launch

import (
	"errors"
	"fmt"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"github.com/vrcctl/vrcctl/internal/cmd"
	"github.com/vrcctl/vrcctl/internal/cmd/common"
	"github.com/vrcctl/vrcctl/internal/engine"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/util/i18n"
	"github.com/vrcctl/vrcctl/internal/util/normalizers"
)

var (
	launchUse   = "launch <profile>"
	launchShort = i18n.T("root.launch.launchShort",
		"Launch an instance for a profile")
	launchLong = normalizers.LongDesc(i18n.T("root.launch.launchLong",
		`The launch command starts the launcher for the given profile and queues
the profile for binding. The profile is bound once the monitor observes the
worker process the launcher spawns.`))
	launchExample = normalizers.Examples(i18n.T("root.launch.launchExamples",
		fmt.Sprintf(`
		# Launch an instance for profile 3
		%[1]s launch 3
		`, meta.CLIName)))
)

// Build a new instance of the launch command
func NewLaunchCmd() *cobra.Command {
	return &cobra.Command{
		Use:     launchUse,
		Short:   launchShort,
		Long:    launchLong,
		Example: launchExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			return run(helper)
		},
	}
}

func run(helper cmd.Helper) error {
	profile, err := cmd.ParseProfileArg(helper.GetArgs()[0])
	if err != nil {
		return err
	}

	client, err := helper.GetAPIClient()
	if err != nil {
		return err
	}

	result, err := client.Launch(helper.GetContext(), profile)
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	if err := printResult(helper, result); err != nil {
		return err
	}

	if !result.Success {
		return cmd.PrepareExecutionError(result.Message, errors.New(result.Message), helper.GetCmd())
	}
	return nil
}

func printResult(helper cmd.Helper, result engine.LaunchResult) error {
	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	out := helper.GetStreams().Out

	if outType == common.TEXT {
		_, err := fmt.Fprintln(out, result.Message)
		return err
	}

	p, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(result)
	return nil
}
