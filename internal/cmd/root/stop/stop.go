package stop

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
	stopUse   = "stop <profile>"
	stopShort = i18n.T("root.stop.stopShort",
		"Stop the instance bound to a profile")
	stopLong = normalizers.LongDesc(i18n.T("root.stop.stopLong",
		`The stop command terminates the worker process bound to the given
profile and waits briefly for the process to exit. A profile that is only
queued and not yet bound is removed from the queue.`))
	stopExample = normalizers.Examples(i18n.T("root.stop.stopExamples",
		fmt.Sprintf(`
		# Stop the instance bound to profile 3
		%[1]s stop 3
		`, meta.CLIName)))
)

// Build a new instance of the stop command
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:     stopUse,
		Short:   stopShort,
		Long:    stopLong,
		Example: stopExample,
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

	result, err := client.Stop(helper.GetContext(), profile)
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

func printResult(helper cmd.Helper, result engine.StopResult) error {
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
