package ps

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
	psUse   = "ps"
	psShort = i18n.T("root.ps.psShort",
		"Dump the interesting processes the monitor can see")
	psLong = normalizers.LongDesc(i18n.T("root.ps.psLong",
		`The ps command dumps one line per process whose name or executable
matches one of the configured markers. Useful when a binding does not
happen and you want to see what the monitor is working with.`))
	psExample = normalizers.Examples(i18n.T("root.ps.psExamples",
		fmt.Sprintf(`
		# Dump the marker-matching processes
		%[1]s ps
		`, meta.CLIName)))
)

// Build a new instance of the ps command
func NewPsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     psUse,
		Short:   psShort,
		Long:    psLong,
		Example: psExample,
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

	lines, err := client.Processes(helper.GetContext())
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	out := helper.GetStreams().Out

	if outType == common.TEXT {
		if len(lines) == 0 {
			_, err := fmt.Fprintln(out, "no matching processes")
			return err
		}
		for _, line := range lines {
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
		return nil
	}

	p, err := cli.Format(outType.String(), out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(lines)
	return nil
}
