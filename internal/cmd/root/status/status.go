package status

import (
	"fmt"
	"sort"

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
	statusUse   = "status"
	statusShort = i18n.T("root.status.statusShort",
		"Show the profiles currently bound to processes")
	statusLong = normalizers.LongDesc(i18n.T("root.status.statusLong",
		`The status command lists the profile to process bindings the monitor
currently considers live.`))
	statusExample = normalizers.Examples(i18n.T("root.status.statusExamples",
		fmt.Sprintf(`
		# Show the current bindings
		%[1]s status
		# Show the current bindings as JSON
		%[1]s status -o json
		`, meta.CLIName)))
)

// Build a new instance of the status command
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     statusUse,
		Short:   statusShort,
		Long:    statusLong,
		Example: statusExample,
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

	bound, err := client.ListBound(helper.GetContext())
	if err != nil {
		return cmd.PrepareExecutionErrorFromErr(helper, err)
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}
	out := helper.GetStreams().Out

	if outType == common.TEXT {
		if len(bound) == 0 {
			_, err := fmt.Fprintln(out, "no profiles bound")
			return err
		}
		profiles := make([]engine.Profile, 0, len(bound))
		for p := range bound {
			profiles = append(profiles, p)
		}
		sort.Slice(profiles, func(i, j int) bool { return profiles[i] < profiles[j] })
		for _, p := range profiles {
			if _, err := fmt.Fprintf(out, "profile %d -> pid %d\n", p, bound[p]); err != nil {
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
	p.Print(bound)
	return nil
}
