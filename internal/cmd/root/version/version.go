package version

import (
	"fmt"
	"io"

	"github.com/segmentio/cli"
	"github.com/spf13/cobra"
	"github.com/vrcctl/vrcctl/internal/cmd"
	"github.com/vrcctl/vrcctl/internal/cmd/common"
	"github.com/vrcctl/vrcctl/internal/meta"
	"github.com/vrcctl/vrcctl/internal/util"
	"github.com/vrcctl/vrcctl/internal/util/i18n"
	"github.com/vrcctl/vrcctl/internal/util/normalizers"
)

const (
	FullFlagName   = "full"
	FullConfigPath = "version." + FullFlagName
)

var (
	versionUse   = "version"
	versionShort = i18n.T("root.version.versionShort",
		fmt.Sprintf("Print the %s version", meta.CLIName))
	versionLong = normalizers.LongDesc(i18n.T("root.version.versionLong",
		`The version command prints the version and other optional build information`))
	versionExample = normalizers.Examples(i18n.T("root.version.versionExamples",
		fmt.Sprintf(`
		# Print the simple version
		%[1]s version
		# Print the version, commit hash and build date
		%[1]s version --full
		`, meta.CLIName)))
)

// Build a new instance of the version command
func NewVersionCmd() *cobra.Command {
	rv := &cobra.Command{
		Use:     versionUse,
		Short:   versionShort,
		Long:    versionLong,
		Example: versionExample,
		PreRun: func(c *cobra.Command, args []string) {
			bindFlags(c, args)
		},
		RunE: func(c *cobra.Command, args []string) error {
			helper := cmd.BuildHelper(c, args)
			return run(helper)
		},
	}

	rv.Flags().Bool(FullFlagName, false,
		i18n.T(fmt.Sprintf("root.%s", FullConfigPath),
			fmt.Sprintf("True to also show the commit hash and build date.\n (config path = '%s')", FullConfigPath)))

	return rv
}

func bindFlags(c *cobra.Command, args []string) {
	helper := cmd.BuildHelper(c, args)
	cfg, e := helper.GetConfig()
	util.CheckError(e)
	f := c.Flags().Lookup(FullFlagName)
	util.CheckError(cfg.BindFlag(FullConfigPath, f))
}

func run(helper cmd.Helper) error {
	info, err := helper.GetBuildInfo()
	if err != nil {
		return err
	}

	// Printer functions take objects to print
	result := map[string]interface{}{
		"version": info.Version,
	}

	cfg, err := helper.GetConfig()
	if err != nil {
		return err
	}

	if cfg.GetBool(FullConfigPath) {
		result["commit"] = info.Commit
		result["date"] = info.Date
	}

	outType, err := helper.GetOutputFormat()
	if err != nil {
		return err
	}

	if outType == common.TEXT {
		return printText(result, helper.GetStreams().Out)
	}

	p, err := cli.Format(outType.String(), helper.GetStreams().Out)
	if err != nil {
		return err
	}
	defer p.Flush()
	p.Print(result)

	return nil
}

// printText is a custom print function for the version command so the plain
// invocation stays a single line.
func printText(data map[string]interface{}, out io.Writer) error {
	if ver, ok := data["version"]; ok {
		if _, e := fmt.Fprintf(out, "%s", ver); e != nil {
			return e
		}
	}
	if commit, ok := data["commit"]; ok {
		if _, e := fmt.Fprintf(out, " (%s)", commit); e != nil {
			return e
		}
	}
	if date, ok := data["date"]; ok {
		if _, e := fmt.Fprintf(out, " built %s", date); e != nil {
			return e
		}
	}
	_, err := fmt.Fprintf(out, "\n")
	return err
}
