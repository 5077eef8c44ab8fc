package meta

const (
	// CLIName is the name of the binary and the prefix for environment
	// variables and config paths.
	CLIName = "vrcctl"

	// ProductName is the longer human-readable name used in help text.
	ProductName = "vrcctl multi-instance manager"
)
