package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time:
//
//	go build -ldflags "-X github.com/JonMunkholm/erpimport/internal/cli.Version=1.2.0"
var (
	Version   = "dev"
	BuildDate = "unknown"
)

func newVersionCmd(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the application version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(deps.Stdout, "importer %s (built %s, %s)\n", Version, BuildDate, runtime.Version())
		},
	}
}
