package commands

import (
	"github.com/beam-cloud/avares/pkg/resources"
	"github.com/spf13/cobra"
)

var logLevel string

var RootCmd = &cobra.Command{
	Use:           "avares",
	Short:         "Extract assets from a packed -AvaloniaResources archive",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return resources.SetLogLevel(logLevel)
	},
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", getEnvString(envLogLevel, "info"), "Log level (debug, info, warn, error, disabled)")

	RootCmd.AddCommand(ExtractCmd)
	RootCmd.AddCommand(ListCmd)
	RootCmd.AddCommand(CatCmd)
	RootCmd.AddCommand(VerifyCmd)
}
