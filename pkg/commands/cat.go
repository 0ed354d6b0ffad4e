package commands

import (
	"github.com/beam-cloud/avares/pkg/resources"
	"github.com/spf13/cobra"
)

var catInputFile string

var CatCmd = &cobra.Command{
	Use:   "cat <path>",
	Short: "Write a single asset to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runCat,
}

func init() {
	CatCmd.Flags().StringVarP(&catInputFile, "input", "i", defaultArchivePath(), "Resource archive to read")
}

func runCat(cmd *cobra.Command, args []string) error {
	data, err := resources.ReadArchiveEntry(catInputFile, args[0])
	if err != nil {
		return err
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
