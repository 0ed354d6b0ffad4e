package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/beam-cloud/avares/pkg/common"
	"github.com/beam-cloud/avares/pkg/resources"
	"github.com/spf13/cobra"
)

type ListCmdOptions struct {
	InputFile string
	Sorted    bool
}

var listOpts = &ListCmdOptions{}

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the archive header and index",
	RunE:  runList,
}

func init() {
	ListCmd.Flags().StringVarP(&listOpts.InputFile, "input", "i", defaultArchivePath(), "Resource archive to read")
	ListCmd.Flags().BoolVar(&listOpts.Sorted, "sorted", false, "Order entries by path instead of index order")
}

func runList(cmd *cobra.Command, args []string) error {
	metadata, err := resources.ListArchive(listOpts.InputFile)
	if err != nil {
		return err
	}

	entries := metadata.Entries
	if listOpts.Sorted {
		entries = metadata.Sorted()
	}

	out := cmd.OutOrStdout()
	h := metadata.Header
	fmt.Fprintf(out, "indexLength=%d version=%d entryCount=%d baseOffset=%d totalLength=%d\n\n",
		h.IndexLength, h.Version, h.EntryCount, metadata.BaseOffset(), metadata.TotalLength)

	return writeEntryTable(out, entries)
}

func writeEntryTable(out io.Writer, entries []*common.ResourceEntry) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATH\tOFFSET\tSIZE")
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%d\t%d\n", entry.Path, entry.Offset, entry.Size)
	}
	return w.Flush()
}
