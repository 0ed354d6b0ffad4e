package commands

import (
	"fmt"

	"github.com/beam-cloud/avares/pkg/resources"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type VerifyCmdOptions struct {
	InputFile  string
	OutputPath string
}

var verifyOpts = &VerifyCmdOptions{}

var VerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check an extracted directory against the archive index",
	RunE:  runVerify,
}

func init() {
	VerifyCmd.Flags().StringVarP(&verifyOpts.InputFile, "input", "i", defaultArchivePath(), "Resource archive to compare against")
	VerifyCmd.Flags().StringVarP(&verifyOpts.OutputPath, "output", "o", defaultOutputDir(), "Directory the archive was extracted to")
}

func runVerify(cmd *cobra.Command, args []string) error {
	report, err := resources.VerifyArchive(verifyOpts.InputFile, verifyOpts.OutputPath)
	if err != nil {
		return err
	}

	for _, p := range report.Missing {
		log.Error().Msgf("missing asset: %s", p)
	}
	for _, p := range report.Mismatched {
		log.Error().Msgf("size mismatch: %s", p)
	}

	if !report.OK() {
		return fmt.Errorf("%d missing and %d mismatched of %d assets", len(report.Missing), len(report.Mismatched), report.Checked)
	}

	log.Info().Msgf("all %d assets match", report.Checked)
	return nil
}
