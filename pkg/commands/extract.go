package commands

import (
	"os"

	"github.com/beam-cloud/avares/pkg/resources"
	"github.com/beam-cloud/avares/pkg/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type ExtractCmdOptions struct {
	InputFile       string
	OutputPath      string
	RejectTraversal bool

	S3Bucket    string
	S3Prefix    string
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool
}

var extractOpts = &ExtractCmdOptions{}

var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract every asset in the archive to the output directory",
	RunE:  runExtract,
}

func init() {
	ExtractCmd.Flags().StringVarP(&extractOpts.InputFile, "input", "i", defaultArchivePath(), "Resource archive to extract")
	ExtractCmd.Flags().StringVarP(&extractOpts.OutputPath, "output", "o", defaultOutputDir(), "Output path for the extraction")
	ExtractCmd.Flags().BoolVar(&extractOpts.RejectTraversal, "reject-traversal", false, "Skip assets whose path leaves the output directory")
	ExtractCmd.Flags().StringVarP(&extractOpts.S3Bucket, "s3-bucket", "b", "", "Upload assets to this S3 bucket instead of the output directory")
	ExtractCmd.Flags().StringVarP(&extractOpts.S3Prefix, "s3-prefix", "k", "", "Key prefix for uploaded assets")
	ExtractCmd.Flags().StringVar(&extractOpts.S3Region, "s3-region", os.Getenv("AWS_REGION"), "S3 region")
	ExtractCmd.Flags().StringVar(&extractOpts.S3Endpoint, "s3-endpoint", "", "Custom S3 endpoint")
	ExtractCmd.Flags().BoolVar(&extractOpts.S3PathStyle, "s3-path-style", false, "Use path-style S3 addressing")
}

func runExtract(cmd *cobra.Command, args []string) error {
	options := resources.ExtractOptions{
		ArchivePath:     extractOpts.InputFile,
		OutputPath:      extractOpts.OutputPath,
		RejectTraversal: extractOpts.RejectTraversal,
		StorageMode:     storage.StorageModeLocal,
	}

	if extractOpts.S3Bucket != "" {
		options.StorageMode = storage.StorageModeS3
		options.S3 = &storage.S3AssetSinkOpts{
			Bucket:         extractOpts.S3Bucket,
			Prefix:         extractOpts.S3Prefix,
			Region:         extractOpts.S3Region,
			Endpoint:       extractOpts.S3Endpoint,
			ForcePathStyle: extractOpts.S3PathStyle,
		}
	}

	report, err := resources.ExtractArchive(cmd.Context(), options)
	if err != nil {
		return err
	}

	if failed := report.Failed(); len(failed) > 0 {
		log.Warn().Msgf("%d of %d assets were not extracted", len(failed), len(report.Results))
	}

	return nil
}
