package resources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	common "github.com/beam-cloud/avares/pkg/common"
	"github.com/beam-cloud/avares/pkg/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetLogLevel configures the logging verbosity.
// Valid levels: "debug", "info", "warn", "error", "disabled"
// Use "debug" to see per-entry timings and sink operations
// Use "info" for header values and per-entry progress (default)
func SetLogLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "disabled", "none", "off":
		zerolog.SetGlobalLevel(zerolog.Disabled)
	default:
		return fmt.Errorf("invalid log level %q: must be one of: debug, info, warn, error, disabled", level)
	}
	return nil
}

type ExtractOptions struct {
	ArchivePath     string
	OutputPath      string
	RejectTraversal bool
	StorageMode     storage.StorageMode
	S3              *storage.S3AssetSinkOpts
}

// archiveFile is an opened archive along with its decoded index.
type archiveFile struct {
	file     *os.File
	metadata *common.ResourceArchiveMetadata
}

func openArchive(archivePath string) (*archiveFile, error) {
	file, err := os.Open(archivePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", common.ErrArchiveNotFound, archivePath)
		}
		return nil, err
	}

	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if fi.IsDir() {
		file.Close()
		return nil, fmt.Errorf("%w: %s is a directory", common.ErrArchiveNotFound, archivePath)
	}

	ra := NewResourceArchiver()
	metadata, err := ra.ExtractMetadata(file, fi.Size())
	if err != nil {
		file.Close()
		return nil, err
	}

	h := metadata.Header
	log.Info().Msgf("indexLength=%d, version=%d, entryCount=%d", h.IndexLength, h.Version, h.EntryCount)

	return &archiveFile{file: file, metadata: metadata}, nil
}

// ExtractArchive extracts every asset of the archive at ArchivePath into the
// configured sink.
func ExtractArchive(ctx context.Context, options ExtractOptions) (*ExtractionReport, error) {
	log.Info().Msgf("extracting archive: %s", options.ArchivePath)

	a, err := openArchive(options.ArchivePath)
	if err != nil {
		return nil, err
	}
	defer a.file.Close()

	// Checked before the sink exists so a bad archive leaves no trace on disk.
	if _, err := ValidateBaseOffset(a.metadata.Header, a.metadata.TotalLength); err != nil {
		return nil, err
	}

	sink, err := storage.NewAssetSink(ctx, storage.AssetSinkOpts{
		Mode:       options.StorageMode,
		OutputPath: options.OutputPath,
		S3:         options.S3,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create storage: %w", err)
	}
	defer sink.Close()

	ra := NewResourceArchiver()
	report, err := ra.Extract(ctx, a.file, a.metadata, sink, ExtractEntriesOptions{
		RejectTraversal: options.RejectTraversal,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Msg("extraction attempt finished")
	return report, nil
}

// ListArchive decodes the header and index without extracting anything.
func ListArchive(archivePath string) (*common.ResourceArchiveMetadata, error) {
	a, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer a.file.Close()

	return a.metadata, nil
}

// ReadArchiveEntry returns the bytes of the entry stored under entryPath.
func ReadArchiveEntry(archivePath string, entryPath string) ([]byte, error) {
	a, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer a.file.Close()

	if _, err := ValidateBaseOffset(a.metadata.Header, a.metadata.TotalLength); err != nil {
		return nil, err
	}

	entry := a.metadata.Get(entryPath)
	if entry == nil {
		return nil, fmt.Errorf("no entry named '%s' in archive", entryPath)
	}

	return NewResourceArchiver().ReadEntry(a.file, a.metadata, entry)
}

// VerifyArchive checks a previously extracted tree against the archive index.
func VerifyArchive(archivePath string, outputPath string) (*VerifyReport, error) {
	a, err := openArchive(archivePath)
	if err != nil {
		return nil, err
	}
	defer a.file.Close()

	return NewResourceArchiver().VerifyExtraction(a.metadata, outputPath)
}
