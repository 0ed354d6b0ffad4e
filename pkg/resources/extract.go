package resources

import (
	"context"
	"fmt"
	"io"
	"time"

	common "github.com/beam-cloud/avares/pkg/common"
	"github.com/beam-cloud/avares/pkg/metrics"
	"github.com/beam-cloud/avares/pkg/storage"
	log "github.com/rs/zerolog/log"
)

type EntryStatus string

const (
	EntryExtracted   EntryStatus = "extracted"
	EntrySkipped     EntryStatus = "skipped"
	EntryWriteFailed EntryStatus = "write_failed"
)

// EntryResult is the outcome of extracting a single index entry. Err is nil
// only when Status is EntryExtracted.
type EntryResult struct {
	Index      int
	Entry      *common.ResourceEntry
	RelPath    string
	OutputPath string
	Status     EntryStatus
	Err        error
}

type ExtractionReport struct {
	Header     common.ResourceArchiveHeader
	BaseOffset int64
	Root       string
	Results    []EntryResult
	Metrics    metrics.Snapshot
}

func (r *ExtractionReport) Extracted() []EntryResult {
	return r.filter(EntryExtracted)
}

// Failed returns every entry that was skipped or could not be written.
func (r *ExtractionReport) Failed() []EntryResult {
	return append(r.filter(EntrySkipped), r.filter(EntryWriteFailed)...)
}

func (r *ExtractionReport) filter(status EntryStatus) []EntryResult {
	var results []EntryResult
	for _, result := range r.Results {
		if result.Status == status {
			results = append(results, result)
		}
	}
	return results
}

type ExtractEntriesOptions struct {
	// RejectTraversal skips entries whose path climbs out of the output root
	// through ".." segments. When false they are written wherever they resolve.
	RejectTraversal bool
}

// CheckEntryBounds returns the absolute offset of the entry's data, or an
// EntryBoundsError when the data does not lie entirely inside the archive.
func CheckEntryBounds(entry *common.ResourceEntry, baseOffset int64, totalLength int64) (int64, error) {
	absoluteOffset := entry.AbsoluteOffset(baseOffset)
	if absoluteOffset < 0 || entry.Size < 0 || absoluteOffset+int64(entry.Size) > totalLength {
		return absoluteOffset, &common.EntryBoundsError{Path: entry.Path, Offset: entry.Offset, Size: entry.Size}
	}
	return absoluteOffset, nil
}

// ReadEntry reads an entry's bytes from src after checking them against the
// archive bounds recorded in metadata.
func (ra *ResourceArchiver) ReadEntry(src io.ReadSeeker, metadata *common.ResourceArchiveMetadata, entry *common.ResourceEntry) ([]byte, error) {
	absoluteOffset, err := CheckEntryBounds(entry, metadata.BaseOffset(), metadata.TotalLength)
	if err != nil {
		return nil, err
	}

	if _, err := src.Seek(absoluteOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to asset '%s': %w", entry.Path, err)
	}

	data := make([]byte, entry.Size)
	if _, err := io.ReadFull(src, data); err != nil {
		return nil, fmt.Errorf("error reading asset '%s': %w", entry.Path, err)
	}

	return data, nil
}

// Extract writes every entry of metadata to sink in index order. Only an
// invalid base offset stops the run; per-entry problems are recorded in the
// report and extraction moves on.
func (ra *ResourceArchiver) Extract(ctx context.Context, src io.ReadSeeker, metadata *common.ResourceArchiveMetadata, sink storage.AssetSink, opts ExtractEntriesOptions) (*ExtractionReport, error) {
	baseOffset, err := ValidateBaseOffset(metadata.Header, metadata.TotalLength)
	log.Info().Msgf("baseOffset = %d", baseOffset)
	if err != nil {
		return nil, err
	}

	report := &ExtractionReport{
		Header:     metadata.Header,
		BaseOffset: baseOffset,
		Root:       sink.Root(),
		Results:    make([]EntryResult, 0, len(metadata.Entries)),
	}

	m := metrics.NewMetrics()
	for i, entry := range metadata.Entries {
		start := time.Now()
		result := ra.extractEntry(ctx, src, metadata, entry, sink, opts)
		result.Index = i

		switch result.Status {
		case EntryExtracted:
			m.RecordExtracted(result.RelPath, int64(entry.Size), time.Since(start))
		case EntrySkipped:
			m.RecordSkipped(entry.Path)
		case EntryWriteFailed:
			m.RecordWriteFailure(entry.Path)
		}

		report.Results = append(report.Results, result)
	}

	m.LogSummary()
	report.Metrics = m.Snapshot()

	return report, nil
}

func (ra *ResourceArchiver) extractEntry(ctx context.Context, src io.ReadSeeker, metadata *common.ResourceArchiveMetadata, entry *common.ResourceEntry, sink storage.AssetSink, opts ExtractEntriesOptions) EntryResult {
	result := EntryResult{Entry: entry, Status: EntrySkipped}

	data, err := ra.ReadEntry(src, metadata, entry)
	if err != nil {
		log.Error().Msg(err.Error())
		result.Err = err
		return result
	}

	relPath := SanitizeEntryPath(entry.Path)
	result.RelPath = relPath

	if EscapesRoot(relPath) {
		if opts.RejectTraversal {
			result.Err = fmt.Errorf("%w: '%s'", common.ErrPathEscapesRoot, entry.Path)
			log.Error().Msg(result.Err.Error())
			return result
		}
		log.Warn().Msgf("asset path '%s' resolves outside of %s", entry.Path, sink.Root())
	}

	log.Info().Msgf("extracting asset: '%s', absoluteOffset=%d, size=%d", relPath, entry.AbsoluteOffset(metadata.BaseOffset()), entry.Size)

	outputPath, err := sink.Put(ctx, relPath, data)
	result.OutputPath = outputPath
	if err != nil {
		result.Status = EntryWriteFailed
		result.Err = &common.EntryWriteError{Path: relPath, Err: err}
		log.Error().Msg(result.Err.Error())
		return result
	}

	log.Info().Msgf("saved asset to: %s", outputPath)
	result.Status = EntryExtracted
	return result
}
