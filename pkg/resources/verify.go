package resources

import (
	"fmt"
	"os"
	"path/filepath"

	common "github.com/beam-cloud/avares/pkg/common"
	"github.com/karrick/godirwalk"
	log "github.com/rs/zerolog/log"
)

type VerifyReport struct {
	Checked    int
	Missing    []string
	Mismatched []string
}

func (r *VerifyReport) OK() bool {
	return len(r.Missing) == 0 && len(r.Mismatched) == 0
}

// VerifyExtraction compares the files under outputPath with what extracting
// metadata should have produced. Entries that extraction would skip are not
// checked, and when a path repeats only its last entry counts.
func (ra *ResourceArchiver) VerifyExtraction(metadata *common.ResourceArchiveMetadata, outputPath string) (*VerifyReport, error) {
	baseOffset, err := ValidateBaseOffset(metadata.Header, metadata.TotalLength)
	if err != nil {
		return nil, err
	}

	sizes, err := walkOutput(outputPath)
	if err != nil {
		return nil, fmt.Errorf("error walking output directory: %w", err)
	}

	report := &VerifyReport{}
	for _, entry := range metadata.Sorted() {
		if _, err := CheckEntryBounds(entry, baseOffset, metadata.TotalLength); err != nil {
			continue
		}

		relPath := SanitizeEntryPath(entry.Path)
		if relPath == "" || EscapesRoot(relPath) {
			continue
		}

		key := filepath.Clean(filepath.FromSlash(relPath))
		report.Checked++

		size, found := sizes[key]
		if !found {
			log.Debug().Msgf("missing asset: %s", relPath)
			report.Missing = append(report.Missing, relPath)
			continue
		}

		if size != int64(entry.Size) {
			log.Debug().Msgf("size mismatch for asset %s: expected %d, found %d", relPath, entry.Size, size)
			report.Mismatched = append(report.Mismatched, relPath)
		}
	}

	return report, nil
}

// walkOutput maps every regular file under root, by path relative to root,
// to its size.
func walkOutput(root string) (map[string]int64, error) {
	sizes := make(map[string]int64)

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsRegular() {
				return nil
			}

			fi, err := os.Stat(path)
			if err != nil {
				return err
			}

			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}

			sizes[rel] = fi.Size()
			return nil
		},
		Unsorted: true,
	})

	return sizes, err
}
