package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const lockFileName = ".avares.lock"

var (
	ErrOutputLocked = errors.New("output directory is locked by another extraction")
	ErrEmptyPath    = errors.New("empty asset path")
)

type LocalAssetSink struct {
	outputPath string
	fileLock   *flock.Flock
}

type LocalAssetSinkOpts struct {
	OutputPath string
}

// NewLocalAssetSink creates the output root if needed and takes an exclusive
// lock on it until Close.
func NewLocalAssetSink(opts LocalAssetSinkOpts) (*LocalAssetSink, error) {
	if opts.OutputPath == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}

	if err := os.MkdirAll(opts.OutputPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory <%s>: %w", opts.OutputPath, err)
	}

	fileLock := flock.New(filepath.Join(opts.OutputPath, lockFileName))
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("error while trying to acquire file lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, opts.OutputPath)
	}

	return &LocalAssetSink{
		outputPath: opts.OutputPath,
		fileLock:   fileLock,
	}, nil
}

func (s *LocalAssetSink) Root() string {
	return s.outputPath
}

// Put writes to a temporary sibling first and renames it into place, so a
// failed write never leaves a partial asset behind.
func (s *LocalAssetSink) Put(ctx context.Context, relPath string, data []byte) (string, error) {
	if relPath == "" {
		return s.outputPath, ErrEmptyPath
	}

	outputPath := filepath.Join(s.outputPath, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return outputPath, err
	}

	tmpPath := fmt.Sprintf("%s.%s", outputPath, uuid.New().String()[:6])
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return outputPath, err
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return outputPath, err
	}

	return outputPath, nil
}

func (s *LocalAssetSink) Close() error {
	if s.fileLock == nil {
		return nil
	}

	err := s.fileLock.Unlock()
	if rmErr := os.Remove(s.fileLock.Path()); rmErr != nil && !os.IsNotExist(rmErr) {
		log.Warn().Err(rmErr).Msgf("unable to remove lock file %s", s.fileLock.Path())
	}
	s.fileLock = nil

	return err
}
