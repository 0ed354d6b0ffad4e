package storage

import (
	"context"
	"errors"
)

type StorageMode string

const (
	StorageModeLocal StorageMode = "local"
	StorageModeS3    StorageMode = "s3"
)

// AssetSink persists extracted assets. relPath is a sanitized, slash or
// backslash separated path relative to the sink's root.
type AssetSink interface {
	// Put writes data at relPath, replacing anything already there, and returns
	// the location it was written to.
	Put(ctx context.Context, relPath string, data []byte) (string, error)
	Root() string
	Close() error
}

type AssetSinkOpts struct {
	Mode       StorageMode
	OutputPath string
	S3         *S3AssetSinkOpts
}

func NewAssetSink(ctx context.Context, opts AssetSinkOpts) (AssetSink, error) {
	var sink AssetSink = nil
	var err error = nil

	mode := opts.Mode
	if mode == "" {
		mode = StorageModeLocal
	}

	switch mode {
	case StorageModeLocal:
		sink, err = NewLocalAssetSink(LocalAssetSinkOpts{OutputPath: opts.OutputPath})
	case StorageModeS3:
		if opts.S3 == nil {
			return nil, errors.New("s3 storage options not provided")
		}
		sink, err = NewS3AssetSink(ctx, *opts.S3)
	default:
		err = errors.New("unsupported storage type")
	}

	if err != nil {
		return nil, err
	}

	return sink, nil
}
