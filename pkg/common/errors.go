package common

import (
	"errors"
	"fmt"
)

var (
	ErrArchiveNotFound      = errors.New("resource archive not found")
	ErrTruncatedHeader      = errors.New("not enough data to read the header (indexLength, version, entryCount)")
	ErrInvalidEntryCount    = errors.New("negative entry count")
	ErrTruncatedEntry       = errors.New("truncated index entry")
	ErrBaseOffsetOutOfRange = errors.New("base offset out of file range")
	ErrEntryOutOfBounds     = errors.New("invalid offset/size")
	ErrEntryWrite           = errors.New("failed writing asset")
	ErrPathEscapesRoot      = errors.New("asset path escapes the output root")
)

// Stages at which an index entry can run out of data.
const (
	StagePathSize = "PathSize"
	StagePathData = "Path + offset + size"
)

// TruncatedEntryError reports the index entry (1-based) that ran past the end
// of the archive.
type TruncatedEntryError struct {
	Entry int
	Stage string
}

func (e *TruncatedEntryError) Error() string {
	return fmt.Sprintf("not enough data to read %s for entry %d", e.Stage, e.Entry)
}

func (e *TruncatedEntryError) Unwrap() error {
	return ErrTruncatedEntry
}

type BaseOffsetError struct {
	BaseOffset  int64
	TotalLength int64
}

func (e *BaseOffsetError) Error() string {
	return fmt.Sprintf("baseOffset=%d is out of file range, totalLength=%d", e.BaseOffset, e.TotalLength)
}

func (e *BaseOffsetError) Unwrap() error {
	return ErrBaseOffsetOutOfRange
}

type EntryBoundsError struct {
	Path   string
	Offset int32
	Size   int32
}

func (e *EntryBoundsError) Error() string {
	return fmt.Sprintf("invalid offset/size for asset '%s': offset=%d, size=%d", e.Path, e.Offset, e.Size)
}

func (e *EntryBoundsError) Unwrap() error {
	return ErrEntryOutOfBounds
}

// EntryWriteError carries the underlying cause of a failed write alongside
// ErrEntryWrite, so both match with errors.Is.
type EntryWriteError struct {
	Path string
	Err  error
}

func (e *EntryWriteError) Error() string {
	return fmt.Sprintf("failed writing asset '%s' to disk: %v", e.Path, e.Err)
}

func (e *EntryWriteError) Unwrap() []error {
	return []error{ErrEntryWrite, e.Err}
}
