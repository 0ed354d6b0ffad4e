package resources

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	common "github.com/beam-cloud/avares/pkg/common"
)

type ResourceArchiver struct {
}

func NewResourceArchiver() *ResourceArchiver {
	return &ResourceArchiver{}
}

func (ra *ResourceArchiver) DecodeHeader(headerBytes []byte) (*common.ResourceArchiveHeader, error) {
	header := new(common.ResourceArchiveHeader)
	buf := bytes.NewBuffer(headerBytes)
	if err := binary.Read(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	return header, nil
}

// ReadHeader reads the fixed header from r, which must be positioned at the
// start of an archive of totalLength bytes.
func (ra *ResourceArchiver) ReadHeader(r io.Reader, totalLength int64) (*common.ResourceArchiveHeader, error) {
	if totalLength < common.HeaderLength {
		return nil, common.ErrTruncatedHeader
	}

	headerBytes := make([]byte, common.HeaderLength)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTruncatedHeader, err)
	}

	header, err := ra.DecodeHeader(headerBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrTruncatedHeader, err)
	}

	if header.EntryCount < 0 {
		return nil, fmt.Errorf("%w: entryCount=%d", common.ErrInvalidEntryCount, header.EntryCount)
	}

	return header, nil
}

// ReadIndex decodes entryCount index entries from r. available is the number of
// unread bytes left in the archive when r is positioned at the first entry.
// Either every entry is decoded or none are.
func (ra *ResourceArchiver) ReadIndex(r io.Reader, available int64, entryCount int32) ([]*common.ResourceEntry, error) {
	var pos int64 = 0

	// Every entry takes at least PathSize plus the trailer, which bounds how
	// many can fit no matter what the header claims.
	capacity := min(int64(max(entryCount, 0)), max(available, 0)/(1+common.EntryTrailerLength))
	entries := make([]*common.ResourceEntry, 0, capacity)

	var trailer [common.EntryTrailerLength]byte
	for i := 0; i < int(entryCount); i++ {
		if pos+1 > available {
			return nil, &common.TruncatedEntryError{Entry: i + 1, Stage: common.StagePathSize}
		}

		var pathSize [1]byte
		if _, err := io.ReadFull(r, pathSize[:]); err != nil {
			return nil, fmt.Errorf("error reading entry %d: %w", i+1, err)
		}
		pos += 1

		size := int64(pathSize[0])
		if pos+size+common.EntryTrailerLength > available {
			return nil, &common.TruncatedEntryError{Entry: i + 1, Stage: common.StagePathData}
		}

		pathBytes := make([]byte, size)
		if _, err := io.ReadFull(r, pathBytes); err != nil {
			return nil, fmt.Errorf("error reading entry %d: %w", i+1, err)
		}
		if _, err := io.ReadFull(r, trailer[:]); err != nil {
			return nil, fmt.Errorf("error reading entry %d: %w", i+1, err)
		}
		pos += size + common.EntryTrailerLength

		entries = append(entries, &common.ResourceEntry{
			PathSize: pathSize[0],
			Path:     decodePath(pathBytes),
			Offset:   int32(binary.LittleEndian.Uint32(trailer[0:4])),
			Size:     int32(binary.LittleEndian.Uint32(trailer[4:8])),
		})
	}

	return entries, nil
}

// decodePath is lenient: invalid UTF-8 is replaced rather than rejected.
func decodePath(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

// ExtractMetadata loads the header and the full index. The base offset is not
// checked here; see ValidateBaseOffset.
func (ra *ResourceArchiver) ExtractMetadata(src io.ReadSeeker, totalLength int64) (*common.ResourceArchiveMetadata, error) {
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("error seeking to header: %v", err)
	}

	reader := bufio.NewReader(src)

	header, err := ra.ReadHeader(reader, totalLength)
	if err != nil {
		return nil, err
	}

	entries, err := ra.ReadIndex(reader, totalLength-common.HeaderLength, header.EntryCount)
	if err != nil {
		return nil, err
	}

	metadata := common.NewResourceArchiveMetadata(*header, totalLength, len(entries))
	for _, entry := range entries {
		metadata.Insert(entry)
	}

	return metadata, nil
}

// ValidateBaseOffset returns the absolute start of the asset data region, or
// an error if it lies outside the archive.
func ValidateBaseOffset(header common.ResourceArchiveHeader, totalLength int64) (int64, error) {
	baseOffset := header.BaseOffset()
	if baseOffset < 0 || baseOffset > totalLength {
		return baseOffset, &common.BaseOffsetError{BaseOffset: baseOffset, TotalLength: totalLength}
	}
	return baseOffset, nil
}
