package common

// DefaultArchiveName is the file name the build pipeline gives the packed
// resources next to the application binary.
const DefaultArchiveName = "-AvaloniaResources"

const (
	HeaderLength = 12

	// IndexLength does not count its own field, so asset data starts this many
	// bytes after the value it declares.
	IndexLengthFieldSize = 4

	// Offset and size that follow every entry path.
	EntryTrailerLength = 8
)

/*

Resource archives are laid out as follows (all integers little-endian):

	int32   IndexLength
	int32   Version
	int32   EntryCount
	entry[EntryCount]:
		uint8           PathSize
		[PathSize]byte  Path
		int32           Offset   (relative to the base offset)
		int32           Size
	asset data, starting at IndexLength + 4

*/

type ResourceArchiveHeader struct {
	IndexLength int32
	Version     int32
	EntryCount  int32
}

// BaseOffset returns the absolute position of the asset data region.
func (h ResourceArchiveHeader) BaseOffset() int64 {
	return int64(h.IndexLength) + IndexLengthFieldSize
}
