package resources

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEntry struct {
	path   string
	offset int32
	size   int32
}

type testAsset struct {
	path string
	data []byte
}

// indexLengthFor returns the IndexLength the build pipeline would write:
// everything after the IndexLength field up to the start of the data region.
func indexLengthFor(entries []testEntry) int32 {
	n := 8
	for _, e := range entries {
		n += 1 + len(e.path) + 8
	}
	return int32(n)
}

func encodeArchive(indexLength int32, version int32, entryCount int32, entries []testEntry, data []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, indexLength)
	binary.Write(&buf, binary.LittleEndian, version)
	binary.Write(&buf, binary.LittleEndian, entryCount)
	for _, e := range entries {
		buf.WriteByte(byte(len(e.path)))
		buf.WriteString(e.path)
		binary.Write(&buf, binary.LittleEndian, e.offset)
		binary.Write(&buf, binary.LittleEndian, e.size)
	}
	buf.Write(data)
	return buf.Bytes()
}

// buildArchive packs assets back to back after the index.
func buildArchive(assets []testAsset) []byte {
	var data bytes.Buffer
	entries := make([]testEntry, 0, len(assets))
	for _, a := range assets {
		entries = append(entries, testEntry{path: a.path, offset: int32(data.Len()), size: int32(len(a.data))})
		data.Write(a.data)
	}
	return encodeArchive(indexLengthFor(entries), 1, int32(len(entries)), entries, data.Bytes())
}

func writeArchiveFile(t *testing.T, archive []byte) string {
	t.Helper()

	archivePath := filepath.Join(t.TempDir(), "-AvaloniaResources")
	require.NoError(t, os.WriteFile(archivePath, archive, 0644))
	return archivePath
}
