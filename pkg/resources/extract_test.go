package resources

import (
	"bytes"
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"

	common "github.com/beam-cloud/avares/pkg/common"
	"github.com/beam-cloud/avares/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extractBytes(t *testing.T, archive []byte, outputPath string, opts ExtractEntriesOptions) *ExtractionReport {
	t.Helper()

	ra := NewResourceArchiver()
	src := bytes.NewReader(archive)
	metadata, err := ra.ExtractMetadata(src, int64(len(archive)))
	require.NoError(t, err)

	sink, err := storage.NewLocalAssetSink(storage.LocalAssetSinkOpts{OutputPath: outputPath})
	require.NoError(t, err)
	defer sink.Close()

	report, err := ra.Extract(context.Background(), src, metadata, sink, opts)
	require.NoError(t, err)
	return report
}

func generateRandomContent(t *testing.T, size int) []byte {
	content := make([]byte, size)
	_, err := rand.Read(content)
	require.NoError(t, err)
	return content
}

func TestExtractRoundTrip(t *testing.T) {
	assets := []testAsset{
		{path: "/App.axaml", data: []byte("<Application/>")},
		{path: "/Assets/avalonia-logo.ico", data: generateRandomContent(t, 64*1024)},
		{path: "/Assets/Fonts/Inter.ttf", data: generateRandomContent(t, 300*1024)},
		{path: "/Views/MainWindow.axaml", data: []byte{}},
		{path: "!AvaloniaResourceXamlInfo", data: generateRandomContent(t, 17)},
	}

	outputPath := t.TempDir()
	report := extractBytes(t, buildArchive(assets), outputPath, ExtractEntriesOptions{})

	require.Len(t, report.Results, len(assets))
	assert.Len(t, report.Extracted(), len(assets))
	assert.Empty(t, report.Failed())
	assert.Equal(t, int64(len(assets)), report.Metrics.EntriesExtracted)

	for i, asset := range assets {
		result := report.Results[i]
		assert.Equal(t, i, result.Index)
		assert.Equal(t, EntryExtracted, result.Status)
		assert.NoError(t, result.Err)

		extracted, err := os.ReadFile(filepath.Join(outputPath, SanitizeEntryPath(asset.path)))
		require.NoError(t, err, asset.path)
		assert.True(t, bytes.Equal(asset.data, extracted), "content mismatch for %s", asset.path)
	}
}

func TestExtractSingleEntryScenario(t *testing.T) {
	archive := []byte{
		22, 0, 0, 0, // indexLength
		1, 0, 0, 0, // version
		1, 0, 0, 0, // entryCount
		5, 'a', '/', 'b', '.', 't',
		0, 0, 0, 0, // offset
		3, 0, 0, 0, // size
		0x41, 0x42, 0x43,
	}

	outputPath := t.TempDir()
	report := extractBytes(t, archive, outputPath, ExtractEntriesOptions{})

	assert.Equal(t, int64(26), report.BaseOffset)
	assert.Equal(t, int32(1), report.Header.Version)
	require.Len(t, report.Extracted(), 1)

	fi, err := os.Stat(filepath.Join(outputPath, "a"))
	require.NoError(t, err)
	assert.True(t, fi.IsDir())

	extracted, err := os.ReadFile(filepath.Join(outputPath, "a", "b.t"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41, 0x42, 0x43}, extracted)
}

func TestExtractSkipsOutOfBoundsEntries(t *testing.T) {
	entries := []testEntry{
		{path: "first.txt", offset: 0, size: 5},
		{path: "past-end.bin", offset: 3, size: 100},
		{path: "before-start.bin", offset: -1000, size: 1},
		{path: "negative-size.bin", offset: 0, size: -1},
		{path: "last.txt", offset: 5, size: 5},
	}
	archive := encodeArchive(indexLengthFor(entries), 1, int32(len(entries)), entries, []byte("helloworld"))

	outputPath := t.TempDir()
	report := extractBytes(t, archive, outputPath, ExtractEntriesOptions{})

	require.Len(t, report.Results, 5)
	for _, i := range []int{1, 2, 3} {
		result := report.Results[i]
		assert.Equal(t, EntrySkipped, result.Status, entries[i].path)
		require.ErrorIs(t, result.Err, common.ErrEntryOutOfBounds)
		assert.Contains(t, result.Err.Error(), entries[i].path)

		_, err := os.Stat(filepath.Join(outputPath, entries[i].path))
		assert.True(t, os.IsNotExist(err))
	}

	first, err := os.ReadFile(filepath.Join(outputPath, "first.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(first))

	last, err := os.ReadFile(filepath.Join(outputPath, "last.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world", string(last))

	assert.Equal(t, int64(3), report.Metrics.EntriesSkipped)
	assert.Equal(t, int64(2), report.Metrics.EntriesExtracted)
}

func TestExtractStripsLeadingSeparators(t *testing.T) {
	assets := []testAsset{
		{path: "/etc/passwd", data: []byte("root")},
		{path: "//double/lead.txt", data: []byte("double")},
		{path: `\windows\x`, data: []byte("win")},
	}

	outputPath := t.TempDir()
	report := extractBytes(t, buildArchive(assets), outputPath, ExtractEntriesOptions{})
	require.Len(t, report.Extracted(), 3)

	assert.Equal(t, "etc/passwd", report.Results[0].RelPath)
	assert.Equal(t, filepath.Join(outputPath, "etc", "passwd"), report.Results[0].OutputPath)

	data, err := os.ReadFile(filepath.Join(outputPath, "etc", "passwd"))
	require.NoError(t, err)
	assert.Equal(t, "root", string(data))

	data, err = os.ReadFile(filepath.Join(outputPath, "double", "lead.txt"))
	require.NoError(t, err)
	assert.Equal(t, "double", string(data))

	assert.Equal(t, `windows\x`, report.Results[2].RelPath)
	data, err = os.ReadFile(filepath.Join(outputPath, filepath.FromSlash(`windows\x`)))
	require.NoError(t, err)
	assert.Equal(t, "win", string(data))
}

func TestExtractSharedParentDirectory(t *testing.T) {
	assets := []testAsset{
		{path: "/Assets/Images/a.png", data: []byte("a")},
		{path: "/Assets/Images/b.png", data: []byte("b")},
		{path: "/Assets/c.png", data: []byte("c")},
	}

	outputPath := t.TempDir()

	// Pre-existing directories must not get in the way either.
	require.NoError(t, os.MkdirAll(filepath.Join(outputPath, "Assets"), 0755))

	report := extractBytes(t, buildArchive(assets), outputPath, ExtractEntriesOptions{})
	require.Len(t, report.Extracted(), 3)

	for _, asset := range assets {
		_, err := os.Stat(filepath.Join(outputPath, SanitizeEntryPath(asset.path)))
		assert.NoError(t, err)
	}
}

func TestExtractWriteFailureDoesNotStopExtraction(t *testing.T) {
	assets := []testAsset{
		{path: "/conflict", data: []byte("file")},
		{path: "/conflict/child.txt", data: []byte("child")},
		{path: "/", data: []byte("empty")},
		{path: "/after.txt", data: []byte("after")},
	}

	outputPath := t.TempDir()
	report := extractBytes(t, buildArchive(assets), outputPath, ExtractEntriesOptions{})

	assert.Equal(t, EntryExtracted, report.Results[0].Status)

	for _, i := range []int{1, 2} {
		result := report.Results[i]
		assert.Equal(t, EntryWriteFailed, result.Status)
		require.ErrorIs(t, result.Err, common.ErrEntryWrite)
	}
	require.ErrorIs(t, report.Results[2].Err, storage.ErrEmptyPath)

	assert.Equal(t, EntryExtracted, report.Results[3].Status)
	data, err := os.ReadFile(filepath.Join(outputPath, "after.txt"))
	require.NoError(t, err)
	assert.Equal(t, "after", string(data))

	assert.Equal(t, int64(2), report.Metrics.WriteFailures)
}

func TestExtractOverwritesExistingFiles(t *testing.T) {
	outputPath := t.TempDir()
	target := filepath.Join(outputPath, "App.axaml")
	require.NoError(t, os.WriteFile(target, []byte("stale content that is longer"), 0644))

	report := extractBytes(t, buildArchive([]testAsset{{path: "/App.axaml", data: []byte("fresh")}}), outputPath, ExtractEntriesOptions{})
	require.Len(t, report.Extracted(), 1)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "fresh", string(data))
}

func TestExtractDuplicatePathsLastWins(t *testing.T) {
	assets := []testAsset{
		{path: "/dup.txt", data: []byte("first")},
		{path: "/dup.txt", data: []byte("second")},
	}

	outputPath := t.TempDir()
	report := extractBytes(t, buildArchive(assets), outputPath, ExtractEntriesOptions{})
	require.Len(t, report.Extracted(), 2)

	data, err := os.ReadFile(filepath.Join(outputPath, "dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestExtractTraversal(t *testing.T) {
	assets := []testAsset{
		{path: "/x/../../escaped.txt", data: []byte("outside")},
		{path: "/inside.txt", data: []byte("inside")},
	}
	archive := buildArchive(assets)

	t.Run("default keeps legacy behavior", func(t *testing.T) {
		parent := t.TempDir()
		outputPath := filepath.Join(parent, "out")

		report := extractBytes(t, archive, outputPath, ExtractEntriesOptions{})
		require.Len(t, report.Extracted(), 2)

		data, err := os.ReadFile(filepath.Join(parent, "escaped.txt"))
		require.NoError(t, err)
		assert.Equal(t, "outside", string(data))
	})

	t.Run("reject", func(t *testing.T) {
		parent := t.TempDir()
		outputPath := filepath.Join(parent, "out")

		report := extractBytes(t, archive, outputPath, ExtractEntriesOptions{RejectTraversal: true})

		assert.Equal(t, EntrySkipped, report.Results[0].Status)
		require.ErrorIs(t, report.Results[0].Err, common.ErrPathEscapesRoot)
		assert.Equal(t, EntryExtracted, report.Results[1].Status)

		_, err := os.Stat(filepath.Join(parent, "escaped.txt"))
		assert.True(t, os.IsNotExist(err))
	})
}

func TestExtractBaseOffsetOutOfRange(t *testing.T) {
	entries := []testEntry{{path: "a.txt", offset: 0, size: 1}}
	archive := encodeArchive(1000, 1, 1, entries, []byte("a"))

	ra := NewResourceArchiver()
	src := bytes.NewReader(archive)
	metadata, err := ra.ExtractMetadata(src, int64(len(archive)))
	require.NoError(t, err)

	outputPath := t.TempDir()
	sink, err := storage.NewLocalAssetSink(storage.LocalAssetSinkOpts{OutputPath: outputPath})
	require.NoError(t, err)
	defer sink.Close()

	report, err := ra.Extract(context.Background(), src, metadata, sink, ExtractEntriesOptions{})
	require.ErrorIs(t, err, common.ErrBaseOffsetOutOfRange)
	assert.Nil(t, report)

	_, err = os.Stat(filepath.Join(outputPath, "a.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestReadEntry(t *testing.T) {
	archive := buildArchive([]testAsset{
		{path: "/one", data: []byte("1")},
		{path: "/two", data: []byte("22")},
	})

	ra := NewResourceArchiver()
	src := bytes.NewReader(archive)
	metadata, err := ra.ExtractMetadata(src, int64(len(archive)))
	require.NoError(t, err)

	data, err := ra.ReadEntry(src, metadata, metadata.Get("/two"))
	require.NoError(t, err)
	assert.Equal(t, "22", string(data))

	_, err = ra.ReadEntry(src, metadata, &common.ResourceEntry{Path: "/bogus", Offset: 2, Size: 2})
	require.ErrorIs(t, err, common.ErrEntryOutOfBounds)
}
