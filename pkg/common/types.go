package common

import (
	"github.com/tidwall/btree"
)

type ResourceEntry struct {
	PathSize uint8
	Path     string
	Offset   int32 // Relative to the archive's base offset
	Size     int32
}

// AbsoluteOffset returns the entry's data position given the archive base offset.
func (e *ResourceEntry) AbsoluteOffset(baseOffset int64) int64 {
	return baseOffset + int64(e.Offset)
}

type ResourceArchiveMetadata struct {
	Header      ResourceArchiveHeader
	TotalLength int64

	// Entries keeps the index in file order. Index holds the same entries keyed
	// by path; when a path repeats, the later entry wins.
	Entries []*ResourceEntry
	Index   *btree.BTree
}

func NewResourceIndex() *btree.BTree {
	compare := func(a, b interface{}) bool {
		return a.(*ResourceEntry).Path < b.(*ResourceEntry).Path
	}
	return btree.New(compare)
}

func NewResourceArchiveMetadata(header ResourceArchiveHeader, totalLength int64, capacity int) *ResourceArchiveMetadata {
	return &ResourceArchiveMetadata{
		Header:      header,
		TotalLength: totalLength,
		Entries:     make([]*ResourceEntry, 0, capacity),
		Index:       NewResourceIndex(),
	}
}

func (m *ResourceArchiveMetadata) Insert(entry *ResourceEntry) {
	m.Entries = append(m.Entries, entry)
	m.Index.Set(entry)
}

func (m *ResourceArchiveMetadata) Get(path string) *ResourceEntry {
	item := m.Index.Get(&ResourceEntry{Path: path})
	if item == nil {
		return nil
	}
	return item.(*ResourceEntry)
}

// Sorted returns the distinct entries ordered by path.
func (m *ResourceArchiveMetadata) Sorted() []*ResourceEntry {
	entries := make([]*ResourceEntry, 0, m.Index.Len())
	m.Index.Ascend(nil, func(a interface{}) bool {
		entries = append(entries, a.(*ResourceEntry))
		return true
	})
	return entries
}

func (m *ResourceArchiveMetadata) BaseOffset() int64 {
	return m.Header.BaseOffset()
}
