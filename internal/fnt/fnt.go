// Package fnt builds the Nintendo DS File-Name Table from a flat,
// insertion-ordered list of target paths and serializes it to the on-disk
// directory-tree layout.
//
// Computes the entry count, allocates a flat buffer, and walks entries
// writing at fixed strides, creating virtual directories on demand as the
// sorted path list is traversed.
package fnt

import (
	"sort"
	"strings"

	"github.com/lhearachel/nitrorom/internal/crc16"
	"github.com/lhearachel/nitrorom/internal/pathsort"
)

// rootDirID is the Nintendo DS convention: directory IDs are 0xF000 plus a
// zero-based index, and the root directory always occupies index 0.
const rootDirID = 0xF000

// Assignment maps one input file, by its position in the slice passed to
// Build, to the file ID it was assigned by the sort-and-walk algorithm.
type Assignment struct {
	Index     int    // position in the slice passed to Build
	FilesysID uint16 // overlayCount + sort rank
}

type entryKind int

const (
	entryFile entryKind = iota
	entryDir
)

type content struct {
	kind  entryKind
	name  string
	dirID uint16 // valid when kind == entryDir
}

type dirNode struct {
	id          uint16
	parentID    uint16
	firstFileID uint16
	contents    []content
}

// Table is a built, not-yet-serialized FNT directory tree.
type Table struct {
	dirs        []dirNode
	assignments []Assignment
}

// Build sorts paths by the case-insensitive, files-before-subdirs rule and
// walks the sorted order constructing the directory tree. overlayCount is
// the number of overlay RomMembers already occupying the low filesystem-ID
// range; file IDs continue from there.
//
// paths must each start with "/". Build does not mutate paths; the returned
// Table.Assignments map back to the original slice indices so the caller
// can stamp each RomFile's FilesysID without losing insertion order.
func Build(paths []string, overlayCount int) *Table {
	t := &Table{
		dirs:        []dirNode{{id: rootDirID, firstFileID: uint16(overlayCount)}},
		assignments: make([]Assignment, len(paths)),
	}
	if len(paths) == 0 {
		t.dirs[0].parentID = uint16(len(t.dirs))
		return t
	}

	type indexed struct {
		path string
		orig int
	}
	sorted := make([]indexed, len(paths))
	for i, p := range paths {
		sorted[i] = indexed{p, i}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return pathsort.Compare(sorted[i].path, sorted[j].path) < 0
	})

	// prefixToDir maps a directory's full path ("" for root, "/data" for a
	// subdirectory) to its index in t.dirs.
	prefixToDir := map[string]int{"": 0}
	nextFileID := uint16(overlayCount)

	for _, e := range sorted {
		trimmed := strings.TrimPrefix(e.path, "/")
		components := strings.Split(trimmed, "/")
		leaf := components[len(components)-1]
		dirComponents := components[:len(components)-1]

		parentIdx := 0
		prefix := ""
		for _, comp := range dirComponents {
			prefix = prefix + "/" + comp
			idx, ok := prefixToDir[prefix]
			if !ok {
				idx = len(t.dirs)
				newID := uint16(rootDirID | idx)
				t.dirs = append(t.dirs, dirNode{
					id:          newID,
					parentID:    t.dirs[parentIdx].id,
					firstFileID: nextFileID,
				})
				t.dirs[parentIdx].contents = append(t.dirs[parentIdx].contents, content{
					kind:  entryDir,
					name:  comp,
					dirID: newID,
				})
				prefixToDir[prefix] = idx
			}
			parentIdx = idx
		}

		t.dirs[parentIdx].contents = append(t.dirs[parentIdx].contents, content{
			kind: entryFile,
			name: leaf,
		})
		t.assignments[e.orig] = Assignment{Index: e.orig, FilesysID: nextFileID}
		nextFileID++
	}

	t.dirs[0].parentID = uint16(len(t.dirs))
	return t
}

// Assignments returns the FilesysID computed for each input path, indexed
// the same way as the paths slice passed to Build.
func (t *Table) Assignments() []Assignment {
	return t.assignments
}

// DirCount returns the number of directories in the tree, root included.
func (t *Table) DirCount() int {
	return len(t.dirs)
}

// Size reports the exact serialized size in bytes, before 0x200 padding:
// 8 bytes per directory header entry, plus the contents region (a tag byte
// and name per entry, two more bytes for subdirectory entries, and one
// trailing terminator byte per directory).
func (t *Table) Size() int {
	size := 8 * len(t.dirs)
	for _, d := range t.dirs {
		size++ // terminator
		for _, c := range d.contents {
			size += 1 + len(c.name)
			if c.kind == entryDir {
				size += 2
			}
		}
	}
	return size
}

// Serialize writes the FNT binary layout: an 8-byte header table entry per
// directory (contents_offset, first_file_id, parent_id), followed by the
// contents region (tag byte, name bytes, optional subdir_id, 0x00
// terminator) for each directory in turn.
func (t *Table) Serialize() []byte {
	buf := make([]byte, t.Size())
	headerEnd := 8 * len(t.dirs)

	cursor := headerEnd
	for i, d := range t.dirs {
		off := i * 8
		crc16.PutU32(buf[off:off+4], uint32(cursor))
		crc16.PutU16(buf[off+4:off+6], d.firstFileID)
		crc16.PutU16(buf[off+6:off+8], d.parentID)

		for _, c := range d.contents {
			tag := byte(len(c.name))
			if c.kind == entryDir {
				tag |= 0x80
			}
			buf[cursor] = tag
			cursor++
			copy(buf[cursor:], c.name)
			cursor += len(c.name)
			if c.kind == entryDir {
				crc16.PutU16(buf[cursor:cursor+2], c.dirID)
				cursor += 2
			}
		}
		buf[cursor] = 0x00 // directory terminator
		cursor++
	}
	return buf
}
