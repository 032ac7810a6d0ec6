// Package datafile reads the packed resource file of a compiled game and
// exposes resources, by id, as an fs.FS.
package datafile

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/cam-per/sludge/sludge/errs"
	"github.com/cam-per/sludge/utils"
)

const op = "datafile"

type entry struct {
	id     int
	name   string
	isDir  bool
	offset int64
	size   int64

	entries []fs.DirEntry
	ep      int
}

func newDirEntry(name string) *entry {
	return &entry{id: -1, name: name, isDir: true}
}

func newFileEntry(id int, offset, size int64) *entry {
	return &entry{id: id, name: strconv.Itoa(id), offset: offset, size: size}
}

func (e *entry) Name() string               { return e.name }
func (e *entry) IsDir() bool                { return e.isDir }
func (e *entry) Info() (fs.FileInfo, error) { return e, nil }
func (e *entry) Stat() (fs.FileInfo, error) { return e, nil }
func (e *entry) ModTime() time.Time         { return time.Time{} }
func (e *entry) Sys() any                   { return nil }
func (e *entry) Size() int64                { return e.size }
func (e *entry) Read([]byte) (int, error)   { return 0, os.ErrInvalid }
func (e *entry) Close() error               { e.ep = 0; return nil }

// ID is the resource number, or -1 for the root.
func (e *entry) ID() int { return e.id }

func (e *entry) Type() fs.FileMode { return e.Mode().Type() }

func (e *entry) Mode() fs.FileMode {
	if e.isDir {
		return fs.ModeDir | 0o555
	}
	return 0o444
}

func (e *entry) ReadDir(n int) ([]fs.DirEntry, error) {
	rest := e.entries[e.ep:]
	if n <= 0 {
		e.ep = len(e.entries)
		return rest, nil
	}
	if len(rest) == 0 {
		return nil, io.EOF
	}
	n = min(n, len(rest))
	e.ep += n
	return rest[:n], nil
}

// Container is the resource table of a data file. Entry i of the index is
// a u32LE offset, relative to the end of that entry, to a u32LE length
// followed by the resource bytes.
type Container struct {
	r       io.ReaderAt
	size    int64
	index   int64
	entries []*entry
}

// NewContainer reads the index table at offset index of r, which is size
// bytes long.
func NewContainer(r io.ReaderAt, size, index int64) (*Container, error) {
	container := &Container{
		r:     r,
		size:  size,
		index: index,
	}
	if err := container.readIndex(); err != nil {
		return nil, err
	}
	return container, nil
}

func (container *Container) Len() int { return len(container.entries) }

func (container *Container) u32(at int64) (int64, error) {
	if at < 0 || at+4 > container.size {
		return 0, io.ErrUnexpectedEOF
	}
	v, err := utils.ReadUint32LE(io.NewSectionReader(container.r, at, 4))
	return int64(v), err
}

func (container *Container) target(i int) (int64, error) {
	field := container.index + int64(i)*4
	rel, err := container.u32(field)
	if err != nil {
		return 0, err
	}
	return field + 4 + rel, nil
}

// readIndex sizes the table from its first entry: the data of resource 0
// starts right after the last index field.
func (container *Container) readIndex() error {
	first, err := container.target(0)
	if err != nil {
		return errs.Stream(op, err)
	}
	count := (first - container.index) / 4
	if count <= 0 || first > container.size {
		return errs.Format(op, "bad data index at %d", container.index)
	}

	container.entries = make([]*entry, count)
	for i := range container.entries {
		at, err := container.target(i)
		if err != nil {
			return errs.Stream(op, err)
		}
		length, err := container.u32(at)
		if err != nil || at+4+length > container.size {
			return errs.Format(op, "resource %d: entry out of file (offset %d)", i, at)
		}
		container.entries[i] = newFileEntry(i, at+4, length)
	}
	return nil
}

// Resource returns a reader over the bytes of resource id.
func (container *Container) Resource(id int) (*io.SectionReader, error) {
	if id < 0 || id >= len(container.entries) {
		return nil, errs.Resource(id, fs.ErrNotExist)
	}
	e := container.entries[id]
	return io.NewSectionReader(container.r, e.offset, e.size), nil
}

type openedFile struct {
	*entry
	*io.SectionReader
}

func (f *openedFile) Read(p []byte) (int, error) { return f.SectionReader.Read(p) }
func (f *openedFile) Close() error               { return nil }
func (f *openedFile) Stat() (fs.FileInfo, error) { return f.entry, nil }

// Open implements fs.FS. Resources are named by their decimal id.
func (container *Container) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		root := newDirEntry(".")
		root.entries = make([]fs.DirEntry, len(container.entries))
		for i, e := range container.entries {
			root.entries[i] = e
		}
		return root, nil
	}
	id, err := strconv.Atoi(name)
	if err != nil || strconv.Itoa(id) != name {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	sr, err := container.Resource(id)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: errors.Join(fs.ErrNotExist, err)}
	}
	return &openedFile{entry: container.entries[id], SectionReader: sr}, nil
}
