package datafile

import (
	"io"
	"io/fs"
	"strconv"

	"github.com/cam-per/sludge/sludge/errs"
)

// Source resolves resource ids to files of an fs.FS: id N is the file "N",
// or else the first "N.*" in lexical order. Both a Container and a
// directory of extracted resources work.
type Source struct {
	fsys fs.FS
}

func NewSource(fsys fs.FS) *Source {
	return &Source{fsys: fsys}
}

func (source *Source) Name(id int) (string, error) {
	name := strconv.Itoa(id)
	if _, err := fs.Stat(source.fsys, name); err == nil {
		return name, nil
	}
	matches, err := fs.Glob(source.fsys, name+".*")
	if err != nil {
		return "", errs.Resource(id, err)
	}
	if len(matches) == 0 {
		return "", errs.Resource(id, fs.ErrNotExist)
	}
	return matches[0], nil
}

func (source *Source) Open(id int) (io.ReadCloser, error) {
	if id < 0 {
		return nil, errs.Resource(id, fs.ErrNotExist)
	}
	name, err := source.Name(id)
	if err != nil {
		return nil, err
	}
	f, err := source.fsys.Open(name)
	if err != nil {
		return nil, errs.Resource(id, err)
	}
	return f, nil
}

// ReadAll returns the whole of resource id.
func (source *Source) ReadAll(id int) ([]byte, error) {
	rc, err := source.Open(id)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errs.Resource(id, err)
	}
	return data, nil
}
