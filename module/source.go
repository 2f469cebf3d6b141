package module

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/wippyai/wasm-bootstrap/errors"
)

// Source provides the raw bytes of a binary module.
type Source interface {
	// Name identifies the module, usually its file name.
	Name() string
	// Locate returns the module bytes.
	Locate(ctx context.Context) ([]byte, error)
}

type fileSource struct {
	path string
}

// File returns a Source reading the module from the local filesystem.
func File(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Name() string {
	return filepath.Base(s.path)
}

func (s *fileSource) Locate(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(s.Name(), err)
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, locateError(s.Name(), err)
	}
	return data, nil
}

type fsSource struct {
	fsys fs.FS
	name string
}

// FS returns a Source reading the module from fsys, e.g. an embed.FS.
func FS(fsys fs.FS, name string) Source {
	return &fsSource{fsys: fsys, name: name}
}

func (s *fsSource) Name() string {
	return path.Base(s.name)
}

func (s *fsSource) Locate(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Canceled(s.Name(), err)
	}
	data, err := fs.ReadFile(s.fsys, s.name)
	if err != nil {
		return nil, locateError(s.Name(), err)
	}
	return data, nil
}

type bytesSource struct {
	name string
	data []byte
}

// Bytes returns a Source over an in-memory module.
func Bytes(name string, data []byte) Source {
	return &bytesSource{name: name, data: data}
}

func (s *bytesSource) Name() string {
	return s.name
}

func (s *bytesSource) Locate(context.Context) ([]byte, error) {
	return s.data, nil
}

func locateError(name string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.NotFound(name, err)
	}
	return errors.Locate(name, err)
}
