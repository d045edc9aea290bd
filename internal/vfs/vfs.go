// Package vfs resolves virtual game paths against a stack of content
// sources: loose directories and PACK archives. Later-registered sources
// shadow earlier ones.
package vfs

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// File is a read-only random-access view of one virtual file.
type File interface {
	io.Reader
	io.ReaderAt
	io.Seeker
	io.Closer
}

type source interface {
	open(virtualPath string) (File, error)
}

type Vfs struct {
	sources []source
}

func New() *Vfs { return &Vfs{} }

// AddDirectory registers a loose directory as a content source.
func (v *Vfs) AddDirectory(path string) {
	v.sources = append(v.sources, dirSource(path))
}

// AddArchive registers a PACK archive. The directory is read eagerly so later
// opens are cheap.
func (v *Vfs) AddArchive(path string) error {
	pak, err := openPak(path)
	if err != nil {
		return fmt.Errorf("archive %s: %w", path, err)
	}
	v.sources = append(v.sources, pak)
	return nil
}

// Open resolves a virtual path. Sources are searched newest-first so the
// last-registered source wins.
func (v *Vfs) Open(virtualPath string) (File, error) {
	for i := len(v.sources) - 1; i >= 0; i-- {
		if f, err := v.sources[i].open(virtualPath); err == nil {
			return f, nil
		}
	}
	return nil, &NoSuchFileError{Path: virtualPath}
}

// ReadAll is a convenience for loaders that want the whole file.
func (v *Vfs) ReadAll(virtualPath string) ([]byte, error) {
	f, err := v.Open(virtualPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// NoSuchFileError reports a path present in no registered source.
type NoSuchFileError struct {
	Path string
}

func (e *NoSuchFileError) Error() string {
	return fmt.Sprintf("vfs: file does not exist: %s", e.Path)
}

type dirSource string

func (d dirSource) open(virtualPath string) (File, error) {
	return os.Open(filepath.Join(string(d), filepath.FromSlash(virtualPath)))
}

// memFile serves archive entries already held in memory.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }
