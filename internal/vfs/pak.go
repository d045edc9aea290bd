package vfs

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
)

// PACK archive layout: a 12-byte header ("PACK", directory offset, directory
// length) followed by file data, with the directory anywhere in the file.
// Directory entries are 64 bytes: a 56-byte NUL-padded path, offset, length.

const pakEntrySize = 64

var errNotPak = errors.New("vfs: not a PACK archive")

type pakEntry struct {
	offset int64
	length int64
}

type pakSource struct {
	path    string
	entries map[string]pakEntry
}

func openPak(path string) (*pakSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var header struct {
		Magic  [4]byte
		DirOff int32
		DirLen int32
	}
	if err := binary.Read(f, binary.LittleEndian, &header); err != nil {
		return nil, err
	}
	if string(header.Magic[:]) != "PACK" {
		return nil, errNotPak
	}
	if header.DirLen < 0 || header.DirLen%pakEntrySize != 0 {
		return nil, fmt.Errorf("vfs: malformed PACK directory length %d", header.DirLen)
	}

	dir := make([]byte, header.DirLen)
	if _, err := f.ReadAt(dir, int64(header.DirOff)); err != nil {
		return nil, err
	}

	entries := make(map[string]pakEntry, header.DirLen/pakEntrySize)
	for off := 0; off < len(dir); off += pakEntrySize {
		rec := dir[off : off+pakEntrySize]
		name := string(bytes.TrimRight(rec[:56], "\x00"))
		entries[strings.ToLower(name)] = pakEntry{
			offset: int64(binary.LittleEndian.Uint32(rec[56:])),
			length: int64(binary.LittleEndian.Uint32(rec[60:])),
		}
	}

	return &pakSource{path: path, entries: entries}, nil
}

func (p *pakSource) open(virtualPath string) (File, error) {
	entry, ok := p.entries[strings.ToLower(virtualPath)]
	if !ok {
		return nil, &NoSuchFileError{Path: virtualPath}
	}

	f, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data := make([]byte, entry.length)
	if _, err := f.ReadAt(data, entry.offset); err != nil {
		return nil, err
	}
	return memFile{bytes.NewReader(data)}, nil
}
