// Package model holds the client-side model precache: per-model metadata the
// reconstruction layer needs (effect flags, submodel expansion, sync type).
// Geometry and textures belong to the renderer and are not loaded here.
package model

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/devops-utils/richter/internal/vfs"
)

type Kind int

const (
	KindNone Kind = iota
	KindBrush
	KindAlias
	KindSprite
)

// Flags mirror the alias-model header flag word. They select motion trails
// and the auto-rotate override during interpolation.
type Flags uint32

const (
	FlagRocket  Flags = 1 << 0
	FlagGrenade Flags = 1 << 1
	FlagGib     Flags = 1 << 2
	FlagRotate  Flags = 1 << 3
	FlagTracer  Flags = 1 << 4
	FlagZomGib  Flags = 1 << 5
	FlagTracer2 Flags = 1 << 6
	FlagTracer3 Flags = 1 << 7
)

// SyncType controls animation phase: synced models share a global clock,
// rand models offset it per entity.
type SyncType int

const (
	SyncSync SyncType = iota
	SyncRand
)

type Model struct {
	Name       string
	Kind       Kind
	Flags      Flags
	FrameCount int
	SyncType   SyncType
}

// None is the placeholder occupying precache slot 0; entities pointing at it
// are tombstones.
func None() Model { return Model{Kind: KindNone} }

func (m *Model) HasFlag(f Flags) bool { return m.Flags&f != 0 }

// Load reads just enough of the model header to fill in metadata. Brush
// models are returned as a list: the world model plus one entry per
// submodel, named "*1".."*n" as referenced by entity baselines.
func Load(fs *vfs.Vfs, name string) ([]Model, error) {
	switch {
	case strings.HasSuffix(name, ".bsp"):
		return loadBrush(fs, name)
	case strings.HasSuffix(name, ".mdl"):
		m, err := loadAlias(fs, name)
		if err != nil {
			return nil, err
		}
		return []Model{m}, nil
	case strings.HasSuffix(name, ".spr"):
		return []Model{{Name: name, Kind: KindSprite}}, nil
	default:
		// unknown extension: track the name so ids stay aligned
		return []Model{{Name: name, Kind: KindNone}}, nil
	}
}

const (
	bspVersion    = 29
	bspLumpModels = 14
	bspLumpCount  = 15
	bspModelSize  = 64
)

func loadBrush(fs *vfs.Vfs, name string) ([]Model, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// version plus the lump directory
	header := make([]byte, 4+bspLumpCount*8)
	if _, err := f.ReadAt(header, 0); err != nil {
		return nil, fmt.Errorf("model %s: %w", name, err)
	}
	if v := int32(binary.LittleEndian.Uint32(header[0:])); v != bspVersion {
		return nil, fmt.Errorf("model %s: unsupported bsp version %d", name, v)
	}

	lumpLen := binary.LittleEndian.Uint32(header[4+bspLumpModels*8+4:])
	count := int(lumpLen) / bspModelSize
	if count < 1 {
		return nil, fmt.Errorf("model %s: bsp has no models", name)
	}

	models := make([]Model, 0, count)
	models = append(models, Model{Name: name, Kind: KindBrush})
	for i := 1; i < count; i++ {
		models = append(models, Model{Name: fmt.Sprintf("*%d", i), Kind: KindBrush})
	}
	return models, nil
}

// Alias header field offsets (little-endian int32/float32 fields after the
// 4-byte "IDPO" ident).
const (
	mdlIdent          = "IDPO"
	mdlVersion        = 6
	mdlFrameCountOff  = 4 + 4 + 12 + 12 + 4 + 12 + 4 + 4 + 4 + 4 + 4
	mdlSyncTypeOff    = mdlFrameCountOff + 4
	mdlFlagsOff       = mdlSyncTypeOff + 4
	mdlHeaderMinBytes = mdlFlagsOff + 4
)

func loadAlias(fs *vfs.Vfs, name string) (Model, error) {
	f, err := fs.Open(name)
	if err != nil {
		return Model{}, err
	}
	defer f.Close()

	header := make([]byte, mdlHeaderMinBytes)
	if _, err := f.ReadAt(header, 0); err != nil {
		return Model{}, fmt.Errorf("model %s: %w", name, err)
	}
	if string(header[:4]) != mdlIdent {
		return Model{}, fmt.Errorf("model %s: bad alias ident", name)
	}
	if v := int32(binary.LittleEndian.Uint32(header[4:])); v != mdlVersion {
		return Model{}, fmt.Errorf("model %s: unsupported alias version %d", name, v)
	}

	m := Model{
		Name:       name,
		Kind:       KindAlias,
		FrameCount: int(binary.LittleEndian.Uint32(header[mdlFrameCountOff:])),
		Flags:      Flags(binary.LittleEndian.Uint32(header[mdlFlagsOff:])),
	}
	if binary.LittleEndian.Uint32(header[mdlSyncTypeOff:]) != 0 {
		m.SyncType = SyncRand
	}
	return m, nil
}
