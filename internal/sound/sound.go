// Package sound implements the bounded playback-channel pool and listener
// spatialization bookkeeping. Actual decoding and mixing are delegated to a
// Backend supplied by the host application.
package sound

import (
	"fmt"
	"io"

	"github.com/devops-utils/richter/internal/qmath"
	"github.com/devops-utils/richter/internal/vfs"
)

// Sample is one precached sound: the raw file bytes plus the virtual path
// they came from. Backends decode it however they like.
type Sample struct {
	Name string
	Data []byte
}

// LoadSample reads a sound file from the content stack. Names are relative
// to the sound/ tree like the precache list sent by the server.
func LoadSample(fs *vfs.Vfs, name string) (Sample, error) {
	f, err := fs.Open("sound/" + name)
	if err != nil {
		return Sample{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return Sample{}, fmt.Errorf("sound %s: %w", name, err)
	}
	return Sample{Name: name, Data: data}, nil
}

// Playback is one live sound instance owned by a channel slot.
type Playback interface {
	// InUse reports whether the sound is still audible. Finished playbacks
	// are reclaimed opportunistically by the allocator.
	InUse() bool
	Stop()
	// Update respatializes for a moved emitter or listener.
	Update(origin qmath.Vec3, listener *Listener)
}

// Backend starts playbacks. Implementations live with the host application;
// NullBackend stands in when no audio device exists (demo verification,
// tests, headless runs).
type Backend interface {
	Play(s Sample, origin qmath.Vec3, volume, attenuation float32, listener *Listener) (Playback, error)
	// PlayLooping starts an ambient sound that repeats until stopped.
	PlayLooping(s Sample, origin qmath.Vec3, volume, attenuation float32, listener *Listener) (Playback, error)
}

// NullBackend discards all playbacks immediately.
type NullBackend struct{}

func (NullBackend) Play(Sample, qmath.Vec3, float32, float32, *Listener) (Playback, error) {
	return nullPlayback{}, nil
}

func (NullBackend) PlayLooping(Sample, qmath.Vec3, float32, float32, *Listener) (Playback, error) {
	return nullPlayback{}, nil
}

type nullPlayback struct{}

func (nullPlayback) InUse() bool                   { return false }
func (nullPlayback) Stop()                         {}
func (nullPlayback) Update(qmath.Vec3, *Listener)  {}
