package sound

import (
	"log"

	"github.com/devops-utils/richter/internal/qmath"
)

// StaticSound is an ambient looping emitter placed at level load.
type StaticSound struct {
	origin   qmath.Vec3
	playback Playback
}

// NewStaticSound starts an ambient loop at a fixed position.
func NewStaticSound(backend Backend, logger *log.Logger, s Sample, origin qmath.Vec3, volume, attenuation float32, listener *Listener) (*StaticSound, error) {
	playback, err := backend.PlayLooping(s, origin, volume, attenuation, listener)
	if err != nil {
		if logger != nil {
			logger.Printf("static sound %s: %v", s.Name, err)
		}
		return nil, err
	}
	return &StaticSound{origin: origin, playback: playback}, nil
}

// Update respatializes for a moved listener.
func (s *StaticSound) Update(listener *Listener) {
	s.playback.Update(s.origin, listener)
}

// Stop silences the emitter (level teardown).
func (s *StaticSound) Stop() { s.playback.Stop() }
