package sound

import (
	"log"
	"time"

	"github.com/devops-utils/richter/internal/qmath"
)

// MaxChannels bounds concurrent playback.
const MaxChannels = 128

// ChannelAny matches any entity channel when superseding sounds.
const ChannelAny = -1

type channel struct {
	active     bool
	startTime  time.Duration
	entID      int
	entChannel int8
	playback   Playback
}

// Mixer owns the fixed channel pool. Allocation never fails: when every slot
// holds a live sound, the one with the smallest start time is cut off.
type Mixer struct {
	backend  Backend
	logger   *log.Logger
	channels [MaxChannels]channel
}

func NewMixer(backend Backend, logger *log.Logger) *Mixer {
	if backend == nil {
		backend = NullBackend{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Mixer{backend: backend, logger: logger}
}

// findFreeChannel picks the slot for a new sound:
//   - the first inactive or finished slot wins;
//   - a live sound on the same entity and entity-channel (or the ChannelAny
//     wildcard) is always superseded, regardless of age;
//   - otherwise the oldest-started live sound is evicted.
func (m *Mixer) findFreeChannel(entID int, entChannel int8) int {
	oldest := 0
	for i := range m.channels {
		ch := &m.channels[i]
		if !ch.active {
			return i
		}
		if !ch.playback.InUse() {
			return i
		}

		if entChannel != 0 && ch.entID == entID &&
			(ch.entChannel == entChannel || entChannel == ChannelAny) {
			return i
		}

		if !m.channels[oldest].active || ch.startTime < m.channels[oldest].startTime {
			oldest = i
		}
	}
	return oldest
}

// Start plays a sample on the slot chosen by findFreeChannel, replacing
// whatever occupied it.
func (m *Mixer) Start(s Sample, startTime time.Duration, entID int, entChannel int8, origin qmath.Vec3, volume, attenuation float32, listener *Listener) {
	idx := m.findFreeChannel(entID, entChannel)
	ch := &m.channels[idx]
	if ch.active && ch.playback.InUse() {
		ch.playback.Stop()
	}

	playback, err := m.backend.Play(s, origin, volume, attenuation, listener)
	if err != nil {
		m.logger.Printf("start sound %s: %v", s.Name, err)
		ch.active = false
		return
	}
	*ch = channel{
		active:     true,
		startTime:  startTime,
		entID:      entID,
		entChannel: entChannel,
		playback:   playback,
	}
}

// Stop silences the sound matching the entity and channel, if any.
func (m *Mixer) Stop(entID int, entChannel int8) {
	for i := range m.channels {
		ch := &m.channels[i]
		if ch.active && ch.entID == entID && ch.entChannel == entChannel {
			ch.playback.Stop()
			ch.active = false
			return
		}
	}
}

// StopAll tears down every live channel (disconnect).
func (m *Mixer) StopAll() {
	for i := range m.channels {
		if m.channels[i].active {
			m.channels[i].playback.Stop()
			m.channels[i].active = false
		}
	}
}

// UpdateSpatialization moves every live sound to its emitter's current
// origin. originOf resolves an entity id to a position.
func (m *Mixer) UpdateSpatialization(originOf func(entID int) qmath.Vec3, listener *Listener) {
	for i := range m.channels {
		ch := &m.channels[i]
		if ch.active && ch.playback.InUse() {
			ch.playback.Update(originOf(ch.entID), listener)
		}
	}
}
