package sound

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/devops-utils/richter/internal/qmath"
)

// fakePlayback records what the mixer did to it.
type fakePlayback struct {
	name    string
	stopped bool
	origin  qmath.Vec3
	updates int
}

func (p *fakePlayback) InUse() bool { return !p.stopped }
func (p *fakePlayback) Stop()       { p.stopped = true }
func (p *fakePlayback) Update(origin qmath.Vec3, _ *Listener) {
	p.origin = origin
	p.updates++
}

type fakeBackend struct {
	playbacks []*fakePlayback
}

func (b *fakeBackend) Play(s Sample, _ qmath.Vec3, _, _ float32, _ *Listener) (Playback, error) {
	p := &fakePlayback{name: s.Name}
	b.playbacks = append(b.playbacks, p)
	return p, nil
}

func (b *fakeBackend) PlayLooping(s Sample, _ qmath.Vec3, _, _ float32, _ *Listener) (Playback, error) {
	return b.Play(s, qmath.Vec3{}, 0, 0, nil)
}

func (b *fakeBackend) playing() []*fakePlayback {
	var live []*fakePlayback
	for _, p := range b.playbacks {
		if !p.stopped {
			live = append(live, p)
		}
	}
	return live
}

func testMixer() (*Mixer, *fakeBackend) {
	backend := &fakeBackend{}
	return NewMixer(backend, log.New(io.Discard, "", 0)), backend
}

func start(m *Mixer, name string, at time.Duration, entID int, entChannel int8) {
	m.Start(Sample{Name: name}, at, entID, entChannel, qmath.Vec3{}, 1, 1, nil)
}

func TestMixerSupersedesSameEntityChannel(t *testing.T) {
	m, backend := testMixer()

	start(m, "weapons/rocket1.wav", 0, 5, 1)
	start(m, "weapons/rocket2.wav", time.Second, 5, 1)

	live := backend.playing()
	if len(live) != 1 {
		t.Fatalf("live playbacks = %d, want 1 (superseded)", len(live))
	}
	if live[0].name != "weapons/rocket2.wav" {
		t.Fatalf("survivor = %s", live[0].name)
	}
}

func TestMixerChannelZeroNeverSupersedes(t *testing.T) {
	m, backend := testMixer()

	start(m, "misc/a.wav", 0, 5, 0)
	start(m, "misc/b.wav", time.Second, 5, 0)

	if live := backend.playing(); len(live) != 2 {
		t.Fatalf("live playbacks = %d, want 2", len(live))
	}
}

func TestMixerWildcardSupersedesAnyChannel(t *testing.T) {
	m, backend := testMixer()

	start(m, "player/pain.wav", 0, 7, 3)
	start(m, "player/death.wav", time.Second, 7, ChannelAny)

	live := backend.playing()
	if len(live) != 1 || live[0].name != "player/death.wav" {
		t.Fatalf("wildcard did not supersede: %d live", len(live))
	}
}

func TestMixerEvictsOldestWhenFull(t *testing.T) {
	m, backend := testMixer()

	// Distinct entities on channel 0 so nothing supersedes.
	for i := 0; i < MaxChannels; i++ {
		start(m, "ambience/drone.wav", time.Duration(i)*time.Millisecond, i+1, 0)
	}
	if live := backend.playing(); len(live) != MaxChannels {
		t.Fatalf("pool not full: %d live", len(live))
	}

	start(m, "misc/new.wav", time.Second, 500, 0)

	live := backend.playing()
	if len(live) != MaxChannels {
		t.Fatalf("live after eviction = %d", len(live))
	}
	if !backend.playbacks[0].stopped {
		t.Fatal("oldest playback not evicted")
	}
}

func TestMixerReusesFinishedSlots(t *testing.T) {
	m, backend := testMixer()

	for i := 0; i < MaxChannels; i++ {
		start(m, "ambience/drone.wav", time.Duration(i)*time.Millisecond, i+1, 0)
	}
	// Playback 10 finishes on its own.
	backend.playbacks[10].stopped = true

	start(m, "misc/new.wav", time.Second, 500, 0)

	// No live sound was cut: the finished slot was recycled.
	for i, p := range backend.playbacks {
		if i != 10 && p.stopped {
			t.Fatalf("live playback %d was evicted", i)
		}
	}
}

func TestMixerStop(t *testing.T) {
	m, backend := testMixer()

	start(m, "doors/creak.wav", 0, 9, 2)
	m.Stop(9, 2)
	if live := backend.playing(); len(live) != 0 {
		t.Fatalf("live after Stop = %d", len(live))
	}

	// Stopping a sound that does not exist is a no-op.
	m.Stop(9, 2)
	m.Stop(42, 1)
}

func TestMixerStopAll(t *testing.T) {
	m, backend := testMixer()

	start(m, "a.wav", 0, 1, 1)
	start(m, "b.wav", 0, 2, 1)
	start(m, "c.wav", 0, 3, 1)
	m.StopAll()
	if live := backend.playing(); len(live) != 0 {
		t.Fatalf("live after StopAll = %d", len(live))
	}
}

func TestMixerSpatializationFollowsEmitter(t *testing.T) {
	m, backend := testMixer()
	listener := NewListener()

	start(m, "monster/growl.wav", 0, 3, 1)
	m.UpdateSpatialization(func(entID int) qmath.Vec3 {
		if entID != 3 {
			t.Errorf("originOf called with entity %d", entID)
		}
		return qmath.V3(10, 20, 30)
	}, listener)

	p := backend.playbacks[0]
	if p.updates != 1 || p.origin != qmath.V3(10, 20, 30) {
		t.Fatalf("playback not respatialized: updates=%d origin=%v", p.updates, p.origin)
	}
}

func TestListenerEars(t *testing.T) {
	l := NewListener()
	l.Update(qmath.V3(0, 0, 0), 22, 0)

	// Facing +x: the left ear sits at +y, both at eye height.
	left, right := l.LeftEar(), l.RightEar()
	if left[2] != 22 || right[2] != 22 {
		t.Fatalf("ear height = %v / %v, want 22", left[2], right[2])
	}
	if left[1] <= 0 || right[1] >= 0 {
		t.Fatalf("ears not lateral: left=%v right=%v", left, right)
	}
	if got := left.Sub(right).Len(); got < 7.9 || got > 8.1 {
		t.Fatalf("ear spread = %v, want 8", got)
	}
}
