package client

import (
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	return newClient(Config{Logger: log.New(io.Discard, "", 0)})
}

func TestInterpRatioBounds(t *testing.T) {
	s := testClient(t).state
	s.msgTimes = [2]time.Duration{200 * time.Millisecond, 100 * time.Millisecond}

	s.time = 150 * time.Millisecond
	s.updateInterpRatio(false)
	if s.lerpFactor < 0 || s.lerpFactor > 1 {
		t.Fatalf("lerpFactor = %v, out of [0,1]", s.lerpFactor)
	}
	if s.lerpFactor != 0.5 {
		t.Fatalf("lerpFactor = %v, want 0.5", s.lerpFactor)
	}

	// Client clock behind the window: clamp to the old snapshot.
	s.time = 50 * time.Millisecond
	s.updateInterpRatio(false)
	if s.lerpFactor != 0 {
		t.Errorf("behind window: lerpFactor = %v, want 0", s.lerpFactor)
	}
	if s.time != s.msgTimes[1] {
		t.Errorf("behind window: time = %v, want %v", s.time, s.msgTimes[1])
	}

	// Ahead of the window: clamp to the new snapshot.
	s.time = 500 * time.Millisecond
	s.updateInterpRatio(false)
	if s.lerpFactor != 1 {
		t.Errorf("ahead of window: lerpFactor = %v, want 1", s.lerpFactor)
	}
	if s.time != s.msgTimes[0] {
		t.Errorf("ahead of window: time = %v, want %v", s.time, s.msgTimes[0])
	}
}

func TestInterpRatioZeroDeltaSnaps(t *testing.T) {
	s := testClient(t).state
	s.msgTimes = [2]time.Duration{300 * time.Millisecond, 300 * time.Millisecond}
	s.time = 250 * time.Millisecond

	s.updateInterpRatio(false)
	if s.lerpFactor != 1 {
		t.Errorf("lerpFactor = %v, want 1", s.lerpFactor)
	}
	if s.time != 300*time.Millisecond {
		t.Errorf("time = %v, want 300ms", s.time)
	}
}

func TestInterpRatioServerStallCapped(t *testing.T) {
	s := testClient(t).state
	s.msgTimes = [2]time.Duration{time.Second, 100 * time.Millisecond}
	s.time = 950 * time.Millisecond

	s.updateInterpRatio(false)
	if s.msgTimes[1] != 900*time.Millisecond {
		t.Errorf("msgTimes[1] = %v, want 900ms", s.msgTimes[1])
	}
	if s.lerpFactor != 0.5 {
		t.Errorf("lerpFactor = %v, want 0.5", s.lerpFactor)
	}
}

func TestInterpRatioNoLerp(t *testing.T) {
	s := testClient(t).state
	s.msgTimes = [2]time.Duration{200 * time.Millisecond, 100 * time.Millisecond}
	s.time = 120 * time.Millisecond

	s.updateInterpRatio(true)
	if s.lerpFactor != 1 || s.time != 200*time.Millisecond {
		t.Fatalf("nolerp: lerpFactor=%v time=%v", s.lerpFactor, s.time)
	}
}

// applySnapshot pushes one entity update as part of a new server snapshot.
func applySnapshot(t *testing.T, s *ClientState, serverTime time.Duration, u protocol.EntityUpdate) {
	t.Helper()
	s.shiftMessageTimes(serverTime)
	if err := s.applyUpdate(&u); err != nil {
		t.Fatalf("applyUpdate: %v", err)
	}
}

func TestEntityFreedWhenDropped(t *testing.T) {
	s := testClient(t).state

	applySnapshot(t, s, 100*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel,
		ModelID:  3,
	})
	s.time = 100 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()
	if !s.entities[1].alive() {
		t.Fatalf("entity freed too early")
	}

	// Next snapshot arrives without an update for entity 1.
	s.shiftMessageTimes(200 * time.Millisecond)
	s.time = 200 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()
	if s.entities[1].alive() {
		t.Fatalf("stale entity still alive after sweep")
	}
}

func TestEntityLerpBetweenSnapshots(t *testing.T) {
	s := testClient(t).state

	applySnapshot(t, s, 100*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel | protocol.UOrigin1,
		ModelID:  3,
		Origin:   qmath.V3(0, 0, 0),
	})
	s.time = 100 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()

	applySnapshot(t, s, 200*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel | protocol.UOrigin1,
		ModelID:  3,
		Origin:   qmath.V3(10, 0, 0),
	})
	s.time = 150 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()

	if got := s.entities[1].Origin[0]; got != 5 {
		t.Fatalf("lerped origin x = %v, want 5", got)
	}
}

func TestEntityTeleportSnaps(t *testing.T) {
	s := testClient(t).state

	applySnapshot(t, s, 100*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel | protocol.UOrigin1,
		ModelID:  3,
	})
	s.time = 100 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()

	// 101 units in one snapshot is past the teleport threshold.
	applySnapshot(t, s, 200*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel | protocol.UOrigin1,
		ModelID:  3,
		Origin:   qmath.V3(101, 0, 0),
	})
	s.time = 150 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()

	if got := s.entities[1].Origin[0]; got != 101 {
		t.Fatalf("teleport origin x = %v, want snap to 101", got)
	}
}

func TestEntityAngleWraparound(t *testing.T) {
	s := testClient(t).state

	applySnapshot(t, s, 100*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel | protocol.UAngle2,
		ModelID:  3,
		Angles:   qmath.V3(0, 350, 0),
	})
	s.time = 100 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()

	applySnapshot(t, s, 200*time.Millisecond, protocol.EntityUpdate{
		EntityID: 1,
		Bits:     protocol.UModel | protocol.UAngle2,
		ModelID:  3,
		Angles:   qmath.V3(0, 5, 0),
	})
	s.time = 150 * time.Millisecond
	s.updateInterpRatio(false)
	s.updateEntities()

	got := s.entities[1].Angles[1]
	if got < 357 || got > 358 {
		t.Fatalf("wrapped yaw = %v, want ~357.5", got)
	}
}

func TestSpawnEntityGapFill(t *testing.T) {
	s := testClient(t).state

	if err := s.spawnEntity(5, protocol.EntityBaseline{ModelID: 2}); err != nil {
		t.Fatalf("spawnEntity: %v", err)
	}
	if len(s.entities) != 6 {
		t.Fatalf("arena length = %d, want 6", len(s.entities))
	}
	for i := 1; i < 5; i++ {
		if s.entities[i].alive() {
			t.Errorf("gap slot %d is live", i)
		}
	}
	if !s.entities[5].alive() {
		t.Fatalf("spawned entity not live")
	}

	err := s.spawnEntity(5, protocol.EntityBaseline{ModelID: 3})
	var exists *EntityExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("duplicate spawn: err = %v, want EntityExistsError", err)
	}
}

func TestStaticEntityCap(t *testing.T) {
	s := testClient(t).state

	for i := 0; i < MaxStaticEntities; i++ {
		if err := s.spawnStaticEntity(protocol.EntityBaseline{ModelID: 1}); err != nil {
			t.Fatalf("spawn %d: %v", i, err)
		}
	}
	err := s.spawnStaticEntity(protocol.EntityBaseline{ModelID: 1})
	if !errors.Is(err, ErrTooManyStaticEntities) {
		t.Fatalf("over cap: err = %v", err)
	}
	if !recoverable(err) {
		t.Fatalf("static cap overrun should be recoverable")
	}
	if len(s.staticEntities) != MaxStaticEntities {
		t.Fatalf("cap breached: %d statics", len(s.staticEntities))
	}
}

func TestItemPickupTimes(t *testing.T) {
	s := testClient(t).state
	s.time = 5 * time.Second

	s.setItems(protocol.ItemQuad)
	if got := s.itemGetTimes[22]; got != 5*time.Second {
		t.Fatalf("quad pickup time = %v, want 5s", got)
	}

	// Still holding it later: the timestamp must not refresh.
	s.time = 9 * time.Second
	s.setItems(protocol.ItemQuad)
	if got := s.itemGetTimes[22]; got != 5*time.Second {
		t.Fatalf("held item re-stamped: %v", got)
	}

	// Dropping and regaining does refresh.
	s.setItems(0)
	s.time = 12 * time.Second
	s.setItems(protocol.ItemQuad)
	if got := s.itemGetTimes[22]; got != 12*time.Second {
		t.Fatalf("regained item time = %v, want 12s", got)
	}
}

func TestLightstyleValue(t *testing.T) {
	s := testClient(t).state

	_, err := s.lightstyleValue(3)
	var missing *NoSuchLightstyleError
	if !errors.As(err, &missing) {
		t.Fatalf("missing style: err = %v", err)
	}
	if !recoverable(err) {
		t.Fatalf("missing lightstyle should be recoverable")
	}

	s.setLightstyle(3, "am")
	s.time = 0
	v, err := s.lightstyleValue(3)
	if err != nil {
		t.Fatal(err)
	}
	if v != 0 {
		t.Errorf("frame 0 value = %v, want 0 ('a')", v)
	}
	s.time = 100 * time.Millisecond
	v, _ = s.lightstyleValue(3)
	if v != 1 {
		t.Errorf("frame 1 value = %v, want 1 ('m')", v)
	}

	s.setLightstyle(4, "")
	v, err = s.lightstyleValue(4)
	if err != nil || v != 1 {
		t.Errorf("empty pattern: v=%v err=%v, want steady 1", v, err)
	}
}

func TestSoundReferentialErrors(t *testing.T) {
	s := testClient(t).state
	s.sounds = nil

	err := s.startSound(&protocol.Sound{SoundID: 1, EntityID: 0})
	var noSound *NoSuchSoundError
	if !errors.As(err, &noSound) {
		t.Fatalf("missing precache: err = %v", err)
	}
	if !recoverable(err) {
		t.Fatalf("missing sound should be recoverable")
	}
}
