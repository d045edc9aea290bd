package client

import (
	"time"

	"github.com/devops-utils/richter/internal/qmath"
)

const (
	MaxBeams = 24

	beamLifetime      = 200 * time.Millisecond
	beamSegmentLength = 30.0
)

// Beam is one lightning bolt. Beams owned by an entity are refreshed in
// place when the owner fires again, so a held lightning gun is one beam,
// not a trail of them.
type Beam struct {
	OwnerID int
	ModelID int
	Start   qmath.Vec3
	End     qmath.Vec3
	expire  time.Duration
}

func (b *Beam) live(now time.Duration) bool {
	return b != nil && now < b.expire
}

// Beams is the fixed beam table.
type Beams struct {
	slots [MaxBeams]*Beam
}

// Spawn inserts or refreshes a beam. A nonzero ownerID first looks for an
// existing beam with the same owner and overwrites it. Otherwise the first
// free or expired slot is used. Returns false when the table is full; the
// beam is dropped and the caller logs it.
func (bs *Beams) Spawn(now time.Duration, ownerID, modelID int, start, end qmath.Vec3) bool {
	beam := &Beam{
		OwnerID: ownerID,
		ModelID: modelID,
		Start:   start,
		End:     end,
		expire:  now + beamLifetime,
	}
	if ownerID != 0 {
		for i, b := range bs.slots {
			if b != nil && b.OwnerID == ownerID {
				bs.slots[i] = beam
				return true
			}
		}
	}
	for i, b := range bs.slots {
		if !b.live(now) {
			bs.slots[i] = beam
			return true
		}
	}
	return false
}

// Visit calls fn for every beam still within its lifetime.
func (bs *Beams) Visit(now time.Duration, fn func(b *Beam)) {
	for _, b := range bs.slots {
		if b.live(now) {
			fn(b)
		}
	}
}

// Clear drops all beams, used on level change.
func (bs *Beams) Clear() {
	for i := range bs.slots {
		bs.slots[i] = nil
	}
}

func (bs *Beams) liveCount(now time.Duration) int {
	n := 0
	for _, b := range bs.slots {
		if b.live(now) {
			n++
		}
	}
	return n
}
