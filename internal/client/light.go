package client

import (
	"time"

	"github.com/devops-utils/richter/internal/qmath"
)

const MaxLights = 32

// LightDesc describes a dynamic light to be inserted into the arena.
type LightDesc struct {
	Origin qmath.Vec3
	// InitRadius is the radius at spawn time in world units.
	InitRadius float32
	// DecayRate shrinks the radius by this many units per second; the light
	// dies early once the radius reaches zero.
	DecayRate float32
	// MinRadius, when positive, floors the visible radius.
	MinRadius float32
	// TTL is how long the light lives past its spawn time.
	TTL time.Duration
	// Owner identifies the effect source holding the slot handle. A keyed
	// refresh only replaces a slot still held by the same owner, so a
	// stale handle cannot clobber a reassigned slot.
	Owner int
}

// Light is one live dynamic light.
type Light struct {
	desc      LightDesc
	spawnedAt time.Duration
}

// Radius returns the decayed radius at the given time, or zero once expired.
func (l *Light) Radius(now time.Duration) float32 {
	age := now - l.spawnedAt
	if age < 0 || age > l.desc.TTL {
		return 0
	}
	r := l.desc.InitRadius - l.desc.DecayRate*float32(age.Seconds())
	if r < l.desc.MinRadius {
		r = l.desc.MinRadius
	}
	if r < 0 {
		r = 0
	}
	return r
}

func (l *Light) Origin() qmath.Vec3 { return l.desc.Origin }

func (l *Light) expired(now time.Duration) bool {
	return now >= l.spawnedAt+l.desc.TTL
}

// Lights is a fixed-capacity arena of dynamic lights. Slots are reused via
// handles so an effect that re-fires every frame (a muzzle flash, a rocket)
// keeps one light alive in place instead of spraying new ones.
type Lights struct {
	slots [MaxLights]Light
	used  [MaxLights]bool
}

// Insert places a light. If key names a slot still in use by the same
// owner, that slot is replaced in place; a stale handle whose slot was
// reassigned falls through to normal allocation. Otherwise the first free
// or expired slot is taken; when the arena is full the light with the
// nearest death time is evicted. Returns the handle for the slot used.
func (ls *Lights) Insert(now time.Duration, desc LightDesc, key int) int {
	if key >= 0 && key < MaxLights && ls.used[key] && ls.slots[key].desc.Owner == desc.Owner {
		ls.slots[key] = Light{desc: desc, spawnedAt: now}
		return key
	}
	slot := -1
	for i := range ls.slots {
		if !ls.used[i] || ls.slots[i].expired(now) {
			slot = i
			break
		}
	}
	if slot < 0 {
		slot = 0
		soonest := ls.slots[0].spawnedAt + ls.slots[0].desc.TTL
		for i := 1; i < MaxLights; i++ {
			deadline := ls.slots[i].spawnedAt + ls.slots[i].desc.TTL
			if deadline < soonest {
				soonest = deadline
				slot = i
			}
		}
	}
	ls.slots[slot] = Light{desc: desc, spawnedAt: now}
	ls.used[slot] = true
	return slot
}

// Update retires expired lights.
func (ls *Lights) Update(now time.Duration) {
	for i := range ls.slots {
		if ls.used[i] && ls.slots[i].expired(now) {
			ls.used[i] = false
		}
	}
}

// Visit calls fn for every live light.
func (ls *Lights) Visit(fn func(handle int, l *Light)) {
	for i := range ls.slots {
		if ls.used[i] {
			fn(i, &ls.slots[i])
		}
	}
}

func (ls *Lights) count() int {
	n := 0
	for _, u := range ls.used {
		if u {
			n++
		}
	}
	return n
}
