package client

import (
	"math"
	"math/rand"
	"time"

	"github.com/devops-utils/richter/internal/qmath"
)

const MaxParticles = 2048

// Color ramps indexed into the Quake palette. Fire and explosion particles
// walk a ramp instead of keeping a fixed color.
var (
	rampExplosion1 = [8]int{0x6f, 0x6d, 0x6b, 0x69, 0x67, 0x65, 0x63, 0x61}
	rampExplosion2 = [8]int{0x6f, 0x6e, 0x6d, 0x6c, 0x6b, 0x6a, 0x68, 0x66}
	rampFire       = [6]int{0x6d, 0x6b, 0x06, 0x05, 0x04, 0x03}
)

type particleKind int

const (
	particleStatic particleKind = iota
	particleGrav
	particleSlowGrav
	particleFire
	particleExplode
	particleExplode2
	particleBlob
	particleBlob2
)

// Particle is a point effect with palette color and simple ballistics.
type Particle struct {
	Origin   qmath.Vec3
	Velocity qmath.Vec3
	Color    int

	kind   particleKind
	ramp   float32
	expire time.Duration
}

// TrailKind selects the particle trail left behind a moving entity.
type TrailKind int

const (
	TrailRocket TrailKind = iota
	TrailSmoke
	TrailBlood
	TrailBloodSlight
	TrailTracerGreen
	TrailTracerRed
	TrailVore
)

// Particles is a bounded arena. Spawns past the cap are dropped silently;
// particles are cosmetic and the cap exists to bound frame cost.
type Particles struct {
	live []Particle
	rng  *rand.Rand

	// tracerCount alternates tracer particle placement left and right of
	// the flight path.
	tracerCount int
}

func NewParticles() *Particles {
	return &Particles{
		live: make([]Particle, 0, MaxParticles),
		rng:  rand.New(rand.NewSource(rand.Int63())),
	}
}

func (ps *Particles) spawn(p Particle) {
	if len(ps.live) >= MaxParticles {
		return
	}
	ps.live = append(ps.live, p)
}

func (ps *Particles) Len() int { return len(ps.live) }

// Visit calls fn for every live particle.
func (ps *Particles) Visit(fn func(p *Particle)) {
	for i := range ps.live {
		fn(&ps.live[i])
	}
}

// Clear drops all particles, used on level change.
func (ps *Particles) Clear() {
	ps.live = ps.live[:0]
}

// CreateEntityField rings an entity with the bright-field sparkle dome.
func (ps *Particles) CreateEntityField(now time.Duration, org qmath.Vec3) {
	const dist = 64
	for i := 0; i < 162; i++ {
		yaw := float64(i) * 2 * math.Pi / 162
		pitch := float64(i%18) * math.Pi / 18
		dir := qmath.V3(
			float32(math.Cos(pitch)*math.Cos(yaw)),
			float32(math.Cos(pitch)*math.Sin(yaw)),
			float32(math.Sin(pitch)),
		)
		p := Particle{
			Color:  int(0x6f),
			kind:   particleExplode,
			expire: now + 10*time.Millisecond,
		}
		p.Origin = org.Add(dir.Scale(dist))
		p.Velocity = dir.Scale(16)
		ps.spawn(p)
	}
}

// CreateExplosion fills a sphere around org with two interleaved ramp kinds.
func (ps *Particles) CreateExplosion(now time.Duration, org qmath.Vec3) {
	for i := 0; i < 1024; i++ {
		p := Particle{
			Color:  rampExplosion1[0],
			ramp:   float32(ps.rng.Intn(4)),
			expire: now + 5*time.Second,
		}
		if i&1 == 0 {
			p.kind = particleExplode
		} else {
			p.kind = particleExplode2
		}
		for j := 0; j < 3; j++ {
			p.Origin[j] = org[j] + float32(ps.rng.Intn(32)-16)
			p.Velocity[j] = float32(ps.rng.Intn(512) - 256)
		}
		ps.spawn(p)
	}
}

// CreateColorExplosion is the ramped explosion variant: colors cycle through
// a contiguous palette run starting at colorStart.
func (ps *Particles) CreateColorExplosion(now time.Duration, org qmath.Vec3, colorStart, colorLength int) {
	if colorLength <= 0 {
		colorLength = 1
	}
	for i := 0; i < 512; i++ {
		p := Particle{
			Color:  colorStart + i%colorLength,
			kind:   particleBlob,
			expire: now + 300*time.Millisecond,
		}
		for j := 0; j < 3; j++ {
			p.Origin[j] = org[j] + float32(ps.rng.Intn(32)-16)
			p.Velocity[j] = float32(ps.rng.Intn(512) - 256)
		}
		ps.spawn(p)
	}
}

// CreateBlobExplosion is the tarbaby death effect: a slow purple-green
// blob of particles that collapses under gravity.
func (ps *Particles) CreateBlobExplosion(now time.Duration, org qmath.Vec3) {
	for i := 0; i < 1024; i++ {
		p := Particle{
			expire: now + time.Second + time.Duration(ps.rng.Intn(8))*50*time.Millisecond,
		}
		if i&1 == 0 {
			p.kind = particleBlob
			p.Color = 66 + ps.rng.Intn(6)
		} else {
			p.kind = particleBlob2
			p.Color = 150 + ps.rng.Intn(6)
		}
		for j := 0; j < 3; j++ {
			p.Origin[j] = org[j] + float32(ps.rng.Intn(32)-16)
			p.Velocity[j] = float32(ps.rng.Intn(512) - 256)
		}
		ps.spawn(p)
	}
}

// CreateProjectileImpact scatters count particles around an impact point.
// The low three bits of the palette color are randomized per particle.
func (ps *Particles) CreateProjectileImpact(now time.Duration, org, dir qmath.Vec3, color, count int) {
	for i := 0; i < count; i++ {
		p := Particle{
			Color:  (color &^ 7) + ps.rng.Intn(8),
			kind:   particleSlowGrav,
			expire: now + time.Duration(ps.rng.Intn(5))*100*time.Millisecond,
		}
		for j := 0; j < 3; j++ {
			p.Origin[j] = org[j] + float32(ps.rng.Intn(16)-8)
			p.Velocity[j] = dir[j] * 15
		}
		ps.spawn(p)
	}
}

// CreateLavaSplash sprays a slow dome of lava-colored particles.
func (ps *Particles) CreateLavaSplash(now time.Duration, org qmath.Vec3) {
	for i := -16; i < 16; i++ {
		for j := -16; j < 16; j++ {
			dir := qmath.V3(float32(j*8+ps.rng.Intn(8)), float32(i*8+ps.rng.Intn(8)), 256)
			p := Particle{
				Color:  224 + ps.rng.Intn(8),
				kind:   particleSlowGrav,
				expire: now + 2*time.Second + time.Duration(ps.rng.Intn(32))*20*time.Millisecond,
			}
			vel := float32(50 + ps.rng.Intn(64))
			n := dir.Normalize()
			p.Origin = qmath.V3(org[0]+dir[0], org[1]+dir[1], org[2]+float32(ps.rng.Intn(64)))
			p.Velocity = n.Scale(vel)
			ps.spawn(p)
		}
	}
}

// CreateTeleportWarp fills a column of sparkle particles at a teleporter.
func (ps *Particles) CreateTeleportWarp(now time.Duration, org qmath.Vec3) {
	for i := -16; i < 16; i += 4 {
		for j := -16; j < 16; j += 4 {
			for k := -24; k < 32; k += 4 {
				dir := qmath.V3(float32(j*8), float32(i*8), float32(k*8)).Normalize()
				p := Particle{
					Color:  7 + ps.rng.Intn(8),
					kind:   particleSlowGrav,
					expire: now + 200*time.Millisecond + time.Duration(ps.rng.Intn(8))*20*time.Millisecond,
				}
				p.Origin = qmath.V3(
					org[0]+float32(i)+float32(ps.rng.Intn(4)),
					org[1]+float32(j)+float32(ps.rng.Intn(4)),
					org[2]+float32(k)+float32(ps.rng.Intn(4)),
				)
				p.Velocity = dir.Scale(float32(50 + ps.rng.Intn(64)))
				ps.spawn(p)
			}
		}
	}
}

// CreateTrail lays particles along the displacement from start to end. The
// caller passes the entity's pre-update origin as start so the trail covers
// the distance moved this snapshot.
func (ps *Particles) CreateTrail(now time.Duration, start, end qmath.Vec3, kind TrailKind) {
	delta := end.Sub(start)
	length := delta.Len()
	if length <= 0 {
		return
	}
	step := float32(3)
	if kind == TrailBloodSlight {
		step = 6
	}
	dir := delta.Scale(step / length)
	org := start
	for remaining := length; remaining > 0; remaining -= step {
		p := Particle{expire: now + 2*time.Second}
		switch kind {
		case TrailRocket:
			p.ramp = float32(ps.rng.Intn(4))
			p.Color = rampFire[int(p.ramp)]
			p.kind = particleFire
			for j := 0; j < 3; j++ {
				p.Origin[j] = org[j] + float32(ps.rng.Intn(6)-3)
			}
		case TrailSmoke:
			p.ramp = float32(ps.rng.Intn(4) + 2)
			p.Color = rampFire[int(p.ramp)]
			p.kind = particleFire
			for j := 0; j < 3; j++ {
				p.Origin[j] = org[j] + float32(ps.rng.Intn(6)-3)
			}
		case TrailBlood, TrailBloodSlight:
			p.kind = particleGrav
			p.Color = 67 + ps.rng.Intn(4)
			for j := 0; j < 3; j++ {
				p.Origin[j] = org[j] + float32(ps.rng.Intn(6)-3)
			}
		case TrailTracerGreen, TrailTracerRed:
			p.expire = now + 500*time.Millisecond
			p.kind = particleStatic
			if kind == TrailTracerGreen {
				p.Color = 52 + ((ps.tracerCount & 4) << 1)
			} else {
				p.Color = 230 + ((ps.tracerCount & 4) << 1)
			}
			ps.tracerCount++
			p.Origin = org
			if ps.tracerCount&1 == 0 {
				p.Velocity = qmath.V3(30*dir[1]/step, -30*dir[0]/step, 0)
			} else {
				p.Velocity = qmath.V3(-30*dir[1]/step, 30*dir[0]/step, 0)
			}
		case TrailVore:
			p.expire = now + 300*time.Millisecond
			p.kind = particleStatic
			p.Color = 9*16 + 8 + ps.rng.Intn(4)
			for j := 0; j < 3; j++ {
				p.Origin[j] = org[j] + float32(ps.rng.Intn(16)-8)
			}
		}
		ps.spawn(p)
		org = org.Add(dir)
	}
}

// Update integrates particle motion and retires expired particles. gravity
// is the sv_gravity cvar value.
func (ps *Particles) Update(now time.Duration, frameTime time.Duration, gravity float32) {
	ft := float32(frameTime.Seconds())
	grav := ft * gravity * 0.05
	dvel := 4 * ft

	n := 0
	for i := range ps.live {
		p := &ps.live[i]
		if now >= p.expire {
			continue
		}
		p.Origin = p.Origin.Add(p.Velocity.Scale(ft))

		switch p.kind {
		case particleStatic:
		case particleFire:
			p.ramp += ft * 5
			if p.ramp >= 6 {
				continue
			}
			p.Color = rampFire[int(p.ramp)]
			p.Velocity[2] += grav
		case particleExplode:
			p.ramp += ft * 10
			if p.ramp >= 8 {
				continue
			}
			p.Color = rampExplosion1[int(p.ramp)]
			for j := 0; j < 3; j++ {
				p.Velocity[j] += p.Velocity[j] * dvel
			}
			p.Velocity[2] -= grav
		case particleExplode2:
			p.ramp += ft * 15
			if p.ramp >= 8 {
				continue
			}
			p.Color = rampExplosion2[int(p.ramp)]
			for j := 0; j < 3; j++ {
				p.Velocity[j] -= p.Velocity[j] * ft
			}
			p.Velocity[2] -= grav
		case particleBlob:
			for j := 0; j < 3; j++ {
				p.Velocity[j] += p.Velocity[j] * dvel
			}
			p.Velocity[2] -= grav
		case particleBlob2:
			for j := 0; j < 2; j++ {
				p.Velocity[j] -= p.Velocity[j] * dvel
			}
			p.Velocity[2] -= grav
		case particleGrav, particleSlowGrav:
			p.Velocity[2] -= grav
		}

		ps.live[n] = *p
		n++
	}
	ps.live = ps.live[:n]
}
