package client

import (
	"time"

	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
	"github.com/devops-utils/richter/internal/sound"
)

// effectSounds are the samples tied to temp entities rather than the
// precache list. A pak without one of them just plays silence there.
type effectSounds struct {
	wizHit    sound.Sample
	knightHit sound.Sample
	tink      sound.Sample
	ric       [3]sound.Sample
	explosion sound.Sample
}

func (s *ClientState) loadEffectSounds() {
	load := func(name string) sound.Sample {
		smp, err := sound.LoadSample(s.vfs, name)
		if err != nil {
			s.logger.Printf("effect sound %q unavailable: %v", name, err)
			return sound.Sample{Name: name}
		}
		return smp
	}
	s.fx = effectSounds{
		wizHit:    load("wizard/hit.wav"),
		knightHit: load("hknight/hit.wav"),
		tink:      load("weapons/tink1.wav"),
		ric: [3]sound.Sample{
			load("weapons/ric1.wav"),
			load("weapons/ric2.wav"),
			load("weapons/ric3.wav"),
		},
		explosion: load("weapons/r_exp3.wav"),
	}
}

func (s *ClientState) playEffectSound(smp sound.Sample, origin qmath.Vec3) {
	s.mixer.Start(smp, s.time, -1, 0, origin,
		1, protocol.DefaultAttenuation, &s.listener)
}

// ricochetSound picks the spike impact sample: usually the dull tink,
// occasionally one of three ricochets.
func (s *ClientState) ricochetSound() sound.Sample {
	if s.rng.Intn(5) != 0 {
		return s.fx.tink
	}
	return s.fx.ric[s.rng.Intn(3)]
}

// handleTempEntity turns a transient wire event into particles, lights,
// sounds, or a beam.
func (s *ClientState) handleTempEntity(te *protocol.TempEntity) error {
	if te.Beam != nil {
		return s.spawnBeam(te.Beam)
	}
	p := te.Point

	switch p.Kind {
	case protocol.PointWizSpike:
		s.particles.CreateProjectileImpact(s.time, p.Origin, qmath.Vec3{}, 20, 30)
		s.playEffectSound(s.fx.wizHit, p.Origin)

	case protocol.PointKnightSpike:
		s.particles.CreateProjectileImpact(s.time, p.Origin, qmath.Vec3{}, 226, 20)
		s.playEffectSound(s.fx.knightHit, p.Origin)

	case protocol.PointSpike:
		s.particles.CreateProjectileImpact(s.time, p.Origin, qmath.Vec3{}, 0, 10)
		s.playEffectSound(s.ricochetSound(), p.Origin)

	case protocol.PointSuperSpike:
		s.particles.CreateProjectileImpact(s.time, p.Origin, qmath.Vec3{}, 0, 20)
		s.playEffectSound(s.ricochetSound(), p.Origin)

	case protocol.PointGunshot:
		s.particles.CreateProjectileImpact(s.time, p.Origin, qmath.Vec3{}, 0, 20)

	case protocol.PointExplosion:
		s.particles.CreateExplosion(s.time, p.Origin)
		s.lights.Insert(s.time, LightDesc{
			Origin:     p.Origin,
			InitRadius: 350,
			DecayRate:  300,
			TTL:        500 * time.Millisecond,
		}, -1)
		s.playEffectSound(s.fx.explosion, p.Origin)

	case protocol.PointColorExplosion:
		s.particles.CreateColorExplosion(s.time, p.Origin, int(p.ColorStart), int(p.ColorLen))
		s.lights.Insert(s.time, LightDesc{
			Origin:     p.Origin,
			InitRadius: 350,
			DecayRate:  300,
			TTL:        500 * time.Millisecond,
		}, -1)
		s.playEffectSound(s.fx.explosion, p.Origin)

	case protocol.PointTarExplosion:
		s.particles.CreateBlobExplosion(s.time, p.Origin)
		s.playEffectSound(s.fx.explosion, p.Origin)

	case protocol.PointLavaSplash:
		s.particles.CreateLavaSplash(s.time, p.Origin)

	case protocol.PointTeleport:
		s.particles.CreateTeleportWarp(s.time, p.Origin)
	}
	return nil
}

// spawnBeam resolves the beam's segment model against the precache and
// installs it in the beam table.
func (s *ClientState) spawnBeam(b *protocol.BeamTempEntity) error {
	modelID := s.modelIDByName(b.Kind.ModelName())
	if modelID < 0 {
		s.logger.Printf("beam model %q not precached, drawing unmodeled beam", b.Kind.ModelName())
		modelID = 0
	}
	if !s.beams.Spawn(s.time, int(b.EntityID), modelID, b.Start, b.End) {
		s.logger.Printf("beam table full, dropping beam for entity %d", b.EntityID)
	}
	return nil
}

func (s *ClientState) modelIDByName(name string) int {
	for i := range s.models {
		if s.models[i].Name == name {
			return i
		}
	}
	return -1
}
