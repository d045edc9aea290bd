package client

import (
	"time"

	"github.com/devops-utils/richter/internal/model"
	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
)

// teleportDistance2 is the squared per-snapshot displacement beyond which
// interpolation is abandoned: no entity moves that far in one tick unless
// it teleported.
const teleportDistance2 = 100 * 100

// updateEntities is the per-frame sweep: free stale entities, move the rest
// between their two snapshots, and emit the lights and trails their models
// and effect bits call for.
func (s *ClientState) updateEntities() {
	lf := s.lerpFactor

	obliterate := make([]int, 0)
	for id := 1; id < len(s.entities); id++ {
		ent := &s.entities[id]
		if !ent.alive() {
			continue
		}

		// No update in the newest snapshot means the server dropped this
		// entity.
		if ent.MsgTime != s.msgTimes[0] {
			obliterate = append(obliterate, id)
			continue
		}

		prevOrigin := ent.Origin

		if ent.ForceLink {
			ent.Origin = ent.MsgOrigins[0]
			ent.Angles = ent.MsgAngles[0]
			ent.ForceLink = false
		} else {
			displacement := ent.MsgOrigins[0].Sub(ent.MsgOrigins[1])
			if displacement.Len2() > teleportDistance2 {
				ent.Origin = ent.MsgOrigins[0]
				ent.Angles = ent.MsgAngles[0]
			} else {
				ent.Origin = ent.MsgOrigins[1].Add(displacement.Scale(lf))
				ent.Angles = qmath.LerpAngles(ent.MsgAngles[1], ent.MsgAngles[0], lf)
			}
		}

		mdl := s.modelFor(ent.ModelID)
		if mdl != nil && mdl.HasFlag(model.FlagRotate) {
			ent.Angles[1] = qmath.AngleMod(100 * float32(s.time.Seconds()))
		}

		s.applyEntityEffects(ent, id)
		if mdl != nil {
			s.applyModelTrail(ent, mdl, prevOrigin, id)
		}
	}

	for _, id := range obliterate {
		s.entities[id].free()
	}

	// Static entities carry effect bits too, but only the light half:
	// scenery never emits particle fields.
	for i := range s.staticEntities {
		s.applyEffectLights(&s.staticEntities[i], -(i + 1))
	}

	if s.view.EntityID() > 0 {
		s.velocity = s.msgVelocity[1].Add(s.msgVelocity[0].Sub(s.msgVelocity[1]).Scale(lf))
	}
}

// applyEntityEffects spawns the particles and lights the entity's effect
// bits describe.
func (s *ClientState) applyEntityEffects(ent *Entity, owner int) {
	if ent.Effects&protocol.EffectBrightField != 0 {
		s.particles.CreateEntityField(s.time, ent.Origin)
	}
	s.applyEffectLights(ent, owner)
}

// applyEffectLights handles the light half of the effect bits. The handle
// is kept on the entity so an effect that re-fires every frame keeps one
// arena slot, and the owner key keeps a stale handle from stealing a slot
// reassigned to someone else.
func (s *ClientState) applyEffectLights(ent *Entity, owner int) {
	if ent.Effects&protocol.EffectMuzzleFlash != 0 {
		origin := ent.Origin
		origin[2] += 16
		ent.LightID = s.lights.Insert(s.time, LightDesc{
			Origin:     origin,
			InitRadius: 200 + float32(s.rng.Intn(32)),
			MinRadius:  32,
			TTL:        100 * time.Millisecond,
			Owner:      owner,
		}, ent.LightID)
	}
	if ent.Effects&protocol.EffectBrightLight != 0 {
		ent.LightID = s.lights.Insert(s.time, LightDesc{
			Origin:     ent.Origin,
			InitRadius: 400 + float32(s.rng.Intn(32)),
			TTL:        time.Millisecond,
			Owner:      owner,
		}, ent.LightID)
	}
	if ent.Effects&protocol.EffectDimLight != 0 {
		ent.LightID = s.lights.Insert(s.time, LightDesc{
			Origin:     ent.Origin,
			InitRadius: 200 + float32(s.rng.Intn(32)),
			TTL:        time.Millisecond,
			Owner:      owner,
		}, ent.LightID)
	}
}

// applyModelTrail lays the particle trail the model flags call for, from
// the entity's pre-update origin to its current one.
func (s *ClientState) applyModelTrail(ent *Entity, mdl *model.Model, prevOrigin qmath.Vec3, owner int) {
	switch {
	case mdl.HasFlag(model.FlagRocket):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailRocket)
		ent.LightID = s.lights.Insert(s.time, LightDesc{
			Origin:     ent.Origin,
			InitRadius: 200,
			TTL:        10 * time.Millisecond,
			Owner:      owner,
		}, ent.LightID)
	case mdl.HasFlag(model.FlagGrenade):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailSmoke)
	case mdl.HasFlag(model.FlagGib):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailBlood)
	case mdl.HasFlag(model.FlagZomGib):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailBloodSlight)
	case mdl.HasFlag(model.FlagTracer):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailTracerGreen)
	case mdl.HasFlag(model.FlagTracer2):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailTracerRed)
	case mdl.HasFlag(model.FlagTracer3):
		s.particles.CreateTrail(s.time, prevOrigin, ent.Origin, TrailVore)
	}
}

// updateTempEntities rebuilds the transient render list from the live
// beams: each beam becomes a chain of segment entities with random roll.
func (s *ClientState) updateTempEntities() {
	s.tempEntities = s.tempEntities[:0]

	s.beams.Visit(s.time, func(b *Beam) {
		// A beam fired by the local player follows the player's eye.
		if b.OwnerID != 0 && b.OwnerID == s.view.EntityID() {
			if ent, err := s.entityRef(b.OwnerID); err == nil {
				b.Start = ent.Origin
			}
		}

		delta := b.End.Sub(b.Start)
		var pitch, yaw float32
		if delta.Len2() > 0 {
			angles := qmath.AnglesFromVector(delta)
			pitch, yaw = angles[0], angles[1]
		}

		length := delta.Len()
		dir := qmath.Vec3{}
		if length > 0 {
			dir = delta.Scale(beamSegmentLength / length)
		}
		org := b.Start
		for remaining := length; remaining > 0; remaining -= beamSegmentLength {
			if len(s.tempEntities) >= MaxTempEntities {
				s.logger.Printf("temp entity list full, dropping beam segments")
				return
			}
			ent := newEntity(protocol.EntityBaseline{Origin: org})
			ent.ModelID = b.ModelID
			ent.Angles = qmath.V3(pitch, yaw, float32(s.rng.Intn(360)))
			s.tempEntities = append(s.tempEntities, ent)
			org = org.Add(dir)
		}
	})
}
