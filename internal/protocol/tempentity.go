package protocol

import (
	"github.com/devops-utils/richter/internal/qmath"
)

// PointEntityKind classifies temp entities anchored at a single point.
type PointEntityKind byte

const (
	PointSpike PointEntityKind = iota
	PointSuperSpike
	PointGunshot
	PointExplosion
	PointColorExplosion
	PointTarExplosion
	PointWizSpike
	PointKnightSpike
	PointLavaSplash
	PointTeleport
)

// BeamEntityKind classifies line temp entities between two points.
type BeamEntityKind byte

const (
	BeamLightning1 BeamEntityKind = iota
	BeamLightning2
	BeamLightning3
	BeamGrapple
)

// ModelName returns the precache name of the beam's segment model.
func (k BeamEntityKind) ModelName() string {
	switch k {
	case BeamLightning1:
		return "progs/bolt.mdl"
	case BeamLightning2:
		return "progs/bolt2.mdl"
	case BeamLightning3:
		return "progs/bolt3.mdl"
	default:
		return "progs/beam.mdl"
	}
}

// TempEntity is a transient visual event. Exactly one of Point/Beam is set.
type TempEntity struct {
	Point *PointTempEntity
	Beam  *BeamTempEntity
}

type PointTempEntity struct {
	Kind   PointEntityKind
	Origin qmath.Vec3
	// color ramp start/length, PointColorExplosion only
	ColorStart byte
	ColorLen   byte
}

type BeamTempEntity struct {
	Kind     BeamEntityKind
	EntityID int16
	Start    qmath.Vec3
	End      qmath.Vec3
}

func readTempEntity(r *Reader) (ServerCmd, error) {
	kind, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	point := func(k PointEntityKind) (ServerCmd, error) {
		origin, err := r.ReadCoordVec()
		if err != nil {
			return nil, err
		}
		return TempEntity{Point: &PointTempEntity{Kind: k, Origin: origin}}, nil
	}

	beam := func(k BeamEntityKind) (ServerCmd, error) {
		b := &BeamTempEntity{Kind: k}
		if b.EntityID, err = r.ReadShort(); err != nil {
			return nil, err
		}
		if b.Start, err = r.ReadCoordVec(); err != nil {
			return nil, err
		}
		if b.End, err = r.ReadCoordVec(); err != nil {
			return nil, err
		}
		return TempEntity{Beam: b}, nil
	}

	switch kind {
	case TeSpike:
		return point(PointSpike)
	case TeSuperSpike:
		return point(PointSuperSpike)
	case TeGunshot:
		return point(PointGunshot)
	case TeExplosion:
		return point(PointExplosion)
	case TeTarExplosion:
		return point(PointTarExplosion)
	case TeWizSpike:
		return point(PointWizSpike)
	case TeKnightSpike:
		return point(PointKnightSpike)
	case TeLavaSplash:
		return point(PointLavaSplash)
	case TeTeleport:
		return point(PointTeleport)

	case TeExplosion2:
		origin, err := r.ReadCoordVec()
		if err != nil {
			return nil, err
		}
		start, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return TempEntity{Point: &PointTempEntity{
			Kind: PointColorExplosion, Origin: origin,
			ColorStart: start, ColorLen: length,
		}}, nil

	case TeLightning1:
		return beam(BeamLightning1)
	case TeLightning2:
		return beam(BeamLightning2)
	case TeLightning3:
		return beam(BeamLightning3)
	case TeBeam:
		return beam(BeamGrapple)

	default:
		return nil, &UnknownCommandError{ID: kind}
	}
}
