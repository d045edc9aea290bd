package client

import (
	"time"

	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
)

const (
	MaxStaticEntities = 128
	MaxTempEntities   = 64
)

// Entity is one slot in the dense entity arena. A slot with ModelID 0 is a
// tombstone: it keeps later ids addressable but renders nothing.
type Entity struct {
	Baseline protocol.EntityBaseline

	// MsgTime is the server timestamp of the newest update applied to this
	// entity. Entities whose MsgTime falls behind the newest snapshot are
	// freed by the interpolation sweep.
	MsgTime    time.Duration
	MsgOrigins [2]qmath.Vec3
	MsgAngles  [2]qmath.Vec3

	Origin qmath.Vec3
	Angles qmath.Vec3

	ModelID  int
	FrameID  int
	SkinID   int
	ColorMap int
	Effects  int

	// SyncBase offsets auto-animation so entities sharing a model do not
	// animate in lockstep.
	SyncBase time.Duration

	// ForceLink disables interpolation for the next sweep: the entity snaps
	// to its newest snapshot instead of lerping from the previous one.
	ForceLink bool

	LightID int
}

func newEntity(baseline protocol.EntityBaseline) Entity {
	return Entity{
		Baseline:   baseline,
		MsgOrigins: [2]qmath.Vec3{baseline.Origin, baseline.Origin},
		MsgAngles:  [2]qmath.Vec3{baseline.Angles, baseline.Angles},
		Origin:     baseline.Origin,
		Angles:     baseline.Angles,
		ModelID:    int(baseline.ModelID),
		FrameID:    int(baseline.FrameID),
		SkinID:     int(baseline.SkinID),
		ColorMap:   int(baseline.ColorMap),
		LightID:    -1,
	}
}

// free tombstones the slot. The baseline is kept so a later respawn on the
// same id still has its defaults.
func (e *Entity) free() {
	e.ModelID = 0
	e.ForceLink = true
}

func (e *Entity) alive() bool {
	return e.ModelID != 0
}

// apply folds a fast update into the entity. Fields absent from the update
// fall back to the baseline. Returns true when the model changed, which
// callers use to re-seed SyncBase.
func (e *Entity) apply(msgTimes [2]time.Duration, u *protocol.EntityUpdate) (modelChanged bool) {
	// A gap since the previous snapshot means there is nothing sane to
	// interpolate from.
	if e.MsgTime != msgTimes[1] {
		e.ForceLink = true
	}
	e.MsgTime = msgTimes[0]

	e.MsgOrigins[1] = e.MsgOrigins[0]
	e.MsgAngles[1] = e.MsgAngles[0]

	originBits := [3]uint16{protocol.UOrigin1, protocol.UOrigin2, protocol.UOrigin3}
	angleBits := [3]uint16{protocol.UAngle1, protocol.UAngle2, protocol.UAngle3}
	for i := 0; i < 3; i++ {
		if u.Has(originBits[i]) {
			e.MsgOrigins[0][i] = u.Origin[i]
		} else {
			e.MsgOrigins[0][i] = e.Baseline.Origin[i]
		}
		if u.Has(angleBits[i]) {
			e.MsgAngles[0][i] = u.Angles[i]
		} else {
			e.MsgAngles[0][i] = e.Baseline.Angles[i]
		}
	}

	modelID := int(e.Baseline.ModelID)
	if u.Has(protocol.UModel) {
		modelID = int(u.ModelID)
	}
	if modelID != e.ModelID {
		modelChanged = true
		e.ForceLink = true
	}
	e.ModelID = modelID

	if u.Has(protocol.UFrame) {
		e.FrameID = int(u.FrameID)
	} else {
		e.FrameID = int(e.Baseline.FrameID)
	}
	if u.Has(protocol.UColorMap) {
		e.ColorMap = int(u.ColorMap)
	} else {
		e.ColorMap = int(e.Baseline.ColorMap)
	}
	if u.Has(protocol.USkin) {
		e.SkinID = int(u.SkinID)
	} else {
		e.SkinID = int(e.Baseline.SkinID)
	}
	if u.Has(protocol.UEffects) {
		e.Effects = int(u.Effects)
	} else {
		e.Effects = 0
	}
	if u.NoLerp() {
		e.ForceLink = true
	}

	if e.ForceLink {
		e.MsgOrigins[1] = e.MsgOrigins[0]
		e.MsgAngles[1] = e.MsgAngles[0]
		e.Origin = e.MsgOrigins[0]
		e.Angles = e.MsgAngles[0]
	}
	return modelChanged
}
