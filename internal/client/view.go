package client

import (
	"math"
	"time"

	"github.com/devops-utils/richter/internal/protocol"
	"github.com/devops-utils/richter/internal/qmath"
)

// View tracks the camera: which entity it rides, the eye height above that
// entity's origin, and the transient kicks (punch from weapons, roll and
// pitch from taking damage).
type View struct {
	entityID    int
	viewHeight  float32
	idealPitch  float32
	punchAngles qmath.Vec3

	// inputAngles are the player's look angles, degrees.
	inputAngles qmath.Vec3

	dmgTime  time.Duration
	dmgRoll  float32
	dmgPitch float32
}

func newView() View {
	return View{entityID: -1, viewHeight: protocol.DefaultViewHeight}
}

func (v *View) EntityID() int             { return v.entityID }
func (v *View) ViewHeight() float32       { return v.viewHeight }
func (v *View) IdealPitch() float32       { return v.idealPitch }
func (v *View) PunchAngles() qmath.Vec3   { return v.punchAngles }
func (v *View) InputAngles() qmath.Vec3   { return v.inputAngles }
func (v *View) SetInputAngles(a qmath.Vec3) { v.inputAngles = a }

func (v *View) setEntityID(id int)         { v.entityID = id }
func (v *View) setViewHeight(h float32)    { v.viewHeight = h }
func (v *View) setIdealPitch(p float32)    { v.idealPitch = p }
func (v *View) setPunchAngles(a qmath.Vec3) { v.punchAngles = a }

// handleDamage aims the damage kick at the attack and arms the decay timer.
// kickTime is the v_kicktime cvar in seconds; kickPitch and kickRoll are the
// v_kickpitch and v_kickroll magnitudes.
func (v *View) handleDamage(now time.Duration, src, viewOrigin, viewAngles qmath.Vec3, kickTime, kickPitch, kickRoll float32) {
	v.dmgTime = now + time.Duration(float64(kickTime)*float64(time.Second))

	dir := src.Sub(viewOrigin)
	if dir.Len2() == 0 {
		v.dmgRoll = kickRoll
		v.dmgPitch = kickPitch
		return
	}
	dir = dir.Normalize()

	yaw := float64(viewAngles[1]) * math.Pi / 180
	forward := qmath.V3(float32(math.Cos(yaw)), float32(math.Sin(yaw)), 0)
	right := qmath.V3(float32(math.Sin(yaw)), float32(-math.Cos(yaw)), 0)

	v.dmgRoll = dir.Dot(right) * kickRoll
	v.dmgPitch = dir.Dot(forward) * kickPitch
}

// kickAngles returns the decaying damage kick at the given time. The kick
// ramps linearly to zero over the v_kicktime window.
func (v *View) kickAngles(now time.Duration, kickTime float32) (pitch, roll float32) {
	if now >= v.dmgTime || kickTime <= 0 {
		return 0, 0
	}
	frac := float32((v.dmgTime - now).Seconds()) / kickTime
	if frac > 1 {
		frac = 1
	}
	return v.dmgPitch * frac, v.dmgRoll * frac
}

// Angles composes the final camera angles: player input plus punch plus the
// damage kick.
func (v *View) Angles(now time.Duration, kickTime float32) qmath.Vec3 {
	pitch, roll := v.kickAngles(now, kickTime)
	return qmath.V3(
		v.inputAngles[0]+v.punchAngles[0]+pitch,
		v.inputAngles[1]+v.punchAngles[1],
		v.inputAngles[2]+v.punchAngles[2]+roll,
	)
}
