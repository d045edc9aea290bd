package sound

import (
	"math"

	"github.com/devops-utils/richter/internal/qmath"
)

// earOffset is the lateral distance from view origin to each ear.
const earOffset = 4.0

// Listener carries the spatialization reference frame: view origin plus the
// two ear positions derived from it each frame.
type Listener struct {
	origin   qmath.Vec3
	leftEar  qmath.Vec3
	rightEar qmath.Vec3
}

func NewListener() *Listener { return &Listener{} }

func (l *Listener) Origin() qmath.Vec3   { return l.origin }
func (l *Listener) LeftEar() qmath.Vec3  { return l.leftEar }
func (l *Listener) RightEar() qmath.Vec3 { return l.rightEar }

// Update recomputes ear positions from the view entity's origin, the eye
// height, and the view yaw in degrees.
func (l *Listener) Update(viewOrigin qmath.Vec3, viewHeight, yawDeg float32) {
	l.origin = viewOrigin

	yaw := float64(yawDeg) * math.Pi / 180
	// +90 degrees points along the left ear axis
	left := qmath.Vec3{
		float32(math.Cos(yaw + math.Pi/2)),
		float32(math.Sin(yaw + math.Pi/2)),
		0,
	}

	eye := viewOrigin.Add(qmath.Vec3{0, 0, viewHeight})
	l.leftEar = eye.Add(left.Scale(earOffset))
	l.rightEar = eye.Sub(left.Scale(earOffset))
}
