package client

import (
	"time"

	"github.com/devops-utils/richter/internal/protocol"
)

// Screen blend layers, composited in index order.
const (
	ShiftContents = iota // water, slime, lava tint
	ShiftDamage          // red flash when hurt
	ShiftBonus           // flash on item pickup
	ShiftPowerup         // held-powerup overlay
	shiftCount
)

const (
	damageShiftDecay = 150 // percent per second
	bonusShiftDecay  = 100
	minShiftPercent  = 1
)

// ColorShift is one full-screen blend: a palette color and a blend
// strength in percent.
type ColorShift struct {
	Color   [3]uint8
	Percent int
}

// ColorShifts owns the four blend layers and their decay.
type ColorShifts struct {
	shifts [shiftCount]ColorShift
}

func (cs *ColorShifts) reset() {
	*cs = ColorShifts{}
}

// Damage applies the hurt flash. Strength scales with total damage taken,
// capped so a huge hit does not white out the screen, and the tint leans
// red, purple when armor soaked most of it, or near-white for pure armor
// hits.
func (cs *ColorShifts) Damage(armor, blood int) {
	count := armor + blood
	if count > 20 {
		count = 20
	}
	s := &cs.shifts[ShiftDamage]
	s.Percent += 3 * count / 2
	if s.Percent < 0 {
		s.Percent = 0
	}
	if s.Percent > 150 {
		s.Percent = 150
	}
	switch {
	case armor > blood:
		s.Color = [3]uint8{200, 100, 100}
	case armor > 0:
		s.Color = [3]uint8{220, 50, 50}
	default:
		s.Color = [3]uint8{255, 0, 0}
	}
}

// Bonus triggers the pickup flash at full strength.
func (cs *ColorShifts) Bonus() {
	cs.shifts[ShiftBonus] = ColorShift{Color: [3]uint8{215, 186, 69}, Percent: 50}
}

// Update decays the damage and bonus layers and recomputes the powerup
// overlay from the item bits.
func (cs *ColorShifts) Update(frameTime time.Duration, items int) {
	decay := func(s *ColorShift, rate int) {
		s.Percent -= int(float64(rate) * frameTime.Seconds())
		if s.Percent <= minShiftPercent {
			s.Percent = 0
		}
	}
	decay(&cs.shifts[ShiftDamage], damageShiftDecay)
	decay(&cs.shifts[ShiftBonus], bonusShiftDecay)

	powerup := &cs.shifts[ShiftPowerup]
	switch {
	case items&protocol.ItemQuad != 0:
		*powerup = ColorShift{Color: [3]uint8{0, 0, 255}, Percent: 30}
	case items&protocol.ItemSuit != 0:
		*powerup = ColorShift{Color: [3]uint8{0, 255, 0}, Percent: 20}
	case items&protocol.ItemInvisibility != 0:
		*powerup = ColorShift{Color: [3]uint8{100, 100, 100}, Percent: 100}
	case items&protocol.ItemInvulnerability != 0:
		*powerup = ColorShift{Color: [3]uint8{255, 255, 0}, Percent: 30}
	default:
		*powerup = ColorShift{}
	}
}

// Layers returns a copy of the four blend layers in composite order.
func (cs *ColorShifts) Layers() [shiftCount]ColorShift {
	return cs.shifts
}

// Composite folds the layers into one RGBA blend for the renderer.
func (cs *ColorShifts) Composite() (rgb [3]float32, alpha float32) {
	for _, s := range cs.shifts {
		if s.Percent <= 0 {
			continue
		}
		a := float32(s.Percent) / 100
		if a > 1 {
			a = 1
		}
		for i := 0; i < 3; i++ {
			c := float32(s.Color[i]) / 255
			rgb[i] = rgb[i]*(1-a) + c*a
		}
		alpha = alpha + a*(1-alpha)
	}
	return rgb, alpha
}
