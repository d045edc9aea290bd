package qmath

import (
	"math"
	"testing"
)

func almostEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-3
}

func TestAngleMod(t *testing.T) {
	cases := []struct{ in, want float32 }{
		{0, 0},
		{360, 0},
		{365, 5},
		{-10, 350},
		{-370, 350},
		{725, 5},
	}
	for _, c := range cases {
		if got := AngleMod(c.in); !almostEqual(got, c.want) {
			t.Errorf("AngleMod(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestLerpAngleWraparound(t *testing.T) {
	// 350 -> 5 is a 15 degree turn through zero, not a 345 degree spin.
	if got := LerpAngle(350, 5, 0.5); !almostEqual(got, 357.5) {
		t.Fatalf("LerpAngle(350, 5, 0.5) = %v, want 357.5", got)
	}
	if got := LerpAngle(5, 350, 0.5); !almostEqual(got, 357.5) {
		t.Fatalf("LerpAngle(5, 350, 0.5) = %v, want 357.5", got)
	}
}

func TestLerpAngleShortArc(t *testing.T) {
	if got := LerpAngle(10, 30, 0.5); !almostEqual(got, 20) {
		t.Fatalf("LerpAngle(10, 30, 0.5) = %v, want 20", got)
	}
	if got := LerpAngle(30, 10, 0.25); !almostEqual(got, 25) {
		t.Fatalf("LerpAngle(30, 10, 0.25) = %v, want 25", got)
	}
}

func TestAnglesFromVector(t *testing.T) {
	a := AnglesFromVector(V3(1, 0, 0))
	if !almostEqual(a[0], 0) || !almostEqual(a[1], 0) {
		t.Fatalf("forward vector: got %v", a)
	}
	a = AnglesFromVector(V3(0, 1, 0))
	if !almostEqual(a[1], 90) {
		t.Fatalf("left vector yaw: got %v", a[1])
	}
	a = AnglesFromVector(V3(0, 0, 1))
	if !almostEqual(a[0], 90) {
		t.Fatalf("up vector pitch: got %v", a[0])
	}
}

func TestVecOps(t *testing.T) {
	v := V3(3, 4, 0)
	if v.Len() != 5 {
		t.Fatalf("Len = %v, want 5", v.Len())
	}
	n := v.Normalize()
	if !almostEqual(n.Len(), 1) {
		t.Fatalf("Normalize length = %v", n.Len())
	}
	if got := V3(0, 0, 0).Lerp(V3(10, 0, 0), 0.3); !almostEqual(got[0], 3) {
		t.Fatalf("Lerp = %v", got)
	}
}
