package spatial

import (
	"math"
	"testing"
)

func TestPixelToNormalizedCenter(t *testing.T) {
	p := PixelToNormalized(150, 100, 300, 200)
	if p.X != 0 || p.Y != 0 {
		t.Errorf("center pixel = (%v, %v), want (0, 0)", p.X, p.Y)
	}
}

func TestPixelToNormalizedCorners(t *testing.T) {
	tests := []struct {
		name   string
		px, py float64
		want   Position2D
	}{
		{"top-left", 0, 0, Position2D{-1, 1}},
		{"top-right", 300, 0, Position2D{1, 1}},
		{"bottom-left", 0, 200, Position2D{-1, -1}},
		{"bottom-right", 300, 200, Position2D{1, -1}},
	}
	for _, tt := range tests {
		got := PixelToNormalized(tt.px, tt.py, 300, 200)
		if got != tt.want {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tt.name, got.X, got.Y, tt.want.X, tt.want.Y)
		}
	}
}

func TestPixelToNormalizedClampsOvershoot(t *testing.T) {
	// drags routinely overshoot the pad; every result must stay in [-1, 1]
	tests := []struct {
		px, py float64
	}{
		{-50, 100},
		{350, 100},
		{150, -30},
		{150, 250},
		{-1000, -1000},
		{1e9, 1e9},
	}
	for _, tt := range tests {
		got := PixelToNormalized(tt.px, tt.py, 300, 200)
		if got.X < -1 || got.X > 1 || got.Y < -1 || got.Y > 1 {
			t.Errorf("PixelToNormalized(%v, %v) = (%v, %v), outside [-1, 1]", tt.px, tt.py, got.X, got.Y)
		}
	}
}

func TestPixelToNormalizedDegenerateSurface(t *testing.T) {
	if got := PixelToNormalized(10, 10, 0, 0); got != (Position2D{}) {
		t.Errorf("zero surface: got (%v, %v), want origin", got.X, got.Y)
	}
}

func TestPixelToNormalizedYInverted(t *testing.T) {
	top := PixelToNormalized(150, 0, 300, 200)
	bottom := PixelToNormalized(150, 200, 300, 200)
	if top.Y != 1 {
		t.Errorf("screen top Y = %v, want 1 (up is positive)", top.Y)
	}
	if bottom.Y != -1 {
		t.Errorf("screen bottom Y = %v, want -1", bottom.Y)
	}
}

func TestNormalizedToDisplayPercent(t *testing.T) {
	tests := []struct {
		pos       Position2D
		left, top float64
	}{
		{Position2D{0, 0}, 50, 50},
		{Position2D{1, 1}, 100, 0},
		{Position2D{-1, -1}, 0, 100},
		{Position2D{-1, 1}, 0, 0},
		{Position2D{0.5, -0.5}, 75, 75},
	}
	for _, tt := range tests {
		left, top := NormalizedToDisplayPercent(tt.pos)
		if left != tt.left || top != tt.top {
			t.Errorf("NormalizedToDisplayPercent(%v, %v) = (%v%%, %v%%), want (%v%%, %v%%)",
				tt.pos.X, tt.pos.Y, left, top, tt.left, tt.top)
		}
	}
}

func TestDisplayPercentInverseOfPixelMapping(t *testing.T) {
	// pixel → normalized → percent must land back on the same relative spot
	const w, h = 400.0, 300.0
	for _, px := range []float64{0, 100, 200, 400} {
		for _, py := range []float64{0, 150, 300} {
			p := PixelToNormalized(px, py, w, h)
			left, top := NormalizedToDisplayPercent(p)
			if math.Abs(left-px/w*100) > 1e-9 || math.Abs(top-py/h*100) > 1e-9 {
				t.Errorf("pixel (%v, %v): round trip gave (%v%%, %v%%)", px, py, left, top)
			}
		}
	}
}

func TestPadToPosition3D(t *testing.T) {
	tests := []struct {
		x, y, h float64
	}{
		{0, 0, 0},
		{1, 1, 0},
		{-1, -1, 2},
		{0.25, -0.75, -1.5},
		{-0.5, 0.5, 0.1},
	}
	for _, tt := range tests {
		got := PadToPosition3D(tt.x, tt.y, tt.h)
		if got.X != tt.x {
			t.Errorf("PadToPosition3D(%v,%v,%v).X = %v, want %v", tt.x, tt.y, tt.h, got.X, tt.x)
		}
		if got.Y != tt.h {
			t.Errorf("PadToPosition3D(%v,%v,%v).Y = %v, want %v", tt.x, tt.y, tt.h, got.Y, tt.h)
		}
		if got.Z != -tt.y {
			t.Errorf("PadToPosition3D(%v,%v,%v).Z = %v, want %v (pad-up is negative depth)", tt.x, tt.y, tt.h, got.Z, -tt.y)
		}
	}
}
