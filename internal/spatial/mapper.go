package spatial

// Coordinate mapping between pointer input, normalized pad space and 3D
// placement space. All functions are pure; the audio path never feeds back
// into them.

// PixelToNormalized maps a pointer position inside a width×height surface to
// center-origin pad coordinates in [-1, 1]. The Y axis is inverted so that
// screen-up reads as positive (forward). Pointer overshoot during a drag is
// clamped, never rejected.
func PixelToNormalized(pixelX, pixelY, width, height float64) Position2D {
	if width <= 0 || height <= 0 {
		return Position2D{}
	}
	x := (pixelX/width)*2 - 1
	y := 1 - (pixelY/height)*2
	return Position2D{
		X: clamp(x, -1, 1),
		Y: clamp(y, -1, 1),
	}
}

// NormalizedToDisplayPercent converts a pad position to CSS-style marker
// percentages: center maps to (50, 50), (1, 1) to (100, 0). Presentation
// only, not used by the audio path.
func NormalizedToDisplayPercent(p Position2D) (left, top float64) {
	left = (p.X + 1) * 50
	top = (1 - p.Y) * 50
	return left, top
}

// PadToPosition3D lifts a pad coordinate into placement space. The lateral
// axis passes through unchanged, height is an independent parameter, and
// depth is the negation of the pad's forward axis: pad-up means physically
// in front of the listener, which is negative Z.
func PadToPosition3D(padX, padY, height float64) Position3D {
	return Position3D{X: padX, Y: height, Z: -padY}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
