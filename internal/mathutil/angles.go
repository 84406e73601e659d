package mathutil

// Unwrap shifts angle (degrees) by whole turns so it lands as close as
// possible to ref. Used by the euler filter to remove 360° curve jumps.
func Unwrap(angle, ref float64) float64 {
	for angle-ref > 180 {
		angle -= 360
	}
	for angle-ref < -180 {
		angle += 360
	}
	return angle
}
