package ledmatrix

import "math"

// DrawLine lights the pixels of the segment from (x0, y0) to (x1, y1).
//
// The axis with the larger extent is stepped one pixel at a time; when both
// extents are equal the y axis is stepped. Points outside the display are
// skipped, so the segment may start or end off screen.
func (d *Dev) DrawLine(x0, y0, x1, y1 int) {
	dx, dy := x1-x0, y1-y0
	if dx == 0 && dy == 0 {
		d.plot(x0, y0)
		return
	}

	steps := abs(dy)
	if abs(dx) > abs(dy) {
		steps = abs(dx)
	}
	// Per-step increments; one of them is exactly ±1.
	sx := float32(dx) / float32(steps)
	sy := float32(dy) / float32(steps)
	for i := 0; i <= steps; i++ {
		x := x0 + int(math.Round(float64(sx*float32(i))))
		y := y0 + int(math.Round(float64(sy*float32(i))))
		d.plot(x, y)
	}
}

// plot lights (x, y) when it is on the display.
func (d *Dev) plot(x, y int) {
	_ = d.SetPixel(x, y, true)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
