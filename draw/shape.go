package draw

import (
	"image"
	"image/color"
	"math"
)

// Line draws a line between two points.
func Line(a, b image.Point, c color.Color) Shape {
	return shape(c, func(set plot) bool {
		return bresenham(set, a.X, a.Y, b.X, b.Y)
	})
}

// ThickLine draws a line between two points with the given stroke width.
func ThickLine(a, b image.Point, width int, c color.Color) Shape {
	if width <= 1 {
		return Line(a, b, c)
	}
	if a == b {
		return FilledCircle(a, width/2, c)
	}
	var (
		dx     = float64(b.X - a.X)
		dy     = float64(b.Y - a.Y)
		length = math.Hypot(dx, dy)
		half   = float64(width) / 2
		nx     = -dy / length * half
		ny     = dx / length * half
		shift  = func(p image.Point, s float64) image.Point {
			return image.Pt(int(math.Round(float64(p.X)+nx*s)), int(math.Round(float64(p.Y)+ny*s)))
		}
		a0, a1 = shift(a, 1), shift(a, -1)
		b0, b1 = shift(b, 1), shift(b, -1)
	)
	return shape(c, func(set plot) bool {
		return fillTriangle(set, a0, a1, b0) && fillTriangle(set, a1, b1, b0)
	})
}

// HorizontalLine draws a line between (x,y) and (x+w,y).
func HorizontalLine(x, y, w int, c color.Color) Shape {
	return shape(c, func(set plot) bool {
		return span(set, x, x+w-1, y)
	})
}

// VerticalLine draws a line between (x,y) and (x,y+h).
func VerticalLine(x, y, h int, c color.Color) Shape {
	return shape(c, func(set plot) bool {
		return column(set, x, y, h)
	})
}

// Rectangle draws the outline of a rectangle.
func Rectangle(rect image.Rectangle, c color.Color) Shape {
	rect = rect.Canon()
	return shape(c, func(set plot) bool {
		if rect.Empty() {
			return true
		}
		var (
			x0, y0 = rect.Min.X, rect.Min.Y
			x1, y1 = rect.Max.X - 1, rect.Max.Y - 1
		)
		if !span(set, x0, x1, y0) {
			return false
		}
		if y1 > y0 && !span(set, x0, x1, y1) {
			return false
		}
		for y := y0 + 1; y < y1; y++ {
			if !set(x0, y) {
				return false
			}
			if x1 > x0 && !set(x1, y) {
				return false
			}
		}
		return true
	})
}

// Box draws a filled rectangle.
func Box(rect image.Rectangle, c color.Color) Shape {
	rect = rect.Canon()
	return shape(c, func(set plot) bool {
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			if !span(set, rect.Min.X, rect.Max.X-1, y) {
				return false
			}
		}
		return true
	})
}

// RoundedRectangle draws a rectangle with radius pixels rounded corners.
func RoundedRectangle(rect image.Rectangle, radius int, c color.Color) Shape {
	rect = rect.Canon()
	var (
		r = radius
		x = rect.Min.X
		y = rect.Min.Y
		w = rect.Dx()
		h = rect.Dy()
	)
	return shape(c, func(set plot) bool {
		return span(set, x+r, x+w-r-1, y) &&
			span(set, x+r, x+w-r-1, y+h-1) &&
			column(set, x, y+r, h-2*r) &&
			column(set, x+w-1, y+r, h-2*r) &&
			roundedCorner(set, x+0+r+0, y+0+r+0, r, 1) &&
			roundedCorner(set, x+w-r-1, y+0+r+0, r, 2) &&
			roundedCorner(set, x+w-r-1, y+h-r-1, r, 4) &&
			roundedCorner(set, x+0+r+0, y+h-r-1, r, 8)
	})
}

// RoundedBox draws a filled rectangle with radius pixels rounded corners.
func RoundedBox(rect image.Rectangle, radius int, c color.Color) Shape {
	rect = rect.Canon()
	var (
		r = radius
		x = rect.Min.X
		y = rect.Min.Y
		w = rect.Dx()
		h = rect.Dy()
	)
	return shape(c, func(set plot) bool {
		for cx := x + r; cx < x+w-r; cx++ {
			if !column(set, cx, y, h) {
				return false
			}
		}
		return filledRoundedCorner(set, x+w-r-1, y+r, r, 1, h-2*r-1) &&
			filledRoundedCorner(set, x+r, y+r, r, 2, h-2*r-1)
	})
}

// Circle draws the outline of a circle around center.
func Circle(center image.Point, radius int, c color.Color) Shape {
	x0, y0 := center.X, center.Y
	return shape(c, func(set plot) bool {
		if radius <= 0 {
			return set(x0, y0)
		}
		return set(x0, y0+radius) &&
			set(x0, y0-radius) &&
			set(x0+radius, y0) &&
			set(x0-radius, y0) &&
			roundedCorner(set, x0, y0, radius, 15)
	})
}

// FilledCircle draws a filled circle around center.
func FilledCircle(center image.Point, radius int, c color.Color) Shape {
	x0, y0 := center.X, center.Y
	return shape(c, func(set plot) bool {
		if radius <= 0 {
			return set(x0, y0)
		}
		return column(set, x0, y0-radius, 2*radius+1) &&
			filledRoundedCorner(set, x0, y0, radius, 3, 0)
	})
}

// Triangle draws the outline of a triangle.
func Triangle(a, b, p image.Point, c color.Color) Shape {
	return shape(c, func(set plot) bool {
		return bresenham(set, a.X, a.Y, b.X, b.Y) &&
			bresenham(set, b.X, b.Y, p.X, p.Y) &&
			bresenham(set, p.X, p.Y, a.X, a.Y)
	})
}

// FilledTriangle draws a filled triangle.
func FilledTriangle(a, b, p image.Point, c color.Color) Shape {
	return shape(c, func(set plot) bool {
		return fillTriangle(set, a, b, p)
	})
}

// span plots (x0,y) to (x1,y) inclusive.
func span(set plot, x0, x1, y int) bool {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	for x := x0; x <= x1; x++ {
		if !set(x, y) {
			return false
		}
	}
	return true
}

// column plots h pixels down from (x,y).
func column(set plot, x, y, h int) bool {
	for i := 0; i < h; i++ {
		if !set(x, y+i) {
			return false
		}
	}
	return true
}

func fillTriangle(set plot, a, b, c image.Point) bool {
	var (
		edges = [3][2]image.Point{{a, b}, {b, c}, {c, a}}
		minY  = min(a.Y, b.Y, c.Y)
		maxY  = max(a.Y, b.Y, c.Y)
	)
	for y := minY; y <= maxY; y++ {
		lo, hi := math.MaxInt, math.MinInt
		for _, e := range edges {
			p, q := e[0], e[1]
			if y < min(p.Y, q.Y) || y > max(p.Y, q.Y) {
				continue
			}
			if p.Y == q.Y {
				lo, hi = min(lo, p.X, q.X), max(hi, p.X, q.X)
				continue
			}
			x := p.X + (y-p.Y)*(q.X-p.X)/(q.Y-p.Y)
			lo, hi = min(lo, x), max(hi, x)
		}
		if lo <= hi && !span(set, lo, hi, y) {
			return false
		}
	}
	return true
}

func roundedCorner(set plot, x0, y0, radius, quadrant int) bool {
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}

		x++
		ddFx += 2
		f += ddFx

		if quadrant&4 != 0 {
			if !set(x0+x, y0+y) || !set(x0+y, y0+x) {
				return false
			}
		}
		if quadrant&2 != 0 {
			if !set(x0+x, y0-y) || !set(x0+y, y0-x) {
				return false
			}
		}
		if quadrant&8 != 0 {
			if !set(x0-y, y0+x) || !set(x0-x, y0+y) {
				return false
			}
		}
		if quadrant&1 != 0 {
			if !set(x0-y, y0-x) || !set(x0-x, y0-y) {
				return false
			}
		}
	}
	return true
}

func filledRoundedCorner(set plot, x0, y0, radius, quadrant, delta int) bool {
	var (
		f    = 1 - radius
		ddFx = 1
		ddFy = -2 * radius
		x    = 0
		y    = radius
	)
	for x < y {
		if f >= 0 {
			y--
			ddFy += 2
			f += ddFy
		}

		x++
		ddFx += 2
		f += ddFx

		if quadrant&1 != 0 {
			if !column(set, x0+x, y0-y, 2*y+1+delta) || !column(set, x0+y, y0-x, 2*x+1+delta) {
				return false
			}
		}

		if quadrant&2 != 0 {
			if !column(set, x0-x, y0-y, 2*y+1+delta) || !column(set, x0-y, y0-x, 2*x+1+delta) {
				return false
			}
		}
	}
	return true
}

// Generalized with integer
func bresenham(set plot, x1, y1, x2, y2 int) bool {
	var dx, dy, e, slope int

	// Because drawing p1 -> p2 is equivalent to draw p2 -> p1,
	// I sort points in x-axis order to handle only half of possible cases.
	if x1 > x2 {
		x1, y1, x2, y2 = x2, y2, x1, y1
	}

	dx, dy = x2-x1, y2-y1
	// Because point is x-axis ordered, dx cannot be negative
	if dy < 0 {
		dy = -dy
	}

	switch {

	// Is line a point ?
	case x1 == x2 && y1 == y2:
		return set(x1, y1)

	// Is line an horizontal ?
	case y1 == y2:
		return span(set, x1, x2, y1)

	// Is line a vertical ?
	case x1 == x2:
		if y1 > y2 {
			y1, y2 = y2, y1
		}
		return column(set, x1, y1, y2-y1+1)

	// Is line a diagonal ?
	case dx == dy:
		step := 1
		if y1 > y2 {
			step = -1
		}
		for ; dx >= 0; dx-- {
			if !set(x1, y1) {
				return false
			}
			x1++
			y1 += step
		}
		return true

	// wider than high ?
	case dx > dy:
		step := 1
		if y1 > y2 {
			step = -1
		}
		dy, e, slope = 2*dy, dx, 2*dx
		for ; dx != 0; dx-- {
			if !set(x1, y1) {
				return false
			}
			x1++
			e -= dy
			if e < 0 {
				y1 += step
				e += slope
			}
		}
		return set(x2, y2)

	// higher than wide.
	default:
		step := 1
		if y1 > y2 {
			step = -1
		}
		dx, e, slope = 2*dx, dy, 2*dy
		for ; dy != 0; dy-- {
			if !set(x1, y1) {
				return false
			}
			y1 += step
			e -= dx
			if e < 0 {
				x1++
				e += slope
			}
		}
		return set(x2, y2)
	}
}
