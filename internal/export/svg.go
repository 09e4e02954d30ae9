// Package export renders force field snapshots to SVG for quick visual
// inspection: particles as circles, forces as arrows projected onto the
// x-y plane.
package export

import (
	"fmt"
	"math"
	"strings"
)

// ForceFieldSVG draws particles and their force vectors. positions and
// forces carry three components per particle; the z component is dropped.
// arrowScale converts force units to drawing units.
func ForceFieldSVG(positions, forces []float64, width, height int, arrowScale float64) string {
	n := len(positions) / 3
	if n == 0 {
		return ""
	}

	// Bounds over positions, padded by 10%.
	minX, maxX := positions[0], positions[0]
	minY, maxY := positions[1], positions[1]
	for p := 1; p < n; p++ {
		x, y := positions[p*3], positions[p*3+1]
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	toX := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	toY := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	// Arrows first so circles draw on top.
	sb.WriteString(`<g stroke="#ff8800" stroke-width="1.5">` + "\n")
	for p := 0; p < n; p++ {
		x1 := toX(positions[p*3])
		y1 := toY(positions[p*3+1])
		fx := forces[p*3] * arrowScale
		fy := forces[p*3+1] * arrowScale
		x2 := toX(positions[p*3] + fx)
		y2 := toY(positions[p*3+1] + fy)
		if math.Hypot(x2-x1, y2-y1) < 1 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
`, x1, y1, x2, y2))
	}
	sb.WriteString("</g>\n")

	sb.WriteString(`<g fill="#00ccff">` + "\n")
	for p := 0; p < n; p++ {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3"/>
`, toX(positions[p*3]), toY(positions[p*3+1])))
	}
	sb.WriteString("</g>\n</svg>")

	return sb.String()
}
