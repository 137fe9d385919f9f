// Package export renders simulation output as SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/solsim/internal/sim"
	"github.com/san-kum/solsim/internal/viz"
)

const background = "#0a0a0a"

// CanvasToSVG converts a braille canvas to SVG, one circle per lit dot in
// the colour of its cell.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	header(&sb, width, height)

	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}
	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			r := canvas.Grid[row][col]
			if r <= 0x2800 || r > 0x28ff {
				continue
			}
			pattern := int(r - 0x2800)
			fill := canvas.Colors[row][col]
			if fill == "" {
				fill = "#00ff00"
			}

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] == 0 {
						continue
					}
					cx := baseX + float64(dx)*scale + scale/2
					cy := baseY + float64(dy)*scale + scale/2
					fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\" fill=\"%s\"/>\n", cx, cy, dotRadius, fill)
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoriesToSVG draws the sampled positions of every body in result as
// seen from above the ecliptic. Axes share one scale so orbits keep their
// shape. Samples after a body's removal end its path.
func TrajectoriesToSVG(result *sim.Result, width, height int) string {
	if result == nil || len(result.Positions) < 2 {
		return ""
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, row := range result.Positions {
		for _, p := range row {
			if !finite(p) {
				continue
			}
			minX, maxX = math.Min(minX, p.X()), math.Max(maxX, p.X())
			minY, maxY = math.Min(minY, p.Y()), math.Max(maxY, p.Y())
		}
	}
	if math.IsInf(minX, 0) {
		return ""
	}

	span := math.Max(maxX-minX, maxY-minY)
	if span == 0 {
		span = 1
	}
	span *= 1.2
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := math.Min(float64(width), float64(height)) / span
	toScreen := func(p mgl64.Vec3) (float64, float64) {
		return float64(width)/2 + (p.X()-cx)*scale, float64(height)/2 - (p.Y()-cy)*scale
	}

	var sb strings.Builder
	header(&sb, float64(width), float64(height))

	for j, name := range result.Names {
		color := viz.BodyColor(name, 0)
		var d strings.Builder
		pen := false
		var last mgl64.Vec3
		seen := false
		for _, row := range result.Positions {
			p := row[j]
			if !finite(p) {
				pen = false
				continue
			}
			x, y := toScreen(p)
			if pen {
				fmt.Fprintf(&d, " L%.1f,%.1f", x, y)
			} else {
				fmt.Fprintf(&d, " M%.1f,%.1f", x, y)
				pen = true
			}
			last, seen = p, true
		}
		if !seen {
			continue
		}
		fmt.Fprintf(&sb, "<path fill=\"none\" stroke=\"%s\" stroke-width=\"1.2\" d=\"%s\"/>\n", color, strings.TrimSpace(d.String()))
		x, y := toScreen(last)
		fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"3\" fill=\"%s\"/>\n", x, y, color)
		fmt.Fprintf(&sb, "<text x=\"%.1f\" y=\"%.1f\" fill=\"%s\" font-size=\"10\" font-family=\"monospace\">%s</text>\n", x+5, y-5, color, name)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

func finite(p mgl64.Vec3) bool {
	for _, c := range p {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}
