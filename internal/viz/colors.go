package viz

import (
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var bodyColors = map[string]string{
	"sun":     "#ffd35c",
	"mercury": "#b1adad",
	"venus":   "#e6c17a",
	"earth":   "#4f8fe6",
	"moon":    "#d9d9d9",
	"mars":    "#d9623b",
	"jupiter": "#d8ae80",
	"saturn":  "#e8d191",
	"uranus":  "#9fe3e8",
	"pluto":   "#c9a98a",
	"jwst":    "#ffb000",
	"iss":     "#ffffff",
	"hubble":  "#a0a0ff",
}

// BodyColor returns a hex colour for a body. Unknown bodies get a hue
// derived from their mass so that the same body keeps its colour.
func BodyColor(name string, mass float64) string {
	if c, ok := bodyColors[strings.ToLower(name)]; ok {
		return c
	}
	hue := math.Mod(math.Abs(math.Log1p(mass))*97, 360)
	return colorful.Hcl(hue, 0.6, 0.75).Clamped().Hex()
}

// Blend mixes two hex colours in Lab space. Unparseable input yields a.
func Blend(a, b string, t float64) string {
	ca, err := colorful.Hex(a)
	if err != nil {
		return a
	}
	cb, err := colorful.Hex(b)
	if err != nil {
		return a
	}
	return ca.BlendLab(cb, t).Clamped().Hex()
}

// Fade darkens a colour towards black by t in [0, 1].
func Fade(c string, t float64) string {
	return Blend(c, "#000000", t*0.8)
}
