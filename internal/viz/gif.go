package viz

import (
	"errors"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/lucasb-eyer/go-colorful"
)

const (
	dotPx      = 4 // pixels per braille dot
	frameDelay = 2 // hundredths of a second
	maxFrames  = 1800
)

var errNoFrames = errors.New("no frames recorded")

// gifRecorder rasterises canvas frames into a palette built from the body
// colours, with black reserved for empty dots.
type gifRecorder struct {
	palette color.Palette
	frames  []*image.Paletted
}

func newGIFRecorder() *gifRecorder {
	p := color.Palette{color.Black, color.White}
	for _, hex := range bodyColors {
		if c, err := colorful.Hex(hex); err == nil {
			p = append(p, c)
		}
	}
	for _, t := range Themes {
		if c, err := colorful.Hex(string(t.Marker)); err == nil {
			p = append(p, c)
		}
	}
	return &gifRecorder{palette: p}
}

func (r *gifRecorder) colorIndex(hex string) uint8 {
	if hex == "" {
		return 1
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return 1
	}
	return uint8(r.palette.Index(c))
}

func (r *gifRecorder) capture(c *Canvas) {
	if len(r.frames) >= maxFrames {
		return
	}
	img := image.NewPaletted(image.Rect(0, 0, c.SubWidth()*dotPx, c.SubHeight()*dotPx), r.palette)
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			ch := c.Grid[row][col]
			if ch <= blank || ch > blank+0xff {
				continue
			}
			idx := r.colorIndex(c.Colors[row][col])
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if int(ch-blank)&pixelMap[dy][dx] == 0 {
						continue
					}
					x0, y0 := (col*2+dx)*dotPx, (row*4+dy)*dotPx
					for py := 0; py < dotPx; py++ {
						for px := 0; px < dotPx; px++ {
							img.SetColorIndex(x0+px, y0+py, idx)
						}
					}
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

func (r *gifRecorder) save(path string) error {
	if len(r.frames) == 0 {
		return errNoFrames
	}
	anim := gif.GIF{LoopCount: 0}
	for _, f := range r.frames {
		anim.Image = append(anim.Image, f)
		anim.Delay = append(anim.Delay, frameDelay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
