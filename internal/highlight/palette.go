package highlight

import (
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
)

// Palette holds the UI colors derived from a Chroma theme, as "#rrggbb".
type Palette struct {
	Bg     string
	Fg     string
	Border string // dividers and box borders
	SelBg  string // selected row background
	Dim    string // tree guides, descriptions
	Muted  string // secondary labels
	Accent string // icons and titles
	Error  string
}

// ThemePalette derives a palette from theme. The gray ramp blends the theme
// background into its foreground; the accent is the theme's most saturated
// token color.
func ThemePalette(theme string) Palette {
	sty := styles.Get(theme)
	if sty == nil {
		sty = styles.Fallback
	}
	entry := sty.Get(chroma.Background)
	bg := chroma.MustParseColour("#000000")
	fg := chroma.MustParseColour("#c8c8c8")
	if entry.Background.IsSet() {
		bg = entry.Background
	}
	if entry.Colour.IsSet() {
		fg = entry.Colour
	}

	errColour := blend(bg, fg, 0.45)
	if e := sty.Get(chroma.Error); e.Colour.IsSet() {
		errColour = blend(bg, e.Colour, 0.45)
	}

	return Palette{
		Bg:     bg.String(),
		Fg:     fg.String(),
		Border: blend(bg, fg, 0.10).String(),
		SelBg:  blend(bg, fg, 0.18).String(),
		Dim:    blend(bg, fg, 0.30).String(),
		Muted:  blend(bg, fg, 0.50).String(),
		Accent: accent(sty, fg).String(),
		Error:  errColour.String(),
	}
}

func accent(sty *chroma.Style, fallback chroma.Colour) chroma.Colour {
	best, bestSat := fallback, 0.0
	for _, tt := range sty.Types() {
		c := sty.Get(tt).Colour
		if !c.IsSet() {
			continue
		}
		if s := saturation(c); s > bestSat {
			best, bestSat = c, s
		}
	}
	return best
}

func saturation(c chroma.Colour) float64 {
	r, g, b := float64(c.Red()), float64(c.Green()), float64(c.Blue())
	hi, lo := max(r, g, b), min(r, g, b)
	if hi == 0 {
		return 0
	}
	return (hi - lo) / hi
}

// blend mixes a toward b by t in [0,1].
func blend(a, b chroma.Colour, t float64) chroma.Colour {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return chroma.NewColour(mix(a.Red(), b.Red()), mix(a.Green(), b.Green()), mix(a.Blue(), b.Blue()))
}
