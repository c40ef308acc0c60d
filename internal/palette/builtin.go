package palette

import "github.com/lightwaveos/core/internal/framebuf"

// builtinPalettes returns the compiled-in palette set. Order is part of
// the id contract: palette 0 is the boot default.
func builtinPalettes() []Palette {
	return []Palette{
		gradient("mono-white", rgb(0, 0, 0), rgb(255, 255, 255)),
		gradient("fire", rgb(10, 0, 0), rgb(255, 160, 0)),
		gradient("ocean", rgb(0, 5, 20), rgb(0, 180, 255)),
		gradient("forest", rgb(0, 20, 0), rgb(90, 220, 60)),
		rainbow("rainbow"),
		gradient("violet-gold", rgb(60, 0, 90), rgb(255, 200, 40)),
		gradient("ice", rgb(0, 40, 60), rgb(200, 240, 255)),
		gradient("ember", rgb(20, 0, 0), rgb(255, 60, 0)),
	}
}

func rgb(r, g, b uint8) framebuf.RGB {
	return framebuf.RGB{R: r, G: g, B: b}
}

// gradient builds a 16-entry palette linearly interpolated between lo and
// hi, the simplest palette shape and the one most effects default to.
func gradient(name string, lo, hi framebuf.RGB) Palette {
	var entries [EntryCount]framebuf.RGB
	for i := range entries {
		t := float32(i) / float32(EntryCount-1)
		entries[i] = framebuf.Lerp(lo, hi, t)
	}

	return Palette{Name: name, Entries: entries}
}

// rainbow builds a full-hue-sweep palette by stepping HSV hue evenly
// across the 16 entries at fixed saturation/value.
func rainbow(name string) Palette {
	var entries [EntryCount]framebuf.RGB
	for i := range entries {
		hue := float32(i) / float32(EntryCount) * 360
		entries[i] = hsvToRGB(hue, 1.0, 1.0)
	}

	return Palette{Name: name, Entries: entries}
}

func hsvToRGB(h, s, v float32) framebuf.RGB {
	c := v * s
	x := c * (1 - abs32(modf(h/60, 2)-1))
	m := v - c

	var r, g, b float32

	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return rgb(
		uint8((r+m)*255+0.5),
		uint8((g+m)*255+0.5),
		uint8((b+m)*255+0.5),
	)
}

func modf(v, m float32) float32 {
	for v >= m {
		v -= m
	}

	return v
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}

	return v
}
