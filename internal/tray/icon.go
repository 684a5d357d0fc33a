package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const iconSize = 22

var (
	keycapBorder = color.RGBA{200, 200, 200, 255}
	keycapFill   = color.RGBA{40, 44, 52, 255}
	glyphColor   = color.RGBA{0, 220, 90, 255}
)

// RenderIcon draws a small keycap with glyph on it and encodes it as PNG.
func RenderIcon(glyph string) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))

	outer := image.Rect(1, 2, iconSize-1, iconSize-2)
	inner := outer.Inset(1)
	draw.Draw(img, outer, image.NewUniform(keycapBorder), image.Point{}, draw.Src)
	draw.Draw(img, inner, image.NewUniform(keycapFill), image.Point{}, draw.Src)

	// Knock out the corners so the cap reads as rounded at this size.
	for _, p := range []image.Point{
		outer.Min,
		{outer.Max.X - 1, outer.Min.Y},
		{outer.Min.X, outer.Max.Y - 1},
		{outer.Max.X - 1, outer.Max.Y - 1},
	} {
		img.Set(p.X, p.Y, color.Transparent)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(glyphColor),
		Face: face,
	}
	width := d.MeasureString(glyph).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	x := inner.Min.X + (inner.Dx()-width)/2
	y := inner.Min.Y + (inner.Dy()-height)/2 + metrics.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(glyph)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode tray icon: %w", err)
	}
	return buf.Bytes(), nil
}
