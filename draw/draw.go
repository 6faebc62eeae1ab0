// Package draw renders text and rectangles onto X windows using core
// fonts, caching one GC per (window, color, font) combination.
package draw

import (
	"unicode/utf16"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

type gcSpec struct {
	mask uint32
	fg   int
	bg   int
	font xproto.Font
	win  xproto.Window
}

type GCs map[gcSpec]xproto.Gcontext

type Drawable interface {
	GCs() GCs
	Win() xproto.Window
	X() *xgbutil.XUtil
}

// OpenFont opens a core font by name.
func OpenFont(xu *xgbutil.XUtil, name string) (xproto.Font, error) {
	font, err := xproto.NewFontId(xu.Conn())
	if err != nil {
		return 0, err
	}
	err = xproto.OpenFontChecked(xu.Conn(), font, uint16(len(name)), name).Check()
	if err != nil {
		return 0, err
	}
	return font, nil
}

func gc(d Drawable, spec gcSpec, values []uint32) xproto.Gcontext {
	gcs := d.GCs()
	gc, ok := gcs[spec]
	if !ok {
		gc, _ = xproto.NewGcontextId(d.X().Conn())
		xproto.CreateGC(d.X().Conn(), gc, xproto.Drawable(d.Win()), spec.mask, values)
		gcs[spec] = gc
	}
	return gc
}

// Fill paints a solid rectangle.
func Fill(d Drawable, x, y, w, h int, fg int) {
	spec := gcSpec{
		mask: uint32(xproto.GcForeground),
		fg:   fg,
		win:  d.Win(),
	}
	g := gc(d, spec, []uint32{uint32(fg)})
	xproto.PolyFillRectangle(d.X().Conn(), xproto.Drawable(d.Win()), g,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y), Width: uint16(w), Height: uint16(h)}})
}

// Outline paints a one-pixel rectangle outline.
func Outline(d Drawable, x, y, w, h int, fg int) {
	spec := gcSpec{
		mask: uint32(xproto.GcForeground),
		fg:   fg,
		win:  d.Win(),
	}
	g := gc(d, spec, []uint32{uint32(fg)})
	xproto.PolyRectangle(d.X().Conn(), xproto.Drawable(d.Win()), g,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y), Width: uint16(w - 1), Height: uint16(h - 1)}})
}

// Text draws text with fg on bg, the top-left corner at (x, y), and
// returns the rendered extents.
func Text(d Drawable, text string, font xproto.Font, fg int, bg int,
	x int, y int) (w int, h int) {

	spec := gcSpec{
		mask: uint32(xproto.GcForeground | xproto.GcBackground | xproto.GcFont),
		fg:   fg,
		bg:   bg,
		font: font,
		win:  d.Win(),
	}
	g := gc(d, spec, []uint32{uint32(fg), uint32(bg), uint32(font)})

	chars, n := toChar2b([]rune(text))

	ex, err := xproto.QueryTextExtents(d.X().Conn(), xproto.Fontable(font), chars, 0).Reply()
	if err != nil {
		return 0, 0
	}

	y = int(int16(y) + ex.FontAscent)

	xproto.ImageText16(d.X().Conn(), byte(n), xproto.Drawable(d.Win()), g,
		int16(x), int16(y), chars)

	return int(ex.OverallRight), int(ex.FontAscent) + int(ex.FontDescent)
}

// TextExtents measures text without drawing it.
func TextExtents(xu *xgbutil.XUtil, font xproto.Font, text string) (w int, h int) {
	chars, _ := toChar2b([]rune(text))
	ex, err := xproto.QueryTextExtents(xu.Conn(), xproto.Fontable(font), chars, 0).Reply()
	if err != nil {
		return 0, 0
	}
	return int(ex.OverallRight), int(ex.FontAscent) + int(ex.FontDescent)
}

func toChar2b(runes []rune) ([]xproto.Char2b, int) {
	ucs2 := utf16.Encode(runes)
	var chars []xproto.Char2b
	for _, r := range ucs2 {
		chars = append(chars, xproto.Char2b{Byte1: byte(r >> 8), Byte2: byte(r)})
	}
	return chars, len(runes)
}
