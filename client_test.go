package main

import (
	"testing"

	"honnef.co/go/twm/config"
)

func TestAdjustToHintsIncrements(t *testing.T) {
	sh := &sizeHints{
		baseW: 2, baseH: 4,
		minW: 10, minH: 10,
		incW: 7, incH: 13,
		valid: true,
	}
	w, h := adjustToHints(sh, 500, 400)
	if (w-sh.baseW)%7 != 0 || (h-sh.baseH)%13 != 0 {
		t.Errorf("(%d, %d) not on the increment grid", w, h)
	}
	if w > 500 || h > 400 {
		t.Errorf("(%d, %d) grew past the request", w, h)
	}

	w2, h2 := adjustToHints(sh, w, h)
	if w2 != w || h2 != h {
		t.Errorf("not idempotent: (%d, %d) -> (%d, %d)", w, h, w2, h2)
	}
}

func TestAdjustToHintsAspect(t *testing.T) {
	// 4:3 on both ends.
	sh := &sizeHints{
		minA: 3.0 / 4.0, maxA: 4.0 / 3.0,
		valid: true,
	}
	w, h := adjustToHints(sh, 1000, 500)
	if w != int(float64(h)*sh.maxA+0.5) {
		t.Errorf("width %d not clamped to max aspect of height %d", w, h)
	}

	w, h = adjustToHints(sh, 500, 1000)
	if h != int(float64(w)*sh.minA+0.5) {
		t.Errorf("height %d not clamped to min aspect of width %d", h, w)
	}
}

func TestAdjustToHintsMinMax(t *testing.T) {
	sh := &sizeHints{
		minW: 100, minH: 50,
		maxW: 800, maxH: 600,
		valid: true,
	}
	if w, h := adjustToHints(sh, 10, 10); w != 100 || h != 50 {
		t.Errorf("min clamp: got (%d, %d)", w, h)
	}
	if w, h := adjustToHints(sh, 5000, 5000); w != 800 || h != 600 {
		t.Errorf("max clamp: got (%d, %d)", w, h)
	}
}

func TestApplySizeHintsIdempotent(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	c := testClient(m)
	c.IsFloating = true
	c.hints = sizeHints{incW: 8, incH: 8, minW: 64, minH: 64, valid: true}

	c.resize(100, 100, 333, 222, false)
	x, y, w, h := c.Geom.X, c.Geom.Y, c.Geom.Width, c.Geom.Height

	x2, y2, w2, h2, changed := c.applySizeHints(x, y, w, h, false)
	if changed {
		t.Error("second application reported a change")
	}
	if x2 != x || y2 != y || w2 != w || h2 != h {
		t.Errorf("second application moved the rectangle: (%d,%d %dx%d) -> (%d,%d %dx%d)",
			x, y, w, h, x2, y2, w2, h2)
	}
}

func TestApplySizeHintsKeepsWindowOnMonitor(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	c := testClient(m)
	c.IsFloating = true
	c.Geom = geom{0, 0, 400, 300}

	x, _, _, _, _ := c.applySizeHints(5000, 100, 400, 300, false)
	if x >= m.WX+m.WW {
		t.Errorf("x = %d leaves the working area entirely", x)
	}

	// Interactive moves clamp against the whole screen instead.
	x, y, _, _, _ := c.applySizeHints(wm.sw+100, wm.sh+100, 400, 300, true)
	if x > wm.sw || y > wm.sh {
		t.Errorf("(%d, %d) off the screen during interaction", x, y)
	}
}

func TestMatchRules(t *testing.T) {
	rules := []config.Rule{
		{Class: "Gimp", Tags: 1 << 3, Floating: true, Monitor: -1},
		{Class: "Firefox", Tags: 1 << 8, Monitor: 1},
		{Title: "scratch", Floating: true, Monitor: -1},
	}

	tags, floating, mon := matchRules(rules, "Gimp", "gimp", "GNU Image Manipulation Program")
	if tags != 1<<3 || !floating || mon != -1 {
		t.Errorf("Gimp: got tags=%#x floating=%v mon=%d", tags, floating, mon)
	}

	tags, floating, mon = matchRules(rules, "Firefox", "Navigator", "mdn")
	if tags != 1<<8 || floating || mon != 1 {
		t.Errorf("Firefox: got tags=%#x floating=%v mon=%d", tags, floating, mon)
	}

	// Substring, not equality.
	tags, _, _ = matchRules(rules, "Gimp-2.10", "gimp", "")
	if tags != 1<<3 {
		t.Errorf("substring match failed: tags=%#x", tags)
	}

	tags, floating, mon = matchRules(rules, "URxvt", "urxvt", "scratchpad")
	if tags != 0 || !floating {
		t.Errorf("title rule: got tags=%#x floating=%v mon=%d", tags, floating, mon)
	}

	tags, floating, _ = matchRules(rules, "Foo", "foo", "bar")
	if tags != 0 || floating {
		t.Error("unmatched client picked up rule state")
	}
}

func TestFullscreenInvariant(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	c := testClient(m)
	c.BW = 1

	// The invariant the handlers maintain: fullscreen implies floating
	// with no border, and restoring brings both back.
	c.OldState = c.IsFloating
	c.OldBW = c.BW
	c.IsFullscreen = true
	c.IsFloating = true
	c.BW = 0
	c.resizeClient(m.MX, m.MY, m.MW, m.MH)

	if !c.IsFloating || c.BW != 0 {
		t.Error("fullscreen client must be floating and borderless")
	}
	if (c.Geom != geom{0, 0, 1920, 1080}) {
		t.Errorf("fullscreen geometry = %+v", c.Geom)
	}

	c.IsFullscreen = false
	c.IsFloating = c.OldState
	c.BW = c.OldBW
	if c.IsFloating || c.BW != 1 {
		t.Error("leaving fullscreen must restore the saved state")
	}
}

func TestMinimizeStrip(t *testing.T) {
	wm := testWM()
	m := wm.SelMon

	c2 := testClient(m)
	c1 := testClient(m)
	c1.Geom = geom{10, 30, 600, 400}
	c2.Geom = geom{50, 70, 300, 200}

	for _, c := range []*Client{c1, c2} {
		c.MinGeom = c.Geom
		c.IsMinimized = true
		c.IsFloating = true
		c.IsFixed = true
	}
	m.packMinimized()

	if c1.Geom.Width != minimizedW || c1.Geom.Height != minimizedH {
		t.Errorf("strip geometry = %+v", c1.Geom)
	}
	if c1.Geom.X == c2.Geom.X {
		t.Error("minimized clients overlap in the dock strip")
	}
	if c2.Geom.X-c1.Geom.X != minimizedW && c1.Geom.X-c2.Geom.X != minimizedW {
		t.Errorf("strip not packed: %d vs %d", c1.Geom.X, c2.Geom.X)
	}

	if c1.MinGeom.Width != 600 {
		t.Error("pre-minimize geometry lost")
	}
}
