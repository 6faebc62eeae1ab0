package main

import (
	"log"
	"strings"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"honnef.co/go/twm/config"
)

// broken substitutes for titles of clients that violate ICCCM.
const broken = "broken"

type sizeHints struct {
	baseW, baseH int
	minW, minH   int
	maxW, maxH   int
	incW, incH   int
	minA, maxA   float64
	valid        bool
}

// Client is a managed top-level window.
type Client struct {
	wm  *WM
	win *xwindow.Window

	Name string
	Tags uint32
	Mon  *Monitor

	Geom    geom // interior geometry, border excluded
	OldGeom geom // pre-interaction (and pre-fullscreen) geometry
	MinGeom geom // pre-minimize geometry
	BW      int
	OldBW   int

	hints sizeHints

	IsFixed      bool
	IsFloating   bool
	IsUrgent     bool
	NeverFocus   bool
	IsFullscreen bool
	IsMinimized  bool
	// OldState saves the floating flag across fullscreen.
	OldState bool

	lastMotion int64 // wall-clock ns of the last processed drag step
	dragStart  geom
	dragRootX  int
	dragRootY  int
}

func (c *Client) width() int {
	return c.Geom.Width + 2*c.BW
}

func (c *Client) height() int {
	return c.Geom.Height + 2*c.BW
}

func (c *Client) visible() bool {
	return c.Tags&c.Mon.TagSet[c.Mon.SelTags] != 0
}

// adjustToHints applies ICCCM 4.1.2.3 to a candidate interior size:
// base subtraction, aspect clamping, increment rounding, min/max.
func adjustToHints(sh *sizeHints, w, h int) (int, int) {
	baseIsMin := sh.baseW == sh.minW && sh.baseH == sh.minH
	if !baseIsMin {
		w -= sh.baseW
		h -= sh.baseH
	}
	if sh.minA > 0 && sh.maxA > 0 {
		if sh.maxA < float64(w)/float64(h) {
			w = int(float64(h)*sh.maxA + 0.5)
		} else if sh.minA < float64(h)/float64(w) {
			h = int(float64(w)*sh.minA + 0.5)
		}
	}
	if baseIsMin {
		w -= sh.baseW
		h -= sh.baseH
	}
	if sh.incW != 0 {
		w -= w % sh.incW
	}
	if sh.incH != 0 {
		h -= h % sh.incH
	}
	w = max(sh.minW, w+sh.baseW)
	h = max(sh.minH, h+sh.baseH)
	if sh.maxW != 0 {
		w = min(w, sh.maxW)
	}
	if sh.maxH != 0 {
		h = min(h, sh.maxH)
	}
	return w, h
}

// applySizeHints clamps a candidate rectangle against the screen
// (interact) or the working area, then against the client's size
// hints. It reports whether the result differs from the current
// geometry.
func (c *Client) applySizeHints(x, y, w, h int, interact bool) (int, int, int, int, bool) {
	wm := c.wm
	m := c.Mon

	w = max(1, w)
	h = max(1, h)
	if interact {
		if x > wm.sw {
			x = wm.sw - c.width()
		}
		if y > wm.sh {
			y = wm.sh - c.height()
		}
		if x+w+2*c.BW < 0 {
			x = 0
		}
		if y+h+2*c.BW < 0 {
			y = 0
		}
	} else {
		if x >= m.WX+m.WW {
			x = m.WX + m.WW - c.width()
		}
		if y >= m.WY+m.WH {
			y = m.WY + m.WH - c.height()
		}
		if x+w+2*c.BW <= m.WX {
			x = m.WX
		}
		if y+h+2*c.BW <= m.WY {
			y = m.WY
		}
	}
	if h < wm.bh {
		h = wm.bh
	}
	if w < wm.bh {
		w = wm.bh
	}
	if wm.Config.ResizeHints || c.IsFloating || m.Lt[m.SelLt].Arrange == nil {
		if !c.hints.valid {
			c.updateSizeHints()
		}
		w, h = adjustToHints(&c.hints, w, h)
	}
	changed := x != c.Geom.X || y != c.Geom.Y || w != c.Geom.Width || h != c.Geom.Height
	return x, y, w, h, changed
}

func (c *Client) resize(x, y, w, h int, interact bool) {
	var changed bool
	if x, y, w, h, changed = c.applySizeHints(x, y, w, h, interact); changed {
		c.resizeClient(x, y, w, h)
	}
}

func (c *Client) resizeClient(x, y, w, h int) {
	c.OldGeom = c.Geom
	c.Geom = geom{x, y, w, h}
	if c.wm.X == nil {
		return
	}
	xproto.ConfigureWindow(c.wm.X.Conn(), c.win.Id,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|
			xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(x), uint32(y), uint32(w), uint32(h), uint32(c.BW)})
	c.sendConfigureNotify()
	c.wm.X.Sync()
}

// sendConfigureNotify tells the client its authoritative geometry,
// whether or not the request that triggered it was honored.
func (c *Client) sendConfigureNotify() {
	ev := xproto.ConfigureNotifyEvent{
		Event:            c.win.Id,
		Window:           c.win.Id,
		AboveSibling:     xevent.NoWindow,
		X:                int16(c.Geom.X),
		Y:                int16(c.Geom.Y),
		Width:            uint16(c.Geom.Width),
		Height:           uint16(c.Geom.Height),
		BorderWidth:      uint16(c.BW),
		OverrideRedirect: false,
	}
	xproto.SendEvent(c.wm.X.Conn(), false, c.win.Id,
		xproto.EventMaskStructureNotify, string(ev.Bytes()))
}

func (c *Client) updateSizeHints() {
	c.hints = sizeHints{valid: true}
	nh, err := icccm.WmNormalHintsGet(c.wm.X, c.win.Id)
	if err != nil {
		return
	}
	sh := &c.hints
	if nh.Flags&icccm.SizeHintPBaseSize > 0 {
		sh.baseW = int(nh.BaseWidth)
		sh.baseH = int(nh.BaseHeight)
	} else if nh.Flags&icccm.SizeHintPMinSize > 0 {
		sh.baseW = int(nh.MinWidth)
		sh.baseH = int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPResizeInc > 0 {
		sh.incW = int(nh.WidthInc)
		sh.incH = int(nh.HeightInc)
	}
	if nh.Flags&icccm.SizeHintPMaxSize > 0 {
		sh.maxW = int(nh.MaxWidth)
		sh.maxH = int(nh.MaxHeight)
	}
	if nh.Flags&icccm.SizeHintPMinSize > 0 {
		sh.minW = int(nh.MinWidth)
		sh.minH = int(nh.MinHeight)
	} else if nh.Flags&icccm.SizeHintPBaseSize > 0 {
		sh.minW = int(nh.BaseWidth)
		sh.minH = int(nh.BaseHeight)
	}
	if nh.Flags&icccm.SizeHintPAspect > 0 {
		if nh.MinAspectNum > 0 {
			sh.minA = float64(nh.MinAspectDen) / float64(nh.MinAspectNum)
		}
		if nh.MaxAspectDen > 0 {
			sh.maxA = float64(nh.MaxAspectNum) / float64(nh.MaxAspectDen)
		}
	}
	c.IsFixed = sh.maxW != 0 && sh.maxH != 0 &&
		sh.maxW == sh.minW && sh.maxH == sh.minH
}

func (c *Client) updateTitle() {
	name, err := ewmh.WmNameGet(c.wm.X, c.win.Id)
	if name == "" || err != nil {
		name, _ = icccm.WmNameGet(c.wm.X, c.win.Id)
	}
	if name == "" {
		name = broken
	}
	c.Name = name
}

func (c *Client) updateWindowType() {
	if states, err := ewmh.WmStateGet(c.wm.X, c.win.Id); err == nil {
		for _, s := range states {
			if s == "_NET_WM_STATE_FULLSCREEN" {
				c.setFullscreen(true)
			}
		}
	}
	if types, err := ewmh.WmWindowTypeGet(c.wm.X, c.win.Id); err == nil {
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DIALOG" {
				c.IsFloating = true
			}
		}
	}
}

func (c *Client) updateWMHints() {
	hints, err := icccm.WmHintsGet(c.wm.X, c.win.Id)
	if err != nil {
		return
	}
	if c == c.wm.SelMon.Sel && hints.Flags&icccm.HintUrgency > 0 {
		// The selection is never urgent; strip the hint.
		hints.Flags &^= icccm.HintUrgency
		should(icccm.WmHintsSet(c.wm.X, c.win.Id, hints))
	} else {
		c.IsUrgent = hints.Flags&icccm.HintUrgency > 0
	}
	if hints.Flags&icccm.HintInput > 0 {
		c.NeverFocus = hints.Input == 0
	} else {
		c.NeverFocus = false
	}
}

func (c *Client) setUrgent(urgent bool) {
	c.IsUrgent = urgent
	hints, err := icccm.WmHintsGet(c.wm.X, c.win.Id)
	if err != nil {
		return
	}
	if urgent {
		hints.Flags |= icccm.HintUrgency
	} else {
		hints.Flags &^= icccm.HintUrgency
	}
	c.wm.xcheck(icccm.WmHintsSet(c.wm.X, c.win.Id, hints))
}

func (c *Client) setState(state uint) {
	c.wm.xcheck(icccm.WmStateSet(c.wm.X, c.win.Id, &icccm.WmState{State: state}))
}

// sendProtocol sends proto via WM_PROTOCOLS if the client advertises
// it, and reports whether it did.
func (c *Client) sendProtocol(proto string) bool {
	protocols, _ := icccm.WmProtocolsGet(c.wm.X, c.win.Id)
	found := false
	for _, p := range protocols {
		if p == proto {
			found = true
		}
	}
	if !found {
		return false
	}
	protoAtom, err := xprop.Atm(c.wm.X, "WM_PROTOCOLS")
	if err != nil {
		return false
	}
	target, err := xprop.Atm(c.wm.X, proto)
	if err != nil {
		return false
	}
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.win.Id,
		Type:   protoAtom,
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(target),
			uint32(xproto.TimeCurrentTime),
			0, 0, 0,
		}),
	}
	xproto.SendEvent(c.wm.X.Conn(), false, c.win.Id,
		xproto.EventMaskNoEvent, string(ev.Bytes()))
	return true
}

func (c *Client) setFullscreen(fullscreen bool) {
	if fullscreen && !c.IsFullscreen {
		should(ewmh.WmStateSet(c.wm.X, c.win.Id, []string{"_NET_WM_STATE_FULLSCREEN"}))
		c.IsFullscreen = true
		c.OldState = c.IsFloating
		c.OldBW = c.BW
		c.BW = 0
		c.IsFloating = true
		c.resizeClient(c.Mon.MX, c.Mon.MY, c.Mon.MW, c.Mon.MH)
		c.win.Stack(xproto.StackModeAbove)
	} else if !fullscreen && c.IsFullscreen {
		should(ewmh.WmStateSet(c.wm.X, c.win.Id, []string{}))
		c.IsFullscreen = false
		c.IsFloating = c.OldState
		c.BW = c.OldBW
		c.Geom = c.OldGeom
		c.resizeClient(c.Geom.X, c.Geom.Y, c.Geom.Width, c.Geom.Height)
		c.Mon.arrange()
	}
}

// matchRules folds the configured rules over a client's class,
// instance and title. Matching is substring; empty patterns match
// everything. monitor is -1 unless a matching rule pinned one.
func matchRules(rules []config.Rule, class, instance, title string) (tags uint32, floating bool, monitor int) {
	monitor = -1
	for i := range rules {
		r := &rules[i]
		if (r.Title == "" || strings.Contains(title, r.Title)) &&
			(r.Class == "" || strings.Contains(class, r.Class)) &&
			(r.Instance == "" || strings.Contains(instance, r.Instance)) {
			floating = r.Floating
			tags |= r.Tags
			if r.Monitor >= 0 {
				monitor = r.Monitor
			}
		}
	}
	return tags, floating, monitor
}

func (c *Client) applyRules() {
	class, instance := broken, broken
	if ch, err := icccm.WmClassGet(c.wm.X, c.win.Id); err == nil {
		class, instance = ch.Class, ch.Instance
	}
	tags, floating, monitor := matchRules(c.wm.Config.Rules, class, instance, c.Name)
	c.IsFloating = floating
	if monitor >= 0 && monitor < len(c.wm.Mons) {
		c.Mon = c.wm.Mons[monitor]
	}
	if tags&c.wm.tagMask != 0 {
		c.Tags = tags & c.wm.tagMask
	} else {
		c.Tags = c.Mon.TagSet[c.Mon.SelTags]
	}
}

func (wm *WM) transientFor(win xproto.Window) (*Client, error) {
	parent, err := icccm.WmTransientForGet(wm.X, win)
	if err != nil {
		return nil, err
	}
	return wm.Wins[parent], nil
}

func (wm *WM) manage(win xproto.Window) {
	if wm.Wins[win] != nil {
		return
	}
	c := &Client{
		wm:  wm,
		win: xwindow.New(wm.X, win),
		Mon: wm.SelMon,
	}

	g, err := xproto.GetGeometry(wm.X.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return
	}
	c.Geom = geom{int(g.X), int(g.Y), int(g.Width), int(g.Height)}
	c.OldGeom = c.Geom
	c.OldBW = int(g.BorderWidth)

	c.updateTitle()
	logWindowEvent(c, "managing")
	transient := false
	if parent, err := wm.transientFor(win); err == nil && parent != nil {
		transient = true
		c.Mon = parent.Mon
		c.Tags = parent.Tags
	} else {
		c.applyRules()
	}

	m := c.Mon
	if c.Geom.X+c.width() > m.WX+m.WW {
		c.Geom.X = m.WX + m.WW - c.width()
	}
	if c.Geom.Y+c.height() > m.WY+m.WH {
		c.Geom.Y = m.WY + m.WH - c.height()
	}
	c.Geom.X = max(c.Geom.X, m.WX)
	c.Geom.Y = max(c.Geom.Y, m.WY)
	c.BW = wm.Config.BorderWidth

	c.win.Change(xproto.CwBorderPixel, uint32(wm.Config.Colors["normborder"]))
	xproto.ConfigureWindow(wm.X.Conn(), win, xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(c.BW)})
	c.sendConfigureNotify()
	c.updateWindowType()
	c.updateSizeHints()
	c.updateWMHints()
	should(c.win.Listen(
		xproto.EventMaskEnterWindow,
		xproto.EventMaskFocusChange,
		xproto.EventMaskPropertyChange,
		xproto.EventMaskStructureNotify,
	))
	wm.connectClientEvents(c)
	c.grabButtons()
	if !c.IsFloating {
		c.IsFloating = transient || c.IsFixed
		c.OldState = c.IsFloating
	}
	if c.IsFloating {
		c.win.Stack(xproto.StackModeAbove)
	}

	wm.Wins[win] = c
	c.Mon.attach(c)
	c.Mon.attachStack(c)
	should(ewmh.ClientListSet(wm.X, wm.clientList()))

	// Map far off-screen first; arrange moves it into place. Some
	// toolkits race their first paint against the initial position
	// otherwise.
	c.win.MoveResize(c.Geom.X+2*wm.sw, c.Geom.Y, c.Geom.Width, c.Geom.Height)
	c.setState(icccm.StateNormal)
	if c.Mon == wm.SelMon && wm.SelMon.Sel != nil {
		wm.unfocus(wm.SelMon.Sel, false)
	}
	c.Mon.Sel = c
	c.Mon.arrange()
	c.win.Map()
	wm.focus(nil)
}

func (wm *WM) unmanage(c *Client, destroyed bool) {
	logWindowEvent(c, "unmanaging")
	m := c.Mon
	m.detach(c)
	m.detachStack(c)
	if !destroyed {
		// The window may die between any two of these requests; take
		// a server grab and swallow the errors.
		wm.suppressed++
		xproto.GrabServer(wm.X.Conn())
		xproto.ConfigureWindow(wm.X.Conn(), c.win.Id,
			xproto.ConfigWindowBorderWidth, []uint32{uint32(c.OldBW)})
		c.setState(icccm.StateWithdrawn)
		wm.X.Sync()
		xproto.UngrabServer(wm.X.Conn())
		wm.suppressed--
	}
	mousebind.Detach(wm.X, c.win.Id)
	xevent.Detach(wm.X, c.win.Id)
	delete(wm.Wins, c.win.Id)
	wm.focus(nil)
	should(ewmh.ClientListSet(wm.X, wm.clientList()))
	m.arrange()
}

func (wm *WM) clientList() []xproto.Window {
	var wins []xproto.Window
	for _, m := range wm.Mons {
		for i := len(m.Clients) - 1; i >= 0; i-- {
			wins = append(wins, m.Clients[i].win.Id)
		}
	}
	return wins
}

func (c *Client) grabButtons() {
	wm := c.wm
	// Click to focus; the press is replayed to the client.
	for _, btn := range []string{"1", "2", "3"} {
		btn := btn
		should(mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			wm.focus(c)
			c.Mon.restack()
		}).Connect(wm.X, c.win.Id, btn, true, true))
	}
	if ms, ok := wm.Config.MouseBinds["window_move"]; ok {
		mousebind.Drag(wm.X, c.win.Id, c.win.Id, ms.ToXGB(), true,
			c.moveBegin, c.moveStep, c.moveEnd)
	}
	if ms, ok := wm.Config.MouseBinds["window_resize"]; ok {
		mousebind.Drag(wm.X, c.win.Id, c.win.Id, ms.ToXGB(), true,
			c.resizeBegin, c.resizeStep, c.resizeEnd)
	}
	if ms, ok := wm.Config.MouseBinds["window_zoom"]; ok {
		should(mousebind.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			wm.focus(c)
			c.pop()
		}).Connect(wm.X, c.win.Id, ms.ToXGB(), false, true))
	}
}

func (c *Client) kill() {
	if c.sendProtocol("WM_DELETE_WINDOW") {
		return
	}
	wm := c.wm
	wm.suppressed++
	xproto.GrabServer(wm.X.Conn())
	c.win.Kill()
	wm.X.Sync()
	xproto.UngrabServer(wm.X.Conn())
	wm.suppressed--
}

// minimize packs the client into the dock strip at the top of its
// monitor: fixed 50×20 slabs laid out left to right in client order.
func (c *Client) minimize() {
	if c.IsMinimized {
		return
	}
	c.MinGeom = c.Geom
	if c.IsFullscreen {
		c.setFullscreen(false)
	}
	c.IsMinimized = true
	c.IsFloating = true
	c.IsFixed = true
	c.Mon.packMinimized()
	c.Mon.arrange()
}

func (c *Client) unminimize() {
	if !c.IsMinimized {
		return
	}
	c.IsMinimized = false
	c.IsFixed = false
	c.IsFloating = false
	c.resize(c.MinGeom.X, c.MinGeom.Y, c.MinGeom.Width, c.MinGeom.Height, true)
	c.Mon.packMinimized()
	c.Mon.arrange()
}

func logWindowEvent(c *Client, s interface{}) {
	log.Printf("%d (%s): %s", c.win.Id, c.Name, s)
}
