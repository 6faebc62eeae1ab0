package main

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Event dispatch is a map from event kind (and window) to handler,
// maintained by xgbutil's xevent machinery: each Connect below adds an
// O(1) table entry, and xevent.Main consults the table per fetched
// event. Unconnected event kinds are dropped on the floor.

func (wm *WM) connectRootEvents() {
	root := wm.X.RootWin()

	xevent.MapRequestFun(func(xu *xgbutil.XUtil, ev xevent.MapRequestEvent) {
		attrs, err := xproto.GetWindowAttributes(wm.X.Conn(), ev.Window).Reply()
		if err != nil || attrs.OverrideRedirect {
			return
		}
		wm.manage(ev.Window)
	}).Connect(wm.X, root)

	xevent.ConfigureRequestFun(wm.configureRequest).Connect(wm.X, root)

	xevent.ConfigureNotifyFun(func(xu *xgbutil.XUtil, ev xevent.ConfigureNotifyEvent) {
		if ev.Window != root {
			return
		}
		wm.rootConfigured(int(ev.Width), int(ev.Height))
	}).Connect(wm.X, root)

	xevent.MotionNotifyFun(func(xu *xgbutil.XUtil, ev xevent.MotionNotifyEvent) {
		if ev.Event != root {
			return
		}
		m := wm.monitorAt(int(ev.RootX), int(ev.RootY))
		if m != wm.MotionMon && wm.MotionMon != nil {
			wm.unfocus(wm.SelMon.Sel, true)
			wm.SelMon = m
			wm.focus(nil)
		}
		wm.MotionMon = m
	}).Connect(wm.X, root)

	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		wm.crossed(ev.Event, ev.Mode, ev.Detail)
	}).Connect(wm.X, root)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		if ev.Window == root && ev.Atom == xproto.AtomWmName {
			wm.updateStatus()
		}
	}).Connect(wm.X, root)
}

func (wm *WM) connectClientEvents(c *Client) {
	win := c.win.Id

	xevent.UnmapNotifyFun(func(xu *xgbutil.XUtil, ev xevent.UnmapNotifyEvent) {
		// We never unmap managed windows ourselves (hiding moves them
		// off-screen), so an unmap is the client withdrawing.
		if wm.Wins[ev.Window] == c {
			wm.unmanage(c, false)
		}
	}).Connect(wm.X, win)

	xevent.DestroyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.DestroyNotifyEvent) {
		if wm.Wins[ev.Window] == c {
			wm.unmanage(c, true)
		}
	}).Connect(wm.X, win)

	xevent.EnterNotifyFun(func(xu *xgbutil.XUtil, ev xevent.EnterNotifyEvent) {
		wm.crossed(ev.Event, ev.Mode, ev.Detail)
	}).Connect(wm.X, win)

	xevent.FocusInFun(func(xu *xgbutil.XUtil, ev xevent.FocusInEvent) {
		// Some clients grab focus behind our back; give it back to the
		// selection.
		if sel := wm.SelMon.Sel; sel != nil && ev.Event != sel.win.Id {
			wm.setFocus(sel)
		}
	}).Connect(wm.X, win)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		wm.clientProperty(c, ev.Atom)
	}).Connect(wm.X, win)

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		wm.clientMessage(c, ev)
	}).Connect(wm.X, win)
}

// crossed handles a pointer crossing into win: meaningful crossings
// focus the entered client, and crossing onto another monitor selects
// it.
func (wm *WM) crossed(win xproto.Window, mode, detail byte) {
	root := wm.X.RootWin()
	if (mode != xproto.NotifyModeNormal || detail == xproto.NotifyDetailInferior) && win != root {
		return
	}
	c := wm.Wins[win]
	var m *Monitor
	if c != nil {
		m = c.Mon
	} else {
		m = wm.winToMon(win)
	}
	if m != wm.SelMon {
		wm.unfocus(wm.SelMon.Sel, true)
		wm.SelMon = m
	} else if c == nil || c == wm.SelMon.Sel {
		return
	}
	wm.focus(c)
}

func (wm *WM) winToMon(win xproto.Window) *Monitor {
	if win == wm.X.RootWin() {
		if p, err := xproto.QueryPointer(wm.X.Conn(), win).Reply(); err == nil {
			return wm.monitorAt(int(p.RootX), int(p.RootY))
		}
		return wm.SelMon
	}
	for _, m := range wm.Mons {
		if m.BarWin != nil && m.BarWin.Id == win {
			return m
		}
	}
	if c := wm.Wins[win]; c != nil {
		return c.Mon
	}
	return wm.SelMon
}

func (wm *WM) configureRequest(xu *xgbutil.XUtil, ev xevent.ConfigureRequestEvent) {
	c := wm.Wins[ev.Window]
	if c == nil {
		// Not ours; pass the request through untouched.
		mask, values := uint16(0), []uint32(nil)
		if ev.ValueMask&xproto.ConfigWindowX != 0 {
			mask |= xproto.ConfigWindowX
			values = append(values, uint32(ev.X))
		}
		if ev.ValueMask&xproto.ConfigWindowY != 0 {
			mask |= xproto.ConfigWindowY
			values = append(values, uint32(ev.Y))
		}
		if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
			mask |= xproto.ConfigWindowWidth
			values = append(values, uint32(ev.Width))
		}
		if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
			mask |= xproto.ConfigWindowHeight
			values = append(values, uint32(ev.Height))
		}
		if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
			mask |= xproto.ConfigWindowBorderWidth
			values = append(values, uint32(ev.BorderWidth))
		}
		if ev.ValueMask&xproto.ConfigWindowSibling != 0 {
			mask |= xproto.ConfigWindowSibling
			values = append(values, uint32(ev.Sibling))
		}
		if ev.ValueMask&xproto.ConfigWindowStackMode != 0 {
			mask |= xproto.ConfigWindowStackMode
			values = append(values, uint32(ev.StackMode))
		}
		xproto.ConfigureWindow(wm.X.Conn(), ev.Window, mask, values)
		return
	}

	m := c.Mon
	if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		c.BW = int(ev.BorderWidth)
	} else if c.IsFloating || m.Lt[m.SelLt].Arrange == nil {
		if ev.ValueMask&xproto.ConfigWindowX != 0 {
			c.OldGeom.X = c.Geom.X
			c.Geom.X = m.MX + int(ev.X)
		}
		if ev.ValueMask&xproto.ConfigWindowY != 0 {
			c.OldGeom.Y = c.Geom.Y
			c.Geom.Y = m.MY + int(ev.Y)
		}
		if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
			c.OldGeom.Width = c.Geom.Width
			c.Geom.Width = int(ev.Width)
		}
		if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
			c.OldGeom.Height = c.Geom.Height
			c.Geom.Height = int(ev.Height)
		}
		if c.Geom.X+c.Geom.Width > m.MX+m.MW && c.IsFloating {
			c.Geom.X = m.MX + (m.MW/2 - c.width()/2)
		}
		if c.Geom.Y+c.Geom.Height > m.MY+m.MH && c.IsFloating {
			c.Geom.Y = m.MY + (m.MH/2 - c.height()/2)
		}
		if ev.ValueMask&(xproto.ConfigWindowX|xproto.ConfigWindowY) != 0 &&
			ev.ValueMask&(xproto.ConfigWindowWidth|xproto.ConfigWindowHeight) == 0 {
			c.sendConfigureNotify()
		}
		if c.visible() {
			c.win.MoveResize(c.Geom.X, c.Geom.Y, c.Geom.Width, c.Geom.Height)
		}
	} else {
		// Tiled: the layout owns the geometry; answer with the truth.
		c.sendConfigureNotify()
	}
	wm.X.Sync()
}

// rootConfigured reacts to the root window changing size: re-detect
// monitors, re-place bars and fullscreen clients, re-arrange.
func (wm *WM) rootConfigured(w, h int) {
	dirty := wm.sw != w || wm.sh != h
	wm.sw, wm.sh = w, h
	if wm.updateGeom() || dirty {
		wm.updateBars()
		for _, m := range wm.Mons {
			for _, c := range m.Clients {
				if c.IsFullscreen {
					c.resizeClient(m.MX, m.MY, m.MW, m.MH)
				}
			}
			m.BarWin.MoveResize(m.WX, m.BY, m.WW, wm.bh)
		}
		wm.focus(nil)
		wm.arrangeAll()
		for _, m := range wm.Mons {
			m.restack()
		}
	}
}

func (wm *WM) clientProperty(c *Client, atom xproto.Atom) {
	switch atom {
	case xproto.AtomWmTransientFor:
		if !c.IsFloating {
			if t, err := wm.transientFor(c.win.Id); err == nil && t != nil {
				c.IsFloating = true
				c.Mon.arrange()
			}
		}
	case xproto.AtomWmNormalHints:
		c.hints.valid = false
	case xproto.AtomWmHints:
		c.updateWMHints()
		wm.drawBars()
	case xproto.AtomWmName:
		wm.retitled(c)
	default:
		if atom == wm.atom("_NET_WM_NAME") {
			wm.retitled(c)
		} else if atom == wm.atom("_NET_WM_WINDOW_TYPE") {
			c.updateWindowType()
		}
	}
}

func (wm *WM) retitled(c *Client) {
	c.updateTitle()
	if c == c.Mon.Sel {
		c.Mon.drawBar()
	}
}

func (wm *WM) clientMessage(c *Client, ev xevent.ClientMessageEvent) {
	if ev.Format != 32 {
		return
	}
	data := ev.Data.Data32
	switch ev.Type {
	case wm.atom("_NET_WM_STATE"):
		fullscreen := wm.atom("_NET_WM_STATE_FULLSCREEN")
		if xproto.Atom(data[1]) == fullscreen || xproto.Atom(data[2]) == fullscreen {
			const (
				remove = 0
				add    = 1
				toggle = 2
			)
			c.setFullscreen(data[0] == add ||
				(data[0] == toggle && !c.IsFullscreen))
		}
	case wm.atom("_NET_ACTIVE_WINDOW"):
		if c != wm.SelMon.Sel && !c.IsUrgent {
			c.setUrgent(true)
			wm.drawBars()
		}
	}
}

// atom interns (and caches, via xprop) an atom by name.
func (wm *WM) atom(name string) xproto.Atom {
	a, err := xprop.Atm(wm.X, name)
	if err != nil {
		return 0
	}
	return a
}
