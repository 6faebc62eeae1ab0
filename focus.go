package main

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
)

// focus hands input focus to c, or to the most recently focused
// visible client on the selected monitor when c is nil or hidden. A
// nil result parks focus on the root.
func (wm *WM) focus(c *Client) {
	if c == nil || !c.visible() {
		c = wm.SelMon.firstVisible()
	}
	if wm.SelMon.Sel != nil && wm.SelMon.Sel != c {
		wm.unfocus(wm.SelMon.Sel, false)
	}
	if c != nil {
		if c.Mon != wm.SelMon {
			wm.SelMon = c.Mon
		}
		if c.IsUrgent {
			c.setUrgent(false)
		}
		c.Mon.detachStack(c)
		c.Mon.attachStack(c)
		c.win.Change(xproto.CwBorderPixel, uint32(wm.Config.Colors["selborder"]))
		wm.setFocus(c)
	} else {
		wm.focusRoot()
	}
	wm.SelMon.Sel = c
	wm.drawBars()
}

func (wm *WM) setFocus(c *Client) {
	if !c.NeverFocus {
		c.win.Focus()
		should(ewmh.ActiveWindowSet(wm.X, c.win.Id))
	}
	c.sendProtocol("WM_TAKE_FOCUS")
}

func (wm *WM) focusRoot() {
	xproto.SetInputFocus(wm.X.Conn(), xproto.InputFocusPointerRoot,
		wm.X.RootWin(), xproto.TimeCurrentTime)
	if a, err := xprop.Atm(wm.X, "_NET_ACTIVE_WINDOW"); err == nil {
		xproto.DeleteProperty(wm.X.Conn(), wm.X.RootWin(), a)
	}
}

func (wm *WM) unfocus(c *Client, setFocus bool) {
	if c == nil {
		return
	}
	c.win.Change(xproto.CwBorderPixel, uint32(wm.Config.Colors["normborder"]))
	if setFocus {
		wm.focusRoot()
	}
}

// restack raises a floating selection and, in tiled layouts, pushes
// the visible tiled clients below the bar in focus-stack order. The
// EnterNotifys this produces are discarded so the pointer position
// doesn't steal focus mid-restack.
func (m *Monitor) restack() {
	wm := m.wm
	m.drawBar()
	if m.Sel == nil {
		return
	}
	if m.Sel.IsFloating || m.Lt[m.SelLt].Arrange == nil {
		m.Sel.win.Stack(xproto.StackModeAbove)
	}
	if m.Lt[m.SelLt].Arrange != nil {
		sibling := m.BarWin.Id
		for _, c := range m.Stack {
			if !c.IsFloating && c.visible() {
				c.win.StackSibling(sibling, xproto.StackModeBelow)
				sibling = c.win.Id
			}
		}
	}
	wm.X.Sync()
	xevent.Read(wm.X, false)
	queue := xevent.Peek(wm.X)
	for i := len(queue) - 1; i >= 0; i-- {
		if queue[i].Err != nil {
			continue
		}
		if _, ok := queue[i].Event.(xproto.EnterNotifyEvent); ok {
			xevent.DequeueAt(wm.X, i)
		}
	}
}

// nextVisible returns the next (dir > 0) or previous visible client
// relative to the selection in client order, wrapping around.
func (m *Monitor) nextVisible(dir int) *Client {
	if m.Sel == nil || len(m.Clients) == 0 {
		return nil
	}
	idx := 0
	for i, c := range m.Clients {
		if c == m.Sel {
			idx = i
		}
	}
	n := len(m.Clients)
	step := 1
	if dir < 0 {
		step = n - 1
	}
	for i := (idx + step) % n; i != idx; i = (i + step) % n {
		if m.Clients[i].visible() {
			return m.Clients[i]
		}
	}
	return nil
}

func (wm *WM) focusStack(dir int) {
	sel := wm.SelMon.Sel
	if sel == nil || (sel.IsFullscreen && wm.Config.LockFullscreen) {
		return
	}
	if c := wm.SelMon.nextVisible(dir); c != nil {
		wm.focus(c)
		wm.SelMon.restack()
	}
}

// pop moves c to the head of its monitor's client order, promoting it
// to the master area, and focuses it.
func (c *Client) pop() {
	c.Mon.detach(c)
	c.Mon.attach(c)
	c.wm.focus(c)
	c.Mon.arrange()
}
