package main

import (
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Interactive move and resize run as modal pointer drags: the pointer
// is grabbed, motion steps mutate the client, and release ends the
// mode. The event loop keeps dispatching in between, so other windows
// still paint and negotiate geometry during a drag. Motion is
// throttled to 60 steps a second.

const motionInterval = time.Second / 60

func (c *Client) throttled() bool {
	now := time.Now().UnixNano()
	if now-c.lastMotion < int64(motionInterval) {
		return true
	}
	c.lastMotion = now
	return false
}

func (c *Client) moveBegin(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
	if c.IsFullscreen {
		return false, 0
	}
	wm := c.wm
	wm.focus(c)
	c.Mon.restack()
	c.dragStart = c.Geom
	c.dragRootX, c.dragRootY = rootX, rootY
	return true, wm.Cursors["move"]
}

func (c *Client) moveStep(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	if c.throttled() {
		return
	}
	wm := c.wm
	m := c.Mon
	snap := wm.Config.SnapDist

	nx := c.dragStart.X + rootX - c.dragRootX
	ny := c.dragStart.Y + rootY - c.dragRootY
	nx += snapcalc(nx, nx+c.width(), m.WX, m.WX+m.WW, snap)
	ny += snapcalc(ny, ny+c.height(), m.WY, m.WY+m.WH, snap)
	for _, o := range m.Clients {
		if o == c || !o.visible() {
			continue
		}
		nx += snapcalc(nx, nx+c.width(), o.Geom.X+o.width(), o.Geom.X, snap)
		ny += snapcalc(ny, ny+c.height(), o.Geom.Y+o.height(), o.Geom.Y, snap)
	}
	if !c.IsFloating && m.Lt[m.SelLt].Arrange != nil &&
		(abs(nx-c.Geom.X) > snap || abs(ny-c.Geom.Y) > snap) {
		c.toggleFloating()
	}
	if m.Lt[m.SelLt].Arrange == nil || c.IsFloating {
		c.resize(nx, ny, c.Geom.Width, c.Geom.Height, true)
	}
}

func (c *Client) moveEnd(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	c.dropOntoMonitor()
}

func (c *Client) resizeBegin(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) (bool, xproto.Cursor) {
	if c.IsFullscreen {
		return false, 0
	}
	wm := c.wm
	wm.focus(c)
	c.Mon.restack()
	c.dragStart = c.Geom
	c.warpToCorner()
	return true, wm.Cursors["resize"]
}

func (c *Client) resizeStep(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	if c.throttled() {
		return
	}
	wm := c.wm
	m := c.Mon
	snap := wm.Config.SnapDist

	nw := max(rootX-c.dragStart.X-2*c.BW+1, 1)
	nh := max(rootY-c.dragStart.Y-2*c.BW+1, 1)
	if m.WX+nw >= wm.SelMon.WX && m.WX+nw <= wm.SelMon.WX+wm.SelMon.WW &&
		m.WY+nh >= wm.SelMon.WY && m.WY+nh <= wm.SelMon.WY+wm.SelMon.WH {
		if !c.IsFloating && m.Lt[m.SelLt].Arrange != nil &&
			(abs(nw-c.Geom.Width) > snap || abs(nh-c.Geom.Height) > snap) {
			c.toggleFloating()
		}
	}
	if m.Lt[m.SelLt].Arrange == nil || c.IsFloating {
		c.resize(c.dragStart.X, c.dragStart.Y, nw, nh, true)
	}
}

func (c *Client) resizeEnd(xu *xgbutil.XUtil, rootX, rootY, eventX, eventY int) {
	c.warpToCorner()
	c.dropOntoMonitor()
}

func (c *Client) warpToCorner() {
	xproto.WarpPointer(c.wm.X.Conn(), xproto.WindowNone, c.win.Id, 0, 0, 0, 0,
		int16(c.Geom.Width+c.BW-1), int16(c.Geom.Height+c.BW-1))
}

// dropOntoMonitor transfers the client to whichever monitor now holds
// most of its rectangle.
func (c *Client) dropOntoMonitor() {
	wm := c.wm
	m := wm.rectToMon(geom{c.Geom.X, c.Geom.Y, c.width(), c.height()})
	if m != c.Mon {
		wm.sendMon(c, m)
		wm.SelMon = m
		wm.focus(nil)
	}
}

// toggleFloating floats a tiled client or re-tiles a floating one.
// Fixed-size clients always float.
func (c *Client) toggleFloating() {
	if c.IsFullscreen {
		return
	}
	c.IsFloating = !c.IsFloating || c.IsFixed
	if c.IsFloating {
		c.resize(c.Geom.X, c.Geom.Y, c.Geom.Width, c.Geom.Height, false)
	}
	c.Mon.arrange()
}
