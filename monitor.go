package main

import (
	"fmt"

	"github.com/BurntSushi/xgbutil/xinerama"
	"github.com/BurntSushi/xgbutil/xrect"
	"github.com/BurntSushi/xgbutil/xwindow"

	"honnef.co/go/twm/draw"
	"honnef.co/go/twm/internal/quadtree"
)

// Monitor is one logical output. Clients keeps insertion order (newest
// first), Stack keeps focus order (most recently focused first); both
// always hold the same set.
type Monitor struct {
	wm  *WM
	Num int

	LtSymbol string
	MFact    float64
	NMaster  int

	MX, MY, MW, MH int // output rectangle
	WX, WY, WW, WH int // working area, bar excluded
	BY             int // bar y position

	ShowBar bool
	TopBar  bool

	SelTags int
	SelLt   int
	TagSet  [2]uint32
	Lt      [2]*Layout

	Clients []*Client
	Stack   []*Client
	Sel     *Client

	BarWin *xwindow.Window
	gcs    draw.GCs
}

func (wm *WM) createMon() *Monitor {
	cfg := wm.Config
	return &Monitor{
		wm:       wm,
		MFact:    cfg.MFact,
		NMaster:  cfg.NMaster,
		ShowBar:  cfg.ShowBar,
		TopBar:   cfg.TopBar,
		TagSet:   [2]uint32{1, 1},
		Lt:       [2]*Layout{layouts[0], layouts[1]},
		LtSymbol: layouts[0].Symbol,
		gcs:      make(draw.GCs),
	}
}

func (m *Monitor) attach(c *Client) {
	m.Clients = append([]*Client{c}, m.Clients...)
}

func (m *Monitor) detach(c *Client) {
	for i, o := range m.Clients {
		if o == c {
			m.Clients = append(m.Clients[:i], m.Clients[i+1:]...)
			return
		}
	}
}

func (m *Monitor) attachStack(c *Client) {
	m.Stack = append([]*Client{c}, m.Stack...)
}

func (m *Monitor) detachStack(c *Client) {
	for i, o := range m.Stack {
		if o == c {
			m.Stack = append(m.Stack[:i], m.Stack[i+1:]...)
			break
		}
	}
	if c == m.Sel {
		m.Sel = m.firstVisible()
	}
}

// firstVisible returns the most recently focused visible client.
func (m *Monitor) firstVisible() *Client {
	for _, c := range m.Stack {
		if c.visible() {
			return c
		}
	}
	return nil
}

// tiled returns the visible, non-floating clients in client order.
func (m *Monitor) tiled() []*Client {
	var out []*Client
	for _, c := range m.Clients {
		if c.visible() && !c.IsFloating {
			out = append(out, c)
		}
	}
	return out
}

func (m *Monitor) arrange() {
	m.showHide()
	m.arrangeMon()
	m.restack()
}

func (wm *WM) arrangeAll() {
	for _, m := range wm.Mons {
		m.showHide()
	}
	for _, m := range wm.Mons {
		m.arrangeMon()
	}
}

func (m *Monitor) arrangeMon() {
	m.LtSymbol = m.Lt[m.SelLt].Symbol
	if arrange := m.Lt[m.SelLt].Arrange; arrange != nil {
		arrange(m)
	}
}

// showHide moves hidden clients far off-screen instead of unmapping
// them: tag switches stay O(1) and generate no Unmap/Map churn.
func (m *Monitor) showHide() {
	for _, c := range m.Stack {
		if !c.visible() {
			continue
		}
		c.win.Move(c.Geom.X, c.Geom.Y)
		if (m.Lt[m.SelLt].Arrange == nil || c.IsFloating) && !c.IsFullscreen {
			c.resize(c.Geom.X, c.Geom.Y, c.Geom.Width, c.Geom.Height, false)
		}
	}
	for i := len(m.Stack) - 1; i >= 0; i-- {
		c := m.Stack[i]
		if !c.visible() {
			c.win.Move(-2*c.width(), c.Geom.Y)
		}
	}
}

// tile is the master/stack arranger. The first NMaster visible tiled
// clients share the master column of width WW·MFact, the rest stack in
// the remaining column. Integer division gives the remainder to the
// last row of each column.
func tile(m *Monitor) {
	tiled := m.tiled()
	n := len(tiled)
	if n == 0 {
		return
	}

	var mw int
	if n > m.NMaster {
		if m.NMaster > 0 {
			mw = int(float64(m.WW) * m.MFact)
		}
	} else {
		mw = m.WW
	}
	my, ty := 0, 0
	for i, c := range tiled {
		if i < m.NMaster {
			h := (m.WH - my) / (min(n, m.NMaster) - i)
			c.resize(m.WX, m.WY+my, mw-2*c.BW, h-2*c.BW, false)
			if my+c.height() < m.WH {
				my += c.height()
			}
		} else {
			h := (m.WH - ty) / (n - i)
			c.resize(m.WX+mw, m.WY+ty, m.WW-mw-2*c.BW, h-2*c.BW, false)
			if ty+c.height() < m.WH {
				ty += c.height()
			}
		}
	}
}

// monocle maximizes every visible tiled client and shows the visible
// count in the layout symbol.
func monocle(m *Monitor) {
	n := 0
	for _, c := range m.Clients {
		if c.visible() {
			n++
		}
	}
	if n > 0 {
		m.LtSymbol = fmt.Sprintf("[%d]", n)
	}
	for _, c := range m.tiled() {
		c.resize(m.WX, m.WY, m.WW-2*c.BW, m.WH-2*c.BW, false)
	}
}

const (
	minimizedW = 50
	minimizedH = 20
)

// packMinimized lays the monitor's minimized clients out as a dock
// strip along the top of the output, left to right in client order.
func (m *Monitor) packMinimized() {
	x := m.MX
	for _, c := range m.Clients {
		if c.IsMinimized {
			c.resize(x, m.MY+m.wm.fontH+2, minimizedW, minimizedH, false)
			x += minimizedW
		}
	}
}

func (m *Monitor) updateBarPos() {
	bh := m.wm.bh
	m.WY = m.MY
	m.WH = m.MH
	if m.ShowBar {
		m.WH -= bh
		if m.TopBar {
			m.BY = m.WY
			m.WY += bh
		} else {
			m.BY = m.WY + m.WH
		}
	} else {
		m.BY = -bh
	}
	m.WX = m.MX
	m.WW = m.MW
}

// setView switches the monitor to a tagset. A zero mask flips back to
// the previously selected tagset.
func (m *Monitor) setView(mask uint32) {
	m.SelTags ^= 1
	if mask != 0 {
		m.TagSet[m.SelTags] = mask & m.wm.tagMask
	}
}

func (wm *WM) monitorAt(x, y int) *Monitor {
	if wm.monIndex != nil {
		if i := wm.monIndex.Get(x, y); i > 0 && i <= len(wm.Mons) {
			return wm.Mons[i-1]
		}
	}
	return wm.SelMon
}

// rectToMon returns the monitor with the largest intersection with the
// rectangle, or the selected one if it overlaps none.
func (wm *WM) rectToMon(g geom) *Monitor {
	r := wm.SelMon
	area := 0
	for _, m := range wm.Mons {
		w := min(g.X+g.Width, m.WX+m.WW) - max(g.X, m.WX)
		h := min(g.Y+g.Height, m.WY+m.WH) - max(g.Y, m.WY)
		if a := max(0, w) * max(0, h); a > area {
			area = a
			r = m
		}
	}
	return r
}

func (wm *WM) dirToMon(dir int) *Monitor {
	if len(wm.Mons) == 0 {
		return wm.SelMon
	}
	i := 0
	for j, m := range wm.Mons {
		if m == wm.SelMon {
			i = j
		}
	}
	i = (i + dir + len(wm.Mons)) % len(wm.Mons)
	return wm.Mons[i]
}

func (wm *WM) sendMon(c *Client, m *Monitor) {
	if c.Mon == m {
		return
	}
	wm.unfocus(c, true)
	c.Mon.detach(c)
	c.Mon.detachStack(c)
	c.Mon = m
	c.Tags = m.TagSet[m.SelTags]
	m.attach(c)
	m.attachStack(c)
	wm.focus(nil)
	wm.arrangeAll()
	for _, om := range wm.Mons {
		om.restack()
	}
}

// updateGeom reconciles the monitor list against the Xinerama screens:
// duplicates are dropped, surplus screens get new monitors, vanished
// screens hand their clients to the first monitor. It reports whether
// anything changed.
func (wm *WM) updateGeom() bool {
	dirty := false
	var unique []xrect.Rect
	if heads, err := xinerama.PhysicalHeads(wm.X); err == nil && len(heads) > 0 {
	outer:
		for _, h := range heads {
			for _, u := range unique {
				if u.X() == h.X() && u.Y() == h.Y() &&
					u.Width() == h.Width() && u.Height() == h.Height() {
					continue outer
				}
			}
			unique = append(unique, h)
		}
	} else {
		unique = append(unique, xrect.New(0, 0, wm.sw, wm.sh))
	}

	for len(wm.Mons) < len(unique) {
		dirty = true
		m := wm.createMon()
		m.Num = len(wm.Mons)
		wm.Mons = append(wm.Mons, m)
	}
	for i, r := range unique {
		m := wm.Mons[i]
		if m.MX != r.X() || m.MY != r.Y() || m.MW != r.Width() || m.MH != r.Height() {
			dirty = true
			m.MX, m.MY, m.MW, m.MH = r.X(), r.Y(), r.Width(), r.Height()
			m.updateBarPos()
		}
	}
	for len(wm.Mons) > len(unique) {
		dirty = true
		m := wm.Mons[len(wm.Mons)-1]
		first := wm.Mons[0]
		for len(m.Clients) > 0 {
			c := m.Clients[0]
			m.detach(c)
			m.detachStack(c)
			c.Mon = first
			first.attach(c)
			first.attachStack(c)
		}
		if wm.SelMon == m {
			wm.SelMon = first
		}
		if wm.MotionMon == m {
			wm.MotionMon = nil
		}
		if m.BarWin != nil {
			m.BarWin.Destroy()
		}
		wm.Mons = wm.Mons[:len(wm.Mons)-1]
	}

	if wm.SelMon == nil && len(wm.Mons) > 0 {
		wm.SelMon = wm.Mons[0]
	}

	if dirty {
		size := max(wm.sw, wm.sh)
		for _, m := range wm.Mons {
			size = max(size, m.MX+m.MW)
			size = max(size, m.MY+m.MH)
		}
		wm.monIndex = quadtree.New(size)
		for i, m := range wm.Mons {
			wm.monIndex.SetRegion(quadtree.Region{
				X:      m.MX,
				Y:      m.MY,
				Width:  m.MW,
				Height: m.MH,
			}, i+1)
		}
	}
	return dirty
}
