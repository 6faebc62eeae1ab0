package main

import (
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xwindow"

	"honnef.co/go/twm/draw"
)

// The bar shows, per monitor: one cell per tag, the layout symbol, the
// selected client's title, and (selected monitor only) the status text
// right-aligned.

// Monitor's bar window is its drawing surface.
func (m *Monitor) GCs() draw.GCs      { return m.gcs }
func (m *Monitor) Win() xproto.Window { return m.BarWin.Id }
func (m *Monitor) X() *xgbutil.XUtil  { return m.wm.X }

func (wm *WM) textW(s string) int {
	w, _ := draw.TextExtents(wm.X, wm.font, s)
	return w + wm.lrpad
}

func (wm *WM) updateBars() {
	for _, m := range wm.Mons {
		if m.BarWin != nil {
			continue
		}
		m := m
		win, err := xwindow.Generate(wm.X)
		must(err)
		must(win.CreateChecked(wm.X.RootWin(), m.WX, m.BY, m.WW, wm.bh,
			xproto.CwBackPixel|xproto.CwOverrideRedirect|xproto.CwEventMask|xproto.CwCursor,
			uint32(wm.Config.Colors["normbg"]),
			1,
			xproto.EventMaskExposure|xproto.EventMaskButtonPress,
			uint32(wm.Cursors["normal"])))
		m.BarWin = win
		win.Map()

		xevent.ExposeFun(func(xu *xgbutil.XUtil, ev xevent.ExposeEvent) {
			if ev.Count == 0 {
				m.drawBar()
			}
		}).Connect(wm.X, win.Id)

		xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
			wm.barPressed(m, ev)
		}).Connect(wm.X, win.Id)
	}
}

func (wm *WM) drawBars() {
	for _, m := range wm.Mons {
		m.drawBar()
	}
}

func (m *Monitor) drawBar() {
	wm := m.wm
	if m.BarWin == nil || !m.ShowBar {
		return
	}
	colors := wm.Config.Colors
	normfg, normbg := colors["normfg"], colors["normbg"]
	selfg, selbg := colors["selfg"], colors["selbg"]
	boxs := wm.fontH / 9
	boxw := wm.fontH/6 + 2

	draw.Fill(m, 0, 0, m.WW, wm.bh, normbg)

	// Status first so tags overdraw it when the bar is crowded.
	tw := 0
	if m == wm.SelMon {
		w, _ := draw.TextExtents(wm.X, wm.font, wm.stext)
		tw = w + 2
		draw.Text(m, wm.stext, wm.font, normfg, normbg, m.WW-tw, 1)
	}

	var occ, urg uint32
	for _, c := range m.Clients {
		occ |= c.Tags
		if c.IsUrgent {
			urg |= c.Tags
		}
	}
	x := 0
	for i, tag := range wm.Config.Tags {
		w := wm.textW(tag)
		bit := uint32(1) << uint(i)
		fg, bg := normfg, normbg
		if m.TagSet[m.SelTags]&bit != 0 {
			fg, bg = selfg, selbg
		}
		if urg&bit != 0 {
			fg, bg = bg, fg
		}
		draw.Fill(m, x, 0, w, wm.bh, bg)
		draw.Text(m, tag, wm.font, fg, bg, x+wm.lrpad/2, 1)
		if occ&bit != 0 {
			if m == wm.SelMon && m.Sel != nil && m.Sel.Tags&bit != 0 {
				draw.Fill(m, x+boxs, boxs, boxw, boxw, fg)
			} else {
				draw.Outline(m, x+boxs, boxs, boxw, boxw, fg)
			}
		}
		x += w
	}

	w := wm.textW(m.LtSymbol)
	draw.Fill(m, x, 0, w, wm.bh, normbg)
	draw.Text(m, m.LtSymbol, wm.font, normfg, normbg, x+wm.lrpad/2, 1)
	x += w

	if rest := m.WW - tw - x; rest > wm.bh {
		if m.Sel != nil {
			fg, bg := normfg, normbg
			if m == wm.SelMon {
				fg, bg = selfg, selbg
			}
			draw.Fill(m, x, 0, rest, wm.bh, bg)
			draw.Text(m, m.Sel.Name, wm.font, fg, bg, x+wm.lrpad/2, 1)
			if m.Sel.IsFloating {
				if m.Sel.IsFixed {
					draw.Fill(m, x+boxs, boxs, boxw, boxw, fg)
				} else {
					draw.Outline(m, x+boxs, boxs, boxw, boxw, fg)
				}
			}
		} else {
			draw.Fill(m, x, 0, rest, wm.bh, normbg)
		}
	}
}

// Bar click regions.
const (
	clkTagBar = iota
	clkLtSymbol
	clkWinTitle
	clkStatusText
)

// barClick resolves a bar-local x coordinate to a click region. The
// gap between layout symbol and status counts as the title region even
// with no client selected; the caller decides what that means.
func barClick(x int, tagWidths []int, ltw, ww, statusw int) (region, tag int) {
	pos := 0
	for i, w := range tagWidths {
		pos += w
		if x < pos {
			return clkTagBar, i
		}
	}
	if x < pos+ltw {
		return clkLtSymbol, -1
	}
	if x >= ww-statusw {
		return clkStatusText, -1
	}
	return clkWinTitle, -1
}

func (wm *WM) barPressed(m *Monitor, ev xevent.ButtonPressEvent) {
	if m != wm.SelMon {
		wm.unfocus(wm.SelMon.Sel, true)
		wm.SelMon = m
		wm.focus(nil)
	}
	widths := make([]int, len(wm.Config.Tags))
	for i, tag := range wm.Config.Tags {
		widths[i] = wm.textW(tag)
	}
	statusw := 0
	if m == wm.SelMon {
		w, _ := draw.TextExtents(wm.X, wm.font, wm.stext)
		statusw = w + 2
	}
	region, tag := barClick(int(ev.EventX), widths, wm.textW(m.LtSymbol), m.WW, statusw)
	switch region {
	case clkTagBar:
		mask := uint32(1) << uint(tag)
		switch ev.Detail {
		case 1:
			wm.view(mask)
		case 3:
			wm.toggleView(mask)
		}
	case clkLtSymbol:
		switch ev.Detail {
		case 1:
			wm.setLayout(nil)
		case 3:
			wm.setLayout(layoutByName("monocle"))
		}
	case clkWinTitle, clkStatusText:
		// Nothing is bound here by default.
	}
}

// updateStatus refreshes the status text from the configured source:
// the wall clock, or the root window's name (set by external tools).
func (wm *WM) updateStatus() {
	if wm.Config.StatusClock {
		wm.stext = clockText(time.Now())
	} else {
		name, _ := icccm.WmNameGet(wm.X, wm.X.RootWin())
		if name == "" {
			name = "twm-" + version
		}
		wm.stext = name
	}
	if wm.SelMon != nil {
		wm.SelMon.drawBar()
	}
}

func clockText(t time.Time) string {
	return t.Format("02/01/2006 15-04-05")
}
