package main

import (
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgbutil/xevent"

	"honnef.co/go/twm/menu"
)

// commands maps bound command names to actions. Bound lines that don't
// name a command are spawned as external programs.
var commands = map[string]func(wm *WM, arg string){
	"focusstack": func(wm *WM, arg string) {
		wm.focusStack(parseDir(arg))
	},
	"incnmaster": func(wm *WM, arg string) {
		m := wm.SelMon
		m.NMaster = max(0, m.NMaster+parseDir(arg))
		m.arrange()
	},
	"setmfact": func(wm *WM, arg string) {
		m := wm.SelMon
		if m.Lt[m.SelLt].Arrange == nil {
			return
		}
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return
		}
		if strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-") {
			f += m.MFact
		}
		if f < 0.05 || f > 0.95 {
			return
		}
		m.MFact = f
		m.arrange()
	},
	"zoom": func(wm *WM, arg string) {
		c := wm.SelMon.Sel
		if c == nil || c.IsFloating {
			return
		}
		if tiled := wm.SelMon.tiled(); len(tiled) > 0 && tiled[0] == c {
			if len(tiled) < 2 {
				return
			}
			c = tiled[1]
		}
		c.pop()
	},
	"view": func(wm *WM, arg string) {
		if mask, ok := wm.parseTagArg(arg); ok {
			wm.view(mask)
		}
	},
	"viewprev": func(wm *WM, arg string) {
		wm.view(0)
	},
	"toggleview": func(wm *WM, arg string) {
		if mask, ok := wm.parseTagArg(arg); ok {
			wm.toggleView(mask)
		}
	},
	"tag": func(wm *WM, arg string) {
		if mask, ok := wm.parseTagArg(arg); ok {
			wm.tag(mask)
		}
	},
	"toggletag": func(wm *WM, arg string) {
		if mask, ok := wm.parseTagArg(arg); ok {
			wm.toggleTag(mask)
		}
	},
	"togglebar": func(wm *WM, arg string) {
		m := wm.SelMon
		m.ShowBar = !m.ShowBar
		m.updateBarPos()
		m.BarWin.MoveResize(m.WX, m.BY, m.WW, wm.bh)
		m.arrange()
	},
	"togglefloating": func(wm *WM, arg string) {
		if c := wm.SelMon.Sel; c != nil {
			c.toggleFloating()
		}
	},
	"togglefullscreen": func(wm *WM, arg string) {
		if c := wm.SelMon.Sel; c != nil {
			c.setFullscreen(!c.IsFullscreen)
		}
	},
	"toggleminimize": func(wm *WM, arg string) {
		c := wm.SelMon.Sel
		if c == nil {
			return
		}
		if c.IsMinimized {
			c.unminimize()
		} else {
			c.minimize()
		}
	},
	"setlayout": func(wm *WM, arg string) {
		wm.setLayout(layoutByName(arg))
	},
	"killclient": func(wm *WM, arg string) {
		if c := wm.SelMon.Sel; c != nil {
			c.kill()
		}
	},
	"focusmon": func(wm *WM, arg string) {
		if len(wm.Mons) < 2 {
			return
		}
		m := wm.dirToMon(parseDir(arg))
		if m == wm.SelMon {
			return
		}
		wm.unfocus(wm.SelMon.Sel, false)
		wm.SelMon = m
		wm.focus(nil)
	},
	"tagmon": func(wm *WM, arg string) {
		if c := wm.SelMon.Sel; c != nil && len(wm.Mons) > 1 {
			wm.sendMon(c, wm.dirToMon(parseDir(arg)))
		}
	},
	"spawn": func(wm *WM, arg string) {
		if line, ok := wm.Config.Commands[arg]; ok {
			wm.spawnLine(line)
		}
	},
	"menu": func(wm *WM, arg string) {
		wm.runMenu()
	},
	"quit": func(wm *WM, arg string) {
		xevent.Quit(wm.X)
	},
}

func parseDir(arg string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(arg, "+"))
	if err != nil {
		return 1
	}
	return n
}

// parseTagArg maps "all" or a 1-based tag number to a tag mask.
func (wm *WM) parseTagArg(arg string) (uint32, bool) {
	if arg == "all" {
		return wm.tagMask, true
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(wm.Config.Tags) {
		return 0, false
	}
	return uint32(1) << uint(n-1), true
}

// view switches the selected monitor to a tagset; a zero mask swaps
// back to the previous one.
func (wm *WM) view(mask uint32) {
	m := wm.SelMon
	if mask&wm.tagMask == m.TagSet[m.SelTags] && mask != 0 {
		return
	}
	m.setView(mask)
	wm.focus(nil)
	m.arrange()
}

func (wm *WM) toggleView(mask uint32) {
	m := wm.SelMon
	newset := m.TagSet[m.SelTags] ^ (mask & wm.tagMask)
	if newset == 0 {
		return
	}
	m.TagSet[m.SelTags] = newset
	wm.focus(nil)
	m.arrange()
}

func (wm *WM) tag(mask uint32) {
	c := wm.SelMon.Sel
	if c == nil || mask&wm.tagMask == 0 {
		return
	}
	c.Tags = mask & wm.tagMask
	wm.focus(nil)
	wm.SelMon.arrange()
}

func (wm *WM) toggleTag(mask uint32) {
	c := wm.SelMon.Sel
	if c == nil {
		return
	}
	newtags := c.Tags ^ (mask & wm.tagMask)
	if newtags == 0 {
		return
	}
	c.Tags = newtags
	wm.focus(nil)
	wm.SelMon.arrange()
}

// setLayout assigns a layout to the selected monitor; nil toggles back
// to the previously selected one.
func (wm *WM) setLayout(lt *Layout) {
	m := wm.SelMon
	if lt == nil || lt != m.Lt[m.SelLt] {
		m.SelLt ^= 1
	}
	if lt != nil {
		m.Lt[m.SelLt] = lt
	}
	m.LtSymbol = m.Lt[m.SelLt].Symbol
	if m.Sel != nil {
		m.arrange()
	} else {
		m.drawBar()
	}
}

// runMenu pops up the command launcher over the configured commands.
// The chosen entry is spawned; free-form input is spawned verbatim.
func (wm *WM) runMenu() {
	var entries []menu.Entry
	for name, line := range wm.Config.Commands {
		entries = append(entries, menu.Entry{Display: name, Payload: line})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Display < entries[j].Display
	})
	m := menu.New(wm.X, "run", menu.Config{
		X:           wm.SelMon.WX,
		Y:           wm.SelMon.WY,
		MinY:        wm.SelMon.WY,
		MaxHeight:   wm.SelMon.WH / 2,
		BorderWidth: wm.Config.BorderWidth,
		BorderColor: wm.Config.Colors["selborder"],
		Font:        wm.font,
		FilterFn:    menu.FilterContains,
	})
	m.SetEntries(entries)
	if err := m.Show(); err != nil {
		should(err)
		return
	}
	go func() {
		entry, ok := m.Wait()
		if !ok {
			return
		}
		if line, ok := entry.Payload.(string); ok && line != "" {
			wm.spawnLine(line)
		}
	}()
}
