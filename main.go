// twm is a dynamic tiling window manager for X11. Windows are arranged
// by per-monitor layouts (master/stack tiling, monocle, floating) and
// multiplexed onto tag bitmasks. It is driven entirely by X events: one
// connection, one event loop, one handler per event type.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/mousebind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"

	"honnef.co/go/twm/config"
	"honnef.co/go/twm/draw"
	"honnef.co/go/twm/internal/quadtree"
)

const version = "0.3"

// prodAtomName marks the synthetic ClientMessage used to wake the event
// loop for work posted from other goroutines (clock, control fs).
const prodAtomName = "_TWM_PROD"

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

func abs(x int) int {
	if x >= 0 {
		return x
	}

	return -x
}

func must(err error) {
	if err == nil {
		return
	}

	panic(err)
}

func should(err error) {
	if err == nil {
		return
	}

	log.Println("Error:", err)
}

// snapcalc returns the delta that aligns the span [n0, n1] to the edges
// e0 or e1 when either lies within snapdist, preferring the closer one.
func snapcalc(n0, n1, e0, e1, snapdist int) int {
	var s0, s1 int

	if abs(e0-n0) <= snapdist {
		s0 = e0 - n0
	}

	if abs(e1-n1) <= snapdist {
		s1 = e1 - n1
	}

	if s0 != 0 && s1 != 0 {
		if abs(s0) < abs(s1) {
			return s0
		}
		return s1
	} else if s0 != 0 {
		return s0
	} else if s1 != 0 {
		return s1
	}

	return 0
}

type geom struct {
	X, Y          int
	Width, Height int
}

// Layout pairs a bar symbol with an arranger. A nil arranger means
// floating: the tiler leaves all geometry alone.
type Layout struct {
	Symbol  string
	Arrange func(*Monitor)
}

var layouts = []*Layout{
	{"[]=", tile},
	{"><>", nil},
	{"[M]", monocle},
}

func layoutByName(name string) *Layout {
	switch name {
	case "tile":
		return layouts[0]
	case "float":
		return layouts[1]
	case "monocle":
		return layouts[2]
	}
	return nil
}

type WM struct {
	X      *xgbutil.XUtil
	Config *config.Config

	Cursors map[string]xproto.Cursor

	Mons      []*Monitor
	SelMon    *Monitor
	MotionMon *Monitor

	Wins map[xproto.Window]*Client

	sw, sh int
	bh     int
	lrpad  int

	font  xproto.Font
	fontH int

	stext string

	// monIndex maps screen points to monitor index+1; rebuilt by
	// updateGeom.
	monIndex *quadtree.Node

	checkWin *xwindow.Window
	prodAtom xproto.Atom

	proactive chan func()

	// suppressed > 0 means X errors are expected (a window is being
	// torn down under a server grab) and dropped wholesale.
	suppressed int

	tagMask uint32
}

// post schedules f to run on the event loop. The ClientMessage wakes
// the loop if it is blocked on the next event.
func (wm *WM) post(f func()) {
	wm.proactive <- f
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wm.checkWin.Id,
		Type:   wm.prodAtom,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	xproto.SendEvent(wm.X.Conn(), false, wm.checkWin.Id,
		xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// run posts f and waits for the event loop to execute it. This is how
// the control-fs goroutine touches manager state.
func (wm *WM) run(f func()) {
	done := make(chan struct{})
	wm.post(func() {
		f()
		close(done)
	})
	<-done
}

func (wm *WM) drainPosted() {
	for {
		select {
		case f := <-wm.proactive:
			f()
		default:
			return
		}
	}
}

func (wm *WM) Init(xu *xgbutil.XUtil) {
	wm.X = xu
	wm.installErrorHandler()

	root := xwindow.New(xu, xu.RootWin())
	// Exclusive: only one client may hold SubstructureRedirect on the
	// root.
	if err := root.Listen(xproto.EventMaskSubstructureRedirect); err != nil {
		log.Fatal("twm: another window manager is already running")
	}

	screen := xu.Screen()
	wm.sw = int(screen.WidthInPixels)
	wm.sh = int(screen.HeightInPixels)

	keybind.Initialize(xu)
	mousebind.Initialize(xu)

	font, err := draw.OpenFont(xu, wm.Config.Font)
	if err != nil {
		log.Fatalf("twm: cannot open font %q: %v", wm.Config.Font, err)
	}
	wm.font = font
	_, wm.fontH = draw.TextExtents(xu, font, "Ag")
	if wm.fontH == 0 {
		log.Fatalf("twm: font %q has no extents", wm.Config.Font)
	}
	wm.bh = wm.fontH + 2
	wm.lrpad = wm.fontH

	wm.LoadCursors(map[string]uint16{
		"normal": xcursor.LeftPtr,
		"move":   xcursor.Fleur,
		"resize": xcursor.BottomRightCorner,
	})
	root.Change(xproto.CwCursor, uint32(wm.Cursors["normal"]))

	wm.tagMask = uint32(1)<<uint(len(wm.Config.Tags)) - 1

	wm.updateGeom()
	wm.initAtoms()
	wm.updateBars()
	wm.updateStatus()

	must(root.Listen(
		xproto.EventMaskSubstructureRedirect,
		xproto.EventMaskSubstructureNotify,
		xproto.EventMaskButtonPress,
		xproto.EventMaskPointerMotion,
		xproto.EventMaskEnterWindow,
		xproto.EventMaskLeaveWindow,
		xproto.EventMaskStructureNotify,
		xproto.EventMaskPropertyChange,
	))
	wm.connectRootEvents()
	wm.grabKeys()

	wm.focus(nil)
	wm.scan()

	if wm.Config.StatusClock {
		go func() {
			for range time.Tick(time.Second) {
				wm.post(wm.updateStatus)
			}
		}()
	}
	go wm.serveFS()

	xevent.Main(xu)
	wm.cleanup()
}

func (wm *WM) initAtoms() {
	var err error
	wm.prodAtom, err = xprop.Atm(wm.X, prodAtomName)
	must(err)

	// The supporting-WM-check window doubles as the target for posted
	// wakeups.
	win, err := xwindow.Create(wm.X, wm.X.RootWin())
	must(err)
	wm.checkWin = win
	must(ewmh.SupportingWmCheckSet(wm.X, wm.X.RootWin(), win.Id))
	must(ewmh.SupportingWmCheckSet(wm.X, win.Id, win.Id))
	must(ewmh.WmNameSet(wm.X, win.Id, "twm"))

	must(ewmh.SupportedSet(wm.X, []string{
		"_NET_SUPPORTED",
		"_NET_SUPPORTING_WM_CHECK",
		"_NET_ACTIVE_WINDOW",
		"_NET_WM_NAME",
		"_NET_WM_STATE",
		"_NET_WM_STATE_FULLSCREEN",
		"_NET_WM_WINDOW_TYPE",
		"_NET_WM_WINDOW_TYPE_DIALOG",
		"_NET_CLIENT_LIST",
	}))
	should(ewmh.ClientListSet(wm.X, nil))

	xevent.ClientMessageFun(func(xu *xgbutil.XUtil, ev xevent.ClientMessageEvent) {
		if ev.Type == wm.prodAtom {
			wm.drainPosted()
		}
	}).Connect(wm.X, win.Id)
}

func (wm *WM) LoadCursors(mapping map[string]uint16) {
	var err error
	for name, cursor := range mapping {
		wm.Cursors[name], err = xcursor.CreateCursor(wm.X, cursor)
		must(err)
	}
}

// scan adopts windows that were mapped before the manager started.
// Transients are adopted last so their parents exist when tags are
// inherited.
func (wm *WM) scan() {
	tree, err := xproto.QueryTree(wm.X.Conn(), wm.X.RootWin()).Reply()
	must(err)

	var transients []xproto.Window
	for _, w := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(wm.X.Conn(), w).Reply()
		if err != nil || attrs.OverrideRedirect {
			continue
		}
		if _, err := wm.transientFor(w); err == nil {
			transients = append(transients, w)
			continue
		}
		if attrs.MapState == xproto.MapStateViewable {
			wm.manage(w)
		}
	}
	for _, w := range transients {
		attrs, err := xproto.GetWindowAttributes(wm.X.Conn(), w).Reply()
		if err != nil {
			continue
		}
		if attrs.MapState == xproto.MapStateViewable {
			wm.manage(w)
		}
	}
}

func (wm *WM) cleanup() {
	wm.view(wm.tagMask)
	for _, m := range wm.Mons {
		for len(m.Stack) > 0 {
			wm.unmanage(m.Stack[0], false)
		}
	}
	keybind.Detach(wm.X, wm.X.RootWin())
	wm.checkWin.Destroy()
	xproto.SetInputFocus(wm.X.Conn(), xproto.InputFocusPointerRoot,
		wm.X.RootWin(), xproto.TimeCurrentTime)
	if a, err := xprop.Atm(wm.X, "_NET_ACTIVE_WINDOW"); err == nil {
		xproto.DeleteProperty(wm.X.Conn(), wm.X.RootWin(), a)
	}
	wm.X.Sync()
}

// spawnLine starts a command line in its own session. The %m slot is
// replaced with the selected monitor index, for launchers that take a
// monitor argument.
func (wm *WM) spawnLine(line string) {
	if wm.SelMon != nil {
		line = strings.Replace(line, "%m", strconv.Itoa(wm.SelMon.Num), -1)
	}
	args := strings.Fields(line)
	if len(args) == 0 {
		return
	}
	cmd := exec.Command(args[0], args[1:]...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		log.Printf("could not execute %q: %v", line, err)
		return
	}
	cmd.Process.Release()
}

// command dispatches a bound command line: a name from the commands
// table with an optional argument, or a raw line to spawn.
func (wm *WM) command(line string) {
	name, arg := line, ""
	if i := strings.IndexByte(line, ' '); i >= 0 {
		name, arg = line[:i], strings.TrimSpace(line[i+1:])
	}
	if fn, ok := commands[name]; ok {
		fn(wm, arg)
		return
	}
	wm.spawnLine(line)
}

func (wm *WM) grabKeys() {
	for key, line := range wm.Config.Binds {
		line := line
		should(keybind.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
			wm.command(line)
		}).Connect(wm.X, wm.X.RootWin(), key.ToXGB(), true))
	}
}

func defaultRC() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".twmrc")
}

func main() {
	printVersion := flag.Bool("v", false, "print version and exit")
	rcPath := flag.String("c", defaultRC(), "configuration file")
	flag.Parse()
	if *printVersion {
		fmt.Println("twm-" + version)
		return
	}
	log.SetPrefix("twm: ")
	log.SetFlags(0)

	cfg := config.Default()
	if f, err := os.Open(*rcPath); err == nil {
		cfg, err = config.Parse(f)
		f.Close()
		if err != nil {
			log.Fatalf("%s: %v", *rcPath, err)
		}
	}
	if len(cfg.Tags) == 0 || len(cfg.Tags) > config.MaxTags {
		log.Fatalf("tag count %d out of range [1, %d]", len(cfg.Tags), config.MaxTags)
	}

	// Children are launchers and clients; the kernel reaps them.
	signal.Ignore(syscall.SIGCHLD)

	wm := &WM{
		Config:    cfg,
		Cursors:   make(map[string]xproto.Cursor),
		Wins:      make(map[xproto.Window]*Client),
		proactive: make(chan func(), 16),
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		log.Fatal(err)
	}
	wm.Init(xu)
}
