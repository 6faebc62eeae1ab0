package main

import (
	"log"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xevent"
)

// All X error policy lives here. Requests race against clients
// destroying their windows, so a known set of error kinds is expected
// in normal operation and dropped; inside a teardown bracket
// (suppressed > 0) everything is expected; anything else terminates,
// as it would under Xlib's default handler. Handlers never inspect X
// errors themselves: every asynchronous protocol error is routed
// through classify by the handler installed in Init.

type errorAction int

const (
	errIgnore errorAction = iota
	errScoped
	errFatal
)

func (wm *WM) classify(err xgb.Error) errorAction {
	if wm.suppressed > 0 {
		// A window is being torn down under a server grab.
		return errScoped
	}
	switch err.(type) {
	case xproto.WindowError:
		// The window is gone; whatever we wanted no longer matters.
		return errIgnore
	case xproto.DrawableError:
		return errIgnore
	case xproto.MatchError:
		// SetInputFocus or ConfigureWindow against an unviewable
		// window, a layout-timing race.
		return errIgnore
	case xproto.AccessError:
		// A grab somebody else holds.
		return errIgnore
	}
	return errFatal
}

// installErrorHandler hooks classify into the event loop's error
// callback, so fire-and-forget requests get the same policy as
// checked ones.
func (wm *WM) installErrorHandler() {
	xevent.ErrorHandlerSet(wm.X, func(err xgb.Error) {
		switch wm.classify(err) {
		case errIgnore, errScoped:
		case errFatal:
			log.Fatalf("twm: fatal X error: %s", err)
		}
	})
}

// xcheck applies the same policy to errors returned by checked calls.
func (wm *WM) xcheck(err error) {
	if err == nil {
		return
	}
	xerr, ok := err.(xgb.Error)
	if !ok {
		log.Println("Error:", err)
		return
	}
	switch wm.classify(xerr) {
	case errIgnore, errScoped:
	case errFatal:
		log.Fatalf("twm: fatal X error: %s", err)
	}
}
