package main

import "testing"

func TestSnapcalc(t *testing.T) {
	var tests = []struct {
		n0, n1, e0, e1 int
		snap           int
		out            int
	}{
		// left edge within range of e0
		{5, 105, 0, 500, 10, -5},
		// right edge within range of e1
		{395, 495, 0, 500, 10, 5},
		// both in range, closer one wins
		{3, 496, 0, 500, 10, -3},
		// nothing in range
		{50, 150, 0, 500, 10, 0},
		// exact alignment stays put
		{0, 100, 0, 500, 10, 0},
	}
	for _, tt := range tests {
		if got := snapcalc(tt.n0, tt.n1, tt.e0, tt.e1, tt.snap); got != tt.out {
			t.Errorf("snapcalc(%d, %d, %d, %d, %d) = %d, want %d",
				tt.n0, tt.n1, tt.e0, tt.e1, tt.snap, got, tt.out)
		}
	}
}

func TestLayoutByName(t *testing.T) {
	if lt := layoutByName("tile"); lt == nil || lt.Arrange == nil {
		t.Error("tile layout must have an arranger")
	}
	if lt := layoutByName("float"); lt == nil || lt.Arrange != nil {
		t.Error("float layout must have no arranger")
	}
	if lt := layoutByName("monocle"); lt == nil || lt.Symbol != "[M]" {
		t.Error("monocle layout missing")
	}
	if layoutByName("bogus") != nil {
		t.Error("unknown layout names must resolve to nil")
	}
}

func TestParseDir(t *testing.T) {
	var tests = []struct {
		in  string
		out int
	}{
		{"+1", 1},
		{"-1", -1},
		{"2", 2},
		{"", 1},
		{"junk", 1},
	}
	for _, tt := range tests {
		if got := parseDir(tt.in); got != tt.out {
			t.Errorf("parseDir(%q) = %d, want %d", tt.in, got, tt.out)
		}
	}
}

func TestParseTagArg(t *testing.T) {
	wm := testWM()
	if mask, ok := wm.parseTagArg("1"); !ok || mask != 1 {
		t.Errorf("tag 1 = %#x, %v", mask, ok)
	}
	if mask, ok := wm.parseTagArg("9"); !ok || mask != 1<<8 {
		t.Errorf("tag 9 = %#x, %v", mask, ok)
	}
	if mask, ok := wm.parseTagArg("all"); !ok || mask != wm.tagMask {
		t.Errorf("all = %#x, %v", mask, ok)
	}
	if _, ok := wm.parseTagArg("10"); ok {
		t.Error("tag 10 out of range for 9 tags")
	}
	if _, ok := wm.parseTagArg("0"); ok {
		t.Error("tag 0 must be rejected")
	}
}
