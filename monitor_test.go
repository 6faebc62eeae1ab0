package main

import (
	"testing"

	"honnef.co/go/twm/config"
)

// testWM builds a manager around a single 1920×1080 monitor with a
// 20px bar, without an X connection.
func testWM() *WM {
	cfg := config.Default()
	wm := &WM{
		Config: cfg,
		Wins:   nil,
	}
	wm.sw, wm.sh = 1920, 1080
	wm.bh = 20
	wm.tagMask = uint32(1)<<uint(len(cfg.Tags)) - 1
	m := wm.createMon()
	m.MX, m.MY, m.MW, m.MH = 0, 0, 1920, 1080
	m.updateBarPos()
	wm.Mons = []*Monitor{m}
	wm.SelMon = m
	return wm
}

func testClient(m *Monitor) *Client {
	c := &Client{
		wm:    m.wm,
		Mon:   m,
		Tags:  1,
		hints: sizeHints{valid: true},
	}
	m.attach(c)
	m.attachStack(c)
	return c
}

func TestTileMasterStack(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	m.MFact = 0.55
	m.NMaster = 1

	c3 := testClient(m)
	c2 := testClient(m)
	c1 := testClient(m)
	_ = c3

	tile(m)

	want := []struct {
		c *Client
		g geom
	}{
		{c1, geom{0, 20, 1056, 1060}},
		{c2, geom{1056, 20, 864, 530}},
		{m.Clients[2], geom{1056, 550, 864, 530}},
	}
	for i, w := range want {
		if w.c.Geom != w.g {
			t.Errorf("client %d: got %+v, want %+v", i, w.c.Geom, w.g)
		}
	}
}

func TestTileNoMaster(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	m.NMaster = 0

	testClient(m)
	testClient(m)

	tile(m)

	for i, c := range m.Clients {
		if c.Geom.X != 0 || c.Geom.Width != 1920 {
			t.Errorf("client %d: got %+v, want full-width stack column", i, c.Geom)
		}
	}
	if m.Clients[0].Geom.Y != 20 || m.Clients[1].Geom.Y != 550 {
		t.Errorf("stack rows at %d, %d; want 20, 550",
			m.Clients[0].Geom.Y, m.Clients[1].Geom.Y)
	}
}

func TestTileAllMaster(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	m.NMaster = 3

	testClient(m)
	testClient(m)

	tile(m)

	for i, c := range m.Clients {
		if c.Geom.X != 0 || c.Geom.Width != 1920 {
			t.Errorf("client %d: got %+v, want a single full-width column", i, c.Geom)
		}
	}
}

func TestTileRespectsBorders(t *testing.T) {
	wm := testWM()
	m := wm.SelMon
	m.NMaster = 1
	c := testClient(m)
	c.BW = 2

	tile(m)

	if c.Geom.Width != 1920-4 || c.Geom.Height != 1060-4 {
		t.Errorf("got %+v, want interior shrunk by the border", c.Geom)
	}
}

func TestMonocle(t *testing.T) {
	wm := testWM()
	m := wm.SelMon

	testClient(m)
	testClient(m)
	f := testClient(m)
	f.IsFloating = true

	monocle(m)

	if m.LtSymbol != "[3]" {
		t.Errorf("layout symbol = %q, want [3]", m.LtSymbol)
	}
	for i, c := range m.Clients {
		if c.IsFloating {
			continue
		}
		if (c.Geom != geom{0, 20, 1920, 1060}) {
			t.Errorf("client %d: got %+v, want the whole working area", i, c.Geom)
		}
	}
}

func TestAttachDetachInvariants(t *testing.T) {
	wm := testWM()
	m := wm.SelMon

	var cs []*Client
	for i := 0; i < 4; i++ {
		cs = append(cs, testClient(m))
	}
	if len(m.Clients) != 4 || len(m.Stack) != 4 {
		t.Fatalf("expected 4 clients in both lists, have %d/%d",
			len(m.Clients), len(m.Stack))
	}

	// Removing from one list must not disturb the other's order.
	m.detach(cs[1])
	if len(m.Clients) != 3 {
		t.Fatalf("detach left %d clients", len(m.Clients))
	}
	wantStack := []*Client{cs[3], cs[2], cs[1], cs[0]}
	for i, c := range m.Stack {
		if c != wantStack[i] {
			t.Errorf("stack order disturbed at %d", i)
		}
	}

	m.attach(cs[1])
	m.detachStack(cs[1])
	m.attachStack(cs[1])
	seen := map[*Client]int{}
	for _, c := range m.Clients {
		seen[c]++
	}
	for _, c := range m.Stack {
		seen[c] += 10
	}
	for c, n := range seen {
		if n != 11 {
			t.Errorf("client %p present %d times across lists, want once in each", c, n)
		}
	}
}

func TestSelectionFollowsVisibility(t *testing.T) {
	wm := testWM()
	m := wm.SelMon

	c2 := testClient(m)
	c1 := testClient(m)
	m.Sel = c1

	// Retag the selection away from the viewed tagset.
	c1.Tags = 1 << 1
	m.detachStack(c1)
	m.attachStack(c1)

	if got := m.firstVisible(); got != c2 {
		t.Errorf("firstVisible = %p, want the remaining visible client %p", got, c2)
	}

	c2.Tags = 1 << 1
	if got := m.firstVisible(); got != nil {
		t.Errorf("firstVisible = %p, want nil with nothing visible", got)
	}
}

func TestSetViewRoundTrip(t *testing.T) {
	wm := testWM()
	m := wm.SelMon

	orig := m.TagSet[m.SelTags]
	m.setView(1 << 4)
	if m.TagSet[m.SelTags] != 1<<4 {
		t.Fatalf("tagset = %#x, want %#x", m.TagSet[m.SelTags], uint32(1<<4))
	}
	m.setView(0)
	if m.TagSet[m.SelTags] != orig {
		t.Errorf("toggle-back tagset = %#x, want %#x", m.TagSet[m.SelTags], orig)
	}
	if m.TagSet[m.SelTags] == 0 {
		t.Error("tagset must never be empty")
	}
}

func TestNextVisibleWraps(t *testing.T) {
	wm := testWM()
	m := wm.SelMon

	c3 := testClient(m)
	c2 := testClient(m)
	c1 := testClient(m)
	c2.Tags = 1 << 2 // hidden
	m.Sel = c1

	if got := m.nextVisible(1); got != c3 {
		t.Errorf("forward skip: got %p, want %p", got, c3)
	}
	m.Sel = c3
	if got := m.nextVisible(1); got != c1 {
		t.Errorf("forward wrap: got %p, want %p", got, c1)
	}
	m.Sel = c1
	if got := m.nextVisible(-1); got != c3 {
		t.Errorf("backward: got %p, want %p", got, c3)
	}
}

func TestRectToMon(t *testing.T) {
	wm := testWM()
	m2 := wm.createMon()
	m2.Num = 1
	m2.MX, m2.MY, m2.MW, m2.MH = 1920, 0, 1280, 1024
	m2.updateBarPos()
	wm.Mons = append(wm.Mons, m2)

	if got := wm.rectToMon(geom{100, 100, 400, 300}); got != wm.Mons[0] {
		t.Errorf("rect on monitor 0 resolved to %d", got.Num)
	}
	if got := wm.rectToMon(geom{1800, 100, 400, 300}); got != m2 {
		t.Errorf("rect mostly on monitor 1 resolved to %d", got.Num)
	}
}
