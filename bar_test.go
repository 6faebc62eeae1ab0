package main

import (
	"testing"
	"time"
)

func TestBarClick(t *testing.T) {
	tagWidths := []int{20, 30, 25}
	const (
		ltw     = 40
		ww      = 800
		statusw = 120
	)

	var tests = []struct {
		x      int
		region int
		tag    int
	}{
		{0, clkTagBar, 0},
		{19, clkTagBar, 0},
		{20, clkTagBar, 1},
		{49, clkTagBar, 1},
		{74, clkTagBar, 2},
		{75, clkLtSymbol, -1},
		{114, clkLtSymbol, -1},
		// gap between layout symbol and status is the title region,
		// selection or not
		{115, clkWinTitle, -1},
		{679, clkWinTitle, -1},
		{680, clkStatusText, -1},
		{799, clkStatusText, -1},
	}
	for _, tt := range tests {
		region, tag := barClick(tt.x, tagWidths, ltw, ww, statusw)
		if region != tt.region || tag != tt.tag {
			t.Errorf("barClick(%d) = (%d, %d), want (%d, %d)",
				tt.x, region, tag, tt.region, tt.tag)
		}
	}
}

func TestBarClickNoStatus(t *testing.T) {
	// On unselected monitors the status width is zero; the title region
	// runs to the right edge.
	for _, x := range []int{700, 799} {
		if region, _ := barClick(x, []int{20}, 40, 800, 0); region != clkWinTitle {
			t.Errorf("barClick(%d) = %d, want title", x, region)
		}
	}
}

func TestClockText(t *testing.T) {
	at := time.Date(2024, time.March, 7, 9, 5, 59, 0, time.UTC)
	if got, want := clockText(at), "07/03/2024 09-05-59"; got != want {
		t.Errorf("clockText = %q, want %q", got, want)
	}
}
