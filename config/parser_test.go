package config

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if len(cfg.Tags) != 9 {
		t.Errorf("default tag count = %d, want 9", len(cfg.Tags))
	}
	if cfg.MFact < 0.05 || cfg.MFact > 0.95 {
		t.Errorf("default mfact %v out of range", cfg.MFact)
	}
	if !cfg.StatusClock {
		t.Error("clock is the default status source")
	}
	for _, name := range []string{"normfg", "normbg", "normborder", "selfg", "selbg", "selborder"} {
		if _, ok := cfg.Colors[name]; !ok {
			t.Errorf("missing default color %q", name)
		}
	}
}

func TestParse(t *testing.T) {
	input := `# twmrc
borderwidth 2
snapdist 16
mfact 0.6
nmaster 2
topbar no
statusclock no
tag www
tag dev
tag misc
color selbg 224488
rule Gimp * * 0x4 yes -1
rule * * scratch 0 yes 1
bind M-x "spawn term"
bind MS-q unmap
mousebind M4-1 window_move
command term urxvt
`
	cfg, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BorderWidth != 2 || cfg.SnapDist != 16 {
		t.Errorf("borderwidth/snapdist = %d/%d", cfg.BorderWidth, cfg.SnapDist)
	}
	if cfg.MFact != 0.6 || cfg.NMaster != 2 {
		t.Errorf("mfact/nmaster = %v/%d", cfg.MFact, cfg.NMaster)
	}
	if cfg.TopBar || cfg.StatusClock {
		t.Error("boolean options did not override defaults")
	}
	if len(cfg.Tags) != 3 || cfg.Tags[0] != "www" {
		t.Errorf("tags = %v", cfg.Tags)
	}
	if cfg.Colors["selbg"] != 0x224488 {
		t.Errorf("selbg = %#x", cfg.Colors["selbg"])
	}

	if len(cfg.Rules) != 2 {
		t.Fatalf("rules = %d, want 2 (defaults replaced)", len(cfg.Rules))
	}
	r := cfg.Rules[0]
	if r.Class != "Gimp" || r.Instance != "" || r.Title != "" ||
		r.Tags != 0x4 || !r.Floating || r.Monitor != -1 {
		t.Errorf("rule 0 = %+v", r)
	}
	r = cfg.Rules[1]
	if r.Class != "" || r.Title != "scratch" || r.Monitor != 1 {
		t.Errorf("rule 1 = %+v", r)
	}

	if cfg.Binds[KeySpec{"M", "x"}] != "spawn term" {
		t.Errorf("bind M-x = %q", cfg.Binds[KeySpec{"M", "x"}])
	}
	if _, ok := cfg.Binds[KeySpec{"MS", "q"}]; ok {
		t.Error("unmap did not remove the default binding")
	}
	if cfg.MouseBinds["window_move"] != (KeySpec{"M4", "1"}) {
		t.Errorf("window_move = %+v", cfg.MouseBinds["window_move"])
	}
	if cfg.Commands["term"] != "urxvt" {
		t.Errorf("command term = %q", cfg.Commands["term"])
	}
}

func TestParseErrors(t *testing.T) {
	var tests = []string{
		"bogus 1\n",
		"mfact 2.0\n",
		"showbar maybe\n",
		"color selbg zzz\n",
		"rule Gimp * * notamask yes -1\n",
	}
	for _, input := range tests {
		if _, err := Parse(strings.NewReader(input)); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", input)
		}
	}
}

func TestParseTagLimit(t *testing.T) {
	var sb strings.Builder
	for i := 0; i <= MaxTags; i++ {
		sb.WriteString("tag t\n")
	}
	if _, err := Parse(strings.NewReader(sb.String())); err == nil {
		t.Error("accepted more than MaxTags tags")
	}
}

func TestKeySpecToXGB(t *testing.T) {
	var tests = []struct {
		in  KeySpec
		out string
	}{
		{KeySpec{"M", "Return"}, "Mod1-Return"},
		{KeySpec{"MS", "q"}, "Mod1-Shift-q"},
		{KeySpec{"C4", "space"}, "Control-Mod4-space"},
		{KeySpec{"", "F1"}, "F1"},
	}
	for _, tt := range tests {
		if got := tt.in.ToXGB(); got != tt.out {
			t.Errorf("%+v.ToXGB() = %q, want %q", tt.in, got, tt.out)
		}
	}
}
