// Package config parses twmrc files. The format is cwm-like: one
// directive per line, words separated by whitespace, '#' comments,
// quoting for arguments containing spaces. Parsing starts from the
// built-in defaults; directives override them.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"strconv"
	"strings"
	"unicode/utf8"
)

// MaxTags bounds the tag bit array; tag masks are uint32 with the top
// bit reserved.
const MaxTags = 31

type KeySpec struct {
	Mods string
	Key  string
}

func (k KeySpec) ToXGB() string {
	var out []string
	for _, c := range k.Mods {
		switch c {
		case 'C':
			out = append(out, "Control")
		case 'M':
			out = append(out, "Mod1")
		case 'S':
			out = append(out, "Shift")
		case '4':
			out = append(out, "Mod4")
		}
	}
	out = append(out, k.Key)
	return strings.Join(out, "-")
}

// Rule matches new clients by substring against their WM_CLASS and
// title. Empty patterns match everything.
type Rule struct {
	Class    string
	Instance string
	Title    string
	Tags     uint32
	Floating bool
	Monitor  int
}

type Config struct {
	BorderWidth    int
	SnapDist       int
	MFact          float64
	NMaster        int
	ShowBar        bool
	TopBar         bool
	ResizeHints    bool
	LockFullscreen bool
	StatusClock    bool
	Font           string
	Colors         map[string]int
	Tags           []string
	Rules          []Rule
	Binds          map[KeySpec]string
	MouseBinds     map[string]KeySpec
	Commands       map[string]string

	sawTag  bool
	sawRule bool
}

// Default returns the built-in configuration, mirroring the values the
// manager shipped with before twmrc existed.
func Default() *Config {
	cfg := &Config{
		BorderWidth:    1,
		SnapDist:       32,
		MFact:          0.55,
		NMaster:        1,
		ShowBar:        true,
		TopBar:         true,
		ResizeHints:    true,
		LockFullscreen: true,
		StatusClock:    true,
		Font:           "fixed",
		Colors: map[string]int{
			"normfg":     0xbbbbbb,
			"normbg":     0x222222,
			"normborder": 0x444444,
			"selfg":      0xeeeeee,
			"selbg":      0x005577,
			"selborder":  0x005577,
		},
		Tags: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Rules: []Rule{
			{Class: "Gimp", Floating: true, Monitor: -1},
			{Class: "Firefox", Tags: 1 << 8, Monitor: -1},
		},
		Binds:      map[KeySpec]string{},
		MouseBinds: map[string]KeySpec{},
		Commands:   map[string]string{},
	}

	cfg.Commands["term"] = "xterm"
	cfg.Commands["launcher"] = "dmenu_run -m %m"

	cfg.MouseBinds["window_move"] = KeySpec{Mods: "M", Key: "1"}
	cfg.MouseBinds["window_zoom"] = KeySpec{Mods: "M", Key: "2"}
	cfg.MouseBinds["window_resize"] = KeySpec{Mods: "M", Key: "3"}

	binds := map[string]string{
		"M-p":        "menu",
		"MS-Return":  "spawn term",
		"M-b":        "togglebar",
		"M-j":        "focusstack +1",
		"M-k":        "focusstack -1",
		"M-i":        "incnmaster +1",
		"M-d":        "incnmaster -1",
		"M-h":        "setmfact -0.05",
		"M-l":        "setmfact +0.05",
		"M-Return":   "zoom",
		"M-Tab":      "viewprev",
		"MS-c":       "killclient",
		"M-t":        "setlayout tile",
		"M-f":        "setlayout float",
		"M-m":        "setlayout monocle",
		"M-space":    "setlayout",
		"MS-space":   "togglefloating",
		"M-n":        "toggleminimize",
		"M-0":        "view all",
		"MS-0":       "tag all",
		"M-comma":    "focusmon -1",
		"M-period":   "focusmon +1",
		"MS-comma":   "tagmon -1",
		"MS-period":  "tagmon +1",
		"MS-f":       "togglefullscreen",
		"MS-q":       "quit",
	}
	for i := 1; i <= 9; i++ {
		n := strconv.Itoa(i)
		binds["M-"+n] = "view " + n
		binds["MS-"+n] = "tag " + n
		binds["MC-"+n] = "toggleview " + n
		binds["MCS-"+n] = "toggletag " + n
	}
	for spec, cmd := range binds {
		cfg.Binds[parseKeySpec(spec)] = cmd
	}

	return cfg
}

func parseKeySpec(s string) KeySpec {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) == 1 {
		return KeySpec{Key: parts[0]}
	}
	return KeySpec{Mods: parts[0], Key: parts[1]}
}

type parseDecl struct {
	num int
	fn  func(cfg *Config, in []string) error
}

var parseMap = map[string]parseDecl{
	"borderwidth": {1, func(cfg *Config, in []string) error {
		return parseInt(in[0], &cfg.BorderWidth)
	}},

	"snapdist": {1, func(cfg *Config, in []string) error {
		return parseInt(in[0], &cfg.SnapDist)
	}},

	"mfact": {1, func(cfg *Config, in []string) error {
		f, err := strconv.ParseFloat(in[0], 64)
		if err != nil {
			return err
		}
		if f < 0.05 || f > 0.95 {
			return fmt.Errorf("mfact %v out of range [0.05, 0.95]", f)
		}
		cfg.MFact = f
		return nil
	}},

	"nmaster": {1, func(cfg *Config, in []string) error {
		err := parseInt(in[0], &cfg.NMaster)
		if err != nil {
			return err
		}
		if cfg.NMaster < 0 {
			cfg.NMaster = 0
		}
		return nil
	}},

	"showbar": {1, func(cfg *Config, in []string) error {
		return parseBool(in[0], &cfg.ShowBar)
	}},

	"topbar": {1, func(cfg *Config, in []string) error {
		return parseBool(in[0], &cfg.TopBar)
	}},

	"resizehints": {1, func(cfg *Config, in []string) error {
		return parseBool(in[0], &cfg.ResizeHints)
	}},

	"lockfullscreen": {1, func(cfg *Config, in []string) error {
		return parseBool(in[0], &cfg.LockFullscreen)
	}},

	"statusclock": {1, func(cfg *Config, in []string) error {
		return parseBool(in[0], &cfg.StatusClock)
	}},

	"fontname": {1, func(cfg *Config, in []string) error {
		cfg.Font = in[0]
		return nil
	}},

	"color": {2, func(cfg *Config, in []string) error {
		if _, ok := cfg.Colors[in[0]]; !ok {
			return fmt.Errorf("unknown color %q", in[0])
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(in[1], "#"), 16, 32)
		if err != nil {
			return err
		}
		cfg.Colors[in[0]] = int(v)
		return nil
	}},

	// tag appends one workspace name; the first tag directive discards
	// the default set.
	"tag": {1, func(cfg *Config, in []string) error {
		if !cfg.sawTag {
			cfg.Tags = nil
			cfg.sawTag = true
		}
		if len(cfg.Tags) >= MaxTags {
			return fmt.Errorf("more than %d tags", MaxTags)
		}
		cfg.Tags = append(cfg.Tags, in[0])
		return nil
	}},

	// rule <class> <instance> <title> <tags> <floating> <monitor>
	// with "*" as the wildcard pattern.
	"rule": {6, func(cfg *Config, in []string) error {
		if !cfg.sawRule {
			cfg.Rules = nil
			cfg.sawRule = true
		}
		r := Rule{
			Class:    pattern(in[0]),
			Instance: pattern(in[1]),
			Title:    pattern(in[2]),
		}
		tags, err := strconv.ParseUint(in[3], 0, 32)
		if err != nil {
			return err
		}
		r.Tags = uint32(tags)
		if err := parseBool(in[4], &r.Floating); err != nil {
			return err
		}
		if err := parseInt(in[5], &r.Monitor); err != nil {
			return err
		}
		cfg.Rules = append(cfg.Rules, r)
		return nil
	}},

	"bind": {2, func(cfg *Config, in []string) error {
		parts := strings.SplitN(in[0], "-", 2)
		var key KeySpec
		switch len(parts) {
		case 1:
			key = KeySpec{Key: parts[0]}
		case 2:
			key = KeySpec{Mods: parts[0], Key: parts[1]}
		default:
			return fmt.Errorf("invalid keyspec %q", in[0])
		}
		if in[1] == "unmap" {
			delete(cfg.Binds, key)
		} else {
			cfg.Binds[key] = in[1]
		}
		return nil
	}},

	"mousebind": {2, func(cfg *Config, in []string) error {
		parts := strings.SplitN(in[0], "-", 2)
		var key KeySpec
		switch len(parts) {
		case 1:
			key = KeySpec{Key: parts[0]}
		case 2:
			key = KeySpec{Mods: parts[0], Key: parts[1]}
		default:
			return fmt.Errorf("invalid mousespec %q", in[0])
		}
		if in[1] == "unmap" {
			for k, v := range cfg.MouseBinds {
				if v == key {
					delete(cfg.MouseBinds, k)
					break
				}
			}
		} else {
			cfg.MouseBinds[in[1]] = key
		}
		return nil
	}},

	"command": {2, func(cfg *Config, in []string) error {
		cfg.Commands[in[0]] = in[1]
		return nil
	}},
}

func pattern(s string) string {
	if s == "*" {
		return ""
	}
	return s
}

func parseInt(s string, out *int) error {
	i, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*out = i
	return nil
}

func parseBool(s string, out *bool) error {
	switch s {
	case "yes":
		*out = true
	case "no":
		*out = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	return nil
}

func Parse(r io.Reader) (*Config, error) {
	cfg := Default()

	cnt, _ := ioutil.ReadAll(r)
	_, ch := lex(string(cnt))
	for {
		command, ok := <-ch
		if !ok {
			return cfg, errors.New("internal error")
		}

		if command.typ == itemEOF {
			return cfg, nil
		}
		if command.typ == itemTerminator {
			continue
		}
		if command.typ != itemString {
			return cfg, errors.New("unexpected token " + command.String())
		}
		decl, ok := parseMap[command.val]
		if !ok {
			return cfg, errors.New("unknown option " + command.val)
		}
		in, err := expect(ch, decl.num)
		if err != nil {
			return cfg, err
		}
		err = decl.fn(cfg, in)
		if err != nil {
			return cfg, err
		}
	}
}

func expect(ch chan item, num int) ([]string, error) {
	var ret []string
	for i := 0; i < num; i++ {
		val := <-ch
		if val.typ == itemError {
			return ret, errors.New(val.val)
		}

		if val.typ == itemTerminator || val.typ == itemEOF {
			return ret, io.EOF
		}

		ret = append(ret, val.val)
	}

	val := <-ch
	if val.typ != itemTerminator {
		return ret, errors.New("unexpected token " + val.typ.String())
	}

	return ret, nil
}

type lexer struct {
	input             string
	start             int
	pos               int
	width             int
	items             chan item
	lastWasTerminator bool
}
type itemType int

const (
	itemError itemType = iota
	itemString
	itemTerminator
	itemEOF
)

func (i itemType) String() string {
	switch i {
	case itemError:
		return "error"
	case itemString:
		return "string"
	case itemTerminator:
		return "terminator"
	case itemEOF:
		return "eof"
	default:
		return ""
	}
}

const eof = -1

type item struct {
	typ itemType
	val string
}

func (i item) String() string {
	switch i.typ {
	case itemEOF:
		return "EOF"
	case itemError:
		return i.val
	}
	return fmt.Sprintf("(%s) %q", i.typ, i.val)
}

type stateFn func(*lexer) stateFn

func lex(input string) (*lexer, chan item) {
	l := &lexer{
		input: input,
		items: make(chan item),
	}
	go l.run()
	return l, l.items
}

func (l *lexer) run() {
	for state := lexText; state != nil; {
		state = state(l)
	}
	close(l.items)
}

func (l *lexer) emit(t itemType) {
	l.lastWasTerminator = t == itemTerminator
	l.items <- item{t, l.input[l.start:l.pos]}
	l.start = l.pos
}

func (l *lexer) next() (rune rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	rune, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return rune
}

func (l *lexer) ignore() {
	l.start = l.pos
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.items <- item{itemError, fmt.Sprintf(format, args...)}
	return nil
}

func lexText(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof {
			break
		}

		if r == '#' {
			return lexComment
		}

		if r == ' ' || r == '\t' {
			l.ignore()
			continue
		}

		if r == '\n' {
			if l.lastWasTerminator {
				l.ignore()
			} else {
				l.emit(itemTerminator)
			}
			continue
		}

		return lexString
	}
	l.emit(itemEOF)
	return nil
}

func lexString(l *lexer) stateFn {
	quoted := false
	defer func() {
		if l.input[l.start:l.pos] != "" {
			if quoted {
				l.start++
				l.pos--
			}
			l.emit(itemString)
			if quoted {
				l.pos++
				l.start = l.pos
			}
		}
	}()
	if l.input[l.pos-1] == '"' {
		quoted = true
	}
	escape := false
	multiline := false

	var r rune
loop:
	for r != eof {
		r = l.next()
		switch r {
		case '\\':
			if quoted {
				escape = !escape
			} else {
				multiline = true
			}
		case '"':
			if quoted && !escape {
				break loop
			}
		case ' ', '\t':
			if !quoted {
				l.backup()
				break loop
			}
		case '\n':
			if quoted || multiline {
				multiline = false
			} else {
				l.backup()
				break loop
			}
		case '#':
			if !quoted {
				l.backup()

				return lexComment
			}
		}
	}

	return lexText
}

func lexComment(l *lexer) stateFn {
	for {
		r := l.next()
		if r == eof || r == '\n' {
			l.backup()
			break
		}
	}
	l.ignore()
	return lexText
}
