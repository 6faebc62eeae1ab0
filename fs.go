// The control filesystem exposes the manager's state as a 9P tree on a
// unix socket ($TWM_SOCKET, default /tmp/twm-$UID.sock):
//
//	/wins/<id>/{name,geom,tags,floating,monitor}
//	/wins/sel              the selected client
//	/wins/by-name/<name>/  clients grouped by title
//	/monitors/<n>/{geom,layout,tagset}
//
// geom, tags and floating are writable; removing a win directory asks
// the client to close. All state access runs on the event loop.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	p9p "github.com/docker/go-p9p"
	"golang.org/x/net/context"
)

const (
	qidRoot = iota + 1
	qidWins
	qidMonitors
	qidByName
	qidLast
)

type Directory interface {
	File
	Parent() Directory
	Files() []File
}

type File interface {
	Name() string
	Qid() uint64
}

type Remover interface {
	Remove()
}

type Reader interface {
	Read() []byte
}

type Writer interface {
	Write([]byte) error
}

type FSDirectory struct {
	parent Directory
	name   string
	qid    uint64
	files  []File
}

func (dir FSDirectory) Parent() Directory {
	return dir.parent
}

func (dir FSDirectory) Name() string {
	return dir.name
}

func (dir FSDirectory) Qid() uint64 {
	return dir.qid
}

func (dir FSDirectory) Files() []File {
	return dir.files
}

// FSWindow is the directory for one client.
type FSWindow struct {
	parent Directory
	name   string
	client *Client
}

var _ Directory = FSWindow{}

func (win FSWindow) Parent() Directory {
	return win.parent
}

func (win FSWindow) Name() string {
	if win.name != "" {
		return win.name
	}
	return fmt.Sprintf("%d", win.client.win.Id)
}

func (win FSWindow) Qid() uint64 {
	return qidLast + uint64(win.client.win.Id)<<4
}

func (win FSWindow) Remove() {
	win.client.kill()
}

type FSWindowAttr struct {
	client  *Client
	name    string
	index   uint64
	readFn  func() []byte
	writeFn func([]byte) error
}

func (attr FSWindowAttr) Qid() uint64 {
	return qidLast + uint64(attr.client.win.Id)<<4 + attr.index
}

func (attr FSWindowAttr) Name() string {
	return attr.name
}

func (attr FSWindowAttr) Read() []byte {
	if attr.readFn == nil {
		return nil
	}
	b := attr.readFn()
	b = append(b, '\n')
	return b
}

func (attr FSWindowAttr) Write(b []byte) error {
	if attr.writeFn == nil {
		return p9p.ErrNowrite
	}
	return attr.writeFn(b)
}

func (win FSWindow) Files() []File {
	c := win.client
	wm := c.wm
	return []File{
		FSWindowAttr{
			c, "name", 1,
			func() []byte { return []byte(c.Name) },
			nil,
		},
		FSWindowAttr{
			c, "geom", 2,
			func() []byte {
				s := fmt.Sprintf("%d %d %d %d",
					c.Geom.X, c.Geom.Y, c.Geom.Width, c.Geom.Height)
				return []byte(s)
			},
			func(b []byte) error {
				f := strings.Fields(string(b))
				if len(f) != 4 {
					return p9p.ErrNowrite
				}
				var g [4]int
				for i, s := range f {
					n, err := strconv.Atoi(s)
					if err != nil {
						return p9p.ErrNowrite
					}
					g[i] = n
				}
				c.resize(g[0], g[1], g[2], g[3], true)
				return nil
			},
		},
		FSWindowAttr{
			c, "tags", 3,
			func() []byte {
				return []byte(fmt.Sprintf("%#x", c.Tags))
			},
			func(b []byte) error {
				n, err := strconv.ParseUint(strings.TrimSpace(string(b)), 0, 32)
				if err != nil || uint32(n)&wm.tagMask == 0 {
					return p9p.ErrNowrite
				}
				c.Tags = uint32(n) & wm.tagMask
				wm.focus(nil)
				c.Mon.arrange()
				return nil
			},
		},
		FSWindowAttr{
			c, "floating", 4,
			func() []byte {
				if c.IsFloating {
					return []byte("yes")
				}
				return []byte("no")
			},
			func(b []byte) error {
				want := strings.TrimSpace(string(b)) == "yes"
				if want != c.IsFloating {
					c.toggleFloating()
				}
				return nil
			},
		},
		FSWindowAttr{
			c, "monitor", 5,
			func() []byte { return []byte(strconv.Itoa(c.Mon.Num)) },
			nil,
		},
	}
}

// FSMonitorAttr is a read-only attribute of a monitor.
type FSMonitorAttr struct {
	mon    *Monitor
	name   string
	index  uint64
	readFn func() []byte
}

func (attr FSMonitorAttr) Qid() uint64 {
	return qidLast + 1<<24 + uint64(attr.mon.Num)<<4 + attr.index
}

func (attr FSMonitorAttr) Name() string {
	return attr.name
}

func (attr FSMonitorAttr) Read() []byte {
	return append(attr.readFn(), '\n')
}

func monitorDir(parent Directory, m *Monitor) FSDirectory {
	dir := FSDirectory{
		parent: parent,
		name:   strconv.Itoa(m.Num),
		qid:    qidLast + 1<<24 + uint64(m.Num)<<4,
	}
	dir.files = []File{
		FSMonitorAttr{m, "geom", 1, func() []byte {
			return []byte(fmt.Sprintf("%d %d %d %d", m.MX, m.MY, m.MW, m.MH))
		}},
		FSMonitorAttr{m, "layout", 2, func() []byte {
			return []byte(m.LtSymbol)
		}},
		FSMonitorAttr{m, "tagset", 3, func() []byte {
			return []byte(fmt.Sprintf("%#x", m.TagSet[m.SelTags]))
		}},
	}
	return dir
}

type Root struct {
	wm *WM
}

func (r Root) Parent() Directory {
	return r
}

func (r Root) Files() []File {
	wins := FSDirectory{
		parent: r,
		name:   "wins",
		qid:    qidWins,
	}
	for _, m := range r.wm.Mons {
		for _, c := range m.Clients {
			wins.files = append(wins.files, FSWindow{
				parent: wins,
				client: c,
			})
		}
	}
	if sel := r.wm.SelMon.Sel; sel != nil {
		wins.files = append(wins.files, FSWindow{
			parent: wins,
			client: sel,
			name:   "sel",
		})
	}
	wins.files = append(wins.files, FSWindowNameGroup{
		parent: wins,
		name:   "by-name",
		wm:     r.wm,
	})

	monitors := FSDirectory{
		parent: r,
		name:   "monitors",
		qid:    qidMonitors,
	}
	for _, m := range r.wm.Mons {
		monitors.files = append(monitors.files, monitorDir(monitors, m))
	}

	return []File{wins, monitors}
}

type FSWindowNameGroup struct {
	parent Directory
	name   string
	wm     *WM
}

func (g FSWindowNameGroup) Qid() uint64 {
	return qidByName
}

func (g FSWindowNameGroup) Parent() Directory {
	return g.parent
}

func (g FSWindowNameGroup) Name() string {
	return g.name
}

func (g FSWindowNameGroup) Files() []File {
	m := map[string][]*Client{}
	for _, mon := range g.wm.Mons {
		for _, c := range mon.Clients {
			if c.Name == "" {
				continue
			}
			m[c.Name] = append(m[c.Name], c)
		}
	}

	var out []File
	for name, clients := range m {
		name = strings.Replace(name, "/", "_", -1)
		dir := FSDirectory{
			parent: g,
			name:   name,
			qid:    qidLast + 2<<24 + uint64(clients[0].win.Id)<<4,
		}
		for _, c := range clients {
			dir.files = append(dir.files, FSWindow{parent: dir, client: c})
		}
		out = append(out, dir)
	}

	return out
}

func (Root) Qid() uint64 {
	return qidRoot
}

func (Root) Name() string { return "/" }

type session struct {
	wm      *WM
	fids    map[p9p.Fid]File
	readers map[p9p.Fid]io.ReaderAt
}

func newSession(wm *WM) session {
	return session{wm, map[p9p.Fid]File{}, map[p9p.Fid]io.ReaderAt{}}
}

func (session) Auth(ctx context.Context, afid p9p.Fid, uname string, aname string) (p9p.Qid, error) {
	return p9p.Qid{}, errors.New("no auth")
}

func (s session) Attach(ctx context.Context, fid p9p.Fid, afid p9p.Fid, uname string, aname string) (p9p.Qid, error) {
	s.fids[fid] = Root{s.wm}
	return p9p.Qid{
		Type:    p9p.QTDIR,
		Version: 0,
		Path:    qidRoot,
	}, nil
}

func (s session) Clunk(ctx context.Context, fid p9p.Fid) error {
	delete(s.fids, fid)
	delete(s.readers, fid)
	return nil
}

func (s session) Remove(ctx context.Context, fid p9p.Fid) error {
	file, ok := s.fids[fid].(Remover)
	if !ok {
		return p9p.ErrNoremove
	}
	s.wm.run(file.Remove)
	return nil
}

func (s session) Walk(ctx context.Context, fid p9p.Fid, newfid p9p.Fid, names ...string) ([]p9p.Qid, error) {
	node := s.fids[fid]

	var qids []p9p.Qid
	var err error
	s.wm.run(func() {
	outer:
		for _, name := range names {
			dir, ok := node.(Directory)
			if !ok {
				err = p9p.ErrWalknodir
				return
			}
			if name == ".." {
				node = dir.Parent()
				qids = append(qids, qid(node))
				continue outer
			}
			for _, file := range dir.Files() {
				if file.Name() == name {
					node = file
					qids = append(qids, qid(file))
					continue outer
				}
			}
			err = p9p.ErrNotfound
			return
		}
	})
	if err != nil {
		return nil, err
	}
	s.fids[newfid] = node
	return qids, nil
}

func qid(file File) p9p.Qid {
	typ := p9p.QType(p9p.QTFILE)
	if _, isDir := file.(Directory); isDir {
		typ = p9p.QTDIR
	}
	return p9p.Qid{
		Type:    typ,
		Version: 0,
		Path:    file.Qid(),
	}
}

func (s session) Read(ctx context.Context, fid p9p.Fid, p []byte, offset int64) (n int, err error) {
	r, ok := s.readers[fid]
	if !ok {
		return 0, p9p.ErrNotfound
	}
	n, err = r.ReadAt(p, offset)
	if err == io.EOF {
		err = nil
	}
	return n, err
}

func (s session) Write(ctx context.Context, fid p9p.Fid, p []byte, offset int64) (n int, err error) {
	if offset != 0 {
		return 0, p9p.ErrBadoffset
	}
	w, ok := s.fids[fid].(Writer)
	if !ok {
		return 0, p9p.ErrNowrite
	}
	s.wm.run(func() {
		err = w.Write(p)
	})
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s session) Open(ctx context.Context, fid p9p.Fid, mode p9p.Flag) (p9p.Qid, uint32, error) {
	file, ok := s.fids[fid]
	if !ok {
		return p9p.Qid{}, 0, p9p.ErrNotfound
	}
	var data []byte
	var err error
	s.wm.run(func() {
		switch file := file.(type) {
		case Directory:
			buf := &bytes.Buffer{}
			for _, file := range file.Files() {
				dir := p9p.Dir{
					Qid:        qid(file),
					Mode:       fileMode(file),
					AccessTime: time.Now(),
					ModTime:    time.Now(),
					Name:       file.Name(),
					UID:        "twm",
					GID:        "twm",
					MUID:       "twm",
				}
				_ = p9p.EncodeDir(p9p.NewCodec(), buf, &dir)
			}
			data = buf.Bytes()
		case Reader:
			data = file.Read()
		default:
			err = errors.New("reading prohibited")
		}
	})
	if err != nil {
		return p9p.Qid{}, 0, err
	}
	s.readers[fid] = bytes.NewReader(data)
	return qid(file), 0, nil
}

func (session) Create(ctx context.Context, parent p9p.Fid, name string, perm uint32, mode p9p.Flag) (p9p.Qid, uint32, error) {
	return p9p.Qid{}, 0, errors.New("create prohibited")
}

func fileMode(f File) uint32 {
	mode := p9p.DMREAD
	if _, isDir := f.(Directory); isDir {
		mode |= p9p.DMDIR | p9p.DMEXEC
	}
	if _, isWriter := f.(Writer); isWriter {
		mode |= p9p.DMWRITE
	}
	return uint32(mode)
}

func (s session) Stat(ctx context.Context, fid p9p.Fid) (p9p.Dir, error) {
	file, ok := s.fids[fid]
	if !ok {
		return p9p.Dir{}, p9p.ErrNotfound
	}
	var name string
	s.wm.run(func() { name = file.Name() })
	return p9p.Dir{
		Qid:        qid(file),
		Mode:       fileMode(file),
		AccessTime: time.Now(),
		ModTime:    time.Now(),
		Name:       name,
		UID:        "twm",
		GID:        "twm",
		MUID:       "twm",
	}, nil
}

func (session) WStat(ctx context.Context, fid p9p.Fid, dir p9p.Dir) error {
	return nil
}

func (session) Version() (msize int, version string) {
	return 64 * 1024, "9P2000"
}

func socketPath() string {
	if p := os.Getenv("TWM_SOCKET"); p != "" {
		return p
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("twm-%d.sock", os.Getuid()))
}

func (wm *WM) serveFS() {
	path := socketPath()
	os.Remove(path)
	l, err := net.Listen("unix", path)
	if err != nil {
		log.Println("control fs:", err)
		return
	}
	for {
		conn, err := l.Accept()
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			err := p9p.ServeConn(context.Background(), conn, p9p.Dispatch(newSession(wm)))
			if err != nil && err != io.EOF {
				log.Println("control fs:", err)
			}
		}()
	}
}
