//go:build profile

// Package profiler records nested timing scopes around the dispatch loop
// and writes them as a speedscope evented profile. It compiles to no-ops
// unless the "profile" build tag is set.
package profiler

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"
)

const Enabled = true

// Init allocates the scope ring. capacity is the number of open/close marks
// kept; older marks are overwritten.
func Init(capacity int) {
	if capacity <= 0 {
		capacity = 1 << 20
	}
	marks.init(capacity)
}

// Start opens a scope and returns the func that closes it.
func Start(name string) func() {
	if !marks.ready.Load() {
		return func() {}
	}
	id := intern(name)
	at := time.Now().UnixNano()
	marks.push(mark{at: at, frame: id, open: true})
	return func() {
		end := time.Now().UnixNano()
		if end < at {
			end = at
		}
		marks.push(mark{at: end, frame: id})
	}
}

// Dump writes the recorded scopes to path.
func Dump(path string) error {
	return writeSpeedscope(marks.snapshot(), path)
}

// Open dumps into the temp directory and launches the speedscope viewer on
// the result.
func Open() (string, error) {
	path := filepath.Join(os.TempDir(), "grovetouch.speedscope.json")
	if err := Dump(path); err != nil {
		return "", err
	}
	cmd := exec.Command("speedscope", path)
	cmd.SysProcAttr = hiddenWindow()
	if err := cmd.Start(); err != nil {
		return path, fmt.Errorf("launching speedscope: %w", err)
	}
	return path, nil
}

// ---------- mark ring ----------

type mark struct {
	at    int64
	frame int
	open  bool
}

type ring struct {
	ready atomic.Bool
	size  uint64
	next  atomic.Uint64
	buf   []mark
}

func (r *ring) init(capacity int) {
	r.size = uint64(capacity)
	r.buf = make([]mark, r.size)
	r.next.Store(0)
	r.ready.Store(true)
}

func (r *ring) push(m mark) {
	i := r.next.Add(1) - 1
	r.buf[i%r.size] = m
}

// snapshot returns the marks in write order.
func (r *ring) snapshot() []mark {
	n := r.next.Load()
	if n == 0 {
		return nil
	}
	var from uint64
	if n > r.size {
		from = n - r.size
	}
	out := make([]mark, 0, n-from)
	for k := from; k < n; k++ {
		out = append(out, r.buf[k%r.size])
	}
	return out
}

var marks ring

var (
	namesMu sync.Mutex
	names   []string
	nameIDs = map[string]int{}
)

func intern(name string) int {
	namesMu.Lock()
	defer namesMu.Unlock()
	if id, ok := nameIDs[name]; ok {
		return id
	}
	id := len(names)
	nameIDs[name] = id
	names = append(names, name)
	return id
}

// ---------- speedscope ----------

type ssFile struct {
	Schema   string      `json:"$schema"`
	Shared   ssShared    `json:"shared"`
	Profiles []ssProfile `json:"profiles"`
	Exporter string      `json:"exporter,omitempty"`
	Name     string      `json:"name,omitempty"`
}

type ssShared struct {
	Frames []ssFrame `json:"frames"`
}

type ssFrame struct {
	Name string `json:"name"`
}

type ssProfile struct {
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Unit       string    `json:"unit"`
	StartValue int64     `json:"startValue"`
	EndValue   int64     `json:"endValue"`
	Events     []ssEvent `json:"events"`
}

type ssEvent struct {
	Type  string `json:"type"` // O or C
	At    int64  `json:"at"`   // µs since the first mark
	Frame int    `json:"frame"`
}

// events converts marks to balanced speedscope events. Closes that do not
// match the innermost open scope are dropped, and scopes still open at the
// end are closed at the last timestamp.
func events(ms []mark) ([]ssEvent, int64) {
	if len(ms) == 0 {
		return nil, 0
	}
	base := ms[0].at
	out := make([]ssEvent, 0, len(ms))
	var stack []int
	last := int64(0)
	for _, m := range ms {
		at := (m.at - base) / 1000
		if at < last {
			at = last
		}
		if m.open {
			out = append(out, ssEvent{Type: "O", At: at, Frame: m.frame})
			stack = append(stack, m.frame)
		} else {
			if len(stack) == 0 || stack[len(stack)-1] != m.frame {
				continue
			}
			stack = stack[:len(stack)-1]
			out = append(out, ssEvent{Type: "C", At: at, Frame: m.frame})
		}
		last = at
	}
	for i := len(stack) - 1; i >= 0; i-- {
		out = append(out, ssEvent{Type: "C", At: last, Frame: stack[i]})
	}
	return out, last
}

func writeSpeedscope(ms []mark, path string) error {
	evs, end := events(ms)
	if len(evs) == 0 {
		return fmt.Errorf("profiler: no scopes recorded")
	}

	namesMu.Lock()
	frames := make([]ssFrame, len(names))
	for i, n := range names {
		frames[i] = ssFrame{Name: n}
	}
	namesMu.Unlock()

	doc := ssFile{
		Schema: "https://www.speedscope.app/file-format-schema.json",
		Shared: ssShared{Frames: frames},
		Profiles: []ssProfile{{
			Type:     "evented",
			Name:     "dispatch loop",
			Unit:     "microseconds",
			EndValue: end,
			Events:   evs,
		}},
		Exporter: "grovetouch-profiler",
		Name:     "grovetouch capture",
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating profile: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&doc); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
