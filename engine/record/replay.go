package record

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hubastard/grovetouch/engine/input"
)

// Replay is an input provider that plays a recorded session back with its
// original timing, scaled by Speed.
type Replay struct {
	input.Buffered
	store   *Store
	session string
	speed   float64
	loop    bool
	owned   bool
	logger  *slog.Logger

	// wait blocks for d or until stop closes, reporting false when stopped.
	wait func(d time.Duration, stop <-chan struct{}) bool

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewReplay(name string, store *Store, session string, logger *slog.Logger) *Replay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Replay{
		Buffered: input.NewBuffered(name, 0),
		store:    store,
		session:  session,
		speed:    1,
		logger:   logger,
		wait:     sleep,
	}
}

func sleep(d time.Duration, stop <-chan struct{}) bool {
	if d <= 0 {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-stop:
		return false
	case <-timer.C:
		return true
	}
}

// Constructor opens args "path,session=name,speed=1.5,loop" as a replay.
func Constructor(key, args string, logger *slog.Logger) (input.Provider, error) {
	parts := strings.Split(args, ",")
	path := strings.TrimSpace(parts[0])
	if path == "" {
		return nil, fmt.Errorf("replay: missing database path")
	}
	session, speed, loop := "default", 1.0, false
	for _, opt := range parts[1:] {
		k, v, _ := strings.Cut(strings.TrimSpace(opt), "=")
		switch k {
		case "":
		case "session":
			session = v
		case "speed":
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 {
				return nil, fmt.Errorf("replay: bad speed %q", v)
			}
			speed = f
		case "loop":
			loop = true
		default:
			return nil, fmt.Errorf("replay: unknown option %q", k)
		}
	}
	store, err := Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReplay(key, store, session, logger).Speed(speed).Loop(loop)
	r.owned = true
	return r, nil
}

func (r *Replay) Speed(f float64) *Replay { r.speed = f; return r }
func (r *Replay) Loop(on bool) *Replay    { r.loop = on; return r }

// Done is closed when playback ends or the replay is stopped.
func (r *Replay) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Replay) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return nil
	}
	id, err := r.store.SessionID(r.session)
	if err != nil {
		return err
	}
	events, err := r.store.Events(id)
	if err != nil {
		return err
	}
	r.stop, r.done = make(chan struct{}), make(chan struct{})
	go r.play(events, r.stop, r.done)
	r.logger.Info("replay started", "session", r.session, "events", len(events))
	return nil
}

// Stop interrupts playback. A replay built by Constructor also closes its
// store, so it cannot be started again.
func (r *Replay) Stop() error {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop = nil
	owned := r.owned
	r.owned = false
	r.mu.Unlock()
	if stop != nil {
		close(stop)
		<-done
	}
	if owned {
		return r.store.Close()
	}
	return nil
}

func (r *Replay) play(events []Event, stop <-chan struct{}, done chan struct{}) {
	defer close(done)
	ids := map[string]int{}
	for {
		var last time.Duration
		for _, ev := range events {
			if !r.wait(time.Duration(float64(ev.At-last)/r.speed), stop) {
				return
			}
			last = ev.At
			r.Push(input.Raw{
				Kind:       ev.Kind,
				ID:         replayID(ids, ev),
				X:          ev.X,
				Y:          ev.Y,
				FiducialID: ev.FiducialID,
				Angle:      ev.Angle,
				HasAngle:   ev.HasAngle,
			})
		}
		if !r.loop || len(events) == 0 {
			return
		}
		clear(ids)
	}
}

// replayID folds the recorded (device, id) pairs into one id space.
func replayID(ids map[string]int, ev Event) int {
	key := ev.Device + "#" + strconv.Itoa(ev.ID)
	id, ok := ids[key]
	if !ok {
		id = len(ids) + 1
		ids[key] = id
	}
	return id
}
