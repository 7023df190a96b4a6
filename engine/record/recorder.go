package record

import (
	"log/slog"
	"time"

	"github.com/hubastard/grovetouch/engine/touch"
)

// Recorder is a postprocessing stage that writes every event passing
// through it to a session. It never alters the batch.
type Recorder struct {
	store   *Store
	session int64
	logger  *slog.Logger
	now     func() time.Time

	start  time.Time
	failed bool
}

func NewRecorder(store *Store, session string, logger *slog.Logger) (*Recorder, error) {
	id, err := store.CreateSession(session)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{store: store, session: id, logger: logger, now: time.Now}, nil
}

func (r *Recorder) Process(events []touch.Event) []touch.Event {
	if len(events) == 0 || r.failed {
		return events
	}
	now := r.now()
	if r.start.IsZero() {
		r.start = now
	}
	at := now.Sub(r.start)
	batch := make([]Event, len(events))
	for i, ev := range events {
		t := ev.Touch
		batch[i] = Event{
			At:         at,
			Device:     t.Device,
			ID:         t.ID,
			Kind:       ev.Kind,
			X:          t.SX,
			Y:          t.SY,
			FiducialID: t.FiducialID,
			Angle:      t.Angle,
			HasAngle:   t.HasAngle,
		}
	}
	if err := r.store.Append(r.session, batch); err != nil {
		r.logger.Error("recording disabled", "err", err)
		r.failed = true
	}
	return events
}
