package input

// Buffered is the common plumbing shared by providers: a name, a queue fed
// by background goroutines and a tracker applied on the loop thread.
type Buffered struct {
	name    string
	queue   *Queue[Raw]
	tracker *Tracker
}

func NewBuffered(name string, limit int) Buffered {
	return Buffered{name: name, queue: NewQueue[Raw](limit), tracker: NewTracker(name)}
}

func (b *Buffered) Name() string       { return b.name }
func (b *Buffered) Queue() *Queue[Raw] { return b.queue }
func (b *Buffered) Tracker() *Tracker  { return b.tracker }

// Push enqueues raw events. Safe from any goroutine.
func (b *Buffered) Push(events ...Raw) { b.queue.Push(events...) }

// Update drains the queue and emits the resulting touch events.
func (b *Buffered) Update(emit EmitFunc) {
	for _, r := range b.queue.Drain() {
		b.tracker.Apply(r, emit)
	}
}
