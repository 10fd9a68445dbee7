package jobqueue

import (
	"sync"
	"time"
)

// EventType labels a progress event.
type EventType string

const (
	EventJobStarted     EventType = "job_started"
	EventTrackEnriched  EventType = "track_enriched"
	EventPhaseCompleted EventType = "phase_completed"
	EventJobCompleted   EventType = "job_completed"
	EventJobFailed      EventType = "job_failed"
)

// ProgressEvent is one typed pipeline progress notification. TrackCount is
// set on job_started; TrackID and Phase on track_enriched.
type ProgressEvent struct {
	Type            EventType
	JobID           string
	Phase           string
	TrackID         int64
	TrackCount      int64
	TracksProcessed int64
	TracksEnriched  int64
	Errors          int64
	Message         string
	Timestamp       time.Time
}

// Broadcaster fans progress events out to subscribers. Delivery is
// best-effort: a subscriber that falls behind loses events rather than
// blocking the pipeline.
type Broadcaster struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan ProgressEvent
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan ProgressEvent)}
}

// Subscribe registers a listener with the given buffer. The returned cancel
// function unregisters it and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan ProgressEvent, func()) {
	if buffer < 1 {
		buffer = 16
	}
	ch := make(chan ProgressEvent, buffer)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if existing, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(existing)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broadcaster) Publish(event ProgressEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- event:
		default:
		}
	}
}
