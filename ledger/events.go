package ledger

import (
	"time"

	"go.uber.org/zap"
)

const (
	EventEntryApproved = "entry.approved"
	EventEntryRejected = "entry.rejected"
)

// EntryEvent is the payload handed to the notification collaborator when
// an entry is approved or rejected.
type EntryEvent struct {
	Type        string    `json:"type"`
	TimeEntryID uint      `json:"time_entry_id"`
	WorkerID    uint      `json:"worker_id"`
	JobID       *uint     `json:"job_id,omitempty"`
	Date        time.Time `json:"date"`
	Hours       float64   `json:"hours"`
	Reason      string    `json:"reason,omitempty"`
}

// Publisher delivers lifecycle events. Delivery is fire-and-forget and
// outside the ledger's correctness contract; events are published only
// after the owning transaction has committed.
type Publisher interface {
	Publish(event EntryEvent)
}

// Sink consumes events off the dispatcher goroutine.
type Sink func(event EntryEvent)

// AsyncPublisher fans events out to sinks on a background goroutine.
// Publish never blocks; if the buffer is full the event is dropped and
// logged, since notifications are advisory.
type AsyncPublisher struct {
	ch    chan EntryEvent
	done  chan struct{}
	sinks []Sink
	log   *zap.Logger
}

func NewAsyncPublisher(log *zap.Logger, buffer int, sinks ...Sink) *AsyncPublisher {
	if buffer <= 0 {
		buffer = 64
	}
	p := &AsyncPublisher{
		ch:    make(chan EntryEvent, buffer),
		done:  make(chan struct{}),
		sinks: sinks,
		log:   log,
	}
	go p.run()
	return p
}

func (p *AsyncPublisher) run() {
	defer close(p.done)
	for event := range p.ch {
		for _, sink := range p.sinks {
			sink(event)
		}
		p.log.Info("entry event dispatched",
			zap.String("type", event.Type),
			zap.Uint("time_entry_id", event.TimeEntryID),
			zap.Uint("worker_id", event.WorkerID),
		)
	}
}

func (p *AsyncPublisher) Publish(event EntryEvent) {
	select {
	case p.ch <- event:
	default:
		p.log.Warn("event buffer full, dropping",
			zap.String("type", event.Type),
			zap.Uint("time_entry_id", event.TimeEntryID),
		)
	}
}

// Close drains pending events and stops the dispatcher.
func (p *AsyncPublisher) Close() {
	close(p.ch)
	<-p.done
}

// NopPublisher discards events; used in tests and as a safe default.
type NopPublisher struct{}

func (NopPublisher) Publish(EntryEvent) {}
