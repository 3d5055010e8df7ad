package telemetry

// EventType identifies particle lifecycle events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventEmit
	EventRemove
	EventClear
)

func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventEmit:
		return "emit"
	case EventRemove:
		return "remove"
	case EventClear:
		return "clear"
	}
	return "unknown"
}

// Event records one lifecycle occurrence and how many particles it
// touched.
type Event struct {
	Type  EventType
	Tick  int64
	Count int
}

// NewSpawnEvent records a batch spawn.
func NewSpawnEvent(tick int64, count int) Event {
	return Event{Type: EventSpawn, Tick: tick, Count: count}
}

// NewEmitEvent records pointer-driven emission.
func NewEmitEvent(tick int64, count int) Event {
	return Event{Type: EventEmit, Tick: tick, Count: count}
}

// NewRemoveEvent records particle removal.
func NewRemoveEvent(tick int64, count int) Event {
	return Event{Type: EventRemove, Tick: tick, Count: count}
}

// NewClearEvent records a full world reset.
func NewClearEvent(tick int64, count int) Event {
	return Event{Type: EventClear, Tick: tick, Count: count}
}

// EventLog is a bounded in-memory event buffer. When full, the oldest
// events are dropped.
type EventLog struct {
	events []Event
	max    int
}

// DefaultEventLogSize bounds the buffer between drains.
const DefaultEventLogSize = 1024

// NewEventLog creates a log holding at most max events (0 means
// DefaultEventLogSize).
func NewEventLog(max int) *EventLog {
	if max <= 0 {
		max = DefaultEventLogSize
	}
	return &EventLog{max: max}
}

// Record appends an event, evicting the oldest when the buffer is
// full.
func (l *EventLog) Record(e Event) {
	if len(l.events) >= l.max {
		copy(l.events, l.events[1:])
		l.events = l.events[:len(l.events)-1]
	}
	l.events = append(l.events, e)
}

// Len returns the number of buffered events.
func (l *EventLog) Len() int { return len(l.events) }

// Drain returns the buffered events and empties the log. The returned
// slice is owned by the caller.
func (l *EventLog) Drain() []Event {
	out := l.events
	l.events = nil
	return out
}

// EventCSV is the CSV row shape for the events log.
type EventCSV struct {
	Tick  int64  `csv:"tick"`
	Type  string `csv:"type"`
	Count int    `csv:"count"`
}

// ToCSV converts an event to its CSV row.
func (e Event) ToCSV() EventCSV {
	return EventCSV{Tick: e.Tick, Type: e.Type.String(), Count: e.Count}
}
