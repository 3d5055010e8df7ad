package telemetry

import "testing"

func TestEventLogDrain(t *testing.T) {
	log := NewEventLog(0)
	log.Record(NewSpawnEvent(1, 100))
	log.Record(NewRemoveEvent(5, 1))
	log.Record(NewClearEvent(9, 99))

	events := log.Drain()
	if len(events) != 3 {
		t.Fatalf("drained %d events, want 3", len(events))
	}
	if events[0].Type != EventSpawn || events[0].Count != 100 {
		t.Errorf("first event = %+v, want spawn of 100", events[0])
	}
	if log.Len() != 0 {
		t.Errorf("log not empty after drain: %d", log.Len())
	}
}

func TestEventLogEvictsOldest(t *testing.T) {
	log := NewEventLog(3)
	for i := int64(0); i < 5; i++ {
		log.Record(NewSpawnEvent(i, 1))
	}

	events := log.Drain()
	if len(events) != 3 {
		t.Fatalf("kept %d events, want 3", len(events))
	}
	if events[0].Tick != 2 || events[2].Tick != 4 {
		t.Errorf("wrong events survived: ticks %d..%d, want 2..4", events[0].Tick, events[2].Tick)
	}
}

func TestEventTypeString(t *testing.T) {
	if got := EventEmit.String(); got != "emit" {
		t.Errorf("EventEmit.String() = %q, want emit", got)
	}
	if got := EventType(200).String(); got != "unknown" {
		t.Errorf("unknown type string = %q", got)
	}
}
