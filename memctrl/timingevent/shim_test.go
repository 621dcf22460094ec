package timingevent

import (
	"testing"

	"github.com/bsc-mem/mess-simulator/memctrl"
)

func newToyShim(t *testing.T) *TimingEventShim {
	t.Helper()
	cfg := memctrl.Config{
		CurvePath:         "../testdata/toycurve",
		CurveFrequencyGHz: 2.0,
		CPUFrequencyGHz:   2.0,
		OnCoreLatency:     10,
		WindowSize:        4,
	}
	ctrl, err := memctrl.New(cfg)
	if err != nil {
		t.Fatalf("memctrl.New: %v", err)
	}
	return NewTimingEventShim(ctrl)
}

func TestTimingEventShim_PUTSShortCircuits(t *testing.T) {
	s := newToyShim(t)

	baseline, err := s.Access(0, true, PUTS)
	if err != nil {
		t.Fatalf("Access: %v", err)
	}
	if baseline != 0 {
		t.Errorf("PUTS baseline = %d, want 0", baseline)
	}
	if s.Queue().Len() != 0 {
		t.Errorf("PUTS enqueued an event, want none")
	}
}

func TestTimingEventShim_RegularAccessReturnsZeroLoadBaseline(t *testing.T) {
	s := newToyShim(t)

	baseline, err := s.Access(0, false, Regular)
	if err != nil {
		t.Fatalf("Access: %v", err)
	}
	if baseline != s.ZeroLoadLatency() {
		t.Errorf("baseline = %d, want zeroLoadLatency %d", baseline, s.ZeroLoadLatency())
	}
}

func TestTimingEventShim_SchedulesSurchargeEvent(t *testing.T) {
	s := newToyShim(t)

	// Fill one window so that the next access's baseline/surcharge reflects
	// an actual blended latency rather than the initial lead-off value.
	for cycle := int64(0); cycle < 4; cycle++ {
		if _, err := s.Access(cycle, false, Regular); err != nil {
			t.Fatalf("Access(%d): %v", cycle, err)
		}
	}

	before := s.Queue().Len()
	if _, err := s.Access(4, false, Regular); err != nil {
		t.Fatalf("Access(4): %v", err)
	}
	if s.Queue().Len() != before+1 {
		t.Fatalf("Queue length = %d, want %d (one new surcharge event)", s.Queue().Len(), before+1)
	}

	ev := s.Queue().Peek()
	if ev == nil {
		t.Fatal("Peek() returned nil after scheduling an event")
	}
	if ev.Surcharge < 0 {
		t.Errorf("Surcharge = %d, want >= 0", ev.Surcharge)
	}
	if ev.PreDelay+ev.PostDelay != s.ZeroLoadLatency() {
		t.Errorf("PreDelay+PostDelay = %d, want zeroLoadLatency %d", ev.PreDelay+ev.PostDelay, s.ZeroLoadLatency())
	}
}

func TestEventQueue_OrdersByCycleThenSequence(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(10, 1, 0, 0)
	q.Schedule(5, 2, 0, 0)
	q.Schedule(5, 3, 0, 0)

	first := q.PopNext()
	if first.Cycle != 5 || first.Surcharge != 2 {
		t.Fatalf("first popped = %+v, want cycle=5 surcharge=2", first)
	}
	second := q.PopNext()
	if second.Cycle != 5 || second.Surcharge != 3 {
		t.Fatalf("second popped = %+v, want cycle=5 surcharge=3 (tie broken by sequence)", second)
	}
	third := q.PopNext()
	if third.Cycle != 10 {
		t.Fatalf("third popped = %+v, want cycle=10", third)
	}
	if q.PopNext() != nil {
		t.Fatal("expected an empty queue after draining all events")
	}
}

func TestEventQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewEventQueue()
	q.Schedule(1, 0, 0, 0)

	if q.Peek() == nil {
		t.Fatal("Peek() returned nil on a non-empty queue")
	}
	if q.Len() != 1 {
		t.Fatalf("Len() = %d after Peek(), want 1", q.Len())
	}
}
