package timingevent

import (
	"github.com/bsc-mem/mess-simulator/memctrl"
)

// AccessType distinguishes a plain access from a cache write-back. Grounded
// on the original source's zsim::AccessType: write-backs (PUTS) never
// incur memory latency and are never enqueued (spec §4.7).
type AccessType int

const (
	// Load or store access that should be priced through the core.
	Regular AccessType = iota
	// PUTS is a write-back: returns 0 latency, never scheduled.
	PUTS
)

// TimingEventShim wraps a *memctrl.BwLatMemCtrl for event-driven hosts with
// a "bound" phase (synchronous, cache-visible latency) and a "weave" phase
// (asynchronous surcharge accounting), per spec §4.7. It is grounded on
// original_source's WeaveBwLatMemCtrl / WeaveMessMemCtrl: the returned
// latency is split into a fixed zeroLoadLatency, returned immediately, and
// an overflow = currentLatency - zeroLoadLatency, scheduled as a separate
// event with preDelay = zeroLoadLatency/2 and postDelay = the remainder.
type TimingEventShim struct {
	ctrl *memctrl.BwLatMemCtrl

	zeroLoadLatency int64
	preDelay        int64
	postDelay       int64

	queue *EventQueue
}

// NewTimingEventShim wraps ctrl, deriving zeroLoadLatency (and the
// pre/post-delay split) from ctrl.GetLeadOffLatency().
func NewTimingEventShim(ctrl *memctrl.BwLatMemCtrl) *TimingEventShim {
	zeroLoad := ctrl.GetLeadOffLatency()
	pre := zeroLoad / 2
	return &TimingEventShim{
		ctrl:            ctrl,
		zeroLoadLatency: zeroLoad,
		preDelay:        pre,
		postDelay:       zeroLoad - pre,
		queue:           NewEventQueue(),
	}
}

// Access runs one access through the wrapped core and returns the baseline
// latency the host's bound phase should apply synchronously. PUTS accesses
// return 0 and are never recorded against the core or enqueued, matching
// the original source's write-back short-circuit.
//
// Unless the access is a PUTS, the over-baseline surcharge
// (currentLatency - zeroLoadLatency) is scheduled on the weave-phase queue,
// due at cycle + currentLatency; callers drain it with Queue().
func (s *TimingEventShim) Access(cycle int64, isWrite bool, accessType AccessType) (baseline int64, err error) {
	if accessType == PUTS {
		return 0, nil
	}

	latency, err := s.ctrl.Access(cycle, isWrite)
	if err != nil {
		return 0, err
	}

	surcharge := latency - s.zeroLoadLatency
	if surcharge < 0 {
		surcharge = 0
	}
	s.queue.Schedule(cycle+latency, surcharge, s.preDelay, s.postDelay)

	return s.zeroLoadLatency, nil
}

// Queue returns the weave-phase surcharge event queue.
func (s *TimingEventShim) Queue() *EventQueue { return s.queue }

// ZeroLoadLatency returns the fixed baseline latency returned inline by
// every non-PUTS Access call.
func (s *TimingEventShim) ZeroLoadLatency() int64 { return s.zeroLoadLatency }
