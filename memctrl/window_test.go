package memctrl

import (
	"math"
	"testing"
)

func TestWindow_RecordFillsAtSize(t *testing.T) {
	w := newWindow(3)

	if filled := w.record(10, false); filled {
		t.Fatalf("record#1: filled=%v, want false", filled)
	}
	if filled := w.record(11, true); filled {
		t.Fatalf("record#2: filled=%v, want false", filled)
	}
	if filled := w.record(12, false); !filled {
		t.Fatalf("record#3: filled=%v, want true", filled)
	}

	if w.count != 3 || w.countRead != 2 || w.countWrite != 1 {
		t.Errorf("counters = count=%d read=%d write=%d, want 3/2/1", w.count, w.countRead, w.countWrite)
	}
	if w.startCycle != 10 {
		t.Errorf("startCycle = %d, want 10", w.startCycle)
	}
}

func TestWindow_RecordPanicsOnNonMonotonicCycle(t *testing.T) {
	w := newWindow(5)
	w.record(100, false)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a regressing cycle")
		}
	}()
	w.record(99, false)
}

func TestWindow_ResetClearsCounters(t *testing.T) {
	w := newWindow(2)
	w.record(5, false)
	w.record(6, true)
	w.reset()
	if w.count != 0 || w.countRead != 0 || w.countWrite != 0 || w.startCycle != 0 {
		t.Errorf("window after reset = %+v, want all zero", w)
	}

	// The reset window should behave like a fresh one: the next record call
	// establishes a new start cycle rather than comparing against the old one.
	if filled := w.record(1, false); filled {
		t.Fatalf("record after reset unexpectedly filled a size-2 window on the first access")
	}
}

func TestWindow_BandwidthAndReadRatio(t *testing.T) {
	w := newWindow(4)
	cycles := []struct {
		cycle   int64
		isWrite bool
	}{
		{100, false},
		{101, false},
		{102, true},
		{110, false},
	}
	var endCycle int64
	var filled bool
	for _, c := range cycles {
		filled = w.record(c.cycle, c.isWrite)
		endCycle = c.cycle
	}
	if !filled {
		t.Fatal("window did not fill as expected")
	}

	bandwidth, readRatio := w.bandwidthAndReadRatio(endCycle)
	wantBandwidth := 4.0 / 10.0 // 4 accesses over cycles 100..110
	wantReadRatio := 3.0 / 4.0  // 3 reads, 1 write
	if math.Abs(bandwidth-wantBandwidth) > 1e-9 {
		t.Errorf("bandwidth = %v, want %v", bandwidth, wantBandwidth)
	}
	if math.Abs(readRatio-wantReadRatio) > 1e-9 {
		t.Errorf("readRatio = %v, want %v", readRatio, wantReadRatio)
	}
}

func TestWindow_BandwidthAndReadRatio_PanicsOnNonPositiveLength(t *testing.T) {
	w := newWindow(1)
	w.record(50, false)

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a zero-length window")
		}
	}()
	w.bandwidthAndReadRatio(50)
}
