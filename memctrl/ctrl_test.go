package memctrl

import (
	"sync"
	"testing"
)

func newToyCtrl(t *testing.T, windowSize int64) *BwLatMemCtrl {
	t.Helper()
	cfg := Config{
		CurvePath:         toyCurveDir,
		CurveFrequencyGHz: 2.0,
		CPUFrequencyGHz:   2.0,
		OnCoreLatency:     10,
		WindowSize:        windowSize,
	}
	m, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := Config{
		CurvePath:         toyCurveDir,
		CurveFrequencyGHz: 2.0,
		CPUFrequencyGHz:   2.0,
		OnCoreLatency:     10,
		WindowSize:        0,
	}
	if _, err := New(cfg); err == nil {
		t.Fatal("expected a ConfigError for WindowSize=0")
	}
}

func TestNewWithCurveStore_RejectsNilStore(t *testing.T) {
	cfg := Config{WindowSize: 1}
	if _, err := NewWithCurveStore(cfg, nil); err == nil {
		t.Fatal("expected a ConfigError for a nil curve store")
	}
}

func TestNewWithCurveStore_SharesOneStoreAcrossChannels(t *testing.T) {
	store, err := LoadCurveStore(toyCurveDir, 2.0, 2.0, 10)
	if err != nil {
		t.Fatalf("LoadCurveStore: %v", err)
	}
	cfg := Config{WindowSize: 4}

	a, err := NewWithCurveStore(cfg, store)
	if err != nil {
		t.Fatalf("NewWithCurveStore a: %v", err)
	}
	b, err := NewWithCurveStore(cfg, store)
	if err != nil {
		t.Fatalf("NewWithCurveStore b: %v", err)
	}
	if a.GetLeadOffLatency() != b.GetLeadOffLatency() {
		t.Errorf("channels sharing one store disagree on lead-off latency: %d vs %d", a.GetLeadOffLatency(), b.GetLeadOffLatency())
	}
}

func TestBwLatMemCtrl_Access_FirstWindowReturnsLeadOff(t *testing.T) {
	m := newToyCtrl(t, 4)
	leadOff := m.GetLeadOffLatency()

	for cycle := int64(0); cycle < 4; cycle++ {
		latency, err := m.Access(cycle, false)
		if err != nil {
			t.Fatalf("Access(%d): %v", cycle, err)
		}
		if latency != leadOff {
			t.Errorf("Access(%d) = %d, want lead-off latency %d (window not yet closed)", cycle, latency, leadOff)
		}
	}
}

func TestBwLatMemCtrl_Access_UpdatesAfterWindowCloses(t *testing.T) {
	m := newToyCtrl(t, 4)
	leadOff := m.GetLeadOffLatency()

	// Fill the first window.
	for cycle := int64(0); cycle < 4; cycle++ {
		if _, err := m.Access(cycle, false); err != nil {
			t.Fatalf("Access(%d): %v", cycle, err)
		}
	}

	// The first access of the *second* window observes whatever latency
	// the first window's close produced — it need not still be lead-off,
	// but it must never go below it.
	latency, err := m.Access(4, false)
	if err != nil {
		t.Fatalf("Access(4): %v", err)
	}
	if latency < leadOff {
		t.Errorf("Access(4) = %d, want >= lead-off latency %d", latency, leadOff)
	}
}

func TestBwLatMemCtrl_Access_PanicsOnNonMonotonicCycle(t *testing.T) {
	m := newToyCtrl(t, 4)
	if _, err := m.Access(10, false); err != nil {
		t.Fatalf("Access: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic for a regressing cycle")
		}
	}()
	m.Access(5, false)
}

func TestBwLatMemCtrl_GetQoSLoadHeadroom_ZeroWhenUnderMax(t *testing.T) {
	m := newToyCtrl(t, 4)
	// One idle window of reads (4 accesses over 3000 cycles) selects the
	// 100%-read bucket and leaves currentLatency at leadOffLatency (80), well
	// under that bucket's maximum (200) — headroom must be zero.
	for _, cycle := range []int64{0, 1000, 2000, 3000} {
		if _, err := m.Access(cycle, false); err != nil {
			t.Fatalf("Access(%d): %v", cycle, err)
		}
	}
	if h := m.GetQoSLoadHeadroom(); h != 0 {
		t.Errorf("GetQoSLoadHeadroom() = %d, want 0", h)
	}
}

func TestBwLatMemCtrl_Access_SerializedUnderConcurrentCallers(t *testing.T) {
	m := newToyCtrl(t, 8)

	var wg sync.WaitGroup
	var mu sync.Mutex
	cycle := int64(0)
	errs := make([]error, 0)

	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				// Cycle assignment and the Access call must happen under the
				// same lock: BwLatMemCtrl requires non-decreasing cycles
				// across callers, and goroutine scheduling gives no ordering
				// guarantee between "claim a cycle number" and "use it".
				mu.Lock()
				c := cycle
				cycle++
				_, err := m.Access(c, (id+i)%2 == 0)
				if err != nil {
					errs = append(errs, err)
				}
				mu.Unlock()
			}
		}(g)
	}
	wg.Wait()

	if len(errs) != 0 {
		t.Fatalf("Access returned %d errors under concurrent use: first=%v", len(errs), errs[0])
	}
}
