package memctrl

import "sync"

// BwLatMemCtrl is a curve-driven, windowed latency estimator for one
// simulated memory channel — the Go name for what the original source calls
// MessMemCtrl. One instance owns its own window and smoothing-controller
// state; many instances may share a single read-only *CurveStore (spec §5's
// "Curves sharing" design note).
//
// All mutable state is protected by a single exclusive lock held for the
// entirety of Access, matching the teacher package's convention of pushing
// concurrency control to whichever layer actually needs it (the teacher has
// no internal locking in its simulation core; the one mutex in the whole
// pack, cmd/observe.go's result aggregation, is the model here).
type BwLatMemCtrl struct {
	mu sync.Mutex

	store        *CurveStore
	interpolator *Interpolator
	controller   *SmoothingController
	win          *window
}

// New constructs a BwLatMemCtrl, loading its own CurveStore from cfg.CurvePath.
// Use NewWithCurveStore instead when multiple channels should share one
// curve family.
func New(cfg Config) (*BwLatMemCtrl, error) {
	store, err := LoadCurveStore(cfg.CurvePath, cfg.CPUFrequencyGHz, cfg.CurveFrequencyGHz, cfg.OnCoreLatency)
	if err != nil {
		return nil, err
	}
	return NewWithCurveStore(cfg, store)
}

// NewWithCurveStore constructs a BwLatMemCtrl against an already-loaded,
// shared CurveStore, skipping curve loading. cfg's curve-loading fields
// (CurvePath, CurveFrequencyGHz, CPUFrequencyGHz, OnCoreLatency) are ignored;
// only WindowSize is consulted.
func NewWithCurveStore(cfg Config, store *CurveStore) (*BwLatMemCtrl, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, newConfigError("curve store must not be nil", nil)
	}

	interpolator := NewInterpolator(store)
	return &BwLatMemCtrl{
		store:        store,
		interpolator: interpolator,
		controller:   newSmoothingController(interpolator, store.LeadOffLatency()),
		win:          newWindow(cfg.WindowSize),
	}, nil
}

// Access records one memory access at the given CPU cycle and returns the
// response latency, in CPU cycles, that the caller should use for it (spec
// §4.6). The returned value reflects the estimate derived from the
// *previous* window — the first window's accesses all return the lead-off
// latency — which keeps the estimator causal.
//
// cycle must be non-decreasing across calls on the same BwLatMemCtrl; a
// regression is a programmer bug (spec §6.4/§7: "Panic/abort"). A cycle
// below the current window's start cycle panics rather than returning an
// error — see window.go's record. The check is against the window's start
// cycle only: a cycle below an earlier access of the same window but not
// below its start, or a drop across a window boundary, is not detected.
func (m *BwLatMemCtrl) Access(cycle int64, isWrite bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	latency := m.controller.CurrentLatency()
	if filled := m.win.record(cycle, isWrite); filled {
		if err := m.updateLatency(cycle); err != nil {
			return 0, err
		}
		m.win.reset()
	}

	return latency, nil
}

// updateLatency implements spec §4.5: compute the closed window's bandwidth
// and read ratio, then blend them into the running estimate.
func (m *BwLatMemCtrl) updateLatency(endCycle int64) error {
	bandwidth, readRatio := m.win.bandwidthAndReadRatio(endCycle)
	_, err := m.controller.Blend(bandwidth, readRatio)
	return err
}

// GetLeadOffLatency returns the idle-load latency floor (spec §4.1, §6.3):
// the minimum latency across every point in every loaded curve.
func (m *BwLatMemCtrl) GetLeadOffLatency() int64 {
	// leadOffLatency is fixed at construction; no lock needed.
	return int64(m.store.LeadOffLatency())
}

// GetQoSLoadHeadroom returns how far the current latency estimate has been
// pushed above the nominal saturation point of the most recently selected
// read-ratio bucket's curve, for use by schedulers above the core (spec
// §4.8). Returns 0 when the estimate is at or below that curve's maximum.
func (m *BwLatMemCtrl) GetQoSLoadHeadroom() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	headroom := m.controller.CurrentLatency() - int64(m.interpolator.maxLatencyAtIndex(m.controller.LastReadBucket()))
	if headroom < 0 {
		return 0
	}
	return headroom
}
