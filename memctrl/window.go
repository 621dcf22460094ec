package memctrl

import "fmt"

// window is a fixed-size batch of consecutive accesses over which
// bandwidth and read ratio are computed for one latency update (spec §3,
// §4.4). It is mutated only from BwLatMemCtrl.Access, itself serialized by
// a single exclusive lock, so window carries no lock of its own.
type window struct {
	size int64

	startCycle int64
	count      int64
	countRead  int64
	countWrite int64
}

func newWindow(size int64) *window {
	return &window{size: size}
}

// record implements spec §4.4's Record operation: it captures the window's
// start cycle on the first access, tallies the access, and reports whether
// the window just filled (cycle becomes the window's end cycle in that
// case). A cycle before the window's start cycle is a programmer bug, not a
// recoverable runtime condition (spec §6.4/§7: "Panic/abort"), so it panics
// rather than returning an error, matching the teacher's convention for
// misuse of its own scheduling/routing interfaces. Only the start cycle is
// compared: a cycle lower than the previous access but not below the start
// cycle is accepted, and the first access after a reset is not compared
// with anything.
func (w *window) record(cycle int64, isWrite bool) (filled bool) {
	if w.count == 0 {
		w.startCycle = cycle
	} else if cycle < w.startCycle {
		panic(fmt.Sprintf("window.record: access cycle %d is before window start cycle %d (cycles must be non-decreasing)", cycle, w.startCycle))
	}

	w.count++
	if isWrite {
		w.countWrite++
	} else {
		w.countRead++
	}

	return w.count == w.size
}

// bandwidthAndReadRatio computes the window's observed bandwidth (accesses
// per cycle) and read ratio, per spec §4.5 steps 1-3. endCycle is the cycle
// at which the window closed. A non-positive window length (endCycle <=
// startCycle) panics rather than returning an error, for the same reason
// record does above. record accepts equal cycles, so this happens whenever
// every access of a window shares one cycle, which includes every window
// when the window size is 1.
func (w *window) bandwidthAndReadRatio(endCycle int64) (bandwidth, readRatio float64) {
	windowLength := endCycle - w.startCycle
	if windowLength <= 0 {
		panic(fmt.Sprintf("window.bandwidthAndReadRatio: window of %d accesses spans non-positive length (start=%d, end=%d)", w.count, w.startCycle, endCycle))
	}
	bandwidth = float64(w.count) / float64(windowLength)
	readRatio = float64(w.countRead) / float64(w.count)
	return bandwidth, readRatio
}

// reset clears all four counters, per spec §4.4 step 3.
func (w *window) reset() {
	w.startCycle = 0
	w.count = 0
	w.countRead = 0
	w.countWrite = 0
}
