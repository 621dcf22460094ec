// Package memctrl implements a curve-driven, windowed memory-latency
// estimator for use inside a CPU microarchitectural simulator.
//
// # Reading Guide
//
// Start with these files to understand the estimator:
//   - config.go: construction parameters (Config)
//   - curve.go: the bandwidth-latency curve family (CurveStore) and how it is loaded
//   - interpolator.go: mapping (bandwidth, read ratio) to a latency via the curves
//   - controller.go: the smoothing filter that turns raw samples into a stable estimate
//   - window.go: the fixed-size access window that triggers latency updates
//   - ctrl.go: BwLatMemCtrl, the per-channel object that ties the above
//     together, and its public Access surface
//
// # Architecture
//
// One BwLatMemCtrl owns one Window, one SmoothingController and a reference
// to a shared, read-only CurveStore. Access() records the request in the
// window and returns the latency estimate computed from the *previous*
// window — this one-window delay keeps the estimator causal. When a window
// fills, updateLatency() recomputes bandwidth and read ratio and runs them
// through the Interpolator and SmoothingController.
//
// memctrl/timingevent wraps Access() for event-driven hosts that need to
// split the returned latency into an inline baseline and a queued
// over-baseline surcharge.
package memctrl
