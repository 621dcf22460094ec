package memctrl

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// saturationThreshold is the fraction of a bucket's maximum bandwidth above
// which the Interpolator routes to the saturation penalty instead of
// interpolating. Spec §9 Open Questions: two historical copies used 0.985
// and 0.99 respectively; this implementation adopts 0.99, the value spec.md
// settles on, and does not expose it as a Config field since no operation
// needs to vary it at runtime.
const saturationThreshold = 0.99

// bucketFromReadRatio maps a read ratio in [0,1] to the even bucket
// percentage in {0, 2, ..., 100} per spec §4.2 step 1, rounding to nearest
// and clamping to the valid range.
func bucketFromReadRatio(readRatio float64) int {
	bucket := int(math.Round(readRatio*50)) * 2
	if bucket < 0 {
		bucket = 0
	}
	if bucket > 100 {
		bucket = 100
	}
	return bucket
}

// curveFit is a per-bucket cached interpolant: a gonum PiecewiseLinear fit
// over the curve's points sorted into ascending-bandwidth order (the curve
// file itself is stored descending, matching the source data's
// high-bandwidth-first convention).
type curveFit struct {
	fit      *interp.PiecewiseLinear
	minBW    float64
	maxBW    float64
	firstLat float64 // latency at the highest-bandwidth point (descending-order index 0)
	lastLat  float64 // latency at the lowest-bandwidth point
}

// buildCurveFit fits a PiecewiseLinear interpolant over curve's points. The
// curve is stored in descending-bandwidth order (per §4.1's file-order
// assumption); gonum requires strictly increasing x, so the points are
// reversed first. A curve with a single point, or with a non-monotonic /
// duplicate bandwidth sequence that gonum rejects, yields a curveFit with a
// nil fit; interpolateWithFit then returns only its boundary latencies.
func buildCurveFit(c *Curve) *curveFit {
	n := len(c.Points)
	if n == 0 {
		return nil
	}

	cf := &curveFit{
		firstLat: c.Points[0].Latency,
		lastLat:  c.Points[n-1].Latency,
		minBW:    c.Points[n-1].Bandwidth,
		maxBW:    c.Points[0].Bandwidth,
	}

	if n < 2 {
		return cf
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, p := range c.Points {
		xs[n-1-i] = p.Bandwidth
		ys[n-1-i] = p.Latency
	}
	if !sort.Float64sAreSorted(xs) {
		return cf // non-monotonic input; Search falls back to boundary latencies
	}
	for i := 1; i < n; i++ {
		if xs[i] == xs[i-1] {
			return cf // duplicate bandwidth; gonum needs strictly increasing x
		}
	}

	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		return cf
	}
	cf.fit = &pl
	cf.minBW = xs[0]
	cf.maxBW = xs[n-1]
	return cf
}

// Interpolator maps (bandwidth, read ratio) pairs to latencies by selecting
// the curve for the nearest read-ratio bucket and either interpolating
// along it or, above the saturation threshold, returning an
// overflow-penalized latency.
type Interpolator struct {
	store *CurveStore
	fits  [numBuckets]*curveFit
}

// NewInterpolator builds an Interpolator over store, pre-fitting every
// non-empty bucket once so that Search never refits on the hot path.
func NewInterpolator(store *CurveStore) *Interpolator {
	ip := &Interpolator{store: store}
	for i := range store.curves {
		if c, ok := store.bucket(i); ok {
			ip.fits[i] = buildCurveFit(c)
		}
	}
	return ip
}

// InterpolateOnly performs the piecewise-linear lookup on the curve selected
// by bucket (an even percentage 0..100), with no saturation check and no
// smoothing-controller bookkeeping. SmoothingController.Blend calls it once
// bandwidth and bucket are decided; Search applies the same lookup
// (interpolateWithFit) directly.
//
// Returns a StateError if the selected bucket's curve has zero points.
func (ip *Interpolator) InterpolateOnly(bandwidth float64, bucket int) (float64, error) {
	idx := bucketFromPercent(bucket)
	cf := ip.fits[idx]
	if cf == nil {
		return 0, newStateError("interpolate: bucket %d%% has no curve points loaded", bucket)
	}

	latency := interpolateWithFit(cf, bandwidth)

	if latency < ip.store.leadOffLatency {
		latency = ip.store.leadOffLatency
	}
	return latency, nil
}

// interpolateWithFit applies the edge-case rules from spec §4.2 step 4:
// below the curve's minimum listed bandwidth, no extrapolation — return the
// lowest-bandwidth point's latency; at or above the maximum, return the
// highest-bandwidth point's latency (the saturation branch in Search should
// already have caught true overflow); otherwise interpolate.
func interpolateWithFit(cf *curveFit, bandwidth float64) float64 {
	if cf.fit == nil {
		// Degenerate curve (one point, or a fit gonum rejected): no
		// interpolation is possible, only the boundary latencies are known.
		if bandwidth <= cf.minBW {
			return cf.lastLat
		}
		return cf.firstLat
	}
	if bandwidth <= cf.minBW {
		return cf.lastLat
	}
	if bandwidth >= cf.maxBW {
		return cf.firstLat
	}
	return cf.fit.Predict(bandwidth)
}

// bucketMaxBandwidth returns maxBandwidth[bucket] from spec §3; a bucket
// with no points reports zero. Search does not call it (it returns a
// StateError for an empty bucket first); in SmoothingController.Blend any
// positive bandwidth on an empty bucket therefore takes the saturation branch.
func (ip *Interpolator) bucketMaxBandwidth(bucket int) float64 {
	if cf := ip.fits[bucketFromPercent(bucket)]; cf != nil {
		return cf.maxBW
	}
	return 0
}

// bucketMaxLatency returns maxLatency[bucket] from spec §3.
func (ip *Interpolator) bucketMaxLatency(bucket int) float64 {
	return ip.maxLatencyAtIndex(bucketFromPercent(bucket))
}

// maxLatencyAtIndex returns maxLatency for the curve at array index idx
// (0..50) directly, with no percent-to-index conversion. Used by
// QoSLoadHeadroom (spec §4.8), which keys off ControllerState.lastReadBucket
// — already stored as an index per invariant 3 (0 ≤ lastReadBucket ≤ 50).
func (ip *Interpolator) maxLatencyAtIndex(idx int) float64 {
	if c, ok := ip.store.bucket(idx); ok {
		return c.MaxLatency
	}
	return 0
}

// Search implements the stateless bucket-select / saturate-or-interpolate
// operation from spec §4.2, independent of any smoothing history.
// SmoothingController.Blend does not call it (Blend runs its own saturation
// branch and calls InterpolateOnly). Called with overflowFactor=0, Search on
// a curve's own grid point returns that point's exact latency, the
// "Interpolator round-trip" property from spec §8.
//
// Returns the latency, the bucket that was selected (for callers that want
// to track lastReadBucket themselves), and a StateError if that bucket's
// curve has no points.
func (ip *Interpolator) Search(bandwidth float64, readRatio float64, overflowFactor float64) (latency float64, bucket int, err error) {
	bucket = bucketFromReadRatio(readRatio)
	idx := bucketFromPercent(bucket)
	cf := ip.fits[idx]
	if cf == nil {
		return 0, bucket, newStateError("search: bucket %d%% has no curve points loaded", bucket)
	}

	if bandwidth > saturationThreshold*cf.maxBW {
		penalty := (1 + overflowFactor) * ip.bucketMaxLatency(bucket)
		if penalty < ip.store.leadOffLatency {
			penalty = ip.store.leadOffLatency
		}
		return penalty, bucket, nil
	}

	latency = interpolateWithFit(cf, bandwidth)
	if latency < ip.store.leadOffLatency {
		latency = ip.store.leadOffLatency
	}
	return latency, bucket, nil
}
