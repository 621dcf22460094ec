package memctrl

import "math"

// convergeSpeed is the coefficient of the first-order IIR low-pass filter
// that blends each new bandwidth/latency sample into the running estimate.
// Spec §4.3: "Convergence speed".
const convergeSpeed = 0.05

// overflowRampStep and overflowDecayStep are the per-window increments the
// overflow factor moves by under saturation and recovery, respectively.
const (
	overflowRampStep = 0.02
	overflowDecayStep = 0.01
)

// SmoothingController holds the running bandwidth/latency estimate and the
// overflow-penalty accumulator, and implements the first-order low-pass
// filter described in spec §4.3. It is mutated only from Blend, which is
// itself called only when a window closes (see ctrl.go's updateLatency), so there is no
// internal locking here — BwLatMemCtrl.Access serializes all access under
// one exclusive lock (spec §5).
type SmoothingController struct {
	ip *Interpolator

	lastBandwidth  float64
	lastLatency    float64
	overflowFactor float64
	lastReadBucket int
	currentLatency int64
}

// newSmoothingController initializes controller state per spec §3:
// lastBandwidth=0, lastLatency=currentLatency=leadOffLatency, overflowFactor=0.
func newSmoothingController(ip *Interpolator, leadOffLatency float64) *SmoothingController {
	return &SmoothingController{
		ip:             ip,
		lastBandwidth:  0,
		lastLatency:    leadOffLatency,
		overflowFactor: 0,
		lastReadBucket: 0,
		currentLatency: int64(math.Round(leadOffLatency)),
	}
}

// Blend folds one window's (bandwidth, readRatio) sample into the running
// estimate and returns the new currentLatency, per spec §4.3 steps 1-7.
func (c *SmoothingController) Blend(rawBandwidth, readRatio float64) (int64, error) {
	blendedBandwidth := convergeSpeed*rawBandwidth + (1-convergeSpeed)*c.lastBandwidth

	bucket := bucketFromReadRatio(readRatio)
	idx := bucketFromPercent(bucket)
	c.lastReadBucket = idx

	maxBW := c.ip.bucketMaxBandwidth(bucket)
	maxLat := c.ip.bucketMaxLatency(bucket)

	var blendedLatency float64

	if blendedBandwidth > saturationThreshold*maxBW {
		c.overflowFactor += overflowRampStep

		rawLatency := (1 + c.overflowFactor) * maxLat
		blendedLatency = convergeSpeed*rawLatency + (1-convergeSpeed)*c.lastLatency

		c.lastBandwidth = convergeSpeed*maxBW + (1-convergeSpeed)*c.lastBandwidth
	} else {
		rawLatency, err := c.ip.InterpolateOnly(blendedBandwidth, bucket)
		if err != nil {
			return 0, err
		}
		rawLatency += c.overflowFactor * rawLatency

		blendedLatency = convergeSpeed*rawLatency + (1-convergeSpeed)*c.lastLatency

		if c.overflowFactor > overflowDecayStep {
			c.overflowFactor -= overflowDecayStep
		} else {
			c.overflowFactor = 0
		}

		c.lastBandwidth = blendedBandwidth
	}

	c.lastLatency = blendedLatency

	if blendedLatency < c.ip.store.leadOffLatency {
		blendedLatency = c.ip.store.leadOffLatency
	}

	c.currentLatency = int64(math.Round(blendedLatency))
	return c.currentLatency, nil
}

// CurrentLatency returns the most recently blended latency estimate without
// recomputing anything.
func (c *SmoothingController) CurrentLatency() int64 { return c.currentLatency }

// OverflowFactor returns the current overflow accumulator (>= 0).
func (c *SmoothingController) OverflowFactor() float64 { return c.overflowFactor }

// LastReadBucket returns the curve-array index (0..50) of the bucket most
// recently selected by Blend, for QoSLoadHeadroom (spec §4.8).
func (c *SmoothingController) LastReadBucket() int { return c.lastReadBucket }
