package memctrl

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	// numBuckets is the number of read-ratio buckets: 0%, 2%, ..., 100%.
	numBuckets = 51
	// bucketStep is the percentage-point spacing between adjacent buckets.
	bucketStep = 2
	// accessGranularityBytes is the access size assumed when converting
	// curve bandwidth from MB/s to accesses per cycle.
	accessGranularityBytes = 64
)

// CurvePoint is one measured (bandwidth, latency) pair on a bandwidth-latency
// curve, already normalized into accesses/cycle and CPU cycles.
type CurvePoint struct {
	Bandwidth float64 // accesses per CPU cycle
	Latency   float64 // CPU cycles
}

// Curve is the ordered sequence of CurvePoints for one read-ratio bucket,
// stored in the file order: descending bandwidth, ascending latency.
type Curve struct {
	Points      []CurvePoint
	MaxBandwidth float64
	MaxLatency   float64
}

// CurveStore holds the full family of 51 bandwidth-latency curves, one per
// read-ratio bucket, plus the global statistics derived from them. It is
// populated once at construction and is read-only afterward; it may safely
// be shared by reference across many BwLatMemCtrl instances.
type CurveStore struct {
	curves         [numBuckets]Curve
	leadOffLatency float64
	maxBandwidth   float64
	maxLatency     float64
	diagnostics    [numBuckets]BucketDiagnostics
}

// BucketDiagnostics reports what LoadCurveStore found for one read-ratio
// bucket: how many points its curve file contributed, and whether the file
// was missing or empty (in which case PointCount is 0 and the bucket has no
// usable curve).
type BucketDiagnostics struct {
	Percent    int
	PointCount int
	Missing    bool
}

// bucketFromPercent maps a bucket's read-percentage label (0, 2, ..., 100)
// to its index into CurveStore.curves (0..50).
func bucketFromPercent(percent int) int { return percent / bucketStep }

// LoadCurveStore loads the curve family rooted at path, one file per bucket
// ("bwlat_<percent>.txt"), and computes per-bucket and global statistics.
//
// A missing individual file is non-fatal: the bucket is left with zero
// points and a warning is logged (a later Interpolator.Search against that
// bucket returns a StateError). The directory being missing, or every
// bucket ending up empty, fails construction with a ConfigError.
func LoadCurveStore(path string, cpuFrequencyGHz, curveFrequencyGHz, onCoreLatency float64) (*CurveStore, error) {
	if cpuFrequencyGHz <= 0 {
		return nil, newConfigError(fmt.Sprintf("cpuFrequency must be > 0, got %v", cpuFrequencyGHz), nil)
	}
	if curveFrequencyGHz <= 0 {
		return nil, newConfigError(fmt.Sprintf("curveFrequency must be > 0, got %v", curveFrequencyGHz), nil)
	}
	if onCoreLatency < 0 {
		return nil, newConfigError(fmt.Sprintf("onCoreLatency must be >= 0, got %v", onCoreLatency), nil)
	}
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		return nil, newConfigError(fmt.Sprintf("curve directory %q does not exist", path), err)
	}

	store := &CurveStore{leadOffLatency: -1}
	loadedAny := false

	for percent := 0; percent <= 100; percent += bucketStep {
		idx := bucketFromPercent(percent)
		file := filepath.Join(path, fmt.Sprintf("bwlat_%d.txt", percent))

		points, err := loadCurveFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				logrus.Warnf("memctrl: curve file missing, bucket %d%% will have no points: %s", percent, file)
				store.diagnostics[idx] = BucketDiagnostics{Percent: percent, Missing: true}
				continue
			}
			return nil, newConfigError(fmt.Sprintf("parse curve file %s", file), err)
		}
		if len(points) == 0 {
			logrus.Warnf("memctrl: curve file empty, bucket %d%% will have no points: %s", percent, file)
			store.diagnostics[idx] = BucketDiagnostics{Percent: percent, Missing: true}
			continue
		}

		store.diagnostics[idx] = BucketDiagnostics{Percent: percent, PointCount: len(points)}

		curve := Curve{Points: make([]CurvePoint, 0, len(points))}
		for _, raw := range points {
			bw := (raw.rawBandwidth / accessGranularityBytes) / (cpuFrequencyGHz * 1000)
			lat := raw.rawLatency*(cpuFrequencyGHz/curveFrequencyGHz) - onCoreLatency

			curve.Points = append(curve.Points, CurvePoint{Bandwidth: bw, Latency: lat})

			if bw > curve.MaxBandwidth {
				curve.MaxBandwidth = bw
			}
			if lat > curve.MaxLatency {
				curve.MaxLatency = lat
			}
			if store.leadOffLatency < 0 || lat < store.leadOffLatency {
				store.leadOffLatency = lat
			}
			if bw > store.maxBandwidth {
				store.maxBandwidth = bw
			}
			if lat > store.maxLatency {
				store.maxLatency = lat
			}
		}

		store.curves[idx] = curve
		loadedAny = true
	}

	if !loadedAny {
		return nil, newConfigError(fmt.Sprintf("no usable curve files found under %q", path), nil)
	}
	if store.leadOffLatency < 0 {
		store.leadOffLatency = 0
	}

	return store, nil
}

// rawCurvePair is a curve file row before unit normalization.
type rawCurvePair struct {
	rawBandwidth float64 // MB/s
	rawLatency   float64 // cycles at curveFrequency
}

// loadCurveFile reads whitespace-separated "<bandwidth_MBps> <latency_cycles>"
// pairs, one per line, tolerating blank lines and a missing trailing newline.
func loadCurveFile(path string) ([]rawCurvePair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var pairs []rawCurvePair
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%s:%d: expected 2 fields, got %d", path, lineNo, len(fields))
		}
		bw, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid bandwidth %q: %w", path, lineNo, fields[0], err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: invalid latency %q: %w", path, lineNo, fields[1], err)
		}
		pairs = append(pairs, rawCurvePair{rawBandwidth: bw, rawLatency: lat})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return pairs, nil
}

// LeadOffLatency returns the idle-load latency floor: the minimum latency
// across every point in every loaded curve.
func (s *CurveStore) LeadOffLatency() float64 { return s.leadOffLatency }

// MaxBandwidth returns the global maximum bandwidth across all curves.
func (s *CurveStore) MaxBandwidth() float64 { return s.maxBandwidth }

// MaxLatency returns the global maximum latency across all curves.
func (s *CurveStore) MaxLatency() float64 { return s.maxLatency }

// BucketDiagnostics returns one entry per read-ratio bucket (0%, 2%, ...,
// 100%, in that order) describing what was loaded for it: its point count,
// and whether the bucket's curve file was missing or empty. Used by the
// validate-curves CLI subcommand to report curve-directory health.
func (s *CurveStore) BucketDiagnostics() []BucketDiagnostics {
	out := make([]BucketDiagnostics, numBuckets)
	copy(out, s.diagnostics[:])
	return out
}

// bucket returns the Curve for bucket index idx (0..50) and whether it has
// any points loaded.
func (s *CurveStore) bucket(idx int) (*Curve, bool) {
	if idx < 0 || idx >= numBuckets {
		return nil, false
	}
	c := &s.curves[idx]
	return c, len(c.Points) > 0
}
