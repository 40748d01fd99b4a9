package adapter

import (
	"math/rand/v2"

	log "github.com/sirupsen/logrus"
)

// Drop reasons passed to Recorder.ObserveDrop.
const (
	DropBBox      = "bbox"
	DropKeypoints = "keypoints"
	DropMask      = "mask"
)

// Recorder receives per-call statistics. internal/metrics provides a
// Prometheus implementation.
type Recorder interface {
	ObserveApply(instancesIn, instancesOut int)
	ObserveDrop(reason string, n int)
	ObserveError(err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveApply(int, int) {}
func (nopRecorder) ObserveDrop(string, int) {}
func (nopRecorder) ObserveError(error) {}

// Option configures an Adapter.
type Option func(*Adapter)

// WithSeed seeds the adapter's private random source.
func WithSeed(seed uint64) Option {
	return func(a *Adapter) {
		a.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand hands the adapter an existing random source. The adapter becomes
// its only user.
func WithRand(rng *rand.Rand) Option {
	return func(a *Adapter) {
		a.rng = rng
	}
}

// WithLogger sets the logger used for debug output about dropped instances.
func WithLogger(l log.FieldLogger) Option {
	return func(a *Adapter) {
		a.log = l
	}
}

// WithRecorder sets the statistics sink.
func WithRecorder(r Recorder) Option {
	return func(a *Adapter) {
		a.rec = r
	}
}
