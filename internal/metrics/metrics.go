package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder counts scanned frames by outcome. Each Recorder owns its
// registry, so independent scans never share counters.
type Recorder struct {
	reg        *prometheus.Registry
	frames     *prometheus.CounterVec
	frameBytes prometheus.Histogram
}

func NewRecorder() *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mchandshake",
				Name:      "frames_total",
				Help:      "Scanned frames by decode outcome.",
			},
			[]string{"outcome"},
		),
		frameBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "mchandshake",
				Name:      "frame_bytes",
				Help:      "Size of scanned frames including the length prefix.",
				Buckets:   prometheus.ExponentialBuckets(8, 2, 13),
			},
		),
	}
	r.reg.MustRegister(r.frames, r.frameBytes)
	return r
}

// Observe records one frame of size bytes with the given outcome label.
func (r *Recorder) Observe(outcome string, size int) {
	r.frames.WithLabelValues(outcome).Inc()
	if size > 0 {
		r.frameBytes.Observe(float64(size))
	}
}

func (r *Recorder) Frames(outcome string) prometheus.Counter {
	return r.frames.WithLabelValues(outcome)
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}

// WriteTextfile writes the current metrics in the text exposition format,
// for collection by the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
