// Package metrics keeps per-run counters for the frame loop on a private
// Prometheus registry. Nothing is exported over the network; the values are
// read back for the end-of-run log line.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const namespace = "mudra"

// Metrics groups the frame loop collectors.
type Metrics struct {
	registry *prometheus.Registry

	Frames        prometheus.Counter
	FrameErrors   prometheus.Counter
	DetectErrors  prometheus.Counter
	HandsDetected prometheus.Counter
	FingerCounts  *prometheus.CounterVec
	FPS           prometheus.Gauge
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames read from the camera and processed.",
		}),
		FrameErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frame_errors_total",
			Help:      "Camera reads that returned no frame.",
		}),
		DetectErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "detect_errors_total",
			Help:      "Landmark detection calls that failed.",
		}),
		HandsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hands_detected_total",
			Help:      "Hands returned by the landmark provider, summed over frames.",
		}),
		FingerCounts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finger_count_total",
			Help:      "Frames classified, by number of extended fingers.",
		}, []string{"count"}),
		FPS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fps",
			Help:      "Most recent instantaneous frame rate.",
		}),
	}

	m.registry.MustRegister(m.Frames, m.FrameErrors, m.DetectErrors, m.HandsDetected, m.FingerCounts, m.FPS)
	return m
}

// ObserveCount records one classified frame.
func (m *Metrics) ObserveCount(n int) {
	m.FingerCounts.WithLabelValues(strconv.Itoa(n)).Inc()
}

// Summary is a snapshot of the counters.
type Summary struct {
	Frames        int
	FrameErrors   int
	DetectErrors  int
	HandsDetected int
	FingerCounts  map[int]int
	FPS           float64
}

// Summary reads the current values.
func (m *Metrics) Summary() Summary {
	s := Summary{
		Frames:        int(counterValue(m.Frames)),
		FrameErrors:   int(counterValue(m.FrameErrors)),
		DetectErrors:  int(counterValue(m.DetectErrors)),
		HandsDetected: int(counterValue(m.HandsDetected)),
		FingerCounts:  make(map[int]int),
		FPS:           gaugeValue(m.FPS),
	}

	families, err := m.registry.Gather()
	if err != nil {
		return s
	}
	for _, mf := range families {
		if mf.GetName() != namespace+"_finger_count_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetName() != "count" {
					continue
				}
				if n, err := strconv.Atoi(lp.GetValue()); err == nil {
					s.FingerCounts[n] = int(metric.GetCounter().GetValue())
				}
			}
		}
	}

	return s
}

// LogArgs flattens the summary into slog key/value pairs.
func (s Summary) LogArgs() []any {
	args := []any{
		"frames", s.Frames,
		"frame_errors", s.FrameErrors,
		"detect_errors", s.DetectErrors,
		"hands", s.HandsDetected,
		"last_fps", int(s.FPS),
	}
	for n := 0; n <= 5; n++ {
		if c, ok := s.FingerCounts[n]; ok {
			args = append(args, "count_"+strconv.Itoa(n), c)
		}
	}
	return args
}

func counterValue(c prometheus.Counter) float64 {
	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		return 0
	}
	return pb.GetCounter().GetValue()
}

func gaugeValue(g prometheus.Gauge) float64 {
	var pb dto.Metric
	if err := g.Write(&pb); err != nil {
		return 0
	}
	return pb.GetGauge().GetValue()
}
