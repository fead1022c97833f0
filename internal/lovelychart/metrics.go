package lovelychart

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Zoom outcomes.
const (
	zoomDone     = "done"
	zoomAborted  = "aborted"
	zoomRejected = "rejected"
)

type metrics struct {
	frames *prometheus.CounterVec
	zooms  *prometheus.CounterVec
	fast   prometheus.Gauge
}

func newMetrics(registerer prometheus.Registerer) *metrics {
	frames := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lovely_chart_frames_drawn_total",
		Help: "Frames drawn, partitioned by surface.",
	}, []string{"surface"})
	zooms := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lovely_chart_zooms_total",
		Help: "Zoom attempts partitioned by direction and outcome.",
	}, []string{"direction", "outcome"})
	fast := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "lovely_chart_animations_fast",
		Help: "Whether transitions are currently animated (1) or skipped (0).",
	})

	return &metrics{
		frames: register(registerer, frames),
		zooms:  register(registerer, zooms),
		fast:   register(registerer, fast),
	}
}

// register registers c, or returns the collector already registered in
// its place.
func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	err := registerer.Register(c)
	if err == nil {
		return c
	}

	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(T); ok {
			return existing
		}
	}
	panic(err)
}

func (m *metrics) setFast(fast bool) {
	if fast {
		m.fast.Set(1)
	} else {
		m.fast.Set(0)
	}
}
