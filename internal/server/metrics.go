package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/san-kum/solsim/internal/sim"
)

// collector exports the simulation's vital signs on a private registry so
// that several servers can live in one process.
type collector struct {
	registry *prometheus.Registry

	simTime      prometheus.Gauge
	speed        prometheus.Gauge
	paused       prometheus.Gauge
	bodies       prometheus.Gauge
	energyDrift  prometheus.Gauge
	clients      prometheus.Gauge
	ticks        prometheus.Counter
	tickDuration prometheus.Histogram
	controls     *prometheus.CounterVec
	framesSent   prometheus.Counter
	framesDrop   prometheus.Counter
}

func newCollector() *collector {
	c := &collector{
		registry: prometheus.NewRegistry(),
		simTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solsim_sim_time_days",
			Help: "Simulated days since the epoch",
		}),
		speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solsim_speed",
			Help: "Simulated days per real second",
		}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solsim_paused",
			Help: "1 while the clock is paused",
		}),
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solsim_bodies",
			Help: "Bodies in the registry",
		}),
		energyDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solsim_energy_drift",
			Help: "Relative total energy change since the first tick",
		}),
		clients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solsim_ws_clients",
			Help: "Connected websocket clients",
		}),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solsim_ticks_total",
			Help: "Simulation ticks run",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "solsim_tick_duration_seconds",
			Help:    "Wall time spent in one tick",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
		controls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "solsim_controls_total",
			Help: "Control messages applied",
		}, []string{"op", "result"}),
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solsim_ws_frames_sent_total",
			Help: "Frames queued to websocket clients",
		}),
		framesDrop: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solsim_ws_frames_dropped_total",
			Help: "Frames skipped by rate limiting or a full client queue",
		}),
	}
	c.registry.MustRegister(
		c.simTime, c.speed, c.paused, c.bodies, c.energyDrift, c.clients,
		c.ticks, c.tickDuration, c.controls, c.framesSent, c.framesDrop,
	)
	return c
}

func (c *collector) observe(f *sim.Frame, drift float64) {
	c.simTime.Set(f.SimTime)
	c.speed.Set(f.Speed)
	if f.Paused {
		c.paused.Set(1)
	} else {
		c.paused.Set(0)
	}
	c.bodies.Set(float64(len(f.Bodies)))
	c.energyDrift.Set(drift)
	c.ticks.Inc()
}

func (c *collector) control(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.controls.WithLabelValues(op, result).Inc()
}
