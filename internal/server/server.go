// Package server exposes a running simulation over HTTP: JSON snapshots,
// prometheus metrics and a websocket that streams frames and accepts
// control messages.
//
// Only the goroutine running [Server.Run] touches the simulation. Controls
// from HTTP and websocket clients are queued and applied between ticks.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/san-kum/solsim/internal/automation"
	"github.com/san-kum/solsim/internal/metrics"
	"github.com/san-kum/solsim/internal/sim"
	"golang.org/x/time/rate"
)

const (
	DefaultAddr      = ":8080"
	DefaultTickRate  = 60
	DefaultFrameRate = 10

	maxTickDt    = 0.25 // seconds; longer stalls are not replayed
	controlQueue = 64
)

var ErrStopped = errors.New("server stopped")

type Options struct {
	Addr      string
	TickRate  float64    // simulation ticks per real second
	FrameRate rate.Limit // websocket frames per second per client
	Burst     int
	Trails    bool // include trails in frames
}

func DefaultOptions() Options {
	return Options{
		Addr:      DefaultAddr,
		TickRate:  DefaultTickRate,
		FrameRate: DefaultFrameRate,
		Burst:     1,
	}
}

// Control is a request to change the simulation, using the same actions as
// automation scripts.
type Control struct {
	Op    string  `json:"op"`
	Body  string  `json:"body,omitempty"`
	Value float64 `json:"value,omitempty"`
}

func (c Control) event() automation.Event {
	return automation.Event{Action: c.Op, Body: c.Body, Value: c.Value}
}

type request struct {
	ctl   Control
	reply chan error
}

type Server struct {
	sim      *sim.Simulation
	opts     Options
	drift    *metrics.EnergyDrift
	stats    *collector
	upgrader websocket.Upgrader

	requests chan request
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	frame   sim.Frame
	lastErr error
	clients map[*client]struct{}
}

func New(s *sim.Simulation, opts Options) *Server {
	def := DefaultOptions()
	if opts.Addr == "" {
		opts.Addr = def.Addr
	}
	if opts.TickRate <= 0 {
		opts.TickRate = def.TickRate
	}
	if opts.FrameRate <= 0 {
		opts.FrameRate = def.FrameRate
	}
	if opts.Burst <= 0 {
		opts.Burst = def.Burst
	}

	drift := metrics.NewEnergyDrift(s.Gravity())
	s.AddMetric(drift)

	srv := &Server{
		sim:      s,
		opts:     opts,
		drift:    drift,
		stats:    newCollector(),
		requests: make(chan request, controlQueue),
		done:     make(chan struct{}),
		clients:  make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	srv.frame = s.Frame(opts.Trails)
	return srv
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/control", s.handleControl)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/metrics", promhttp.HandlerFor(s.stats.registry, promhttp.HandlerOpts{}))
	return mux
}

// Frame returns the latest published snapshot.
func (s *Server) Frame() sim.Frame {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frame
}

// Step applies queued controls, ticks once and publishes the new frame.
// It must only be called from one goroutine, normally Run's.
func (s *Server) Step(realDt float64) {
	s.drain()

	start := time.Now()
	err := s.sim.Tick(realDt)
	s.stats.tickDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		s.sim.Clock().Pause()
		log.Error("simulation paused", "err", err)
	}

	f := s.sim.Frame(s.opts.Trails)
	s.stats.observe(&f, s.drift.Current())

	s.mu.Lock()
	s.frame = f
	if err != nil {
		s.lastErr = err
	}
	s.mu.Unlock()

	s.broadcast(&f)
}

func (s *Server) drain() {
	for {
		select {
		case req := <-s.requests:
			err := automation.Apply(s.sim, req.ctl.event())
			if err == nil && req.ctl.Op == "reset" {
				s.mu.Lock()
				s.lastErr = nil
				s.mu.Unlock()
			}
			s.stats.control(req.ctl.Op, err)
			log.Debug("control", "op", req.ctl.Op, "body", req.ctl.Body, "value", req.ctl.Value, "err", err)
			req.reply <- err
		default:
			return
		}
	}
}

// Run ticks the simulation at the configured rate until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	defer s.stop()
	t := time.NewTicker(time.Duration(float64(time.Second) / s.opts.TickRate))
	defer t.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-t.C:
			dt := now.Sub(last).Seconds()
			if dt > maxTickDt {
				dt = maxTickDt
			}
			last = now
			s.Step(dt)
		}
	}
}

func (s *Server) stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		for c := range s.clients {
			c.close()
		}
		s.mu.Unlock()
	})
}

// Submit queues a control and waits for the simulation loop to apply it.
func (s *Server) Submit(ctx context.Context, c Control) error {
	if err := c.event().Validate(); err != nil {
		return err
	}
	req := request{ctl: c, reply: make(chan error, 1)}
	select {
	case s.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrStopped
	}
}

// ListenAndServe serves Handler on Addr and runs the simulation loop until
// ctx ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hs := &http.Server{Addr: s.opts.Addr, Handler: s.Handler()}
	errc := make(chan error, 2)
	go func() { errc <- s.Run(ctx) }()
	go func() { errc <- hs.ListenAndServe() }()
	log.Info("serving", "addr", s.opts.Addr, "tick_rate", s.opts.TickRate)

	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, context.Canceled) && !errors.Is(err, http.ErrServerClosed) {
			s.stop()
			return err
		}
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return hs.Shutdown(shutdown)
}

type stateResponse struct {
	sim.Frame
	Error string `json:"error,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.mu.RLock()
	resp := stateResponse{Frame: s.frame}
	if s.lastErr != nil {
		resp.Error = s.lastErr.Error()
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var c Control
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad control: %v", err)})
		return
	}
	if err := s.Submit(r.Context(), c); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, ErrStopped) {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Debug("write response", "err", err)
	}
}
