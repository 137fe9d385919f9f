package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/san-kum/solsim/internal/sim"
	"golang.org/x/time/rate"
)

const (
	writeWait  = 5 * time.Second
	clientSend = 16
)

// reply answers one control message on the websocket.
type reply struct {
	Op    string `json:"op"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type client struct {
	conn    *websocket.Conn
	limiter *rate.Limiter
	send    chan any
	once    sync.Once
	closed  chan struct{}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.closed)
		c.conn.Close()
	})
}

// offer queues v unless the client is closed or its queue is full.
func (c *client) offer(v any) bool {
	select {
	case <-c.closed:
		return false
	case c.send <- v:
		return true
	default:
		return false
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}
	c := &client{
		conn:    conn,
		limiter: rate.NewLimiter(s.opts.FrameRate, s.opts.Burst),
		send:    make(chan any, clientSend),
		closed:  make(chan struct{}),
	}

	s.mu.Lock()
	select {
	case <-s.done:
		s.mu.Unlock()
		c.close()
		return
	default:
	}
	s.clients[c] = struct{}{}
	n := len(s.clients)
	first := s.frame
	s.mu.Unlock()

	s.stats.clients.Set(float64(n))
	log.Info("websocket client connected", "remote", r.RemoteAddr, "clients", n)

	c.offer(first)
	go s.writeLoop(c)
	s.readLoop(c)

	s.mu.Lock()
	delete(s.clients, c)
	n = len(s.clients)
	s.mu.Unlock()
	s.stats.clients.Set(float64(n))
	c.close()
	log.Info("websocket client disconnected", "remote", r.RemoteAddr, "clients", n)
}

func (s *Server) readLoop(c *client) {
	for {
		var ctl Control
		if err := c.conn.ReadJSON(&ctl); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("websocket read", "err", err)
			}
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		err := s.Submit(ctx, ctl)
		cancel()
		rep := reply{Op: ctl.Op, OK: err == nil}
		if err != nil {
			rep.Error = err.Error()
		}
		c.offer(rep)
	}
}

func (s *Server) writeLoop(c *client) {
	for {
		select {
		case <-c.closed:
			return
		case v := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(v); err != nil {
				log.Debug("websocket write", "err", err)
				c.close()
				return
			}
		}
	}
}

// broadcast hands f to every client whose limiter has a token.
func (s *Server) broadcast(f *sim.Frame) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c := range s.clients {
		if !c.limiter.Allow() || !c.offer(*f) {
			s.stats.framesDrop.Inc()
			continue
		}
		s.stats.framesSent.Inc()
	}
}
