package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/san-kum/solsim/internal/body"
	"github.com/san-kum/solsim/internal/sim"
)

func newSim() *sim.Simulation {
	s, err := sim.New([]body.Spec{
		{Name: "Sun", Mass: 1988500},
		{Name: "Earth", Mass: 5.97, Position: mgl64.Vec3{10, 0, 0}, Velocity: mgl64.Vec3{0, 0.172, 0}},
	}, sim.DefaultConfig())
	Expect(err).NotTo(HaveOccurred())
	return s
}

func postControl(url string, c Control) (int, map[string]string) {
	body, _ := json.Marshal(c)
	resp, err := http.Post(url+"/control", "application/json", bytes.NewReader(body))
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	var out map[string]string
	Expect(json.NewDecoder(resp.Body).Decode(&out)).To(Succeed())
	return resp.StatusCode, out
}

func wsURL(ts *httptest.Server) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

var _ = Describe("Server", func() {
	var (
		srv *Server
		ts  *httptest.Server
	)

	BeforeEach(func() {
		srv = New(newSim(), Options{FrameRate: 1000, Burst: 10})
		ts = httptest.NewServer(srv.Handler())
	})

	AfterEach(func() {
		ts.Close()
	})

	Describe("GET /state", func() {
		It("returns the latest frame as JSON", func() {
			for i := 0; i < 3; i++ {
				srv.Step(1.0 / 60)
			}
			resp, err := http.Get(ts.URL + "/state")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var f sim.Frame
			Expect(json.NewDecoder(resp.Body).Decode(&f)).To(Succeed())
			Expect(f.Tick).To(Equal(3))
			Expect(f.Bodies).To(HaveLen(2))
			Expect(f.SimTime).To(BeNumerically("~", 3.0/60, 1e-12))
		})

		It("rejects other methods", func() {
			resp, err := http.Post(ts.URL+"/state", "application/json", nil)
			Expect(err).NotTo(HaveOccurred())
			resp.Body.Close()
			Expect(resp.StatusCode).To(Equal(http.StatusMethodNotAllowed))
		})
	})

	Describe("GET /metrics", func() {
		It("exports tick and clock gauges", func() {
			srv.Step(1.0 / 60)
			srv.Step(1.0 / 60)
			resp, err := http.Get(ts.URL + "/metrics")
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()
			text, _ := io.ReadAll(resp.Body)
			Expect(string(text)).To(ContainSubstring("solsim_ticks_total 2"))
			Expect(string(text)).To(ContainSubstring("solsim_bodies 2"))
			Expect(string(text)).To(ContainSubstring("solsim_speed 1"))
		})
	})

	Describe("POST /control", func() {
		It("rejects unknown operations without queueing them", func() {
			status, out := postControl(ts.URL, Control{Op: "warp"})
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(out["error"]).To(ContainSubstring("warp"))
		})

		Context("with the loop running", func() {
			var cancel context.CancelFunc

			BeforeEach(func() {
				var ctx context.Context
				ctx, cancel = context.WithCancel(context.Background())
				go srv.Run(ctx)
			})

			AfterEach(func() {
				cancel()
			})

			It("applies controls between ticks", func() {
				status, _ := postControl(ts.URL, Control{Op: "pause"})
				Expect(status).To(Equal(http.StatusOK))
				Eventually(func() bool { return srv.Frame().Paused }).Should(BeTrue())

				status, _ = postControl(ts.URL, Control{Op: "speed", Value: 8})
				Expect(status).To(Equal(http.StatusOK))
				Eventually(func() float64 { return srv.Frame().Speed }).Should(Equal(8.0))
				Expect(testutil.ToFloat64(srv.stats.controls.WithLabelValues("speed", "ok"))).To(Equal(1.0))
			})

			It("reports failures from the registry", func() {
				status, out := postControl(ts.URL, Control{Op: "remove", Body: "Vulcan"})
				Expect(status).To(Equal(http.StatusBadRequest))
				Expect(out["error"]).To(ContainSubstring("Vulcan"))
			})

			It("refuses controls once stopped", func() {
				cancel()
				Eventually(func() int {
					status, _ := postControl(ts.URL, Control{Op: "pause"})
					return status
				}).Should(Equal(http.StatusServiceUnavailable))
			})
		})
	})

	Describe("GET /ws", func() {
		It("sends the current frame on connect", func() {
			conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()

			var f sim.Frame
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			Expect(conn.ReadJSON(&f)).To(Succeed())
			Expect(f.Bodies).To(HaveLen(2))
		})

		It("drops frames beyond the client's rate", func() {
			srv.opts.FrameRate, srv.opts.Burst = 0.001, 1
			conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Eventually(func() float64 { return testutil.ToFloat64(srv.stats.clients) }).Should(Equal(1.0))

			for i := 0; i < 10; i++ {
				srv.Step(1.0 / 60)
			}
			Expect(testutil.ToFloat64(srv.stats.framesSent)).To(Equal(1.0))
			Expect(testutil.ToFloat64(srv.stats.framesDrop)).To(Equal(9.0))
		})

		It("accepts control messages and replies", func() {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go srv.Run(ctx)

			conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts), nil)
			Expect(err).NotTo(HaveOccurred())
			defer conn.Close()
			Expect(conn.WriteJSON(Control{Op: "faster"})).To(Succeed())

			conn.SetReadDeadline(time.Now().Add(5 * time.Second))
			for {
				var msg map[string]any
				Expect(conn.ReadJSON(&msg)).To(Succeed())
				if msg["op"] == "faster" {
					Expect(msg["ok"]).To(BeTrue())
					break
				}
			}
			Eventually(func() float64 { return srv.Frame().Speed }).Should(Equal(2.0))
		})
	})
})
