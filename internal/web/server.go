// Package web serves the live dashboard: the current score, the latest
// annotated frame, and websocket feeds of both.
//
// The Server is a sink.Sink, so the tick loop publishes to it like any other
// consumer. Publish never blocks on HTTP clients.
package web

import (
	"fmt"
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/ironsheep/marker-score/internal/config"
	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/hub"
	"github.com/ironsheep/marker-score/internal/imaging"
)

// jpegQuality is used for dashboard frames.
const jpegQuality = 75

// TickState is the dashboard's view of the most recent tick.
type TickState struct {
	Tick          int                `json:"tick"`
	Score         int                `json:"score"`
	Samples       int                `json:"samples"`
	PixelEstimate int                `json:"pixel_estimate"`
	Results       []detection.Result `json:"results"`
	Time          time.Time          `json:"time"`
}

// ConfigView is the read-only session configuration served at /api/config.
type ConfigView struct {
	Width     int              `json:"width"`
	Height    int              `json:"height"`
	BlurSigma float64          `json:"blur_sigma"`
	Detection detection.Params `json:"detection"`
	Session   string           `json:"session,omitempty"`
}

// Server is the dashboard HTTP server.
type Server struct {
	app     *fiber.App
	addr    string
	config  ConfigView
	started atomic.Bool

	mu        sync.RWMutex
	state     TickState
	annotated *image.RGBA

	scoreHub *hub.Hub
	frameHub *hub.Hub
}

// New creates a dashboard for cfg that will listen on addr.
func New(addr string, cfg *config.Config) *Server {
	s := &Server{
		addr: addr,
		config: ConfigView{
			Width:     cfg.Width,
			Height:    cfg.Height,
			BlurSigma: cfg.BlurSigma,
			Detection: cfg.Detection,
		},
		state:    TickState{Tick: -1, Results: []detection.Result{}},
		scoreHub: hub.New("score"),
		frameHub: hub.New("frames"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "marker-score",
		DisableStartupMessage: true,
	})
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/score", s.handleScore)
	api.Get("/config", s.handleConfig)

	app.Get("/frame.jpg", s.handleFrame)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/score", websocket.New(s.handleScoreWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app

	go s.scoreHub.Run()
	go s.frameHub.Run()

	return s
}

// SetSession records the tick-log session id shown on the dashboard.
func (s *Server) SetSession(id string) {
	s.mu.Lock()
	s.config.Session = id
	s.mu.Unlock()
}

// App exposes the fiber app, mainly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address. It blocks until Close.
func (s *Server) Start() error {
	log.Printf("Dashboard listening on %s", s.addr)
	s.started.Store(true)
	if err := s.app.Listen(s.addr); err != nil {
		return fmt.Errorf("failed to start dashboard: %w", err)
	}
	return nil
}

// StartAsync runs Start in a goroutine, logging any failure.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Printf("Dashboard error: %v", err)
		}
	}()
}

// Publish implements sink.Sink.
func (s *Server) Publish(frame *image.RGBA, tick detection.Tick) error {
	annotated := imaging.Annotate(frame, tick.Results, tick.Score)

	s.mu.Lock()
	s.state = TickState{
		Tick:          s.state.Tick + 1,
		Score:         tick.Score,
		Samples:       tick.Samples,
		PixelEstimate: tick.PixelEstimate,
		Results:       tick.Results,
		Time:          time.Now(),
	}
	state := s.state
	s.annotated = annotated
	s.mu.Unlock()

	if err := s.scoreHub.BroadcastJSON(state); err != nil {
		return err
	}

	if s.frameHub.ClientCount() > 0 {
		data, err := imaging.EncodeJPEG(annotated, jpegQuality)
		if err != nil {
			return fmt.Errorf("failed to encode dashboard frame: %w", err)
		}
		s.frameHub.BroadcastBinary(data)
	}
	return nil
}

// Close stops the hubs and, if it was started, the HTTP server.
func (s *Server) Close() error {
	s.scoreHub.Stop()
	s.frameHub.Stop()
	if !s.started.Load() {
		return nil
	}
	if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("failed to stop dashboard: %w", err)
	}
	return nil
}
