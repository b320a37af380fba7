package web

import (
	_ "embed"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/ironsheep/marker-score/internal/hub"
	"github.com/ironsheep/marker-score/internal/imaging"
)

//go:embed index.html
var indexHTML []byte

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(indexHTML)
}

// handleScore returns the latest tick. Before the first tick, tick is -1.
func (s *Server) handleScore(c *fiber.Ctx) error {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	return c.JSON(state)
}

func (s *Server) handleConfig(c *fiber.Ctx) error {
	s.mu.RLock()
	view := s.config
	s.mu.RUnlock()
	return c.JSON(view)
}

// handleFrame serves the latest annotated frame as JPEG.
func (s *Server) handleFrame(c *fiber.Ctx) error {
	s.mu.RLock()
	annotated := s.annotated
	s.mu.RUnlock()

	if annotated == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no frame processed yet",
		})
	}

	data, err := imaging.EncodeJPEG(annotated, jpegQuality)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	c.Set(fiber.HeaderContentType, "image/jpeg")
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(data)
}

func (s *Server) handleScoreWS(conn *websocket.Conn) {
	hub.NewClient(s.scoreHub, conn).Run()
}

func (s *Server) handleFramesWS(conn *websocket.Conn) {
	hub.NewClient(s.frameHub, conn).Run()
}
