package server

import (
	"encoding/json"
	"fmt"
	"image"

	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "marker_detect").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// toolContent is one entry of an MCP tool result.
type toolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type toolResult struct {
	Content []toolContent `json:"content"`
}

type toolFunc func(s *Server, args json.RawMessage) (interface{}, error)

var toolHandlers = map[string]toolFunc{
	"image_load":             (*Server).handleImageLoad,
	"marker_detect":          (*Server).handleMarkerDetect,
	"marker_classify_pixel":  (*Server).handleClassifyPixel,
	"marker_classify_pixels": (*Server).handleClassifyPixels,
	"marker_crop":            (*Server).handleMarkerCrop,
	"marker_config": func(s *Server, _ json.RawMessage) (interface{}, error) {
		return s.handleMarkerConfig()
	},
}

// handleToolsCall runs one tool and wraps its result as a single text item
// holding indented JSON:
//
//	{"content": [{"type": "text", "text": "<JSON result>"}]}
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return failure(req.ID, codeInvalidParams, "Invalid params", err.Error())
	}

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		return failure(req.ID, codeToolFailed, "Tool execution failed", err.Error())
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return failure(req.ID, codeToolFailed, "Tool execution failed", fmt.Sprintf("failed to encode result: %v", err))
	}
	return reply(req.ID, toolResult{
		Content: []toolContent{{Type: "text", Text: string(text)}},
	})
}

// executeTool looks up and runs the named tool. Missing arguments are
// treated as an empty object.
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	handler, ok := toolHandlers[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}
	return handler(s, args)
}

// detectorFor returns the configured detector, or one using model instead
// when model is set.
func (s *Server) detectorFor(model string) (*detection.Detector, error) {
	if model == "" || detection.ColorModel(model) == s.cfg.Detection.Model {
		return s.detector, nil
	}
	p := s.cfg.Detection
	p.Model = detection.ColorModel(model)
	return detection.New(p)
}

// loadFrame fetches path from the frame cache.
func (s *Server) loadFrame(path string) (*image.RGBA, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return s.cache.Load(path)
}

// === Image ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

// === Detection ===

type markerDetectArgs struct {
	Path     string `json:"path"`
	Annotate bool   `json:"annotate"`
	Model    string `json:"model"`
}

// DetectResult is the marker_detect response.
type DetectResult struct {
	Path          string               `json:"path"`
	Model         detection.ColorModel `json:"model"`
	Score         int                  `json:"score"`
	Samples       int                  `json:"samples"`
	PixelEstimate int                  `json:"pixel_estimate"`
	Results       []detection.Result   `json:"results"`
	FrameWidth    int                  `json:"frame_width"`
	FrameHeight   int                  `json:"frame_height"`
	ImageBase64   string               `json:"image_base64,omitempty"`
	MimeType      string               `json:"mime_type,omitempty"`
}

func (s *Server) handleMarkerDetect(args json.RawMessage) (interface{}, error) {
	var a markerDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	det, err := s.detectorFor(a.Model)
	if err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	tick := det.Process(frame)
	result := &DetectResult{
		Path:          a.Path,
		Model:         det.Params().Model,
		Score:         tick.Score,
		Samples:       tick.Samples,
		PixelEstimate: tick.PixelEstimate,
		Results:       tick.Results,
		FrameWidth:    frame.Bounds().Dx(),
		FrameHeight:   frame.Bounds().Dy(),
	}

	if a.Annotate {
		encoded, err := imaging.EncodePNGBase64(imaging.Annotate(frame, tick.Results, tick.Score))
		if err != nil {
			return nil, fmt.Errorf("failed to encode annotated frame: %w", err)
		}
		result.ImageBase64 = encoded
		result.MimeType = "image/png"
	}
	return result, nil
}

type classifyPixelArgs struct {
	Path  string `json:"path"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Model string `json:"model"`
}

func (s *Server) handleClassifyPixel(args json.RawMessage) (interface{}, error) {
	var a classifyPixelArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	det, err := s.detectorFor(a.Model)
	if err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(frame, a.X, a.Y, det.Classifier(), det.Params().Model)
}

type classifyPixelsArgs struct {
	Path   string `json:"path"`
	Points []struct {
		X     int    `json:"x"`
		Y     int    `json:"y"`
		Label string `json:"label,omitempty"`
	} `json:"points"`
	Model string `json:"model"`
}

func (s *Server) handleClassifyPixels(args json.RawMessage) (interface{}, error) {
	var a classifyPixelsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	det, err := s.detectorFor(a.Model)
	if err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	points := make([]imaging.LabeledPoint, len(a.Points))
	for i, p := range a.Points {
		points[i] = imaging.LabeledPoint{X: p.X, Y: p.Y, Label: p.Label}
	}
	return imaging.SampleColorsMulti(frame, points, det.Classifier(), det.Params().Model)
}

type markerCropArgs struct {
	Path    string  `json:"path"`
	Marker  int     `json:"marker"`
	Padding *int    `json:"padding"`
	Scale   float64 `json:"scale"`
	Model   string  `json:"model"`
}

func (s *Server) handleMarkerCrop(args json.RawMessage) (interface{}, error) {
	var a markerCropArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	padding := 4
	if a.Padding != nil {
		padding = *a.Padding
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	det, err := s.detectorFor(a.Model)
	if err != nil {
		return nil, err
	}
	frame, err := s.loadFrame(a.Path)
	if err != nil {
		return nil, err
	}

	tick := det.Process(frame)
	if a.Marker < 0 || a.Marker >= len(tick.Results) {
		return nil, fmt.Errorf("marker %d out of range: image has %d markers", a.Marker, len(tick.Results))
	}
	return imaging.CropMarker(frame, tick.Results[a.Marker], padding, a.Scale)
}

// ConfigResult is the marker_config response.
type ConfigResult struct {
	FrameWidth  int              `json:"frame_width"`
	FrameHeight int              `json:"frame_height"`
	BlurSigma   float64          `json:"blur_sigma"`
	Detection   detection.Params `json:"detection"`
	CachedCount int              `json:"cached_images"`
}

func (s *Server) handleMarkerConfig() (interface{}, error) {
	return &ConfigResult{
		FrameWidth:  s.cfg.Width,
		FrameHeight: s.cfg.Height,
		BlurSigma:   s.cfg.BlurSigma,
		Detection:   s.cfg.Detection,
		CachedCount: s.cache.Len(),
	}, nil
}
