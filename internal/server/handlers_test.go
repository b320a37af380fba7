package server

import (
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ironsheep/marker-score/internal/imaging"
)

var (
	background = color.RGBA{30, 120, 200, 255}
	red        = color.RGBA{220, 30, 40, 255}
	pink       = color.RGBA{255, 20, 200, 255}
)

// writeImage saves img as PNG in a temp directory and returns its path.
func writeImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "markers.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode image: %v", err)
	}
	return path
}

// markerImage draws n 10x10 squares of c on a 100x100 background, 30px
// apart starting at (5,40).
func markerImage(n int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			img.SetRGBA(x, y, background)
		}
	}
	for i := 0; i < n; i++ {
		x0 := 5 + i*30
		for y := 40; y < 50; y++ {
			for x := x0; x < x0+10; x++ {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return img
}

func createMarkerImage(t *testing.T, n int) string {
	t.Helper()
	return writeImage(t, markerImage(n, red))
}

// callTool runs tools/call and returns the response.
func callTool(t *testing.T, s *Server, name string, args map[string]interface{}) *MCPResponse {
	t.Helper()
	params, _ := json.Marshal(map[string]interface{}{
		"name":      name,
		"arguments": args,
	})
	resp := s.handleRequest(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  params,
	})
	if resp == nil {
		t.Fatal("handleRequest returned nil")
	}
	return resp
}

// decodeToolText unmarshals the JSON text of a tools/call result into v.
func decodeToolText(t *testing.T, result interface{}, v interface{}) {
	t.Helper()
	raw, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("failed to re-encode result: %v", err)
	}
	var wrapped struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		t.Fatalf("result is not MCP content: %v", err)
	}
	if len(wrapped.Content) != 1 || wrapped.Content[0].Type != "text" {
		t.Fatalf("unexpected content: %s", raw)
	}
	if err := json.Unmarshal([]byte(wrapped.Content[0].Text), v); err != nil {
		t.Fatalf("failed to decode tool text: %v", err)
	}
}

// mustSucceed fails the test on a JSON-RPC error and decodes the result.
func mustSucceed(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %+v", resp.Error)
	}
	decodeToolText(t, resp.Result, v)
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := newTestServer(t)
	big := image.NewRGBA(image.Rect(0, 0, 200, 150))
	path := writeImage(t, big)

	var info imaging.ImageInfo
	mustSucceed(t, callTool(t, s, "image_load", map[string]interface{}{"path": path}), &info)

	if info.Width != 200 || info.Height != 150 {
		t.Errorf("original size = %dx%d, want 200x150", info.Width, info.Height)
	}
	if info.FrameWidth != 100 || info.FrameHeight != 100 {
		t.Errorf("frame size = %dx%d, want 100x100", info.FrameWidth, info.FrameHeight)
	}
	if info.Format != "png" {
		t.Errorf("format = %q, want png", info.Format)
	}
}

func TestHandleToolsCall_Errors(t *testing.T) {
	s := newTestServer(t)
	path := createMarkerImage(t, 1)

	tests := []struct {
		name     string
		tool     string
		args     map[string]interface{}
		wantCode int
	}{
		{"nonexistent file", "marker_detect", map[string]interface{}{"path": "/nonexistent/image.png"}, -32000},
		{"missing path", "image_load", map[string]interface{}{}, -32000},
		{"unknown tool", "image_ocr_full", map[string]interface{}{"path": path}, -32000},
		{"unknown model", "marker_detect", map[string]interface{}{"path": path, "model": "lab"}, -32000},
		{"pixel out of bounds", "marker_classify_pixel", map[string]interface{}{"path": path, "x": 100, "y": 0}, -32000},
		{"marker out of range", "marker_crop", map[string]interface{}{"path": path, "marker": 1}, -32000},
		{"negative padding", "marker_crop", map[string]interface{}{"path": path, "marker": 0, "padding": -1}, -32000},
		{"wrong argument type", "marker_classify_pixel", map[string]interface{}{"path": path, "x": "ten", "y": 0}, -32000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := callTool(t, s, tt.tool, tt.args)
			if resp.Error == nil {
				t.Fatal("Expected error response")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("Error code: got %d, want %d", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleToolsCall(&MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`{"name": 5}`),
	})
	if resp.Error == nil || resp.Error.Code != -32602 {
		t.Errorf("Error = %+v, want code -32602", resp.Error)
	}
}

func TestHandleToolsCall_MarkerDetect(t *testing.T) {
	s := newTestServer(t)

	for _, n := range []int{0, 1, 3} {
		path := createMarkerImage(t, n)
		var result DetectResult
		mustSucceed(t, callTool(t, s, "marker_detect", map[string]interface{}{"path": path}), &result)

		if result.Score != n || len(result.Results) != n {
			t.Errorf("%d markers: score %d with %d results", n, result.Score, len(result.Results))
		}
		if result.ImageBase64 != "" {
			t.Error("image should be omitted unless annotate is set")
		}
		if result.Results == nil {
			t.Error("results should be an empty list, not null")
		}
	}
}

func TestHandleToolsCall_MarkerDetect_Bounds(t *testing.T) {
	s := newTestServer(t)
	path := createMarkerImage(t, 2)

	var result DetectResult
	mustSucceed(t, callTool(t, s, "marker_detect", map[string]interface{}{"path": path}), &result)

	// Stride 5 hits x = 5, 10 and y = 40, 45 inside the first square.
	first := result.Results[0]
	if first.X != 5 || first.Y != 40 || first.Width != 5 || first.Height != 5 || first.Count != 4 {
		t.Errorf("first marker = %+v, want {5 40 5 5 4}", first)
	}
	if result.Samples != 8 {
		t.Errorf("samples = %d, want 8", result.Samples)
	}
	// 8 samples * 25 px / 500 px per marker
	if result.PixelEstimate != 0 {
		t.Errorf("pixel estimate = %d, want 0", result.PixelEstimate)
	}
}

func TestHandleToolsCall_MarkerDetect_Annotate(t *testing.T) {
	s := newTestServer(t)
	path := createMarkerImage(t, 1)

	var result DetectResult
	mustSucceed(t, callTool(t, s, "marker_detect", map[string]interface{}{"path": path, "annotate": true}), &result)

	if result.ImageBase64 == "" {
		t.Fatal("annotated image missing")
	}
	if result.MimeType != "image/png" {
		t.Errorf("mime type = %q, want image/png", result.MimeType)
	}
}

func TestHandleToolsCall_MarkerDetect_ModelOverride(t *testing.T) {
	s := newTestServer(t)
	path := writeImage(t, markerImage(2, pink))

	var rgb, hsv DetectResult
	mustSucceed(t, callTool(t, s, "marker_detect", map[string]interface{}{"path": path}), &rgb)
	mustSucceed(t, callTool(t, s, "marker_detect", map[string]interface{}{"path": path, "model": "hsv"}), &hsv)

	if rgb.Score != 0 {
		t.Errorf("rgb score on pink markers = %d, want 0", rgb.Score)
	}
	if hsv.Score != 2 || hsv.Model != "hsv" {
		t.Errorf("hsv result = score %d model %q, want 2 and hsv", hsv.Score, hsv.Model)
	}
}

func TestHandleToolsCall_ClassifyPixel(t *testing.T) {
	s := newTestServer(t)
	path := createMarkerImage(t, 1)

	tests := []struct {
		name      string
		x, y      int
		wantHex   string
		wantMatch bool
	}{
		{"marker", 8, 44, "#DC1E28", true},
		{"background", 50, 10, "#1E78C8", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result imaging.ColorResult
			resp := callTool(t, s, "marker_classify_pixel", map[string]interface{}{"path": path, "x": tt.x, "y": tt.y})
			mustSucceed(t, resp, &result)
			if result.Hex != tt.wantHex {
				t.Errorf("hex = %s, want %s", result.Hex, tt.wantHex)
			}
			if result.Match != tt.wantMatch {
				t.Errorf("match = %v, want %v", result.Match, tt.wantMatch)
			}
		})
	}
}

func TestHandleToolsCall_ClassifyPixels(t *testing.T) {
	s := newTestServer(t)
	path := createMarkerImage(t, 2)

	points := []map[string]interface{}{
		{"x": 8, "y": 44, "label": "first"},
		{"x": 38, "y": 44, "label": "second"},
		{"x": 90, "y": 90, "label": "corner"},
	}

	var result imaging.MultiColorResult
	mustSucceed(t, callTool(t, s, "marker_classify_pixels", map[string]interface{}{"path": path, "points": points}), &result)

	if len(result.Samples) != 3 {
		t.Fatalf("got %d samples, want 3", len(result.Samples))
	}
	if result.Matches != 2 {
		t.Errorf("matches = %d, want 2", result.Matches)
	}
	if result.Samples[2].Label != "corner" || result.Samples[2].Color.Match {
		t.Errorf("corner sample = %+v", result.Samples[2])
	}
}

func TestHandleToolsCall_MarkerCrop(t *testing.T) {
	s := newTestServer(t)
	path := createMarkerImage(t, 2)

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantRegion [4]int
		wantSize   int
	}{
		{
			name:       "default padding",
			args:       map[string]interface{}{"path": path, "marker": 0},
			wantRegion: [4]int{1, 36, 15, 50},
			wantSize:   14,
		},
		{
			name:       "no padding, scaled",
			args:       map[string]interface{}{"path": path, "marker": 1, "padding": 0, "scale": 2.0},
			wantRegion: [4]int{35, 40, 41, 46},
			wantSize:   12,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var result imaging.CropResult
			mustSucceed(t, callTool(t, s, "marker_crop", tt.args), &result)

			got := [4]int{result.X1, result.Y1, result.X2, result.Y2}
			if got != tt.wantRegion {
				t.Errorf("region = %v, want %v", got, tt.wantRegion)
			}
			if result.Width != tt.wantSize || result.Height != tt.wantSize {
				t.Errorf("size = %dx%d, want %dx%d", result.Width, result.Height, tt.wantSize, tt.wantSize)
			}
			if result.ImageBase64 == "" {
				t.Error("crop image missing")
			}
		})
	}
}

func TestHandleToolsCall_MarkerConfig(t *testing.T) {
	s := newTestServer(t)

	var result ConfigResult
	mustSucceed(t, callTool(t, s, "marker_config", nil), &result)

	if result.FrameWidth != 100 || result.FrameHeight != 100 {
		t.Errorf("frame = %dx%d, want 100x100", result.FrameWidth, result.FrameHeight)
	}
	if result.Detection.Stride != 5 || result.Detection.Threshold != 15 {
		t.Errorf("detection = %+v, want stride 5 threshold 15", result.Detection)
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := newTestServer(t)
	if _, err := s.executeTool("marker_detect", json.RawMessage(`{invalid`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}
