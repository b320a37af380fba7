// Package server implements an MCP (Model Context Protocol) server that runs
// marker detection on image files.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0, one request per
// line. Supported methods are initialize, notifications/initialized,
// tools/list, tools/call and ping.
//
// # Tools
//
//   - image_load: load an image, report original and frame dimensions
//   - marker_detect: count markers, optionally returning an annotated PNG
//   - marker_classify_pixel: colour and classifier verdict at one point
//   - marker_classify_pixels: the same for several labelled points
//   - marker_crop: crop around one detected marker
//   - marker_config: the detection parameters in effect
//
// Every image is first normalised to the configured frame size, so all
// coordinates in requests and results are frame coordinates. Tools that
// accept a "model" argument evaluate with that colour model instead of the
// configured one for that call only.
//
// # Errors
//
// Tool failures are JSON-RPC errors with code -32000 and the Go error string
// as data. Malformed tools/call params give -32602; unknown methods -32601.
package server
