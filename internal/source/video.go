package source

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"
	"sync"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Video decodes a video file into frames by piping raw RGBA out of ffmpeg.
//
// ffmpeg scales every frame to exactly width x height, so each frame is a
// fixed-size read from the pipe.
type Video struct {
	path       string
	width      int
	height     int
	blurSigma  float64
	frameCount int

	reader    *bufio.Reader
	pipe      *io.PipeReader
	cancel    context.CancelFunc
	done      chan error
	closeOnce sync.Once
}

// stderrLimit bounds how much ffmpeg diagnostic output is kept for errors.
const stderrLimit = 4096

// stderrTail keeps the last limit bytes written to it.
type stderrTail struct {
	limit int
	buf   []byte
}

func (t *stderrTail) Write(p []byte) (int, error) {
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		t.buf = t.buf[over:]
	}
	return len(p), nil
}

func (t *stderrTail) String() string {
	return strings.TrimSpace(string(t.buf))
}

// videoProbe holds the ffprobe fields used to estimate the frame count.
type videoProbe struct {
	Streams []struct {
		CodecType    string `json:"codec_type"`
		NbFrames     string `json:"nb_frames"`
		AvgFrameRate string `json:"avg_frame_rate"`
		Duration     string `json:"duration"`
	} `json:"streams"`
}

// NewVideo starts decoding the video at path.
//
// The ffmpeg process runs until the stream ends or Close is called. Probe
// failures are not fatal; they only leave FrameCount at 0.
func NewVideo(path string, width, height int, blurSigma float64) (*Video, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}

	count, _ := probeFrameCount(path)

	ctx, cancel := context.WithCancel(context.Background())
	pr, pw := io.Pipe()
	stderr := &stderrTail{limit: stderrLimit}

	stream := ffmpeg.Input(path).
		Output("pipe:1", ffmpeg.KwArgs{
			"format":  "rawvideo",
			"pix_fmt": "rgba",
			"s":       fmt.Sprintf("%dx%d", width, height),
		}).
		WithOutput(pw).
		WithErrorOutput(stderr)
	stream.Context = ctx

	v := &Video{
		path:       path,
		width:      width,
		height:     height,
		blurSigma:  blurSigma,
		frameCount: count,
		reader:     bufio.NewReaderSize(pr, width*height*4),
		pipe:       pr,
		cancel:     cancel,
		done:       make(chan error, 1),
	}

	// stderr is only read after Run returns, once ffmpeg's output has been
	// fully copied.
	go func() {
		err := stream.Run()
		if err != nil && ctx.Err() == nil {
			if msg := stderr.String(); msg != "" {
				err = fmt.Errorf("ffmpeg: %w: %s", err, msg)
			}
		}
		pw.CloseWithError(err) // nil error closes with io.EOF
		v.done <- err
	}()

	return v, nil
}

// Next implements Source.
func (v *Video) Next(ctx context.Context) (*image.RGBA, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	frame := image.NewRGBA(image.Rect(0, 0, v.width, v.height))
	if _, err := io.ReadFull(v.reader, frame.Pix); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame from %s: %w", v.path, err)
	}

	if v.blurSigma > 0 {
		return blurFrame(frame, v.blurSigma), nil
	}
	return frame, nil
}

// FrameCount implements Counter.
func (v *Video) FrameCount() int {
	return v.frameCount
}

// Close stops ffmpeg and releases the pipe. It is safe to call more than once.
func (v *Video) Close() error {
	v.closeOnce.Do(func() {
		v.cancel()
		v.pipe.Close()
		<-v.done
	})
	return nil
}

// probeFrameCount asks ffprobe for the number of video frames.
func probeFrameCount(path string) (int, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe error: %w", err)
	}

	var probe videoProbe
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	return frameCountFromProbe(probe)
}

// frameCountFromProbe prefers nb_frames and falls back to rate * duration.
func frameCountFromProbe(probe videoProbe) (int, error) {
	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}
		if n, err := strconv.Atoi(s.NbFrames); err == nil && n > 0 {
			return n, nil
		}
		rate := parseRate(s.AvgFrameRate)
		dur, err := strconv.ParseFloat(s.Duration, 64)
		if rate > 0 && err == nil && dur > 0 {
			return int(rate * dur), nil
		}
	}
	return 0, fmt.Errorf("no video stream with a known frame count")
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		f, _ := strconv.ParseFloat(s, 64)
		return f
	}
	n, err1 := strconv.ParseFloat(num, 64)
	d, err2 := strconv.ParseFloat(den, 64)
	if err1 != nil || err2 != nil || d == 0 {
		return 0
	}
	return n / d
}
