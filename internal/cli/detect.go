package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/anthonynsimon/bild/imgio"
	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/imaging"
	"github.com/ironsheep/marker-score/internal/source"
	"github.com/spf13/cobra"
)

type detectOptions struct {
	annotateDir string
	jsonOutput  bool
}

// detectReport is one line of `detect --json` output.
type detectReport struct {
	Path          string             `json:"path"`
	Score         int                `json:"score"`
	Samples       int                `json:"samples"`
	PixelEstimate int                `json:"pixel_estimate"`
	Results       []detection.Result `json:"results"`
	Annotated     string             `json:"annotated,omitempty"`
}

func newDetectCmd(global *globalOptions) *cobra.Command {
	opts := &detectOptions{}

	cmd := &cobra.Command{
		Use:   "detect <image|dir|glob>...",
		Short: "Count markers in still images",
		Long: `Count markers in each image. Images are resized to the configured frame
size first, so reported coordinates are frame coordinates.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			det, err := detection.New(cfg.Detection)
			if err != nil {
				return err
			}
			paths, err := source.ExpandPaths(args)
			if err != nil {
				return err
			}
			if opts.annotateDir != "" {
				if err := os.MkdirAll(opts.annotateDir, 0o755); err != nil {
					return fmt.Errorf("failed to create annotate directory: %w", err)
				}
			}

			seq := source.NewImageSequence(paths, cfg.Width, cfg.Height, cfg.BlurSigma)
			defer seq.Close()
			return runDetect(cmd, seq, det, opts)
		},
	}

	cmd.Flags().StringVar(&opts.annotateDir, "annotate", "", "Write annotated PNGs to this directory")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "Print one JSON object per image")
	return cmd
}

func runDetect(cmd *cobra.Command, seq *source.ImageSequence, det *detection.Detector, opts *detectOptions) error {
	out := cmd.OutOrStdout()
	enc := json.NewEncoder(out)
	ctx := cmd.Context()

	for {
		frame, err := seq.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		path := seq.Current()
		tick := det.Process(frame)
		report := detectReport{
			Path:          path,
			Score:         tick.Score,
			Samples:       tick.Samples,
			PixelEstimate: tick.PixelEstimate,
			Results:       tick.Results,
		}

		if opts.annotateDir != "" {
			report.Annotated = annotatedPath(opts.annotateDir, path)
			annotated := imaging.Annotate(frame, tick.Results, tick.Score)
			if err := imgio.Save(report.Annotated, annotated, imgio.PNGEncoder()); err != nil {
				return fmt.Errorf("failed to save annotated image: %w", err)
			}
		}

		if opts.jsonOutput {
			if err := enc.Encode(report); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			continue
		}

		fmt.Fprintf(out, "%s: Score: %d\n", path, tick.Score)
		for i, r := range tick.Results {
			fmt.Fprintf(out, "  #%d at (%d,%d) %dx%d, %d samples\n", i, r.X, r.Y, r.Width, r.Height, r.Count)
		}
	}
}

// annotatedPath maps an input image to its annotated output in dir.
func annotatedPath(dir, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(dir, base+"-annotated.png")
}
