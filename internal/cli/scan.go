package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/runner"
	"github.com/ironsheep/marker-score/internal/sink"
	"github.com/ironsheep/marker-score/internal/source"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var videoExts = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".mkv":  true,
	".webm": true,
	".m4v":  true,
}

type scanOptions struct {
	snapshotDir string
	every       int
	maxTicks    int
	scores      bool
	changesOnly bool
	noProgress  bool
}

func newScanCmd(global *globalOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan <video | image|dir|glob...>",
		Short: "Score every frame of a video file or image sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if opts.snapshotDir != "" {
				cfg.Snapshots.Dir = opts.snapshotDir
			}
			if cmd.Flags().Changed("every") {
				cfg.Snapshots.Every = opts.every
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			det, err := detection.New(cfg.Detection)
			if err != nil {
				return err
			}

			src, name, err := openScanSource(args, cfg.Width, cfg.Height, cfg.BlurSigma)
			if err != nil {
				return err
			}
			defer src.Close()

			outs, err := openOutputs(cmd.Context(), cfg, name)
			if err != nil {
				return err
			}
			defer outs.Close()

			sinks := outs.sinks
			if opts.scores {
				sinks = append(sinks, sink.NewScoreWriter(cmd.OutOrStdout(), opts.changesOnly))
			}

			total := -1
			if c, ok := src.(source.Counter); ok && c.FrameCount() > 0 {
				total = c.FrameCount()
			}
			if opts.maxTicks > 0 && (total < 0 || opts.maxTicks < total) {
				total = opts.maxTicks
			}

			var onTick func(int, detection.Tick)
			if !opts.noProgress {
				bar := progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Scanning"),
					progressbar.OptionSetWriter(cmd.ErrOrStderr()),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
				defer bar.Finish()
				onTick = func(int, detection.Tick) { bar.Add(1) }
			}

			stats, err := runner.Run(cmd.Context(), src, det, sink.Multi(sinks...), runner.Options{
				MaxTicks: opts.maxTicks,
				OnTick:   onTick,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), summary(stats))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.snapshotDir, "snapshots", "", "Save annotated PNG snapshots to this directory")
	f.IntVar(&opts.every, "every", 30, "Save a snapshot every N frames")
	f.IntVar(&opts.maxTicks, "max-frames", 0, "Stop after this many frames (0 = all)")
	f.BoolVar(&opts.scores, "scores", false, "Print a score line per frame")
	f.BoolVar(&opts.changesOnly, "changes-only", false, "With --scores, print only when the score changes")
	f.BoolVar(&opts.noProgress, "no-progress", false, "Hide the progress bar")
	return cmd
}

// openScanSource picks a video source for a single video file and an image
// sequence otherwise. The returned name labels the session.
func openScanSource(args []string, width, height int, blur float64) (source.Source, string, error) {
	if len(args) == 1 && videoExts[strings.ToLower(filepath.Ext(args[0]))] {
		v, err := source.NewVideo(args[0], width, height, blur)
		if err != nil {
			return nil, "", err
		}
		return v, "video:" + args[0], nil
	}

	paths, err := source.ExpandPaths(args)
	if err != nil {
		return nil, "", err
	}
	return source.NewImageSequence(paths, width, height, blur), fmt.Sprintf("images:%s (%d)", args[0], len(paths)), nil
}
