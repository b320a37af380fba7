package cli

import (
	"errors"
	"fmt"
	"log"

	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/ironsheep/marker-score/internal/runner"
	"github.com/ironsheep/marker-score/internal/sink"
	"github.com/ironsheep/marker-score/internal/source"
	"github.com/spf13/cobra"
)

type watchOptions struct {
	device      int
	headless    bool
	snapshotDir string
	every       int
	maxTicks    int
	everyScore  bool
}

func newWatchCmd(global *globalOptions) *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Score a live camera feed",
		Long: `Score frames from a camera until interrupted. The score is printed whenever
it changes. A preview window shows the annotated feed unless --headless is
given; press any key in the window to stop.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("device") {
				cfg.Camera.Device = opts.device
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

			cam, err := source.NewCamera(cfg.Camera.Device, cfg.Width, cfg.Height, cfg.BlurSigma)
			if err != nil {
				if errors.Is(err, source.ErrCaptureUnavailable) {
					log.Printf("Camera unavailable: %v", err)
				}
				return err
			}
			defer cam.Close()

			outs, err := openOutputs(cmd.Context(), cfg, fmt.Sprintf("camera:%d", cfg.Camera.Device))
			if err != nil {
				return err
			}
			defer outs.Close()

			sinks := append(outs.sinks, sink.NewScoreWriter(cmd.OutOrStdout(), !opts.everyScore))
			if !opts.headless {
				win, err := sink.NewWindow("marker-score")
				if err != nil {
					log.Printf("Preview disabled: %v", err)
				} else {
					defer win.Close()
					sinks = append(sinks, win)
				}
			}

			stats, err := runner.Run(cmd.Context(), cam, det, sink.Multi(sinks...), runner.Options{
				MaxTicks: opts.maxTicks,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary(stats))
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.device, "device", 0, "Camera device index (env MARKER_CAMERA_DEVICE)")
	f.BoolVar(&opts.headless, "headless", false, "Do not open a preview window")
	f.StringVar(&opts.snapshotDir, "snapshots", "", "Save annotated PNG snapshots to this directory")
	f.IntVar(&opts.every, "every", 30, "Save a snapshot every N frames")
	f.IntVar(&opts.maxTicks, "max-frames", 0, "Stop after this many frames (0 = until interrupted)")
	f.BoolVar(&opts.everyScore, "every-score", false, "Print the score for every frame, not only changes")
	return cmd
}
