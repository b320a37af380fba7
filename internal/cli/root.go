// Package cli implements the marker-score command tree.
package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/marker-score/internal/config"
	"github.com/ironsheep/marker-score/internal/debug"
	"github.com/ironsheep/marker-score/internal/detection"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary by ldflags.
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	logLevel   string
	stride     int
	threshold  int
	model      string
	dashboard  string
	dbURL      string
	width      int
	height     int
	blur       float64
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute(info BuildInfo) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(info).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(info BuildInfo) *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:           "marker-score",
		Short:         "Count coloured markers in images, video and live camera frames",
		Version:       info.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	f := root.PersistentFlags()
	f.StringVar(&opts.configPath, "config", "", "YAML configuration file")
	f.StringVar(&opts.logLevel, "log-level", "", "Log level: info or debug (env MARKER_LOG_LEVEL)")
	f.IntVar(&opts.stride, "stride", 0, "Sampling grid spacing in pixels (env MARKER_STRIDE, default 5)")
	f.IntVar(&opts.threshold, "threshold", 0, "Grouping distance in pixels (env MARKER_THRESHOLD, default 15)")
	f.StringVar(&opts.model, "model", "", "Colour model: rgb or hsv (env MARKER_MODEL, default rgb)")
	f.StringVar(&opts.dashboard, "dashboard", "", "Serve the live dashboard on this address, e.g. :8080")
	f.StringVar(&opts.dbURL, "db", "", "PostgreSQL connection string for the tick log (env MARKER_DATABASE_URL)")
	f.IntVar(&opts.width, "width", 0, "Frame width in pixels (default 640)")
	f.IntVar(&opts.height, "height", 0, "Frame height in pixels (default 480)")
	f.Float64Var(&opts.blur, "blur", 0, "Gaussian pre-blur sigma, 0 disables")

	root.AddCommand(
		newDetectCmd(opts),
		newScanCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts, info),
		newVersionCmd(info),
	)
	return root
}

// loadConfig assembles the session configuration: defaults, file and
// environment, then any flags the user set explicitly. It also configures
// logging, so it must run before a command does any work.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if flags.Changed("stride") {
		cfg.Detection.Stride = opts.stride
	}
	if flags.Changed("threshold") {
		cfg.Detection.Threshold = opts.threshold
	}
	if flags.Changed("model") {
		cfg.Detection.Model = detection.ColorModel(opts.model)
	}
	if flags.Changed("dashboard") {
		cfg.Dashboard.Addr = opts.dashboard
	}
	if flags.Changed("db") {
		cfg.DatabaseURL = opts.dbURL
	}
	if flags.Changed("width") {
		cfg.Width = opts.width
	}
	if flags.Changed("height") {
		cfg.Height = opts.height
	}
	if flags.Changed("blur") {
		cfg.BlurSigma = opts.blur
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setupLogging(cfg)
	return cfg, nil
}

// setupLogging sends the standard logger to stderr; stdout carries scores
// and the MCP protocol.
func setupLogging(cfg *config.Config) {
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	debug.Enabled = cfg.Debug()
	debug.Logf("config: %dx%d blur=%g detection=%+v", cfg.Width, cfg.Height, cfg.BlurSigma, cfg.Detection)
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "marker-score %s\n", info.Version)
			fmt.Fprintf(out, "  Build time: %s\n", info.BuildTime)
			fmt.Fprintf(out, "  Git commit: %s\n", info.GitCommit)
		},
	}
}
