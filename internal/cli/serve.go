package cli

import (
	"github.com/ironsheep/marker-score/internal/debug"
	"github.com/ironsheep/marker-score/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd(global *globalOptions, info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP tool server on stdin/stdout",
		Long: `Run an MCP (Model Context Protocol) server over stdio exposing marker
detection on image files. Configure it in an MCP client; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, global)
			if err != nil {
				return err
			}

			debug.Logf("marker-score MCP server v%s (built %s, commit %s)", info.Version, info.BuildTime, info.GitCommit)

			srv, err := server.New(cfg, info.Version)
			if err != nil {
				return err
			}
			return srv.Serve(cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}
