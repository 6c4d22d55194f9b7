package cmd

import (
	"os/signal"
	"syscall"

	"accbridge/internal/server"

	"github.com/spf13/cobra"
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server for Power BI",
	Long: `Start the HTTP API server that Power BI reads from.

Endpoints:
  GET /api/issues   project issues as JSON (cached for 5 minutes,
                    ?refresh=true forces an upstream fetch)
  GET /api/status   token cache status
  GET /api/health   liveness probe
  GET /metrics      Prometheus metrics

With SERVER_MODE=true (recommended for deployments) a missing persisted
token is a hard failure on the first issues request instead of a browser
prompt; run 'accbridge auth login' beforehand.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	twoLegged, threeLegged := buildProviders(cfg)
	client := buildACCClient(cfg, twoLegged, threeLegged)

	srv := server.New(server.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		Issues:      client,
		TwoLegged:   twoLegged,
		ThreeLegged: threeLegged,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx)
}
