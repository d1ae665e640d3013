package main

import (
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"dualcore/internal/gateway/app"
	llmclient "dualcore/internal/llmclient"
)

func newServeCmd(st *rootState) *cobra.Command {
	var (
		port    string
		offline bool
		grace   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and websocket gateway",
		Long: `Serves GET /api/catalog, POST /api/simulate, GET /ws/session and
GET /healthz until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port = strings.TrimSpace(port); port != "" {
				if !strings.Contains(port, ":") {
					port = ":" + port
				}
				st.cfg.Port = port
			}
			var opts []app.Option
			if offline {
				opts = append(opts, app.WithLLMClient(llmclient.NewFakeClient()))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, st.cfg, st.logger, opts...)
			if err != nil {
				return err
			}
			return a.Run(ctx, grace)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen address, overrides PORT (e.g. :8080)")
	cmd.Flags().BoolVar(&offline, "offline", false, "use the canned offline client instead of Gemini")
	cmd.Flags().DurationVar(&grace, "shutdown-grace", 5*time.Second, "graceful shutdown timeout")
	return cmd
}
