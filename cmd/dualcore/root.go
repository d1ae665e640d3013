package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dualcore/internal/config"
	"dualcore/internal/logging"
)

type rootState struct {
	verbose bool
	cfg     *config.Config
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	st := &rootState{}
	root := &cobra.Command{
		Use:   "dualcore",
		Short: "Dual-process reaction simulator",
		Long: `dualcore asks a generative model how a person would react to a scenario
while running in fast (System 1) or deliberate (System 2) mode, filtered
through a fixed or growth mindset.

The API key is read from GEMINI_API_KEY (or API_KEY), optionally via .env.
Without one every simulation returns the fallback reaction.`,
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if st.verbose {
				level = "debug"
			}
			logger, err := logging.New(cfg.Env, level)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			st.cfg, st.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if st.logger != nil {
				_ = st.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "debug logging")
	root.Version = version

	root.AddCommand(newServeCmd(st))
	root.AddCommand(newSimulateCmd(st))
	root.AddCommand(newCatalogCmd(st))
	return root
}
