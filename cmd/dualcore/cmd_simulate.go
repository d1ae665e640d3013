package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"dualcore/internal/catalog"
	gatewaysimulate "dualcore/internal/gateway/service/simulate"
	"dualcore/internal/gateway/app"
	llmclient "dualcore/internal/llmclient"
	"dualcore/internal/simulation"
)

type simulateFlags struct {
	mode    string
	mindset string
	output  string
	offline bool
}

func newSimulateCmd(st *rootState) *cobra.Command {
	var f simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate [scenario...]",
		Short: "Simulate one reaction to a scenario",
		Long: `Runs a single simulation and prints the reaction. The scenario is read
from the arguments, or from stdin when none are given.

Failures never abort the command: the fallback reaction is printed and the
advisory, if any, goes to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(cmd, st, f, args)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.mode, "mode", string(catalog.ModeFast), "thinking mode: SYSTEM_1 (fast) or SYSTEM_2 (deliberate)")
	fl.StringVar(&f.mindset, "mindset", string(catalog.MindsetFixed), "mindset filter: FIXED or GROWTH")
	fl.StringVarP(&f.output, "output", "o", outputText, "output format: text|json|yaml")
	fl.BoolVar(&f.offline, "offline", false, "use the canned offline client instead of Gemini")
	return cmd
}

func runSimulate(cmd *cobra.Command, st *rootState, f simulateFlags, args []string) error {
	format, err := validateOutput(f.output, outputText, outputJSON, outputYAML)
	if err != nil {
		return err
	}
	mode, mindset, err := gatewaysimulate.ParseSelection(f.mode, f.mindset)
	if err != nil {
		return err
	}
	scenario := strings.Join(args, " ")
	if strings.TrimSpace(scenario) == "" {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read scenario: %w", err)
		}
		scenario = string(b)
	}
	if strings.TrimSpace(scenario) == "" {
		return fmt.Errorf("%w: pass it as arguments or on stdin", simulation.ErrInvalidInput)
	}

	var override llmclient.LLMClient
	if f.offline {
		override = llmclient.NewFakeClient()
	}
	client, llm, err := app.NewSimulationClient(cmd.Context(), st.cfg, st.logger, override)
	if err != nil {
		return err
	}
	if llm != nil {
		defer llm.Close()
	}

	res, runErr := client.Run(cmd.Context(), scenario, mode, mindset)
	if advisory := simulation.Advisory(runErr); advisory != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), advisory)
	}

	out := cmd.OutOrStdout()
	if format != outputText {
		return writeStructured(out, format, res)
	}
	md := catalog.DescribeMode(mode)
	ms := catalog.DescribeMindset(mindset)
	fmt.Fprintf(out, "%s · %s\n\n", md.Name, ms.Name)
	fmt.Fprintf(out, "内心独白: %s\n", res.InternalMonologue)
	fmt.Fprintf(out, "行动:     %s\n", res.Action)
	fmt.Fprintf(out, "能量消耗: %d\n", res.EnergyLevel)
	fmt.Fprintf(out, "压力水平: %d\n", res.StressLevel)
	return nil
}
