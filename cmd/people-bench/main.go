package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/peoplebench/people-bench/internal/benchmark"
	"github.com/peoplebench/people-bench/internal/bus"
	"github.com/peoplebench/people-bench/internal/config"
	"github.com/peoplebench/people-bench/internal/pkg/logger"
	"github.com/peoplebench/people-bench/internal/report"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "people-bench",
		Short: "Benchmark people-search backends with an LLM judge",
		Long: `people-bench runs a query dataset against pluggable people-search
backends (Exa, Brave, Parallel, or a local Qdrant index), grades every
returned candidate with an LLM judge, and reports Recall@1, Recall@10,
and Precision per backend.

Run 'people-bench run' to execute a benchmark.
Run 'people-bench --help' for available commands.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("format", "text", "log format (text, json)")

	rootCmd.AddCommand(
		runCmd(),
		searchersCmd(),
		replayCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig builds the effective configuration from the config file,
// environment, and command-line flags.
func loadConfig(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.Log.Level = "debug"
	}
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.Log.Format = format
	}

	return cfg, logger.New(cfg.Log.Level, cfg.Log.Format), nil
}

// signalContext cancels on SIGINT or SIGTERM so a long benchmark can
// be interrupted without losing the verdict log.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark over the query dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			applyRunFlags(cmd, cfg)

			ctx, cancel := signalContext()
			defer cancel()

			runner, err := benchmark.NewRunner(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer runner.Close()

			result, err := runner.Run(ctx)
			if err != nil {
				return err
			}

			rep := report.FromResult(result, report.Options{
				Dataset:         cfg.Dataset.Path,
				JudgeModel:      cfg.Judge.Model,
				NumResults:      cfg.Run.NumResults,
				IncludeVerdicts: cfg.Report.IncludeVerdicts,
			})

			if out := cfg.Report.OutputFile; out != "" {
				if err := rep.WriteJSON(out); err != nil {
					return err
				}
				log.Info("report written", "path", out)
			}
			return rep.WriteTable(os.Stdout)
		},
	}

	cmd.Flags().Int("limit", 0, "cap the number of queries (0 = all)")
	cmd.Flags().Int("num-results", 0, "results requested per query")
	cmd.Flags().StringSlice("searchers", nil, "searcher backends to run (default from config)")
	cmd.Flags().Bool("enrich-contents", false, "fetch full page content before grading")
	cmd.Flags().StringP("output", "o", "", "write the JSON report to this file")
	cmd.Flags().String("verdict-log", "", "append per-pair verdicts to this JSONL file")
	cmd.Flags().String("metrics-out", "", "write Prometheus metrics to this file")

	return cmd
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("limit") {
		cfg.Run.Limit, _ = cmd.Flags().GetInt("limit")
	}
	if cmd.Flags().Changed("num-results") {
		cfg.Run.NumResults, _ = cmd.Flags().GetInt("num-results")
	}
	if cmd.Flags().Changed("searchers") {
		cfg.Run.Searchers, _ = cmd.Flags().GetStringSlice("searchers")
	}
	if cmd.Flags().Changed("enrich-contents") {
		cfg.Run.EnrichContents, _ = cmd.Flags().GetBool("enrich-contents")
	}
	if cmd.Flags().Changed("output") {
		cfg.Report.OutputFile, _ = cmd.Flags().GetString("output")
	}
	if cmd.Flags().Changed("verdict-log") {
		cfg.Report.VerdictLog, _ = cmd.Flags().GetString("verdict-log")
	}
	if cmd.Flags().Changed("metrics-out") {
		cfg.Report.MetricsOut, _ = cmd.Flags().GetString("metrics-out")
	}
}

func searchersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "searchers",
		Short: "List the searcher backends available with the current credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			runner, err := benchmark.NewRunner(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer runner.Close()

			fmt.Println(strings.Join(runner.Searchers(), "\n"))
			return nil
		},
	}
}

func replayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay <verdicts.jsonl>",
		Short: "Recompute summaries from a persisted verdict log",
		Long: `Replay re-aggregates a verdict log produced by 'run --verdict-log'
without calling any search backend or the judge. Useful for trying a
different ungraded policy on an existing run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if policy, _ := cmd.Flags().GetString("ungraded-policy"); policy != "" {
				cfg.Run.UngradedPolicy = policy
			}

			pairs, err := bus.ReadVerdictLog(args[0])
			if err != nil {
				return err
			}

			rep := report.FromPairs(pairs, cfg.Run.UngradedPolicy, report.Options{
				NumResults: cfg.Run.NumResults,
			})

			if out, _ := cmd.Flags().GetString("output"); out != "" {
				if err := rep.WriteJSON(out); err != nil {
					return err
				}
			}
			return rep.WriteTable(os.Stdout)
		},
	}

	cmd.Flags().String("ungraded-policy", "", "override the ungraded policy (exclude, zero)")
	cmd.Flags().StringP("output", "o", "", "write the JSON report to this file")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("people-bench %s\n", version)
			fmt.Printf("  commit: %s\n", commit)
			fmt.Printf("  built:  %s\n", date)
		},
	}
}
