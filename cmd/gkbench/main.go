// Command gkbench measures the quantile-summary implementations against each
// other and against external baselines over a generated value stream with a
// known quantile point.
//
// Every flag can also be set through the environment with the GKBENCH_
// prefix, e.g. GKBENCH_ALGORITHM=classic GKBENCH_VALUES=100000000 gkbench.
package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const envPrefix = "GKBENCH"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gkbench",
		Short: "Benchmark approximate quantile summaries",
		Long: `gkbench builds a quantile sketch over a generated stream whose true
quantile value is known, in parallel across workers, and reports build,
merge and query timings together with the answer and its deviation.

Algorithms: modified (merge-friendly summary, the default), classic
(banding summary), exact (sort-everything baseline), ckms (beorn7/perks
stream) and tdigest (stripe/veneur merging t-digest).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.String("algorithm", "modified", "algorithm: modified, classic, exact, ckms or tdigest")
	flags.Uint64("values", 1_000_000, "total number of observations")
	flags.Int("workers", runtime.NumCPU(), "parallel build workers")
	flags.Float64("epsilon", 0.01, "maximum rank error fraction")
	flags.Float64("quantile", 0.5, "quantile to query")
	flags.Int64("seed", 17, "base seed for the value generators")
	flags.String("log-level", "info", "log level: debug, info, warn or error")

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := v.BindPFlags(cmd.Flags()); err != nil {
			return err
		}

		level, err := logrus.ParseLevel(v.GetString("log-level"))
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", v.GetString("log-level"), err)
		}
		logrus.SetLevel(level)

		cfg := config{
			Algorithm: v.GetString("algorithm"),
			Values:    v.GetUint64("values"),
			Workers:   v.GetInt("workers"),
			Epsilon:   v.GetFloat64("epsilon"),
			Quantile:  v.GetFloat64("quantile"),
			Seed:      v.GetInt64("seed"),
		}
		res, err := runBench(cfg)
		if err != nil {
			return err
		}
		renderResult(os.Stdout, cfg, res)
		return nil
	}
	return cmd
}
