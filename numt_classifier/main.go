package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"onsm/numt_classifier/config"
	"onsm/numt_classifier/logging"
	"onsm/numt_classifier/report"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "onsm",
	Short: "Classify organelle-nuclear shared loci as NUMT or NIMT",
	Long: `onsm pairs reciprocal mitochondrion/nuclear alignments into candidate loci,
scores each locus under the NUMT and NIMT hypotheses using alignment and
read-support evidence, and summarizes how much of each genome is affected.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func setupLogging(cmd *cobra.Command, args []string) error {
	config.LoadDotEnv()

	levelFlag, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(config.FirstNonEmpty(levelFlag, os.Getenv(config.EnvLogLevel)))
	if err != nil {
		return err
	}
	formatFlag, err := cmd.Flags().GetString("log-format")
	if err != nil {
		return err
	}
	logging.Init(level, config.FirstNonEmpty(formatFlag, os.Getenv(config.EnvLogFormat), "text"))

	colorMode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	report.SetColor(colorMode)
	return nil
}

// runContext bounds a command by --timeout; zero means no limit.
func runContext(cmd *cobra.Command) (context.Context, context.CancelFunc, error) {
	timeout, err := cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, nil, err
	}
	if timeout <= 0 {
		ctx, cancel := context.WithCancel(cmd.Context())
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	return ctx, cancel, nil
}

// main registers subcommands and global flags, then runs the root command.
// Any command error exits with status 1.
func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(classifyCmd)
	rootCmd.AddCommand(pairCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("config", "", "TOML configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("log-format", "", "log format (text|json)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Int("threads", config.Default().Threads, "worker goroutines for per-locus scoring")
	rootCmd.PersistentFlags().Duration("timeout", 0, "abort the run after this long (0 = no limit)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
