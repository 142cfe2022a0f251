package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose = false
	version = "dev" // set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "dscale-sim",
	Short: "Deterministic discrete-event simulator for distributed protocols",
	Long: `dscale-sim runs a scenario file against a seeded, deterministic
discrete-event network model: logical clock, bandwidth-shaped latency
queue, and an ordered timer wheel, driving the same bundled example
protocols every run produces byte-for-byte the same event stream for the
same seed.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
