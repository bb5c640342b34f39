package main

import (
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hetsim",
	Short: "hetsim simulates a heterogeneous host and accelerator platform.",
	Long: `hetsim simulates a host that streams samples through a DMA ` +
		`engine and a memory-mapped bridge into a FIR accelerator, and ` +
		`checks the output against a software model.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(traceCmd)
}
