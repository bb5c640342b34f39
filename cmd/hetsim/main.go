// Command hetsim simulates a host driving a streaming FIR accelerator through
// a DMA engine and a memory-mapped bridge.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
