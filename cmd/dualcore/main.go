// dualcore simulates how a person reacts to a scenario under a chosen
// thinking mode and mindset.
//
// Usage:
//
//	dualcore serve [--port=:8080] [--offline]
//	dualcore simulate [--mode=SYSTEM_1|SYSTEM_2] [--mindset=FIXED|GROWTH] [-o text|json|yaml] <scenario>
//	dualcore catalog [-o json|yaml]
package main

import (
	"fmt"
	"os"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
