// Command xexplorer opens the explorer grid on a directory and offers
// headless helpers for inspecting grid geometry and page payloads.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
