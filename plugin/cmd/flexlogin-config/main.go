// Command flexlogin-config creates, checks, prints and watches the
// flexlogin configuration directory (config.conf and locale.conf).
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
