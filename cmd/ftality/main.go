// Command ftality recognises fighting-game combos from key presses.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/ftality/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		if !cli.Reported(err) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(cli.GetExitCode(err))
	}
}
