// Command sledge deploys git and mercurial checkouts to remote hosts.
package main

import (
	"os"

	"github.com/okarlsson/sledge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
