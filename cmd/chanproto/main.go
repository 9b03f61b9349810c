// Command chanproto generates typed call wrappers over message channels.
package main

import (
	"os"

	"github.com/roach88/chanproto/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
