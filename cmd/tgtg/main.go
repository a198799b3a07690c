// Package main is the entry point for the tgtg CLI and watcher service.
package main

import (
	"github.com/donaldgifford/tgtg-watcher/cmd/tgtg/cmd"
)

func main() {
	cmd.Execute()
}
