// Package main generates CLI reference documentation from the tgtg command tree.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/donaldgifford/tgtg-watcher/cmd/tgtg/cmd"
)

func main() {
	output := flag.String("output", "docs/cli", "output directory for generated markdown")
	manDir := flag.String("man", "", "also write man pages to this directory")
	flag.Parse()

	if err := os.MkdirAll(*output, 0o750); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	root := cmd.Root()
	root.DisableAutoGenTag = true

	if err := doc.GenMarkdownTree(root, *output); err != nil {
		log.Fatalf("generating docs: %v", err)
	}
	fmt.Printf("CLI docs generated in %s/\n", *output)

	if *manDir == "" {
		return
	}
	if err := os.MkdirAll(*manDir, 0o750); err != nil {
		log.Fatalf("creating man directory: %v", err)
	}
	header := &doc.GenManHeader{Title: "TGTG", Section: "1", Source: "tgtg " + cmd.Version}
	if err := doc.GenManTree(root, header, *manDir); err != nil {
		log.Fatalf("generating man pages: %v", err)
	}
	fmt.Printf("Man pages generated in %s/\n", *manDir)
}
