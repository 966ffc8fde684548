// Package main implements the intakegrid-preview binary: a dry run that
// reports what importing a template file would produce, without writes.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/intakegrid/intakegrid/internal/importer"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: intakegrid-preview <template.json>\n")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	jsonText, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read template file: %v", err)
	}

	imp := importer.New(nil, nil)
	preview, err := imp.PreviewJSON(context.Background(), string(jsonText))
	if err != nil {
		log.Fatalf("Preview failed: %v", err)
	}

	out, _ := json.MarshalIndent(preview, "", "  ")
	fmt.Println(string(out))

	if len(preview.DuplicateIDs) > 0 {
		fmt.Fprintf(os.Stderr, "warning: duplicate question ids: %v\n", preview.DuplicateIDs)
		os.Exit(1)
	}
}
