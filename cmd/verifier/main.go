// Package main provides the verifier command-line tool: it checks that a
// signed tracking report is unmodified and that the reference file it was
// computed from still has the recorded hash.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"pollweight/pkg/metadata"
)

func main() {
	inputPath := flag.String("input", "", "Path to a signed report (e.g., output/report.md)")
	referencePath := flag.String("reference", "", "Reference file to check (default: the one recorded in the report)")
	skipReference := flag.Bool("skip-reference", false, "Only check the report content hash")
	flag.Parse()

	if *inputPath == "" {
		fmt.Println("Usage: verifier -input <report.md> [-reference censo.csv]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	contentBytes, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Error reading file: %v\n", err)
	}

	fmt.Printf("📂 Reading: %s (%d bytes)\n", *inputPath, len(contentBytes))

	// 1. Content hash
	meta, err := metadata.Verify(string(contentBytes))
	switch {
	case errors.Is(err, metadata.ErrNoMetadataBlock):
		log.Fatalf("❌ %s is not signed\n", *inputPath)
	case err != nil:
		log.Fatalf("❌ Content check failed: %v\n", err)
	}

	fmt.Println("✅ Content hash matches")
	fmt.Printf("ℹ️  Run: %s\n", meta.RunID)

	if meta.Version != "" {
		fmt.Printf("ℹ️  Version: %s\n", meta.Version)
	}

	if !meta.LastModify.IsZero() {
		fmt.Printf("ℹ️  Signed: %s\n", meta.LastModify.Format("2006-01-02 15:04:05 MST"))
	}

	if *skipReference {
		return
	}

	// 2. Reference hash
	ref := *referencePath
	if ref == "" {
		ref = meta.ReferenceFile
	}

	if ref == "" {
		log.Fatalln("❌ Report records no reference file; pass -reference or -skip-reference")
	}

	if err := metadata.VerifyReference(meta, ref); err != nil {
		log.Fatalf("❌ Reference check failed: %v\n", err)
	}

	fmt.Printf("✅ Reference %s matches the report\n", ref)
}
