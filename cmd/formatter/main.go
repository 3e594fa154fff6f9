// Package main provides the report formatter command-line tool. It re-aligns
// the tables of the markdown reports in an output directory; signed reports
// are re-signed with their run id and reference hash kept.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"

	"pollweight/internal/config"
	"pollweight/internal/formatter"
	"pollweight/pkg/metadata"
)

type summary struct {
	scanned  int
	changed  int
	tampered int
	failed   int
}

func main() {
	configPath := flag.String("config", "", "Path to YAML configuration file (its output.dir is the default path)")
	targetPath := flag.String("path", "", "Report file or directory to format")
	write := flag.Bool("write", false, "Write changes (default: dry-run)")
	force := flag.Bool("force", false, "Re-sign reports whose content hash no longer matches")
	flag.Parse()

	root := *targetPath
	if root == "" {
		cfg, err := config.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("❌ Configuration error: %v\n", err)
		}

		root = cfg.Output.Dir
	}

	mode := "👀 Dry-run"
	if *write {
		mode = "✍️  Write"
	}

	fmt.Printf("📂 %s: %s\n\n", mode, root)

	var s summary

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			fmt.Printf("❌ %s: %v\n", path, walkErr)
			s.failed++

			return nil
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}

			return nil
		}

		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}

		s.scanned++

		changed, fileErr := formatFile(path, *write, *force)

		switch {
		case errors.Is(fileErr, metadata.ErrHashMismatch):
			fmt.Printf("⚠️  %s was edited after signing; use -force to re-sign it\n", path)
			s.tampered++
		case fileErr != nil:
			fmt.Printf("❌ %s: %v\n", path, fileErr)
			s.failed++
		case changed && *write:
			fmt.Printf("✅ Formatted: %s\n", path)
			s.changed++
		case changed:
			fmt.Printf("📝 Would format: %s\n", path)
			s.changed++
		}

		return nil
	})
	if err != nil {
		log.Fatalf("❌ Error walking %s: %v\n", root, err)
	}

	fmt.Printf("\n📈 Scanned %d, changed %d, tampered %d, errors %d\n", s.scanned, s.changed, s.tampered, s.failed)

	if s.failed > 0 || s.tampered > 0 || (s.changed > 0 && !*write) {
		os.Exit(1)
	}
}

// formatFile re-aligns one report. A signed report whose hash does not match
// is refused unless force is set, so formatting never launders an edit.
func formatFile(path string, write, force bool) (bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}

	original := string(content)

	if _, verifyErr := metadata.Verify(original); errors.Is(verifyErr, metadata.ErrHashMismatch) && !force {
		return false, verifyErr
	}

	formatted, err := formatter.FormatMarkdown(original)
	if err != nil {
		return false, err
	}

	// Re-signing refreshes the timestamp, so only the content is compared.
	_, before := metadata.Extract(original)
	_, after := metadata.Extract(formatted)

	if before == after {
		return false, nil
	}

	if write {
		if err := os.WriteFile(path, []byte(formatted), 0644); err != nil {
			return false, err
		}
	}

	return true, nil
}
