// Package metadata signs generated reports with a provenance block tying
// them to the run and the reference file they were computed from.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"
)

const (
	// TagStart is the start of the metadata block.
	TagStart = "<!-- METADATA_START"
	// TagEnd is the end of the metadata block.
	TagEnd = "METADATA_END -->"
)

// Metadata verification errors.
var (
	ErrNoMetadataBlock = errors.New("no metadata block found")
	ErrNoHashFound     = errors.New("no hash found in metadata")
	ErrHashMismatch    = errors.New("hash mismatch")
)

// Metadata is the provenance of a generated report.
type Metadata struct {
	LastModify    time.Time
	RunID         string
	ReferenceFile string
	ReferenceHash string
	Version       string
	Hash          string
}

// metadataRegex matches the entire metadata block including tags.
var metadataRegex = regexp.MustCompile(`(?s)<!--\s*METADATA_START\s*\n(.*?)\n\s*METADATA_END\s*-->`)

// Extract removes the metadata block from content and returns both the metadata
// and the cleaned content. The cleaned content is what gets hashed.
func Extract(content string) (*Metadata, string) {
	match := metadataRegex.FindStringSubmatch(content)
	cleanContent := metadataRegex.ReplaceAllString(content, "")
	cleanContent = strings.TrimRight(cleanContent, "\n")

	if len(match) < 2 {
		return nil, cleanContent
	}

	meta := &Metadata{}

	for line := range strings.SplitSeq(match[1], "\n") {
		key, val, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)

		switch key {
		case "RUN_ID":
			meta.RunID = val
		case "REFERENCE_FILE":
			meta.ReferenceFile = val
		case "REFERENCE_HASH":
			meta.ReferenceHash = val
		case "LAST_MODIFY":
			if t, err := time.Parse(time.RFC3339, val); err == nil {
				meta.LastModify = t
			}
		case "HASH":
			meta.Hash = val
		case "VERSION":
			meta.Version = val
		}
	}

	return meta, cleanContent
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	hash := sha256.Sum256(data)

	return hex.EncodeToString(hash[:])
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	return HashBytes(data), nil
}

// CalculateHash computes the SHA-256 hash of the content excluding metadata.
func CalculateHash(content string) string {
	_, clean := Extract(content)

	return HashBytes([]byte(clean))
}

// Sign appends or replaces the metadata block with a fresh hash and timestamp.
// Provenance fields are taken from meta when it is not nil.
func Sign(content string, meta *Metadata) string {
	_, clean := Extract(content)

	var sb strings.Builder

	sb.WriteString(clean)
	sb.WriteString("\n\n")
	sb.WriteString(TagStart)
	sb.WriteString("\n")

	if meta != nil {
		writeField(&sb, "RUN_ID", meta.RunID)
		writeField(&sb, "VERSION", meta.Version)
		writeField(&sb, "REFERENCE_FILE", meta.ReferenceFile)
		writeField(&sb, "REFERENCE_HASH", meta.ReferenceHash)
	}

	writeField(&sb, "LAST_MODIFY", time.Now().UTC().Format(time.RFC3339))
	writeField(&sb, "HASH", CalculateHash(clean))
	sb.WriteString(TagEnd)

	return sb.String()
}

func writeField(sb *strings.Builder, key, value string) {
	if value == "" {
		return
	}

	fmt.Fprintf(sb, "%s: %s\n", key, value)
}

// Verify checks if the content matches the hash in its metadata.
func Verify(content string) (*Metadata, error) {
	meta, clean := Extract(content)
	if meta == nil {
		return nil, ErrNoMetadataBlock
	}

	if meta.Hash == "" {
		return meta, ErrNoHashFound
	}

	calculated := CalculateHash(clean)
	if calculated != meta.Hash {
		return meta, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, meta.Hash, calculated)
	}

	return meta, nil
}

// VerifyReference checks that the reference file still hashes to the value
// recorded in meta, so weights in the report match the file on disk.
func VerifyReference(meta *Metadata, path string) error {
	if meta == nil || meta.ReferenceHash == "" {
		return ErrNoHashFound
	}

	hash, err := HashFile(path)
	if err != nil {
		return err
	}

	if hash != meta.ReferenceHash {
		return fmt.Errorf("%w: reference %s changed since the report was generated", ErrHashMismatch, path)
	}

	return nil
}
