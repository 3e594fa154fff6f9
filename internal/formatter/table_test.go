package formatter

import (
	"strings"
	"testing"
)

func TestMarkdownTable(t *testing.T) {
	got := MarkdownTable(
		[]string{"cell", "weight"},
		[][]string{
			{"CORDOBA/F/16-29", "1.2"},
			{"NEUQUÉN|X", "0.8"},
		},
	)

	want := strings.Join([]string{
		"| cell            | weight |",
		"| --------------- | ------ |",
		"| CORDOBA/F/16-29 | 1.2    |",
		`| NEUQUÉN\|X      | 0.8    |`,
	}, "\n")

	if got != want {
		t.Errorf("MarkdownTable() = \n%s\nwant \n%s", got, want)
	}
}

func TestTextTable(t *testing.T) {
	got := TextTable(
		[]string{"wave", "n"},
		[][]string{{"2023-05", "4"}, {"2023-06", "120"}},
	)

	want := "wave     n\n" +
		"-------  ---\n" +
		"2023-05  4\n" +
		"2023-06  120\n"

	if got != want {
		t.Errorf("TextTable() = %q, want %q", got, want)
	}
}

func TestFormatMarkdown_KeepsProvenance(t *testing.T) {
	signed := "| a | b |\n| - | - |\n| 1 | 2 |\n\n<!-- METADATA_START\nRUN_ID: abc\nHASH: stale\nMETADATA_END -->"

	got, err := FormatMarkdown(signed)
	if err != nil {
		t.Fatalf("FormatMarkdown() error = %v", err)
	}

	if !strings.Contains(got, "RUN_ID: abc") {
		t.Errorf("run id lost: %s", got)
	}

	if strings.Contains(got, "HASH: stale") {
		t.Errorf("hash not refreshed: %s", got)
	}
}
