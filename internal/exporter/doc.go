// Package exporter writes the artifacts of a tracking run.
//
// Per wave it writes the respondent weights and the cell weighting summary
// as CSV. Over the whole run it writes every aggregate table as CSV, a
// tracking.xlsx workbook with one sheet per table, and a markdown report
// signed with a provenance block (run id and reference hash) that
// cmd/verifier can check later.
//
// CSV files carry a UTF-8 BOM so spreadsheet tools detect accented
// province names correctly.
package exporter
