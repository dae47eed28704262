// Package report renders validation results for people (text) and
// machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/featurecheck/internal/repair"
	"github.com/nibzard/featurecheck/internal/validator"
)

// Format selects a renderer.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates a format name. An empty name means text.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid format %q (valid: text, json)", s)
	}
}

const rule = "======================================================================"

// Text writes a human-readable report for res: findings grouped by
// severity followed by a one-line verdict.
func Text(w io.Writer, res *validator.Result) error {
	errs, warns := res.Errors(), res.Warnings()

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n  %s\n%s\n", rule, res.Path, rule)

	if res.Valid && len(warns) == 0 {
		b.WriteString("\nPASS: document is fully compatible.\n\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	if len(errs) > 0 {
		fmt.Fprintf(&b, "\nERRORS (%d):\n\n", len(errs))
		for _, f := range errs {
			fmt.Fprintf(&b, "  %s\n", f)
		}
	}
	if len(warns) > 0 {
		fmt.Fprintf(&b, "\nWARNINGS (%d):\n\n", len(warns))
		for _, f := range warns {
			fmt.Fprintf(&b, "  %s\n", f)
		}
	}

	fmt.Fprintf(&b, "\n%s\n", rule)
	if res.Valid {
		b.WriteString("PASS with warnings: document is compatible but improvable.\n")
	} else {
		b.WriteString("FAIL: fix the errors above before using this document.\n")
	}
	fmt.Fprintf(&b, "%s\n\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}

// Change writes the outcome of an auto-fix.
func Change(w io.Writer, c *repair.Change) error {
	if !c.Changed() {
		_, err := fmt.Fprintln(w, "Counters already correct; nothing to fix.")
		return err
	}
	_, err := fmt.Fprintf(w, "Counters corrected:\n  - total: %d\n  - completed: %d\n", c.Total, c.Completed)
	return err
}

// Summary writes a one-line tally over several results.
func Summary(w io.Writer, results []*validator.Result) error {
	var passed, failed, warnings int
	for _, r := range results {
		if r.Valid {
			passed++
		} else {
			failed++
		}
		warnings += len(r.Warnings())
	}
	_, err := fmt.Fprintf(w, "%d file(s) checked: %d passed, %d failed, %d warning(s)\n",
		len(results), passed, failed, warnings)
	return err
}

// FileJSON is the machine-readable form of one result.
type FileJSON struct {
	Path     string              `json:"path"`
	Valid    bool                `json:"valid"`
	Errors   int                 `json:"errors"`
	Warnings int                 `json:"warnings"`
	Findings []validator.Finding `json:"findings"`
}

// NewFileJSON converts a result.
func NewFileJSON(res *validator.Result) FileJSON {
	findings := res.Findings
	if findings == nil {
		findings = []validator.Finding{}
	}
	return FileJSON{
		Path:     res.Path,
		Valid:    res.Valid,
		Errors:   len(res.Errors()),
		Warnings: len(res.Warnings()),
		Findings: findings,
	}
}

// JSON writes results as an indented JSON array, one object per file.
func JSON(w io.Writer, results []*validator.Result) error {
	out := make([]FileJSON, 0, len(results))
	for _, r := range results {
		out = append(out, NewFileJSON(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// Write renders results in format.
func Write(w io.Writer, format Format, results []*validator.Result) error {
	if format == FormatJSON {
		return JSON(w, results)
	}
	for _, r := range results {
		if err := Text(w, r); err != nil {
			return err
		}
	}
	if len(results) > 1 {
		return Summary(w, results)
	}
	return nil
}
