package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/nibzard/featurecheck/internal/features"
	"github.com/nibzard/featurecheck/internal/repair"
	"github.com/nibzard/featurecheck/internal/validator"
)

func validate(t *testing.T, input string) *validator.Result {
	t.Helper()
	doc, err := features.Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	doc.Path = "features.xml"
	return validator.Validate(doc, validator.Options{})
}

const (
	cleanDoc   = `<features project="p" total="1" completed="0"><category name="c"><feature id="FEAT-001" status="pending" priority="low"><description>d</description><steps><step>s</step></steps><notes>n</notes></feature></category></features>`
	warnDoc    = `<features project="p" total="3" completed="0"><category name="c"><feature id="FEAT-001" status="pending" priority="low"><description>d</description><steps><step>s</step></steps><notes>n</notes></feature></category></features>`
	invalidDoc = `<features project="p" total="1" completed="0"><category name="c"><feature id="FEAT-001" status="pending" priority="low"><description>d</description><steps></steps></feature></category></features>`
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatText, false},
		{"text", FormatText, false},
		{" JSON ", FormatJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTextPass(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, validate(t, cleanDoc)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "PASS: document is fully compatible.") {
		t.Errorf("missing pass verdict:\n%s", out)
	}
	if strings.Contains(out, "ERRORS") || strings.Contains(out, "WARNINGS") {
		t.Errorf("unexpected finding groups:\n%s", out)
	}
}

func TestTextWarningsOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, validate(t, warnDoc)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "WARNINGS (1):") {
		t.Errorf("missing warnings header:\n%s", out)
	}
	if !strings.Contains(out, "[WARNING] GLOBAL: attribute 'total' is incorrect: expected 1, found 3") {
		t.Errorf("missing counter warning:\n%s", out)
	}
	if !strings.Contains(out, "compatible but improvable") {
		t.Errorf("missing improvable verdict:\n%s", out)
	}
}

func TestTextErrorsBeforeWarnings(t *testing.T) {
	var buf bytes.Buffer
	if err := Text(&buf, validate(t, invalidDoc)); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	errIdx := strings.Index(out, "ERRORS (1):")
	warnIdx := strings.Index(out, "WARNINGS (1):")
	if errIdx < 0 || warnIdx < 0 || errIdx > warnIdx {
		t.Errorf("expected errors grouped before warnings:\n%s", out)
	}
	if !strings.Contains(out, "[ERROR] FEAT-001: <steps> contains no <step> (line 1)") {
		t.Errorf("missing EmptySteps line:\n%s", out)
	}
	if !strings.Contains(out, "FAIL:") {
		t.Errorf("missing fail verdict:\n%s", out)
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	results := []*validator.Result{validate(t, cleanDoc), validate(t, invalidDoc)}
	if err := JSON(&buf, results); err != nil {
		t.Fatal(err)
	}

	var got []FileJSON
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if !got[0].Valid || got[0].Findings == nil || len(got[0].Findings) != 0 {
		t.Errorf("clean entry: got %+v", got[0])
	}
	if got[1].Valid || got[1].Errors != 1 || got[1].Warnings != 1 {
		t.Errorf("invalid entry: got %+v", got[1])
	}
	if got[1].Findings[0].Code != validator.CodeEmptySteps {
		t.Errorf("first finding: got %s", got[1].Findings[0].Code)
	}
	if !strings.Contains(buf.String(), `"findings": []`) {
		t.Errorf("empty findings should encode as []:\n%s", buf.String())
	}
}

func TestWriteSummaryForManyFiles(t *testing.T) {
	var buf bytes.Buffer
	results := []*validator.Result{validate(t, cleanDoc), validate(t, warnDoc), validate(t, invalidDoc)}
	if err := Write(&buf, FormatText, results); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "3 file(s) checked: 2 passed, 1 failed, 2 warning(s)") {
		t.Errorf("missing summary:\n%s", buf.String())
	}
}

func TestChange(t *testing.T) {
	var buf bytes.Buffer
	c := &repair.Change{
		TotalBefore:     features.Attr{Value: "5", Present: true},
		CompletedBefore: features.Attr{Value: "1", Present: true},
		Total:           6,
		Completed:       2,
	}
	if err := Change(&buf, c); err != nil {
		t.Fatal(err)
	}
	want := "Counters corrected:\n  - total: 6\n  - completed: 2\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}
