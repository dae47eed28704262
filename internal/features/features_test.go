package features

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDoc = `<?xml version="1.0" encoding="UTF-8"?>
<features project="jwt-auth" total="3" completed="1">
  <!-- Feature Status Values: pending | in-progress | complete | blocked -->
  <category name="Core Setup">
    <feature id="FEAT-001" status="complete" priority="high">
      <description>Initial project setup</description>
      <steps>
        <step>Create project structure</step>
        <step>Install dependencies</step>
      </steps>
      <notes>Done &amp; verified</notes>
    </feature>
    <feature id="FEAT-002" status="blocked" priority="medium">
      <description>Token refresh</description>
      <steps>
        <step>Add refresh endpoint</step>
      </steps>
      <notes>Blocked: waiting on
the session store</notes>
    </feature>
  </category>
  <category name="Empty"/>
  <feature id="FEAT-003" status="pending" priority="low">
    <description>Stray</description>
  </feature>
</features>
`

func TestParseTypedView(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if doc.Root.Name != RootName {
		t.Errorf("root: got %q, want %q", doc.Root.Name, RootName)
	}
	if got := doc.Project(); !got.Set() || got.Value != "jwt-auth" {
		t.Errorf("project: got %+v", got)
	}
	if len(doc.Categories) != 2 {
		t.Fatalf("categories: got %d, want 2", len(doc.Categories))
	}
	if len(doc.Categories[0].Features) != 2 {
		t.Errorf("features in first category: got %d, want 2", len(doc.Categories[0].Features))
	}
	if len(doc.Categories[1].Features) != 0 {
		t.Errorf("features in empty category: got %d, want 0", len(doc.Categories[1].Features))
	}
	if len(doc.Features) != 3 {
		t.Fatalf("all features: got %d, want 3", len(doc.Features))
	}
	if doc.Categories[0].Features[0] != doc.Features[0] {
		t.Error("category features should share pointers with document features")
	}

	f := doc.Features[0]
	if f.ID.Value != "FEAT-001" || f.Status.Value != "complete" || f.Priority.Value != "high" {
		t.Errorf("feature attrs: got %+v %+v %+v", f.ID, f.Status, f.Priority)
	}
	if f.Description == nil || f.Description.Text != "Initial project setup" {
		t.Errorf("description: got %+v", f.Description)
	}
	if f.Steps == nil || len(f.Steps.Items) != 2 {
		t.Fatalf("steps: got %+v", f.Steps)
	}
	if f.Notes == nil || f.Notes.Text != "Done & verified" {
		t.Errorf("notes: got %+v", f.Notes)
	}

	stray := doc.Features[2]
	if stray.Steps != nil || stray.Notes != nil {
		t.Errorf("stray feature should have no steps or notes: %+v", stray)
	}
}

func TestParseLineNumbers(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if doc.Features[0].Line != 5 {
		t.Errorf("FEAT-001 line: got %d, want 5", doc.Features[0].Line)
	}
	if doc.Categories[1].Line != 22 {
		t.Errorf("Empty category line: got %d, want 22", doc.Categories[1].Line)
	}
}

func TestParseMalformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed tag", `<features><category name="a"></features>`},
		{"unclosed at EOF", `<features><category name="a">`},
		{"mismatched end", `<features></category>`},
		{"empty input", ``},
		{"only whitespace", "  \n  "},
		{"two roots", `<features/><features/>`},
		{"text after root", `<features/>trailing`},
		{"bad attribute", `<features total=5/>`},
		{"undefined entity", `<features>&nope;</features>`},
		{"duplicate attribute", `<features><category name="a"><feature id="FEAT-001" id="bad"/></category></features>`},
		{"duplicate root attribute", `<features total="1" total="2"/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !errors.Is(err, ErrMalformedInput) {
				t.Errorf("expected ErrMalformedInput, got %v", err)
			}
			var me *MalformedInputError
			if !errors.As(err, &me) {
				t.Errorf("expected *MalformedInputError, got %T", err)
			}
		})
	}
}

func TestParseByteOrderMark(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"with declaration", "\uFEFF" + sampleDoc},
		{"without declaration", "\uFEFF" + `<features project="p"><category name="c"/></features>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if doc.Root.Name != RootName || len(doc.Categories) == 0 {
				t.Errorf("unexpected document: root %q, %d categories", doc.Root.Name, len(doc.Categories))
			}
			data, err := doc.Marshal()
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasPrefix(string(data), "<?xml") {
				t.Errorf("encoded output should start with the declaration:\n%q", data)
			}
		})
	}
}

func TestParseDuplicateAttributeLine(t *testing.T) {
	input := "<features>\n  <category name=\"a\" name=\"b\"/>\n</features>"
	_, err := Parse(strings.NewReader(input))
	var me *MalformedInputError
	if !errors.As(err, &me) {
		t.Fatalf("expected *MalformedInputError, got %v", err)
	}
	if me.Line != 2 || !strings.Contains(me.Msg, `duplicate attribute "name"`) {
		t.Errorf("got line %d msg %q", me.Line, me.Msg)
	}
}

func TestParseMultiLineStartTag(t *testing.T) {
	input := `<features>
  <category name="c">
    <feature
        id="FEAT-001"
        status="pending"
        priority="high">
      <description>d</description>
    </feature>
  </category>
</features>`
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := doc.Features[0].Line; got != 3 {
		t.Errorf("feature line: got %d, want 3", got)
	}
	if got := doc.Features[0].Description.Line; got != 7 {
		t.Errorf("description line: got %d, want 7", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xml"))
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestLoadSetsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "features.xml")
	if err := os.WriteFile(path, []byte(sampleDoc), 0644); err != nil {
		t.Fatal(err)
	}
	doc, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if doc.Path != path {
		t.Errorf("Path: got %q, want %q", doc.Path, path)
	}
}

func TestEncodeIndentsAndPreserves(t *testing.T) {
	input := `<features project="p" total="1" completed="0"><!-- note --><category name="A &amp; B"><feature id="FEAT-001" status="pending" priority="high"><description>  keep   spacing  </description><steps><step>a &lt; b</step></steps><notes></notes></feature></category></features>`
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	want := `<?xml version="1.0" encoding="UTF-8"?>
<features project="p" total="1" completed="0">
  <!-- note -->
  <category name="A &amp; B">
    <feature id="FEAT-001" status="pending" priority="high">
      <description>  keep   spacing  </description>
      <steps>
        <step>a &lt; b</step>
      </steps>
      <notes />
    </feature>
  </category>
</features>
`
	if string(data) != want {
		t.Errorf("encoded output mismatch\ngot:\n%s\nwant:\n%s", data, want)
	}
}

func TestEncodeRoundTripIsStable(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	first, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	again, err := Parse(strings.NewReader(string(first)))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	second, err := again.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(first) != string(second) {
		t.Errorf("encoding not stable\nfirst:\n%s\nsecond:\n%s", first, second)
	}
	if !strings.Contains(string(first), "<notes>Blocked: waiting on\nthe session store</notes>") {
		t.Errorf("multi-line leaf text was altered:\n%s", first)
	}
}

func TestEncodeKeepsMixedContent(t *testing.T) {
	input := `<features total="1"><category name="c"><feature id="FEAT-001" status="blocked" priority="low"><notes>Blocked: waiting <b>x</b> on y<!-- c --></notes></feature></category></features>`
	doc, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	before := doc.Features[0].Notes.Text

	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), "      <notes>Blocked: waiting <b>x</b> on y<!-- c --></notes>\n") {
		t.Errorf("mixed content was reflowed:\n%s", data)
	}

	again, err := Parse(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if got := again.Features[0].Notes.Text; got != before {
		t.Errorf("notes text changed: got %q, want %q", got, before)
	}
}

func TestSetAttr(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<features project="p"/>`))
	if err != nil {
		t.Fatal(err)
	}
	doc.SetAttr("total", "4")
	doc.SetAttr("project", "q")

	if got := doc.Total(); !got.Present || got.Value != "4" {
		t.Errorf("total: got %+v", got)
	}
	if got := doc.Project(); got.Value != "q" {
		t.Errorf("project: got %+v", got)
	}
	if doc.Root.Attrs[0].Name != "project" || doc.Root.Attrs[1].Name != "total" {
		t.Errorf("attribute order: got %+v", doc.Root.Attrs)
	}
}

func TestStatusCounts(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	counts := doc.StatusCounts()
	if counts[StatusComplete] != 1 || counts[StatusBlocked] != 1 || counts[StatusPending] != 1 {
		t.Errorf("counts: got %v", counts)
	}
	if counts[StatusInProgress] != 0 {
		t.Errorf("in-progress: got %d, want 0", counts[StatusInProgress])
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "features.xml")
	if err := os.WriteFile(path, []byte("old"), 0600); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(path, []byte("new")); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "new" {
		t.Errorf("content: got %q, want new", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("mode: got %v, want 0600", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestWriteFileAtomicMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "features.xml")
	if err := WriteFileAtomic(path, []byte("x")); err == nil {
		t.Fatal("expected error writing into a missing directory")
	}
}

func TestJSONProjection(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleDoc))
	if err != nil {
		t.Fatal(err)
	}
	j := doc.JSON()
	if j.Root != "features" || j.Attributes["total"] != "3" {
		t.Errorf("root projection: got %+v", j)
	}
	if len(j.Categories) != 2 || len(j.Categories[0].Features) != 2 {
		t.Fatalf("categories projection: got %+v", j.Categories)
	}
	f := j.Categories[0].Features[1]
	if f.ID == nil || *f.ID != "FEAT-002" || len(f.Steps) != 1 {
		t.Errorf("feature projection: got %+v", f)
	}
}
