package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/featurecheck/internal/validator"
)

const viewerDoc = `<features project="demo" total="5" completed="1">
  <category name="Core">
    <feature id="FEAT-001" status="complete" priority="high">
      <description>Set up project</description>
      <steps><step>init</step></steps>
      <notes>done</notes>
    </feature>
    <feature id="FEAT-002" status="blocked" priority="low">
      <description>Wait for vendor</description>
      <steps><step>ask</step></steps>
      <notes>Blocked: contract</notes>
    </feature>
  </category>
</features>
`

func newTestModel(t *testing.T, content string) *tuiModel {
	t.Helper()
	path := filepath.Join(t.TempDir(), "features.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	m := newTUIModel(path, validator.Options{}, WithRefreshInterval(5*time.Second))
	m.Init()
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewShowsOverview(t *testing.T) {
	m := newTestModel(t, viewerDoc)
	out := m.View()

	for _, want := range []string{
		"Project: demo",
		"Pending: 0  In progress: 0  Complete: 1  Blocked: 1",
		"Counters: total 5 (actual 2)  completed 1 (actual 1)",
		"Validation: PASS (with warnings)",
		"[WARNING] GLOBAL: attribute 'total' is incorrect: expected 2, found 5",
		"x [FEAT-001] (high) Set up project",
		"Refreshing every 5s",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestFilterKeys(t *testing.T) {
	m := newTestModel(t, viewerDoc)

	m.Update(key("4"))
	out := m.View()
	if !strings.Contains(out, "Filter: blocked") || !strings.Contains(out, "FEAT-002") {
		t.Errorf("blocked filter view:\n%s", out)
	}
	if strings.Contains(out, "FEAT-001") {
		t.Errorf("complete feature shown under blocked filter:\n%s", out)
	}

	m.Update(key("0"))
	if out := m.View(); strings.Contains(out, "Filter:") || !strings.Contains(out, "FEAT-001") {
		t.Errorf("cleared filter view:\n%s", out)
	}
}

func TestToggleFindingsAndHelp(t *testing.T) {
	m := newTestModel(t, viewerDoc)

	m.Update(key("f"))
	if out := m.View(); strings.Contains(out, "[WARNING]") {
		t.Errorf("findings still shown after toggle:\n%s", out)
	}

	m.Update(key("h"))
	if out := m.View(); !strings.Contains(out, "Keyboard Shortcuts") {
		t.Errorf("help not shown:\n%s", out)
	}
}

func TestRefreshPicksUpChanges(t *testing.T) {
	m := newTestModel(t, viewerDoc)
	fixed := strings.Replace(viewerDoc, `total="5"`, `total="2"`, 1)
	if err := os.WriteFile(m.path, []byte(fixed), 0644); err != nil {
		t.Fatal(err)
	}

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if out := m.View(); !strings.Contains(out, "Validation: PASS  errors: 0  warnings: 0") {
		t.Errorf("view not refreshed:\n%s", out)
	}
}

func TestViewLoadFailure(t *testing.T) {
	m := newTUIModel(filepath.Join(t.TempDir(), "missing.xml"), validator.Options{})
	m.Init()
	out := m.View()
	if !strings.Contains(out, "Validation: FAIL") || !strings.Contains(out, "file not found") {
		t.Errorf("load failure view:\n%s", out)
	}
}

func TestIsTTY(t *testing.T) {
	if IsTTY(&bytes.Buffer{}) {
		t.Error("buffer reported as TTY")
	}
}
