package validator

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/nibzard/featurecheck/internal/features"
	"github.com/nibzard/featurecheck/internal/parallel"
)

var featureIDPattern = regexp.MustCompile(`^FEAT-[0-9]{3}$`)

// unknownSubject names a feature that has no id.
const unknownSubject = "UNKNOWN"

// Options controls validation behavior.
type Options struct {
	// Reason decides whether a blocked feature explains itself.
	// If nil, DefaultReasonPolicy is used.
	Reason ReasonPolicy
	// Workers > 1 checks categories concurrently. Findings are still
	// returned in document order.
	Workers int
	// Schema is an optional project JSON Schema applied after the
	// built-in rules.
	Schema *Schema
}

func (o Options) reason() ReasonPolicy {
	if o.Reason == nil {
		return DefaultReasonPolicy()
	}
	return o.Reason
}

// Validate checks doc and returns its findings in rule and document order.
// It never mutates doc.
func Validate(doc *features.Document, opts Options) *Result {
	var findings []Finding

	root, ok := checkRoot(doc)
	findings = append(findings, root...)
	if !ok {
		return newResult(doc.Path, findings)
	}

	if len(doc.Categories) == 0 {
		findings = append(findings, warnf("", 0, CodeNoCategories,
			"no <category> found; features should be organized into categories"))
	}
	findings = append(findings, checkCategories(doc.Categories, opts)...)
	findings = append(findings, checkUniqueIDs(doc)...)
	findings = append(findings, checkCounters(doc)...)

	if opts.Schema != nil {
		findings = append(findings, opts.Schema.check(doc)...)
	}

	return newResult(doc.Path, findings)
}

// Counts returns the number of features and the number of complete ones.
func Counts(doc *features.Document) (total, completed int) {
	for _, f := range doc.Features {
		total++
		if features.Status(f.Status.Value) == features.StatusComplete {
			completed++
		}
	}
	return total, completed
}

// checkRoot reports root structure findings. ok is false when the root is
// not a features element and no further checks apply.
func checkRoot(doc *features.Document) (findings []Finding, ok bool) {
	if doc.Root.Name != features.RootName {
		return []Finding{errorf("", doc.Root.Line, CodeInvalidRoot,
			"root element must be <%s>, found <%s>", features.RootName, doc.Root.Name)}, false
	}

	if !doc.Project().Set() {
		findings = append(findings, warnf("", 0, CodeMissingProjectAttr,
			"attribute 'project' not found on <features>; recommended for organization"))
	}
	if !doc.Total().Set() {
		findings = append(findings, warnf("", 0, CodeMissingTotalAttr,
			"attribute 'total' not found on <features>; useful for tracking"))
	}
	if !doc.Completed().Set() {
		findings = append(findings, warnf("", 0, CodeMissingCompletedAttr,
			"attribute 'completed' not found on <features>; useful for tracking"))
	}
	return findings, true
}

func checkCategories(categories []*features.Category, opts Options) []Finding {
	policy := opts.reason()
	if opts.Workers <= 1 || len(categories) < 2 {
		var findings []Finding
		for _, c := range categories {
			findings = append(findings, checkCategory(c, policy)...)
		}
		return findings
	}

	// checkCategory never fails, so neither does Map.
	perCategory, _ := parallel.Map(context.Background(), opts.Workers, categories,
		func(c *features.Category) ([]Finding, error) {
			return checkCategory(c, policy), nil
		})
	var findings []Finding
	for _, fs := range perCategory {
		findings = append(findings, fs...)
	}
	return findings
}

func checkCategory(c *features.Category, policy ReasonPolicy) []Finding {
	var findings []Finding

	name := c.Name.Value
	if !c.Name.Set() {
		name = "UNNAMED"
		findings = append(findings, errorf("", c.Line, CodeMissingCategoryName,
			"<category> has no 'name' attribute"))
	}
	if len(c.Features) == 0 {
		findings = append(findings, warnf("", c.Line, CodeEmptyCategory,
			"category '%s' contains no <feature>", name))
	}

	for _, f := range c.Features {
		findings = append(findings, checkFeature(f, policy)...)
	}
	return findings
}

// checkFeature applies every per-feature rule; none of them short-circuit.
func checkFeature(f *features.Feature, policy ReasonPolicy) []Finding {
	var findings []Finding
	id := f.ID.Value
	line := f.Line

	switch {
	case !f.ID.Set():
		id = unknownSubject
		findings = append(findings, errorf(id, line, CodeMissingID, "feature has no 'id' attribute"))
	case !featureIDPattern.MatchString(id):
		findings = append(findings, errorf(id, line, CodeInvalidIDFormat,
			"id '%s' is invalid; expected format FEAT-XXX (3 digits, e.g. FEAT-001)", id))
	}

	status := features.Status(f.Status.Value)
	switch {
	case !f.Status.Set():
		findings = append(findings, errorf(id, line, CodeMissingStatus, "feature has no 'status' attribute"))
	case !status.Valid():
		findings = append(findings, errorf(id, line, CodeInvalidStatus,
			"status '%s' is invalid; accepted values: %s", status, joinStatuses()))
	}

	priority := features.Priority(f.Priority.Value)
	switch {
	case !f.Priority.Set():
		findings = append(findings, errorf(id, line, CodeMissingPriority, "feature has no 'priority' attribute"))
	case !priority.Valid():
		findings = append(findings, errorf(id, line, CodeInvalidPriority,
			"priority '%s' is invalid; accepted values: %s", priority, joinPriorities()))
	}

	switch {
	case f.Description == nil:
		findings = append(findings, errorf(id, line, CodeMissingDescription, "feature has no <description>"))
	case strings.TrimSpace(f.Description.Text) == "":
		findings = append(findings, errorf(id, f.Description.Line, CodeEmptyDescription, "<description> is empty"))
	}

	if f.Steps == nil {
		findings = append(findings, errorf(id, line, CodeMissingSteps, "feature has no <steps>"))
	} else {
		if len(f.Steps.Items) == 0 {
			findings = append(findings, errorf(id, f.Steps.Line, CodeEmptySteps, "<steps> contains no <step>"))
		}
		for i, step := range f.Steps.Items {
			if strings.TrimSpace(step.Text) == "" {
				findings = append(findings, errorf(id, step.Line, CodeEmptyStep, "step #%d is empty", i+1))
			}
		}
	}

	if f.Notes == nil {
		findings = append(findings, warnf(id, line, CodeMissingNotes,
			"feature has no <notes>; recommended for references and extra context"))
	}

	if status == features.StatusBlocked && (f.Notes == nil || !policy.HasReason(f.Notes.Text)) {
		findings = append(findings, warnf(id, line, CodeBlockedWithoutReason,
			"feature is marked 'blocked' but <notes> gives no explicit reason"))
	}

	return findings
}

// checkUniqueIDs flags the second and later uses of an id.
func checkUniqueIDs(doc *features.Document) []Finding {
	var findings []Finding
	firstLine := make(map[string]int)
	for _, f := range doc.Features {
		id := f.ID.Value
		if id == "" {
			continue
		}
		if first, seen := firstLine[id]; seen {
			findings = append(findings, errorf(id, f.Line, CodeDuplicateID,
				"duplicate id '%s' (first used on line %d)", id, first))
			continue
		}
		firstLine[id] = f.Line
	}
	return findings
}

// checkCounters compares the declared counters with the actual counts.
// It only runs when both attributes are present.
func checkCounters(doc *features.Document) []Finding {
	totalAttr, completedAttr := doc.Total(), doc.Completed()
	if !totalAttr.Present || !completedAttr.Present {
		return nil
	}

	declaredTotal, errTotal := parseCounter(totalAttr.Value)
	declaredCompleted, errCompleted := parseCounter(completedAttr.Value)
	if errTotal != nil || errCompleted != nil {
		return []Finding{errorf("", doc.Root.Line, CodeInvalidCounter,
			"attributes 'total' and 'completed' must be integers")}
	}

	var findings []Finding
	total, completed := Counts(doc)
	if !declaredTotal.equals(total) {
		findings = append(findings, warnf("", 0, CodeIncorrectTotal,
			"attribute 'total' is incorrect: expected %d, found %s", total, declaredTotal))
	}
	if !declaredCompleted.equals(completed) {
		findings = append(findings, warnf("", 0, CodeIncorrectCompleted,
			"attribute 'completed' is incorrect: expected %d, found %s", completed, declaredCompleted))
	}
	return findings
}

// counter is a declared counter value. Integers too large for an int are
// kept as text; no document can hold that many features.
type counter struct {
	n        int
	overflow string
}

func parseCounter(s string) (counter, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.Atoi(s)
	if errors.Is(err, strconv.ErrRange) {
		return counter{overflow: strings.TrimPrefix(s, "+")}, nil
	}
	return counter{n: n}, err
}

func (c counter) equals(n int) bool {
	return c.overflow == "" && c.n == n
}

func (c counter) String() string {
	if c.overflow != "" {
		return c.overflow
	}
	return strconv.Itoa(c.n)
}

func joinStatuses() string {
	parts := make([]string, len(features.Statuses))
	for i, s := range features.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func joinPriorities() string {
	parts := make([]string, len(features.Priorities))
	for i, p := range features.Priorities {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
