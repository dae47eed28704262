package validator

import "fmt"

// Severity classifies a finding.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Code identifies the rule that produced a finding.
type Code string

// Load failures.
const (
	CodeMissingFile     Code = "MissingFile"
	CodeMalformedInput  Code = "MalformedInput"
	CodeUnreadableInput Code = "UnreadableInput"
)

// Root and category rules.
const (
	CodeInvalidRoot          Code = "InvalidRoot"
	CodeMissingProjectAttr   Code = "MissingProjectAttr"
	CodeMissingTotalAttr     Code = "MissingTotalAttr"
	CodeMissingCompletedAttr Code = "MissingCompletedAttr"
	CodeNoCategories         Code = "NoCategories"
	CodeMissingCategoryName  Code = "MissingCategoryName"
	CodeEmptyCategory        Code = "EmptyCategory"
)

// Feature rules.
const (
	CodeMissingID            Code = "MissingId"
	CodeInvalidIDFormat      Code = "InvalidIdFormat"
	CodeMissingStatus        Code = "MissingStatus"
	CodeInvalidStatus        Code = "InvalidStatus"
	CodeMissingPriority      Code = "MissingPriority"
	CodeInvalidPriority      Code = "InvalidPriority"
	CodeMissingDescription   Code = "MissingDescription"
	CodeEmptyDescription     Code = "EmptyDescription"
	CodeMissingSteps         Code = "MissingSteps"
	CodeEmptySteps           Code = "EmptySteps"
	CodeEmptyStep            Code = "EmptyStep"
	CodeMissingNotes         Code = "MissingNotes"
	CodeBlockedWithoutReason Code = "BlockedWithoutReason"
	CodeDuplicateID          Code = "DuplicateId"
)

// Document-wide rules.
const (
	CodeInvalidCounter     Code = "InvalidCounter"
	CodeIncorrectTotal     Code = "IncorrectTotal"
	CodeIncorrectCompleted Code = "IncorrectCompleted"
	CodeSchemaViolation    Code = "SchemaViolation"
)

// Finding is a single classified validation result.
type Finding struct {
	// Subject is the feature id (or schema path) the finding is about.
	// Empty means the finding is global.
	Subject  string   `json:"subject,omitempty"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	// Line is the source line of the offending element, 0 if unknown.
	Line int `json:"line,omitempty"`
}

func (f Finding) String() string {
	subject := f.Subject
	if subject == "" {
		subject = "GLOBAL"
	}
	s := fmt.Sprintf("[%s] %s: %s", f.Severity, subject, f.Message)
	if f.Line > 0 {
		s += fmt.Sprintf(" (line %d)", f.Line)
	}
	return s
}

func errorf(subject string, line int, code Code, format string, args ...any) Finding {
	return Finding{Subject: subject, Code: code, Message: fmt.Sprintf(format, args...), Severity: SeverityError, Line: line}
}

func warnf(subject string, line int, code Code, format string, args ...any) Finding {
	return Finding{Subject: subject, Code: code, Message: fmt.Sprintf(format, args...), Severity: SeverityWarning, Line: line}
}

// Result contains validation results for one document.
type Result struct {
	Path     string    `json:"path,omitempty"`
	Valid    bool      `json:"valid"`
	Findings []Finding `json:"findings"`
}

func newResult(path string, findings []Finding) *Result {
	if findings == nil {
		findings = make([]Finding, 0)
	}
	r := &Result{Path: path, Valid: true, Findings: findings}
	for _, f := range findings {
		if f.Severity == SeverityError {
			r.Valid = false
			break
		}
	}
	return r
}

// Errors returns the ERROR findings in order.
func (r *Result) Errors() []Finding {
	return r.filter(SeverityError)
}

// Warnings returns the WARNING findings in order.
func (r *Result) Warnings() []Finding {
	return r.filter(SeverityWarning)
}

func (r *Result) filter(sev Severity) []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == sev {
			out = append(out, f)
		}
	}
	return out
}

// Has reports whether any finding carries the given code.
func (r *Result) Has(code Code) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Repairable reports whether the document is valid and its only fixable
// problems are counter mismatches, i.e. whether auto-repair applies.
func (r *Result) Repairable() bool {
	return r.Valid && (r.Has(CodeIncorrectTotal) || r.Has(CodeIncorrectCompleted))
}
