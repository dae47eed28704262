// Package repair rewrites a document's root counters so they match its
// content and persists the result atomically.
//
// Only the total and completed attributes are ever changed. Everything else
// survives the round trip through features.Document.Encode: element and
// attribute names, attribute order, comments and leaf text.
package repair

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/nibzard/featurecheck/internal/features"
	"github.com/nibzard/featurecheck/internal/validator"
)

// ErrStructuralErrors is returned when a repair is requested for a document
// whose validation produced ERROR findings.
var ErrStructuralErrors = errors.New("document has structural errors; refusing to repair")

// RepairFailure reports a repair that could not be written.
// The original file is left untouched.
type RepairFailure struct {
	Path string
	Err  error
}

func (e *RepairFailure) Error() string {
	return fmt.Sprintf("repair %s: %v", e.Path, e.Err)
}

func (e *RepairFailure) Unwrap() error {
	return e.Err
}

// FileWriter persists encoded documents.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// AtomicWriter writes through features.WriteFileAtomic.
type AtomicWriter struct{}

// WriteFile implements FileWriter.
func (AtomicWriter) WriteFile(path string, data []byte) error {
	return features.WriteFileAtomic(path, data)
}

// Change describes the counter update made by Fix.
type Change struct {
	TotalBefore     features.Attr
	CompletedBefore features.Attr
	Total           int
	Completed       int
}

// Changed reports whether Fix altered either counter.
func (c *Change) Changed() bool {
	return !c.TotalBefore.Present || c.TotalBefore.Value != strconv.Itoa(c.Total) ||
		!c.CompletedBefore.Present || c.CompletedBefore.Value != strconv.Itoa(c.Completed)
}

func (c *Change) String() string {
	return fmt.Sprintf("total=%d completed=%d", c.Total, c.Completed)
}

// Repairer fixes and persists documents.
type Repairer struct {
	// Writer persists the re-encoded document. If nil, AtomicWriter is used.
	Writer FileWriter
}

// New returns a Repairer that writes atomically.
func New() *Repairer {
	return &Repairer{Writer: AtomicWriter{}}
}

func (r *Repairer) writer() FileWriter {
	if r == nil || r.Writer == nil {
		return AtomicWriter{}
	}
	return r.Writer
}

// Fix sets the root total and completed attributes to the actual counts.
// prior must be the validation result for doc; Fix refuses to touch a
// document that has ERROR findings. Applying Fix twice is a no-op the
// second time.
func (r *Repairer) Fix(doc *features.Document, prior *validator.Result) (*Change, error) {
	if prior != nil && !prior.Valid {
		return nil, ErrStructuralErrors
	}

	total, completed := validator.Counts(doc)
	change := &Change{
		TotalBefore:     doc.Total(),
		CompletedBefore: doc.Completed(),
		Total:           total,
		Completed:       completed,
	}
	doc.SetAttr("total", strconv.Itoa(total))
	doc.SetAttr("completed", strconv.Itoa(completed))
	return change, nil
}

// Persist encodes doc and writes it back to doc.Path.
func (r *Repairer) Persist(doc *features.Document) error {
	if doc.Path == "" {
		return &RepairFailure{Err: errors.New("document has no path")}
	}
	data, err := doc.Marshal()
	if err != nil {
		return &RepairFailure{Path: doc.Path, Err: fmt.Errorf("encoding document: %w", err)}
	}
	if err := r.writer().WriteFile(doc.Path, data); err != nil {
		return &RepairFailure{Path: doc.Path, Err: err}
	}
	return nil
}

// Apply runs Fix and, when the counters changed, Persist.
func (r *Repairer) Apply(doc *features.Document, prior *validator.Result) (*Change, error) {
	change, err := r.Fix(doc, prior)
	if err != nil {
		return nil, err
	}
	if !change.Changed() {
		return change, nil
	}
	if err := r.Persist(doc); err != nil {
		return change, err
	}
	return change, nil
}
