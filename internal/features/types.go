package features

// RootName is the expected name of the document element.
const RootName = "features"

// Status represents a feature status.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusComplete   Status = "complete"
	StatusBlocked    Status = "blocked"
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusPending, StatusInProgress, StatusComplete, StatusBlocked}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

// Priority represents a feature priority.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Priorities lists the valid priorities from highest to lowest.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	for _, v := range Priorities {
		if p == v {
			return true
		}
	}
	return false
}

// Attr is an optional attribute value.
// Present distinguishes an absent attribute from an empty one.
type Attr struct {
	Value   string
	Present bool
}

// Set reports whether the attribute is present and non-empty.
func (a Attr) Set() bool {
	return a.Present && a.Value != ""
}

func attrOf(el *Element, name string) Attr {
	v, ok := el.Attr(name)
	return Attr{Value: v, Present: ok}
}

// TextChild is a leaf child element such as <description> or <step>.
type TextChild struct {
	Text string
	Line int
}

// Steps is the <steps> child of a feature.
type Steps struct {
	Items []*TextChild
	Line  int
}

// Feature is a single <feature> element.
type Feature struct {
	ID          Attr
	Status      Attr
	Priority    Attr
	Description *TextChild
	Steps       *Steps
	Notes       *TextChild
	Line        int
}

// Category is a <category> element and the features directly inside it.
type Category struct {
	Name     Attr
	Features []*Feature
	Line     int
}

// Document is a parsed feature tracking document.
type Document struct {
	// Path is the file the document was loaded from, if any.
	Path string

	Root   *Element
	Prolog []Node
	Epilog []Node

	// Categories holds every <category> below the root in document order.
	Categories []*Category
	// Features holds every <feature> below the root in document order,
	// whether or not it sits directly inside a category.
	Features []*Feature
}

// Project returns the root "project" attribute.
func (d *Document) Project() Attr { return attrOf(d.Root, "project") }

// Total returns the root "total" attribute.
func (d *Document) Total() Attr { return attrOf(d.Root, "total") }

// Completed returns the root "completed" attribute.
func (d *Document) Completed() Attr { return attrOf(d.Root, "completed") }

// SetAttr updates or appends a root attribute.
func (d *Document) SetAttr(name, value string) {
	d.Root.SetAttr(name, value)
}

// StatusCounts returns the number of features per status.
// Features with an unknown status are counted under their raw value.
func (d *Document) StatusCounts() map[Status]int {
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, f := range d.Features {
		counts[Status(f.Status.Value)]++
	}
	return counts
}

// FindFeature returns the first feature with the given id, or nil.
func (d *Document) FindFeature(id string) *Feature {
	for _, f := range d.Features {
		if f.ID.Value == id {
			return f
		}
	}
	return nil
}

// newDocument builds the typed view over a parsed root element.
func newDocument(root *Element, prolog, epilog []Node) *Document {
	doc := &Document{Root: root, Prolog: prolog, Epilog: epilog}
	byElement := make(map[*Element]*Feature)
	var categories []*Element

	root.walk(func(el *Element) {
		switch el.Name {
		case "category":
			categories = append(categories, el)
		case "feature":
			f := newFeature(el)
			byElement[el] = f
			doc.Features = append(doc.Features, f)
		}
	})

	for _, el := range categories {
		c := &Category{Name: attrOf(el, "name"), Line: el.Line}
		for _, child := range el.ElementsNamed("feature") {
			c.Features = append(c.Features, byElement[child])
		}
		doc.Categories = append(doc.Categories, c)
	}
	return doc
}

func newFeature(el *Element) *Feature {
	f := &Feature{
		ID:       attrOf(el, "id"),
		Status:   attrOf(el, "status"),
		Priority: attrOf(el, "priority"),
		Line:     el.Line,
	}
	if d := el.First("description"); d != nil {
		f.Description = &TextChild{Text: d.Text(), Line: d.Line}
	}
	if s := el.First("steps"); s != nil {
		f.Steps = &Steps{Line: s.Line}
		for _, step := range s.ElementsNamed("step") {
			f.Steps.Items = append(f.Steps.Items, &TextChild{Text: step.Text(), Line: step.Line})
		}
	}
	if n := el.First("notes"); n != nil {
		f.Notes = &TextChild{Text: n.Text(), Line: n.Line}
	}
	return f
}
