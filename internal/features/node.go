package features

import "strings"

// Node is a single node of the generic document tree.
// It is implemented by *Element, CharData, Comment, ProcInst and Directive.
type Node interface {
	node()
}

// Attribute is an element attribute with its raw (possibly prefixed) name.
type Attribute struct {
	Name  string
	Value string
}

// Element is an XML element with ordered attributes and children.
type Element struct {
	Name     string
	Attrs    []Attribute
	Children []Node
	Line     int
}

// CharData is character data between tags, already unescaped.
type CharData string

// Comment is the content of an XML comment, without the delimiters.
type Comment string

// ProcInst is a processing instruction other than the XML declaration.
type ProcInst struct {
	Target string
	Inst   string
}

// Directive is a <!...> directive such as a DOCTYPE, without the delimiters.
type Directive string

func (*Element) node()  {}
func (CharData) node()  {}
func (Comment) node()   {}
func (ProcInst) node()  {}
func (Directive) node() {}

// Attr returns the value of the named attribute and whether it is present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr updates the named attribute in place, or appends it if absent.
func (e *Element) SetAttr(name, value string) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			e.Attrs[i].Value = value
			return
		}
	}
	e.Attrs = append(e.Attrs, Attribute{Name: name, Value: value})
}

// Elements returns the direct child elements in document order.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// ElementsNamed returns the direct child elements with the given name.
func (e *Element) ElementsNamed(name string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			out = append(out, el)
		}
	}
	return out
}

// First returns the first direct child element with the given name, or nil.
func (e *Element) First(name string) *Element {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// Text returns the concatenated character data directly under the element.
func (e *Element) Text() string {
	var b strings.Builder
	for _, c := range e.Children {
		if cd, ok := c.(CharData); ok {
			b.WriteString(string(cd))
		}
	}
	return b.String()
}

// isLeaf reports whether the element holds nothing but character data.
func (e *Element) isLeaf() bool {
	for _, c := range e.Children {
		if _, ok := c.(CharData); !ok {
			return false
		}
	}
	return true
}

// isMixed reports whether the element interleaves child nodes with
// non-whitespace character data.
func (e *Element) isMixed() bool {
	if e.isLeaf() {
		return false
	}
	for _, c := range e.Children {
		if cd, ok := c.(CharData); ok && strings.TrimSpace(string(cd)) != "" {
			return true
		}
	}
	return false
}

// walk visits every descendant element of e in document order.
func (e *Element) walk(visit func(*Element)) {
	for _, c := range e.Children {
		if el, ok := c.(*Element); ok {
			visit(el)
			el.walk(visit)
		}
	}
}
