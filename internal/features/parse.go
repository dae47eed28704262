package features

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
)

var (
	// ErrMissingFile reports that the input source does not exist.
	ErrMissingFile = errors.New("file not found")
	// ErrMalformedInput reports a syntax-level parse failure.
	ErrMalformedInput = errors.New("malformed XML")
)

// MalformedInputError describes where parsing failed.
type MalformedInputError struct {
	Line int
	Msg  string
}

func (e *MalformedInputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed XML: line %d: %s", e.Line, e.Msg)
	}
	return "malformed XML: " + e.Msg
}

// Is makes errors.Is(err, ErrMalformedInput) match.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// Load reads and parses a features document from path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return nil, fmt.Errorf("read features file: %w", err)
	}

	doc, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// utf8BOM is the encoded byte order mark some editors prepend.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse parses a features document. A leading UTF-8 byte order mark is
// skipped. Syntax errors are returned as *MalformedInputError.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read features document: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true
	lines := &lineCounter{data: data, line: 1}

	var (
		root   *Element
		stack  []*Element
		prolog []Node
		epilog []Node
	)

	// appendNode places n under the open element, or before/after the root.
	appendNode := func(n Node) {
		switch {
		case len(stack) > 0:
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, n)
		case root == nil:
			prolog = append(prolog, n)
		default:
			epilog = append(epilog, n)
		}
	}

	for {
		start := dec.InputOffset()
		tok, err := dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, syntaxError(dec, err)
		}
		// Lines refer to where a token begins, not where it ends.
		line := lines.at(start)

		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: qualifiedName(t.Name), Line: line}
			for _, a := range t.Attr {
				name := qualifiedName(a.Name)
				if _, dup := el.Attr(name); dup {
					return nil, &MalformedInputError{
						Line: line,
						Msg:  fmt.Sprintf("duplicate attribute %q on <%s>", name, el.Name),
					}
				}
				el.Attrs = append(el.Attrs, Attribute{Name: name, Value: a.Value})
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, &MalformedInputError{Line: line, Msg: "junk after document element"}
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, el)

		case xml.EndElement:
			name := qualifiedName(t.Name)
			if len(stack) == 0 {
				return nil, &MalformedInputError{Line: line, Msg: fmt.Sprintf("unexpected end element </%s>", name)}
			}
			open := stack[len(stack)-1]
			if open.Name != name {
				return nil, &MalformedInputError{
					Line: line,
					Msg:  fmt.Sprintf("element <%s> opened on line %d closed by </%s>", open.Name, open.Line, name),
				}
			}
			stack = stack[:len(stack)-1]

		case xml.CharData:
			if len(stack) == 0 {
				if strings.TrimSpace(string(t)) != "" {
					return nil, &MalformedInputError{Line: line, Msg: "text outside the document element"}
				}
				continue
			}
			parent := stack[len(stack)-1]
			if n := len(parent.Children); n > 0 {
				if prev, ok := parent.Children[n-1].(CharData); ok {
					parent.Children[n-1] = prev + CharData(t)
					continue
				}
			}
			parent.Children = append(parent.Children, CharData(t))

		case xml.Comment:
			appendNode(Comment(t))

		case xml.ProcInst:
			// The declaration is regenerated on write.
			if t.Target == "xml" {
				continue
			}
			appendNode(ProcInst{Target: t.Target, Inst: string(t.Inst)})

		case xml.Directive:
			appendNode(Directive(t))
		}
	}

	if len(stack) > 0 {
		open := stack[len(stack)-1]
		line, _ := dec.InputPos()
		return nil, &MalformedInputError{
			Line: line,
			Msg:  fmt.Sprintf("unclosed element <%s> opened on line %d", open.Name, open.Line),
		}
	}
	if root == nil {
		return nil, &MalformedInputError{Msg: "no document element found"}
	}

	return newDocument(root, prolog, epilog), nil
}

// lineCounter maps byte offsets to 1-based line numbers. Offsets must be
// queried in non-decreasing order.
type lineCounter struct {
	data []byte
	pos  int64
	line int
}

func (c *lineCounter) at(offset int64) int {
	if offset > int64(len(c.data)) {
		offset = int64(len(c.data))
	}
	if offset > c.pos {
		c.line += bytes.Count(c.data[c.pos:offset], []byte{'\n'})
		c.pos = offset
	}
	return c.line
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func syntaxError(dec *xml.Decoder, err error) error {
	var se *xml.SyntaxError
	if errors.As(err, &se) {
		return &MalformedInputError{Line: se.Line, Msg: se.Msg}
	}
	line, _ := dec.InputPos()
	return &MalformedInputError{Line: line, Msg: err.Error()}
}
