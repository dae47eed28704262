package features

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	indent    = "  "
)

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"\n", "&#xA;",
		"\r", "&#xD;",
		"\t", "&#x9;",
	)
)

// Encode writes the document with an XML declaration and 2-space indentation.
// Leaf element text is written unchanged; whitespace between elements is
// replaced by the canonical indentation.
func (d *Document) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(xmlHeader)
	for _, n := range d.Prolog {
		writeNode(bw, n, 0)
	}
	writeElement(bw, d.Root, 0)
	bw.WriteByte('\n')
	for _, n := range d.Epilog {
		writeNode(bw, n, 0)
	}
	return bw.Flush()
}

// Marshal returns the encoded document.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeNode writes a non-element node on its own line.
func writeNode(w *bufio.Writer, n Node, depth int) {
	switch v := n.(type) {
	case *Element:
		writeElement(w, v, depth)
		w.WriteByte('\n')
	case CharData:
		text := strings.TrimSpace(string(v))
		if text == "" {
			return
		}
		w.WriteString(strings.Repeat(indent, depth))
		w.WriteString(textEscaper.Replace(text))
		w.WriteByte('\n')
	case Comment:
		fmt.Fprintf(w, "%s<!--%s-->\n", strings.Repeat(indent, depth), string(v))
	case ProcInst:
		if v.Inst == "" {
			fmt.Fprintf(w, "%s<?%s?>\n", strings.Repeat(indent, depth), v.Target)
		} else {
			fmt.Fprintf(w, "%s<?%s %s?>\n", strings.Repeat(indent, depth), v.Target, v.Inst)
		}
	case Directive:
		fmt.Fprintf(w, "%s<!%s>\n", strings.Repeat(indent, depth), string(v))
	}
}

// writeElement writes el without a trailing newline. Mixed content is
// written inline so its text survives unchanged.
func writeElement(w *bufio.Writer, el *Element, depth int) {
	pad := strings.Repeat(indent, depth)
	w.WriteString(pad)
	writeStartTag(w, el)

	if el.isMixed() {
		w.WriteByte('>')
		for _, c := range el.Children {
			writeInline(w, c)
		}
		fmt.Fprintf(w, "</%s>", el.Name)
		return
	}

	if el.isLeaf() {
		text := el.Text()
		if text == "" {
			w.WriteString(" />")
			return
		}
		w.WriteByte('>')
		w.WriteString(textEscaper.Replace(text))
		fmt.Fprintf(w, "</%s>", el.Name)
		return
	}

	w.WriteString(">\n")
	for _, c := range el.Children {
		writeNode(w, c, depth+1)
	}
	w.WriteString(pad)
	fmt.Fprintf(w, "</%s>", el.Name)
}

// writeStartTag writes the tag name and attributes without the closing '>'.
func writeStartTag(w *bufio.Writer, el *Element) {
	w.WriteByte('<')
	w.WriteString(el.Name)
	for _, a := range el.Attrs {
		fmt.Fprintf(w, ` %s="%s"`, a.Name, attrEscaper.Replace(a.Value))
	}
}

// writeInline writes n exactly as parsed, with no added whitespace.
func writeInline(w *bufio.Writer, n Node) {
	switch v := n.(type) {
	case *Element:
		writeStartTag(w, v)
		if len(v.Children) == 0 {
			w.WriteString(" />")
			return
		}
		w.WriteByte('>')
		for _, c := range v.Children {
			writeInline(w, c)
		}
		fmt.Fprintf(w, "</%s>", v.Name)
	case CharData:
		w.WriteString(textEscaper.Replace(string(v)))
	case Comment:
		fmt.Fprintf(w, "<!--%s-->", string(v))
	case ProcInst:
		if v.Inst == "" {
			fmt.Fprintf(w, "<?%s?>", v.Target)
		} else {
			fmt.Fprintf(w, "<?%s %s?>", v.Target, v.Inst)
		}
	case Directive:
		fmt.Fprintf(w, "<!%s>", string(v))
	}
}

// WriteFileAtomic writes data to path through a temporary file in the same
// directory that is renamed over path once fully written and synced.
// On any failure the original file is left untouched.
func WriteFileAtomic(path string, data []byte) (err error) {
	perm := os.FileMode(0644)
	if info, statErr := os.Stat(path); statErr == nil {
		perm = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
