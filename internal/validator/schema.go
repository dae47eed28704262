package validator

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/nibzard/featurecheck/internal/features"
)

// Schema is a compiled project JSON Schema applied to a document's JSON
// projection (see features.DocumentJSON).
type Schema struct {
	schema *jsonschema.Schema
}

// CompileSchema loads and compiles the JSON Schema at path.
func CompileSchema(path string) (*Schema, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid schema path: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schema file not found: %s", absPath)
		}
		return nil, fmt.Errorf("read schema file: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	schema, err := compiler.Compile(absPath)
	if err != nil {
		return nil, fmt.Errorf("invalid schema file: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// CompileSchemaBytes compiles an in-memory JSON Schema registered under name.
func CompileSchemaBytes(name string, data []byte) (*Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	return &Schema{schema: schema}, nil
}

// check validates doc's JSON projection and reports each leaf violation.
func (s *Schema) check(doc *features.Document) []Finding {
	// Round-trip through JSON so the validator sees plain JSON values.
	data, err := json.Marshal(doc.JSON())
	if err != nil {
		return []Finding{errorf("", 0, CodeSchemaViolation, "failed to marshal document for schema validation: %v", err)}
	}
	var obj interface{}
	if err := json.Unmarshal(data, &obj); err != nil {
		return []Finding{errorf("", 0, CodeSchemaViolation, "failed to unmarshal document for schema validation: %v", err)}
	}

	err = s.schema.Validate(obj)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []Finding{errorf("", 0, CodeSchemaViolation, "%v", err)}
	}

	var findings []Finding
	collectSchemaErrors(&findings, ve)
	return findings
}

func collectSchemaErrors(findings *[]Finding, err *jsonschema.ValidationError) {
	if err == nil {
		return
	}

	if len(err.Causes) == 0 {
		*findings = append(*findings, errorf(schemaSubject(err.InstanceLocation), 0,
			CodeSchemaViolation, "%s", err.Message))
		return
	}

	for _, cause := range err.Causes {
		collectSchemaErrors(findings, cause)
	}
}

var pointerUnescaper = strings.NewReplacer("~1", "/", "~0", "~")

// schemaSubject turns an instance location such as
// "/categories/0/features/1/id" into "categories[0].features[1].id".
// The document root maps to "".
func schemaSubject(location string) string {
	var b strings.Builder
	for _, tok := range strings.Split(strings.TrimPrefix(location, "#"), "/") {
		if tok == "" {
			continue
		}
		tok = pointerUnescaper.Replace(tok)
		if _, err := strconv.Atoi(tok); err == nil {
			fmt.Fprintf(&b, "[%s]", tok)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(tok)
	}
	return b.String()
}
