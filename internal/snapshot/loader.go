package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// snapshotSchema is the JSON Schema every snapshot document must satisfy
// before it is decoded. Scrapers that produce snapshots are external
// collaborators; the schema is the contract at that boundary.
const snapshotSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["root"],
  "properties": {
    "url": {"type": "string"},
    "title": {"type": "string"},
    "captured_at": {"type": "string"},
    "root": {"$ref": "#/$defs/element"}
  },
  "$defs": {
    "element": {
      "type": "object",
      "required": ["id", "tag"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "tag": {"type": "string", "minLength": 1},
        "text": {"type": "string"},
        "attributes": {
          "type": "object",
          "additionalProperties": {"type": "string"}
        },
        "children": {
          "type": "array",
          "items": {"$ref": "#/$defs/element"}
        }
      }
    }
  }
}`

var compiledSchema = func() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("snapshot.schema.json", strings.NewReader(snapshotSchema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("snapshot.schema.json")
}()

// Load loads and validates a snapshot from a JSON file.
func Load(path string) (*Snapshot, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)

	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to open snapshot directory", Err: err}
	}
	defer root.Close()

	file, err := root.Open(base)
	if err != nil {
		return nil, &Error{Path: path, Message: "failed to open snapshot", Err: err}
	}
	defer file.Close()

	s, err := LoadFromReader(file)
	if err != nil {
		var serr *Error
		if errors.As(err, &serr) {
			serr.Path = path
		}
		return nil, err
	}
	return s, nil
}

// LoadFromReader loads and validates a snapshot from an io.Reader.
func LoadFromReader(r io.Reader) (*Snapshot, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Message: "failed to read snapshot", Err: err}
	}

	// Schema validation first, against the raw document
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &Error{Message: fmt.Sprintf("invalid JSON: %v", err), Err: err}
	}

	if err := compiledSchema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &Error{Message: formatSchemaError(verr), Err: err}
		}
		return nil, &Error{Message: err.Error(), Err: err}
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to decode snapshot: %v", err), Err: err}
	}

	// Structural checks the schema cannot express
	if duplicate := s.buildIndex(); duplicate != "" {
		return nil, &Error{Message: fmt.Sprintf("duplicate element ID: %s", duplicate)}
	}

	return &s, nil
}

// formatSchemaError flattens a JSON Schema validation error into a
// readable message listing every leaf violation.
func formatSchemaError(err *jsonschema.ValidationError) string {
	var messages []string

	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 && e.Message != "" {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(err)

	if len(messages) == 0 {
		return "schema validation failed"
	}
	return fmt.Sprintf("schema validation failed:\n  - %s", strings.Join(messages, "\n  - "))
}
