package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	openingFence = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	closingFence = regexp.MustCompile("```\\s*$")
)

// Schema is a JSON Schema that decoded model output must satisfy.
type Schema struct {
	// Name identifies the schema in the compile cache, e.g. "interview-evaluation".
	Name string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// schemaCache caches compiled schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// GenerateText runs a request and returns the trimmed text. An empty reply
// is reported as ErrMalformedOutput.
func GenerateText(ctx context.Context, p Provider, req Request) (string, error) {
	resp, err := p.Generate(ctx, req)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", &ErrMalformedOutput{Err: errors.New("empty response")}
	}
	return text, nil
}

// GenerateJSON runs a request in JSON mode and decodes the reply into out.
func GenerateJSON(ctx context.Context, p Provider, req Request, schema *Schema, out any) error {
	req.JSON = true

	resp, err := p.Generate(ctx, req)
	if err != nil {
		return err
	}

	return DecodeJSON(resp.Text, schema, out)
}

// DecodeJSON extracts the first {...} block of raw model output (after
// stripping code fences), validates it against schema when given and
// unmarshals it into out.
func DecodeJSON(raw string, schema *Schema, out any) error {
	block, err := extractObject(raw)
	if err != nil {
		return &ErrMalformedOutput{Raw: raw, Err: err}
	}

	var parsed any
	if err := json.Unmarshal([]byte(block), &parsed); err != nil {
		return &ErrMalformedOutput{Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	if schema != nil {
		compiled, err := compileSchema(schema)
		if err != nil {
			return fmt.Errorf("compile schema %q: %w", schema.Name, err)
		}
		if err := compiled.Validate(parsed); err != nil {
			return &ErrMalformedOutput{Raw: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
		}
	}

	if err := json.Unmarshal([]byte(block), out); err != nil {
		return &ErrMalformedOutput{Raw: raw, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

func extractObject(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = openingFence.ReplaceAllString(cleaned, "")
	cleaned = closingFence.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end < start {
		return "", errors.New("no JSON object found")
	}
	return cleaned[start : end+1], nil
}

// compileSchema returns a cached compiled schema or compiles and caches it.
func compileSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a plain decoded JSON value, not Go maps with typed slices.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}

// StringArray is a schema fragment for a list of strings.
func StringArray() map[string]any {
	return map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string"},
	}
}
