// Package validation wraps the jsonschema engine behind a small helper API:
// schemas are compiled once at package load, applied to raw request input
// (query, body, route params), and every engine failure is normalized into
// the apperror validation variant with a field-path → message-list map.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"proofdeck/internal/apperror"
)

// Schema is a compiled validation schema plus the raw document, which is kept
// for default-value and coercion metadata. Schemas are immutable after
// compilation and safe for concurrent use.
type Schema struct {
	compiled  *jsonschema.Schema
	doc       map[string]any
	overrides map[string]string
}

// Compile builds a Schema from a JSON Schema document.
func Compile(doc any) (*Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	m, _ := doc.(map[string]any)
	return &Schema{compiled: compiled, doc: m}, nil
}

// MustCompile is Compile for package-level schema definitions; it panics on a
// malformed document, which is a programming error caught at startup.
func MustCompile(doc any) *Schema {
	s, err := Compile(doc)
	if err != nil {
		panic(err)
	}
	return s
}

// CompileJSON builds a Schema from JSON Schema source text, decoded through
// the engine's own reader so number representations match what the engine
// expects.
func CompileJSON(src string) (*Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("decode schema document: %w", err)
	}
	return Compile(doc)
}

// MustCompileJSON is CompileJSON for package-level schema definitions.
func MustCompileJSON(src string) *Schema {
	s, err := CompileJSON(src)
	if err != nil {
		panic(err)
	}
	return s
}

// WithMessages returns a schema that validates identically but substitutes
// caller-supplied failure messages. Override keys are matched against the
// failing field path first, then against the schema keyword ("minLength",
// "required", ...); the engine's own message is the final fallback. When both
// a path key and a keyword key match the same issue, the path key wins.
func (s *Schema) WithMessages(overrides map[string]string) *Schema {
	merged := make(map[string]string, len(s.overrides)+len(overrides))
	for k, v := range s.overrides {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return &Schema{compiled: s.compiled, doc: s.doc, overrides: merged}
}

// Validate applies the schema to raw input. On success it returns the
// normalized value: defaults filled in for absent properties and string
// values coerced to the declared integer/number/boolean types (query and
// route parameters always arrive as strings). On schema failure it returns
// the apperror validation variant; any other error propagates unchanged.
func Validate(s *Schema, data any) (any, error) {
	normalized := s.normalize(data)
	if err := s.compiled.Validate(normalized); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return nil, s.validationError(ve)
		}
		return nil, err
	}
	return normalized, nil
}

// Result is the tagged outcome of SafeValidate.
type Result struct {
	OK   bool
	Data any
	Err  *apperror.Error
}

// SafeValidate is Validate without an error return: validation failures come
// back in the Result, and any non-engine failure is converted through
// apperror.From so the call can never surface a raw error.
func SafeValidate(s *Schema, data any) Result {
	data, err := Validate(s, data)
	if err != nil {
		return Result{OK: false, Err: apperror.From(err)}
	}
	return Result{OK: true, Data: data}
}

// ValidateQuery validates parsed query parameters. Identical to Validate;
// the name documents the call site.
func ValidateQuery(s *Schema, data any) (any, error) { return Validate(s, data) }

// ValidateBody validates a decoded request body. Identical to Validate; the
// name documents the call site.
func ValidateBody(s *Schema, data any) (any, error) { return Validate(s, data) }

// ValidateParams validates route parameters. Identical to Validate; the name
// documents the call site.
func ValidateParams(s *Schema, data any) (any, error) { return Validate(s, data) }

// QueryToMap flattens url.Values into a schema-ready map, keeping the first
// value of each parameter.
func QueryToMap(values url.Values) map[string]any {
	m := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			m[k] = vs[0]
		}
	}
	return m
}

func (s *Schema) validationError(ve *jsonschema.ValidationError) *apperror.Error {
	fields := apperror.NewFieldErrors()
	for _, issue := range apperror.SchemaIssues(ve) {
		msg := issue.Message
		if override, ok := s.overrides[issue.Path]; ok {
			msg = override
		} else if override, ok := s.overrides[issue.Kind]; ok {
			msg = override
		}
		fields.Add(issue.Path, msg)
	}
	return apperror.NewValidation("Validation failed", fields, apperror.WithCause(ve))
}

// normalize returns a copy of map input with defaults applied and string
// values coerced toward the declared property types. Non-object input and
// schemas without a properties block pass through untouched.
func (s *Schema) normalize(data any) any {
	in, ok := data.(map[string]any)
	if !ok || s.doc == nil {
		return data
	}
	props, ok := s.doc["properties"].(map[string]any)
	if !ok {
		return data
	}

	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	for name, raw := range props {
		prop, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if _, present := out[name]; !present {
			if dv, ok := prop["default"]; ok {
				out[name] = concreteDefault(dv)
			}
			continue
		}
		if sv, ok := out[name].(string); ok {
			if cv, ok := coerce(sv, propType(prop)); ok {
				out[name] = cv
			}
		}
	}
	return out
}

// propType returns the declared type of a property. Union types return the
// first non-"null" entry.
func propType(prop map[string]any) string {
	switch t := prop["type"].(type) {
	case string:
		return t
	case []any:
		for _, entry := range t {
			if s, ok := entry.(string); ok && s != "null" {
				return s
			}
		}
	}
	return ""
}

// concreteDefault converts a json.Number default from a JSON-text schema into
// a concrete Go value so normalized output carries ordinary int64/float64.
func concreteDefault(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return v
}

// coerce converts a string toward the declared type. Values that do not
// parse are left alone so the engine reports the type mismatch.
func coerce(value, typ string) (any, bool) {
	switch typ {
	case "integer":
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n, true
		}
	case "number":
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f, true
		}
	case "boolean":
		if b, err := strconv.ParseBool(value); err == nil {
			return b, true
		}
	}
	return nil, false
}
