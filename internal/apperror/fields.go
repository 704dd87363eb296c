package apperror

import (
	"bytes"
	"encoding/json"
)

// FieldErrors maps field paths to ordered message lists while preserving the
// order in which fields were first reported. JSON maps are unordered, so the
// insertion order is kept separately and honored by MarshalJSON and All.
type FieldErrors struct {
	order    []string
	messages map[string][]string
}

// NewFieldErrors returns an empty field-error collection.
func NewFieldErrors() *FieldErrors {
	return &FieldErrors{messages: map[string][]string{}}
}

// Add appends a message for a field. The first Add for a field fixes its
// position in the reported order.
func (f *FieldErrors) Add(field, message string) {
	if _, seen := f.messages[field]; !seen {
		f.order = append(f.order, field)
	}
	f.messages[field] = append(f.messages[field], message)
}

// First returns the first message recorded for a field.
func (f *FieldErrors) First(field string) (string, bool) {
	msgs := f.messages[field]
	if len(msgs) == 0 {
		return "", false
	}
	return msgs[0], true
}

// Has reports whether any message was recorded for a field.
func (f *FieldErrors) Has(field string) bool {
	return len(f.messages[field]) > 0
}

// Messages returns the messages recorded for a field, in report order.
func (f *FieldErrors) Messages(field string) []string {
	return f.messages[field]
}

// Fields returns the field paths in first-report order.
func (f *FieldErrors) Fields() []string {
	return f.order
}

// All flattens every message: fields in first-report order, messages in
// report order within each field.
func (f *FieldErrors) All() []string {
	var out []string
	for _, field := range f.order {
		out = append(out, f.messages[field]...)
	}
	return out
}

// Len returns the number of fields with at least one message.
func (f *FieldErrors) Len() int { return len(f.order) }

// MarshalJSON writes the map as a JSON object with keys in first-report
// order.
func (f *FieldErrors) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, field := range f.order {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		val, err := json.Marshal(f.messages[field])
		if err != nil {
			return nil, err
		}
		b.Write(val)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

// UnmarshalJSON restores a field-error collection. Key order follows the
// document order of the JSON object.
func (f *FieldErrors) UnmarshalJSON(data []byte) error {
	f.order = nil
	f.messages = map[string][]string{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return &json.UnmarshalTypeError{Value: "non-object", Type: nil}
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key := keyTok.(string)
		var msgs []string
		if err := dec.Decode(&msgs); err != nil {
			return err
		}
		for _, m := range msgs {
			f.Add(key, m)
		}
	}
	_, err = dec.Token() // closing brace
	return err
}
