package validation

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"proofdeck/internal/apperror"
)

var personSchema = MustCompileJSON(`{
	"type": "object",
	"properties": {
		"name":  {"type": "string", "minLength": 1},
		"email": {"type": "string", "minLength": 3}
	},
	"required": ["name"],
	"additionalProperties": false
}`)

var querySchema = MustCompileJSON(`{
	"type": "object",
	"properties": {
		"page":   {"type": "integer", "minimum": 1, "default": 1},
		"limit":  {"type": "integer", "minimum": 1, "maximum": 100, "default": 20},
		"ratio":  {"type": "number"},
		"active": {"type": "boolean"}
	}
}`)

func TestValidate_ValidInputPassesThrough(t *testing.T) {
	in := map[string]any{"name": "Ada", "email": "ada@example.com"}
	out, err := Validate(personSchema, in)
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, "Ada", m["name"])
	assert.Equal(t, "ada@example.com", m["email"])
}

func TestValidate_InvalidInputReturnsValidationError(t *testing.T) {
	_, err := Validate(personSchema, map[string]any{"email": "a@b.c"})
	require.Error(t, err)

	e := apperror.From(err)
	assert.Equal(t, apperror.NameValidation, e.Name)
	assert.Equal(t, 422, e.StatusCode)

	msg, ok := e.FieldError("name")
	require.True(t, ok)
	assert.Equal(t, "missing required property 'name'", msg)
}

func TestValidate_AppliesDefaults(t *testing.T) {
	out, err := Validate(querySchema, map[string]any{})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, int64(1), m["page"])
	assert.Equal(t, int64(20), m["limit"])
	assert.NotContains(t, m, "ratio") // no default declared
}

func TestValidate_CoercesStrings(t *testing.T) {
	out, err := Validate(querySchema, map[string]any{
		"page":   "2",
		"limit":  "50",
		"ratio":  "0.5",
		"active": "true",
	})
	require.NoError(t, err)

	m := out.(map[string]any)
	assert.Equal(t, int64(2), m["page"])
	assert.Equal(t, int64(50), m["limit"])
	assert.Equal(t, 0.5, m["ratio"])
	assert.Equal(t, true, m["active"])
}

func TestValidate_UnparseableStringFailsTypeCheck(t *testing.T) {
	_, err := Validate(querySchema, map[string]any{"page": "two"})
	require.Error(t, err)

	e := apperror.From(err)
	assert.Equal(t, apperror.NameValidation, e.Name)
	assert.True(t, e.HasFieldError("page"))
}

func TestValidate_DefaultsDoNotOverrideProvided(t *testing.T) {
	out, err := Validate(querySchema, map[string]any{"page": int64(7)})
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.(map[string]any)["page"])
}

func TestValidate_InputMapNotMutated(t *testing.T) {
	in := map[string]any{"page": "3"}
	_, err := Validate(querySchema, in)
	require.NoError(t, err)
	assert.Equal(t, "3", in["page"])
	assert.NotContains(t, in, "limit")
}

func TestWithMessages_KeywordOverride(t *testing.T) {
	s := personSchema.WithMessages(map[string]string{
		"required": "this field is mandatory",
	})
	_, err := Validate(s, map[string]any{})
	e := apperror.From(err)

	msg, ok := e.FieldError("name")
	require.True(t, ok)
	assert.Equal(t, "this field is mandatory", msg)
}

func TestWithMessages_PathOverrideWinsOverKeyword(t *testing.T) {
	s := personSchema.WithMessages(map[string]string{
		"required": "this field is mandatory",
		"name":     "name is required",
	})
	_, err := Validate(s, map[string]any{})
	e := apperror.From(err)

	msg, ok := e.FieldError("name")
	require.True(t, ok)
	assert.Equal(t, "name is required", msg)
}

func TestWithMessages_DoesNotAffectOriginal(t *testing.T) {
	_ = personSchema.WithMessages(map[string]string{"required": "custom"})

	_, err := Validate(personSchema, map[string]any{})
	e := apperror.From(err)
	msg, _ := e.FieldError("name")
	assert.Equal(t, "missing required property 'name'", msg)
}

func TestSafeValidate(t *testing.T) {
	ok := SafeValidate(querySchema, map[string]any{"page": "4"})
	require.True(t, ok.OK)
	assert.Nil(t, ok.Err)
	assert.Equal(t, int64(4), ok.Data.(map[string]any)["page"])

	bad := SafeValidate(personSchema, map[string]any{})
	require.False(t, bad.OK)
	require.NotNil(t, bad.Err)
	assert.Equal(t, apperror.NameValidation, bad.Err.Name)
	assert.Nil(t, bad.Data)
}

func TestQueryToMap(t *testing.T) {
	values := url.Values{
		"page":  []string{"2", "9"},
		"limit": []string{"50"},
		"empty": []string{},
	}
	m := QueryToMap(values)

	assert.Equal(t, "2", m["page"]) // first value wins
	assert.Equal(t, "50", m["limit"])
	assert.NotContains(t, m, "empty")
}

func TestCompileJSON_Invalid(t *testing.T) {
	_, err := CompileJSON(`{"type": `)
	assert.Error(t, err)
}

func TestValidationError_FieldOrder(t *testing.T) {
	s := MustCompileJSON(`{
		"type": "object",
		"required": ["first", "second", "third"]
	}`)
	_, err := Validate(s, map[string]any{})
	e := apperror.From(err)

	assert.Equal(t, []string{
		"missing required property 'first'",
		"missing required property 'second'",
		"missing required property 'third'",
	}, e.AllErrors())
}
