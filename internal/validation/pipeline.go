package validation

import "fmt"

// Pipeline composes schemas left to right: each schema validates the
// normalized output of the previous one, so defaults applied by an earlier
// stage are visible to later stages.
type Pipeline struct {
	schemas []*Schema
}

// NewPipeline builds a pipeline from one or more schemas. An empty pipeline
// is a configuration error and fails here, at setup, not at request time.
func NewPipeline(schemas ...*Schema) (*Pipeline, error) {
	if len(schemas) == 0 {
		return nil, fmt.Errorf("validation: pipeline requires at least one schema")
	}
	for i, s := range schemas {
		if s == nil {
			return nil, fmt.Errorf("validation: pipeline schema %d is nil", i)
		}
	}
	return &Pipeline{schemas: schemas}, nil
}

// MustPipeline is NewPipeline for package-level definitions.
func MustPipeline(schemas ...*Schema) *Pipeline {
	p, err := NewPipeline(schemas...)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate runs the input through every stage in order, returning the final
// normalized value or the first failure.
func (p *Pipeline) Validate(data any) (any, error) {
	var err error
	for _, s := range p.schemas {
		data, err = Validate(s, data)
		if err != nil {
			return nil, err
		}
	}
	return data, nil
}
