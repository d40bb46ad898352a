package llmselector

import (
	"github.com/invopop/jsonschema"
)

// NewFunctionSchema builds a FunctionSchema whose parameters are reflected
// from params, a struct (or pointer to struct) describing the arguments.
// Field descriptions come from `jsonschema:"description=..."` tags.
func NewFunctionSchema(name, description string, params any) FunctionSchema {
	fs := FunctionSchema{Name: name, Description: description}
	if params == nil {
		return fs
	}

	r := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	schema := r.Reflect(params)
	schema.Version = ""
	schema.ID = ""
	fs.Parameters = schema
	return fs
}
