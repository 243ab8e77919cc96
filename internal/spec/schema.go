package spec

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// itemSchema is the CUE schema every item document must satisfy before the
// condition model is constructed. The definition is closed: unknown fields
// are rejected, catching typos like "transition-maps:".
const itemSchema = `
#State: {
	name:  string & !=""
	skip?: bool
}

#Condition: {
	name:         string & !=""
	states:       [#State, ...#State]
	"na-exempt"?: bool
}

#Row: {
	pre:   {[string]: string & !=""}
	post?: {[string]: string & !=""}
	skip?: bool
}

#Item: {
	name:              string & !=""
	"pre-conditions":  [#Condition, ...#Condition]
	"post-conditions": [#Condition, ...#Condition]
	"transition-map":  [#Row, ...#Row]
}
`

// validateSchema unifies a decoded item document with the embedded schema.
// Returns a schema violation error with CUE's diagnostic detail, or nil.
func validateSchema(raw any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(itemSchema).LookupPath(cue.ParsePath("#Item"))
	if err := schema.Err(); err != nil {
		// The schema is a compile-time constant; failing to compile it is a
		// programming error, not an input error.
		panic(fmt.Sprintf("item schema does not compile: %v", err))
	}
	value := ctx.Encode(raw)
	if err := value.Err(); err != nil {
		return err
	}
	unified := schema.Unify(value)
	if err := unified.Err(); err != nil {
		return err
	}
	return unified.Validate(cue.Final())
}
