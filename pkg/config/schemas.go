package config

import (
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// OptionsSchema is the name of the built-in schema for engine options.
const OptionsSchema = "options"

// SchemaRegistry manages CUE schemas that resolved configurations are
// checked against. Each schema source must define the definition named
// when it is registered.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewSchemaRegistry creates a new schema registry with built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}

	if err := sr.RegisterSchema(OptionsSchema, "#Options", builtinOptionsSchema); err != nil {
		panic(fmt.Sprintf("built-in options schema: %v", err))
	}

	return sr
}

// RegisterSchema compiles schema and registers its definition under name.
func (sr *SchemaRegistry) RegisterSchema(name, definition, schema string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(schema)
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}

	def := val.LookupPath(cue.ParsePath(definition))
	if !def.Exists() {
		return fmt.Errorf("schema %s does not define %s", name, definition)
	}

	sr.schemas[name] = def
	return nil
}

// ListSchemas returns all registered schema names.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check unifies m with the named schema and returns one message per
// violation. The error is reserved for an unknown schema or data that
// cannot be encoded.
func (sr *SchemaRegistry) Check(name string, m *Mapping) ([]string, error) {
	sr.mu.RLock()
	schema, ok := sr.schemas[name]
	sr.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("schema %s not found", name)
	}

	data := sr.ctx.Encode(m.Interface())
	if err := data.Err(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}

	err := schema.Unify(data).Validate(cue.Concrete(true))
	if err == nil {
		return nil, nil
	}

	var issues []string
	for _, e := range cueerrors.Errors(err) {
		issues = append(issues, e.Error())
	}
	return issues, nil
}

// builtinOptionsSchema types the well-known engine options. Unknown keys
// are accepted since the engine grows options faster than this schema.
const builtinOptionsSchema = `
#Options: {
	// enforcing options
	bitwise?:  bool
	curly?:    bool
	eqeqeq?:   bool
	forin?:    bool
	immed?:    bool
	latedef?:  bool | "nofunc"
	newcap?:   bool
	noarg?:    bool
	noempty?:  bool
	nonew?:    bool
	plusplus?: bool
	regexp?:   bool
	undef?:    bool
	strict?:   bool
	trailing?: bool

	// relaxing options
	asi?:      bool
	boss?:     bool
	debug?:    bool
	eqnull?:   bool
	es5?:      bool
	evil?:     bool
	expr?:     bool
	laxbreak?: bool
	loopfunc?: bool
	sub?:      bool
	supernew?: bool

	// limits
	maxlen?:   int & >0
	indent?:   int & >=0
	maxerr?:   int & >0
	passfail?: bool

	// environments
	browser?: bool
	devel?:   bool
	jquery?:  bool
	node?:    bool
	rhino?:   bool

	predef?:  string | [...string]
	globals?: {[string]: bool}

	...
}
`
