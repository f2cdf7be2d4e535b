package datatypes

import (
	"errors"
	"sync"

	"github.com/scalebig/sequelize/dberrors"
)

// Registry is the set of logical type definitions of one dialect.
// It is safe for concurrent use.
type Registry struct {
	dialect string

	mu    sync.RWMutex
	defs  map[string]Definition
	order []string
}

// NewRegistry returns a registry for dialect preloaded with BaseTypes.
func NewRegistry(dialect string) *Registry {
	r := &Registry{
		dialect: dialect,
		defs:    make(map[string]Definition),
	}
	r.Register(BaseTypes()...)
	return r
}

// Dialect returns the dialect name the registry maps onto.
func (r *Registry) Dialect() string { return r.dialect }

// Register adds definitions. A definition whose name is already registered
// is layered on top of the existing one: its non-nil slots win.
func (r *Registry) Register(defs ...Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, def := range defs {
		existing, ok := r.defs[def.Name]
		if !ok {
			r.order = append(r.order, def.Name)
			r.defs[def.Name] = Definition{Name: def.Name}.Extend(def)
			continue
		}
		r.defs[def.Name] = existing.Extend(def)
	}
}

// SetTypes writes the backend tags of a logical type. Passing no tags marks
// the type unsupported.
func (r *Registry) SetTypes(name string, tags ...string) {
	if tags == nil {
		tags = Unsupported
	}
	r.Register(Definition{Name: name, Tags: tags})
}

// Lookup returns the definition registered under name.
func (r *Registry) Lookup(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[name]
	return def, ok
}

// Definitions returns every definition in registration order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

func (r *Registry) supported(name, op string) (Definition, error) {
	def, ok := r.Lookup(name)
	if !ok {
		return Definition{}, dberrors.Newf(dberrors.UnsupportedType, op, "unknown logical type %q", name)
	}
	if !def.Supported() {
		return Definition{}, dberrors.Newf(dberrors.UnsupportedType, op,
			"%s has no %s representation", name, r.dialect)
	}
	return def, nil
}

// SQLFor renders the backend column type of t.
func (r *Registry) SQLFor(t Type) (string, error) {
	op := "sql for " + t.Name
	def, err := r.supported(t.Name, op)
	if err != nil {
		return "", err
	}
	if def.Render == nil {
		return def.Tags[0], nil
	}
	sql, err := def.Render(t)
	if err != nil {
		return "", wrap(dberrors.UnsupportedType, op, err)
	}
	return sql, nil
}

// Serialize renders value as a backend literal of type t.
func (r *Registry) Serialize(t Type, value any, opts Options) (string, error) {
	op := "serialize " + t.Name
	def, err := r.supported(t.Name, op)
	if err != nil {
		return "", err
	}
	serialize := def.Serialize
	if serialize == nil {
		serialize = serializeEscaped
	}
	lit, err := serialize(t, value, opts)
	if err != nil {
		return "", wrap(dberrors.Serialization, op, err)
	}
	return lit, nil
}

// Parser returns the parse function registered for a backend tag. When
// several definitions share the tag, the last one registered wins.
func (r *Registry) Parser(tag string) (ParseFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var parse ParseFunc
	for _, name := range r.order {
		def := r.defs[name]
		if def.Parse != nil && def.HasTag(tag) {
			parse = def.Parse
		}
	}
	return parse, parse != nil
}

// Parse decodes a raw backend value of the given tag. Tags without a parser
// return raw unchanged.
func (r *Registry) Parse(tag string, raw any, opts Options) (any, error) {
	parse, ok := r.Parser(tag)
	if !ok {
		return raw, nil
	}
	return Decode(parse, tag, raw, opts)
}

// Decode runs parse and reports failures as ParseError.
func Decode(parse ParseFunc, tag string, raw any, opts Options) (any, error) {
	v, err := parse(raw, opts)
	if err != nil {
		return nil, wrap(dberrors.Parse, "parse "+tag, err)
	}
	return v, nil
}

func wrap(kind dberrors.Kind, op string, err error) error {
	var e *dberrors.Error
	if errors.As(err, &e) {
		return err
	}
	return dberrors.New(kind, op, err)
}
