package chance

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

var (
	// ErrUnknownGenerator is returned for accessor or method names that do not exist.
	ErrUnknownGenerator = errors.New("unknown generator")
	// ErrInvalidGenerator is returned when a spec's options do not fit its method.
	ErrInvalidGenerator = errors.New("invalid generator spec")
)

// Methods a GeneratorSpec may bind to.
const (
	MethodPickOne  = "pickone"
	MethodPostcode = "postcode"
	MethodNatural  = "natural"
	MethodBool     = "bool"
)

// IntRange bounds MethodNatural, inclusive on both ends.
type IntRange struct {
	Min int
	Max int
}

// GeneratorSpec binds a named accessor to one of the Chance methods. The
// accessor is called <Method><Suffix>, e.g. "pickoneProduct".
type GeneratorSpec struct {
	Method  string
	Suffix  string
	Options any
}

// AccessorName is the name the spec is exposed under.
func (s GeneratorSpec) AccessorName() string {
	return s.Method + s.Suffix
}

// Validate checks that Options fit Method.
func (s GeneratorSpec) Validate() error {
	switch s.Method {
	case MethodPickOne:
		v := reflect.ValueOf(s.Options)
		if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
			return fmt.Errorf("%w: %s needs a slice of options, got %T", ErrInvalidGenerator, s.AccessorName(), s.Options)
		}
		if v.Len() == 0 {
			return fmt.Errorf("%w: %s has no options to pick from", ErrInvalidGenerator, s.AccessorName())
		}
	case MethodNatural:
		r, ok := s.Options.(IntRange)
		if !ok {
			return fmt.Errorf("%w: %s needs an IntRange, got %T", ErrInvalidGenerator, s.AccessorName(), s.Options)
		}
		if r.Min > r.Max {
			return fmt.Errorf("%w: %s range min %d exceeds max %d", ErrInvalidGenerator, s.AccessorName(), r.Min, r.Max)
		}
	case MethodPostcode, MethodBool:
		if s.Options != nil {
			return fmt.Errorf("%w: %s takes no options", ErrInvalidGenerator, s.AccessorName())
		}
	default:
		return fmt.Errorf("%w: method %q", ErrUnknownGenerator, s.Method)
	}
	return nil
}

// Generators is the set of custom accessors declared for an actor, keyed by a
// caller-chosen label. It is fixed once the actor is built.
type Generators struct {
	byAccessor map[string]GeneratorSpec
}

// NewGenerators validates every spec and indexes them by accessor name.
func NewGenerators(specs map[string]GeneratorSpec) (*Generators, error) {
	g := &Generators{byAccessor: make(map[string]GeneratorSpec, len(specs))}
	for label, spec := range specs {
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("generator %q: %w", label, err)
		}
		name := spec.AccessorName()
		if _, dup := g.byAccessor[name]; dup {
			return nil, fmt.Errorf("%w: accessor %q declared twice", ErrInvalidGenerator, name)
		}
		g.byAccessor[name] = spec
	}
	return g, nil
}

// Accessors lists the declared accessor names in sorted order.
func (g *Generators) Accessors() []string {
	names := make([]string, 0, len(g.byAccessor))
	for name := range g.byAccessor {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate draws the next value for accessor from c.
func (g *Generators) Generate(c *Chance, accessor string) (any, error) {
	spec, ok := g.byAccessor[accessor]
	if !ok {
		return nil, fmt.Errorf("%w: accessor %q", ErrUnknownGenerator, accessor)
	}
	switch spec.Method {
	case MethodPickOne:
		v := reflect.ValueOf(spec.Options)
		return v.Index(c.rng.IntN(v.Len())).Interface(), nil
	case MethodNatural:
		r := spec.Options.(IntRange)
		return c.Natural(r.Min, r.Max), nil
	case MethodPostcode:
		return c.Postcode(), nil
	case MethodBool:
		return c.Bool(), nil
	}
	// Unreachable for specs that passed Validate.
	return nil, fmt.Errorf("%w: method %q", ErrUnknownGenerator, spec.Method)
}
