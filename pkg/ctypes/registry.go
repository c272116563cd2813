package ctypes

import "sort"

// NameKind classifies how a name came to denote a type.
type NameKind int

const (
	KindBuiltin NameKind = iota
	KindTypedef
	KindStructTag
	KindUnionTag
	KindEnumTag
)

func (k NameKind) String() string {
	switch k {
	case KindBuiltin:
		return "builtin"
	case KindTypedef:
		return "typedef"
	case KindStructTag:
		return "struct"
	case KindUnionTag:
		return "union"
	case KindEnumTag:
		return "enum"
	}
	return "unknown"
}

// Registry is the append-only set of names known to denote types within
// one translation unit. It is seeded with the builtin type keywords and
// grows as the parser completes typedef and aggregate declarations. Names
// become visible only after their declaring statement has been parsed.
type Registry struct {
	names map[string]NameKind
}

var builtins = []string{
	"void", "char", "short", "int", "long", "float", "double",
	"signed", "unsigned",
}

// NewRegistry returns a registry seeded with the builtin type names.
func NewRegistry() *Registry {
	r := &Registry{names: make(map[string]NameKind, len(builtins))}
	for _, name := range builtins {
		r.names[name] = KindBuiltin
	}
	return r
}

// IsType reports whether name denotes a type: a builtin, a typedef name,
// or a struct/union/enum tag declared earlier in the same parse.
func (r *Registry) IsType(name string) bool {
	_, ok := r.names[name]
	return ok
}

// Kind returns how name was introduced, if it denotes a type.
func (r *Registry) Kind(name string) (NameKind, bool) {
	k, ok := r.names[name]
	return k, ok
}

// DefineTypedef records a typedef name. Earlier entries are never replaced.
func (r *Registry) DefineTypedef(name string) {
	r.define(name, KindTypedef)
}

// DefineTag records a struct/union/enum tag.
func (r *Registry) DefineTag(kind NameKind, name string) {
	if name == "" {
		return
	}
	r.define(name, kind)
}

func (r *Registry) define(name string, kind NameKind) {
	if _, exists := r.names[name]; exists {
		return
	}
	r.names[name] = kind
}

// Names returns all registered type names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.names))
	for name := range r.names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Snapshot returns an independent copy of the registry, suitable for
// handing to downstream consumers after a parse completes.
func (r *Registry) Snapshot() *Registry {
	c := &Registry{names: make(map[string]NameKind, len(r.names))}
	for name, kind := range r.names {
		c.names[name] = kind
	}
	return c
}
