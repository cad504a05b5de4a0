// Package resource defines the record graph consumed by the JSON:API
// serializer.
//
// A Record exposes its attributes and its already-loaded relationships through
// explicit methods. Nothing in this package fetches data or uses reflection:
// relationships are looked up by name in a per-type Schema built when the
// type is registered.
package resource

// Record is a domain entity that can be rendered as a JSON:API resource.
type Record interface {
	// TypeName is the declared type name, e.g. "BlogPost"
	TypeName() string

	// PrimaryKey is the identifier value, a string or an integer
	PrimaryKey() any

	// KeyName is the attribute holding the identifier, usually "id"
	KeyName() string

	// Attributes returns the non-relationship attributes of the record.
	// It may include the key and hidden fields; the serializer removes them.
	Attributes() map[string]any

	// Relationship returns the value of a declared relationship. The second
	// return is false when the record has no relationship with that name.
	Relationship(name string) (Value, bool)

	// LoadedRelations returns the names of relationships populated on the
	// record by the caller.
	LoadedRelations() []string

	// IsHidden reports whether an attribute or relationship must never be
	// serialized or traversed.
	IsHidden(name string) bool
}

// Includer is implemented by records that restrict which relationships may be
// traversed by include paths. When restricted is false the record places no
// limit beyond its declared relationships.
type Includer interface {
	IncludableRelations() (names []string, restricted bool)
}

// CanInclude reports whether the named relation may be traversed from r. It
// checks the hidden set, the declared relationships and, when r implements
// Includer, the whitelist.
func CanInclude(r Record, name string) bool {
	if r == nil || r.IsHidden(name) {
		return false
	}

	if _, ok := r.Relationship(name); !ok {
		return false
	}

	inc, ok := r.(Includer)
	if !ok {
		return true
	}

	names, restricted := inc.IncludableRelations()
	if !restricted {
		return true
	}

	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
