package serializer

import (
	"encoding/json"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

// Linkage is the data member of a relationship object: null, a single
// identifier, or an array of identifiers.
type Linkage struct {
	kind resource.Kind
	one  Identifier
	many []Identifier
}

// Kind returns the shape of the linkage
func (l Linkage) Kind() resource.Kind {
	return l.kind
}

// IsNull reports whether the linkage renders as null
func (l Linkage) IsNull() bool {
	return l.kind == resource.KindNone
}

// Identifier returns the identifier of a to-one linkage
func (l Linkage) Identifier() (Identifier, bool) {
	if l.kind != resource.KindSingle {
		return Identifier{}, false
	}
	return l.one, true
}

// Identifiers returns every identifier in order
func (l Linkage) Identifiers() []Identifier {
	switch l.kind {
	case resource.KindSingle:
		return []Identifier{l.one}
	case resource.KindMany:
		out := make([]Identifier, len(l.many))
		copy(out, l.many)
		return out
	default:
		return []Identifier{}
	}
}

// MarshalJSON renders null, an object, or an array. An empty to-many
// linkage renders as [] rather than null.
func (l Linkage) MarshalJSON() ([]byte, error) {
	switch l.kind {
	case resource.KindSingle:
		return json.Marshal(l.one)
	case resource.KindMany:
		if l.many == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(l.many)
	default:
		return []byte("null"), nil
	}
}

// ToLinkage converts a relationship value into resource linkage, keeping the
// order of to-many values.
func (s *Serializer) ToLinkage(v resource.Value) Linkage {
	switch v.Kind() {
	case resource.KindSingle:
		return Linkage{kind: resource.KindSingle, one: s.Identify(v.Record())}
	case resource.KindMany:
		records := v.Records()
		ids := make([]Identifier, 0, len(records))
		for _, r := range records {
			ids = append(ids, s.Identify(r))
		}
		return Linkage{kind: resource.KindMany, many: ids}
	default:
		return Linkage{kind: resource.KindNone}
	}
}
