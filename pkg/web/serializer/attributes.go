package serializer

import "github.com/conduit-lang/resourcegraph/pkg/web/resource"

// reserved names cannot be attributes of a JSON:API resource object
var reserved = map[string]struct{}{
	"id":   {},
	"type": {},
}

// ProjectAttributes returns the record's attributes without the key, hidden
// fields or relationships. When fields has an entry for the record's type only
// the listed attributes are kept; names the record does not have are ignored.
func (s *Serializer) ProjectAttributes(r resource.Record, fields map[string][]string) map[string]any {
	attrs := r.Attributes()
	key := r.KeyName()

	var allowed map[string]struct{}
	if names, ok := fields[s.TypeName(r)]; ok {
		allowed = make(map[string]struct{}, len(names))
		for _, name := range names {
			allowed[name] = struct{}{}
		}
	}

	out := make(map[string]any, len(attrs))
	for name, value := range attrs {
		if name == key || r.IsHidden(name) {
			continue
		}
		if _, ok := reserved[name]; ok {
			continue
		}
		if _, isRelation := r.Relationship(name); isRelation {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		out[name] = value
	}

	return out
}
