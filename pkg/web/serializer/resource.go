package serializer

import "github.com/conduit-lang/resourcegraph/pkg/web/resource"

// ResourceObject is a JSON:API resource object
type ResourceObject struct {
	Type          string                  `json:"type"`
	ID            any                     `json:"id"`
	Attributes    map[string]any          `json:"attributes"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Relationship is a JSON:API relationship object
type Relationship struct {
	Data Linkage `json:"data"`
}

// Identifier returns the object's resource identifier
func (o ResourceObject) Identifier() Identifier {
	return Identifier{Type: o.Type, ID: o.ID}
}

// BaseResourceObject returns the identity and attributes of r, the form used
// for included resources
func (s *Serializer) BaseResourceObject(r resource.Record, fields map[string][]string) ResourceObject {
	id := s.Identify(r)
	return ResourceObject{
		Type:       id.Type,
		ID:         id.ID,
		Attributes: s.ProjectAttributes(r, fields),
	}
}

// ResourceObject returns the base object of r plus a relationships member
// with the linkage of each named relation. Relations are read from the data
// already loaded on r. A hidden or undeclared name fails with
// ErrInvalidRelationPath.
func (s *Serializer) ResourceObject(r resource.Record, fields map[string][]string, relationNames []string) (ResourceObject, error) {
	obj := s.BaseResourceObject(r, fields)

	if len(relationNames) == 0 {
		return obj, nil
	}

	relationships := make(map[string]Relationship, len(relationNames))
	for _, name := range relationNames {
		if r.IsHidden(name) {
			return ResourceObject{}, invalidPath(name)
		}
		value, ok := r.Relationship(name)
		if !ok {
			return ResourceObject{}, invalidPath(name)
		}
		relationships[name] = Relationship{Data: s.ToLinkage(value)}
	}
	obj.Relationships = relationships

	return obj, nil
}

// RelationNames returns the relations listed on r's resource object: those
// loaded on the record followed by the first segment of each include path,
// without duplicates. Hidden loaded relations are skipped; a hidden include
// segment is kept so ResourceObject rejects it.
func RelationNames(r resource.Record, include []string) []string {
	loaded := r.LoadedRelations()
	names := make([]string, 0, len(loaded)+len(include))
	seen := make(map[string]struct{}, cap(names))

	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}

	for _, name := range loaded {
		if r.IsHidden(name) {
			continue
		}
		add(name)
	}
	for _, path := range include {
		add(FirstSegment(path))
	}

	return names
}
