package resource

import (
	"fmt"
)

// Model is a Record backed by a Schema. Attributes are held in a map and
// relationships are attached by name after construction, which lets callers
// wire cyclic graphs.
type Model struct {
	schema    *Schema
	id        any
	attrs     map[string]any
	relations map[string]Value
	loaded    []string
}

// NewModel creates a record of the schema's type
func NewModel(schema *Schema, id any, attrs map[string]any) *Model {
	copied := make(map[string]any, len(attrs)+1)
	for k, v := range attrs {
		copied[k] = v
	}
	copied[schema.Key] = id

	return &Model{
		schema:    schema,
		id:        id,
		attrs:     copied,
		relations: make(map[string]Value),
	}
}

// Schema returns the record's schema
func (m *Model) Schema() *Schema {
	return m.schema
}

// TypeName implements Record
func (m *Model) TypeName() string {
	return m.schema.Name
}

// PrimaryKey implements Record
func (m *Model) PrimaryKey() any {
	return m.id
}

// KeyName implements Record
func (m *Model) KeyName() string {
	return m.schema.Key
}

// Attributes implements Record
func (m *Model) Attributes() map[string]any {
	out := make(map[string]any, len(m.attrs))
	for k, v := range m.attrs {
		out[k] = v
	}
	return out
}

// Relationship implements Record. A declared relation that was never loaded
// resolves to its empty shape.
func (m *Model) Relationship(name string) (Value, bool) {
	rel, ok := m.schema.Relation(name)
	if !ok {
		return Value{}, false
	}

	if v, ok := m.relations[name]; ok {
		return v, true
	}

	if rel.Type.ToMany() {
		return Many(), true
	}
	return None(), true
}

// LoadedRelations implements Record
func (m *Model) LoadedRelations() []string {
	out := make([]string, len(m.loaded))
	copy(out, m.loaded)
	return out
}

// IsHidden implements Record
func (m *Model) IsHidden(name string) bool {
	return m.schema.IsHidden(name)
}

// IncludableRelations implements Includer using the schema whitelist
func (m *Model) IncludableRelations() ([]string, bool) {
	if m.schema.Includable == nil {
		return nil, false
	}
	out := make([]string, len(m.schema.Includable))
	copy(out, m.schema.Includable)
	return out, true
}

// Set stores an attribute value
func (m *Model) Set(name string, value any) *Model {
	m.attrs[name] = value
	return m
}

// SetRelation attaches a loaded relationship value. The value's shape must
// match the declared cardinality: Single or None for to-one relations, Many
// for to-many relations.
func (m *Model) SetRelation(name string, v Value) error {
	rel, ok := m.schema.Relation(name)
	if !ok {
		return fmt.Errorf("%w: %s.%s", ErrUnknownRelation, m.schema.Name, name)
	}

	if rel.Type.ToMany() != (v.Kind() == KindMany) {
		return fmt.Errorf("%w: %s.%s is %s, got %s", ErrCardinality, m.schema.Name, name, rel.Type, v.Kind())
	}

	if _, seen := m.relations[name]; !seen {
		m.loaded = append(m.loaded, name)
	}
	m.relations[name] = v
	return nil
}

// MustRelate is SetRelation that panics on error, for fixtures and tests
func (m *Model) MustRelate(name string, v Value) *Model {
	if err := m.SetRelation(name, v); err != nil {
		panic(err)
	}
	return m
}

// Unload removes a loaded relationship
func (m *Model) Unload(name string) {
	if _, ok := m.relations[name]; !ok {
		return
	}
	delete(m.relations, name)

	kept := m.loaded[:0]
	for _, n := range m.loaded {
		if n != name {
			kept = append(kept, n)
		}
	}
	m.loaded = kept
}

// String returns Type/id for debugging
func (m *Model) String() string {
	return fmt.Sprintf("%s/%v", m.schema.Name, m.id)
}

// AttributeNames returns the attribute names in sorted order
func (m *Model) AttributeNames() []string {
	return sortedKeys(m.attrs)
}
