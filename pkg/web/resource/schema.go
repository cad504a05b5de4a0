package resource

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrDuplicateSchema is returned when a type name is registered twice
	ErrDuplicateSchema = errors.New("schema already registered")

	// ErrUnknownSchema is returned when a type name has no registered schema
	ErrUnknownSchema = errors.New("unknown schema")

	// ErrUnknownRelation is returned when a relation is not declared on a schema
	ErrUnknownRelation = errors.New("unknown relation")

	// ErrCardinality is returned when a relation is set with the wrong shape
	ErrCardinality = errors.New("relation cardinality mismatch")
)

// RelationType represents the cardinality of a declared relationship
type RelationType int

const (
	RelationBelongsTo RelationType = iota
	RelationHasOne
	RelationHasMany
)

// String returns the string representation of the relation type
func (t RelationType) String() string {
	switch t {
	case RelationBelongsTo:
		return "belongs_to"
	case RelationHasOne:
		return "has_one"
	case RelationHasMany:
		return "has_many"
	default:
		return "unknown"
	}
}

// ParseRelationType converts a textual relation type. "one" and "many" are
// accepted as shorthands for belongs_to and has_many.
func ParseRelationType(s string) (RelationType, error) {
	switch s {
	case "belongs_to", "one":
		return RelationBelongsTo, nil
	case "has_one":
		return RelationHasOne, nil
	case "has_many", "many":
		return RelationHasMany, nil
	default:
		return 0, fmt.Errorf("invalid relation type %q", s)
	}
}

// ToMany reports whether the relation holds a sequence of records
func (t RelationType) ToMany() bool {
	return t == RelationHasMany
}

// Relation declares a named relationship on a schema
type Relation struct {
	Name   string
	Type   RelationType
	Target string
}

// Schema describes one record type: its key, its hidden fields, its declared
// relationships and an optional include whitelist.
type Schema struct {
	Name      string
	Key       string
	Hidden    []string
	Relations map[string]*Relation

	// Includable restricts include traversal when non-nil. An empty non-nil
	// slice forbids every include.
	Includable []string

	hidden map[string]struct{}
}

// NewSchema creates a schema keyed by "id"
func NewSchema(name string) *Schema {
	return &Schema{
		Name:      name,
		Key:       "id",
		Relations: make(map[string]*Relation),
		hidden:    make(map[string]struct{}),
	}
}

// WithKey sets the identifier attribute name
func (s *Schema) WithKey(key string) *Schema {
	s.Key = key
	return s
}

// WithHidden marks attributes or relations that are never serialized
func (s *Schema) WithHidden(names ...string) *Schema {
	if s.hidden == nil {
		s.hidden = make(map[string]struct{})
		for _, name := range s.Hidden {
			s.hidden[name] = struct{}{}
		}
	}
	for _, name := range names {
		if _, ok := s.hidden[name]; ok {
			continue
		}
		s.hidden[name] = struct{}{}
		s.Hidden = append(s.Hidden, name)
	}
	return s
}

// WithIncludable restricts include traversal to the given relations
func (s *Schema) WithIncludable(names ...string) *Schema {
	s.Includable = append(make([]string, 0, len(names)), names...)
	return s
}

// BelongsTo declares a to-one relation
func (s *Schema) BelongsTo(name, target string) *Schema {
	return s.relate(name, target, RelationBelongsTo)
}

// HasOne declares a to-one relation owned by the target
func (s *Schema) HasOne(name, target string) *Schema {
	return s.relate(name, target, RelationHasOne)
}

// HasMany declares a to-many relation
func (s *Schema) HasMany(name, target string) *Schema {
	return s.relate(name, target, RelationHasMany)
}

func (s *Schema) relate(name, target string, t RelationType) *Schema {
	if s.Relations == nil {
		s.Relations = make(map[string]*Relation)
	}
	s.Relations[name] = &Relation{Name: name, Type: t, Target: target}
	return s
}

// IsHidden reports whether name is in the hidden set
func (s *Schema) IsHidden(name string) bool {
	if s.hidden == nil {
		for _, h := range s.Hidden {
			if h == name {
				return true
			}
		}
		return false
	}
	_, ok := s.hidden[name]
	return ok
}

// Relation returns the declared relation with the given name
func (s *Schema) Relation(name string) (*Relation, bool) {
	rel, ok := s.Relations[name]
	return rel, ok
}

// Registry holds the schemas of every record type in a graph
type Registry struct {
	schemas map[string]*Schema
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		schemas: make(map[string]*Schema),
	}
}

// Register adds a schema to the registry
func (r *Registry) Register(schema *Schema) error {
	if schema == nil || schema.Name == "" {
		return fmt.Errorf("schema must have a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.schemas[schema.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSchema, schema.Name)
	}

	if schema.Key == "" {
		schema.Key = "id"
	}
	if schema.hidden == nil {
		schema.hidden = make(map[string]struct{})
		for _, name := range schema.Hidden {
			schema.hidden[name] = struct{}{}
		}
	}
	if schema.Relations == nil {
		schema.Relations = make(map[string]*Relation)
	}

	r.schemas[schema.Name] = schema
	return nil
}

// MustRegister registers schemas and panics on error
func (r *Registry) MustRegister(schemas ...*Schema) *Registry {
	for _, s := range schemas {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	return r
}

// Get retrieves a schema by type name
func (r *Registry) Get(name string) (*Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schema, ok := r.schemas[name]
	return schema, ok
}

// List returns the registered type names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.schemas))
	for name := range r.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that every relation targets a registered schema and every
// whitelisted include names a declared relation.
func (r *Registry) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range sortedKeys(r.schemas) {
		schema := r.schemas[name]
		for _, relName := range sortedKeys(schema.Relations) {
			rel := schema.Relations[relName]
			if _, ok := r.schemas[rel.Target]; !ok {
				return fmt.Errorf("%s.%s: %w: %s", name, relName, ErrUnknownSchema, rel.Target)
			}
		}
		for _, inc := range schema.Includable {
			if _, ok := schema.Relations[inc]; !ok {
				return fmt.Errorf("%s includable: %w: %s", name, ErrUnknownRelation, inc)
			}
		}
	}
	return nil
}

// New creates a record of the named type
func (r *Registry) New(typeName string, id any, attrs map[string]any) (*Model, error) {
	schema, ok := r.Get(typeName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSchema, typeName)
	}
	return NewModel(schema, id, attrs), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
