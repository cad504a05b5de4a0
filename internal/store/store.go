// Package store loads an in-memory record graph from a YAML fixture. It backs
// the render command and the demo server; the serializer never depends on it.
package store

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

var (
	// ErrNotFound is returned when no record has the requested type and id
	ErrNotFound = errors.New("record not found")

	// ErrInvalidReference is returned when a relation names a record that is
	// not in the fixture
	ErrInvalidReference = errors.New("invalid record reference")
)

// Fixture is the YAML document shape
type Fixture struct {
	Schemas []SchemaDef `yaml:"schemas"`
	Records []RecordDef `yaml:"records"`
}

// SchemaDef declares one record type
type SchemaDef struct {
	Name   string   `yaml:"name"`
	Key    string   `yaml:"key"`
	Hidden []string `yaml:"hidden"`

	// Includable whitelists include traversal. Omitted means unrestricted;
	// an empty list forbids every include.
	Includable *[]string `yaml:"includable"`

	Relations map[string]RelationDef `yaml:"relations"`
}

// RelationDef declares one relation of a schema
type RelationDef struct {
	Type   string `yaml:"type"`
	Target string `yaml:"target"`
}

// RecordDef is one record. Relations map a name to null, a "Type/id"
// reference or a list of references.
type RecordDef struct {
	Type       string         `yaml:"type"`
	ID         any            `yaml:"id"`
	Attributes map[string]any `yaml:"attributes"`
	Relations  map[string]any `yaml:"relations"`
}

// Store holds the records of a loaded fixture
type Store struct {
	registry *resource.Registry
	records  map[string]*resource.Model
	byType   map[string][]*resource.Model
}

// Load reads and parses a fixture file
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse builds a store from fixture YAML. Records are created first and
// relations wired afterwards, so references may form cycles.
func Parse(data []byte) (*Store, error) {
	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	return New(fixture)
}

// New builds a store from a decoded fixture
func New(fixture Fixture) (*Store, error) {
	s := &Store{
		registry: resource.NewRegistry(),
		records:  make(map[string]*resource.Model),
		byType:   make(map[string][]*resource.Model),
	}

	for _, def := range fixture.Schemas {
		schema, err := buildSchema(def)
		if err != nil {
			return nil, err
		}
		if err := s.registry.Register(schema); err != nil {
			return nil, err
		}
	}
	if err := s.registry.Validate(); err != nil {
		return nil, err
	}

	for i, def := range fixture.Records {
		if def.ID == nil {
			return nil, fmt.Errorf("record %d of type %s has no id", i, def.Type)
		}
		m, err := s.registry.New(def.Type, def.ID, def.Attributes)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		key := refKey(def.Type, def.ID)
		if _, dup := s.records[key]; dup {
			return nil, fmt.Errorf("duplicate record %s", key)
		}
		s.records[key] = m
		s.byType[def.Type] = append(s.byType[def.Type], m)
	}

	for _, def := range fixture.Records {
		m := s.records[refKey(def.Type, def.ID)]
		for _, name := range sortedNames(def.Relations) {
			value, err := s.resolve(def.Relations[name])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", m, name, err)
			}
			if err := m.SetRelation(name, value); err != nil {
				return nil, err
			}
		}
	}

	return s, nil
}

func buildSchema(def SchemaDef) (*resource.Schema, error) {
	schema := resource.NewSchema(def.Name).WithHidden(def.Hidden...)
	if def.Key != "" {
		schema.WithKey(def.Key)
	}
	if def.Includable != nil {
		schema.WithIncludable(*def.Includable...)
	}

	for _, name := range sortedNames(def.Relations) {
		rel := def.Relations[name]
		relType, err := resource.ParseRelationType(rel.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", def.Name, name, err)
		}
		switch relType {
		case resource.RelationHasMany:
			schema.HasMany(name, rel.Target)
		case resource.RelationHasOne:
			schema.HasOne(name, rel.Target)
		default:
			schema.BelongsTo(name, rel.Target)
		}
	}
	return schema, nil
}

// resolve converts a relation entry into a relationship value
func (s *Store) resolve(raw any) (resource.Value, error) {
	switch v := raw.(type) {
	case nil:
		return resource.None(), nil
	case string:
		m, err := s.ref(v)
		if err != nil {
			return resource.Value{}, err
		}
		return resource.One(m), nil
	case []any:
		records := make([]resource.Record, 0, len(v))
		for _, item := range v {
			ref, ok := item.(string)
			if !ok {
				return resource.Value{}, fmt.Errorf("%w: %v", ErrInvalidReference, item)
			}
			m, err := s.ref(ref)
			if err != nil {
				return resource.Value{}, err
			}
			records = append(records, m)
		}
		return resource.Many(records...), nil
	default:
		return resource.Value{}, fmt.Errorf("%w: %v", ErrInvalidReference, raw)
	}
}

func (s *Store) ref(ref string) (*resource.Model, error) {
	typeName, id, ok := strings.Cut(ref, "/")
	if !ok {
		return nil, fmt.Errorf("%w: %q is not Type/id", ErrInvalidReference, ref)
	}
	m, ok := s.records[refKey(typeName, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReference, ref)
	}
	return m, nil
}

// Registry returns the schemas of the loaded fixture
func (s *Store) Registry() *resource.Registry {
	return s.registry
}

// Types returns the declared type names in sorted order
func (s *Store) Types() []string {
	return s.registry.List()
}

// List returns every record of a type in fixture order
func (s *Store) List(typeName string) []resource.Record {
	models := s.byType[typeName]
	out := make([]resource.Record, len(models))
	for i, m := range models {
		out[i] = m
	}
	return out
}

// Find returns the record with the given type and id
func (s *Store) Find(typeName, id string) (resource.Record, error) {
	m, ok := s.records[refKey(typeName, id)]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, typeName, id)
	}
	return m, nil
}

// Slice returns up to limit records of a type starting at offset, along with
// the total number of records of that type
func (s *Store) Slice(typeName string, offset, limit int) ([]resource.Record, int) {
	all := s.List(typeName)
	total := len(all)

	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return []resource.Record{}, total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return all[offset:end], total
}

func refKey(typeName string, id any) string {
	return fmt.Sprintf("%s/%v", typeName, id)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
