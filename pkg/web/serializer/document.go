package serializer

import (
	"encoding/json"
	"fmt"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

// Document is a top-level JSON:API document
type Document struct {
	Data     any               `json:"data"`
	Included []ResourceObject  `json:"included,omitempty"`
	Links    map[string]string `json:"links,omitempty"`
	Meta     map[string]any    `json:"meta,omitempty"`
	JSONAPI  *VersionObject    `json:"jsonapi,omitempty"`
}

// VersionObject is the top-level jsonapi member
type VersionObject struct {
	Version string `json:"version"`
}

// Marshal encodes a document
func Marshal(doc *Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("document cannot be nil")
	}
	return json.Marshal(doc)
}

// Builder assembles one document. It owns the document's meta, links and
// included accumulators and is discarded once Build is called. A Builder is
// not safe for concurrent use.
//
// Data methods either succeed completely or leave the builder unchanged, so
// a failed build never exposes a partial data or included payload.
type Builder struct {
	s        *Serializer
	meta     map[string]any
	links    map[string]string
	included *includedSet
	scope    map[string]struct{}

	data    any
	primary []Identifier
}

// NewBuilder creates a document builder for the given options
func NewBuilder(opts Options) *Builder {
	return New(opts).NewBuilder()
}

// NewBuilder creates a document builder sharing the serializer's options
func (s *Serializer) NewBuilder() *Builder {
	return &Builder{
		s:        s,
		meta:     make(map[string]any),
		links:    make(map[string]string),
		included: newIncludedSet(),
	}
}

// AddMeta sets a top-level meta member
func (b *Builder) AddMeta(key string, value any) *Builder {
	b.meta[key] = value
	return b
}

// AddLink sets a top-level link
func (b *Builder) AddLink(name, href string) *Builder {
	b.links[name] = href
	return b
}

// AddIncluded appends resource objects to the included section, skipping
// identifiers already present
func (b *Builder) AddIncluded(objs ...ResourceObject) *Builder {
	for _, obj := range objs {
		b.included.add(obj)
	}
	return b
}

// ScopeIncludes limits later include requests to the given paths; requested
// paths outside the scope are dropped silently
func (b *Builder) ScopeIncludes(allowed ...string) *Builder {
	b.scope = make(map[string]struct{}, len(allowed))
	for _, path := range allowed {
		b.scope[path] = struct{}{}
	}
	return b
}

// includes applies the inclusion policy and scope to a requested include set
func (b *Builder) includes(include []string) ([]string, error) {
	include = uniqueStrings(include)
	if len(include) > 0 && !b.s.opts.EnableIncludes {
		return nil, ErrUnsupportedInclusion
	}
	if b.scope == nil {
		return include, nil
	}

	scoped := include[:0]
	for _, path := range include {
		if _, ok := b.scope[path]; ok {
			scoped = append(scoped, path)
		}
	}
	return scoped, nil
}

// Resource sets a single resource object as primary data, with the requested
// include paths rendered in the included section
func (b *Builder) Resource(r resource.Record, fields map[string][]string, include []string) error {
	if r == nil {
		b.data = nil
		b.primary = nil
		return nil
	}

	include, err := b.includes(include)
	if err != nil {
		return err
	}

	staged := b.stage()
	if err := b.s.collectInto(staged, []resource.Record{r}, include, fields); err != nil {
		return err
	}

	obj, err := b.s.ResourceObject(r, fields, RelationNames(r, include))
	if err != nil {
		return err
	}

	b.included = staged
	b.data = obj
	b.primary = []Identifier{obj.Identifier()}
	return nil
}

// Collection sets an array of resource objects as primary data
func (b *Builder) Collection(records []resource.Record, fields map[string][]string, include []string) error {
	include, err := b.includes(include)
	if err != nil {
		return err
	}

	staged := b.stage()
	if err := b.s.collectInto(staged, records, include, fields); err != nil {
		return err
	}

	objs := make([]ResourceObject, 0, len(records))
	ids := make([]Identifier, 0, len(records))
	for _, r := range records {
		obj, err := b.s.ResourceObject(r, fields, RelationNames(r, include))
		if err != nil {
			return err
		}
		objs = append(objs, obj)
		ids = append(ids, obj.Identifier())
	}

	b.included = staged
	b.data = objs
	b.primary = ids
	return nil
}

// Page sets one page of a collection as primary data and adds pagination
// links, plus meta.total when enabled
func (b *Builder) Page(records []resource.Record, page Page, baseURL string, fields map[string][]string, include []string) error {
	if err := b.Collection(records, fields, include); err != nil {
		return err
	}

	links, meta := b.s.FormatPageLinks(page, b.s.opts.Pagination, baseURL)
	for name, href := range links {
		b.AddLink(name, href)
	}
	for key, value := range meta {
		b.AddMeta(key, value)
	}
	return nil
}

// Relationship sets the linkage of one relation of r as primary data, the
// document served by a relationship endpoint
func (b *Builder) Relationship(r resource.Record, relation string) error {
	value, err := relationValue(r, relation)
	if err != nil {
		return err
	}

	linkage := b.s.ToLinkage(value)
	b.data = linkage
	b.primary = nil
	return nil
}

// Related sets the base resource objects of one relation of r as primary
// data: an object for to-one, an array for to-many, null when empty
func (b *Builder) Related(r resource.Record, relation string, fields map[string][]string) error {
	value, err := relationValue(r, relation)
	if err != nil {
		return err
	}

	switch value.Kind() {
	case resource.KindSingle:
		obj := b.s.BaseResourceObject(value.Record(), fields)
		b.data = obj
		b.primary = []Identifier{obj.Identifier()}
	case resource.KindMany:
		records := value.Records()
		objs := make([]ResourceObject, 0, len(records))
		ids := make([]Identifier, 0, len(records))
		for _, rec := range records {
			obj := b.s.BaseResourceObject(rec, fields)
			objs = append(objs, obj)
			ids = append(ids, obj.Identifier())
		}
		b.data = objs
		b.primary = ids
	default:
		b.data = nil
		b.primary = nil
	}
	return nil
}

// Build returns the assembled document. Included resources that duplicate
// primary data are dropped.
func (b *Builder) Build() *Document {
	doc := &Document{Data: b.data}

	if included := b.included.without(b.primary); len(included) > 0 {
		doc.Included = included
	}
	if len(b.links) > 0 {
		doc.Links = copyMap(b.links)
	}
	if len(b.meta) > 0 {
		doc.Meta = copyMap(b.meta)
	}
	if b.s.opts.IncludeVersion {
		doc.JSONAPI = &VersionObject{Version: b.s.opts.Version}
	}

	return doc
}

// stage returns a copy of the included set for a data call to fill
func (b *Builder) stage() *includedSet {
	staged := newIncludedSet()
	for _, obj := range b.included.items {
		staged.add(obj)
	}
	return staged
}

func relationValue(r resource.Record, relation string) (resource.Value, error) {
	if r == nil || r.IsHidden(relation) {
		return resource.Value{}, invalidPath(relation)
	}
	value, ok := r.Relationship(relation)
	if !ok {
		return resource.Value{}, invalidPath(relation)
	}
	return value, nil
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
