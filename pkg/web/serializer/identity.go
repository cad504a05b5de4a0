package serializer

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"
	"github.com/jinzhu/inflection"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

// Identifier is a JSON:API resource identifier object
type Identifier struct {
	Type string `json:"type"`
	ID   any    `json:"id"`
}

// Key returns a comparable form of the identifier
func (id Identifier) Key() string {
	return id.Type + "/" + fmt.Sprint(id.ID)
}

// String implements fmt.Stringer
func (id Identifier) String() string {
	return id.Key()
}

// TypeName derives a resource type name from a declared type name. Package or
// namespace qualifiers are dropped, the name is pluralised unless singular is
// set, and the result is hyphenated lower case: BlogPost becomes blog-posts.
func TypeName(declared string, singular bool) string {
	name := declared
	if i := strings.LastIndexAny(name, `./\`); i >= 0 {
		name = name[i+1:]
	}
	if name == "" {
		return ""
	}
	if !singular {
		name = inflection.Plural(name)
	}
	return strcase.ToKebab(name)
}

// NormalizeID keeps integer ids as integers and renders everything else as a
// string.
func NormalizeID(v any) any {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case int:
		return int64(id)
	case int8:
		return int64(id)
	case int16:
		return int64(id)
	case int32:
		return int64(id)
	case int64:
		return id
	case uint:
		return uint64(id)
	case uint8:
		return uint64(id)
	case uint16:
		return uint64(id)
	case uint32:
		return uint64(id)
	case uint64:
		return id
	case fmt.Stringer:
		return id.String()
	default:
		return fmt.Sprint(id)
	}
}

// TypeName returns the resource type of r under the serializer's options
func (s *Serializer) TypeName(r resource.Record) string {
	return TypeName(r.TypeName(), s.opts.SingularTypeNames)
}

// Identify returns the resource identifier of r
func (s *Serializer) Identify(r resource.Record) Identifier {
	return Identifier{
		Type: s.TypeName(r),
		ID:   NormalizeID(r.PrimaryKey()),
	}
}
