package serializer

import (
	"regexp"
	"strings"

	"github.com/conduit-lang/resourcegraph/pkg/web/resource"
)

// pathPattern matches one or more relation names joined by dots
var pathPattern = regexp.MustCompile(`^[A-Za-z]+(\.[A-Za-z]+)*$`)

// ValidPath reports whether path is syntactically a relationship path
func ValidPath(path string) bool {
	return pathPattern.MatchString(path)
}

// FirstSegment returns the first relation name of a dotted path
func FirstSegment(path string) string {
	if i := strings.IndexByte(path, '.'); i >= 0 {
		return path[:i]
	}
	return path
}

// ResolvePath walks a dotted relationship path from r. Each segment must be a
// declared, non-hidden relationship of every record it is applied to and,
// for records implementing resource.Includer, one of their includable
// relations. Any violation fails with ErrInvalidRelationPath naming the full
// path.
//
// Through a to-many relation the remaining segments are applied to each
// element and the results are flattened, so the result is Many from that
// point on. A None value ends the walk early with None.
func (s *Serializer) ResolvePath(r resource.Record, path string) (resource.Value, error) {
	value, _, err := walkPath(r, path)
	return value, err
}

// walkPath resolves path and also returns the records reached after each
// segment, which the included collector needs for multi-hop paths.
func walkPath(r resource.Record, path string) (resource.Value, [][]resource.Record, error) {
	if r == nil || !ValidPath(path) {
		return resource.Value{}, nil, invalidPath(path)
	}

	segments := strings.Split(path, ".")
	hops := make([][]resource.Record, 0, len(segments))
	current := resource.One(r)

	for _, segment := range segments {
		var next resource.Value

		switch current.Kind() {
		case resource.KindNone:
			return resource.None(), hops, nil

		case resource.KindSingle:
			v, err := step(current.Record(), segment, path)
			if err != nil {
				return resource.Value{}, nil, err
			}
			next = v

		case resource.KindMany:
			var collected []resource.Record
			for _, rec := range current.Records() {
				v, err := step(rec, segment, path)
				if err != nil {
					return resource.Value{}, nil, err
				}
				collected = append(collected, v.Records()...)
			}
			next = resource.Many(collected...)
		}

		hops = append(hops, next.Records())
		current = next
	}

	return current, hops, nil
}

func step(r resource.Record, segment, path string) (resource.Value, error) {
	if !resource.CanInclude(r, segment) {
		return resource.Value{}, invalidPath(path)
	}
	v, _ := r.Relationship(segment)
	return v, nil
}
