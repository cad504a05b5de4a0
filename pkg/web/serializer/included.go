package serializer

import "github.com/conduit-lang/resourcegraph/pkg/web/resource"

// includedSet accumulates resource objects keyed by identifier, keeping
// first-seen order
type includedSet struct {
	seen  map[string]struct{}
	items []ResourceObject
}

func newIncludedSet() *includedSet {
	return &includedSet{seen: make(map[string]struct{})}
}

func (set *includedSet) has(id Identifier) bool {
	_, ok := set.seen[id.Key()]
	return ok
}

func (set *includedSet) add(obj ResourceObject) bool {
	key := obj.Identifier().Key()
	if _, ok := set.seen[key]; ok {
		return false
	}
	set.seen[key] = struct{}{}
	set.items = append(set.items, obj)
	return true
}

func (set *includedSet) list() []ResourceObject {
	out := make([]ResourceObject, len(set.items))
	copy(out, set.items)
	return out
}

// without returns the accumulated objects whose identifiers are not in ids
func (set *includedSet) without(ids []Identifier) []ResourceObject {
	if len(ids) == 0 {
		return set.list()
	}
	skip := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		skip[id.Key()] = struct{}{}
	}

	out := make([]ResourceObject, 0, len(set.items))
	for _, obj := range set.items {
		if _, ok := skip[obj.Identifier().Key()]; ok {
			continue
		}
		out = append(out, obj)
	}
	return out
}

// CollectIncluded resolves every include path against every record and
// returns the base resource object of each record reached, at every hop of
// the path, deduplicated by identifier in first-seen order. A path that fails
// on any record fails the whole collection.
func (s *Serializer) CollectIncluded(records []resource.Record, paths []string, fields map[string][]string) ([]ResourceObject, error) {
	set := newIncludedSet()
	if err := s.collectInto(set, records, paths, fields); err != nil {
		return nil, err
	}
	return set.list(), nil
}

func (s *Serializer) collectInto(set *includedSet, records []resource.Record, paths []string, fields map[string][]string) error {
	for _, path := range uniqueStrings(paths) {
		for _, r := range records {
			_, hops, err := walkPath(r, path)
			if err != nil {
				return err
			}
			for _, hop := range hops {
				for _, rec := range hop {
					if set.has(s.Identify(rec)) {
						continue
					}
					set.add(s.BaseResourceObject(rec, fields))
				}
			}
		}
	}
	return nil
}

func uniqueStrings(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
