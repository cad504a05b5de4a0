package resource

// Kind identifies the shape of a relationship value
type Kind int

const (
	// KindNone is an empty to-one relationship
	KindNone Kind = iota
	// KindSingle is a to-one relationship holding a record
	KindSingle
	// KindMany is a to-many relationship holding zero or more records
	KindMany
)

// String returns the string representation of Kind
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindSingle:
		return "single"
	case KindMany:
		return "many"
	default:
		return "unknown"
	}
}

// Value is the resolved value of a relationship: nothing, one record, or an
// ordered sequence of records.
type Value struct {
	kind    Kind
	record  Record
	records []Record
}

// None returns an empty to-one value
func None() Value {
	return Value{kind: KindNone}
}

// One returns a to-one value. A nil record yields None.
func One(r Record) Value {
	if r == nil {
		return None()
	}
	return Value{kind: KindSingle, record: r}
}

// Many returns a to-many value. The slice is copied so later changes by the
// caller do not leak into the value.
func Many(rs ...Record) Value {
	records := make([]Record, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			records = append(records, r)
		}
	}
	return Value{kind: KindMany, records: records}
}

// Kind returns the shape of the value
func (v Value) Kind() Kind {
	return v.kind
}

// IsNone reports whether the value is an empty to-one relationship
func (v Value) IsNone() bool {
	return v.kind == KindNone
}

// Record returns the held record for a single value, nil otherwise
func (v Value) Record() Record {
	if v.kind != KindSingle {
		return nil
	}
	return v.record
}

// Records returns every record held by the value in order. A single value
// yields a one element slice and None yields an empty slice.
func (v Value) Records() []Record {
	switch v.kind {
	case KindSingle:
		return []Record{v.record}
	case KindMany:
		out := make([]Record, len(v.records))
		copy(out, v.records)
		return out
	default:
		return []Record{}
	}
}

// Len returns the number of records held by the value
func (v Value) Len() int {
	switch v.kind {
	case KindSingle:
		return 1
	case KindMany:
		return len(v.records)
	default:
		return 0
	}
}
