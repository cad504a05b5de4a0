// Package serializer renders a graph of resource.Record values as JSON:API
// documents.
//
// Every operation is a pure function of its arguments and the Options the
// Serializer was created with. Relationships are never fetched: the records
// passed in must already carry the relationships the caller wants rendered.
// Failures abort the whole document; nothing is logged.
package serializer

// Serializer holds rendering options. It has no mutable state and is safe
// for concurrent use.
type Serializer struct {
	opts Options
}

// New creates a serializer with the given options
func New(opts Options) *Serializer {
	if opts.Pagination == "" {
		opts.Pagination = StrategyPage
	}
	return &Serializer{opts: opts}
}

// Options returns the serializer's options
func (s *Serializer) Options() Options {
	return s.opts
}
