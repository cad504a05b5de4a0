package serializer

import "fmt"

// Strategy selects the query parameters used in pagination links
type Strategy string

const (
	// StrategyPage emits page[number] and page[size]
	StrategyPage Strategy = "page"
	// StrategyOffset emits page[offset] and page[limit]
	StrategyOffset Strategy = "offset"
)

// ParseStrategy converts a configuration value to a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyPage, "":
		return StrategyPage, nil
	case StrategyOffset:
		return StrategyOffset, nil
	default:
		return "", fmt.Errorf("unknown pagination strategy %q", s)
	}
}

// Options controls document rendering. It is passed explicitly to every
// entry point; nothing is read from ambient configuration.
type Options struct {
	// SingularTypeNames disables pluralisation of resource type names
	SingularTypeNames bool

	// IncludeVersion emits a top-level jsonapi object with Version
	IncludeVersion bool
	Version        string

	// Pagination is the link format used for paged collections
	Pagination Strategy

	// IncludeTotal emits meta.total on paged collections
	IncludeTotal bool

	// EnableIncludes allows the include parameter. When false any requested
	// include fails with ErrUnsupportedInclusion.
	EnableIncludes bool
}

// DefaultOptions returns plural type names, page links, includes enabled and
// no version object or total.
func DefaultOptions() Options {
	return Options{
		Version:        "1.0",
		Pagination:     StrategyPage,
		EnableIncludes: true,
	}
}

// Validate checks the option values
func (o Options) Validate() error {
	if _, err := ParseStrategy(string(o.Pagination)); err != nil {
		return err
	}
	if o.IncludeVersion && o.Version == "" {
		return fmt.Errorf("a version is required when the jsonapi object is enabled")
	}
	return nil
}
