// Package query parses the JSON:API request parameters consumed by the
// serializer: include, fields[type] and page[...].
package query

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/conduit-lang/resourcegraph/pkg/web/serializer"
)

// ErrInvalidPageParam is returned when a page parameter is not a valid number
// or an offset is not a multiple of the limit
var ErrInvalidPageParam = errors.New("invalid page parameter")

// fieldsPattern matches query parameters like fields[typename]
var fieldsPattern = regexp.MustCompile(`^fields\[([^\]]+)\]$`)

// ParseInclude parses the include query parameter into a slice of relationship paths.
// Example: ?include=author,comments.author returns ["author", "comments.author"]
// Returns an empty slice if the include parameter is not present.
func ParseInclude(r *http.Request) []string {
	return splitList(r.URL.Query().Get("include"))
}

// ParseFields parses the fields query parameters into a map of resource types to field names.
// Example: ?fields[users]=name,email&fields[posts]=title
// Returns: {"users": ["name", "email"], "posts": ["title"]}
// An empty value keeps the type with no fields, which renders no attributes.
func ParseFields(r *http.Request) map[string][]string {
	result := make(map[string][]string)

	for key, values := range r.URL.Query() {
		matches := fieldsPattern.FindStringSubmatch(key)
		if len(matches) != 2 {
			continue
		}

		if len(values) == 0 {
			result[matches[1]] = []string{}
			continue
		}
		result[matches[1]] = splitList(values[0])
	}

	return result
}

// PageLimits bounds the page size accepted from clients
type PageLimits struct {
	DefaultSize int
	MaxSize     int
}

// DefaultPageLimits returns a default size of 20 and a maximum of 100
func DefaultPageLimits() PageLimits {
	return PageLimits{DefaultSize: 20, MaxSize: 100}
}

// ParsePage reads page[number] and page[size], or page[offset] and
// page[limit] for the offset strategy. Missing values fall back to the first
// page and the default size; sizes above the maximum are capped. A default
// size below 1 falls back to DefaultPageLimits. Pages are whole, so an offset
// must be a multiple of the resolved limit.
func ParsePage(r *http.Request, strategy serializer.Strategy, limits PageLimits) (serializer.Page, error) {
	q := r.URL.Query()
	if limits.DefaultSize < 1 {
		limits.DefaultSize = DefaultPageLimits().DefaultSize
	}

	sizeParam, posParam := serializer.ParamPageSize, serializer.ParamPageNumber
	if strategy == serializer.StrategyOffset {
		sizeParam, posParam = serializer.ParamPageLimit, serializer.ParamPageOffset
	}

	size, err := intParam(q.Get(sizeParam), limits.DefaultSize, sizeParam)
	if err != nil {
		return serializer.Page{}, err
	}
	if size < 1 {
		size = limits.DefaultSize
	}
	if limits.MaxSize > 0 && size > limits.MaxSize {
		size = limits.MaxSize
	}

	number := 1
	if strategy == serializer.StrategyOffset {
		offset, err := intParam(q.Get(posParam), 0, posParam)
		if err != nil {
			return serializer.Page{}, err
		}
		if offset%size != 0 {
			return serializer.Page{}, fmt.Errorf("%w: %s %d is not a multiple of %s %d", ErrInvalidPageParam, posParam, offset, sizeParam, size)
		}
		number = offset/size + 1
	} else {
		number, err = intParam(q.Get(posParam), 1, posParam)
		if err != nil {
			return serializer.Page{}, err
		}
	}

	return serializer.NewPage(number, size, 0), nil
}

// ValidateInclude rejects include paths that are not dot-separated
// relationship names
func ValidateInclude(include []string) error {
	for _, path := range include {
		if !serializer.ValidPath(path) {
			return &serializer.InvalidRelationPathError{Path: path}
		}
	}
	return nil
}

// CheckInclusion rejects a non-empty include set when inclusion is disabled
func CheckInclusion(include []string, enabled bool) error {
	if len(include) > 0 && !enabled {
		return serializer.ErrUnsupportedInclusion
	}
	return nil
}

// Params holds the parsed parameters of one request
type Params struct {
	Include []string
	Fields  map[string][]string
	Page    serializer.Page
}

// Parse reads and validates every serializer parameter of the request
func Parse(r *http.Request, opts serializer.Options, limits PageLimits) (Params, error) {
	include := ParseInclude(r)
	if err := CheckInclusion(include, opts.EnableIncludes); err != nil {
		return Params{}, err
	}
	if err := ValidateInclude(include); err != nil {
		return Params{}, err
	}

	page, err := ParsePage(r, opts.Pagination, limits)
	if err != nil {
		return Params{}, err
	}

	return Params{
		Include: include,
		Fields:  ParseFields(r),
		Page:    page,
	}, nil
}

func splitList(value string) []string {
	if value == "" {
		return []string{}
	}

	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func intParam(value string, fallback int, name string) (int, error) {
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", ErrInvalidPageParam, name, value)
	}
	return n, nil
}
