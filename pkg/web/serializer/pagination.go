package serializer

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Pagination query parameter names
const (
	ParamPageNumber = "page[number]"
	ParamPageSize   = "page[size]"
	ParamPageOffset = "page[offset]"
	ParamPageLimit  = "page[limit]"
)

// Page describes one page of a collection. Pages are numbered from 1.
type Page struct {
	Number int
	Size   int

	// Total is the number of records available across all pages
	Total int

	// Pages overrides the page count derived from Total when positive
	Pages int
}

// NewPage creates a page descriptor, clamping number and size to at least 1
func NewPage(number, size, total int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	return Page{Number: number, Size: size, Total: total}
}

// LastPage returns the number of the last available page, never less than 1
func (p Page) LastPage() int {
	if p.Pages > 0 {
		return p.Pages
	}
	if p.Size <= 0 {
		return 1
	}
	last := (p.Total + p.Size - 1) / p.Size
	if last < 1 {
		last = 1
	}
	return last
}

// Offset returns the zero-based index of the page's first record
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// HasPrev reports whether a previous page exists
func (p Page) HasPrev() bool {
	return p.Number > 1
}

// HasNext reports whether a next page exists
func (p Page) HasNext() bool {
	return p.Number < p.LastPage()
}

// FormatPageLinks returns first, last and, when they exist, prev and next
// links for the page. Pagination parameters are merged into baseURL's query;
// other parameters are kept. The meta map holds total when IncludeTotal is
// set and is nil otherwise.
func (s *Serializer) FormatPageLinks(p Page, strategy Strategy, baseURL string) (map[string]string, map[string]any) {
	last := p.LastPage()

	links := map[string]string{
		"first": buildPageURL(baseURL, strategy, 1, p.Size),
		"last":  buildPageURL(baseURL, strategy, last, p.Size),
	}
	if p.HasPrev() {
		prev := p.Number - 1
		if prev > last {
			prev = last
		}
		links["prev"] = buildPageURL(baseURL, strategy, prev, p.Size)
	}
	if p.HasNext() {
		links["next"] = buildPageURL(baseURL, strategy, p.Number+1, p.Size)
	}

	var meta map[string]any
	if s.opts.IncludeTotal {
		meta = map[string]any{"total": p.Total}
	}

	return links, meta
}

func pageParams(strategy Strategy, number, size int) [][2]string {
	if strategy == StrategyOffset {
		return [][2]string{
			{ParamPageOffset, strconv.Itoa((number - 1) * size)},
			{ParamPageLimit, strconv.Itoa(size)},
		}
	}
	return [][2]string{
		{ParamPageNumber, strconv.Itoa(number)},
		{ParamPageSize, strconv.Itoa(size)},
	}
}

func buildPageURL(baseURL string, strategy Strategy, number, size int) string {
	params := pageParams(strategy, number, size)

	u, err := url.Parse(baseURL)
	if err != nil {
		// Fallback to simple concatenation if parse fails
		parts := make([]string, 0, len(params))
		for _, p := range params {
			parts = append(parts, p[0]+"="+p[1])
		}
		return fmt.Sprintf("%s?%s", baseURL, strings.Join(parts, "&"))
	}

	q := u.Query()
	for _, name := range []string{ParamPageNumber, ParamPageSize, ParamPageOffset, ParamPageLimit} {
		q.Del(name)
	}
	for _, p := range params {
		q.Set(p[0], p[1])
	}
	u.RawQuery = encodeQuery(q)

	return u.String()
}

// encodeQuery is url.Values.Encode with brackets left literal, so links read
// page[number]=2 rather than page%5Bnumber%5D=2
func encodeQuery(v url.Values) string {
	if len(v) == 0 {
		return ""
	}

	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		key := unescapeBrackets(url.QueryEscape(k))
		for _, value := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(key)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}
	return b.String()
}

func unescapeBrackets(s string) string {
	return strings.NewReplacer("%5B", "[", "%5D", "]").Replace(s)
}
