package chi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cinedex-cloud/cinedex/internal/domain/search"
)

// Query parameter names follow the JSON:API style the public API has
// always used.
const (
	paramPageNumber = "page[number]"
	paramPageSize   = "page[size]"
	paramCategory   = "filter[category]"
	paramQuery      = "query"
	paramSort       = "sort"
)

// pageDefaults carries the configured listing defaults into parsing.
type pageDefaults struct {
	Size    int
	MaxSize int
}

// parseListParams extracts pagination, filter, sort and free text from the
// request. Invalid values are rejected here, before the core is reached.
func parseListParams(r *http.Request, d pageDefaults) (search.Params, error) {
	q := r.URL.Query()

	page, err := positiveInt(q.Get(paramPageNumber), 1, paramPageNumber)
	if err != nil {
		return search.Params{}, err
	}

	size, err := positiveInt(q.Get(paramPageSize), d.Size, paramPageSize)
	if err != nil {
		return search.Params{}, err
	}
	if size > d.MaxSize {
		return search.Params{}, fmt.Errorf("%s must be <= %d, got %d", paramPageSize, d.MaxSize, size)
	}

	return search.Params{
		Query:      q.Get(paramQuery),
		Page:       page,
		Size:       size,
		CategoryID: q.Get(paramCategory),
		Sort:       q.Get(paramSort),
	}, nil
}

func positiveInt(raw string, def int, name string) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number, got %q", name, raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%s must be >= 1, got %d", name, n)
	}
	return n, nil
}
