package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/cinedex-cloud/cinedex/internal/db"
)

// Search performs a paginated FT.SEARCH with optional SORTBY.
func (s *Store) Search(ctx context.Context, opts db.SearchOptions) (*db.SearchResult, error) {
	if opts.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if opts.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	args := []string{opts.Index, opts.Query}

	if opts.SortBy != "" {
		order := "ASC"
		if opts.SortDesc {
			order = "DESC"
		}
		args = append(args, "SORTBY", opts.SortBy, order)
	}

	args = append(args, "LIMIT", strconv.Itoa(opts.Offset), strconv.Itoa(opts.Limit))

	if len(opts.ReturnFields) > 0 {
		args = append(args, "RETURN", strconv.Itoa(len(opts.ReturnFields)))
		args = append(args, opts.ReturnFields...)
	}

	args = append(args, "DIALECT", "2")

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpSearch, Err: classify(err)}
	}

	return parseSearchResult(raw)
}

// SearchCount returns the match count via FT.SEARCH with LIMIT 0 0, which
// avoids materializing the result set server-side.
func (s *Store) SearchCount(ctx context.Context, index, query string) (int, error) {
	cmd := s.b().Arbitrary("FT.SEARCH").Args(index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, &db.Error{Op: db.OpSearch, Err: classify(err)}
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse count: %w", err)
	}
	return int(total), nil
}

func parseSearchResult(raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	if total == 0 {
		return &db.SearchResult{Total: 0}, nil
	}

	entries := make([]db.SearchEntry, 0, len(raw)/2)
	// 2-stride: [total, key1, fields1, key2, fields2, ...]
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}

		fields, err := raw[i+1].ToArray()
		if err != nil {
			continue
		}

		entries = append(entries, db.SearchEntry{
			Key:    key,
			Fields: parseFieldPairs(fields),
		})
	}

	return &db.SearchResult{Total: int(total), Entries: entries}, nil
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}
