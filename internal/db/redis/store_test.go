package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/cinedex-cloud/cinedex/internal/db"
)

func TestNewStore_RequiresAddrs(t *testing.T) {
	if _, err := NewStore(Config{}); err == nil {
		t.Error("expected error for empty addrs")
	}
}

func TestGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "work:list")).
		Return(mock.Result(mock.RedisBlobString(`[{"id":"w-1"}]`)))

	got, err := s.Get(context.Background(), "work:list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `[{"id":"w-1"}]` {
		t.Errorf("unexpected value: %s", got)
	}
}

func TestGet_Miss(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("GET", "missing")).
		Return(mock.Result(mock.RedisNil()))

	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("got %v, want db.ErrKeyNotFound", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("SET", "k", "v", "EX", "300")).
		Return(mock.Result(mock.RedisString("OK")))

	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), 5*time.Minute); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJSONGet(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("JSON.GET", "works:w-1", "$")).
		Return(mock.Result(mock.RedisBlobString(`[{"id":"w-1","title":"The Matrix"}]`)))

	got, err := s.JSONGet(context.Background(), "works:w-1", "$")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(got) != `[{"id":"w-1","title":"The Matrix"}]` {
		t.Errorf("unexpected value: %s", got)
	}
}

func TestJSONGet_Miss(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("JSON.GET", "works:missing", "$")).
		Return(mock.Result(mock.RedisNil()))

	if _, err := s.JSONGet(context.Background(), "works:missing", "$"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("got %v, want db.ErrKeyNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match(
		"FT.SEARCH", "works:idx", "*",
		"SORTBY", "title", "ASC",
		"LIMIT", "10", "5",
		"RETURN", "1", "$",
		"DIALECT", "2",
	)).Return(mock.Result(mock.RedisArray(
		mock.RedisInt64(2),
		mock.RedisString("works:w-1"),
		mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"id":"w-1"}`)),
		mock.RedisString("works:w-2"),
		mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"id":"w-2"}`)),
	)))

	res, err := s.Search(context.Background(), db.SearchOptions{
		Index:        "works:idx",
		Query:        "*",
		Offset:       10,
		Limit:        5,
		SortBy:       "title",
		ReturnFields: []string{"$"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 2 || len(res.Entries) != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Entries[0].Key != "works:w-1" || res.Entries[0].Fields["$"] != `{"id":"w-1"}` {
		t.Errorf("unexpected entry: %+v", res.Entries[0])
	}
}

func TestSearch_SortDesc(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		for i, arg := range cmd {
			if arg == "SORTBY" {
				return cmd[i+1] == "rating" && cmd[i+2] == "DESC"
			}
		}
		return false
	})).Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	_, err := s.Search(context.Background(), db.SearchOptions{
		Index:    "works:idx",
		Query:    "*",
		Limit:    10,
		SortBy:   "rating",
		SortDesc: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSearch_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return cmd[0] == "FT.SEARCH"
	})).Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	res, err := s.Search(context.Background(), db.SearchOptions{Index: "works:idx", Query: "@title:(zzz)", Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Total != 0 || len(res.Entries) != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestSearch_UnknownIndexIsBadQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return cmd[0] == "FT.SEARCH"
	})).Return(mock.Result(mock.RedisError("Unknown Index name")))

	_, err := s.Search(context.Background(), db.SearchOptions{Index: "nope", Query: "*", Limit: 10})
	if !errors.Is(err, db.ErrBadQuery) {
		t.Errorf("got %v, want db.ErrBadQuery", err)
	}
}

func TestSearch_SyntaxErrorIsBadQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return cmd[0] == "FT.SEARCH"
	})).Return(mock.Result(mock.RedisError("Syntax error at offset 3 near '('")))

	_, err := s.Search(context.Background(), db.SearchOptions{Index: "works:idx", Query: "((", Limit: 10})
	if !errors.Is(err, db.ErrBadQuery) {
		t.Errorf("got %v, want db.ErrBadQuery", err)
	}
}

func TestSearch_TransportErrorPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
		return cmd[0] == "FT.SEARCH"
	})).Return(mock.ErrorResult(context.DeadlineExceeded))

	_, err := s.Search(context.Background(), db.SearchOptions{Index: "works:idx", Query: "*", Limit: 10})
	if errors.Is(err, db.ErrBadQuery) {
		t.Errorf("transport error misclassified as bad query: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("underlying cause lost: %v", err)
	}
}

func TestSearch_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	if _, err := s.Search(context.Background(), db.SearchOptions{Query: "*"}); err == nil {
		t.Error("expected error for empty index")
	}
	if _, err := s.Search(context.Background(), db.SearchOptions{Index: "idx"}); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestSearchCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match(
		"FT.SEARCH", "works:idx", "@category_ids:{g\\-1}",
		"LIMIT", "0", "0", "DIALECT", "2",
	)).Return(mock.Result(mock.RedisArray(mock.RedisInt64(17))))

	n, err := s.SearchCount(context.Background(), "works:idx", "@category_ids:{g\\-1}")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 17 {
		t.Errorf("got %d, want 17", n)
	}
}

func TestPing(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)
	s := NewStoreForTest(c)

	c.EXPECT().Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
