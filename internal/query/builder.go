// Package query translates domain search requests into RediSearch query
// strings. All functions are pure: identical logical parameters always
// produce identical queries.
package query

import (
	"fmt"
	"strings"

	"github.com/cinedex-cloud/cinedex/internal/domain/search"
	"github.com/cinedex-cloud/cinedex/internal/domain/work"
)

// Spec is a built query plus its pagination and sort, ready to be bound to
// an index by a storage port.
type Spec struct {
	Query    string
	Offset   int
	Limit    int
	SortBy   string
	SortDesc bool
}

// Work index text fields with their query-time weights. Title dominates,
// then cast, description, categories, then writing/directing credits.
// The weights only shape relevance order, they never exclude matches.
var workTextFields = []struct {
	field  string
	weight string
}{
	{"title", "5.0"},
	{"cast_names", "4.0"},
	{"description", "3.0"},
	{"category_names", "2.0"},
	{"writer_names", "1.0"},
	{"director_names", "1.0"},
}

// Tag fields holding embedded reference ids in the work index.
const (
	workCategoryTag = "category_ids"
	workActorTag    = "actor_ids"
	workWriterTag   = "writer_ids"
	workDirectorTag = "director_ids"
)

// Works builds the work listing/search query: weighted full-text match,
// optional category filter (pure filter, no score contribution), sort and
// pagination.
func Works(p search.Params) Spec {
	var clauses []string

	if p.CategoryID != "" {
		clauses = append(clauses, tagClause(workCategoryTag, p.CategoryID))
	}

	if text := strings.TrimSpace(p.Query); text != "" {
		clauses = append(clauses, weightedTextClause(text))
	}

	return specFor(p, clauses)
}

// Categories builds the category listing/search query over the name field.
func Categories(p search.Params) Spec {
	var clauses []string
	if text := strings.TrimSpace(p.Query); text != "" {
		clauses = append(clauses, fmt.Sprintf("@name:(%s)", escapeText(text)))
	}
	return specFor(p, clauses)
}

// Contributors builds the contributor search query over the full name.
func Contributors(p search.Params) Spec {
	var clauses []string
	if text := strings.TrimSpace(p.Query); text != "" {
		clauses = append(clauses, fmt.Sprintf("@full_name:(%s)", escapeText(text)))
	}
	return specFor(p, clauses)
}

// WorksByContributor builds the nested-join query matching works whose
// embedded role collection contains the contributor id.
func WorksByContributor(contributorID string, role work.Role) string {
	switch role {
	case work.RoleWriter:
		return tagClause(workWriterTag, contributorID)
	case work.RoleDirector:
		return tagClause(workDirectorTag, contributorID)
	default:
		return tagClause(workActorTag, contributorID)
	}
}

// WorksByCategory builds the query matching works whose embedded category
// collection contains the category id. Used with a count for popularity.
func WorksByCategory(categoryID string) string {
	return tagClause(workCategoryTag, categoryID)
}

func specFor(p search.Params, clauses []string) Spec {
	q := "*"
	if len(clauses) > 0 {
		q = strings.Join(clauses, " ")
	}
	field, desc := p.SortField()
	return Spec{
		Query:    q,
		Offset:   p.Offset(),
		Limit:    p.Size,
		SortBy:   field,
		SortDesc: desc,
	}
}

func weightedTextClause(text string) string {
	escaped := escapeText(text)
	parts := make([]string, 0, len(workTextFields))
	for _, f := range workTextFields {
		parts = append(parts, fmt.Sprintf("(@%s:(%s)) => { $weight: %s }", f.field, escaped, f.weight))
	}
	return "(" + strings.Join(parts, " | ") + ")"
}

func tagClause(field, value string) string {
	return fmt.Sprintf("@%s:{%s}", field, escapeTag(value))
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	" ", "\\ ",
)

func escapeTag(s string) string {
	return tagEscaper.Replace(s)
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`!`, `\!`,
	`%`, `\%`,
	`^`, `\^`,
	`$`, `\$`,
	`<`, `\<`,
	`>`, `\>`,
	`=`, `\=`,
	`;`, `\;`,
	`+`, `\+`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
