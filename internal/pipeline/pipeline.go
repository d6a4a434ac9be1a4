// Package pipeline composes the match, enrich, shape and paginate stages of a
// read query into a page query and a matching count query.
//
// Stage fragments use `?` placeholders; Build rebinds them to $1..$n in the
// order the fragments appear in the final statement.
package pipeline

import (
	"fmt"
	"strings"

	"go-media-backend/internal/model"
)

type fragment struct {
	sql  string
	args []any
}

// Query is a single read pipeline rooted at one table.
type Query struct {
	table    string
	alias    string
	columns  []fragment
	joins    []fragment
	filters  []fragment
	matches  []fragment
	orderBy  []string
	tieBreak string
	page     model.PageOptions
	paginate bool
}

// From starts a pipeline over table, referenced in fragments as alias.
func From(table string, alias string) *Query {
	return &Query{table: table, alias: alias}
}

// Match adds a predicate every row must satisfy.
func (q *Query) Match(cond string, args ...any) *Query {
	q.matches = append(q.matches, fragment{sql: cond, args: args})
	return q
}

// MatchIf adds the predicate only when ok is true.
func (q *Query) MatchIf(ok bool, cond string, args ...any) *Query {
	if !ok {
		return q
	}
	return q.Match(cond, args...)
}

// MatchSearch adds a case-insensitive substring match of term over columns.
// An empty term matches everything.
func (q *Query) MatchSearch(term string, columns ...string) *Query {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return q
	}

	pattern := "%" + EscapeLike(term) + "%"
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		parts = append(parts, col+` ILIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	return q.Match("("+strings.Join(parts, " OR ")+")", args...)
}

// Join adds an enrichment join. Enrichment joins never change which rows
// match, so they are left out of the count query.
func (q *Query) Join(clause string, args ...any) *Query {
	q.joins = append(q.joins, fragment{sql: clause, args: args})
	return q
}

// JoinMatch adds a join that restricts the matched rows. It is kept in the
// count query.
func (q *Query) JoinMatch(clause string, args ...any) *Query {
	q.filters = append(q.filters, fragment{sql: clause, args: args})
	return q
}

// Project sets the response column list. Columns may carry placeholders for
// viewer-relative flags.
func (q *Query) Project(column string, args ...any) *Query {
	q.columns = append(q.columns, fragment{sql: column, args: args})
	return q
}

// Columns projects several plain columns at once.
func (q *Query) Columns(columns ...string) *Query {
	for _, col := range columns {
		q.Project(col)
	}
	return q
}

// OrderBy sets a fixed ordering for unpaginated pipelines or one that
// precedes the paginated sort key.
func (q *Query) OrderBy(terms ...string) *Query {
	q.orderBy = append(q.orderBy, terms...)
	return q
}

// TieBreak overrides the root id column used to order equal sort keys.
func (q *Query) TieBreak(column string) *Query {
	q.tieBreak = column
	return q
}

// Paginate sorts by the requested field through sortable, falls back to the
// created_at column when the field is not sortable here, and breaks ties by
// the root id unless TieBreak named another column.
func (q *Query) Paginate(opts model.PageOptions, sortable map[model.SortField]string) *Query {
	opts = opts.Normalize()
	q.page = opts
	q.paginate = true

	column, ok := sortable[opts.SortField]
	if !ok {
		column, ok = sortable[model.SortByCreatedAt]
	}
	if !ok {
		column = q.alias + ".created_at"
	}

	dir := "DESC"
	if opts.SortDirection == model.SortAsc {
		dir = "ASC"
	}

	tie := q.tieBreak
	if tie == "" {
		tie = q.alias + ".id"
	}

	q.orderBy = append(q.orderBy, column+" "+dir, tie+" "+dir)
	return q
}

// PageOptions reports the normalized options the pipeline paginates with.
func (q *Query) PageOptions() model.PageOptions {
	return q.page
}

// Build renders the page query.
func (q *Query) Build() (string, []any) {
	var b strings.Builder
	var frags []fragment

	b.WriteString("SELECT ")
	if len(q.columns) == 0 {
		b.WriteString(q.alias + ".*")
	}
	for i, col := range q.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(col.sql)
		frags = append(frags, col)
	}

	frags = append(frags, q.writeFrom(&b, true)...)

	if len(q.orderBy) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(q.orderBy, ", "))
	}

	if q.paginate {
		b.WriteString(" LIMIT ? OFFSET ?")
		frags = append(frags, fragment{args: []any{q.page.Limit, q.page.Offset()}})
	}

	return rebind(b.String(), frags)
}

// BuildCount renders the count query matching Build's rows before pagination.
func (q *Query) BuildCount() (string, []any) {
	var b strings.Builder
	b.WriteString("SELECT COUNT(*)")
	frags := q.writeFrom(&b, false)
	return rebind(b.String(), frags)
}

func (q *Query) writeFrom(b *strings.Builder, withEnrichment bool) []fragment {
	var frags []fragment

	fmt.Fprintf(b, " FROM %s %s", q.table, q.alias)

	for _, f := range q.filters {
		b.WriteString(" " + f.sql)
		frags = append(frags, f)
	}
	if withEnrichment {
		for _, j := range q.joins {
			b.WriteString(" " + j.sql)
			frags = append(frags, j)
		}
	}

	for i, m := range q.matches {
		if i == 0 {
			b.WriteString(" WHERE ")
		} else {
			b.WriteString(" AND ")
		}
		b.WriteString(m.sql)
		frags = append(frags, m)
	}

	return frags
}

// rebind swaps each `?` for a positional parameter. The fragments' args are
// concatenated in the same order their SQL was written.
func rebind(sql string, frags []fragment) (string, []any) {
	args := make([]any, 0)
	for _, f := range frags {
		args = append(args, f.args...)
	}

	var b strings.Builder
	n := 0
	for _, r := range sql {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}

	return b.String(), args
}

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
