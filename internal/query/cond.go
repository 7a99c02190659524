// internal/query/cond.go
//
// Small builder for dynamic WHERE clauses with Postgres-numbered
// placeholders.  Repositories add predicates conditionally and the builder
// keeps expressions and arguments in lockstep, which is where hand-rolled
// string concatenation usually goes wrong.
package query

import (
	"strconv"
	"strings"
)

// Cond accumulates WHERE predicates.  Write predicates with ? markers; each
// marker is rewritten to the next $N placeholder as its argument is
// appended.  The zero value is ready to use.
type Cond struct {
	clauses []string
	args    []any
}

// And appends one predicate.  expr must contain exactly one ? per value.
func (c *Cond) And(expr string, values ...any) {
	for _, v := range values {
		c.args = append(c.args, v)
		expr = strings.Replace(expr, "?", "$"+strconv.Itoa(len(c.args)), 1)
	}
	c.clauses = append(c.clauses, expr)
}

// AndAny appends a group of predicates joined by OR, sharing the clause
// list's AND conjunction with everything else.  Empty groups are ignored.
func (c *Cond) AndAny(exprs []string, values ...any) {
	if len(exprs) == 0 {
		return
	}
	group := strings.Join(exprs, " OR ")
	if len(exprs) > 1 {
		group = "(" + group + ")"
	}
	c.And(group, values...)
}

// Next registers one more argument outside the WHERE clause, for LIMIT and
// OFFSET, and returns its placeholder.
func (c *Cond) Next(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

// Where renders " WHERE …" or an empty string when no predicate was added.
func (c *Cond) Where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// Args returns the accumulated arguments in placeholder order.
func (c *Cond) Args() []any { return c.args }
