// Package querysql compiles queryir queries to parameterized SQLite SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/vitrine/internal/queryir"
)

// Statement is compiled SQL with its positional parameters.
type Statement struct {
	SQL    string
	Params []any
}

// SQLCompiler compiles QueryIR to parameterized SQL for SQLite.
//
// CRITICAL: queries are validated against the schema whitelist before any
// SQL is produced, so only known identifiers reach the SQL text.
// CRITICAL: all values are parameterized, never interpolated.
// CRITICAL: every Select ends its ORDER BY with the FROM table's id so
// equal sort keys page deterministically.
type SQLCompiler struct {
	schema queryir.Schema
}

// NewSQLCompiler creates a compiler bound to a column whitelist.
func NewSQLCompiler(schema queryir.Schema) *SQLCompiler {
	return &SQLCompiler{schema: schema}
}

// Compile converts a query to a Statement.
func (c *SQLCompiler) Compile(q queryir.Query) (Statement, error) {
	if q == nil {
		return Statement{}, fmt.Errorf("cannot compile nil query")
	}
	if err := queryir.Validate(q, c.schema).Err(); err != nil {
		return Statement{}, err
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	case queryir.Count:
		return c.compileCount(query)
	case *queryir.Count:
		return c.compileCount(*query)
	default:
		return Statement{}, fmt.Errorf("unsupported query type: %T", q)
	}
}

// CompileFilter compiles a bare predicate into a WHERE fragment. Fields
// are checked against the schema using the aliases of from and joins.
// An empty fragment means no filter.
func (c *SQLCompiler) CompileFilter(from queryir.Source, p queryir.Predicate) (string, []any, error) {
	if err := queryir.Validate(queryir.Count{From: from, Filter: p}, c.schema).Err(); err != nil {
		return "", nil, err
	}
	return c.compilePredicate(p)
}

func (c *SQLCompiler) compileSelect(q queryir.Select) (Statement, error) {
	var b strings.Builder
	var params []any

	b.WriteString("SELECT ")
	b.WriteString(compileColumns(q.Columns))
	b.WriteString(" FROM ")
	b.WriteString(source(q.From))

	if q.Join != nil {
		fmt.Fprintf(&b, " LEFT JOIN %s ON %s = %s", source(q.Join.Source), q.Join.Field, q.Join.ParentField)
	}

	where, whereParams, err := c.compilePredicate(q.Filter)
	if err != nil {
		return Statement{}, fmt.Errorf("compile filter: %w", err)
	}
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
		params = append(params, whereParams...)
	}

	order, orderParams, err := c.compileOrder(q)
	if err != nil {
		return Statement{}, fmt.Errorf("compile order: %w", err)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(order)
	params = append(params, orderParams...)

	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
		if q.Offset > 0 {
			b.WriteString(" OFFSET ?")
			params = append(params, q.Offset)
		}
	}

	return Statement{SQL: b.String(), Params: params}, nil
}

func (c *SQLCompiler) compileCount(q queryir.Count) (Statement, error) {
	sql := "SELECT COUNT(*) FROM " + source(q.From)

	where, params, err := c.compilePredicate(q.Filter)
	if err != nil {
		return Statement{}, fmt.Errorf("compile filter: %w", err)
	}
	if where != "" {
		sql += " WHERE " + where
	}
	return Statement{SQL: sql, Params: params}, nil
}

func source(s queryir.Source) string {
	return s.Table + " " + s.Alias
}

// compileColumns renders the SELECT list in declaration order.
func compileColumns(cols []queryir.Column) string {
	parts := make([]string, 0, len(cols))
	for _, col := range cols {
		if col.As != "" {
			parts = append(parts, col.Field+" AS "+col.As)
		} else {
			parts = append(parts, col.Field)
		}
	}
	return strings.Join(parts, ", ")
}

// compileOrder renders ORDER BY terms and appends the stable id key.
func (c *SQLCompiler) compileOrder(q queryir.Select) (string, []any, error) {
	var parts []string
	var params []any

	for _, o := range q.OrderBy {
		dir := " ASC"
		if o.Desc {
			dir = " DESC"
		}

		if len(o.Tiers) > 0 {
			var b strings.Builder
			b.WriteString("CASE")
			for i, tier := range o.Tiers {
				sql, tierParams, err := c.compilePredicate(tier)
				if err != nil {
					return "", nil, err
				}
				if sql == "" {
					sql = "1 = 1"
				}
				fmt.Fprintf(&b, " WHEN %s THEN %d", sql, i+1)
				params = append(params, tierParams...)
			}
			fmt.Fprintf(&b, " ELSE %d END", len(o.Tiers)+1)
			parts = append(parts, b.String()+dir)
			continue
		}

		term := o.Field
		if o.NoCase {
			term += " COLLATE NOCASE"
		}
		parts = append(parts, term+dir)
	}

	if key := c.stableOrderKey(q); key != "" {
		parts = append(parts, key)
	}
	return strings.Join(parts, ", "), params, nil
}

// stableOrderKey returns the id tiebreaker for q unless an order term
// already sorts on it.
func (c *SQLCompiler) stableOrderKey(q queryir.Select) string {
	id := q.From.Alias + ".id"
	for _, o := range q.OrderBy {
		if o.Field == id {
			return ""
		}
	}
	if !c.schema[q.From.Table]["id"] {
		return ""
	}
	return id + " ASC"
}

// compilePredicate compiles a predicate to a WHERE fragment.
// CRITICAL: values are never interpolated; every value is a ? placeholder.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "", nil, nil
	case queryir.Equals:
		return pred.Field + " = ?", []any{pred.Value}, nil
	case *queryir.Equals:
		return c.compilePredicate(*pred)
	case queryir.AtLeast:
		return pred.Field + " >= ?", []any{pred.Value}, nil
	case *queryir.AtLeast:
		return c.compilePredicate(*pred)
	case queryir.GreaterThan:
		return pred.Field + " > ?", []any{pred.Value}, nil
	case *queryir.GreaterThan:
		return c.compilePredicate(*pred)
	case queryir.Between:
		return pred.Field + " BETWEEN ? AND ?", []any{pred.Low, pred.High}, nil
	case *queryir.Between:
		return c.compilePredicate(*pred)
	case queryir.NotBlank:
		return fmt.Sprintf("(%s IS NOT NULL AND %s <> '')", pred.Field, pred.Field), nil, nil
	case *queryir.NotBlank:
		return c.compilePredicate(*pred)
	case queryir.Contains:
		return compileContains(pred)
	case *queryir.Contains:
		return compileContains(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileAnd joins sub-predicates with AND. Empty fragments are skipped.
func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	var parts []string
	var params []any
	for _, sub := range and.Predicates {
		sql, subParams, err := c.compilePredicate(sub)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

// compileContains folds both sides with the casefold SQL function so the
// match ignores case beyond ASCII.
func compileContains(ct queryir.Contains) (string, []any, error) {
	pattern := "%" + EscapeLike(Fold(ct.Term)) + "%"
	parts := make([]string, 0, len(ct.Fields))
	params := make([]any, 0, len(ct.Fields))
	for _, f := range ct.Fields {
		parts = append(parts, fmt.Sprintf("%s(%s) LIKE ? ESCAPE '\\'", FoldFunc, f))
		params = append(params, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", params, nil
}
