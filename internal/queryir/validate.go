package queryir

import (
	"fmt"
	"strings"
)

// Schema whitelists the columns of each table: table → column → true.
type Schema map[string]map[string]bool

// NewSchema builds a Schema from table → column list.
func NewSchema(tables map[string][]string) Schema {
	s := make(Schema, len(tables))
	for table, cols := range tables {
		set := make(map[string]bool, len(cols))
		for _, c := range cols {
			set[c] = true
		}
		s[table] = set
	}
	return s
}

// ValidationResult reports whether a query only references whitelisted
// tables and columns and only carries bindable values.
type ValidationResult struct {
	Valid bool

	// Problems lists every violation found. Empty when Valid is true.
	Problems []string
}

// Err returns nil for a valid result and an error joining all problems
// otherwise.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("invalid query: %s", strings.Join(r.Problems, "; "))
}

// Validate checks q against schema. Every field must be written as
// "alias.column" where alias belongs to the query's FROM or JOIN source.
//
// Validate is a pure function with no side effects.
func Validate(q Query, schema Schema) ValidationResult {
	v := &validator{schema: schema, problems: []string{}}
	v.validateQuery(q)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	schema   Schema
	aliases  map[string]string // alias → table
	problems []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validateQuery(q Query) {
	switch query := q.(type) {
	case Select:
		v.validateSelect(query)
	case *Select:
		v.validateSelect(*query)
	case Count:
		v.validateCount(query)
	case *Count:
		v.validateCount(*query)
	case nil:
		v.addProblem("nil query")
	default:
		v.addProblem("unknown query type %T", q)
	}
}

func (v *validator) bindSource(src Source) {
	if _, ok := v.schema[src.Table]; !ok {
		v.addProblem("unknown table %q", src.Table)
		return
	}
	if src.Alias == "" {
		v.addProblem("table %q has no alias", src.Table)
		return
	}
	if _, dup := v.aliases[src.Alias]; dup {
		v.addProblem("alias %q used twice", src.Alias)
		return
	}
	v.aliases[src.Alias] = src.Table
}

func (v *validator) validateSelect(sel Select) {
	v.aliases = map[string]string{}
	v.bindSource(sel.From)
	if sel.Join != nil {
		v.bindSource(sel.Join.Source)
		v.checkField(sel.Join.Field)
		v.checkField(sel.Join.ParentField)
	}

	if len(sel.Columns) == 0 {
		v.addProblem("select has no columns")
	}
	for _, col := range sel.Columns {
		v.checkField(col.Field)
		if col.As != "" && !isIdent(col.As) {
			v.addProblem("invalid column alias %q", col.As)
		}
	}

	v.validatePredicate(sel.Filter)

	for _, o := range sel.OrderBy {
		switch {
		case len(o.Tiers) > 0:
			for _, t := range o.Tiers {
				v.validatePredicate(t)
			}
		case o.Field != "":
			v.checkField(o.Field)
		default:
			v.addProblem("order term has neither field nor tiers")
		}
	}

	if sel.Limit < 0 {
		v.addProblem("negative limit %d", sel.Limit)
	}
	if sel.Offset < 0 {
		v.addProblem("negative offset %d", sel.Offset)
	}
	if sel.Offset > 0 && sel.Limit == 0 {
		v.addProblem("offset without limit")
	}
}

func (v *validator) validateCount(c Count) {
	v.aliases = map[string]string{}
	v.bindSource(c.From)
	v.validatePredicate(c.Filter)
}

func (v *validator) validatePredicate(p Predicate) {
	switch pred := p.(type) {
	case nil:
		// no filter
	case Equals:
		v.checkField(pred.Field)
		v.checkValue(pred.Field, pred.Value)
	case *Equals:
		v.validatePredicate(*pred)
	case AtLeast:
		v.checkField(pred.Field)
		v.checkValue(pred.Field, pred.Value)
	case *AtLeast:
		v.validatePredicate(*pred)
	case GreaterThan:
		v.checkField(pred.Field)
		v.checkValue(pred.Field, pred.Value)
	case *GreaterThan:
		v.validatePredicate(*pred)
	case Between:
		v.checkField(pred.Field)
		v.checkValue(pred.Field, pred.Low)
		v.checkValue(pred.Field, pred.High)
	case *Between:
		v.validatePredicate(*pred)
	case NotBlank:
		v.checkField(pred.Field)
	case *NotBlank:
		v.validatePredicate(*pred)
	case Contains:
		if len(pred.Fields) == 0 {
			v.addProblem("contains has no fields")
		}
		for _, f := range pred.Fields {
			v.checkField(f)
		}
		if pred.Term == "" {
			v.addProblem("contains has an empty term")
		}
	case *Contains:
		v.validatePredicate(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.validatePredicate(sub)
		}
	case *And:
		v.validatePredicate(*pred)
	default:
		v.addProblem("unknown predicate type %T", p)
	}
}

// checkField verifies an "alias.column" reference.
func (v *validator) checkField(field string) {
	alias, column, ok := strings.Cut(field, ".")
	if !ok {
		v.addProblem("field %q is not qualified", field)
		return
	}
	table, known := v.aliases[alias]
	if !known {
		v.addProblem("field %q uses unknown alias %q", field, alias)
		return
	}
	if !v.schema[table][column] {
		v.addProblem("unknown column %q on table %q", column, table)
	}
}

// checkValue only admits values the driver binds natively.
func (v *validator) checkValue(field string, value any) {
	switch value.(type) {
	case string, int, int64, float64:
	default:
		v.addProblem("field %q compared to unsupported value %T", field, value)
	}
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
