package queryir

// Query is a compilable statement. Sealed to this package.
//
// Query types:
//   - Select: rows with optional left join, ordering and paging
//   - Count: number of rows matching a filter
type Query interface {
	queryNode()
}

// Predicate is a filter condition. Sealed to this package.
type Predicate interface {
	predicateNode()
}

// Source names a table and the alias its columns are qualified with.
type Source struct {
	Table string
	Alias string
}

// LeftJoin attaches an optional table. Fields are fully qualified
// ("c.id", "p.category_id").
type LeftJoin struct {
	Source      Source
	Field       string // column of the joined table
	ParentField string // column of the FROM table
}

// Column is a selected field with an optional output name.
type Column struct {
	Field string
	As    string
}

// Order is one ORDER BY term.
//
// A plain term sorts on Field. A tiered term ranks rows by the first of
// Tiers they satisfy (1-based), with rows matching none ranked last:
//
//	CASE WHEN <tier1> THEN 1 WHEN <tier2> THEN 2 ELSE 3 END
type Order struct {
	Field  string
	Tiers  []Predicate
	Desc   bool
	NoCase bool // compare text case-insensitively
}

// Select reads rows.
//
//	SELECT <columns> FROM <from> [LEFT JOIN ...] WHERE <filter>
//	ORDER BY <order> LIMIT ? OFFSET ?
//
// Limit 0 means unbounded; Offset is only emitted with a Limit.
type Select struct {
	From    Source
	Join    *LeftJoin
	Columns []Column
	Filter  Predicate
	OrderBy []Order
	Limit   int
	Offset  int
}

func (Select) queryNode() {}

// Count counts rows matching Filter.
//
//	SELECT COUNT(*) FROM <from> WHERE <filter>
type Count struct {
	From   Source
	Filter Predicate
}

func (Count) queryNode() {}

// Equals matches field = value.
type Equals struct {
	Field string
	Value any
}

func (Equals) predicateNode() {}

// AtLeast matches field >= value.
type AtLeast struct {
	Field string
	Value any
}

func (AtLeast) predicateNode() {}

// GreaterThan matches field > value. NULL never matches.
type GreaterThan struct {
	Field string
	Value any
}

func (GreaterThan) predicateNode() {}

// Between matches low <= field <= high.
type Between struct {
	Field string
	Low   any
	High  any
}

func (Between) predicateNode() {}

// NotBlank matches fields that are neither NULL nor the empty string.
type NotBlank struct {
	Field string
}

func (NotBlank) predicateNode() {}

// Contains matches rows where any of Fields contains Term, ignoring case.
// Term is matched literally; wildcard characters carry no meaning.
type Contains struct {
	Fields []string
	Term   string
}

func (Contains) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Conjoin builds an And from preds, dropping nils.
func Conjoin(preds ...Predicate) And {
	out := And{Predicates: make([]Predicate, 0, len(preds))}
	for _, p := range preds {
		if p != nil {
			out.Predicates = append(out.Predicates, p)
		}
	}
	return out
}
