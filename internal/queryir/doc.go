// Package queryir provides the query intermediate representation used to
// describe product listing queries independently of SQL text.
//
// ARCHITECTURE:
//
//	[catalog.ListParams] → [Query IR] → [querysql compiler] → SQLite
//
// Request parameters never become SQL directly. They are first expressed
// as IR nodes, validated against a column whitelist, and only then
// compiled. Column names therefore come from code, and values always
// travel as bound parameters.
//
// SEALED INTERFACES:
//
// Query and Predicate are sealed interfaces using the marker method
// pattern. Only types in this package implement them, so compilers can
// switch over them exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Between:
//	...
//	}
//
// Both value and pointer forms are accepted wherever a node is consumed.
//
// SUPPORTED FRAGMENT:
//   - Select(from, left join, columns, filter, order, limit, offset)
//   - Count(from, filter)
//   - Predicates: Equals, AtLeast, GreaterThan, Between, NotBlank,
//     Contains, And
//   - Order terms on a field or on a tier of predicates
//
// Excluded: subqueries, inner/outer joins other than a single LEFT JOIN,
// free-form SQL expressions.
package queryir
