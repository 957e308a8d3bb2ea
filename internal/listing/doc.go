// Package listing answers catalog questions for the HTTP surface.
//
// A Service turns normalized request parameters into store calls and
// decorates the results with display fields (formatted price, discount
// and commission percentages). It holds no per-request state; every
// store call scopes its own connection.
//
// Health and DatabaseReport never fail. Their errors are reported inside
// the returned body so operators always get an answer.
package listing
