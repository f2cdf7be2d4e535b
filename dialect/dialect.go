// Package dialect holds the lexical conventions and the type mapping of the
// Cloud Spanner SQL dialects.
package dialect

import "reflect"

// Dialect describes how statements for one backend spell identifiers,
// placeholders and literal values.
type Dialect interface {
	Name() string
	QuoteIdentifier(name string) string
	Placeholder(n int) string
	RenderValue(v any) string
}

// Dialect names.
const (
	NameCloudSpanner   = "cloudspanner"
	NameCloudSpannerPG = "cloudspanner-pg"
)

// isNilPointer reports whether v is a typed nil pointer, such as the nil
// *big.Rat of a NULL NUMERIC field.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
