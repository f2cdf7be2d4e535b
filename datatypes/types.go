// Package datatypes is the catalogue of the ORM's logical types and the
// registry that maps them onto a backend's concrete types.
//
// A Definition describes how a logical type behaves on one dialect: which
// backend type tags it corresponds to, how it renders as a column type, how a
// host value is serialized into a literal and how a raw backend value is
// parsed back. A Registry composes the base definitions with dialect
// overrides; a Type is one use of a logical type in a schema, carrying its
// parameters (length, precision, element type).
package datatypes

// Logical type names.
const (
	NameString    = "STRING"
	NameChar      = "CHAR"
	NameText      = "TEXT"
	NameTinyInt   = "TINYINT"
	NameSmallInt  = "SMALLINT"
	NameMediumInt = "MEDIUMINT"
	NameInteger   = "INTEGER"
	NameBigInt    = "BIGINT"
	NameFloat     = "FLOAT"
	NameReal      = "REAL"
	NameDouble    = "DOUBLE"
	NameDecimal   = "DECIMAL"
	NameBoolean   = "BOOLEAN"
	NameTime      = "TIME"
	NameDate      = "DATE"
	NameDateOnly  = "DATEONLY"
	NameUUID      = "UUID"
	NameEnum      = "ENUM"
	NameBlob      = "BLOB"
	NameJSON      = "JSON"
	NameGeometry  = "GEOMETRY"
	NameArray     = "ARRAY"
)

// DefaultTimezone is used when Options.Timezone is empty.
const DefaultTimezone = "+00:00"

// OperationWhere marks serialization of a value that is compared against a
// column rather than stored in it.
const OperationWhere = "where"

// Type is a logical type as used by one column or value.
type Type struct {
	Name string

	// Length is the declared length of character and binary types.
	Length int

	// Precision is the total digits of DECIMAL or the fractional-second
	// digits of DATE.
	Precision int
	Scale     int

	// Element is the element type of ARRAY.
	Element *Type

	// Values are the members of ENUM.
	Values []string
}

func String(length int) Type { return Type{Name: NameString, Length: length} }
func Char(length int) Type { return Type{Name: NameChar, Length: length} }
func Text() Type { return Type{Name: NameText} }
func TinyInt() Type { return Type{Name: NameTinyInt} }
func SmallInt() Type { return Type{Name: NameSmallInt} }
func MediumInt() Type { return Type{Name: NameMediumInt} }
func Integer() Type { return Type{Name: NameInteger} }
func BigInt() Type { return Type{Name: NameBigInt} }
func Float() Type { return Type{Name: NameFloat} }
func Real() Type { return Type{Name: NameReal} }
func Double() Type { return Type{Name: NameDouble} }
func Boolean() Type { return Type{Name: NameBoolean} }
// TimeOnly is a time of day without a date.
func TimeOnly() Type { return Type{Name: NameTime} }
func DateOnly() Type { return Type{Name: NameDateOnly} }
func UUID() Type { return Type{Name: NameUUID} }
func Blob() Type { return Type{Name: NameBlob} }
func JSON() Type { return Type{Name: NameJSON} }
func Geometry() Type { return Type{Name: NameGeometry} }
func Enum(values ...string) Type { return Type{Name: NameEnum, Values: values} }
func Decimal(precision, scale int) Type {
	return Type{Name: NameDecimal, Precision: precision, Scale: scale}
}

// Date is a full timestamp. A positive precision keeps milliseconds when the
// value is serialized.
func Date(precision int) Type { return Type{Name: NameDate, Precision: precision} }

// Array is an ARRAY of elem.
func Array(elem Type) Type { return Type{Name: NameArray, Element: &elem} }

// Tags is the ordered list of backend type tags a logical type corresponds
// to. A nil Tags inherits the tags of the definition being extended; an
// empty, non-nil Tags marks the type unsupported.
type Tags []string

// Unsupported is the sentinel for logical types with no backend
// representation.
var Unsupported = Tags{}

// EscapeFunc quotes a value as a backend literal. It is supplied by the caller
// through Options.
type EscapeFunc func(value any) string

// Options carries the context of a serialize or parse call.
type Options struct {
	// Timezone is an IANA zone name or a ±HH:MM offset.
	Timezone string

	// Operation is the kind of statement being built, e.g. "insert" or
	// "where".
	Operation string

	Escape EscapeFunc
}

// Zone returns the configured timezone or DefaultTimezone.
func (o Options) Zone() string {
	if o.Timezone == "" {
		return DefaultTimezone
	}
	return o.Timezone
}

type (
	RenderFunc    func(t Type) (string, error)
	SerializeFunc func(t Type, value any, opts Options) (string, error)
	ParseFunc     func(raw any, opts Options) (any, error)
)

// Definition is the behaviour of one logical type on one dialect. Nil
// function slots fall back to the registry defaults.
type Definition struct {
	Name      string
	Tags      Tags
	Render    RenderFunc
	Serialize SerializeFunc
	Parse     ParseFunc
}

// Supported reports whether the definition has a backend representation.
func (d Definition) Supported() bool { return len(d.Tags) > 0 }

// HasTag reports whether tag is one of the definition's backend tags.
func (d Definition) HasTag(tag string) bool {
	for _, t := range d.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Extend returns d with every non-nil slot of o applied on top.
func (d Definition) Extend(o Definition) Definition {
	if o.Tags != nil {
		d.Tags = append(Tags{}, o.Tags...)
	}
	if o.Render != nil {
		d.Render = o.Render
	}
	if o.Serialize != nil {
		d.Serialize = o.Serialize
	}
	if o.Parse != nil {
		d.Parse = o.Parse
	}
	return d
}
