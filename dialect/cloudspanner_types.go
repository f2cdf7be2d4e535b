package dialect

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"

	"github.com/scalebig/sequelize/datatypes"
)

// Cloud Spanner column type tags.
const (
	TagString    = "STRING"
	TagInt64     = "INT64"
	TagFloat64   = "FLOAT64"
	TagNumeric   = "NUMERIC"
	TagBool      = "BOOL"
	TagBytes     = "BYTES"
	TagDate      = "DATE"
	TagTime      = "TIME"
	TagTimestamp = "TIMESTAMP"
	TagJSON      = "JSON"
	TagArray     = "ARRAY"
)

const defaultStringLength = 255

const (
	timestampLayout       = "2006-01-02 15:04:05"
	timestampLayoutMillis = "2006-01-02 15:04:05.000"
)

// NewCloudSpannerRegistry returns a registry holding the base types with the
// Cloud Spanner mapping applied.
func NewCloudSpannerRegistry() *datatypes.Registry {
	r := datatypes.NewRegistry(NameCloudSpanner)
	CloudSpannerTypes(r)
	return r
}

// CloudSpannerTypes writes the Cloud Spanner tags of every base type into r
// and registers the Spanner specific behaviour on top of the base
// definitions. UUID, ENUM and GEOMETRY have no Spanner representation.
func CloudSpannerTypes(r *datatypes.Registry) {
	r.SetTypes(datatypes.NameDate, TagTimestamp)
	r.SetTypes(datatypes.NameString, TagString)
	r.SetTypes(datatypes.NameChar, TagString)
	r.SetTypes(datatypes.NameText, TagString)
	r.SetTypes(datatypes.NameTinyInt, TagInt64)
	r.SetTypes(datatypes.NameSmallInt, TagInt64)
	r.SetTypes(datatypes.NameMediumInt, TagInt64)
	r.SetTypes(datatypes.NameInteger, TagInt64)
	r.SetTypes(datatypes.NameBigInt, TagInt64)
	r.SetTypes(datatypes.NameFloat, TagFloat64)
	r.SetTypes(datatypes.NameTime, TagTime)
	r.SetTypes(datatypes.NameDateOnly, TagDate)
	r.SetTypes(datatypes.NameBoolean, TagBool)
	r.SetTypes(datatypes.NameBlob, TagBytes)
	r.SetTypes(datatypes.NameDecimal, TagNumeric)
	r.SetTypes(datatypes.NameUUID)
	r.SetTypes(datatypes.NameEnum)
	r.SetTypes(datatypes.NameReal, TagFloat64)
	r.SetTypes(datatypes.NameDouble, TagFloat64)
	r.SetTypes(datatypes.NameGeometry)
	r.SetTypes(datatypes.NameJSON, TagJSON)
	r.SetTypes(datatypes.NameArray, TagArray)

	r.Register(
		datatypes.Definition{Name: datatypes.NameString, Render: renderString},
		datatypes.Definition{Name: datatypes.NameChar, Render: renderString},
		datatypes.Definition{Name: datatypes.NameText, Render: renderConst("STRING(MAX)")},
		datatypes.Definition{Name: datatypes.NameInteger, Render: renderConst(TagInt64), Parse: parseInt64},
		datatypes.Definition{Name: datatypes.NameFloat, Parse: parseFloat64},
		datatypes.Definition{
			Name:      datatypes.NameDate,
			Render:    renderConst(TagTimestamp),
			Serialize: serializeTimestamp,
			Parse:     parseTimestamp,
		},
		datatypes.Definition{Name: datatypes.NameDateOnly, Parse: parseDate},
		datatypes.Definition{Name: datatypes.NameBoolean, Render: renderConst(TagBool), Parse: parseBool},
		datatypes.Definition{Name: datatypes.NameBlob, Render: renderConst("BYTES(MAX)")},
		datatypes.Definition{Name: datatypes.NameJSON, Serialize: serializeJSON},
		datatypes.Definition{Name: datatypes.NameArray, Render: renderArray(r)},
	)
}

func renderConst(sql string) datatypes.RenderFunc {
	return func(datatypes.Type) (string, error) { return sql, nil }
}

func renderString(t datatypes.Type) (string, error) {
	n := t.Length
	if n <= 0 {
		n = defaultStringLength
	}
	return "STRING(" + strconv.Itoa(n) + ")", nil
}

func renderArray(r *datatypes.Registry) datatypes.RenderFunc {
	return func(t datatypes.Type) (string, error) {
		if t.Element == nil {
			return "", fmt.Errorf("ARRAY needs an element type")
		}
		if t.Element.Name == datatypes.NameArray {
			return "", fmt.Errorf("nested arrays are not supported")
		}
		elem, err := r.SQLFor(*t.Element)
		if err != nil {
			return "", err
		}
		return "ARRAY<" + elem + ">", nil
	}
}

// serializeTimestamp formats the wall-clock time of value in the configured
// timezone. Milliseconds are kept only for types declared with a precision.
func serializeTimestamp(t datatypes.Type, value any, opts datatypes.Options) (string, error) {
	wall, err := datatypes.WallClock(value, opts.Zone())
	if err != nil {
		return "", err
	}
	if t.Precision > 0 {
		return wall.Format(timestampLayoutMillis), nil
	}
	return wall.Format(timestampLayout), nil
}

func serializeJSON(_ datatypes.Type, value any, opts datatypes.Options) (string, error) {
	if s, ok := value.(string); ok && opts.Operation == datatypes.OperationWhere {
		return s, nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseInt64(raw any, _ datatypes.Options) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return datatypes.ToInt64(raw)
}

func parseFloat64(raw any, _ datatypes.Options) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return datatypes.ToFloat64(raw)
}

func parseBool(raw any, _ datatypes.Options) (any, error) {
	if raw == nil {
		return nil, nil
	}
	return datatypes.ToBool(raw)
}

// parseDate keeps DATE values as their raw text. Drivers that already decoded
// the date get it back as YYYY-MM-DD.
func parseDate(raw any, _ datatypes.Options) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v.Format("2006-01-02"), nil
	case civil.Date:
		return v.String(), nil
	}
	s, ok := datatypes.RawText(raw)
	if !ok {
		return nil, nil
	}
	return s, nil
}

func parseTimestamp(raw any, opts datatypes.Options) (any, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case *time.Time:
		if v == nil {
			return nil, nil
		}
		return *v, nil
	}
	s, ok := datatypes.RawText(raw)
	if !ok {
		return nil, nil
	}
	return datatypes.ParseTimestamp(s, opts.Zone())
}
