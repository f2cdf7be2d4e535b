package datatypes

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
)

// BaseTypes returns the dialect-independent definitions of every logical
// type in registration order. They carry no backend tags; a dialect writes
// its tags with Registry.SetTypes or by registering an override.
func BaseTypes() []Definition {
	return []Definition{
		{Name: NameDate, Serialize: serializeTimestamp},
		{Name: NameString, Serialize: serializeEscaped},
		{Name: NameChar, Serialize: serializeEscaped},
		{Name: NameText, Serialize: serializeEscaped},
		{Name: NameTinyInt, Serialize: serializeInteger},
		{Name: NameSmallInt, Serialize: serializeInteger},
		{Name: NameMediumInt, Serialize: serializeInteger},
		{Name: NameInteger, Serialize: serializeInteger},
		{Name: NameBigInt, Serialize: serializeInteger},
		{Name: NameFloat, Serialize: serializeFloat},
		{Name: NameTime, Serialize: serializeTimeOnly},
		{Name: NameDateOnly, Serialize: serializeDateOnly},
		{Name: NameBoolean, Serialize: serializeBoolean},
		{Name: NameBlob, Serialize: serializeEscaped},
		{Name: NameDecimal, Serialize: serializeDecimal},
		{Name: NameUUID, Serialize: serializeEscaped},
		{Name: NameEnum, Serialize: serializeEnum},
		{Name: NameReal, Serialize: serializeFloat},
		{Name: NameDouble, Serialize: serializeFloat},
		{Name: NameGeometry, Serialize: serializeEscaped},
		{Name: NameJSON, Serialize: serializeJSON},
		{Name: NameArray, Serialize: serializeEscaped},
	}
}

func serializeEscaped(t Type, value any, opts Options) (string, error) {
	if opts.Escape == nil {
		return "", fmt.Errorf("no escape function for %s", t.Name)
	}
	return opts.Escape(value), nil
}

func serializeInteger(_ Type, value any, _ Options) (string, error) {
	i, err := ToInt64(value)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(i, 10), nil
}

func serializeFloat(_ Type, value any, _ Options) (string, error) {
	f, err := ToFloat64(value)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'g', -1, 64), nil
}

func serializeDecimal(_ Type, value any, _ Options) (string, error) {
	return toDecimal(value)
}

func serializeBoolean(_ Type, value any, _ Options) (string, error) {
	b, err := ToBool(value)
	if err != nil {
		return "", err
	}
	if b {
		return "TRUE", nil
	}
	return "FALSE", nil
}

func serializeEnum(t Type, value any, opts Options) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("cannot use %T as an enum member", value)
	}
	if len(t.Values) > 0 {
		member := false
		for _, v := range t.Values {
			if v == s {
				member = true
				break
			}
		}
		if !member {
			return "", fmt.Errorf("%q is not one of %v", s, t.Values)
		}
	}
	return serializeEscaped(t, s, opts)
}

func serializeJSON(_ Type, value any, _ Options) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func serializeTimestamp(_ Type, value any, opts Options) (string, error) {
	t, err := WallClock(value, opts.Zone())
	if err != nil {
		return "", err
	}
	return t.Format("2006-01-02 15:04:05.000 -07:00"), nil
}

func serializeDateOnly(_ Type, value any, _ Options) (string, error) {
	switch v := value.(type) {
	case civil.Date:
		return v.String(), nil
	case time.Time:
		return v.Format("2006-01-02"), nil
	case string:
		d, err := civil.ParseDate(v)
		if err != nil {
			return "", err
		}
		return d.String(), nil
	default:
		return "", fmt.Errorf("cannot use %T as a date", value)
	}
}

func serializeTimeOnly(_ Type, value any, _ Options) (string, error) {
	switch v := value.(type) {
	case civil.Time:
		return v.String(), nil
	case time.Time:
		return civil.TimeOf(v).String(), nil
	case string:
		ct, err := civil.ParseTime(v)
		if err != nil {
			return "", err
		}
		return ct.String(), nil
	default:
		return "", fmt.Errorf("cannot use %T as a time of day", value)
	}
}

// WallClock returns the wall-clock time a temporal value is formatted with.
// civil values already are wall-clock values and are kept as they are;
// instants and timestamp strings are localized to tz first.
func WallClock(value any, tz string) (time.Time, error) {
	switch v := value.(type) {
	case civil.DateTime:
		return v.In(time.UTC), nil
	case civil.Date:
		return v.In(time.UTC), nil
	case time.Time:
		return Localize(v, tz)
	case *time.Time:
		if v == nil {
			return time.Time{}, fmt.Errorf("nil time")
		}
		return Localize(*v, tz)
	case string:
		t, err := ParseTimestamp(v, tz)
		if err != nil {
			return time.Time{}, err
		}
		return Localize(t, tz)
	default:
		return time.Time{}, fmt.Errorf("cannot use %T as a timestamp", value)
	}
}
