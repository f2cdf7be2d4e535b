package datatypes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone names resolve without a system zoneinfo

	lru "github.com/hashicorp/golang-lru/v2"
)

const locationCacheSize = 128

// Zone lookups hit the zoneinfo database; misses are cached as nil.
var locations = newLocationCache()

func newLocationCache() *lru.Cache[string, *time.Location] {
	c, err := lru.New[string, *time.Location](locationCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// ZoneLocation returns the location of a recognised IANA zone name. Offsets
// such as "+05:00" are not zone names.
func ZoneLocation(name string) (*time.Location, bool) {
	if name == "" || name == "Local" {
		return nil, false
	}
	if loc, ok := locations.Get(name); ok {
		return loc, loc != nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = nil
	}
	locations.Add(name, loc)
	return loc, loc != nil
}

// OffsetLocation parses a "±HH:MM" (or "±HHMM", "Z") offset into a fixed zone.
func OffsetLocation(offset string) (*time.Location, bool) {
	if offset == "Z" {
		return time.UTC, true
	}
	if len(offset) < 3 || (offset[0] != '+' && offset[0] != '-') {
		return nil, false
	}
	digits := strings.ReplaceAll(offset[1:], ":", "")
	if len(digits) != 2 && len(digits) != 4 {
		return nil, false
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil || hours > 23 {
		return nil, false
	}
	minutes := 0
	if len(digits) == 4 {
		minutes, err = strconv.Atoi(digits[2:])
		if err != nil || minutes > 59 {
			return nil, false
		}
	}
	secs := hours*3600 + minutes*60
	if offset[0] == '-' {
		secs = -secs
	}
	return time.FixedZone(offset, secs), true
}

// ResolveLocation accepts either a zone name or an offset.
func ResolveLocation(tz string) (*time.Location, error) {
	if loc, ok := ZoneLocation(tz); ok {
		return loc, nil
	}
	if loc, ok := OffsetLocation(tz); ok {
		return loc, nil
	}
	return nil, fmt.Errorf("unknown timezone %q", tz)
}

// Layouts for timestamps that carry their own zone.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02T15:04:05 Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02T15:04:05 -0700",
}

// Layouts for wall-clock timestamps; fractional seconds are accepted after
// the seconds field.
var wallLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseZoned(s string) (time.Time, bool) {
	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseWall(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range wallLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimestamp interprets s as an instant. Text carrying its own offset is
// absolute. Otherwise s is read as wall-clock time in tz when tz is a
// recognised zone name; for anything else s and tz are joined with a space
// and parsed together.
func ParseTimestamp(s, tz string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, ok := parseZoned(s); ok {
		return t, nil
	}
	if loc, ok := ZoneLocation(tz); ok {
		if t, ok := parseWall(s, loc); ok {
			return t, nil
		}
		return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
	}
	joined := s + " " + tz
	if t, ok := parseZoned(joined); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("malformed timestamp %q in timezone %q", s, tz)
}

// Localize converts t to the wall clock of tz.
func Localize(t time.Time, tz string) (time.Time, error) {
	loc, err := ResolveLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return t.In(loc), nil
}
