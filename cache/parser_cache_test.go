package cache

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scalebig/sequelize/datatypes"
	"github.com/scalebig/sequelize/dialect"
)

func constParser(v any) datatypes.ParseFunc {
	return func(any, datatypes.Options) (any, error) { return v, nil }
}

func TestParserCache_RefreshFromRegistry(t *testing.T) {
	c := NewParserCache()
	assert.Zero(t, c.Len())

	c.Refresh(dialect.NewCloudSpannerRegistry().Definitions()...)

	assert.Equal(t, []string{
		dialect.TagBool,
		dialect.TagDate,
		dialect.TagFloat64,
		dialect.TagInt64,
		dialect.TagTimestamp,
	}, c.Tags())

	parse, ok := c.Get(dialect.TagInt64)
	require.True(t, ok)
	v, err := parse("7", datatypes.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)

	_, ok = c.Get(dialect.TagString)
	assert.False(t, ok)
}

func TestParserCache_RefreshReflectsSlice(t *testing.T) {
	c := NewParserCache()
	c.Refresh(
		datatypes.Definition{Name: "A", Tags: datatypes.Tags{"X", "Y"}, Parse: constParser("a")},
		datatypes.Definition{Name: "B", Tags: datatypes.Tags{"Z"}, Parse: constParser("b")},
	)
	require.Equal(t, []string{"X", "Y", "Z"}, c.Tags())

	// later definitions win; a tag the slice names without a parser is dropped
	c.Refresh(
		datatypes.Definition{Name: "A", Tags: datatypes.Tags{"X"}, Parse: constParser("a")},
		datatypes.Definition{Name: "C", Tags: datatypes.Tags{"X"}, Parse: constParser("c")},
		datatypes.Definition{Name: "B", Tags: datatypes.Tags{"Z"}},
	)
	assert.Equal(t, []string{"X", "Y"}, c.Tags(), "Y is outside the slice and stays")

	parse, ok := c.Get("X")
	require.True(t, ok)
	v, _ := parse(nil, datatypes.Options{})
	assert.Equal(t, "c", v)
}

func TestParserCache_Clear(t *testing.T) {
	c := NewParserCache()
	c.Refresh(datatypes.Definition{Name: "A", Tags: datatypes.Tags{"X"}, Parse: constParser(1)})
	c.Clear()

	assert.Zero(t, c.Len())
	_, ok := c.Get("X")
	assert.False(t, ok)
}

func TestParserCache_ConcurrentReaders(t *testing.T) {
	c := NewParserCache()
	defs := dialect.NewCloudSpannerRegistry().Definitions()
	c.Refresh(defs...)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, ok := c.Get(dialect.TagInt64)
				assert.True(t, ok)
			}
		}()
	}
	c.Refresh(defs...)
	wg.Wait()
}
