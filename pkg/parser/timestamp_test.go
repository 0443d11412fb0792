package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestampParser_Parse(t *testing.T) {
	p, err := NewTimestampParser(16)
	require.NoError(t, err)

	ts, err := p.Parse("14/06/2017:16:47:02 +1000")
	require.NoError(t, err)
	assert.Equal(t, "2017-06-14T16:47:02+10:00", ts.Format(time.RFC3339))
}

func TestTimestampParser_CachesSuccessOnly(t *testing.T) {
	p, err := NewTimestampParser(16)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := p.Parse("14/06/2017:16:47:02 +1000")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, p.CacheLen())

	_, err = p.Parse("14/Jun/2017:16:47:02 +1000")
	require.Error(t, err)
	assert.Equal(t, 1, p.CacheLen())
}

func TestTimestampParser_CacheEviction(t *testing.T) {
	p, err := NewTimestampParser(2)
	require.NoError(t, err)

	for _, s := range []string{
		"14/06/2017:16:47:01 +1000",
		"14/06/2017:16:47:02 +1000",
		"14/06/2017:16:47:03 +1000",
	} {
		_, err := p.Parse(s)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, p.CacheLen())
}

func TestTimestampParser_NoCache(t *testing.T) {
	p, err := NewTimestampParser(0)
	require.NoError(t, err)

	ts, err := p.Parse("01/01/2020:00:00:00 +0000")
	require.NoError(t, err)
	assert.Equal(t, 2020, ts.Year())
	assert.Equal(t, 0, p.CacheLen())
}

func TestTimestampParser_CachedValueMatchesFresh(t *testing.T) {
	cached, err := NewTimestampParser(8)
	require.NoError(t, err)
	fresh, err := NewTimestampParser(0)
	require.NoError(t, err)

	const s = "31/12/2019:23:59:59 -0800"
	first, err := cached.Parse(s)
	require.NoError(t, err)
	second, err := cached.Parse(s)
	require.NoError(t, err)
	want, err := fresh.Parse(s)
	require.NoError(t, err)

	assert.True(t, first.Equal(want))
	assert.True(t, second.Equal(want))
	assert.Equal(t, want.Format(time.RFC3339), second.Format(time.RFC3339))
}
