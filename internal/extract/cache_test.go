package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/devdedup/internal/identity"
)

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir())

	records := []Record{
		{Hash: "aa", Name: "Jane Doe", Email: "jane@corp.com", When: time.Unix(1700000000, 0).UTC()},
		{Hash: "bb", Name: "Bob Smith", Email: "bob@corp.com", When: time.Unix(1700000100, 0).UTC()},
	}

	require.NoError(t, cache.Save("/some/repo", records))

	loaded, ok := cache.Load("/some/repo")
	require.True(t, ok)
	assert.Equal(t, records, loaded)
}

func TestCacheMissOnUnknownRepo(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir())

	_, ok := cache.Load("/never/saved")
	assert.False(t, ok)
}

func TestCacheKeysDistinctPerRepo(t *testing.T) {
	t.Parallel()

	cache := NewCache(t.TempDir())

	require.NoError(t, cache.Save("/repo/one", []Record{{Hash: "aa", Name: "A One"}}))
	require.NoError(t, cache.Save("/repo/two", []Record{{Hash: "bb", Name: "B Two"}}))

	one, ok := cache.Load("/repo/one")
	require.True(t, ok)
	two, ok := cache.Load("/repo/two")
	require.True(t, ok)

	assert.NotEqual(t, one, two)
}

func TestCacheBasenameStable(t *testing.T) {
	t.Parallel()

	assert.Equal(t, cacheBasename("/some/repo"), cacheBasename("/some/repo"))
	assert.NotEqual(t, cacheBasename("/some/repo"), cacheBasename("/other/repo"))
}

func TestRaws(t *testing.T) {
	t.Parallel()

	records := []Record{
		{Hash: "aa", Name: "Jane Doe", Email: "jane@corp.com"},
		{Hash: "bb", Name: "Jane Doe", Email: "jane@corp.com"},
	}

	raws := Raws(records)

	assert.Equal(t, []identity.Raw{
		{Name: "Jane Doe", Email: "jane@corp.com"},
		{Name: "Jane Doe", Email: "jane@corp.com"},
	}, raws)
}
