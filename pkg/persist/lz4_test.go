package persist

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLZ4JSONCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	codec := NewLZ4JSONCodec()

	original := testState{
		Name:   "compressed",
		Count:  7,
		Values: map[string]int{"x": 10, "y": 20},
	}

	var buf bytes.Buffer

	require.NoError(t, codec.Encode(&buf, original))

	var decoded testState

	require.NoError(t, codec.Decode(&buf, &decoded))

	assert.Equal(t, original, decoded)
}

func TestLZ4JSONCodec_Extension(t *testing.T) {
	t.Parallel()

	codec := NewLZ4JSONCodec()

	assert.Equal(t, ".json.lz4", codec.Extension())
}

func TestLZ4JSONCodec_SaveLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	codec := NewLZ4JSONCodec()

	original := testState{Name: "disk", Count: 3}

	require.NoError(t, SaveState(dir, "state", codec, original))

	var decoded testState

	require.NoError(t, LoadState(dir, "state", codec, &decoded))
	assert.Equal(t, original, decoded)
}

func TestLZ4JSONCodec_DecodeGarbage(t *testing.T) {
	t.Parallel()

	codec := NewLZ4JSONCodec()

	var decoded testState

	err := codec.Decode(bytes.NewReader([]byte("not an lz4 frame")), &decoded)
	require.Error(t, err)
}
