package transport

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestChunkDecoder_Decode(t *testing.T) {
	d := ChunkDecoder{}

	chunk, err := d.Decode(`{"phase":"answer","delta_content":"hi"}`)
	require.NoError(t, err)
	require.Equal(t, "answer", chunk.Phase)
	require.Equal(t, "hi", chunk.DeltaContent)
	require.Empty(t, chunk.EditContent)
}

func TestChunkDecoder_DecodeMissingKeysDefaultToZero(t *testing.T) {
	d := ChunkDecoder{}

	chunk, err := d.Decode(`{}`)
	require.NoError(t, err)
	require.Empty(t, chunk.Phase)
	require.Nil(t, chunk.EditIndex)
	require.Nil(t, chunk.Usage)
}

func TestChunkDecoder_DecodeMalformed(t *testing.T) {
	d := ChunkDecoder{}

	_, err := d.Decode(`not json`)
	require.Error(t, err)
}
