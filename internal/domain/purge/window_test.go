package purge

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"housekeeper/internal/core/apperror"
)

func checkpoints(ws []Window) []int {
	var idx []int
	for i, w := range ws {
		if w.Checkpoint {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestWindows_ClipsLastWindow(t *testing.T) {
	ws := slices.Collect(DefaultChunkPolicy().Windows(1, 100002))

	require.Len(t, ws, 21)
	assert.Equal(t, Window{Lo: 1, Hi: 5001}, ws[0])
	assert.Equal(t, Window{Lo: 100001, Hi: 100002}, ws[20])
	assert.Equal(t, []int{19}, checkpoints(ws), "one checkpoint after the 20th window")
}

func TestWindows_LargeRange(t *testing.T) {
	ws := slices.Collect(DefaultChunkPolicy().Windows(1000000, 1400000))

	require.Len(t, ws, 81)
	assert.Equal(t, Window{Lo: 1395000, Hi: 1400000, Checkpoint: true}, ws[79])
	assert.Equal(t, Window{Lo: 1400000, Hi: 1400000}, ws[80])
	assert.Equal(t, []int{19, 39, 59, 79}, checkpoints(ws))
}

func TestWindows_SingleWindow(t *testing.T) {
	assert.Equal(t, []Window{{Lo: 88, Hi: 300}}, slices.Collect(DefaultChunkPolicy().Windows(88, 300)))
	assert.Equal(t, []Window{{Lo: 88, Hi: 88}}, slices.Collect(DefaultChunkPolicy().Windows(88, 88)))
}

func TestWindows_EmptyWhenMinAboveMax(t *testing.T) {
	assert.Empty(t, slices.Collect(DefaultChunkPolicy().Windows(10, 9)))
}

func TestWindows_FinalWindowNeverCheckpoints(t *testing.T) {
	p := ChunkPolicy{WindowSize: 10, CheckpointThreshold: 5}
	ws := slices.Collect(p.Windows(1, 31))

	require.Len(t, ws, 4)
	assert.True(t, ws[0].Checkpoint)
	assert.True(t, ws[1].Checkpoint)
	assert.True(t, ws[2].Checkpoint)
	assert.False(t, ws[3].Checkpoint)
}

func TestWindows_StopsWhenConsumerBreaks(t *testing.T) {
	var seen int
	for range DefaultChunkPolicy().Windows(1, 1000000) {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestWindows_NearMaxInt64(t *testing.T) {
	const maxInt = int64(^uint64(0) >> 1)
	ws := slices.Collect(ChunkPolicy{WindowSize: 5000, CheckpointThreshold: 100000}.Windows(maxInt-6000, maxInt))

	require.Len(t, ws, 2)
	assert.Equal(t, Window{Lo: maxInt - 1000, Hi: maxInt}, ws[1])
}

func TestChunkPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultChunkPolicy().Validate())
	assert.True(t, apperror.IsInvalidParameter(ChunkPolicy{WindowSize: 0, CheckpointThreshold: 1}.Validate()))
	assert.True(t, apperror.IsInvalidParameter(ChunkPolicy{WindowSize: 1, CheckpointThreshold: -1}.Validate()))
}
