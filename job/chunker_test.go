package job

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkSize(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		workers int
		want    int
	}{
		{"empty input", 0, 4, 0},
		{"fewer elements than chunks", 3, 4, 1},
		{"exact multiple", 32, 4, 2},
		{"rounds up", 1000, 4, 63},
		{"zero workers treated as one", 10, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChunkSize(tt.n, tt.workers))
		})
	}
}

func TestSplit(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	chunks := Split(items, 2)
	require.Len(t, chunks, 4)
	assert.Equal(t, ChunkCount(len(items), 2), len(chunks))

	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
	assert.Equal(t, []int{7}, chunks[3].Items, "last chunk may be shorter")

	var joined []int
	for _, c := range chunks {
		joined = append(joined, c.Items...)
	}
	assert.Equal(t, items, joined)
}

func TestSplit_ChunksCannotGrowIntoEachOther(t *testing.T) {
	items := []int{1, 2, 3, 4}
	chunks := Split(items, 2)

	grown := append(chunks[0].Items, 99)
	assert.Equal(t, []int{1, 2, 99}, grown)
	assert.Equal(t, []int{3, 4}, chunks[1].Items)
}

func TestSplit_Edges(t *testing.T) {
	assert.Empty(t, Split([]string{}, 3))
	assert.Empty(t, Split[string](nil, 3))

	whole := Split([]int{1, 2, 3}, 0)
	require.Len(t, whole, 1)
	assert.Equal(t, []int{1, 2, 3}, whole[0].Items)

	big := Split([]int{1, 2, 3}, 10)
	require.Len(t, big, 1)
}

func TestSplitSeq(t *testing.T) {
	var chunks []Chunk[int]
	for c := range SplitSeq(slices.Values([]int{1, 2, 3, 4, 5}), 2) {
		chunks = append(chunks, c)
	}

	require.Len(t, chunks, 3)
	assert.Equal(t, []int{1, 2}, chunks[0].Items)
	assert.Equal(t, []int{5}, chunks[2].Items)
	assert.Equal(t, 2, chunks[2].Index)
}

func TestSplitSeq_StopsPulling(t *testing.T) {
	pulled := 0
	naturals := func(yield func(int) bool) {
		for i := 0; ; i++ {
			pulled++
			if !yield(i) {
				return
			}
		}
	}

	for c := range SplitSeq(naturals, 3) {
		if c.Index == 1 {
			break
		}
	}

	assert.Equal(t, 6, pulled)
}
