package routingalgorithm_test

import (
	"testing"

	"lintang/neuracity/pkg/engine/routingalgorithm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinHeap(t *testing.T) {
	t.Run("extracts in rank order", func(t *testing.T) {
		h := routingalgorithm.NewMinHeap[int32]()
		for i, rank := range []float64{5, 1, 4, 2, 3} {
			h.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: rank, Item: int32(i)})
		}

		got := []int32{}
		for h.Size() > 0 {
			n, err := h.ExtractMin()
			require.NoError(t, err)
			got = append(got, n.Item)
		}
		assert.Equal(t, []int32{1, 3, 4, 2, 0}, got)
	})

	t.Run("equal ranks come out first in first out", func(t *testing.T) {
		h := routingalgorithm.NewMinHeap[int32]()
		for i := int32(0); i < 20; i++ {
			h.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: 1, Item: i})
		}
		h.Insert(routingalgorithm.PriorityQueueNode[int32]{Rank: 0.5, Item: 99})

		min, err := h.GetMin()
		require.NoError(t, err)
		assert.Equal(t, int32(99), min.Item)

		_, _ = h.ExtractMin()
		for i := int32(0); i < 20; i++ {
			n, err := h.ExtractMin()
			require.NoError(t, err)
			assert.Equal(t, i, n.Item)
		}
	})

	t.Run("empty heap", func(t *testing.T) {
		h := routingalgorithm.NewMinHeap[int32]()
		_, err := h.ExtractMin()
		assert.Error(t, err)
	})
}
