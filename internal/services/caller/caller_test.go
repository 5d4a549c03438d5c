package caller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/bingogame-go/internal/dependencies/mocks"
	"github.com/mcoot/bingogame-go/internal/dependencies/random"
	"github.com/mcoot/bingogame-go/internal/model"
)

func TestNext_SkipsCalledNumbers(t *testing.T) {
	rnd := mocks.NewMockRandom()
	c := New(rnd)

	n, err := c.Next([]int{1, 2, 4}, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	rnd.QueueIntn(1)
	n, err = c.Next([]int{1, 2, 4}, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}

func TestNext_DrawsEveryNumberExactlyOnce(t *testing.T) {
	c := New(random.New())

	var called []int
	for i := 0; i < 75; i++ {
		n, err := c.Next(called, 75)
		require.NoError(t, err)
		assert.NotContains(t, called, n)
		called = append(called, n)
	}

	_, err := c.Next(called, 75)
	assert.ErrorIs(t, err, model.ErrPoolExhausted)
}
