package submission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bluesky-social/mergetree/mergesort"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestSubmitAndGet(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	store := NewStore(Config{Delay: 0})

	sub := store.Submit(ctx, []float64{5, 3, 8, 1})
	assert.NotEmpty(sub.ID)
	assert.Equal([]float64{5, 3, 8, 1}, sub.Input)
	assert.Equal([]float64{1, 3, 5, 8}, sub.Tree.Result)
	assert.Equal(7, sub.Nodes)
	assert.Equal(2, sub.Depth)
	assert.True(store.Ready(sub))
	assert.Equal(time.Duration(0), store.Remaining(sub))

	got, err := store.Get(sub.ID)
	require.NoError(t, err)
	assert.Same(sub, got)
	assert.Equal(1, store.Len())

	_, err = store.Get("missing")
	assert.ErrorIs(err, ErrNotFound)
}

func TestSubmitSingle(t *testing.T) {
	store := NewStore(Config{})
	sub := store.Submit(context.Background(), []float64{7})
	assert.True(t, sub.Tree.IsLeaf())
	assert.Equal(t, []float64{7}, sub.Input)
	assert.Equal(t, 1, sub.Nodes)
	assert.Equal(t, 0, sub.Depth)
}

func TestRevealDelay(t *testing.T) {
	assert := assert.New(t)
	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := NewStore(Config{Delay: time.Second, Now: clock.Now})

	sub := store.Submit(context.Background(), []float64{2, 1})
	// the tree is complete before the delay elapses
	assert.Equal(mergesort.Visualize([]float64{2, 1}), sub.Tree)
	assert.False(store.Ready(sub))
	assert.Equal(time.Second, store.Remaining(sub))

	clock.Advance(400 * time.Millisecond)
	assert.False(store.Ready(sub))
	assert.Equal(600*time.Millisecond, store.Remaining(sub))

	clock.Advance(600 * time.Millisecond)
	assert.True(store.Ready(sub))
	assert.Equal(time.Duration(0), store.Remaining(sub))
}

func TestIndependentSubmissions(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	a := store.Submit(ctx, []float64{3, 2, 1})
	b := store.Submit(ctx, []float64{9, 8})
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, []float64{1, 2, 3}, a.Tree.Result)
	assert.Equal(t, []float64{8, 9}, b.Tree.Result)
}

func TestCapacityEviction(t *testing.T) {
	store := NewStore(Config{Capacity: 2})
	ctx := context.Background()

	first := store.Submit(ctx, []float64{1})
	store.Submit(ctx, []float64{2})
	store.Submit(ctx, []float64{3})

	assert.Equal(t, 2, store.Len())
	_, err := store.Get(first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpiry(t *testing.T) {
	store := NewStore(Config{TTL: 20 * time.Millisecond})
	sub := store.Submit(context.Background(), []float64{1, 2})

	require.Eventually(t, func() bool {
		_, err := store.Get(sub.ID)
		return err == ErrNotFound
	}, time.Second, 5*time.Millisecond)
}

func TestConcurrentSubmit(t *testing.T) {
	store := NewStore(Config{})
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = store.Submit(ctx, []float64{float64(i), 0, -1}).ID
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		sub, err := store.Get(id)
		require.NoError(t, err)
		assert.Equal(t, []float64{-1, 0, float64(i)}, sub.Tree.Result)
	}
}
