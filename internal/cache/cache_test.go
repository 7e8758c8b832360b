package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCache_SetGet_NoTTL(t *testing.T) {
	c := New[string, int]()
	c.Set("a", 1, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 1, c.Len())

	c.Delete("a")
	_, ok = c.Get("a")
	require.False(t, ok)
}

func TestCache_TTL_Expiry(t *testing.T) {
	c := New[string, string]()
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Set("k", "v", time.Second)
	_, ok := c.Get("k")
	require.True(t, ok)

	base = base.Add(2 * time.Second)
	_, ok = c.Get("k")
	require.False(t, ok)
	require.Equal(t, 0, c.Len())

	c.PurgeExpired()
	require.Empty(t, c.items)
}

func TestCache_GetOrLoad(t *testing.T) {
	c := New[string, []string]()
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Owner", "Admin", "User"}, nil
	}

	v, err := c.GetOrLoad("roles", time.Minute, load)
	require.NoError(t, err)
	require.Len(t, v, 3)

	_, err = c.GetOrLoad("roles", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestCache_GetOrLoad_ErrorNotCached(t *testing.T) {
	c := New[int, int]()
	boom := errors.New("boom")

	_, err := c.GetOrLoad(1, 0, func() (int, error) { return 0, boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, c.Len())

	v, err := c.GetOrLoad(1, 0, func() (int, error) { return 42, nil })
	require.NoError(t, err)
	require.Equal(t, 42, v)
}

func TestCache_GetOrLoad_Concurrent(t *testing.T) {
	c := New[int, int]()
	var calls atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(7, time.Minute, func() (int, error) {
				calls.Add(1)
				return 49, nil
			})
			require.NoError(t, err)
			require.Equal(t, 49, v)
		}()
	}
	wg.Wait()
	require.EqualValues(t, 1, calls.Load())
}
