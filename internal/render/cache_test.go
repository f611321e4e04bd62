package render

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderersShareNormalizedOptions(t *testing.T) {
	ClearCache()
	defer ClearCache()

	_, err := Markdown("# x", DefaultOptions())
	require.NoError(t, err)

	// an unknown style resolves to dark, so it reuses the same pool
	_, err = Markdown("# x", DefaultOptions().WithStyle("no-such-style"))
	require.NoError(t, err)
	assert.Equal(t, 1, CacheSize())

	_, err = Markdown("# x", DefaultOptions().WithWidth(40))
	require.NoError(t, err)
	assert.Equal(t, 2, CacheSize())
}

func TestAcquireRelease(t *testing.T) {
	ClearCache()
	defer ClearCache()

	tr, release, err := shared.acquire(DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, tr)
	release()

	tr2, release2, err := shared.acquire(DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, tr2)
	release2()
	assert.Equal(t, 1, CacheSize())
}

func TestConcurrentRender(t *testing.T) {
	ClearCache()
	defer ClearCache()

	opts := DefaultOptions()
	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Markdown("**Halo** `kode`", opts); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render error: %v", err)
	}
	assert.Equal(t, 1, CacheSize())
}

func TestClearCache(t *testing.T) {
	ClearCache()

	_, err := Markdown("# x", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 1, CacheSize())

	ClearCache()
	assert.Equal(t, 0, CacheSize())
}
