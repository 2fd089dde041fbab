package refresh

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_BumpAndObserve(t *testing.T) {
	var k Key
	assert.Zero(t, k.Current())
	assert.False(t, k.ChangedSince(0))

	seen := k.Current()
	k.Bump()
	assert.True(t, k.ChangedSince(seen))

	seen = k.Current()
	assert.False(t, k.ChangedSince(seen))
}

func TestKey_MonotonicUnderConcurrency(t *testing.T) {
	var k Key
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				k.Bump()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(5000), k.Current())
}
