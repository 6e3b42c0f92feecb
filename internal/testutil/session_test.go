package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixedSessionGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedSessionGenerator("scenario-walkthrough")

	assert.Equal(t, "scenario-walkthrough", gen.Generate())
	assert.Equal(t, "scenario-walkthrough", gen.Generate())
}

func TestFixedSessionGenerator_EmptyIDDefault(t *testing.T) {
	gen := NewFixedSessionGenerator("")
	assert.Equal(t, DefaultSessionID, gen.Generate())
}

func TestFixedSessionGenerator_ThreadSafe(t *testing.T) {
	gen := NewFixedSessionGenerator("thread-safe-session")

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				assert.Equal(t, "thread-safe-session", gen.Generate())
			}
		}()
	}
	wg.Wait()
}

func TestDiscardLogger(t *testing.T) {
	logger := DiscardLogger()
	assert.NotNil(t, logger)
	logger.Error("dropped", "key", "value")
}
