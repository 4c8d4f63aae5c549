package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "intake/pkg/domain"
)

func TestMemoryAttempts(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	sid := id.NewSubmissionID()

	n, err := s.Get(ctx, sid, "passport")
	require.NoError(t, err)
	assert.Zero(t, n)

	for want := 1; want <= 3; want++ {
		n, err = s.Increment(ctx, sid, "passport")
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err = s.Get(ctx, sid, "birth_certificate")
	require.NoError(t, err)
	assert.Zero(t, n, "counters are scoped per doc type")
}

func TestMemoryAttemptsConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	sid := id.NewSubmissionID()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Increment(ctx, sid, "passport")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := s.Get(ctx, sid, "passport")
	require.NoError(t, err)
	assert.Equal(t, 100, n)
}
