package arbiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryPolicyAllows(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, MinRemaining: 5 * time.Second}

	t.Run("first attempt always runs", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
		defer cancel()
		require.True(t, policy.Allows(ctx, 1))
	})

	t.Run("attempt cap", func(t *testing.T) {
		require.False(t, policy.Allows(context.Background(), 4))
	})

	t.Run("no deadline means no time pressure", func(t *testing.T) {
		require.True(t, policy.Allows(context.Background(), 2))
	})

	t.Run("retry needs headroom", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		require.True(t, policy.Allows(ctx, 2))

		tight, cancel2 := context.WithTimeout(context.Background(), time.Second)
		defer cancel2()
		require.False(t, policy.Allows(tight, 2))
	})
}
