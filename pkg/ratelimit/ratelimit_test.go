package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQuota(t *testing.T) {
	q, err := ParseQuota("100/10s")
	require.NoError(t, err)
	assert.Equal(t, 100, q.Count)
	assert.Equal(t, 10*time.Second, q.Period)

	q, err = ParseQuota("60/1m")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, q.Period)

	q, err = ParseQuota("60/60s")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, q.Period)

	q, err = ParseQuota("1000/10m")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, q.Period)
}

func TestParseQuotaRejectsBadLiterals(t *testing.T) {
	for _, bad := range []string{"", "100", "100/5s", "100/1h", "abc/10s", "0/10s", "-1/10s"} {
		_, err := ParseQuota(bad)
		assert.Error(t, err, "literal %q should not parse", bad)
	}
}

func TestMustParseQuotaPanics(t *testing.T) {
	assert.Panics(t, func() { MustParseQuota("100/5s") })
	assert.NotPanics(t, func() { MustParseQuota("100/10s") })
}

// Five calls against a 2/1s quota: the first two are admitted from the burst,
// and each subsequent call waits about one refill period.
func TestSingleQuotaThrottles(t *testing.T) {
	limiters := New()
	spec := Spec{Key: "multi_test", Quota: Single(MustParseQuota("2/1s"))}

	start := time.Now()
	for range 5 {
		require.NoError(t, limiters.Check(context.Background(), spec))
	}
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 2900*time.Millisecond, "expected ~3s for 5 calls at 2/1s")
	assert.Less(t, elapsed, 4*time.Second)
}

func TestSingleQuotaBurstIsFree(t *testing.T) {
	limiters := New()
	spec := Spec{Key: "fast_test", Quota: Single(MustParseQuota("100/10s"))}

	start := time.Now()
	for range 10 {
		require.NoError(t, limiters.Check(context.Background(), spec))
	}
	assert.Less(t, time.Since(start), time.Second)
}

// With burst=3/1s and sustained=5/1s, three rapid calls are admitted
// immediately; the fourth blocks on the burst bucket even though the
// sustained bucket still has headroom.
func TestMultiWindowBurstGatesIndependently(t *testing.T) {
	limiters := New()
	spec := Spec{
		Key:   "multi_window",
		Quota: MultiWindow(MustParseQuota("3/1s"), MustParseQuota("5/1s")),
	}

	start := time.Now()
	for range 3 {
		require.NoError(t, limiters.Check(context.Background(), spec))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond, "burst calls should be fast")

	require.NoError(t, limiters.Check(context.Background(), spec))
	require.NoError(t, limiters.Check(context.Background(), spec))
	assert.GreaterOrEqual(t, time.Since(start), 2*time.Second, "past the burst, the sustained pace applies")
}

func TestAPIQuotaSharedAcrossEndpoints(t *testing.T) {
	limiters := New()
	q := MustParseQuota("3/1s")

	start := time.Now()
	for range 3 {
		require.NoError(t, limiters.CheckAPI(context.Background(), "test", q))
	}
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	require.NoError(t, limiters.CheckAPI(context.Background(), "test", q))
	assert.GreaterOrEqual(t, time.Since(start), time.Second, "fourth call should hit the API bucket")
}

// A second registration under an existing bucket name keeps the first quota.
func TestReuseOnName(t *testing.T) {
	limiters := New()
	first := limiters.getOrCreate("pinned", MustParseQuota("1/1s"))
	second := limiters.getOrCreate("pinned", MustParseQuota("1000/10s"))

	assert.Same(t, first, second)
	assert.Equal(t, 1, second.Burst())
}

func TestCheckHonorsContextCancellation(t *testing.T) {
	limiters := New()
	spec := Spec{Key: "cancel_test", Quota: Single(MustParseQuota("1/1m"))}

	// Drain the only token.
	require.NoError(t, limiters.Check(context.Background(), spec))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := limiters.Check(ctx, spec)
	assert.Error(t, err)
}

func TestGlobalBucketApplies(t *testing.T) {
	limiters := WithGlobal(MustParseQuota("2/1s"))
	spec := Spec{Key: "global_test", Quota: Single(MustParseQuota("100/10s"))}

	start := time.Now()
	for range 3 {
		require.NoError(t, limiters.Check(context.Background(), spec))
	}
	assert.GreaterOrEqual(t, time.Since(start), 900*time.Millisecond, "third call should wait on the global bucket")
}

func TestAPINameDerivedFromKey(t *testing.T) {
	assert.Equal(t, "book", Spec{Key: "book"}.apiName())
	assert.Equal(t, "post", Spec{Key: "post_order"}.apiName())
	assert.Equal(t, "clob", Spec{Key: "post_order", API: "clob"}.apiName())
	assert.Equal(t, "unknown", Spec{}.apiName())
}
