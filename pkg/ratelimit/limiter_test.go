package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenBucketAllow(t *testing.T) {
	bucket := NewTokenBucket(3, time.Minute)

	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())
}

func TestTokenBucketRefill(t *testing.T) {
	bucket := NewTokenBucket(1, 20*time.Millisecond)

	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	time.Sleep(25 * time.Millisecond)
	assert.True(t, bucket.Allow())
}

func TestTokenBucketReset(t *testing.T) {
	bucket := NewTokenBucket(1, time.Minute)

	assert.True(t, bucket.Allow())
	assert.False(t, bucket.Allow())

	bucket.Reset()
	assert.True(t, bucket.Allow())
}

func TestTokenBucketWait(t *testing.T) {
	bucket := NewTokenBucket(1, 20*time.Millisecond)

	assert.True(t, bucket.Allow())

	start := time.Now()
	bucket.Wait()
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 10*time.Millisecond)
}

func TestUnlimited(t *testing.T) {
	limiter := Unlimited{}

	for i := 0; i < 100; i++ {
		assert.True(t, limiter.Allow())
	}
	limiter.Wait()
	limiter.Reset()
}
