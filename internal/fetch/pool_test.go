package fetch

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetarchiver/pkg/logger"
)

// stubDownloader serves canned bytes per URL with an optional per-call delay
type stubDownloader struct {
	mu    sync.Mutex
	data  map[string][]byte
	delay time.Duration
	calls int
}

func (d *stubDownloader) DownloadMedia(url string) ([]byte, error) {
	d.mu.Lock()
	d.calls++
	d.mu.Unlock()

	if d.delay > 0 {
		time.Sleep(d.delay)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if data, ok := d.data[url]; ok {
		return data, nil
	}
	return nil, fmt.Errorf("no such media: %s", url)
}

func collectResults(pool *Pool) map[int]Result {
	results := make(map[int]Result)
	for result := range pool.Results() {
		results[result.Job.Index] = result
	}
	return results
}

func TestPoolFetchesAllJobs(t *testing.T) {
	downloader := &stubDownloader{data: map[string][]byte{
		"https://cdn.example/0": []byte("zero"),
		"https://cdn.example/1": []byte("one"),
		"https://cdn.example/2": []byte("two"),
	}}

	pool := NewPool(2, downloader, logger.NewTestLogger())
	pool.Start()

	go func() {
		for i := 0; i < 3; i++ {
			_ = pool.Submit(Job{Index: i, URL: fmt.Sprintf("https://cdn.example/%d", i)})
		}
		pool.Stop()
	}()

	results := collectResults(pool)

	require.Len(t, results, 3)
	assert.Equal(t, []byte("zero"), results[0].Data)
	assert.Equal(t, []byte("one"), results[1].Data)
	assert.Equal(t, []byte("two"), results[2].Data)
	for _, result := range results {
		assert.NoError(t, result.Err)
	}
}

func TestPoolReportsFailuresPerJob(t *testing.T) {
	downloader := &stubDownloader{data: map[string][]byte{
		"https://cdn.example/ok": []byte("ok"),
	}}

	pool := NewPool(2, downloader, logger.NewTestLogger())
	pool.Start()

	go func() {
		_ = pool.Submit(Job{Index: 0, URL: "https://cdn.example/ok"})
		_ = pool.Submit(Job{Index: 1, URL: "https://cdn.example/missing"})
		pool.Stop()
	}()

	results := collectResults(pool)

	require.Len(t, results, 2)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, []byte("ok"), results[0].Data)

	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Data)
}

func TestPoolResultsCarrySourceIndex(t *testing.T) {
	// Slow first job, fast rest: completion order differs from submission
	// order, but indices still map results back to their jobs.
	downloader := &stubDownloader{
		data: map[string][]byte{
			"https://cdn.example/0": []byte("slow"),
			"https://cdn.example/1": []byte("fast"),
		},
		delay: 10 * time.Millisecond,
	}

	pool := NewPool(2, downloader, logger.NewTestLogger())
	pool.Start()

	go func() {
		_ = pool.Submit(Job{Index: 0, URL: "https://cdn.example/0"})
		_ = pool.Submit(Job{Index: 1, URL: "https://cdn.example/1"})
		pool.Stop()
	}()

	results := collectResults(pool)

	require.Len(t, results, 2)
	assert.Equal(t, []byte("slow"), results[0].Data)
	assert.Equal(t, []byte("fast"), results[1].Data)
}

func TestPoolStopWithNoJobs(t *testing.T) {
	pool := NewPool(2, &stubDownloader{}, logger.NewTestLogger())
	pool.Start()

	go pool.Stop()

	results := collectResults(pool)
	assert.Empty(t, results)
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	pool := NewPool(0, &stubDownloader{}, logger.NewTestLogger())
	assert.Equal(t, 1, pool.numWorkers)
}
