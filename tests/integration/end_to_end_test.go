package integration

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetarchiver/pkg/archive"
	"tweetarchiver/pkg/logger"
	"tweetarchiver/pkg/pipeline"
	"tweetarchiver/pkg/processed"
	"tweetarchiver/pkg/retry"
	"tweetarchiver/pkg/twitter"
)

// tweetResponse builds a TweetDetail response for the given id and media list
func tweetResponse(tweetID, caption string, media []twitter.MediaItem) *twitter.TweetDetailResponse {
	return &twitter.TweetDetailResponse{
		Data: &twitter.ResponseData{
			ThreadedConversation: &twitter.ThreadedConversation{
				Instructions: []twitter.Instruction{
					{
						Type: "TimelineAddEntries",
						Entries: []twitter.Entry{
							{
								EntryID: twitter.TweetEntryID(tweetID),
								Content: &twitter.EntryContent{
									ItemContent: &twitter.ItemContent{
										TweetResults: &twitter.TweetResults{
											Result: &twitter.TweetResult{
												Legacy: &twitter.LegacyTweet{
													FullText: caption,
													Entities: &twitter.TweetEntities{Media: media},
												},
											},
										},
									},
								},
							},
						},
					},
				},
			},
		},
	}
}

// buildPipeline wires a real client, archiver, and file store against the mock
// server, archiving into outputDir
func buildPipeline(t *testing.T, mock *MockTwitterServer, outputDir string, retryDelay time.Duration) (*pipeline.Pipeline, *processed.FileStore) {
	t.Helper()

	log := logger.NewTestLogger()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = 3
	retryCfg.Backoff = &retry.ConstantBackoff{Delay: retryDelay}
	retryCfg.Logger = log

	client := twitter.NewClient(10*time.Second, twitter.Cookies{CSRFToken: "test-token"}, retryCfg, log)
	client.SetBaseURL(mock.DetailURL())

	saver, err := archive.NewFileSaver(outputDir)
	require.NoError(t, err)

	store, err := processed.NewFileStoreAt(filepath.Join(outputDir, "processed.json"))
	require.NoError(t, err)

	packager := archive.New(client, saver, 2, log)
	return pipeline.NewWith(client, packager, store, nil, log), store
}

// readArchive unpacks a bundle from disk into entry-name -> content
func readArchive(t *testing.T, path string) map[string][]byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	entries := make(map[string][]byte)
	for _, f := range zr.File {
		r, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(r)
		require.NoError(t, err)
		r.Close()
		entries[f.Name] = content
	}
	return entries
}

func TestEndToEndArchival(t *testing.T) {
	mock := NewMockTwitterServer()
	defer mock.Close()

	mock.AddMedia("photo.jpg", []byte("jpeg-bytes"))
	mock.AddMedia("clip.mp4", []byte("mp4-bytes"))
	mock.AddTweet("123", tweetResponse("123", "two of my favorites", []twitter.MediaItem{
		{Type: "photo", MediaURLHTTPS: mock.MediaURL("photo.jpg")},
		{
			Type: "video",
			VideoInfo: &twitter.VideoInfo{
				Variants: []twitter.VideoVariant{
					{Bitrate: 100, ContentType: "video/mp4", URL: mock.MediaURL("clip.mp4") + "?tag=low"},
					{Bitrate: 900, ContentType: "video/mp4", URL: mock.MediaURL("clip.mp4")},
				},
			},
		},
	}))

	outputDir := t.TempDir()
	p, store := buildPipeline(t, mock, outputDir, time.Millisecond)

	postedAt := time.Date(2024, 3, 15, 10, 30, 0, 0, time.Local)
	outcome, err := p.RunLink("https://x.com/alice/status/123", "two of my favorites", postedAt)
	require.NoError(t, err)

	require.True(t, outcome.Archived)
	assert.Equal(t, 2, outcome.Result.MediaTotal)
	assert.Equal(t, 2, outcome.Result.MediaArchived)

	archivePath := filepath.Join(outputDir, "alice_123.zip")
	assert.Equal(t, archivePath, outcome.Result.SavedPath)

	entries := readArchive(t, archivePath)
	require.Len(t, entries, 4)

	assert.Equal(t, []byte("jpeg-bytes"), entries["alice_123_1.jpg"])
	assert.Equal(t, []byte("mp4-bytes"), entries["alice_123_2.mp4"])
	assert.Equal(t, "[InternetShortcut]\nURL=https://x.com/alice/status/123", string(entries["alice_123.url"]))

	metadata := string(entries["metadata.txt"])
	assert.Equal(t, "https://x.com/alice/status/123\n"+
		"two of my favorites\n"+
		"@alice\n"+
		"2024-03-15 10:30:00\n"+
		mock.MediaURL("photo.jpg")+"?name=orig\n"+
		mock.MediaURL("clip.mp4"), metadata)

	assert.True(t, store.Has("123"))
}

func TestEndToEndPartialMediaFailure(t *testing.T) {
	mock := NewMockTwitterServer()
	defer mock.Close()

	// The middle photo is never registered, so its fetch 404s
	mock.AddMedia("one.jpg", []byte("one"))
	mock.AddMedia("three.jpg", []byte("three"))
	mock.AddTweet("555", tweetResponse("555", "", []twitter.MediaItem{
		{Type: "photo", MediaURLHTTPS: mock.MediaURL("one.jpg")},
		{Type: "photo", MediaURLHTTPS: mock.MediaURL("missing.jpg")},
		{Type: "photo", MediaURLHTTPS: mock.MediaURL("three.jpg")},
	}))

	outputDir := t.TempDir()
	p, _ := buildPipeline(t, mock, outputDir, time.Millisecond)

	outcome, err := p.RunLink("https://x.com/bob/status/555", "", time.Now())
	require.NoError(t, err)

	require.True(t, outcome.Archived)
	assert.Equal(t, 3, outcome.Result.MediaTotal)
	assert.Equal(t, 2, outcome.Result.MediaArchived)

	entries := readArchive(t, filepath.Join(outputDir, "bob_555.zip"))
	assert.Contains(t, entries, "bob_555_1.jpg")
	assert.NotContains(t, entries, "bob_555_2.jpg")
	assert.Contains(t, entries, "bob_555_3.jpg")
}

func TestEndToEndRetriesResolution(t *testing.T) {
	mock := NewMockTwitterServer()
	defer mock.Close()

	mock.AddMedia("pic.jpg", []byte("pic"))
	mock.AddTweet("777", tweetResponse("777", "", []twitter.MediaItem{
		{Type: "photo", MediaURLHTTPS: mock.MediaURL("pic.jpg")},
	}))
	mock.FailDetailTimes(2)

	outputDir := t.TempDir()
	p, _ := buildPipeline(t, mock, outputDir, time.Millisecond)

	outcome, err := p.RunLink("https://x.com/carol/status/777", "", time.Now())
	require.NoError(t, err)

	assert.True(t, outcome.Archived)
	assert.Equal(t, 3, mock.DetailCalls())
}

func TestEndToEndResolutionExhaustsRetries(t *testing.T) {
	mock := NewMockTwitterServer()
	defer mock.Close()

	mock.FailDetailTimes(10)

	outputDir := t.TempDir()
	p, store := buildPipeline(t, mock, outputDir, time.Millisecond)

	outcome, err := p.RunLink("https://x.com/dave/status/888", "", time.Now())
	require.NoError(t, err)

	assert.False(t, outcome.Archived)
	assert.Equal(t, "resolution failed", outcome.Reason)
	assert.Equal(t, 3, mock.DetailCalls())
	assert.False(t, store.Has("888"))
	assert.NoFileExists(t, filepath.Join(outputDir, "dave_888.zip"))
}

func TestEndToEndDeletedTweet(t *testing.T) {
	mock := NewMockTwitterServer()
	defer mock.Close()

	outputDir := t.TempDir()
	p, store := buildPipeline(t, mock, outputDir, time.Millisecond)

	outcome, err := p.RunLink("https://x.com/erin/status/999", "", time.Now())
	require.NoError(t, err)

	assert.False(t, outcome.Archived)
	assert.Equal(t, "no media found", outcome.Reason)
	assert.False(t, store.Has("999"))
}

func TestEndToEndRepeatRun(t *testing.T) {
	mock := NewMockTwitterServer()
	defer mock.Close()

	mock.AddMedia("pic.jpg", []byte("pic"))
	mock.AddTweet("123", tweetResponse("123", "", []twitter.MediaItem{
		{Type: "photo", MediaURLHTTPS: mock.MediaURL("pic.jpg")},
	}))

	outputDir := t.TempDir()
	p, store := buildPipeline(t, mock, outputDir, time.Millisecond)

	first, err := p.RunLink("https://x.com/alice/status/123", "", time.Now())
	require.NoError(t, err)
	assert.True(t, first.Archived)
	assert.False(t, first.AlreadyProcessed)

	second, err := p.RunLink("https://x.com/alice/status/123", "", time.Now())
	require.NoError(t, err)
	assert.True(t, second.Archived)
	assert.True(t, second.AlreadyProcessed)

	ids, err := store.All()
	require.NoError(t, err)
	assert.Equal(t, []string{"123"}, ids)
}
