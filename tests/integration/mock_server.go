package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"

	"tweetarchiver/pkg/twitter"
)

// MockTwitterServer simulates the TweetDetail endpoint and the media CDN
type MockTwitterServer struct {
	server        *httptest.Server
	mu            sync.RWMutex
	tweets        map[string]*twitter.TweetDetailResponse
	media         map[string][]byte
	failuresLeft  map[string]int // Per-path countdown of induced 500 responses
	detailCalls   int32
	downloadCalls int32
}

// NewMockTwitterServer creates a server with no tweets registered
func NewMockTwitterServer() *MockTwitterServer {
	m := &MockTwitterServer{
		tweets:       make(map[string]*twitter.TweetDetailResponse),
		media:        make(map[string][]byte),
		failuresLeft: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/graphql/TweetDetail", m.handleTweetDetail)
	mux.HandleFunc("/media/", m.handleMedia)
	m.server = httptest.NewServer(mux)

	return m
}

// Close shuts the server down
func (m *MockTwitterServer) Close() {
	m.server.Close()
}

// DetailURL returns the TweetDetail endpoint URL for client SetBaseURL
func (m *MockTwitterServer) DetailURL() string {
	return m.server.URL + "/graphql/TweetDetail"
}

// MediaURL returns the CDN URL for a registered media path
func (m *MockTwitterServer) MediaURL(name string) string {
	return m.server.URL + "/media/" + name
}

// AddTweet registers a TweetDetail response for a tweet id
func (m *MockTwitterServer) AddTweet(tweetID string, resp *twitter.TweetDetailResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tweets[tweetID] = resp
}

// AddMedia registers a media binary under /media/{name}
func (m *MockTwitterServer) AddMedia(name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.media[name] = data
}

// FailDetailTimes makes the next n TweetDetail calls return 500
func (m *MockTwitterServer) FailDetailTimes(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failuresLeft["detail"] = n
}

// DetailCalls returns how many TweetDetail requests were served
func (m *MockTwitterServer) DetailCalls() int {
	return int(atomic.LoadInt32(&m.detailCalls))
}

// DownloadCalls returns how many media requests were served
func (m *MockTwitterServer) DownloadCalls() int {
	return int(atomic.LoadInt32(&m.downloadCalls))
}

func (m *MockTwitterServer) handleTweetDetail(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.detailCalls, 1)

	m.mu.Lock()
	if m.failuresLeft["detail"] > 0 {
		m.failuresLeft["detail"]--
		m.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	m.mu.Unlock()

	var variables struct {
		FocalTweetID string `json:"focalTweetId"`
	}
	if err := json.Unmarshal([]byte(r.URL.Query().Get("variables")), &variables); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	m.mu.RLock()
	resp, ok := m.tweets[variables.FocalTweetID]
	m.mu.RUnlock()

	if !ok {
		// Unknown tweets resolve to an empty conversation, matching the
		// upstream behavior for deleted ids.
		resp = &twitter.TweetDetailResponse{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (m *MockTwitterServer) handleMedia(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.downloadCalls, 1)

	name := strings.TrimPrefix(r.URL.Path, "/media/")

	m.mu.RLock()
	data, ok := m.media[name]
	m.mu.RUnlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
