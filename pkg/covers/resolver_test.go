package covers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"soundlicense-backend/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPexelsServer(t *testing.T, photosByQuery map[string][]Photo, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		require.Equal(t, "test-key", r.Header.Get("Authorization"))

		query := r.URL.Query().Get("query")
		photos := photosByQuery[query]
		result := SearchResult{
			TotalResults: len(photos),
			Page:         1,
			PerPage:      5,
			Photos:       photos,
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(result))
	}))
}

func testResolver(serverURL string) *Resolver {
	client := NewPexelsClient("test-key", serverURL)
	return NewResolver(client, func(path string) string { return "https://cdn.example.com/" + path })
}

func TestCoverURLLocalCoverShortCircuits(t *testing.T) {
	var calls int32
	server := newPexelsServer(t, nil, &calls)
	defer server.Close()

	resolver := testResolver(server.URL)
	cover := "covers/abc.jpg"
	track := &models.Track{ID: "t1", CoverImage: &cover, Genres: []string{"Jazz"}}

	url := resolver.CoverURL(track)
	assert.Equal(t, "https://cdn.example.com/covers/abc.jpg", url)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no external call for a stored cover")
}

func TestCoverURLSearchesFirstGenre(t *testing.T) {
	var calls int32
	server := newPexelsServer(t, map[string][]Photo{
		"Jazz": {{ID: 1, Src: PhotoSource{Medium: "https://images.example.com/jazz-medium.jpg"}}},
	}, &calls)
	defer server.Close()

	resolver := testResolver(server.URL)
	track := &models.Track{ID: "t1", Title: "Blue Evening", Genres: []string{"Jazz", "Funk"}, Moods: []string{"Calm"}}

	url := resolver.CoverURL(track)
	assert.Equal(t, "https://images.example.com/jazz-medium.jpg", url)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one search for the first genre")
}

func TestCoverURLSendsBareSearchTerms(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("query"))
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(SearchResult{}))
	}))
	defer server.Close()

	resolver := testResolver(server.URL)
	track := &models.Track{ID: "t1", Title: "Blue Evening", Genres: []string{"Jazz"}, Moods: []string{"Calm"}}
	resolver.CoverURL(track)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"Jazz", "Calm", "Blue Evening", "music"}, queries)
}

func TestCoverURLCachesPerTrack(t *testing.T) {
	var calls int32
	server := newPexelsServer(t, map[string][]Photo{
		"Jazz": {{ID: 1, Src: PhotoSource{Medium: "https://images.example.com/jazz.jpg"}}},
	}, &calls)
	defer server.Close()

	resolver := testResolver(server.URL)
	track := &models.Track{ID: "t1", Genres: []string{"Jazz"}}

	first := resolver.CoverURL(track)
	second := resolver.CoverURL(track)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second resolution served from cache")
}

func TestCoverURLFallsBackThroughTerms(t *testing.T) {
	var calls int32
	server := newPexelsServer(t, map[string][]Photo{
		// Genre and mood both return nothing; title hits.
		"Blue Evening": {{ID: 9, Src: PhotoSource{Medium: "https://images.example.com/title.jpg"}}},
	}, &calls)
	defer server.Close()

	resolver := testResolver(server.URL)
	track := &models.Track{ID: "t1", Title: "Blue Evening", Genres: []string{"Jazz"}, Moods: []string{"Calm"}}

	url := resolver.CoverURL(track)
	assert.Equal(t, "https://images.example.com/title.jpg", url)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCoverURLUnreachableAPIDegradesToEmpty(t *testing.T) {
	resolver := testResolver("http://127.0.0.1:1")
	track := &models.Track{ID: "t1", Genres: []string{"Jazz"}}

	assert.Equal(t, "", resolver.CoverURL(track))
}

func TestSearchResultCachedByQuery(t *testing.T) {
	var calls int32
	server := newPexelsServer(t, map[string][]Photo{
		"Jazz": {{ID: 1, Src: PhotoSource{Medium: "https://images.example.com/jazz.jpg"}}},
	}, &calls)
	defer server.Close()

	resolver := testResolver(server.URL)

	// Two tracks sharing a genre reuse the same cached search page.
	a := &models.Track{ID: "t1", Genres: []string{"Jazz"}}
	b := &models.Track{ID: "t2", Genres: []string{"Jazz"}}
	resolver.CoverURL(a)
	resolver.CoverURL(b)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
