package covers

import (
	"fmt"
	"strings"
	"time"

	"soundlicense-backend/pkg/models"

	gocache "github.com/patrickmn/go-cache"
)

const (
	searchTTL = 24 * time.Hour
	trackTTL  = 7 * 24 * time.Hour
)

// searcher lets tests substitute the Pexels client.
type searcher interface {
	Search(query string, perPage, page int) (*SearchResult, error)
}

// Resolver picks a cover image URL for a track. Locally stored covers win;
// otherwise it queries Pexels with search terms derived from the track's
// metadata and caches both the raw search pages and the per-track answer.
type Resolver struct {
	client searcher
	cache  *gocache.Cache
	urlFor func(path string) string
}

// NewResolver wires the resolver against a Pexels client. urlFor maps a
// stored cover path to its public URL.
func NewResolver(client *PexelsClient, urlFor func(path string) string) *Resolver {
	return &Resolver{
		client: client,
		cache:  gocache.New(searchTTL, 10*time.Minute),
		urlFor: urlFor,
	}
}

func searchKey(query string, perPage, page int) string {
	return fmt.Sprintf("search:%s:%d:%d", strings.ToLower(query), perPage, page)
}

func trackKey(id string) string {
	return "track:" + id
}

// searchTerms derives the candidate queries in priority order: the first
// genre, then the first mood, then the title, then a generic fallback.
func searchTerms(track *models.Track) []string {
	var terms []string
	if len(track.Genres) > 0 && strings.TrimSpace(track.Genres[0]) != "" {
		terms = append(terms, strings.TrimSpace(track.Genres[0]))
	}
	if len(track.Moods) > 0 && strings.TrimSpace(track.Moods[0]) != "" {
		terms = append(terms, strings.TrimSpace(track.Moods[0]))
	}
	if strings.TrimSpace(track.Title) != "" {
		terms = append(terms, strings.TrimSpace(track.Title))
	}
	terms = append(terms, "music")
	return terms
}

// search consults the cache before hitting the API.
func (r *Resolver) search(query string, perPage, page int) (*SearchResult, error) {
	key := searchKey(query, perPage, page)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(*SearchResult), nil
	}
	result, err := r.client.Search(query, perPage, page)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, result, searchTTL)
	return result, nil
}

// CoverURL resolves the cover image URL for a track, or "" when no image
// can be found. Lookup failures degrade to "" so track pages still render.
func (r *Resolver) CoverURL(track *models.Track) string {
	if track.CoverImage != nil && *track.CoverImage != "" {
		return r.urlFor(*track.CoverImage)
	}

	key := trackKey(track.ID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.(string)
	}

	for _, term := range searchTerms(track) {
		result, err := r.search(term, 5, 1)
		if err != nil {
			fmt.Printf("[warn] pexels search %q failed: %v\n", term, err)
			continue
		}
		if len(result.Photos) == 0 {
			continue
		}
		url := result.Photos[0].Src.Medium
		r.cache.Set(key, url, trackTTL)
		return url
	}

	r.cache.Set(key, "", trackTTL)
	return ""
}
