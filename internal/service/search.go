package service

import (
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/romboooo/distr-is/internal/domain"
)

// CatalogItem is one searchable entry in the local catalog index
type CatalogItem struct {
	Title   string // Searchable display title
	Release *domain.Release
	Artist  *domain.Artist
}

// SearchService keeps a local fuzzy index over the entities the current
// view has loaded, so filtering stays instant and offline.
type SearchService struct {
	logger *slog.Logger

	mu    sync.RWMutex
	items map[string]CatalogItem // lowercase title -> item
}

// NewSearchService creates a new search service
func NewSearchService(logger *slog.Logger) *SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchService{
		logger: logger,
		items:  make(map[string]CatalogItem),
	}
}

// IndexReleases adds releases to the local index
func (s *SearchService) IndexReleases(releases []domain.Release) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range releases {
		r := releases[i]
		s.items[strings.ToLower(r.Name)] = CatalogItem{Title: r.Name, Release: &r}
	}
	s.logger.Debug("indexed releases", "count", len(releases), "total", len(s.items))
}

// IndexArtists adds artists to the local index
func (s *SearchService) IndexArtists(artists []domain.Artist) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range artists {
		a := artists[i]
		s.items[strings.ToLower(a.Name)] = CatalogItem{Title: a.Name, Artist: &a}
	}
	s.logger.Debug("indexed artists", "count", len(artists), "total", len(s.items))
}

// Clear removes every indexed entry. Called on logout alongside the
// resource cache wipe.
func (s *SearchService) Clear() {
	s.mu.Lock()
	s.items = make(map[string]CatalogItem)
	s.mu.Unlock()
	s.logger.Debug("cleared catalog index")
}

// Search fuzzy-matches the query against the indexed titles, best first
func (s *SearchService) Search(query string) []CatalogItem {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	titles := make([]string, 0, len(s.items))
	for title := range s.items {
		titles = append(titles, title)
	}

	matches := fuzzy.RankFindFold(query, titles)
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	results := make([]CatalogItem, 0, len(matches))
	for _, match := range matches {
		if item, ok := s.items[match.Target]; ok {
			results = append(results, item)
		}
	}
	return results
}

// FilterTitles ranks arbitrary display strings against a query, returning
// the indexes of matching entries, best first. Views use this for in-list
// filtering without touching the shared index.
func FilterTitles(query string, titles []string) []int {
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]int, len(titles))
		for i := range titles {
			out[i] = i
		}
		return out
	}

	matches := fuzzy.RankFindNormalizedFold(query, titles)
	sort.Sort(matches)

	out := make([]int, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.OriginalIndex)
	}
	return out
}
