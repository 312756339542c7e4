package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/log"
)

func TestSearchRanksCloserMatchesFirst(t *testing.T) {
	svc := NewSearchService(log.NullLogger())
	svc.IndexReleases([]domain.Release{
		{ID: 1, Name: "Midnight Drive"},
		{ID: 2, Name: "Midnight"},
		{ID: 3, Name: "Sunrise"},
	})

	results := svc.Search("midnight")
	require.Len(t, results, 2)
	assert.Equal(t, "Midnight", results[0].Title)
	assert.Equal(t, "Midnight Drive", results[1].Title)
}

func TestSearchEmptyQueryReturnsNothing(t *testing.T) {
	svc := NewSearchService(log.NullLogger())
	svc.IndexReleases([]domain.Release{{ID: 1, Name: "Midnight"}})

	assert.Empty(t, svc.Search(""))
	assert.Empty(t, svc.Search("   "))
}

func TestSearchMixesReleasesAndArtists(t *testing.T) {
	svc := NewSearchService(log.NullLogger())
	svc.IndexReleases([]domain.Release{{ID: 1, Name: "Nova"}})
	svc.IndexArtists([]domain.Artist{{ID: 7, Name: "Nova Kane"}})

	results := svc.Search("nova")
	require.Len(t, results, 2)
	for _, item := range results {
		if item.Release != nil {
			assert.Equal(t, int64(1), item.Release.ID)
		}
		if item.Artist != nil {
			assert.Equal(t, int64(7), item.Artist.ID)
		}
	}
}

func TestClearEmptiesIndex(t *testing.T) {
	svc := NewSearchService(log.NullLogger())
	svc.IndexReleases([]domain.Release{{ID: 1, Name: "Midnight"}})

	svc.Clear()

	assert.Empty(t, svc.Search("midnight"))
}

func TestFilterTitlesEmptyQueryKeepsOrder(t *testing.T) {
	idx := FilterTitles("", []string{"b", "a", "c"})
	assert.Equal(t, []int{0, 1, 2}, idx)
}

func TestFilterTitlesRanksBestFirst(t *testing.T) {
	titles := []string{"Deep Cuts", "Deep", "Surface"}

	idx := FilterTitles("deep", titles)

	require.Len(t, idx, 2)
	assert.Equal(t, 1, idx[0])
	assert.Equal(t, 0, idx[1])
}
