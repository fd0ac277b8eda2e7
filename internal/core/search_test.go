package core

import (
	"testing"

	"github.com/Digital-Shane/posteria/internal/media"
	"github.com/Digital-Shane/posteria/internal/provider"
	"github.com/Digital-Shane/posteria/internal/provider/tmdb"
	"github.com/google/go-cmp/cmp"
)

func TestSearchKinds(t *testing.T) {
	t.Parallel()

	tests := map[media.QueryType][]string{
		media.QueryMovie:      {tmdb.SearchMovie},
		media.QueryTV:         {tmdb.SearchTV},
		media.QueryCollection: {tmdb.SearchCollection},
		media.QueryAll:        {tmdb.SearchMulti, tmdb.SearchCollection},
	}

	for typ, want := range tests {
		t.Run(string(typ), func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(want, searchKinds(typ)); diff != "" {
				t.Errorf("searchKinds(%q) mismatch (-want +got):\n%s", typ, diff)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		typ     media.QueryType
		results map[string][]tmdb.SearchResult
		want    []provider.Entity
	}{
		"movie search": {
			typ: media.QueryMovie,
			results: map[string][]tmdb.SearchResult{
				tmdb.SearchMovie: {
					{ID: 348, Title: "Alien", ReleaseDate: "1979-05-25", PosterPath: "/alien.jpg"},
					{ID: 679, Title: "Aliens", ReleaseDate: "1986-07-18"},
				},
			},
			want: []provider.Entity{
				{ID: 348, Type: provider.MediaTypeMovie, Title: "Alien", ReleaseDate: "1979-05-25", PosterPath: "/alien.jpg"},
				{ID: 679, Type: provider.MediaTypeMovie, Title: "Aliens", ReleaseDate: "1986-07-18"},
			},
		},
		"tv search uses name": {
			typ: media.QueryTV,
			results: map[string][]tmdb.SearchResult{
				tmdb.SearchTV: {{ID: 1396, Name: "Breaking Bad", FirstAirDate: "2008-01-20"}},
			},
			want: []provider.Entity{
				{ID: 1396, Type: provider.MediaTypeTV, Title: "Breaking Bad", FirstAirDate: "2008-01-20"},
			},
		},
		"all groups by type and drops people": {
			typ: media.QueryAll,
			results: map[string][]tmdb.SearchResult{
				tmdb.SearchMulti: {
					{ID: 7000, MediaType: "tv", Name: "Alien Show"},
					{ID: 1, MediaType: "person", Name: "Sigourney Weaver"},
					{ID: 348, MediaType: "movie", Title: "Alien"},
					{ID: 2, MediaType: "podcast", Name: "Unknown"},
					{ID: 679, MediaType: "movie", Title: "Aliens"},
				},
				tmdb.SearchCollection: {
					{ID: 8091, Name: "Alien Collection", PosterPath: "/ac.jpg"},
				},
			},
			want: []provider.Entity{
				{ID: 348, Type: provider.MediaTypeMovie, Title: "Alien"},
				{ID: 679, Type: provider.MediaTypeMovie, Title: "Aliens"},
				{ID: 7000, Type: provider.MediaTypeTV, Title: "Alien Show"},
				{ID: 8091, Type: provider.MediaTypeCollection, Title: "Alien Collection", PosterPath: "/ac.jpg"},
			},
		},
		"collections need a poster": {
			typ: media.QueryCollection,
			results: map[string][]tmdb.SearchResult{
				tmdb.SearchCollection: {
					{ID: 1, Name: "No Poster Collection"},
					{ID: 2, Name: "Poster Collection", PosterPath: "/p.jpg"},
				},
			},
			want: []provider.Entity{
				{ID: 2, Type: provider.MediaTypeCollection, Title: "Poster Collection", PosterPath: "/p.jpg"},
			},
		},
		"multi collection hit is not repeated": {
			typ: media.QueryAll,
			results: map[string][]tmdb.SearchResult{
				tmdb.SearchMulti:      {{ID: 8091, MediaType: "collection", Name: "Alien Collection", PosterPath: "/ac.jpg"}},
				tmdb.SearchCollection: {{ID: 8091, Name: "Alien Collection", PosterPath: "/ac.jpg"}},
			},
			want: []provider.Entity{
				{ID: 8091, Type: provider.MediaTypeCollection, Title: "Alien Collection", PosterPath: "/ac.jpg"},
			},
		},
		"failed index contributes nothing": {
			typ: media.QueryAll,
			results: map[string][]tmdb.SearchResult{
				tmdb.SearchCollection: {{ID: 8091, Name: "Alien Collection", PosterPath: "/ac.jpg"}},
			},
			want: []provider.Entity{
				{ID: 8091, Type: provider.MediaTypeCollection, Title: "Alien Collection", PosterPath: "/ac.jpg"},
			},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.want, Classify(tc.typ, tc.results)); diff != "" {
				t.Errorf("Classify() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
