package tvdb

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Digital-Shane/posteria/internal/fetch"
	"github.com/google/go-cmp/cmp"
)

func TestSlug(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Stranger Things":                 "stranger-things",
		"Marvel's Agents of S.H.I.E.L.D.": "marvels-agents-of-shield",
		"  Alien  ":                       "alien",
		"Amélie":                          "amlie",
		"!!!":                             "",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPages(t *testing.T) {
	t.Parallel()

	c := New()
	tests := map[string]struct {
		target Target
		season *int
		want   []string
	}{
		"movie": {
			target: Target{Title: "Alien", Content: ContentMovie},
			season: intPtr(2),
			want:   []string{"https://www.thetvdb.com/movies/alien"},
		},
		"series without season": {
			target: Target{Title: "Lost", Content: ContentSeries},
			want: []string{
				"https://www.thetvdb.com/series/lost",
				"https://www.thetvdb.com/series/lost/seasons/official/0",
			},
		},
		"series with season": {
			target: Target{Title: "Lost", Content: ContentSeries},
			season: intPtr(3),
			want: []string{
				"https://www.thetvdb.com/series/lost",
				"https://www.thetvdb.com/series/lost/seasons/official/3",
				"https://www.thetvdb.com/series/lost/seasons/dvd/3",
				"https://www.thetvdb.com/series/lost/seasons/official/0",
			},
		},
		"series specials": {
			target: Target{Title: "Lost", Content: ContentSeries},
			season: intPtr(0),
			want: []string{
				"https://www.thetvdb.com/series/lost",
				"https://www.thetvdb.com/series/lost/seasons/official/0",
			},
		},
		"empty slug": {
			target: Target{Title: "???", Content: ContentSeries},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var got []string
			for _, p := range c.Pages(tc.target, tc.season) {
				got = append(got, p.URL)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Pages() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPosters(t *testing.T) {
	t.Parallel()

	img := func(path string) string {
		return fmt.Sprintf(`<img src="https://artworks.thetvdb.com/banners/%s">`, path)
	}

	var hits atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/series/lost", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, img("posters/lost-s2.jpg")+img("posters/lost-s1.jpg")+img("posters/unknown-s2.jpg"))
	})
	mux.HandleFunc("/series/lost/seasons/official/2", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, img("posters/lost-s2.jpg")+img("seasons/lost-season-2.jpg"))
	})
	mux.HandleFunc("/series/lost/seasons/dvd/2", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	})
	mux.HandleFunc("/series/lost/seasons/official/0", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, img("posters/lost-2nd-special.jpg"))
	})
	mux.HandleFunc("/movies/alien", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprint(w, img("movies/1/posters/alien.jpg")+img("movies/1/backgrounds/alien.jpg"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New().WithBaseURL(srv.URL)
	sess := fetch.NewSession(fetch.Options{})
	defer sess.Close()

	got := c.Posters(context.Background(), sess, map[string]Target{
		"tv:1":    {Title: "Lost", Content: ContentSeries},
		"movie:2": {Title: "Alien", Content: ContentMovie},
		"movie:3": {Title: "Missing", Content: ContentMovie},
	}, intPtr(2))

	want := map[string][]string{
		"tv:1": {
			"https://artworks.thetvdb.com/banners/posters/lost-s2.jpg",
			"https://artworks.thetvdb.com/banners/seasons/lost-season-2.jpg",
			"https://artworks.thetvdb.com/banners/posters/lost-2nd-special.jpg",
		},
		"movie:2": {"https://artworks.thetvdb.com/banners/movies/1/posters/alien.jpg"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Posters() mismatch (-want +got):\n%s", diff)
	}
	if hits.Load() != 5 {
		t.Errorf("page hits = %d, want 5", hits.Load())
	}
}
