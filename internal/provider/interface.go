package provider

import (
	"path"
	"strconv"
	"strings"
)

// MediaType represents the type of entity a poster belongs to
type MediaType string

const (
	MediaTypeMovie      MediaType = "movie"
	MediaTypeTV         MediaType = "tv"
	MediaTypeCollection MediaType = "collection"
)

// Source identifies the provider a poster was obtained from
type Source string

const (
	SourceTMDB   Source = "tmdb"
	SourceFanart Source = "fanart.tv"
	SourceTVDB   Source = "thetvdb"
)

// PosterSet holds the four size variants of one poster image.
// Providers without size variants replicate the same URL across all four.
type PosterSet struct {
	Small    string `json:"small"`
	Medium   string `json:"medium"`
	Large    string `json:"large"`
	Original string `json:"original"`
}

// Uniform returns a PosterSet where every variant is the same URL
func Uniform(url string) PosterSet {
	return PosterSet{Small: url, Medium: url, Large: url, Original: url}
}

// Complete reports whether all four variants are populated
func (p PosterSet) Complete() bool {
	return p.Small != "" && p.Medium != "" && p.Large != "" && p.Original != ""
}

// Filename returns the last path segment of the original variant. Two posters
// with the same filename are treated as the same image regardless of provider.
func (p PosterSet) Filename() string {
	u := p.Original
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if u == "" {
		return ""
	}
	return path.Base(u)
}

// Entity is one movie, TV show or collection identified by structured-metadata
// search. Detail fields are filled in once the detail call succeeds.
type Entity struct {
	ID           int
	Type         MediaType
	Title        string
	ReleaseDate  string
	FirstAirDate string
	PosterPath   string
	IMDbID       string
	TVDBID       int
}

// Key returns a stable identifier for the entity within one request
func (e Entity) Key() string {
	return string(e.Type) + ":" + strconv.Itoa(e.ID)
}
