package tmdb

import (
	"encoding/json"

	"github.com/Digital-Shane/posteria/internal/provider"
)

// SearchResult is one hit from any search endpoint. Movies carry Title and
// ReleaseDate, shows and collections carry Name.
type SearchResult struct {
	ID           int    `json:"id"`
	MediaType    string `json:"media_type"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
	PosterPath   string `json:"poster_path"`
}

// DisplayTitle returns Title, falling back to Name
func (r SearchResult) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// ExternalIDs are cross references appended to detail responses
type ExternalIDs struct {
	IMDbID string `json:"imdb_id"`
	TVDBID int    `json:"tvdb_id"`
}

type MovieDetails struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	ReleaseDate string      `json:"release_date"`
	PosterPath  string      `json:"poster_path"`
	IMDbID      string      `json:"imdb_id"`
	ExternalIDs ExternalIDs `json:"external_ids"`
}

// Season is one entry of a show's season list
type Season struct {
	SeasonNumber int    `json:"season_number"`
	Name         string `json:"name"`
	EpisodeCount int    `json:"episode_count"`
	AirDate      string `json:"air_date"`
	PosterPath   string `json:"poster_path"`
}

type TVDetails struct {
	ID           int         `json:"id"`
	Name         string      `json:"name"`
	FirstAirDate string      `json:"first_air_date"`
	PosterPath   string      `json:"poster_path"`
	ExternalIDs  ExternalIDs `json:"external_ids"`
	Seasons      []Season    `json:"seasons"`
}

// FindSeason returns the season with the given number
func (d *TVDetails) FindSeason(number int) (Season, bool) {
	if d == nil {
		return Season{}, false
	}
	for _, s := range d.Seasons {
		if s.SeasonNumber == number {
			return s, true
		}
	}
	return Season{}, false
}

// Part is one movie of a collection
type Part struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	PosterPath  string `json:"poster_path"`
}

type CollectionDetails struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	PosterPath string `json:"poster_path"`
	Parts      []Part `json:"parts"`
}

// Image is one entry of an images listing
type Image struct {
	FilePath    string  `json:"file_path"`
	Language    string  `json:"iso_639_1"`
	Width       int     `json:"width"`
	Height      int     `json:"height"`
	VoteAverage float64 `json:"vote_average"`
}

type Images struct {
	Posters []Image `json:"posters"`
}

type Episode struct {
	EpisodeNumber int    `json:"episode_number"`
	Name          string `json:"name"`
	AirDate       string `json:"air_date"`
	StillPath     string `json:"still_path"`
}

type SeasonDetails struct {
	SeasonNumber int       `json:"season_number"`
	Name         string    `json:"name"`
	Episodes     []Episode `json:"episodes"`
}

// DecodeSearch parses a search payload
func DecodeSearch(body []byte) ([]SearchResult, error) {
	var resp searchResponse
	if err := decode(body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func DecodeMovie(body []byte) (*MovieDetails, error) {
	var d MovieDetails
	if err := decode(body, &d); err != nil {
		return nil, err
	}
	if d.IMDbID == "" {
		d.IMDbID = d.ExternalIDs.IMDbID
	}
	return &d, nil
}

func DecodeTV(body []byte) (*TVDetails, error) {
	var d TVDetails
	if err := decode(body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func DecodeCollection(body []byte) (*CollectionDetails, error) {
	var d CollectionDetails
	if err := decode(body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func DecodeImages(body []byte) (*Images, error) {
	var d Images
	if err := decode(body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func DecodeSeason(body []byte) (*SeasonDetails, error) {
	var d SeasonDetails
	if err := decode(body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return provider.DecodeError(provider.SourceTMDB, err)
	}
	return nil
}
