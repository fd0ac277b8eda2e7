package core

import (
	"encoding/json"

	"github.com/Digital-Shane/posteria/internal/provider"
)

// PosterRecord is one candidate poster for one entity
type PosterRecord struct {
	ID             int                `json:"id"`
	Type           provider.MediaType `json:"type"`
	Title          string             `json:"title"`
	ReleaseDate    string             `json:"release_date,omitempty"`
	FirstAirDate   string             `json:"first_air_date,omitempty"`
	IMDbID         string             `json:"imdb_id,omitempty"`
	TVDBID         int                `json:"tvdb_id,omitempty"`
	Poster         provider.PosterSet `json:"poster"`
	Source         provider.Source    `json:"source"`
	Season         *SeasonInfo        `json:"season,omitempty"`
	SeasonNotFound bool               `json:"season_not_found,omitempty"`
}

// MarshalJSON writes an explicit null season when the requested season does
// not exist for the entity.
func (r PosterRecord) MarshalJSON() ([]byte, error) {
	type plain PosterRecord
	if !r.SeasonNotFound {
		return json.Marshal(plain(r))
	}
	return json.Marshal(struct {
		plain
		Season *SeasonInfo `json:"season"`
	}{plain: plain(r)})
}

// SeasonInfo describes the requested season of a show
type SeasonInfo struct {
	SeasonNumber int                 `json:"season_number"`
	Name         string              `json:"name"`
	EpisodeCount int                 `json:"episode_count"`
	AirDate      string              `json:"air_date,omitempty"`
	Poster       *provider.PosterSet `json:"poster,omitempty"`
	PosterSource provider.Source     `json:"poster_source,omitempty"`
	Episodes     []EpisodeInfo       `json:"episodes,omitempty"`
}

type EpisodeInfo struct {
	EpisodeNumber int                 `json:"episode_number"`
	Name          string              `json:"name"`
	AirDate       string              `json:"air_date,omitempty"`
	Still         *provider.PosterSet `json:"still,omitempty"`
	StillSource   provider.Source     `json:"still_source,omitempty"`
}

func baseRecord(e provider.Entity) PosterRecord {
	return PosterRecord{
		ID:           e.ID,
		Type:         e.Type,
		Title:        e.Title,
		ReleaseDate:  e.ReleaseDate,
		FirstAirDate: e.FirstAirDate,
		IMDbID:       e.IMDbID,
		TVDBID:       e.TVDBID,
	}
}
