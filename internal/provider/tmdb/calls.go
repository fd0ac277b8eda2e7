package tmdb

import (
	"fmt"
	"net/url"
)

// Search kinds accepted by SearchCall
const (
	SearchMovie      = "movie"
	SearchTV         = "tv"
	SearchMulti      = "multi"
	SearchCollection = "collection"
)

// SearchCall searches one TMDB index
func (c *Client) SearchCall(kind, query string) Call {
	params := url.Values{
		"query":    {query},
		"language": {c.language},
		"page":     {"1"},
	}
	if kind != SearchCollection {
		params.Set("include_adult", "false")
	}
	return Call{Endpoint: "/search/" + kind, Params: params}
}

// MovieCall fetches movie details with external ids
func (c *Client) MovieCall(id int) Call {
	return Call{
		Endpoint: fmt.Sprintf("/movie/%d", id),
		Params:   url.Values{"language": {c.language}, "append_to_response": {"external_ids"}},
	}
}

// TVCall fetches show details, including the season list, with external ids
func (c *Client) TVCall(id int) Call {
	return Call{
		Endpoint: fmt.Sprintf("/tv/%d", id),
		Params:   url.Values{"language": {c.language}, "append_to_response": {"external_ids"}},
	}
}

// CollectionCall fetches collection details and parts
func (c *Client) CollectionCall(id int) Call {
	return Call{
		Endpoint: fmt.Sprintf("/collection/%d", id),
		Params:   url.Values{"language": {c.language}},
	}
}

// SeasonCall fetches one season with its episodes
func (c *Client) SeasonCall(tvID, season int) Call {
	return Call{
		Endpoint: fmt.Sprintf("/tv/%d/season/%d", tvID, season),
		Params:   url.Values{"language": {c.language}},
	}
}

// ImagesCall lists posters for a movie, tv show or collection. By default only
// English and language-neutral posters are requested; allLanguages lifts that.
func (c *Client) ImagesCall(kind string, id int, allLanguages bool) Call {
	params := url.Values{}
	if !allLanguages {
		params.Set("include_image_language", "en,null")
	}
	return Call{Endpoint: fmt.Sprintf("/%s/%d/images", kind, id), Params: params}
}
