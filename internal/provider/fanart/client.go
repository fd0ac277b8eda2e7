package fanart

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/fetch"
	"github.com/Digital-Shane/posteria/internal/provider"
)

const DefaultBaseURL = "https://webservice.fanart.tv/v3"

// Target names the artwork to fetch. Movies are keyed by TMDB id, shows by
// TheTVDB id.
type Target struct {
	Kind provider.MediaType
	ID   int
}

// Image is one artwork entry. Season is only set on season posters and may be
// "all" for posters that cover every season.
type Image struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Lang   string `json:"lang"`
	Likes  string `json:"likes"`
	Season string `json:"season"`
}

// SeasonNumber parses Season
func (i Image) SeasonNumber() (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(i.Season))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Artwork holds the poster lists of one movie or show
type Artwork struct {
	MoviePosters  []Image `json:"movieposter"`
	TVPosters     []Image `json:"tvposter"`
	SeasonPosters []Image `json:"seasonposter"`
}

// Posters returns the main poster list for kind
func (a *Artwork) Posters(kind provider.MediaType) []Image {
	if a == nil {
		return nil
	}
	if kind == provider.MediaTypeTV {
		return a.TVPosters
	}
	return a.MoviePosters
}

// SeasonPostersFor returns the season posters tagged with season n
func (a *Artwork) SeasonPostersFor(n int) []Image {
	if a == nil {
		return nil
	}
	var out []Image
	for _, img := range a.SeasonPosters {
		if s, ok := img.SeasonNumber(); ok && s == n {
			out = append(out, img)
		}
	}
	return out
}

// Client fetches artwork listings from fanart.tv
type Client struct {
	apiKey  string
	baseURL string
}

// New creates a client. An empty key disables the provider.
func New(apiKey string) *Client {
	return &Client{apiKey: apiKey, baseURL: DefaultBaseURL}
}

// WithBaseURL returns a copy of c pointed at another API root
func (c *Client) WithBaseURL(u string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(u, "/")
	return &cp
}

// Enabled reports whether an API key is configured
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

func (c *Client) path(t Target) (string, bool) {
	if t.ID <= 0 {
		return "", false
	}
	switch t.Kind {
	case provider.MediaTypeMovie:
		return fmt.Sprintf("/movies/%d", t.ID), true
	case provider.MediaTypeTV:
		return fmt.Sprintf("/tv/%d", t.ID), true
	default:
		return "", false
	}
}

// Fetch retrieves artwork for every target in one orchestrator batch. Targets
// without artwork, with an error-shaped payload, or whose call failed are
// absent from the result.
func (c *Client) Fetch(ctx context.Context, sess *fetch.Session, targets map[string]Target) map[string]*Artwork {
	out := make(map[string]*Artwork, len(targets))
	if !c.Enabled() || len(targets) == 0 {
		return out
	}

	memo := sess.Memo()
	pending := make(map[string][]string)
	reqs := make(map[string]fetch.Request)
	bodies := make(map[string][]byte)

	for key, t := range targets {
		p, ok := c.path(t)
		if !ok {
			continue
		}
		fp := cache.Fingerprint("fanart:"+p, nil)
		if body, ok := memo.Get(fp); ok {
			bodies[key] = body
			continue
		}
		if _, queued := reqs[fp]; !queued {
			reqs[fp] = fetch.Request{
				Provider: provider.SourceFanart,
				URL:      c.baseURL + p + "?" + url.Values{"api_key": {c.apiKey}}.Encode(),
				Header:   http.Header{"Accept": {"application/json"}},
			}
		}
		pending[fp] = append(pending[fp], key)
	}

	for fp, res := range sess.Do(ctx, reqs) {
		if !res.Succeeded {
			continue
		}
		if _, err := Decode(res.Body); err != nil {
			continue
		}
		memo.Set(fp, res.Body)
		for _, key := range pending[fp] {
			bodies[key] = res.Body
		}
	}

	for key, body := range bodies {
		if art, err := Decode(body); err == nil && art != nil {
			out[key] = art
		}
	}
	return out
}

// Decode parses an artwork payload. Error-shaped payloads return an error;
// payloads with no poster lists return nil artwork.
func Decode(body []byte) (*Artwork, error) {
	var probe struct {
		Status  string `json:"status"`
		Message string `json:"error message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, provider.DecodeError(provider.SourceFanart, err)
	}
	if probe.Status == "error" {
		return nil, provider.PayloadError(provider.SourceFanart, probe.Message)
	}

	var art Artwork
	if err := json.Unmarshal(body, &art); err != nil {
		return nil, provider.DecodeError(provider.SourceFanart, err)
	}
	if len(art.MoviePosters) == 0 && len(art.TVPosters) == 0 && len(art.SeasonPosters) == 0 {
		return nil, nil
	}
	return &art, nil
}

// PosterURLs replicates a fanart.tv URL across every size variant
func PosterURLs(u string) provider.PosterSet {
	if u == "" {
		return provider.PosterSet{}
	}
	return provider.Uniform(u)
}
