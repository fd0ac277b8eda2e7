package tvdb

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/fetch"
	"github.com/Digital-Shane/posteria/internal/provider"
)

const DefaultBaseURL = "https://www.thetvdb.com"

var slugStripRe = regexp.MustCompile(`[^a-z0-9-]`)

// Slug derives TheTVDB's URL slug from a title
func Slug(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = strings.ReplaceAll(s, " ", "-")
	return slugStripRe.ReplaceAllString(s, "")
}

// Page is one scraped page of an entity
type Page struct {
	Name string
	URL  string
}

// Target is one entity to scrape
type Target struct {
	Title   string
	Content Content
}

// Client scrapes poster URLs from TheTVDB's public website
type Client struct {
	baseURL string
}

func New() *Client {
	return &Client{baseURL: DefaultBaseURL}
}

// WithBaseURL returns a copy of c pointed at another site root
func (c *Client) WithBaseURL(u string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(u, "/")
	return &cp
}

// Pages lists the pages to scrape for a target, in merge order. Movies have a
// single page. Series add the official and DVD pages of a positive season and
// always the specials page.
func (c *Client) Pages(t Target, season *int) []Page {
	slug := Slug(t.Title)
	if slug == "" {
		return nil
	}
	if t.Content == ContentMovie {
		return []Page{{Name: "main", URL: c.baseURL + "/movies/" + slug}}
	}

	base := c.baseURL + "/series/" + slug
	pages := []Page{{Name: "main", URL: base}}
	if season != nil && *season > 0 {
		n := strconv.Itoa(*season)
		pages = append(pages,
			Page{Name: "season_official", URL: base + "/seasons/official/" + n},
			Page{Name: "season_dvd", URL: base + "/seasons/dvd/" + n},
		)
	}
	return append(pages, Page{Name: "specials", URL: base + "/seasons/official/0"})
}

// Posters scrapes every page of every target in one orchestrator batch and
// returns the merged, de-duplicated poster URLs per target key. Failed pages
// contribute nothing.
func (c *Client) Posters(ctx context.Context, sess *fetch.Session, targets map[string]Target, season *int) map[string][]string {
	out := make(map[string][]string, len(targets))
	memo := sess.Memo()

	plan := make(map[string][]Page, len(targets))
	reqs := make(map[string]fetch.Request)
	bodies := make(map[string]string)

	for key, t := range targets {
		pages := c.Pages(t, season)
		plan[key] = pages
		for _, p := range pages {
			fp := cache.Fingerprint("tvdb:"+p.URL, nil)
			if body, ok := memo.Get(fp); ok {
				bodies[p.URL] = string(body)
				continue
			}
			reqs[fp] = fetch.Request{
				Provider: provider.SourceTVDB,
				URL:      p.URL,
				Header:   http.Header{"Accept": {"text/html"}},
			}
		}
	}

	for fp, res := range sess.Do(ctx, reqs) {
		if !res.Succeeded {
			continue
		}
		memo.Set(fp, res.Body)
		bodies[reqs[fp].URL] = string(res.Body)
	}

	for key, pages := range plan {
		t := targets[key]
		seen := make(map[string]struct{})
		var merged []string
		for _, p := range pages {
			html, ok := bodies[p.URL]
			if !ok {
				continue
			}
			for _, u := range Extract(html, t.Content, season) {
				if _, dup := seen[u]; dup {
					continue
				}
				seen[u] = struct{}{}
				merged = append(merged, u)
			}
		}
		if len(merged) > 0 {
			out[key] = merged
		}
	}
	return out
}

// PosterURLs replicates a TheTVDB URL across every size variant
func PosterURLs(u string) provider.PosterSet {
	if u == "" {
		return provider.PosterSet{}
	}
	return provider.Uniform(u)
}
