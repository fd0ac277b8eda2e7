package tvdb

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Content is the kind of TheTVDB page being scraped
type Content string

const (
	ContentMovie  Content = "movie"
	ContentSeries Content = "series"
)

// Extract returns the poster URLs found in a TheTVDB page, in document order
// without duplicates. season is only consulted for series pages; nil means no
// specific season was requested. Unparseable input yields no posters.
func Extract(html string, content Content, season *int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var posters []string
	doc.Find("[src]").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		src = strings.TrimSpace(src)
		if !isArtworkURL(src) || isExcluded(src) {
			return
		}
		if !relevant(src, html, content, season) {
			return
		}
		if _, dup := seen[src]; dup {
			return
		}
		seen[src] = struct{}{}
		posters = append(posters, src)
	})
	return posters
}

// isArtworkURL accepts direct banner URLs only. Proxied URLs that embed a
// second banners/ path are rejected.
func isArtworkURL(u string) bool {
	lower := strings.ToLower(u)
	if !strings.HasPrefix(lower, artworkPrefix) {
		return false
	}
	return !strings.Contains(lower[len(artworkPrefix):], "banners/")
}

func relevant(u, html string, content Content, season *int) bool {
	switch content {
	case ContentMovie:
		return isGenericPoster(u)
	case ContentSeries:
		if season == nil {
			return isGenericPoster(u) && !seasonMarkerRe.MatchString(u)
		}
		if matchesSeason(u, *season) {
			return true
		}
		return referencesSeasonPage(html, *season) && isGenericPoster(u)
	default:
		return false
	}
}
