package tvdb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mhmtszr/concurrent-swiss-map"
)

const artworkPrefix = "https://artworks.thetvdb.com/banners/"

var (
	// excludedTokens drop images that are never posters: placeholders, backdrops and wide season banners
	excludedTokens = []string{"unknown", "backgrounds", "seasonswide"}

	// genericPosterTokens mark an image as some kind of poster
	genericPosterTokens = []string{"posters/", "poster/", "poster_"}

	// seasonMarkerRe flags season or episode specific images on a series page
	seasonMarkerRe = regexp.MustCompile(`(?i)seasons?[^/]*\d+|s\d+[-_]|s0\d+`)
)

// seasonRule is one way an image URL can name a season. Patterns use %[1]s
// for the season number; applies limits a rule to particular seasons.
type seasonRule struct {
	name    string
	pattern string
	applies func(season int) bool
}

func always(int) bool         { return true }
func specialsOnly(n int) bool { return n == 0 }

// seasonRules are tried in order; the first match makes an image relevant.
// Numbers are bounded by non-digits so season 1 does not match s12.
var seasonRules = []seasonRule{
	{name: "season word", pattern: `season[-_.\s]0*%[1]s(?:\D|$)`, applies: always},
	{name: "short code", pattern: `(?:^|[^a-z])s[-_.\s]?0*%[1]s(?:\D|$)`, applies: always},
	{name: "padded code with separator", pattern: `(?:^|[^a-z])s0*%[1]s[-_]`, applies: always},
	{name: "padded code with extension", pattern: `(?:^|[^a-z])s0*%[1]s\.`, applies: always},
	{name: "ordinal", pattern: `(?:^|\D)%[1]s(?:st|nd|rd|th)`, applies: always},
	{name: "season anywhere in segment", pattern: `season(?:[^/]*[^/\d])?0*%[1]s(?:\D|$)`, applies: always},
	{name: "specials word", pattern: `specials`, applies: specialsOnly},
	{name: "special with separator", pattern: `special[-_.\s]`, applies: specialsOnly},
	{name: "double zero code", pattern: `(?:^|[^a-z])s00`, applies: specialsOnly},
	{name: "zero code", pattern: `(?:^|[^a-z])s0[-_.\s]`, applies: specialsOnly},
}

// compiledRules caches the season rule set per season number
var compiledRules = csmap.Create[int, []*regexp.Regexp]()

func rulesFor(season int) []*regexp.Regexp {
	if res, ok := compiledRules.Load(season); ok {
		return res
	}
	n := strconv.Itoa(season)
	var res []*regexp.Regexp
	for _, r := range seasonRules {
		if !r.applies(season) {
			continue
		}
		res = append(res, regexp.MustCompile("(?i)"+fmt.Sprintf(r.pattern, n)))
	}
	compiledRules.Store(season, res)
	return res
}

// matchesSeason reports whether u names the given season
func matchesSeason(u string, season int) bool {
	for _, re := range rulesFor(season) {
		if re.MatchString(u) {
			return true
		}
	}
	return false
}

// HasSeasonMarker reports whether u looks specific to season n. It is used
// when deciding whether a scraped image can stand in as a season poster.
func HasSeasonMarker(u string, season int) bool {
	return matchesSeason(u, season)
}

func isGenericPoster(u string) bool {
	for _, tok := range genericPosterTokens {
		if strings.Contains(u, tok) {
			return true
		}
	}
	return false
}

func isExcluded(u string) bool {
	lower := strings.ToLower(u)
	for _, tok := range excludedTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// referencesSeasonPage reports whether the page links to season n, which
// makes its generic posters relevant to that season.
func referencesSeasonPage(html string, season int) bool {
	n := strconv.Itoa(season)
	for _, p := range []string{"/seasons/official/" + n, "/seasons/dvd/" + n} {
		idx := 0
		for {
			i := strings.Index(html[idx:], p)
			if i < 0 {
				break
			}
			end := idx + i + len(p)
			if end == len(html) || html[end] < '0' || html[end] > '9' {
				return true
			}
			idx = end
		}
	}
	return false
}
