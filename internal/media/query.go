package media

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// QueryType selects which entity kinds a search covers
type QueryType string

const (
	QueryMovie      QueryType = "movie"
	QueryTV         QueryType = "tv"
	QueryCollection QueryType = "collection"
	QueryAll        QueryType = "all"
)

// ValidationError is a client input problem. Message is returned to the
// caller verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var (
	ErrMissingTerm   = &ValidationError{Message: "Missing required parameter: q (or movie for backwards compatibility)"}
	ErrInvalidType   = &ValidationError{Message: `Invalid type parameter. Use "movie", "tv", "collection", or "all".`}
	ErrInvalidSeason = &ValidationError{Message: "Invalid season parameter. Use a non-negative number."}
)

var (
	// seasonMarkerRe matches season tokens embedded in a search term: "Season 2", "S2", "s02".
	// The token must start the term or follow a separator so "Ocean's 11" is left alone.
	seasonMarkerRe = regexp.MustCompile(`(?i)(?:^|[\s._-])(?:season[\s._-]*|s)(\d{1,3})\b`)

	spacesRe = regexp.MustCompile(`\s+`)
)

// Query is one normalized poster search
type Query struct {
	Term              string
	Type              QueryType
	Season            *int
	IncludeAllPosters bool
	IncludeTVDB       bool
	ShowSeasons       bool
	Debug             bool
	CacheSeconds      int
	Help              bool
}

// HasSeason reports whether a specific season was requested
func (q Query) HasSeason() bool {
	return q.Season != nil
}

// SeasonNumber returns the requested season, or -1 when none was requested
func (q Query) SeasonNumber() int {
	if q.Season == nil {
		return -1
	}
	return *q.Season
}

// ExtractSeason finds a season marker in term. It returns the term with the
// marker removed and the season number. ok is false when no marker exists.
func ExtractSeason(term string) (cleaned string, season int, ok bool) {
	m := seasonMarkerRe.FindStringSubmatchIndex(term)
	if m == nil {
		return term, 0, false
	}
	n, err := strconv.Atoi(term[m[2]:m[3]])
	if err != nil {
		return term, 0, false
	}
	cleaned = term[:m[0]] + " " + term[m[1]:]
	cleaned = strings.TrimSpace(spacesRe.ReplaceAllString(cleaned, " "))
	cleaned = strings.Trim(cleaned, " -:,")
	return cleaned, n, true
}

// ParseType validates a type value. Empty means all.
func ParseType(s string) (QueryType, error) {
	switch t := QueryType(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return QueryAll, nil
	case QueryMovie, QueryTV, QueryCollection, QueryAll:
		return t, nil
	default:
		return "", ErrInvalidType
	}
}

// Normalize applies season extraction to q. A marker in the term is always
// stripped; the extracted number only fills Season when none was given
// explicitly, and an unscoped search becomes a TV search.
func Normalize(q Query) (Query, error) {
	q.Term = strings.TrimSpace(q.Term)
	if q.Type == "" {
		q.Type = QueryAll
	}
	if _, err := ParseType(string(q.Type)); err != nil {
		return q, err
	}

	if cleaned, season, ok := ExtractSeason(q.Term); ok {
		if q.Season == nil {
			q.Season = &season
		}
		if cleaned != "" {
			q.Term = cleaned
		}
		if q.Type == QueryAll {
			q.Type = QueryTV
		}
	}

	if q.Term == "" {
		return q, ErrMissingTerm
	}
	if q.CacheSeconds < 0 {
		q.CacheSeconds = 0
	}
	return q, nil
}

// FromValues builds a Query from request parameters. An unset include_tvdb
// defaults to true; other flags accept "true" or "1".
func FromValues(v url.Values) (Query, error) {
	typ, err := ParseType(v.Get("type"))
	if err != nil {
		return Query{}, err
	}

	q := Query{
		Term:              strings.TrimSpace(v.Get("q")),
		Type:              typ,
		IncludeAllPosters: flag(v, "include_all_posters", false),
		IncludeTVDB:       flag(v, "include_tvdb", true),
		ShowSeasons:       flag(v, "show_seasons", false),
		Debug:             flag(v, "debug", false),
		Help:              flag(v, "help", false),
	}

	if s := strings.TrimSpace(v.Get("season")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return Query{}, ErrInvalidSeason
		}
		q.Season = &n
	}
	if c := strings.TrimSpace(v.Get("cache")); c != "" {
		if n, err := strconv.Atoi(c); err == nil {
			q.CacheSeconds = n
		}
	}

	// Older clients send the title as "movie"
	if q.Term == "" {
		if legacy := strings.TrimSpace(v.Get("movie")); legacy != "" {
			q.Term = legacy
			q.Type = QueryMovie
		}
	}

	return Normalize(q)
}

func flag(v url.Values, name string, def bool) bool {
	if !v.Has(name) {
		return def
	}
	s := strings.ToLower(strings.TrimSpace(v.Get(name)))
	return s == "true" || s == "1"
}
