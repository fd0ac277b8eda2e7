package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/Digital-Shane/posteria/internal/fetch"
	"github.com/Digital-Shane/posteria/internal/log"
	"github.com/Digital-Shane/posteria/internal/media"
	"github.com/Digital-Shane/posteria/internal/provider"
	"github.com/Digital-Shane/posteria/internal/provider/tmdb"
)

// ErrSearchFailed is returned when no search call produced a response
var ErrSearchFailed = errors.New("upstream search failed")

// searchKinds lists the search indexes queried for t, in classification order
func searchKinds(t media.QueryType) []string {
	switch t {
	case media.QueryMovie:
		return []string{tmdb.SearchMovie}
	case media.QueryTV:
		return []string{tmdb.SearchTV}
	case media.QueryCollection:
		return []string{tmdb.SearchCollection}
	default:
		return []string{tmdb.SearchMulti, tmdb.SearchCollection}
	}
}

// Search runs the structured-metadata searches for q in one batch and
// classifies the hits into entities.
func Search(ctx context.Context, client *tmdb.Client, sess *fetch.Session, q media.Query, trace *log.Trace) ([]provider.Entity, error) {
	kinds := searchKinds(q.Type)
	calls := make(map[string]tmdb.Call, len(kinds))
	for _, kind := range kinds {
		calls[kind] = client.SearchCall(kind, q.Term)
	}

	payloads := client.Batch(ctx, sess, calls)

	results := make(map[string][]tmdb.SearchResult, len(kinds))
	var firstErr error
	for _, kind := range kinds {
		p := payloads[kind]
		if !p.OK() {
			if firstErr == nil {
				firstErr = p.Err
			}
			trace.Add("search failed", map[string]any{"index": kind, "error": errString(p.Err)})
			continue
		}
		hits, err := tmdb.DecodeSearch(p.Body)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			trace.Add("search decode failed", map[string]any{"index": kind, "error": err.Error()})
			continue
		}
		results[kind] = hits
		trace.Add("search complete", map[string]any{"index": kind, "hits": len(hits)})
	}

	if len(results) == 0 {
		if firstErr == nil {
			return nil, ErrSearchFailed
		}
		return nil, fmt.Errorf("%w: %w", ErrSearchFailed, firstErr)
	}
	return Classify(q.Type, results), nil
}

// Classify turns raw search hits into entities grouped movies, then shows,
// then collections. Within a group the search order is kept and repeated ids
// are dropped. People and unknown media types are discarded, as are
// collections without a poster.
func Classify(t media.QueryType, results map[string][]tmdb.SearchResult) []provider.Entity {
	groups := map[provider.MediaType][]provider.Entity{}
	seen := map[string]struct{}{}

	add := func(e provider.Entity) {
		if _, dup := seen[e.Key()]; dup {
			return
		}
		seen[e.Key()] = struct{}{}
		groups[e.Type] = append(groups[e.Type], e)
	}

	for _, kind := range searchKinds(t) {
		for _, r := range results[kind] {
			mt, ok := classifyHit(kind, r)
			if !ok {
				continue
			}
			if mt == provider.MediaTypeCollection && r.PosterPath == "" {
				continue
			}
			add(entityFromHit(mt, r))
		}
	}

	var out []provider.Entity
	for _, mt := range []provider.MediaType{provider.MediaTypeMovie, provider.MediaTypeTV, provider.MediaTypeCollection} {
		out = append(out, groups[mt]...)
	}
	return out
}

func classifyHit(kind string, r tmdb.SearchResult) (provider.MediaType, bool) {
	switch kind {
	case tmdb.SearchMovie:
		return provider.MediaTypeMovie, true
	case tmdb.SearchTV:
		return provider.MediaTypeTV, true
	case tmdb.SearchCollection:
		return provider.MediaTypeCollection, true
	}
	switch r.MediaType {
	case "movie":
		return provider.MediaTypeMovie, true
	case "tv":
		return provider.MediaTypeTV, true
	case "collection":
		return provider.MediaTypeCollection, true
	default:
		return "", false
	}
}

func entityFromHit(mt provider.MediaType, r tmdb.SearchResult) provider.Entity {
	e := provider.Entity{
		ID:         r.ID,
		Type:       mt,
		Title:      r.DisplayTitle(),
		PosterPath: r.PosterPath,
	}
	switch mt {
	case provider.MediaTypeMovie:
		e.ReleaseDate = r.ReleaseDate
	case provider.MediaTypeTV:
		e.FirstAirDate = r.FirstAirDate
	}
	return e
}

func errString(err error) string {
	if err == nil {
		return "no response"
	}
	return err.Error()
}
