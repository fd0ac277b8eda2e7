package core

import (
	"context"
	"strings"
	"time"

	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/config"
	"github.com/Digital-Shane/posteria/internal/fetch"
	"github.com/Digital-Shane/posteria/internal/log"
	"github.com/Digital-Shane/posteria/internal/media"
	"github.com/Digital-Shane/posteria/internal/provider"
	"github.com/Digital-Shane/posteria/internal/provider/fanart"
	"github.com/Digital-Shane/posteria/internal/provider/tmdb"
	"github.com/Digital-Shane/posteria/internal/provider/tvdb"
	"github.com/sirupsen/logrus"
)

// Options tunes an Aggregator
type Options struct {
	MaxConnections int
	Timeout        time.Duration
	UserAgent      string

	// Shared is the process-wide payload cache, nil when disabled
	Shared *cache.Shared

	// CollectionArtwork is config.CollectionNameFirst or config.CollectionPartsFirst
	CollectionArtwork string

	Logger *logrus.Entry
}

// Aggregator runs the staged provider pipeline for a query. It is safe for
// concurrent use; all per request state lives in the session it opens.
type Aggregator struct {
	tmdb   *tmdb.Client
	fanart *fanart.Client
	tvdb   *tvdb.Client
	opts   Options
}

// NewAggregator wires the three provider clients together
func NewAggregator(t *tmdb.Client, f *fanart.Client, s *tvdb.Client, opts Options) *Aggregator {
	if opts.CollectionArtwork == "" {
		opts.CollectionArtwork = config.CollectionNameFirst
	}
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	return &Aggregator{tmdb: t, fanart: f, tvdb: s, opts: opts}
}

// FromConfig builds an Aggregator with clients configured from cfg
func FromConfig(cfg *config.Config, shared *cache.Shared, logger *logrus.Entry) *Aggregator {
	t := tmdb.New(cfg.TMDBAPIKey,
		tmdb.WithLanguage(cfg.TMDBLanguage),
		tmdb.WithRateLimit(cfg.TMDBRequestsPerSecond),
	)
	return NewAggregator(t, fanart.New(cfg.FanartAPIKey), tvdb.New(), Options{
		MaxConnections:    cfg.MaxConnections,
		Timeout:           cfg.RequestTimeout(),
		UserAgent:         cfg.UserAgent,
		Shared:            shared,
		CollectionArtwork: cfg.CollectionArtwork,
		Logger:            logger,
	})
}

// entityState is the per entity working set between stages
type entityState struct {
	bundle Bundle

	// collection parts and name search hits, used to pick fanart for collections
	parts  []tmdb.Part
	byName []tmdb.SearchResult
}

// Fetch searches for q and returns the assembled poster records. Only a
// failure of every search call is an error; any later provider failure just
// contributes no posters.
func (a *Aggregator) Fetch(ctx context.Context, q media.Query, trace *log.Trace) ([]PosterRecord, error) {
	sess := fetch.NewSession(fetch.Options{
		MaxConnections: a.opts.MaxConnections,
		Timeout:        a.opts.Timeout,
		UserAgent:      a.opts.UserAgent,
		Shared:         a.opts.Shared,
		Logger:         a.opts.Logger,
	})
	defer sess.Close()

	trace.Add("query", map[string]any{
		"term":   q.Term,
		"type":   q.Type,
		"season": q.Season,
	})

	entities, err := Search(ctx, a.tmdb, sess, q, trace)
	if err != nil {
		return nil, err
	}
	trace.Add("entities found", map[string]any{"count": len(entities)})
	if len(entities) == 0 {
		return nil, nil
	}

	states := a.details(ctx, sess, q, entities, trace)
	a.artwork(ctx, sess, states, trace)
	if q.IncludeTVDB {
		a.scrape(ctx, sess, q, states, trace)
	}

	bundles := make([]Bundle, 0, len(states))
	for _, st := range states {
		bundles = append(bundles, st.bundle)
	}
	records := Assemble(bundles, q.Season)
	trace.Add("assembled", map[string]any{"records": len(records)})
	return records, nil
}

// details runs stage two: entity details, image lists, requested season detail
// and collection name searches. Entities whose detail call fails are dropped.
func (a *Aggregator) details(ctx context.Context, sess *fetch.Session, q media.Query, entities []provider.Entity, trace *log.Trace) []*entityState {
	calls := make(map[string]tmdb.Call)
	for _, e := range entities {
		k := e.Key()
		kind := string(e.Type)
		calls[k+"|images"] = a.tmdb.ImagesCall(kind, e.ID, q.IncludeAllPosters)
		switch e.Type {
		case provider.MediaTypeMovie:
			calls[k+"|details"] = a.tmdb.MovieCall(e.ID)
		case provider.MediaTypeTV:
			calls[k+"|details"] = a.tmdb.TVCall(e.ID)
			if q.ShowSeasons && q.HasSeason() {
				calls[k+"|season"] = a.tmdb.SeasonCall(e.ID, q.SeasonNumber())
			}
		case provider.MediaTypeCollection:
			calls[k+"|details"] = a.tmdb.CollectionCall(e.ID)
			calls[k+"|byname"] = a.tmdb.SearchCall(tmdb.SearchMovie, collectionSearchName(e.Title))
		}
	}

	payloads := a.tmdb.Batch(ctx, sess, calls)

	states := make([]*entityState, 0, len(entities))
	for _, e := range entities {
		k := e.Key()
		st := &entityState{bundle: Bundle{Entity: e}}

		p := payloads[k+"|details"]
		if !p.OK() {
			trace.Add("details failed, entity skipped", map[string]any{"entity": k, "error": errString(p.Err)})
			continue
		}
		if err := st.applyDetails(p.Body); err != nil {
			trace.Add("details decode failed, entity skipped", map[string]any{"entity": k, "error": err.Error()})
			continue
		}

		if p := payloads[k+"|images"]; p.OK() {
			if imgs, err := tmdb.DecodeImages(p.Body); err == nil {
				st.bundle.Images = imgs.Posters
			}
		} else {
			trace.Add("images failed", map[string]any{"entity": k, "error": errString(p.Err)})
		}

		if p, ok := payloads[k+"|season"]; ok && p.OK() {
			if sd, err := tmdb.DecodeSeason(p.Body); err == nil {
				st.bundle.Episodes = sd
			}
		}
		if p, ok := payloads[k+"|byname"]; ok && p.OK() {
			if hits, err := tmdb.DecodeSearch(p.Body); err == nil {
				st.byName = hits
			}
		}
		states = append(states, st)
	}
	trace.Add("details complete", map[string]any{"entities": len(states), "calls": len(calls)})
	return states
}

func (st *entityState) applyDetails(body []byte) error {
	e := &st.bundle.Entity
	switch e.Type {
	case provider.MediaTypeMovie:
		d, err := tmdb.DecodeMovie(body)
		if err != nil {
			return err
		}
		e.IMDbID = d.IMDbID
	case provider.MediaTypeTV:
		d, err := tmdb.DecodeTV(body)
		if err != nil {
			return err
		}
		e.TVDBID = d.ExternalIDs.TVDBID
		st.bundle.Show = d
	case provider.MediaTypeCollection:
		d, err := tmdb.DecodeCollection(body)
		if err != nil {
			return err
		}
		st.parts = d.Parts
	}
	return nil
}

// artwork runs stage three against fanart.tv
func (a *Aggregator) artwork(ctx context.Context, sess *fetch.Session, states []*entityState, trace *log.Trace) {
	if !a.fanart.Enabled() {
		trace.Add("fanart.tv disabled, no API key", nil)
		return
	}

	targets := make(map[string]fanart.Target)
	for _, st := range states {
		e := st.bundle.Entity
		switch e.Type {
		case provider.MediaTypeMovie:
			targets[e.Key()] = fanart.Target{Kind: provider.MediaTypeMovie, ID: e.ID}
		case provider.MediaTypeTV:
			targets[e.Key()] = fanart.Target{Kind: provider.MediaTypeTV, ID: e.TVDBID}
		case provider.MediaTypeCollection:
			if id := collectionMovie(a.opts.CollectionArtwork, st.byName, st.parts); id > 0 {
				targets[e.Key()] = fanart.Target{Kind: provider.MediaTypeMovie, ID: id}
			}
		}
	}

	art := a.fanart.Fetch(ctx, sess, targets)
	for _, st := range states {
		st.bundle.Fanart = art[st.bundle.Entity.Key()]
	}
	trace.Add("fanart complete", map[string]any{"targets": len(targets), "with_artwork": len(art)})
}

// scrape runs stage four against TheTVDB's website
func (a *Aggregator) scrape(ctx context.Context, sess *fetch.Session, q media.Query, states []*entityState, trace *log.Trace) {
	targets := make(map[string]tvdb.Target, len(states))
	for _, st := range states {
		e := st.bundle.Entity
		content := tvdb.ContentMovie
		if e.Type == provider.MediaTypeTV {
			content = tvdb.ContentSeries
		}
		targets[e.Key()] = tvdb.Target{Title: e.Title, Content: content}
	}

	posters := a.tvdb.Posters(ctx, sess, targets, q.Season)
	total := 0
	for _, st := range states {
		st.bundle.TVDB = posters[st.bundle.Entity.Key()]
		total += len(st.bundle.TVDB)
	}
	trace.Add("thetvdb complete", map[string]any{"targets": len(targets), "posters": total})
}

// collectionSearchName is the movie search used to find fanart for a collection
func collectionSearchName(name string) string {
	if strings.Contains(strings.ToLower(name), "collection") {
		return name
	}
	return name + " Collection"
}

// collectionMovie picks the movie whose fanart stands in for a collection.
// It returns 0 when neither source has a candidate.
func collectionMovie(precedence string, byName []tmdb.SearchResult, parts []tmdb.Part) int {
	fromName := 0
	if len(byName) > 0 {
		fromName = byName[0].ID
	}
	fromParts := 0
	if len(parts) > 0 {
		fromParts = parts[0].ID
	}

	if precedence == config.CollectionPartsFirst {
		if fromParts > 0 {
			return fromParts
		}
		return fromName
	}
	if fromName > 0 {
		return fromName
	}
	return fromParts
}
