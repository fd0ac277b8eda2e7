package core

import (
	"strconv"

	"github.com/Digital-Shane/posteria/internal/provider"
	"github.com/Digital-Shane/posteria/internal/provider/fanart"
	"github.com/Digital-Shane/posteria/internal/provider/tmdb"
	"github.com/Digital-Shane/posteria/internal/provider/tvdb"
)

// Bundle gathers everything the providers returned for one entity
type Bundle struct {
	Entity provider.Entity

	// Show is set for TV entities whose detail call succeeded
	Show *tmdb.TVDetails

	Images []tmdb.Image
	Fanart *fanart.Artwork
	TVDB   []string

	// Episodes is the requested season's detail, when episode detail was asked for
	Episodes *tmdb.SeasonDetails
}

// Assemble builds the ordered poster records for bundles. Bundles are
// expected in output order. season is the requested season, if any.
func Assemble(bundles []Bundle, season *int) []PosterRecord {
	a := &assembler{season: season}
	var out []PosterRecord
	for _, b := range bundles {
		out = append(out, a.entity(b)...)
	}
	return out
}

type assembler struct {
	season *int
	// used holds the season poster filenames of the current entity. Two
	// entities may share a season poster file.
	used map[string]struct{}
}

func (a *assembler) entity(b Bundle) []PosterRecord {
	e := b.Entity
	a.used = make(map[string]struct{})
	base := baseRecord(e)

	var out []PosterRecord
	emit := func(p provider.PosterSet, src provider.Source) {
		if !p.Complete() {
			return
		}
		r := base
		r.Poster = p
		r.Source = src
		out = append(out, r)
	}

	for _, img := range b.Fanart.Posters(e.Type) {
		emit(fanart.PosterURLs(img.URL), provider.SourceFanart)
	}
	emit(tmdb.PosterURLs(e.PosterPath), provider.SourceTMDB)
	for _, img := range b.Images {
		if img.FilePath == "" || img.FilePath == e.PosterPath {
			continue
		}
		emit(tmdb.PosterURLs(img.FilePath), provider.SourceTMDB)
	}
	for _, u := range b.TVDB {
		emit(tvdb.PosterURLs(u), provider.SourceTVDB)
	}

	if e.Type == provider.MediaTypeTV && a.season != nil {
		a.correlate(out, b)
	}
	return out
}

// correlate attaches the requested season to every record of a show. The
// season poster goes on the first record only.
func (a *assembler) correlate(records []PosterRecord, b Bundle) {
	n := *a.season
	season, found := b.Show.FindSeason(n)
	if !found {
		for i := range records {
			records[i].SeasonNotFound = true
		}
		return
	}

	for i := range records {
		records[i].Season = &SeasonInfo{
			SeasonNumber: season.SeasonNumber,
			Name:         seasonName(season),
			EpisodeCount: season.EpisodeCount,
			AirDate:      season.AirDate,
		}
	}
	if len(records) == 0 {
		return
	}

	if p, src, ok := a.seasonPoster(season, b); ok {
		records[0].Season.Poster = &p
		records[0].Season.PosterSource = src
	}
	if b.Episodes != nil {
		records[0].Season.Episodes = episodes(b.Episodes)
	}
}

// seasonPoster picks the season poster by provider precedence, skipping any
// whose filename the entity already uses.
func (a *assembler) seasonPoster(season tmdb.Season, b Bundle) (provider.PosterSet, provider.Source, bool) {
	type candidate struct {
		poster provider.PosterSet
		source provider.Source
	}
	var candidates []candidate
	if season.PosterPath != "" {
		candidates = append(candidates, candidate{tmdb.PosterURLs(season.PosterPath), provider.SourceTMDB})
	}
	for _, img := range b.Fanart.SeasonPostersFor(season.SeasonNumber) {
		candidates = append(candidates, candidate{fanart.PosterURLs(img.URL), provider.SourceFanart})
	}
	for _, u := range b.TVDB {
		if tvdb.HasSeasonMarker(u, season.SeasonNumber) {
			candidates = append(candidates, candidate{tvdb.PosterURLs(u), provider.SourceTVDB})
		}
	}

	for _, c := range candidates {
		name := c.poster.Filename()
		if !c.poster.Complete() || name == "" {
			continue
		}
		if _, dup := a.used[name]; dup {
			continue
		}
		a.used[name] = struct{}{}
		return c.poster, c.source, true
	}
	return provider.PosterSet{}, "", false
}

func seasonName(s tmdb.Season) string {
	if s.Name != "" {
		return s.Name
	}
	if s.SeasonNumber == 0 {
		return "Specials"
	}
	return "Season " + strconv.Itoa(s.SeasonNumber)
}

func episodes(d *tmdb.SeasonDetails) []EpisodeInfo {
	out := make([]EpisodeInfo, 0, len(d.Episodes))
	for _, ep := range d.Episodes {
		info := EpisodeInfo{
			EpisodeNumber: ep.EpisodeNumber,
			Name:          ep.Name,
			AirDate:       ep.AirDate,
		}
		if ep.StillPath != "" {
			still := tmdb.PosterURLs(ep.StillPath)
			info.Still = &still
			info.StillSource = provider.SourceTMDB
		}
		out = append(out, info)
	}
	return out
}
