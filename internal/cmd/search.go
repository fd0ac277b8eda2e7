package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/core"
	"github.com/Digital-Shane/posteria/internal/log"
	"github.com/Digital-Shane/posteria/internal/media"
	"github.com/Digital-Shane/posteria/internal/provider"
	"github.com/Digital-Shane/posteria/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

const noResultsText = "No results found matching the query"

var (
	searchType        string
	searchSeason      string
	searchShowSeasons bool
	searchAllPosters  bool
	searchNoTVDB      bool
	searchJSON        bool
	searchDebug       bool
	searchWidth       int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search posters from the terminal",
	Long: `Run one poster query against the configured providers and print the results.

A season can be given with --season or inside the query, e.g. "Breaking Bad S02".`,
	Example: `  posteria search "Alien"
  posteria search "Breaking Bad S02" --type tv --show-seasons
  posteria search "The Dark Knight" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "all", "Media type: movie, tv, collection or all")
	searchCmd.Flags().StringVarP(&searchSeason, "season", "s", "", "Season number for TV shows")
	searchCmd.Flags().BoolVar(&searchShowSeasons, "show-seasons", false, "Include season details and episodes")
	searchCmd.Flags().BoolVar(&searchAllPosters, "all-posters", false, "Include posters in every language")
	searchCmd.Flags().BoolVar(&searchNoTVDB, "no-tvdb", false, "Skip scraping TheTVDB")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the raw result records as JSON")
	searchCmd.Flags().BoolVar(&searchDebug, "debug", false, "Print the request trace to stderr")
	searchCmd.Flags().IntVar(&searchWidth, "width", 100, "Maximum output width")
}

// searchValues maps the command line onto the HTTP query parameters so both
// surfaces share one normalization path.
func searchValues(args []string) url.Values {
	v := url.Values{}
	v.Set("q", strings.Join(args, " "))
	v.Set("type", searchType)
	if searchSeason != "" {
		v.Set("season", searchSeason)
	}
	v.Set("show_seasons", strconv.FormatBool(searchShowSeasons))
	v.Set("include_all_posters", strconv.FormatBool(searchAllPosters))
	v.Set("include_tvdb", strconv.FormatBool(!searchNoTVDB))
	v.Set("debug", strconv.FormatBool(searchDebug))
	return v
}

func runSearch(cmd *cobra.Command, args []string) error {
	q, err := media.FromValues(searchValues(args))
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.TMDBAPIKey == "" {
		return errors.New("a TMDB API key is required: set TMDB_API_KEY or run 'posteria config init'")
	}

	logger := log.Service(log.New(cfg.LogLevel, "text", os.Stderr), "posteria")
	agg := core.FromConfig(cfg, cache.NewShared(0), logger)

	trace := log.NewTrace(logger, q.Debug)
	records, err := agg.Fetch(cmd.Context(), q, trace)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if searchJSON {
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	renderResults(out, theme.Default(), q, records, searchWidth)

	if trace.Enabled() {
		for _, e := range trace.Entries() {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", e.Time, e.Message)
		}
	}
	return nil
}

// entityGroup is the run of records belonging to one entity
type entityGroup struct {
	first   core.PosterRecord
	records []core.PosterRecord
}

// groupRecords splits records into consecutive per-entity runs
func groupRecords(records []core.PosterRecord) []entityGroup {
	var groups []entityGroup
	for _, r := range records {
		n := len(groups)
		if n > 0 && groups[n-1].first.Type == r.Type && groups[n-1].first.ID == r.ID {
			groups[n-1].records = append(groups[n-1].records, r)
			continue
		}
		groups = append(groups, entityGroup{first: r, records: []core.PosterRecord{r}})
	}
	return groups
}

// renderResults draws one panel per entity with a line per poster
func renderResults(w io.Writer, th theme.Theme, q media.Query, records []core.PosterRecord, width int) {
	if width < 40 {
		width = 40
	}

	header := fmt.Sprintf("%s %s  %d posters", th.Icon("poster"), q.Term, len(records))
	if q.HasSeason() {
		header += fmt.Sprintf("  season %d", q.SeasonNumber())
	}
	fmt.Fprintln(w, th.HeaderStyle().Render(header))

	if len(records) == 0 {
		fmt.Fprintln(w, th.MutedStyle().Render(noResultsText))
		return
	}
	counts := sourceCounts(records)
	var badges []string
	for _, src := range []provider.Source{provider.SourceFanart, provider.SourceTMDB, provider.SourceTVDB} {
		if counts[src] > 0 {
			badges = append(badges, th.SourceBadge(fmt.Sprintf("%s %d", src, counts[src])))
		}
	}
	fmt.Fprintln(w, strings.Join(badges, " "))

	// lipgloss widths include padding but not the border
	panel := width - 2
	inner := panel - 2*th.Spacing().PanelPadding
	gap := strings.Repeat(" ", th.Spacing().ColumnGap)

	for _, g := range groupRecords(records) {
		lines := []string{entityTitle(th, g.first, inner)}
		if s := seasonLine(th, g.first, inner); s != "" {
			lines = append(lines, s)
		}
		for _, r := range g.records {
			badge := th.SourceBadge(string(r.Source))
			room := inner - lipgloss.Width(badge) - len(gap)
			lines = append(lines, badge+gap+th.MutedStyle().Render(runewidth.Truncate(r.Poster.Original, room, "…")))
		}
		fmt.Fprintln(w, th.PanelStyle().Width(panel).Render(strings.Join(lines, "\n")))
	}
}

func entityTitle(th theme.Theme, r core.PosterRecord, width int) string {
	icon := th.Icon(string(r.Type))
	if icon == "" {
		icon = th.Icon("unknown")
	}
	title := r.Title
	if year := releaseYear(r); year != "" {
		title += " (" + year + ")"
	}
	title = runewidth.Truncate(title, width-runewidth.StringWidth(icon)-1, "…")
	return icon + " " + th.TitleStyle().Render(title)
}

func releaseYear(r core.PosterRecord) string {
	date := r.ReleaseDate
	if date == "" {
		date = r.FirstAirDate
	}
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

func seasonLine(th theme.Theme, r core.PosterRecord, width int) string {
	if r.SeasonNotFound {
		return th.Icon("error") + " " + th.MutedStyle().Render("season not found")
	}
	if r.Season == nil {
		return ""
	}
	s := r.Season
	text := fmt.Sprintf("%s, %d episodes", s.Name, s.EpisodeCount)
	if s.Poster != nil {
		text += " | poster from " + string(s.PosterSource)
	}
	line := th.Icon("season") + " " + runewidth.Truncate(text, width-runewidth.StringWidth(th.Icon("season"))-1, "…")
	for _, ep := range s.Episodes {
		epText := fmt.Sprintf("%dx%02d %s", s.SeasonNumber, ep.EpisodeNumber, ep.Name)
		line += "\n" + th.Icon("episode") + " " + th.MutedStyle().Render(runewidth.Truncate(epText, width-runewidth.StringWidth(th.Icon("episode"))-1, "…"))
	}
	return line
}

// sourceCounts tallies records per provider
func sourceCounts(records []core.PosterRecord) map[provider.Source]int {
	counts := make(map[provider.Source]int)
	for _, r := range records {
		counts[r.Source]++
	}
	return counts
}
