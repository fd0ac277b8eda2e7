package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Digital-Shane/posteria/internal/core"
	"github.com/Digital-Shane/posteria/internal/log"
	"github.com/Digital-Shane/posteria/internal/media"
	"github.com/Digital-Shane/posteria/internal/provider"
)

const noResultsMessage = "No results found matching the query"

// Help text returned with help=true
var (
	parameterHelp = map[string]string{
		"q":                   "Search query (required)",
		"type":                "Media type: movie, tv, collection, or all (default: all)",
		"season":              "Season number for TV shows (optional)",
		"show_seasons":        "Include season details for TV shows (true/false)",
		"include_all_posters": "Include all available posters (true/false)",
		"include_tvdb":        "Include TheTVDB posters (true/false, default: true)",
		"debug":               "Enable debug mode (true/false)",
		"cache":               "Cache-Control max-age in seconds (optional)",
		"key":                 "API key for authentication (required if not using X-Client-Info header)",
		"help":                "Show this help information (true/false)",
	}
	sourceNames = map[provider.Source]string{
		provider.SourceTMDB:   "The Movie Database (TMDB)",
		provider.SourceFanart: "Fanart.tv",
		provider.SourceTVDB:   "TheTVDB",
	}
)

type postersResponse struct {
	Success         bool                       `json:"success"`
	Query           string                     `json:"query"`
	Type            media.QueryType            `json:"type"`
	RequestedSeason *int                       `json:"requested_season,omitempty"`
	Count           int                        `json:"count"`
	Results         []core.PosterRecord        `json:"results"`
	Message         string                     `json:"message,omitempty"`
	Parameters      map[string]string          `json:"parameters,omitempty"`
	Sources         map[provider.Source]string `json:"sources,omitempty"`
	Debug           []log.TraceEntry           `json:"debug,omitempty"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// A helper function to respond with JSON
func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(payload)
	}
}

// A helper function to respond with a JSON error
func respondError(w http.ResponseWriter, code int, message string) {
	respondJSON(w, code, errorResponse{Success: false, Error: message})
}

// Posters serves a poster query
func (s *Server) Posters(w http.ResponseWriter, r *http.Request) {
	logger := s.loggerFrom(r.Context())

	q, err := media.FromValues(r.URL.Query())
	if err != nil {
		var verr *media.ValidationError
		if errors.As(err, &verr) {
			respondError(w, http.StatusBadRequest, verr.Message)
			return
		}
		respondError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	trace := log.NewTrace(logger, q.Debug)
	records, err := s.searcher.Fetch(r.Context(), q, trace)
	if err != nil {
		logger.WithError(err).WithField("query", q.Term).Warn("poster search failed")
		if errors.Is(err, core.ErrSearchFailed) {
			respondError(w, http.StatusBadGateway, "API request failed")
			return
		}
		respondError(w, http.StatusInternalServerError, "Internal error")
		return
	}

	resp := postersResponse{
		Success:         true,
		Query:           q.Term,
		Type:            q.Type,
		RequestedSeason: q.Season,
		Count:           len(records),
		Results:         records,
	}
	if resp.Results == nil {
		resp.Results = []core.PosterRecord{}
	}
	if len(records) == 0 {
		resp.Message = noResultsMessage
	}
	if q.Help {
		resp.Parameters = parameterHelp
		resp.Sources = sourceNames
	}
	if trace.Enabled() {
		resp.Debug = trace.Entries()
	}

	if q.CacheSeconds > 0 {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(q.CacheSeconds))
	}
	respondJSON(w, http.StatusOK, resp)
}

type timeResponse struct {
	ServerTime int64  `json:"server_time"`
	ISOTime    string `json:"iso_time"`
}

// Time reports the server clock so clients can sign X-Client-Info
func (s *Server) Time(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	respondJSON(w, http.StatusOK, timeResponse{
		ServerTime: now.UnixMilli(),
		ISOTime:    now.Format(time.RFC3339),
	})
}
