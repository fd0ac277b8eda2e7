package api

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const clientInfoHeader = "X-Client-Info"

type ctxKey int

const loggerKey ctxKey = iota

// loggerFrom returns the request scoped logger set by requestID
func (s *Server) loggerFrom(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return entry
	}
	return s.logger
}

// requestID tags the request with an id, echoes it in X-Request-ID and logs
// the completed request.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		entry := s.logger.WithField("request_id", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), loggerKey, entry)))

		entry.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request served")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// cors allows browser clients on any origin to call the API with the signed
// client header. Preflight requests end here.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", http.MethodGet)
		h.Set("Access-Control-Allow-Headers", clientInfoHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// authenticate accepts a fresh signed client header or the configured access key
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.authorized(r) {
			next.ServeHTTP(w, r)
			return
		}
		s.loggerFrom(r.Context()).Debug("rejected unauthenticated request")
		respondError(w, http.StatusUnauthorized, "Authentication required")
	})
}

func (s *Server) authorized(r *http.Request) bool {
	if validClientInfo(r.Header.Get(clientInfoHeader), s.cfg.ClientAppName, s.cfg.ClientTimeWindow(), s.now()) {
		return true
	}
	want := s.cfg.AccessKey
	if want == "" {
		return false
	}
	got := r.URL.Query().Get("key")
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// validClientInfo checks a base64 encoded {"name": app, "ts": unix millis}
// header. The timestamp must fall within window before now.
func validClientInfo(header, app string, window time.Duration, now time.Time) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	raw, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		if raw, err = base64.RawStdEncoding.DecodeString(header); err != nil {
			return false
		}
	}

	var info struct {
		Name string      `json:"name"`
		TS   json.Number `json:"ts"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return false
	}
	if info.Name != app || info.TS == "" {
		return false
	}
	ts, err := info.TS.Float64()
	if err != nil {
		return false
	}

	nowMs := now.UnixMilli()
	ms := int64(ts)
	return ms >= nowMs-window.Milliseconds() && ms <= nowMs
}
