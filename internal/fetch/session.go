package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/metrics"
	"github.com/Digital-Shane/posteria/internal/provider"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	DefaultMaxConnections = 10
	DefaultTimeout        = 10 * time.Second
	DefaultUserAgent      = "Posteria/1.0"

	maxBodyBytes = 8 << 20
)

// Request describes one outbound GET
type Request struct {
	Provider provider.Source
	URL      string
	Header   http.Header
	// Limiter, when set, paces dispatch of this request
	Limiter *rate.Limiter
}

// Result is the outcome of one Request. Succeeded is true only for a 2xx
// status with a fully read body; Err explains every other outcome.
type Result struct {
	Body       []byte
	StatusCode int
	Succeeded  bool
	Err        error
	Duration   time.Duration
}

// Options configures a Session
type Options struct {
	MaxConnections int
	Timeout        time.Duration
	UserAgent      string
	Shared         *cache.Shared
	Logger         *logrus.Entry
}

// Session is the per inbound request fetch context. It owns a private
// connection pool and the request-scoped payload memo, and must be released
// with Close once the request is served.
type Session struct {
	opts   Options
	base   *http.Transport
	client *http.Client
	memo   *cache.Memo
}

// NewSession creates a session. Zero options take the package defaults.
func NewSession(opts Options) *Session {
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = DefaultMaxConnections
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	base := newBaseTransport(opts.MaxConnections)
	return &Session{
		opts: opts,
		base: base,
		client: &http.Client{
			Transport: &Transport{Base: base, UserAgent: opts.UserAgent},
		},
		memo: cache.NewMemo(opts.Shared),
	}
}

// Memo returns the request-scoped payload cache
func (s *Session) Memo() *cache.Memo {
	return s.memo
}

// Do executes every request concurrently, with at most MaxConnections in
// flight, and returns a result for every key once all of them have finished
// or timed out. A failed request never affects its siblings.
func (s *Session) Do(ctx context.Context, reqs map[string]Request) map[string]Result {
	results := make(map[string]Result, len(reqs))
	if len(reqs) == 0 {
		return results
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(s.opts.MaxConnections)

	for key, req := range reqs {
		g.Go(func() error {
			res := s.do(ctx, req)
			mu.Lock()
			results[key] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (s *Session) do(parent context.Context, req Request) Result {
	start := time.Now()
	res := s.roundTrip(parent, req)
	res.Duration = time.Since(start)

	outcome := metrics.OutcomeSuccess
	switch {
	case res.Succeeded:
	case res.StatusCode != 0:
		outcome = metrics.OutcomeStatus
	default:
		outcome = metrics.OutcomeError
	}
	metrics.ObserveUpstream(string(req.Provider), outcome, res.Duration)

	if s.opts.Logger != nil && !res.Succeeded {
		s.opts.Logger.WithFields(logrus.Fields{
			"provider": req.Provider,
			"status":   res.StatusCode,
			"duration": res.Duration.String(),
		}).WithError(res.Err).Debug("upstream request failed")
	}
	return res
}

func (s *Session) roundTrip(parent context.Context, req Request) Result {
	ctx, cancel := context.WithTimeout(parent, s.opts.Timeout)
	defer cancel()

	if req.Limiter != nil {
		if err := req.Limiter.Wait(ctx); err != nil {
			return Result{Err: provider.RequestError(req.Provider, err)}
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return Result{Err: provider.RequestError(req.Provider, fmt.Errorf("build request: %w", err))}
	}
	for k, vals := range req.Header {
		for _, v := range vals {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Result{Err: provider.RequestError(req.Provider, err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Result{StatusCode: resp.StatusCode, Err: provider.RequestError(req.Provider, err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{Body: body, StatusCode: resp.StatusCode, Err: provider.StatusError(req.Provider, resp.StatusCode)}
	}
	return Result{Body: body, StatusCode: resp.StatusCode, Succeeded: true}
}

// Close releases the session's pooled connections
func (s *Session) Close() {
	s.base.CloseIdleConnections()
}
