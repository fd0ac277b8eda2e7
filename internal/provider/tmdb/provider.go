package tmdb

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/Digital-Shane/posteria/internal/cache"
	"github.com/Digital-Shane/posteria/internal/fetch"
	"github.com/Digital-Shane/posteria/internal/provider"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL  = "https://api.themoviedb.org/3"
	DefaultLanguage = "en-US"

	imageBaseURL = "https://image.tmdb.org/t/p/"
)

// Client builds and executes TMDB v3 calls through a fetch.Session
type Client struct {
	apiKey   string
	baseURL  string
	language string
	limiter  *rate.Limiter
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL points the client at another API root
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithLanguage sets the metadata language sent with detail and search calls
func WithLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithRateLimit paces outbound calls to rps requests per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// New creates a TMDB client
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  DefaultBaseURL,
		language: DefaultLanguage,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call is one TMDB endpoint invocation. Params never carry the API key.
type Call struct {
	Endpoint string
	Params   url.Values
}

// Fingerprint returns the cache key of the call
func (c Call) Fingerprint() string {
	return cache.Fingerprint(c.Endpoint, c.Params)
}

// Payload is the outcome of one Call
type Payload struct {
	Body []byte
	Err  error
}

// OK reports whether the call produced a usable body
func (p Payload) OK() bool {
	return p.Err == nil && len(p.Body) > 0
}

// Batch executes calls as a single orchestrator batch. Payloads already in
// the session memo (or the shared cache behind it) are served without a
// network round trip, and identical calls under different keys go on the wire
// once. Successful payloads are cached; failures never are.
func (c *Client) Batch(ctx context.Context, sess *fetch.Session, calls map[string]Call) map[string]Payload {
	out := make(map[string]Payload, len(calls))
	memo := sess.Memo()

	pending := make(map[string][]string)
	reqs := make(map[string]fetch.Request)
	for key, call := range calls {
		fp := call.Fingerprint()
		if body, ok := memo.Get(fp); ok {
			out[key] = Payload{Body: body}
			continue
		}
		if _, queued := reqs[fp]; !queued {
			reqs[fp] = fetch.Request{
				Provider: provider.SourceTMDB,
				URL:      c.url(call),
				Header:   http.Header{"Accept": {"application/json"}},
				Limiter:  c.limiter,
			}
		}
		pending[fp] = append(pending[fp], key)
	}

	for fp, res := range sess.Do(ctx, reqs) {
		p := toPayload(res)
		if p.Err == nil {
			memo.Set(fp, p.Body)
		}
		for _, key := range pending[fp] {
			out[key] = p
		}
	}
	return out
}

func toPayload(res fetch.Result) Payload {
	if !res.Succeeded {
		return Payload{Err: res.Err}
	}
	if msg, failed := errorPayload(res.Body); failed {
		return Payload{Err: provider.PayloadError(provider.SourceTMDB, msg)}
	}
	return Payload{Body: res.Body}
}

// errorPayload detects TMDB's {"success": false, "status_message": ...} shape
func errorPayload(body []byte) (string, bool) {
	var probe struct {
		Success       *bool  `json:"success"`
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return "", false
	}
	if probe.Success != nil && !*probe.Success {
		return probe.StatusMessage, true
	}
	return "", false
}

func (c *Client) url(call Call) string {
	params := url.Values{}
	for k, v := range call.Params {
		params[k] = append([]string(nil), v...)
	}
	params.Set("api_key", c.apiKey)
	return c.baseURL + call.Endpoint + "?" + params.Encode()
}

// PosterURLs expands a TMDB file path into the four served sizes
func PosterURLs(filePath string) provider.PosterSet {
	if filePath == "" {
		return provider.PosterSet{}
	}
	return provider.PosterSet{
		Small:    imageBaseURL + "w185" + filePath,
		Medium:   imageBaseURL + "w342" + filePath,
		Large:    imageBaseURL + "w500" + filePath,
		Original: imageBaseURL + "original" + filePath,
	}
}
