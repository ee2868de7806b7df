package guide

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/nyanko/internal/errors"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

const (
	// DefaultUserAgent identifies the importer to the guide site.
	DefaultUserAgent = "NyankoProtocol/1.0 (Blue Protocol build tracker)"
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 15 * time.Second

	maxBodyBytes = 10 * 1024 * 1024
	// metaPrescanBytes is how far into the document a <meta> charset counts.
	metaPrescanBytes = 1024
)

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Limiter paces requests to the guide site.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Fetcher retrieves a single page as decoded text.
// Failures are *errors.NetworkError or *errors.HTTPStatusError.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*FetchResult, error)
}

// FetchResult is a successfully fetched page.
type FetchResult struct {
	URL         string `json:"url"`
	FinalURL    string `json:"final_url"`
	StatusCode  int    `json:"status_code"`
	ContentType string `json:"content_type"`
	Body        string `json:"body"`
}

// HTTPFetcher performs one GET per call with a fixed User-Agent and timeout.
// It never retries.
type HTTPFetcher struct {
	client    HTTPDoer
	userAgent string
	timeout   time.Duration
	limiter   Limiter
}

// FetcherOption is a functional option for configuring the HTTPFetcher.
type FetcherOption func(*HTTPFetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) FetcherOption {
	return func(f *HTTPFetcher) {
		if c != nil {
			f.client = c
		}
	}
}

// WithUserAgent overrides the identifying User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *HTTPFetcher) {
		if ua != "" {
			f.userAgent = ua
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) FetcherOption {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithLimiter makes every Fetch wait for l before sending the request.
func WithLimiter(l Limiter) FetcherOption {
	return func(f *HTTPFetcher) {
		f.limiter = l
	}
}

// NewHTTPFetcher creates a fetcher with the default User-Agent and timeout.
func NewHTTPFetcher(opts ...FetcherOption) *HTTPFetcher {
	f := &HTTPFetcher{
		client:    &http.Client{},
		userAgent: DefaultUserAgent,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves pageURL. A timed-out request is reported like any other
// network failure.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*FetchResult, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, errors.NewNetworkError(pageURL, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errors.NewNetworkError(pageURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.NewNetworkError(pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.NewHTTPStatusError(pageURL, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	body, err := decodeBody(resp.Body, contentType)
	if err != nil {
		return nil, errors.NewNetworkError(pageURL, err)
	}

	finalURL := pageURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	slog.Debug("Fetched page", "url", pageURL, "status", resp.StatusCode, "bytes", len(body))
	return &FetchResult{
		URL:         pageURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: contentType,
		Body:        body,
	}, nil
}

// decodeBody reads at most maxBodyBytes and converts them to UTF-8. A charset
// is honoured only when declared by a BOM, the Content-Type header or a <meta>
// element; anything else is read as UTF-8. Undecodable bytes become U+FFFD.
func decodeBody(r io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return "", err
	}

	decoded := raw
	if enc, name, ok := declaredEncoding(raw, contentType); ok {
		if out, err := enc.NewDecoder().Bytes(raw); err != nil {
			slog.Debug("Charset decode failed, using raw bytes", "charset", name, "error", err)
		} else {
			decoded = out
		}
	}

	return strings.ToValidUTF8(string(decoded), "\uFFFD"), nil
}

// declaredEncoding returns the encoding the response declares for itself.
// It reports false for undeclared pages, where DetermineEncoding would
// otherwise guess windows-1252 from an ASCII-only head.
func declaredEncoding(raw []byte, contentType string) (encoding.Encoding, string, bool) {
	if enc, name, certain := charset.DetermineEncoding(raw, contentType); certain {
		return enc, name, true
	}

	head := raw[:min(len(raw), metaPrescanBytes)]
	label := metaCharset(head)
	if label == "" {
		return nil, "", false
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		slog.Debug("Ignoring unknown meta charset", "charset", label)
		return nil, "", false
	}
	return enc, name, true
}

// metaCharset finds a charset in <meta charset> or an http-equiv
// Content-Type <meta> element.
func metaCharset(head []byte) string {
	z := html.NewTokenizer(bytes.NewReader(head))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" || !hasAttr {
				continue
			}

			var httpEquiv, content string
			for more := true; more; {
				var key, val []byte
				key, val, more = z.TagAttr()
				switch string(key) {
				case "charset":
					if cs := strings.TrimSpace(string(val)); cs != "" {
						return cs
					}
				case "http-equiv":
					httpEquiv = strings.ToLower(string(val))
				case "content":
					content = string(val)
				}
			}
			if httpEquiv != "content-type" {
				continue
			}
			if _, params, err := mime.ParseMediaType(content); err == nil && params["charset"] != "" {
				return params["charset"]
			}
		}
	}
}
