// Package fetcher performs the single HTTP GET behind every page load.
//
// The fetcher:
// - shares one lazily built HTTP client across the process
// - identifies itself with a fixed User-Agent
// - decodes the response body to UTF-8 using the declared or sniffed charset
// - classifies every failure as an exoerr.Network error
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ka2n/exo/exoerr"
	"github.com/ka2n/exo/log"
	"github.com/ka2n/exo/weburl"
	"golang.org/x/net/html/charset"
)

// UserAgent is sent on every request
const UserAgent = "Mozilla/5.0 (X11; Linux x86_64) Exo/0.1.0"

// Fetcher retrieves the body of a URL as text
type Fetcher interface {
	Fetch(ctx context.Context, u weburl.URL) (string, error)
}

// Func adapts a plain function to the Fetcher interface
type Func func(ctx context.Context, u weburl.URL) (string, error)

// Fetch calls f(ctx, u)
func (f Func) Fetch(ctx context.Context, u weburl.URL) (string, error) {
	return f(ctx, u)
}

// sharedClient is built on first use and only read afterwards
var sharedClient = sync.OnceValue(func() *http.Client {
	log.Debug("Building HTTP client")
	return &http.Client{
		Transport: log.NewTransport(http.DefaultTransport),
	}
})

// Client returns the process-wide HTTP client
func Client() *http.Client {
	return sharedClient()
}

// HTTP fetches pages over HTTP(S)
type HTTP struct {
	// Client overrides the shared client. Tests use this to inject a transport.
	Client *http.Client

	// Timeout bounds a single fetch including the body read. Zero means no timeout.
	Timeout time.Duration
}

// New returns an HTTP fetcher using the shared client
func New(timeout time.Duration) *HTTP {
	return &HTTP{Timeout: timeout}
}

func (f *HTTP) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return Client()
}

// Fetch issues one GET to u and returns the body decoded as text
func (f *HTTP) Fetch(ctx context.Context, u weburl.URL) (string, error) {
	logger := log.Logger.With("url", u.String())
	logger.Info("Fetching URL")

	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", exoerr.Newf(exoerr.Network, "Request failed: %v", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := f.client().Do(req)
	if err != nil {
		return "", exoerr.Newf(exoerr.Network, "Request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return "", exoerr.Newf(exoerr.Network, "HTTP Error: %s", statusText(resp))
	}

	body, err := readText(resp)
	if err != nil {
		return "", exoerr.Newf(exoerr.Network, "Failed to read response body: %v", err)
	}

	logger.Info("Successfully fetched", "bytes", len(body))
	return body, nil
}

// readText reads resp.Body converting it to UTF-8
func readText(resp *http.Response) (string, error) {
	r, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// statusText formats the status as "<code> <reason>"
func statusText(resp *http.Response) string {
	if reason := http.StatusText(resp.StatusCode); reason != "" {
		return fmt.Sprintf("%d %s", resp.StatusCode, reason)
	}
	if resp.Status != "" {
		return resp.Status
	}
	return fmt.Sprintf("%d", resp.StatusCode)
}
