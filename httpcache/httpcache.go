// Package httpcache provides an http.Client that keeps successful GET
// responses on disk for a limited time, and paces the requests that reach
// the network.
package httpcache

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Transport implements a simple disk cache for HTTP responses.
type Transport struct {
	Base    http.RoundTripper
	Dir     string        // where responses are stored
	TTL     time.Duration // zero disables the cache
	Limiter *rate.Limiter // paces the requests actually sent, if not nil
	Log     zerolog.Logger
}

// DefaultDir returns the default directory of the cache.
func DefaultDir() string { return filepath.Join(os.TempDir(), "divs-cache") }

// NewClient returns an http.Client whose GET responses are cached for ttl.
func NewClient(ttl time.Duration, limiter *rate.Limiter, log zerolog.Logger) *http.Client {
	return &http.Client{
		Timeout: time.Minute,
		Transport: &Transport{
			Base:    http.DefaultTransport,
			Dir:     DefaultDir(),
			TTL:     ttl,
			Limiter: limiter,
			Log:     log,
		},
	}
}

// RoundTrip implements the http.RoundTripper interface. It checks for a cached
// response on disk first. If a fresh cached response is not found, it proceeds
// with the actual HTTP request and caches the new response if it's successful.
func (c *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	cacheable := c.TTL > 0 && req.Method == http.MethodGet
	key := fmt.Sprintf("%x", sha1.Sum([]byte(req.Method+" "+req.URL.String())))

	if cacheable {
		if resp, err := c.get(key, req); err == nil {
			return resp, nil
		}
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	resp, err := c.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.Log.Debug().Str("method", req.Method).Str("host", req.URL.Host).Str("path", req.URL.Path).Int("status", resp.StatusCode).Msg("http")
	if !cacheable || resp.StatusCode >= 300 {
		return resp, nil
	}

	if err := c.put(key, resp); err != nil {
		c.Log.Warn().Err(err).Msg("cache write (ignored)")
	}
	return resp, nil
}

func (c *Transport) base() http.RoundTripper {
	if c.Base == nil {
		return http.DefaultTransport
	}
	return c.Base
}

func (c *Transport) dir() string {
	if c.Dir == "" {
		return DefaultDir()
	}
	return c.Dir
}

// get retrieves a fresh cached response from disk.
func (c *Transport) get(key string, req *http.Request) (*http.Response, error) {
	file := filepath.Join(c.dir(), key)
	info, err := os.Stat(file)
	if err != nil {
		return nil, err
	}
	if time.Since(info.ModTime()) > c.TTL {
		return nil, fmt.Errorf("expired cache entry %s", key)
	}
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk cache. The response body remains readable.
func (c *Transport) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir(), 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir(), key), content, 0o644)
}

// Clear removes every cached response.
func (c *Transport) Clear() error { return os.RemoveAll(c.dir()) }

// GetJSON performs an HTTP GET request to the given address and unmarshals
// the JSON response body into data.
func GetJSON(ctx context.Context, client *http.Client, addr string, data any) error {
	body, err := Get(ctx, client, addr)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, data)
}

// Get performs an HTTP GET request and returns the body of a 200 response.
func Get(ctx context.Context, client *http.Client, addr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; divs)")
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Host: req.URL.Host, Path: req.URL.Path, Code: resp.StatusCode, Status: resp.Status}
	}
	return io.ReadAll(resp.Body)
}

// StatusError is returned for non 200 responses.
type StatusError struct {
	Host, Path string
	Code       int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("cannot http GET %v%v: %v", e.Host, e.Path, e.Status)
}
