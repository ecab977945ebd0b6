// Package fetch retrieves serial pages over HTTP with polite pacing.
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"

	"pervade/config"
)

// Source supplies the contents page and chapter pages, live or mirrored.
type Source interface {
	Index(ctx context.Context) ([]byte, error)
	Chapter(ctx context.Context, url string) ([]byte, error)
}

// Client is the live Source. Requests carry the configured user agent and
// consecutive requests are separated by a fuzzed nap so the origin never
// sees a request burst.
type Client struct {
	hc         *http.Client
	log        *zap.Logger
	indexURL   string
	userAgent  string
	napSeconds int
	enc        encoding.Encoding // forced page encoding, nil sniffs
	visited    bool
}

func NewClient(cfg *config.SourceConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("fetch")

	var enc encoding.Encoding
	if len(cfg.Charset) > 0 {
		var err error
		enc, err = ianaindex.IANA.Encoding(cfg.Charset)
		if err != nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cfg.Charset), zap.Error(err))
			enc = nil
		} else {
			n, _ := ianaindex.IANA.Name(enc)
			log.Debug("Forcefully decoding all pages", zap.String("charset", n))
		}
	}

	return &Client{
		hc:         &http.Client{},
		log:        log,
		indexURL:   cfg.IndexURL,
		userAgent:  cfg.UserAgent,
		napSeconds: cfg.NapSeconds,
		enc:        enc,
	}
}

func (c *Client) Index(ctx context.Context) ([]byte, error) {
	return c.get(ctx, c.indexURL)
}

func (c *Client) Chapter(ctx context.Context, url string) ([]byte, error) {
	return c.get(ctx, url)
}

func (c *Client) get(ctx context.Context, pageURL string) ([]byte, error) {
	if err := c.nap(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to build request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching %s: %s", pageURL, resp.Status)
	}

	var r io.Reader
	if c.enc != nil {
		r = c.enc.NewDecoder().Reader(resp.Body)
	} else {
		if r, err = charset.NewReader(resp.Body, resp.Header.Get("Content-Type")); err != nil {
			return nil, fmt.Errorf("unable to determine charset of %s: %w", pageURL, err)
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", pageURL, err)
	}
	c.log.Debug("Fetched page", zap.String("url", pageURL), zap.Int("bytes", len(data)))
	return data, nil
}

// nap sleeps a fuzzed interval derived from the configured seconds before
// every request but the first. Cancelling the context cuts the nap short.
func (c *Client) nap(ctx context.Context) error {
	if !c.visited {
		c.visited = true
		return nil
	}
	if c.napSeconds <= 0 {
		return nil
	}

	lo := clamp(0, 4, c.napSeconds-1)
	hi := clamp(1, 6, c.napSeconds+1)
	d := time.Duration(lo+rand.IntN(hi-lo+1)) * time.Second
	c.log.Debug("Napping before next request", zap.Duration("nap", d))

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func clamp(smallest, largest, n int) int {
	return max(smallest, min(n, largest))
}
