// internal/imgprobe/prober.go
//
// Image reachability probe.
//
// Context
// -------
// The CMS lets editors paste arbitrary image URLs, and the site checks
// them with a HEAD request before swapping a card's placeholder out.  A
// user flipping quickly through carousel slides fires a probe per slide
// for the same UI slot; only the newest matters, so a fresh probe for a
// key cancels the one still in flight.  The superseded caller gets
// ErrSuperseded, never a misleading "broken".
package imgprobe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-cleanhttp"

	"github.com/meridianmall/arcade/internal/metrics"
	"github.com/meridianmall/arcade/internal/normalize"
)

// ErrSuperseded reports that a newer probe for the same key replaced this
// one before it finished.
var ErrSuperseded = errors.New("imgprobe: superseded by a newer probe")

type token struct {
	cancel     context.CancelFunc
	superseded bool
}

// Prober runs bounded HEAD probes with per-key supersession.  Safe for
// concurrent use.
type Prober struct {
	client  *http.Client
	timeout time.Duration

	mu       sync.Mutex
	inflight map[string]*token
}

// New returns a prober backed by a pooled client.  timeout bounds each
// probe; values <= 0 fall back to 5s.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		client:   cleanhttp.DefaultPooledClient(),
		timeout:  timeout,
		inflight: make(map[string]*token),
	}
}

// Probe reports whether rawURL serves an image the site may render.  key
// names the UI slot; a second Probe with the same key aborts the first.
// A URL that fails sanitization is broken without any network round trip.
func (p *Prober) Probe(ctx context.Context, key, rawURL string) (bool, error) {
	clean := normalize.ImageURL(rawURL)
	if clean == "" {
		metrics.ImageProbesTotal.WithLabelValues("broken").Inc()
		return false, nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	tok := &token{cancel: cancel}

	p.mu.Lock()
	if prev, ok := p.inflight[key]; ok {
		prev.superseded = true
		prev.cancel()
	}
	p.inflight[key] = tok
	p.mu.Unlock()

	defer func() {
		cancel()
		p.mu.Lock()
		if p.inflight[key] == tok {
			delete(p.inflight, key)
		}
		p.mu.Unlock()
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, clean, nil)
	if err != nil {
		metrics.ImageProbesTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("imgprobe: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.mu.Lock()
		superseded := tok.superseded
		p.mu.Unlock()
		if superseded {
			metrics.ImageProbesTotal.WithLabelValues("superseded").Inc()
			return false, ErrSuperseded
		}
		metrics.ImageProbesTotal.WithLabelValues("error").Inc()
		return false, fmt.Errorf("imgprobe: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		metrics.ImageProbesTotal.WithLabelValues("ok").Inc()
		return true, nil
	}
	metrics.ImageProbesTotal.WithLabelValues("broken").Inc()
	return false, nil
}
