//
//  internal/requestinfo/requestinfo.go
//
//  Per-request metadata (user-agent fingerprint, IP + geolocation, URL,
//  and timestamp) collected for the marketing access log.  These structs
//  are inert.  They contain no pointers to database handles or large
//  buffers, so they are safe to log or JSON-encode.
//
//  Dependencies
//  • internal/ua                       (UA parsing, uasurfer underneath)
//  • github.com/oschwald/geoip2-golang (MaxMind lookup)
//

package requestinfo

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"

	"github.com/meridianmall/arcade/internal/ua"
)

//
//  -----------------------------
//  Struct definitions
//  -----------------------------
//

// Geo holds IP-based geolocation hints.  Best-effort: fields stay empty
// when the database has no match for the address.
type Geo struct {
	IP         net.IP // Original client address (not X-Forwarded-For chain)
	CountryISO string // "AU", "US", "SG", ...
	City       string // "Sydney", "Chicago", ...
}

// RequestInfo is attached to the request context by Enrich and is
// visible to every handler and middleware below it.
type RequestInfo struct {
	UA          ua.Info
	PrimaryLang string // First tag from Accept-Language ("en", "zh", ...)
	Geo         Geo
	URL         *url.URL // Pointer copy, safe to dereference read-only
	Timestamp   time.Time
}

//
//  -----------------------------
//  GeoIP database handle
//  -----------------------------
//

// GeoDB wraps a MaxMind reader.  A nil *GeoDB is valid and yields IP-only
// Geo values, so deployments without the database file skip the lookup
// instead of failing at startup.
type GeoDB struct {
	reader *geoip2.Reader
}

// OpenGeo opens a GeoLite2-City database file.
func OpenGeo(path string) (*GeoDB, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("requestinfo: open geo database: %w", err)
	}
	return &GeoDB{reader: r}, nil
}

// Close releases the reader.  Safe on a nil receiver.
func (g *GeoDB) Close() error {
	if g == nil || g.reader == nil {
		return nil
	}
	return g.reader.Close()
}

// lookup returns best-effort Geo data.  Lookups are read-only and safe
// under heavy concurrency.
func (g *GeoDB) lookup(ip net.IP) Geo {
	if g == nil || g.reader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := g.reader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

//
//  -----------------------------
//  Context plumbing
//  -----------------------------
//

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer previously stored by Enrich.
// It returns nil if the middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	parts := strings.Split(al, ",")
	tag := strings.TrimSpace(parts[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = tag[:i]
	}
	return strings.ToLower(tag)
}
