// internal/config/model.go
//
// Typed configuration model for the Arcade content API.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   - optional `.env`                          – dotenv values,
//   - optional `conf/arcade.yaml`              – static file,
//   - `ARCADE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client before unmarshalling, so the model never stores
// Vault URIs, only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"`; Koanf ignores `yaml`
//     tags unless configured otherwise.
//   - The `Paths` block is filled at runtime; YAML must not try to set it.
//   - Oxford commas, two spaces after periods.

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`

	// CORSOrigins is a comma-separated allow list.  Empty means any
	// origin, which suits a public content API.
	CORSOrigins string `koanf:"cors_origins"`

	// PreviewToken unlocks unpublished content for CMS preview sessions
	// when presented in the X-Preview-Token header.  Empty disables the
	// preview path entirely.
	PreviewToken string `koanf:"preview_token"`
}

// Origins returns the parsed CORS allow list, or ["*"] when unset.
func (h HTTP) Origins() []string {
	var out []string
	for _, part := range strings.Split(h.CORSOrigins, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

//
// Database section
//

// Database holds the two deploy-supplied values every environment needs:
// the endpoint URL and the service key.  The URL carries host, port,
// database name, and options; the key is the secret half and normally
// arrives from Vault or the environment, never from YAML.
type Database struct {
	URL        string `koanf:"url"         validate:"required,url"`
	ServiceKey string `koanf:"service_key" validate:"required"`

	MaxOpenConns int `koanf:"max_open_conns"`
	MaxIdleConns int `koanf:"max_idle_conns"`
}

// DSN combines URL and ServiceKey into a pgx-ready connection string.  The
// key becomes the password for the URL's user (default "arcade_site").
func (d Database) DSN() (string, error) {
	u, err := url.Parse(d.URL)
	if err != nil {
		return "", fmt.Errorf("config: database url: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return "", fmt.Errorf("config: database url scheme %q, want postgres", u.Scheme)
	}

	user := "arcade_site"
	if u.User != nil && u.User.Username() != "" {
		user = u.User.Username()
	}
	u.User = url.UserPassword(user, d.ServiceKey)
	return u.String(), nil
}

//
// GeoIP section
//

// GeoIP points at a MaxMind City database used to enrich request logs.
// Empty path disables geo lookups; the API works fine without them.
type GeoIP struct {
	Path string `koanf:"path"`
}

//
// Realtime section
//

// Realtime controls the Postgres LISTEN bridge that feeds the What's On
// ticker stream.
type Realtime struct {
	Enabled bool   `koanf:"enabled"`
	Channel string `koanf:"channel"`
}

//
// Images section
//

// Images tunes the reachability prober for editor-supplied image URLs.
type Images struct {
	ProbeTimeout time.Duration `koanf:"probe_timeout"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime, never set in YAML or env.  The loader
// discovers `Root` (repo root or ARCADE_ROOT override) so later code can
// build absolute file paths, for example the log directory.
type Paths struct {
	Root string // ARCADE_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Realtime Realtime `koanf:"realtime"`
	Images   Images   `koanf:"images"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}

// applyDefaults fills the knobs that are optional in every environment.
func (c *Config) applyDefaults() {
	if c.Realtime.Channel == "" {
		c.Realtime.Channel = "arcade_content"
	}
	if c.Images.ProbeTimeout <= 0 {
		c.Images.ProbeTimeout = 5 * time.Second
	}
}
