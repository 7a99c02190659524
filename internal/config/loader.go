// internal/config/loader.go
//
// Configuration loader and reloader.
//
/*
Context
--------
`Load(ctx)` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. Optional `conf/arcade.yaml`.  Container deploys usually ship without
     it and configure everything through the environment.
  3. Environment variables prefixed `ARCADE_`, where `__` maps to "."
     (e.g., `ARCADE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, any leaf whose string value starts with `vault:` is swapped
for the secret it references.  The tree is then unmarshalled into
strongly-typed structs, validated, enriched with the runtime root path, and
cached in an `atomic.Pointer` for lock-free reads.  `Reload()` simply calls
`Load()` again and swaps the pointer.

Instrumentation
---------------
  - DEBUG spans: root discovery, YAML read, env overlay.
  - ERROR spans: YAML parse, env overlay, unmarshal, validation failures.
  - INFO  span:  final "config loaded" with key highlights.
  - Logs use the global *sugared* logger (`zap.S()`) so early boot issues
    surface even before the file logger is installed (bootstrap console).

Notes
-----
  - `rootDir()` climbs the cwd tree until it finds `conf/arcade.yaml`; this
    lets `go run ./cmd/api` work from any sub-directory.
  - Vault references use the form `vault:<mount/path>#<field>`.
  - Oxford commas, two spaces after periods.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/vault"
)

var current atomic.Pointer[Config]

// vaultPrefix marks a config value that must be resolved through Vault
// before use, e.g. "vault:kv/arcade/prod#service_key".
const vaultPrefix = "vault:"

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves ARCADE_ROOT or climbs directories until conf/arcade.yaml
// is found.  Falls back to the executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("ARCADE_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "arcade.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches the Config.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "arcade.yaml")
	if _, err := os.Stat(yamlPath); err == nil {
		if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
			zap.S().Errorw("config yaml load failed", "file", yamlPath, "error", err)
			return nil, err
		}
		zap.S().Debugw("config yaml loaded", "file", yamlPath)
	} else {
		zap.S().Debugw("config yaml absent, using environment only", "file", yamlPath)
	}

	// Env overrides: ARCADE_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("ARCADE_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ARCADE_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "error", err)
		return nil, err
	}

	if err := resolveVaultRefs(ctx, k); err != nil {
		zap.S().Errorw("config vault resolution failed", "error", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "error", err)
		return nil, err
	}

	cfg.Paths.Root = root
	cfg.applyDefaults()
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "error", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"force_https", cfg.HTTP.ForceHTTPS,
		"realtime", cfg.Realtime.Enabled,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

/*──────────────────────────── vault resolution ─────────────────────────────*/

// resolveVaultRefs swaps every `vault:<path>#<field>` leaf for the secret
// it references.  The client is built lazily so environments without Vault
// never need VAULT_ADDR set.
func resolveVaultRefs(ctx context.Context, k *koanf.Koanf) error {
	var cli *vault.Client

	for key, val := range k.All() {
		s, ok := val.(string)
		if !ok || !strings.HasPrefix(s, vaultPrefix) {
			continue
		}

		ref := strings.TrimPrefix(s, vaultPrefix)
		path, field, found := strings.Cut(ref, "#")
		if !found || path == "" || field == "" {
			return fmt.Errorf("config: malformed vault reference %q at %s", s, key)
		}

		if cli == nil {
			c, err := vault.New(ctx)
			if err != nil {
				return fmt.Errorf("config: %s needs vault: %w", key, err)
			}
			cli = c
		}

		secret, err := cli.GetKV(ctx, path, field, 5*time.Minute)
		if err != nil {
			return fmt.Errorf("config: resolving %s: %w", key, err)
		}
		if err := k.Set(key, secret); err != nil {
			return fmt.Errorf("config: setting %s: %w", key, err)
		}
		zap.S().Debugw("config vault reference resolved", "key", key, "path", path)
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

// Get returns the last successfully loaded configuration.
func Get() *Config { return current.Load() }

// Reload re-runs Load and swaps the cached pointer.
func Reload(ctx context.Context) error {
	_, err := Load(ctx)
	return err
}
