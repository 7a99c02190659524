// cmd/api/main.go
//
// Arcade content API – process entry point.
//
// Startup sequence
// ----------------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Install a bootstrap console logger so config problems are visible,
//     then load config (YAML + ARCADE_ env overlays + Vault references).
//
//  3. Start the daily rotating file logger (tees to console in a TTY).
//
//  4. Open the Postgres pool and verify it with a retried ping.
//
//  5. Open the MaxMind reader when configured; request enrichment runs
//     without geo data otherwise.
//
//  6. When realtime is enabled, bridge Postgres LISTEN into the hub that
//     feeds the SSE stream and invalidates reference-data caches.
//
//  7. Build the handler set and route tree, then serve until SIGINT or
//     SIGTERM and drain in-flight requests.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/category"
	"github.com/meridianmall/arcade/internal/config"
	"github.com/meridianmall/arcade/internal/contact"
	"github.com/meridianmall/arcade/internal/database"
	"github.com/meridianmall/arcade/internal/event"
	"github.com/meridianmall/arcade/internal/httpapi"
	"github.com/meridianmall/arcade/internal/imgprobe"
	"github.com/meridianmall/arcade/internal/logger"
	"github.com/meridianmall/arcade/internal/post"
	"github.com/meridianmall/arcade/internal/promotion"
	"github.com/meridianmall/arcade/internal/realtime"
	"github.com/meridianmall/arcade/internal/requestinfo"
	"github.com/meridianmall/arcade/internal/server"
	"github.com/meridianmall/arcade/internal/tenant"
	"github.com/meridianmall/arcade/internal/vip"
	"github.com/meridianmall/arcade/internal/whatson"
)

const serverEnvPath = "/usr/local/etc/arcade/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Config (under a bootstrap console logger) ───────────────────
	//
	boot := zap.Must(zap.NewDevelopment())
	zap.ReplaceGlobals(boot)

	cfg, err := config.Load(ctx)
	if err != nil {
		zap.S().Fatalw("load config", "error", err)
	}

	log, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		zap.S().Fatalw("start logger", "error", err)
	}
	defer log.Sync()

	//
	// ── 2.  Postgres pool ───────────────────────────────────────────────
	//
	dsn, err := cfg.Database.DSN()
	if err != nil {
		log.Fatalw("database dsn", "error", err)
	}

	opts := database.DefaultOptions()
	if cfg.Database.MaxOpenConns > 0 {
		opts.MaxOpenConns = cfg.Database.MaxOpenConns
	}
	if cfg.Database.MaxIdleConns > 0 {
		opts.MaxIdleConns = cfg.Database.MaxIdleConns
	}
	db, err := database.OpenWithOptions(ctx, dsn, opts)
	if err != nil {
		log.Fatalw("connect database", "error", err)
	}
	defer db.Close()
	log.Infow("database online")

	//
	// ── 3.  Optional GeoIP enrichment ───────────────────────────────────
	//
	var geo *requestinfo.GeoDB
	if cfg.GeoIP.Path != "" {
		geo, err = requestinfo.OpenGeo(cfg.GeoIP.Path)
		if err != nil {
			log.Warnw("geoip database unavailable, continuing without geo enrichment",
				"path", cfg.GeoIP.Path, "error", err)
			geo = nil
		} else {
			defer geo.Close()
		}
	}

	//
	// ── 4.  Repositories and handler set ────────────────────────────────
	//
	cats := category.NewRepo(db)
	vips := vip.NewRepo(db)

	h := &httpapi.Handler{
		Posts:        post.NewRepo(db),
		Events:       event.NewRepo(db),
		Tenants:      tenant.NewRepo(db),
		Promotions:   promotion.NewRepo(db),
		VIP:          vips,
		WhatsOn:      whatson.NewRepo(db),
		Contacts:     contact.NewRepo(db),
		Categories:   cats,
		DB:           db,
		Prober:       imgprobe.New(cfg.Images.ProbeTimeout),
		PreviewToken: cfg.HTTP.PreviewToken,
	}

	//
	// ── 5.  Realtime bridge: LISTEN → hub → SSE + cache invalidation ───
	//
	if cfg.Realtime.Enabled {
		lst, err := realtime.NewListener(dsn, cfg.Realtime.Channel)
		if err != nil {
			log.Fatalw("realtime listener", "error", err)
		}

		hub := realtime.NewHub()
		events := make(chan realtime.Event, 16)
		go func() {
			defer close(events)
			if err := lst.Run(ctx, events); err != nil && !errors.Is(err, context.Canceled) {
				log.Warnw("realtime listener stopped", "error", err)
			}
		}()
		go hub.Run(ctx, events)
		h.Stream = hub

		go invalidateOnChange(ctx, hub, cats, vips)
		log.Infow("realtime bridge online", "channel", cfg.Realtime.Channel)
	}

	//
	// ── 6.  Serve until signalled ───────────────────────────────────────
	//
	router := httpapi.NewRouter(h, httpapi.RouterConfig{
		CORSOrigins: cfg.HTTP.Origins(),
		ForceHTTPS:  cfg.HTTP.ForceHTTPS,
		Geo:         geo,
	})
	if err := server.Run(ctx, server.New(cfg.HTTP.ListenAddr, router)); err != nil {
		log.Fatalw("http server", "error", err)
	}
}

// invalidateOnChange drops reference-data caches when the tables behind
// them change, so edits reach the site within one request instead of one
// TTL.
func invalidateOnChange(ctx context.Context, hub *realtime.Hub, cats *category.Repo, vips *vip.Repo) {
	events, cancel := hub.Subscribe()
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Table {
			case "blog_categories":
				cats.Invalidate()
			case "vip_tiers", "vip_benefits", "vip_tier_benefits":
				vips.Invalidate()
			}
		}
	}
}
