// internal/realtime/listener.go
//
// Change-notification listener.
//
// Context
// -------
// CMS edits fire a Postgres NOTIFY on one channel with a small JSON
// payload naming the table, the action, and the row id.  The listener
// holds a dedicated connection in LISTEN, decodes payloads, and feeds an
// event channel consumed by the SSE stream and the reference-data cache
// invalidators.  Notifications are best-effort: a payload that cannot be
// decoded is skipped, and a dropped connection is re-established with a
// growing pause.  Missed events cost at most one cache lifetime.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/meridianmall/arcade/internal/metrics"
)

// Event is one change notification from the content database.
type Event struct {
	Table  string `json:"table"`
	Action string `json:"action"`
	ID     int64  `json:"id"`
}

// conn is the slice of *pgx.Conn the listener touches, narrowed so tests
// can stand in for a server.
type conn interface {
	Exec(ctx context.Context, sql string) error
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

type pgxConn struct{ *pgx.Conn }

func (c pgxConn) Exec(ctx context.Context, sql string) error {
	_, err := c.Conn.Exec(ctx, sql)
	return err
}

// NOTIFY channel names are fixed at deploy time, lower-case and
// underscore only.
var channelName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Listener owns one LISTEN connection and its reconnect loop.
type Listener struct {
	channel string
	dial    func(ctx context.Context) (conn, error)

	// baseDelay seeds the reconnect backoff.
	baseDelay time.Duration
}

// NewListener prepares a listener for the given connection URL and
// channel.  The connection is not opened until Run.
func NewListener(url, channel string) (*Listener, error) {
	if !channelName.MatchString(channel) {
		return nil, fmt.Errorf("realtime: invalid channel name %q", channel)
	}
	return &Listener{
		channel: channel,
		dial: func(ctx context.Context) (conn, error) {
			c, err := pgx.Connect(ctx, url)
			if err != nil {
				return nil, err
			}
			return pgxConn{c}, nil
		},
		baseDelay: time.Second,
	}, nil
}

// Run listens until ctx is canceled, sending decoded notifications to
// events.  Connection loss is handled internally; the only return is
// ctx's error.
func (l *Listener) Run(ctx context.Context, events chan<- Event) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = l.baseDelay
	bo.MaxInterval = 30 * l.baseDelay
	bo.MaxElapsedTime = 0

	for {
		started := time.Now()
		err := l.listenOnce(ctx, events)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		// A connection that held for a while earns a fresh backoff.
		if time.Since(started) > bo.MaxInterval {
			bo.Reset()
		}
		wait := bo.NextBackOff()
		metrics.RealtimeReconnects.Inc()
		zap.S().Warnw("realtime connection lost",
			"channel", l.channel, "error", err, "retry_in", wait)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (l *Listener) listenOnce(ctx context.Context, events chan<- Event) error {
	c, err := l.dial(ctx)
	if err != nil {
		return err
	}
	// Close must not inherit ctx: teardown still runs after cancellation.
	defer c.Close(context.Background())

	if err := c.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	zap.S().Infow("realtime channel open", "channel", l.channel)

	for {
		n, err := c.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		ev, ok := decode(n.Payload)
		if !ok {
			continue
		}
		metrics.RealtimeEventsTotal.Inc()
		select {
		case events <- ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// decode parses a notification payload.  Anything malformed or missing
// its table/action is reported false and skipped by the caller.
func decode(payload string) (Event, bool) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		zap.S().Warnw("undecodable change notification", "payload", payload, "error", err)
		return Event{}, false
	}
	if ev.Table == "" || ev.Action == "" {
		zap.S().Warnw("incomplete change notification", "payload", payload)
		return Event{}, false
	}
	return ev, true
}
