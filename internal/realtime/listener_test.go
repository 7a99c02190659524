// internal/realtime/listener_test.go
package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// scriptConn plays back canned notifications, then fails with finalErr or
// blocks until the context ends.
type scriptConn struct {
	listened []string
	payloads []string
	finalErr error
	closed   bool
}

func (c *scriptConn) Exec(ctx context.Context, sql string) error {
	c.listened = append(c.listened, sql)
	return nil
}

func (c *scriptConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	if len(c.payloads) == 0 {
		if c.finalErr != nil {
			return nil, c.finalErr
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	p := c.payloads[0]
	c.payloads = c.payloads[1:]
	return &pgconn.Notification{Channel: "arcade_content", Payload: p}, nil
}

func (c *scriptConn) Close(ctx context.Context) error {
	c.closed = true
	return nil
}

func TestListenerDeliversAndReconnects(t *testing.T) {
	first := &scriptConn{
		payloads: []string{
			`{"table":"blog_posts","action":"update","id":7}`,
			`{{nonsense`,
		},
		finalErr: errors.New("server closed the connection"),
	}
	second := &scriptConn{
		payloads: []string{`{"table":"events","action":"insert","id":3}`},
	}

	dials := 0
	l := &Listener{
		channel:   "arcade_content",
		baseDelay: time.Millisecond,
		dial: func(ctx context.Context) (conn, error) {
			dials++
			if dials == 1 {
				return first, nil
			}
			return second, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	events := make(chan Event, 4)
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx, events) }()

	want := []Event{
		{Table: "blog_posts", Action: "update", ID: 7},
		{Table: "events", Action: "insert", ID: 3},
	}
	for i, w := range want {
		select {
		case got := <-events:
			if got != w {
				t.Fatalf("event %d = %+v, want %+v", i, got, w)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	if dials != 2 {
		t.Fatalf("dials = %d, want 2", dials)
	}
	if !first.closed {
		t.Fatal("dropped connection was not closed")
	}
	if len(first.listened) != 1 || first.listened[0] != `LISTEN "arcade_content"` {
		t.Fatalf("LISTEN statement = %q", first.listened)
	}
}

func TestListenerRedialsAfterDialFailure(t *testing.T) {
	working := &scriptConn{
		payloads: []string{`{"table":"tenants","action":"delete","id":12}`},
	}

	dials := 0
	l := &Listener{
		channel:   "arcade_content",
		baseDelay: time.Millisecond,
		dial: func(ctx context.Context) (conn, error) {
			dials++
			if dials == 1 {
				return nil, errors.New("connection refused")
			}
			return working, nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := make(chan Event, 1)
	go l.Run(ctx, events)

	select {
	case got := <-events:
		if got.Table != "tenants" || got.ID != 12 {
			t.Fatalf("event = %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event after redial")
	}
}

func TestNewListenerValidatesChannel(t *testing.T) {
	for _, bad := range []string{"", "no-dashes", "No_Caps", "1starts_with_digit", `x";DROP`} {
		if _, err := NewListener("postgres://localhost/mall", bad); err == nil {
			t.Fatalf("channel %q accepted", bad)
		}
	}
	if _, err := NewListener("postgres://localhost/mall", "arcade_content"); err != nil {
		t.Fatalf("valid channel rejected: %v", err)
	}
}

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		payload string
		want    Event
		ok      bool
	}{
		{"valid", `{"table":"blog_posts","action":"insert","id":5}`,
			Event{Table: "blog_posts", Action: "insert", ID: 5}, true},
		{"not json", `ping`, Event{}, false},
		{"missing table", `{"action":"insert","id":5}`, Event{}, false},
		{"missing action", `{"table":"blog_posts","id":5}`, Event{}, false},
		{"no id is fine", `{"table":"vip_tiers","action":"truncate"}`,
			Event{Table: "vip_tiers", Action: "truncate"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := decode(tc.payload)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("decode(%q) = %+v, %v", tc.payload, got, ok)
			}
		})
	}
}
