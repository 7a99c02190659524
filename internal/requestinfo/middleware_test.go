// internal/requestinfo/middleware_test.go
package requestinfo

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEnrichAttachesInfo(t *testing.T) {
	var got *RequestInfo
	h := Enrich(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/posts?page=2", nil)
	req.RemoteAddr = "203.0.113.9:54022"
	req.Header.Set("User-Agent",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"+
			" (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-AU,en;q=0.9")

	h.ServeHTTP(httptest.NewRecorder(), req)

	if got == nil {
		t.Fatal("RequestInfo missing from context")
	}
	if got.UA.Browser != "Chrome" || got.UA.Device != "Desktop" {
		t.Fatalf("UA = %+v", got.UA)
	}
	if got.PrimaryLang != "en-au" {
		t.Fatalf("PrimaryLang = %q", got.PrimaryLang)
	}
	if got.Geo.IP.String() != "203.0.113.9" {
		t.Fatalf("IP = %v", got.Geo.IP)
	}
	if got.Geo.CountryISO != "" {
		t.Fatalf("CountryISO = %q, want empty without a geo database", got.Geo.CountryISO)
	}
	if got.URL.RawQuery != "page=2" {
		t.Fatalf("URL = %v", got.URL)
	}
}

func TestFromContextWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if FromContext(req.Context()) != nil {
		t.Fatal("expected nil without Enrich")
	}
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name   string
		header map[string]string
		remote string
		want   string
	}{
		{"forwarded chain", map[string]string{
			"X-Forwarded-For": "198.51.100.7, 10.0.0.1"}, "10.0.0.2:80", "198.51.100.7"},
		{"unparseable first hop skipped", map[string]string{
			"X-Forwarded-For": "unknown, 198.51.100.7"}, "10.0.0.2:80", "198.51.100.7"},
		{"real ip", map[string]string{
			"X-Real-Ip": "192.0.2.4"}, "10.0.0.2:80", "192.0.2.4"},
		{"remote addr", nil, "203.0.113.9:54022", "203.0.113.9"},
		{"remote addr without port", nil, "203.0.113.9", "203.0.113.9"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.header {
				req.Header.Set(k, v)
			}
			got := clientIP(req)
			if got == nil || got.String() != tc.want {
				t.Fatalf("clientIP = %v, want %s", got, tc.want)
			}
		})
	}
}

func TestPrimaryLang(t *testing.T) {
	cases := []struct{ in, want string }{
		{"en-AU,en;q=0.9", "en-au"},
		{"zh-CN", "zh-cn"},
		{"fr;q=0.8, en;q=0.7", "fr"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := primaryLang(tc.in); got != tc.want {
			t.Errorf("primaryLang(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
