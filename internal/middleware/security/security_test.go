package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"cctracker/internal/log"
)

func TestInspect(t *testing.T) {
	d := NewDetector(log.Discard())
	tests := []struct {
		name   string
		method string
		target string
		agent  string
		want   Verdict
	}{
		{"plain api call", http.MethodGet, "/api/cards", "curl/8.0", VerdictClean},
		{"path traversal", http.MethodGet, "/api/../etc/passwd", "", VerdictBlocked},
		{"dotenv scan", http.MethodGet, "/.env", "", VerdictBlocked},
		{"script in query", http.MethodGet, "/api/entries?x=%3Cscript%3E", "", VerdictBlocked},
		{"trace method", "TRACE", "/", "", VerdictBlocked},
		{"scanner agent", http.MethodGet, "/api/state", "sqlmap/1.7", VerdictSuspicious},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.target, nil)
			r.Header.Set("User-Agent", tt.agent)
			if got, reason := d.Inspect(r); got != tt.want {
				t.Fatalf("Inspect() = %v (%s), want %v", got, reason, tt.want)
			}
		})
	}
}

func TestDetectorMiddleware(t *testing.T) {
	d := NewDetector(log.Discard())
	served := 0
	h := d.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { served++ }))

	for _, target := range []string{"/api/state", "/wp-admin/login"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}
	r := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	r.Header.Set("User-Agent", "nikto")
	h.ServeHTTP(httptest.NewRecorder(), r)

	if served != 2 {
		t.Fatalf("served = %d, want 2", served)
	}
	if m := d.GetMetrics(); m.SuspiciousRequests != 2 || m.BlockedRequests != 1 {
		t.Fatalf("metrics = %+v", m)
	}
}

func TestExtractClientIP(t *testing.T) {
	d := NewDetector(log.Discard())
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct", "203.0.113.9:1234", "", "", "203.0.113.9"},
		{"untrusted peer ignores headers", "203.0.113.9:1234", "1.1.1.1", "", "203.0.113.9"},
		{"trusted proxy forwards", "10.0.0.2:80", "198.51.100.7, 10.0.0.2", "", "198.51.100.7"},
		{"real ip fallback", "127.0.0.1:80", "garbage", "198.51.100.8", "198.51.100.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := d.ExtractClientIP(r); got != tt.want {
				t.Fatalf("ExtractClientIP() = %q, want %q", got, tt.want)
			}
		})
	}

	if err := d.AddTrustedProxy("not-a-cidr"); err == nil {
		t.Fatal("expected invalid CIDR error")
	}
}

func TestHeadersMiddleware(t *testing.T) {
	h := NewHeadersMiddleware(DefaultHeadersConfig()).Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	if rr.Header().Get("X-Content-Type-Options") != "nosniff" || rr.Header().Get("Cache-Control") != "no-store" {
		t.Fatalf("missing headers: %v", rr.Header())
	}
	if rr.Header().Get("Strict-Transport-Security") != "" {
		t.Fatal("HSTS set on plain HTTP")
	}

	rr = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/state", nil)
	req.TLS = &tls.ConnectionState{}
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Strict-Transport-Security") != "max-age=31536000; includeSubDomains" {
		t.Fatalf("HSTS = %q", rr.Header().Get("Strict-Transport-Security"))
	}
}
