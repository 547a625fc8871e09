package httpx

import (
	"net/http"
	"testing"
	"time"
)

func TestNewClient_DirectByDefault(t *testing.T) {
	for _, spec := range []string{"", "off", "direct", "none", "0"} {
		c, err := NewClient(spec, 15*time.Second)
		if err != nil {
			t.Fatalf("NewClient(%q): %v", spec, err)
		}
		tr := c.Transport.(*http.Transport)
		if tr.Proxy != nil {
			t.Fatalf("NewClient(%q): expected no proxy", spec)
		}
	}
}

func TestNewClient_FixedProxy(t *testing.T) {
	c, err := NewClient("proxy.local:8080", 15*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	tr := c.Transport.(*http.Transport)
	if tr.Proxy == nil {
		t.Fatalf("expected fixed proxy func")
	}
	req, _ := http.NewRequest(http.MethodGet, "http://example.com", nil)
	u, err := tr.Proxy(req)
	if err != nil {
		t.Fatalf("proxy func: %v", err)
	}
	if u.Host != "proxy.local:8080" {
		t.Fatalf("unexpected proxy host: %q", u.Host)
	}
}

func TestNewClient_Socks5(t *testing.T) {
	c, err := NewClient("socks5://127.0.0.1:1080", 15*time.Second)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	tr := c.Transport.(*http.Transport)
	if tr.DialContext == nil {
		t.Fatalf("expected custom dialer for socks5")
	}
}

func TestNewClient_InvalidScheme(t *testing.T) {
	if _, err := NewClient("ftp://proxy.local", 15*time.Second); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
