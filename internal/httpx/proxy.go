package httpx

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	netproxy "golang.org/x/net/proxy"
)

// NewClient builds an HTTP client for platform calls. The default transport
// has no proxy even when HTTP_PROXY / HTTPS_PROXY is set; proxying is opt-in
// through the raw spec:
//   - "" / "0" / "false" / "off" / "no" / "none" / "direct": direct
//   - "env": Go's ProxyFromEnvironment
//   - "socks5://host:port": SOCKS5 dialer
//   - URL or host:port: fixed http/https proxy
func NewClient(proxySpec string, timeout time.Duration) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil

	raw := strings.TrimSpace(proxySpec)
	switch strings.ToLower(raw) {
	case "", "0", "false", "off", "no", "none", "direct":
	case "env":
		transport.Proxy = http.ProxyFromEnvironment
	default:
		if strings.HasPrefix(strings.ToLower(raw), "socks5://") {
			addr := strings.TrimPrefix(raw, "socks5://")
			dialer, err := netproxy.SOCKS5("tcp", addr, nil, &net.Dialer{Timeout: 10 * time.Second})
			if err != nil {
				return nil, fmt.Errorf("invalid socks5 proxy %q: %w", raw, err)
			}
			cd, ok := dialer.(netproxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("socks5 dialer does not support context dialing")
			}
			transport.DialContext = cd.DialContext
		} else {
			proxyURL, err := parseProxyURL(raw)
			if err != nil {
				return nil, err
			}
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

func parseProxyURL(raw string) (*url.URL, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, fmt.Errorf("empty proxy url")
	}
	if !strings.Contains(s, "://") {
		s = "http://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported proxy scheme %q (only http/https/socks5)", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("proxy url missing host")
	}
	return u, nil
}
