package httpexec

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

type ClientConfig struct {
	DialTimeout     time.Duration `mapstructure:"dial_timeout"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	VerifyTLS       bool          `mapstructure:"verify_tls"`
	UserAgent       string        `mapstructure:"user_agent"`
}

// NewHTTPClient builds the shared client the executors send through. It has no
// overall timeout; deadlines are applied per attempt by the Executor.
func NewHTTPClient(cfg ClientConfig) *http.Client {
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = DefaultAttemptTimeout
	}
	if cfg.IdleConnTimeout <= 0 {
		cfg.IdleConnTimeout = 90 * time.Second
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 100
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: !cfg.VerifyTLS,
			MinVersion:         tls.VersionTLS12,
		},
	}

	var rt http.RoundTripper = otelhttp.NewTransport(transport)
	if cfg.UserAgent != "" {
		rt = userAgent{next: rt, ua: cfg.UserAgent}
	}
	return &http.Client{Transport: rt}
}

type userAgent struct {
	next http.RoundTripper
	ua   string
}

func (u userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", u.ua)
	}
	return u.next.RoundTrip(req)
}
