package loadgen

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"

	"davload/internal/config"
)

// fasthttpClient drives requests through a fasthttp.HostClient. Every target
// of a run lives on the same host, which is exactly the case HostClient is
// built for.
type fasthttpClient struct {
	host    *fasthttp.HostClient
	auth    string
	agent   string
	timeout time.Duration
}

func newFasthttpClient(cfg config.Run) (*fasthttpClient, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	isTLS := u.Scheme == "https"
	addr := u.Host
	if u.Port() == "" {
		port := 80
		if isTLS {
			port = 443
		}
		addr = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	}

	host := &fasthttp.HostClient{
		Addr:         addr,
		IsTLS:        isTLS,
		MaxConns:     cfg.Concurrency,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
	if cfg.Insecure {
		host.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &fasthttpClient{
		host:    host,
		auth:    basicAuth(cfg.Username, cfg.Password),
		agent:   cfg.UserAgent,
		timeout: cfg.Timeout,
	}, nil
}

func (c *fasthttpClient) Head(ctx context.Context, target string) Outcome {
	start := time.Now()

	// fasthttp carries no per-request context, so cancellation is checked
	// before dispatch and the round trip is bounded by DoTimeout.
	if err := ctx.Err(); err != nil {
		return Outcome{Err: err, Latency: time.Since(start)}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.Header.SetMethod(fasthttp.MethodHead)
	req.SetRequestURI(target)
	req.Header.Set(fasthttp.HeaderAuthorization, c.auth)
	req.Header.SetUserAgent(c.agent)

	if err := c.host.DoTimeout(req, resp, c.timeout); err != nil {
		return Outcome{Err: err, Latency: time.Since(start)}
	}

	return Outcome{StatusCode: resp.StatusCode(), Latency: time.Since(start)}
}

func (c *fasthttpClient) Close() {
	c.host.CloseIdleConnections()
}
