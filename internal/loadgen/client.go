package loadgen

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"io"
	"net"
	"net/http"
	"time"

	"davload/internal/config"
)

// Outcome is the terminal state of one HEAD request. A transport failure
// carries Err and no status code; any completed HTTP exchange carries its
// status code and a nil Err, whatever the code says.
type Outcome struct {
	StatusCode int
	Err        error
	Latency    time.Duration
}

// Client issues a single HEAD request against a target URL. Implementations
// must be safe for concurrent use by many goroutines.
type Client interface {
	Head(ctx context.Context, target string) Outcome
	Close()
}

// newClient builds the request engine selected by cfg.Engine. Validation
// has already rejected unknown engine names.
func newClient(cfg config.Run) (Client, error) {
	switch cfg.Engine {
	case config.EngineFasthttp:
		return newFasthttpClient(cfg)
	default:
		return newNetClient(cfg), nil
	}
}

// netClient drives requests through net/http with the connection pool sized
// to the run's concurrency, so the transport neither throttles below the
// configured level nor lets more connections in flight than intended.
type netClient struct {
	client *http.Client
	auth   string
	agent  string
}

func newNetClient(cfg config.Run) *netClient {
	transport := &http.Transport{
		// Proxies are bypassed so the load hits the target directly.
		Proxy:               nil,
		MaxIdleConns:        cfg.Concurrency,
		MaxIdleConnsPerHost: cfg.Concurrency,
		MaxConnsPerHost:     cfg.Concurrency,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	if cfg.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	return &netClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		auth:  basicAuth(cfg.Username, cfg.Password),
		agent: cfg.UserAgent,
	}
}

func (c *netClient) Head(ctx context.Context, target string) Outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Outcome{Err: err, Latency: time.Since(start)}
	}
	req.Header.Set("Authorization", c.auth)
	req.Header.Set("User-Agent", c.agent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Outcome{Err: err, Latency: time.Since(start)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body) // drain errors are ignorable

	return Outcome{StatusCode: resp.StatusCode, Latency: time.Since(start)}
}

func (c *netClient) Close() {
	c.client.CloseIdleConnections()
}

func basicAuth(username, password string) string {
	creds := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + creds
}
