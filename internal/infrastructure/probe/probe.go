// Package probe implements the liveness checks the healthcheck command runs
// against a running server, from inside the container or out.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Mode selects which endpoint the probe hits.
type Mode string

const (
	// ModeHTTP issues a plain GET against /health.
	ModeHTTP Mode = "http"
	// ModeRPC posts a JSON-RPC ping to /mcp, proving the protocol layer
	// is up and not just the listener.
	ModeRPC Mode = "rpc"
)

// ParseMode validates a mode string from a CLI flag.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHTTP, ModeRPC:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown probe mode %q (expected http or rpc)", s)
	}
}

// DefaultTimeout bounds a single probe round trip.
const DefaultTimeout = 5 * time.Second

const pingBody = `{"jsonrpc":"2.0","id":1,"method":"ping"}`

// Prober checks a server for liveness.
type Prober struct {
	// BaseURL is the server root, e.g. http://localhost:3000.
	BaseURL string
	// Token is sent as a bearer credential in rpc mode when set.
	Token string
	// Timeout defaults to DefaultTimeout when zero.
	Timeout time.Duration

	client *http.Client
}

// New returns a prober for the given server root.
func New(baseURL string) *Prober {
	return &Prober{BaseURL: strings.TrimRight(baseURL, "/")}
}

func (p *Prober) httpClient() *http.Client {
	if p.client != nil {
		return p.client
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	p.client = &http.Client{Timeout: timeout}
	return p.client
}

// Check runs the probe in the given mode. A nil error means the server is
// healthy; the error otherwise describes what failed.
func (p *Prober) Check(ctx context.Context, mode Mode) error {
	switch mode {
	case ModeHTTP:
		return p.checkHealth(ctx)
	case ModeRPC:
		return p.checkRPC(ctx)
	default:
		return fmt.Errorf("unknown probe mode %q", mode)
	}
}

func (p *Prober) checkHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := p.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("health endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned %d", resp.StatusCode)
	}
	return nil
}

func (p *Prober) checkRPC(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.BaseURL+"/mcp", strings.NewReader(pingBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	if p.Token != "" {
		req.Header.Set("Authorization", "Bearer "+p.Token)
	}
	resp, err := p.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("mcp endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("mcp ping returned %d", resp.StatusCode)
	}
	return nil
}
