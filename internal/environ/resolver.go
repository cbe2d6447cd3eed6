// Package environ decides which backend base URL the pipeline talks to.
//
// Production hostnames go straight to the production backend. Staging
// hostnames get one chance to reach a developer's tunnel: a single
// bounded health probe, no retries. If the tunnel does not answer with
// a 2xx inside the deadline, the staging backend is used instead.
package environ

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nzmint/bullion-checkout/internal/config"
)

// Resolver selects a backend base URL for a given page hostname.
type Resolver struct {
	env    config.Environment
	client *http.Client
}

// NewResolver builds a Resolver. client may be nil, in which case a
// default client is used; the probe deadline always comes from the
// environment config, not from the client.
func NewResolver(env config.Environment, client *http.Client) *Resolver {
	if client == nil {
		client = &http.Client{}
	}
	return &Resolver{env: env, client: client}
}

// Resolve returns the base URL to use for hostname. It never fails:
// any problem reaching the dev tunnel resolves to the staging fallback.
func (r *Resolver) Resolve(ctx context.Context, hostname string) string {
	if !strings.Contains(hostname, r.env.StagingMarker) {
		return r.env.ProductionURL
	}

	if r.probeDevTunnel(ctx) {
		slog.InfoContext(ctx, "dev tunnel is up, using it", "base_url", r.env.DevTunnelURL)
		return r.env.DevTunnelURL
	}

	slog.InfoContext(ctx, "dev tunnel unreachable, falling back to staging", "base_url", r.env.StagingURL)
	return r.env.StagingURL
}

// probeDevTunnel performs the single health check. Exactly one request,
// fail-fast: a timeout, transport error, or non-2xx all count as down.
func (r *Resolver) probeDevTunnel(ctx context.Context) bool {
	timeout := r.env.ProbeTimeout()
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, r.env.DevTunnelURL+"/health", nil)
	if err != nil {
		return false
	}

	res, err := r.client.Do(req)
	if err != nil {
		return false
	}
	defer res.Body.Close()

	return res.StatusCode >= 200 && res.StatusCode < 300
}
