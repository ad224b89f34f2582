// Package registry discovers API documentation through an optional service
// registry and gateway. Every call is best effort: failures come back as
// ordinary values ("down", "not found", "no docs"), never as errors.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mark3labs/swagger-cli/internal/logging"
)

// Health is the outcome of a registry health probe.
type Health int

const (
	Unreachable Health = iota
	Down
	Up
)

func (h Health) String() string {
	switch h {
	case Up:
		return "UP"
	case Down:
		return "DOWN"
	default:
		return "UNREACHABLE"
	}
}

// cacheWindow quantizes the application-list cache buster.
const cacheWindow = 5 * time.Minute

// swaggerResourcesAccept selects the gateway's aggregated swagger-resources
// listing; the default Accept header returns only the gateway's own resource.
const swaggerResourcesAccept = "application/json, text/javascript;"

// DiscoveredDoc is one API spec reachable through the gateway.
type DiscoveredDoc struct {
	Value   string // absolute URL of the spec
	Label   string // "<name> (<location>)"
	APIName string
}

// Client performs registry and gateway lookups.
type Client struct {
	http   *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for every call.
func WithHTTPClient(c *http.Client) Option { return func(cl *Client) { cl.http = c } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(cl *Client) { cl.logger = l } }

// WithClock overrides time.Now for the cache buster.
func WithClock(now func() time.Time) Option { return func(cl *Client) { cl.now = now } }

// WithTimeout bounds each individual call.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.http = &http.Client{Timeout: d} }
}

// New returns a Client with a 10s per-call timeout.
func New(opts ...Option) *Client {
	c := &Client{
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CacheBuster returns ceil(now/5min)*5min in epoch milliseconds, so calls
// inside the same five minute window share a value.
func CacheBuster(now time.Time) int64 {
	window := cacheWindow.Milliseconds()
	ms := now.UnixMilli()
	q := ms / window
	if ms%window != 0 && ms > 0 {
		q++
	}
	return q * window
}

func join(base, path string) string {
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}

// getJSON performs a single GET and decodes a 2xx JSON body into v.
func (c *Client) getJSON(ctx context.Context, rawURL, accept string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if accept == "" {
		accept = "application/json"
	}
	req.Header.Set("Accept", accept)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", redact(rawURL), err)
	}
	return nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("unexpected status %d", e.code) }

// redact strips credentials from registry URLs before logging them.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	return u.Redacted()
}

// CheckHealth probes <registryURL>/management/health.
func (c *Client) CheckHealth(ctx context.Context, registryURL string) Health {
	if strings.TrimSpace(registryURL) == "" {
		return Unreachable
	}
	var body struct {
		Status string `json:"status"`
	}
	err := c.getJSON(ctx, join(registryURL, "management/health"), "", &body)
	switch {
	case err == nil && body.Status == "UP":
		c.logger.Info("registry detected", "url", redact(registryURL))
		return Up
	case err == nil:
		c.logger.Debug("registry not healthy", "url", redact(registryURL), "status", body.Status)
		return Down
	default:
		if _, ok := err.(*statusError); ok {
			c.logger.Debug("registry health check failed", "url", redact(registryURL), "err", err)
			return Down
		}
		c.logger.Debug("registry unreachable", "url", redact(registryURL), "err", err)
		return Unreachable
	}
}

type eurekaInstance struct {
	InstanceID     string `json:"instanceId"`
	HomePageURL    string `json:"homePageUrl"`
	HealthCheckURL string `json:"healthCheckUrl"`
	Status         string `json:"status"`
}

type eurekaApplication struct {
	Name      string           `json:"name"`
	Instances []eurekaInstance `json:"instances"`
}

// FindGatewayURL looks up gatewayAppName (as given or upper-cased) in the
// registry's application list and returns the home page of its first
// instance. The instance health check is requested and logged but never
// used to filter.
func (c *Client) FindGatewayURL(ctx context.Context, registryURL, gatewayAppName string) (string, bool) {
	if strings.TrimSpace(gatewayAppName) == "" {
		return "", false
	}
	appsURL := fmt.Sprintf("%s?cacheBuster=%d", join(registryURL, "api/eureka/applications"), CacheBuster(c.now()))
	var body struct {
		Applications []eurekaApplication `json:"applications"`
	}
	if err := c.getJSON(ctx, appsURL, "", &body); err != nil {
		c.logger.Debug("application list unavailable", "url", redact(registryURL), "err", err)
		return "", false
	}
	upper := strings.ToUpper(gatewayAppName)
	for _, app := range body.Applications {
		if (app.Name != gatewayAppName && app.Name != upper) || len(app.Instances) == 0 {
			continue
		}
		inst := app.Instances[0]
		c.checkInstance(ctx, inst)
		if inst.HomePageURL == "" {
			c.logger.Debug("gateway instance has no home page", "app", app.Name, "instance", inst.InstanceID)
			return "", false
		}
		c.logger.Info("gateway found", "url", inst.HomePageURL, "instance", inst.InstanceID, "status", inst.Status)
		return inst.HomePageURL, true
	}
	c.logger.Debug("gateway not registered", "app", gatewayAppName)
	return "", false
}

// checkInstance requests the instance's health check URL once and logs the
// outcome. Eureka health check URLs often answer 404 on a healthy instance.
func (c *Client) checkInstance(ctx context.Context, inst eurekaInstance) {
	if inst.HealthCheckURL == "" {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.getJSON(ctx, inst.HealthCheckURL, "", &body); err != nil {
		c.logger.Debug("gateway instance health unknown", "instance", inst.InstanceID, "url", redact(inst.HealthCheckURL), "err", err)
		return
	}
	c.logger.Info("gateway instance health", "instance", inst.InstanceID, "status", body.Status)
}

type swaggerResource struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

// ListAvailableDocs returns the gateway's swagger resources. The fetch happens
// when the sequence is first ranged over; the sequence can be consumed once
// and is empty on any fetch error.
func (c *Client) ListAvailableDocs(ctx context.Context, gatewayURL string) iter.Seq[DiscoveredDoc] {
	var consumed atomic.Bool
	return func(yield func(DiscoveredDoc) bool) {
		if !consumed.CompareAndSwap(false, true) {
			return
		}
		if strings.TrimSpace(gatewayURL) == "" {
			return
		}
		var resources []swaggerResource
		if err := c.getJSON(ctx, join(gatewayURL, "swagger-resources"), swaggerResourcesAccept, &resources); err != nil {
			c.logger.Debug("swagger resources unavailable", "gateway", redact(gatewayURL), "err", err)
			return
		}
		base := strings.TrimSuffix(gatewayURL, "/")
		for _, r := range resources {
			doc := DiscoveredDoc{
				Value:   base + r.Location,
				Label:   fmt.Sprintf("%s (%s)", r.Name, r.Location),
				APIName: r.Name,
			}
			c.logger.Debug("swagger doc found", "name", doc.Label, "url", doc.Value)
			if !yield(doc) {
				return
			}
		}
	}
}
