package registry

import (
	"context"
	"slices"
	"strings"
)

// Target says where discovery starts from.
type Target struct {
	RegistryURL string
	GatewayName string
	// GatewayURL is used when no registry is configured, or when the registry
	// is up but does not know the gateway.
	GatewayURL string
}

// Discovery is the result of a discovery pass.
type Discovery struct {
	Health     Health
	GatewayURL string
	Docs       []DiscoveredDoc
}

// Discover resolves the gateway and lists its docs. A configured registry that
// is down or unreachable means registry usage is declined: nothing is listed.
func (c *Client) Discover(ctx context.Context, t Target) Discovery {
	var d Discovery
	if strings.TrimSpace(t.RegistryURL) != "" {
		d.Health = c.CheckHealth(ctx, t.RegistryURL)
		if d.Health != Up {
			return d
		}
		if gw, ok := c.FindGatewayURL(ctx, t.RegistryURL, t.GatewayName); ok {
			d.GatewayURL = gw
		}
	}
	if d.GatewayURL == "" {
		d.GatewayURL = strings.TrimSpace(t.GatewayURL)
	}
	if d.GatewayURL == "" {
		return d
	}
	d.Docs = slices.Collect(c.ListAvailableDocs(ctx, d.GatewayURL))
	return d
}

// Find returns the discovered doc whose APIName or Value equals key.
func (d Discovery) Find(key string) (DiscoveredDoc, bool) {
	for _, doc := range d.Docs {
		if doc.APIName == key || doc.Value == key {
			return doc, true
		}
	}
	return DiscoveredDoc{}, false
}
