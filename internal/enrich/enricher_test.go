package enrich

import (
	"context"
	"net"
	"testing"
)

func TestEnrichIPDisabledReturnsEmpty(t *testing.T) {
	e := NewEnricher(EnricherConfig{EnableRDNS: false})
	got := e.EnrichIP(context.Background(), net.ParseIP("127.0.0.1"))
	if got != "" {
		t.Errorf("EnrichIP() = %q, want empty string when rDNS disabled", got)
	}
}

func TestEnrichIPNilAddressReturnsEmpty(t *testing.T) {
	e := NewEnricher(DefaultEnricherConfig())
	got := e.EnrichIP(context.Background(), nil)
	if got != "" {
		t.Errorf("EnrichIP(nil) = %q, want empty string", got)
	}
}

func TestEnrichIPsDedupesInput(t *testing.T) {
	e := NewEnricher(EnricherConfig{EnableRDNS: false})
	ips := []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("127.0.0.1")}
	results := e.EnrichIPs(context.Background(), ips)
	if len(results) != 1 {
		t.Errorf("expected 1 deduplicated result, got %d", len(results))
	}
}
