package enrich

import (
	"context"
	"net"
	"sync"
	"time"
)

// Enricher backfills hostnames for scan result IPs via reverse DNS. It
// only runs for hosts the scan's own ip_map left unresolved (§3).
type Enricher struct {
	config EnricherConfig
	rdns   *RDNSResolver
}

// EnricherConfig holds configuration for the enricher.
type EnricherConfig struct {
	EnableRDNS bool

	// RDNSTimeout in milliseconds.
	RDNSTimeout int

	// Cache settings
	CacheSize int
}

// DefaultEnricherConfig returns default enricher configuration.
func DefaultEnricherConfig() EnricherConfig {
	return EnricherConfig{
		EnableRDNS:  true,
		RDNSTimeout: 2000,
		CacheSize:   1000,
	}
}

// NewEnricher creates a new enricher with the given configuration.
func NewEnricher(config EnricherConfig) *Enricher {
	e := &Enricher{config: config}
	if config.EnableRDNS {
		rc := DefaultRDNSConfig()
		if config.RDNSTimeout > 0 {
			rc.Timeout = time.Duration(config.RDNSTimeout) * time.Millisecond
		}
		if config.CacheSize > 0 {
			rc.CacheSize = config.CacheSize
		}
		e.rdns = NewRDNSResolver(rc)
	}
	return e
}

// EnrichIP resolves ip's hostname via reverse DNS, or "" if lookup is
// disabled or fails.
func (e *Enricher) EnrichIP(ctx context.Context, ip net.IP) string {
	if ip == nil || !e.config.EnableRDNS || e.rdns == nil {
		return ""
	}
	hostname, _ := e.rdns.Lookup(ctx, ip)
	return hostname
}

// EnrichIPs resolves hostnames for multiple IPs concurrently and returns
// a map keyed by IP string.
func (e *Enricher) EnrichIPs(ctx context.Context, ips []net.IP) map[string]string {
	results := make(map[string]string)
	if len(ips) == 0 {
		return results
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, 10) // Limit concurrency

	seen := make(map[string]bool)
	uniqueIPs := make([]net.IP, 0, len(ips))
	for _, ip := range ips {
		if ip != nil {
			ipStr := ip.String()
			if !seen[ipStr] {
				seen[ipStr] = true
				uniqueIPs = append(uniqueIPs, ip)
			}
		}
	}

	for _, ip := range uniqueIPs {
		wg.Add(1)
		go func(ip net.IP) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			hostname := e.EnrichIP(ctx, ip)

			mu.Lock()
			results[ip.String()] = hostname
			mu.Unlock()
		}(ip)
	}

	wg.Wait()
	return results
}

// Close releases resources held by the enricher.
func (e *Enricher) Close() error {
	if e.rdns != nil {
		e.rdns.Close()
	}
	return nil
}
