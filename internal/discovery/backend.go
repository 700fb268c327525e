package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Backend represents a platform backend advertised on the local network
type Backend struct {
	// Name is the mDNS instance name (e.g., "orderdesk-demo")
	Name string

	// Host is the mDNS hostname (e.g., "workstation.local.")
	Host string

	// IP is the preferred address, IPv4 when available
	IP string

	// Port is the HTTP(S) port
	Port int

	// Scheme is "http" or "https", taken from the "scheme" TXT record
	Scheme string

	// Metadata contains the mDNS TXT record data
	// Common fields: "version=1.4.0", "scheme=https", "auth=bearer"
	Metadata map[string]string

	// DiscoveredAt is when the backend was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the backend
func (b *Backend) String() string {
	return fmt.Sprintf("%s (%s) at %s", b.Name, b.Host, b.BaseURL())
}

// BaseURL returns the platform base URL of the backend
func (b *Backend) BaseURL() string {
	scheme := b.Scheme
	if scheme == "" {
		scheme = "http"
	}
	return fmt.Sprintf("%s://%s", scheme, net.JoinHostPort(b.IP, strconv.Itoa(b.Port)))
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (b *Backend) GetMetadata(key string) string {
	if b.Metadata == nil {
		return ""
	}
	return b.Metadata[key]
}

// RequiresToken reports whether the backend advertised bearer authentication
func (b *Backend) RequiresToken() bool {
	return b.GetMetadata("auth") == "bearer"
}
