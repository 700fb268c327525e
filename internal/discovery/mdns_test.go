package discovery

import (
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
)

func TestScanner_parseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name       string
		entry      *zeroconf.ServiceEntry
		wantNil    bool
		wantIP     string
		wantPort   int
		wantScheme string
	}{
		{
			name: "backend with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "orderdesk-demo"},
				HostName:      "workstation.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.16")},
				Text:          []string{"version=dev", "auth=bearer"},
			},
			wantIP:     "192.168.4.16",
			wantPort:   8080,
			wantScheme: "http",
		},
		{
			name: "https backend",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "orderdesk-tls"},
				HostName:      "secure.local.",
				Port:          8443,
				AddrIPv4:      []net.IP{net.ParseIP("10.0.0.5")},
				Text:          []string{"scheme=HTTPS"},
			},
			wantIP:     "10.0.0.5",
			wantPort:   8443,
			wantScheme: "https",
		},
		{
			name: "no port specified (should default to 8080)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "orderdesk-noport"},
				HostName:      "host.local.",
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantIP:     "172.16.0.1",
			wantPort:   DefaultPort,
			wantScheme: "http",
		},
		{
			name: "empty instance name",
			entry: &zeroconf.ServiceEntry{
				HostName: "host.local.",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.1.1")},
			},
			wantNil: true,
		},
		{
			name: "no IP address",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "orderdesk-demo"},
				HostName:      "host.local.",
				Port:          8080,
			},
			wantNil: true,
		},
		{
			name: "IPv6 only backend",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "orderdesk-v6"},
				HostName:      "v6.local.",
				Port:          8080,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantIP:     "fe80::1",
			wantPort:   8080,
			wantScheme: "http",
		},
		{
			name: "both IPv4 and IPv6 (should prefer IPv4)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "orderdesk-dual"},
				HostName:      "dual.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.1.50")},
				AddrIPv6:      []net.IP{net.ParseIP("fe80::2")},
			},
			wantIP:     "192.168.1.50",
			wantPort:   8080,
			wantScheme: "http",
		},
		{
			name:    "nil entry",
			entry:   nil,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if backend != nil {
					t.Errorf("parseServiceEntry() = %v, want nil", backend)
				}
				return
			}

			if backend == nil {
				t.Fatal("parseServiceEntry() = nil, want non-nil backend")
			}

			if backend.Name != tt.entry.Instance {
				t.Errorf("backend.Name = %v, want %v", backend.Name, tt.entry.Instance)
			}
			if backend.IP != tt.wantIP {
				t.Errorf("backend.IP = %v, want %v", backend.IP, tt.wantIP)
			}
			if backend.Port != tt.wantPort {
				t.Errorf("backend.Port = %v, want %v", backend.Port, tt.wantPort)
			}
			if backend.Scheme != tt.wantScheme {
				t.Errorf("backend.Scheme = %v, want %v", backend.Scheme, tt.wantScheme)
			}
			if backend.Host != tt.entry.HostName {
				t.Errorf("backend.Host = %v, want %v", backend.Host, tt.entry.HostName)
			}

			// Check that DiscoveredAt is recent (within last second)
			if time.Since(backend.DiscoveredAt) > time.Second {
				t.Errorf("backend.DiscoveredAt is not recent: %v", backend.DiscoveredAt)
			}
		})
	}
}

func TestParseTXT(t *testing.T) {
	metadata := parseTXT([]string{"version=1.0", "auth=bearer", "flag", "path=/a=b"})

	expected := map[string]string{
		"version": "1.0",
		"auth":    "bearer",
		"flag":    "", // Key without value
		"path":    "/a=b",
	}

	if len(metadata) != len(expected) {
		t.Errorf("metadata has %d entries, want %d", len(metadata), len(expected))
	}
	for key, want := range expected {
		if got, ok := metadata[key]; !ok {
			t.Errorf("metadata missing key %q", key)
		} else if got != want {
			t.Errorf("metadata[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestFormatTXT(t *testing.T) {
	got := formatTXT(map[string]string{"version": "dev", "auth": "bearer", "scheme": "http"})
	want := []string{"auth=bearer", "scheme=http", "version=dev"}

	if len(got) != len(want) {
		t.Fatalf("formatTXT() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("formatTXT()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// round trip
	if parseTXT(got)["auth"] != "bearer" {
		t.Error("parseTXT(formatTXT()) lost the auth key")
	}
}

func TestAdvertise_RequiresName(t *testing.T) {
	if _, err := Advertise("", 8080, nil); err == nil {
		t.Error("Advertise() with empty name should fail")
	}
}

func TestNewScanner(t *testing.T) {
	scanner := NewScanner()

	if scanner == nil {
		t.Fatal("NewScanner() = nil, want scanner")
	}

	if scanner.Timeout != DefaultScanTimeout {
		t.Errorf("scanner.Timeout = %v, want %v", scanner.Timeout, DefaultScanTimeout)
	}
}

// Note: Integration tests with live mDNS discovery require network access
// and are not part of the default test run.
