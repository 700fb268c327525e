package discovery

import (
	"fmt"
	"sort"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/muurk/orderdesk/internal/logging"
)

// Advertise registers a backend instance on the local network. The returned
// function withdraws the advertisement.
func Advertise(name string, port int, txt map[string]string) (func(), error) {
	if name == "" {
		return nil, fmt.Errorf("instance name is required")
	}

	server, err := zeroconf.Register(name, ServiceType, ServiceDomain, port, formatTXT(txt), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to register mDNS service: %w", err)
	}

	logging.Info("Advertising backend over mDNS",
		zap.String("name", name),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)
	return server.Shutdown, nil
}

// formatTXT renders metadata as sorted "key=value" TXT records
func formatTXT(txt map[string]string) []string {
	records := make([]string, 0, len(txt))
	for k, v := range txt {
		records = append(records, k+"="+v)
	}
	sort.Strings(records)
	return records
}
