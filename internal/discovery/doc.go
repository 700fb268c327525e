// Package discovery finds orderdesk platform backends on the local network.
//
// Backends advertise the "_orderdesk._tcp" mDNS service with TXT records
// describing their version, scheme and whether a bearer token is required.
// A Scanner browses for these services and returns them as Backend values;
// Advertise registers one.
//
// # Usage Example
//
//	backends, err := discovery.NewScanner().ScanForBackends(ctx)
//	if err != nil {
//	    return err
//	}
//	for _, b := range backends {
//	    fmt.Println(b.Name, b.BaseURL())
//	}
package discovery
