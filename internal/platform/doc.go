// Package platform provides an HTTP client for the record-management platform.
//
// The Client implements the record fetch, product search, product count,
// category listing and order creation calls over the platform's JSON API, and
// subscribes to the websocket order event feed. Every call carries a fresh
// X-Request-ID and, when configured, a bearer token. Nothing is retried: a
// failure is returned to the caller as a *PlatformError.
//
// # Usage Example
//
//	client := platform.NewClient("http://localhost:8080")
//	client.SetToken(os.Getenv("ORDERDESK_TOKEN"))
//
//	products, err := client.SearchProducts(ctx, "cable", "", 0, 10)
//	if err != nil {
//	    fmt.Println(platform.ShortMessage(err))
//	}
//
// # Error Classification
//
// Transport failures are classified into timeout, DNS, connection refused and
// generic network errors. HTTP statuses map to typed errors: 401 Auth,
// 403 AccessDenied, 404 NotFound, 400/422 Validation, anything else HTTP.
package platform
