// Package api provides the route manager REST API. Resource routes live
// under /api/v1; /, /healthz, /readyz and /metrics sit at the root.
package api
