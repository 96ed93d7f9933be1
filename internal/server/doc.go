// Package server exposes the dashboard over HTTP for embedding in other
// pages.
//
// Routes:
//
//	GET /              standalone page that reloads itself every refresh interval
//	GET /widget        bare HTML fragment, CORS-open, 503 before the first update
//	GET /api/stations  JSON cards plus last success, last error and offline flag
//	GET /healthz       200 while updates succeed, 503 before data or when offline
//	GET /metrics       Prometheus exposition
//
// Handlers only read state.Store snapshots; they never trigger a fetch.
package server
