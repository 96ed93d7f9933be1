// Package app is the composition root. It loads configuration, sets up
// logging, and connects the Open Data Hub client, the Scheduler and the
// state.Store to one of two surfaces:
//
//   - RunTUI: the Bubble Tea dashboard; logs go to a file
//   - Serve: the HTTP widget and JSON API; logs go to stderr
//
// The Scheduler polls once at start and then every refresh interval. A
// failed cycle keeps the last render and retries after an exponential
// backoff (interval, 2x, 4x, ... capped at ten minutes). Every cycle takes a
// sequence number from the store, and only the most recently started cycle
// may publish, so a slow response never overwrites a newer one.
package app
