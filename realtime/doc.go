// Package realtime connects to a service's live presentation channel over
// WebSocket. A presenter publishes slide changes; followers receive them and
// keep their view in step. The credential comes from the same token source
// the HTTP client uses, so a torn-down session cannot open new channels.
package realtime
