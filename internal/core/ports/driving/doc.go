// Package driving provides interfaces for primary/inbound ports: the
// operations external actors (HTTP API, CLI) invoke on the core.
package driving
