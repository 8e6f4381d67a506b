// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports). The core services depend only on these
// contracts, never on a specific provider; any conforming
// implementation is substitutable, including deterministic fakes in
// tests.
package driven
