// Package middleware provides the HTTP middleware chain: request
// logging in W3C extended format, Prometheus request metrics, and
// opt-in gzip compression for text responses.
package middleware
