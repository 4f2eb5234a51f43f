// Package httpapi exposes the stored scrim listings and the sync triggers
// over a small JSON HTTP API. The router is returned as an http.Handler so
// the caller owns the server lifecycle.
package httpapi
