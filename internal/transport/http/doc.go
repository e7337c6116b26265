// Package http exposes the assessment engine over a JSON API. Errors
// follow RFC 7807 problem details; all responses are rendered through
// go-chi/render.
package http
