// Package handlers implements the HTTP surface over the gallery
// engine: item listing, view-state queries and mutations, selection
// and slideshow control, media and thumbnail serving, embed snippets
// and health checks. All responses are JSON except raw media and
// thumbnail bytes.
package handlers
