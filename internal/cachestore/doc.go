// Package cachestore implements the durable blob cache backing the load
// pipeline.
//
// The store is a single SQLite table mapping logical path → binary blob:
// raw encoded source bytes for images, generated JPEG frames for video
// thumbnails (under key path + "#thumb"). Entries are created on first
// successful decode and survive process restarts; the engine never prunes
// them, not even when the underlying file changes or is deleted.
//
// A second small table persists per-widget-instance gallery settings for
// the settings collaborator.
//
// All operations are short-lived and context-bounded (5 s) so no caller
// can hold the store open across a slow await. Store failures are always
// non-fatal to loads: callers log and continue with the in-memory result.
package cachestore
