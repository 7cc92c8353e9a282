// Package decode implements the background decode worker channel.
//
// A Pool runs a fixed set of worker goroutines that consume Requests
// from a channel and emit correlated Responses; the caller and the pool
// share no memory, and responses are matched to requests purely by ID.
// A request that never produces a response (worker wedged, pool
// stopped) is the caller's problem to time out; a late response for an
// ID nobody waits on anymore is simply discarded by the consumer.
//
// The default Func, Decoder, resolves a request in this order: blob
// from the persistent store, else a fetch of the content URL persisted
// best-effort before decoding. Image decoding prefers the libvips fast
// path and falls back to pure-Go imaging. Video requests produce a
// thumbnail instead: a cached frame when present, otherwise an ffmpeg
// capture at min(0.5s, 10% of duration) persisted as JPEG for future
// sessions.
package decode
